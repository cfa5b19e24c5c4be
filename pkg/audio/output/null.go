// ABOUTME: Null output backend
// ABOUTME: Polling backend that accepts and discards every frame
package output

import (
	"log/slog"

	"github.com/Resonate-Protocol/pcmout/pkg/audio"
)

// Null is a backend with one endpoint that discards everything it is given
type Null struct{}

// NewNull creates a null backend
func NewNull() *Null {
	return &Null{}
}

func (n *Null) Name() string {
	return "null"
}

func (n *Null) Endpoints() ([]audio.Endpoint, error) {
	return []audio.Endpoint{{Name: "Null Output", ID: "null", Default: true}}, nil
}

func (n *Null) Defaults() Params {
	return Params{Blocking: true, Channels: 2, SampleRate: 44100, LatencyMs: 20}
}

func (n *Null) Capabilities(current Params, format audio.StreamFormat) Capabilities {
	return Capabilities{
		Blocking:    true,
		Channels:    []int{1, 2},
		Frequencies: pollFrequencies,
		Latencies:   pollLatencies,
	}
}

func (n *Null) Open(endpoint audio.Endpoint, params Params, logger *slog.Logger) (Stream, error) {
	if params.Exclusive {
		return nil, &NativeError{Backend: n.Name(), Op: "open", Kind: KindExclusiveUnsupported, Err: errExclusiveUnavailable}
	}

	format := audio.StreamFormat{
		Channels:   params.Channels,
		SampleRate: params.SampleRate,
		BitDepth:   16,
		Encoding:   audio.EncodingInt,
	}
	buffer, period := pollGeometry(format.SampleRate, params.LatencyMs)

	return NewPollStream(PollStreamConfig{
		Backend:      n.Name(),
		Device:       &nullDevice{buffer: buffer},
		Format:       format,
		BufferFrames: buffer,
		PeriodFrames: period,
		Logger:       logger,
	}), nil
}

func (n *Null) Close() error {
	return nil
}

type nullDevice struct {
	buffer int
}

func (d *nullDevice) Avail() (int, error)                        { return d.buffer, nil }
func (d *nullDevice) Wait() error                                { return nil }
func (d *nullDevice) Write(data []byte, frames int) (int, error) { return frames, nil }
func (d *nullDevice) Recover(err error) error                    { return nil }
func (d *nullDevice) Reset() error                               { return nil }
func (d *nullDevice) Close() error                               { return nil }
