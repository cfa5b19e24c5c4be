// ABOUTME: Oto-based event-driven output backend
// ABOUTME: Shared-mode float playback through the process-wide oto context
package output

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Resonate-Protocol/pcmout/pkg/audio"
	"github.com/ebitengine/oto/v3"
)

// otoDevicePeriodMs is the smallest buffer handed to the oto player
const otoDevicePeriodMs = 10

// Oto output backend using the oto library.
// oto allows one context per process, so the first Open fixes the format
// and every later stream reuses it.
type Oto struct {
	otoCtx     *oto.Context
	sampleRate int
	channels   int
	mu         sync.Mutex
}

// NewOto creates an oto backend; the context is created on first Open
func NewOto() *Oto {
	return &Oto{}
}

func (o *Oto) Name() string {
	return "oto"
}

// Endpoints returns the system default device, the only one oto can address
func (o *Oto) Endpoints() ([]audio.Endpoint, error) {
	return []audio.Endpoint{{Name: "System Default", ID: "default", Default: true}}, nil
}

func (o *Oto) Defaults() Params {
	return Params{Blocking: true, Channels: 2, SampleRate: 48000, LatencyMs: 40}
}

// Capabilities collapses to the context's format once it exists
func (o *Oto) Capabilities(current Params, format audio.StreamFormat) Capabilities {
	caps := Capabilities{
		Blocking:    true,
		Channels:    []int{1, 2},
		Frequencies: pollFrequencies,
		Latencies:   eventLatencies,
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.otoCtx != nil {
		caps.Channels = []int{o.channels}
		caps.Frequencies = []int{o.sampleRate}
	}
	return caps
}

func (o *Oto) Open(endpoint audio.Endpoint, params Params, logger *slog.Logger) (Stream, error) {
	if params.Exclusive {
		return nil, &NativeError{Backend: o.Name(), Op: "open", Kind: KindExclusiveUnsupported, Err: errExclusiveUnavailable}
	}

	otoCtx, sampleRate, channels, err := o.context(params, logger)
	if err != nil {
		return nil, err
	}

	format := audio.StreamFormat{
		Channels:   channels,
		SampleRate: sampleRate,
		BitDepth:   32,
		Encoding:   audio.EncodingFloat,
	}
	latency := max(params.LatencyMs, otoDevicePeriodMs)
	buffer, period := eventGeometry(sampleRate, latency, otoDevicePeriodMs)

	ring := NewRenderRing(buffer, format.FrameSize(), false)
	player := otoCtx.NewPlayer(ring)
	player.SetBufferSize(period * format.FrameSize())
	player.Play()

	logger.Info("oto player started", "device", endpoint.Name, "format", format.String())

	return NewEventStream(EventStreamConfig{
		Backend:      o.Name(),
		Device:       &otoDevice{RenderRing: ring, player: player},
		Format:       format,
		BufferFrames: buffer,
		PeriodFrames: period,
		Blocking:     params.Blocking,
		Logger:       logger,
	}), nil
}

// context returns the process-wide oto context, creating it on first use
func (o *Oto) context(params Params, logger *slog.Logger) (*oto.Context, int, int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.otoCtx != nil {
		if params.SampleRate != o.sampleRate || params.Channels != o.channels {
			logger.Warn("oto cannot change format after initialization, keeping existing context",
				"requested_rate", params.SampleRate, "requested_channels", params.Channels,
				"rate", o.sampleRate, "channels", o.channels)
		}
		if err := o.otoCtx.Resume(); err != nil {
			return nil, 0, 0, nativeError(o.Name(), "resume context", KindDevice, err)
		}
		return o.otoCtx, o.sampleRate, o.channels, nil
	}

	op := &oto.NewContextOptions{
		SampleRate:   params.SampleRate,
		ChannelCount: params.Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   otoDevicePeriodMs * time.Millisecond,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, 0, 0, nativeError(o.Name(), "create context", KindFormatUnsupported, err)
	}
	<-readyChan

	o.otoCtx = ctx
	o.sampleRate = params.SampleRate
	o.channels = params.Channels
	return ctx, o.sampleRate, o.channels, nil
}

// Close suspends the context; oto never releases it within a process
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.otoCtx == nil {
		return nil
	}
	if err := o.otoCtx.Suspend(); err != nil {
		return fmt.Errorf("suspend oto context: %w", err)
	}
	return nil
}

// otoDevice is a playing oto player pulling from a render ring
type otoDevice struct {
	*RenderRing
	player *oto.Player
}

func (d *otoDevice) Reset() error {
	d.player.Pause()
	d.RenderRing.Reset()
	d.player.Play()
	return nil
}

func (d *otoDevice) Close() error {
	d.player.Pause()
	d.RenderRing.Reset()
	return d.player.Close()
}
