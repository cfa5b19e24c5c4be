//go:build portaudio

// ABOUTME: PortAudio output backend
// ABOUTME: Polling playback over PortAudio's blocking read/write stream API
package output

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Resonate-Protocol/pcmout/pkg/audio"
	"github.com/gordonklaus/portaudio"
)

// PortAudioAvailable reports whether this binary was built with PortAudio
const PortAudioAvailable = true

// PortAudio output backend
type PortAudio struct{}

// NewPortAudio initializes the PortAudio library
func NewPortAudio() (*PortAudio, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}
	return &PortAudio{}, nil
}

func (p *PortAudio) Name() string {
	return "portaudio"
}

// Endpoints lists devices with output channels, flagging the default device
func (p *PortAudio) Endpoints() ([]audio.Endpoint, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, nativeError(p.Name(), "enumerate devices", KindDevice, err)
	}

	var defaultName string
	if def, err := portaudio.DefaultOutputDevice(); err == nil {
		defaultName = def.Name
	}

	var endpoints []audio.Endpoint
	for i, dev := range devices {
		if dev.MaxOutputChannels <= 0 {
			continue
		}
		endpoints = append(endpoints, audio.Endpoint{
			Name:    dev.Name,
			ID:      fmt.Sprintf("%d", i),
			Default: dev.Name == defaultName,
		})
	}
	return endpoints, nil
}

func (p *PortAudio) Defaults() Params {
	return Params{Blocking: true, Channels: 2, SampleRate: 44100, LatencyMs: 20}
}

func (p *PortAudio) Capabilities(current Params, format audio.StreamFormat) Capabilities {
	return Capabilities{
		Blocking:    true,
		Channels:    pollChannels,
		Frequencies: pollFrequencies,
		Latencies:   pollLatencies,
	}
}

// Open opens a blocking-I/O S16 stream with one period per write
func (p *PortAudio) Open(endpoint audio.Endpoint, params Params, logger *slog.Logger) (Stream, error) {
	if params.Exclusive {
		return nil, &NativeError{Backend: p.Name(), Op: "open", Kind: KindExclusiveUnsupported, Err: errExclusiveUnavailable}
	}

	info, err := p.device(endpoint)
	if err != nil {
		return nil, err
	}

	format := audio.StreamFormat{
		Channels:   params.Channels,
		SampleRate: params.SampleRate,
		BitDepth:   16,
		Encoding:   audio.EncodingInt,
	}
	buffer, period := pollGeometry(format.SampleRate, params.LatencyMs)

	out := make([]int16, period*format.Channels)
	streamParams := portaudio.LowLatencyParameters(nil, info)
	streamParams.Output.Channels = format.Channels
	streamParams.Output.Latency = time.Duration(params.LatencyMs) * time.Millisecond
	streamParams.SampleRate = float64(format.SampleRate)
	streamParams.FramesPerBuffer = period

	stream, err := portaudio.OpenStream(streamParams, out)
	if err != nil {
		return nil, nativeError(p.Name(), "open stream", classifyPortAudio(err), err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, nativeError(p.Name(), "start stream", classifyPortAudio(err), err)
	}

	// PortAudio may settle on a different rate and latency than requested
	if si := stream.Info(); si != nil {
		if si.SampleRate > 0 {
			format.SampleRate = int(si.SampleRate)
		}
		if si.OutputLatency > 0 {
			buffer = latencyFrames(format.SampleRate, si.OutputLatency, period)
		}
		logger.Debug("portaudio negotiated stream",
			"requested_rate", params.SampleRate, "rate", format.SampleRate,
			"requested_latency_ms", params.LatencyMs, "output_latency", si.OutputLatency)
	}

	logger.Info("portaudio stream started", "device", endpoint.Name, "format", format.String(),
		"period_frames", period, "buffer_frames", buffer)

	return NewPollStream(PollStreamConfig{
		Backend: p.Name(),
		Device: &portAudioDevice{
			stream:   stream,
			out:      out,
			channels: format.Channels,
			period:   period,
			pause:    time.Duration(period) * time.Second / time.Duration(2*format.SampleRate),
			blocking: params.Blocking,
		},
		Format:       format,
		BufferFrames: buffer,
		PeriodFrames: period,
		Logger:       logger,
	}), nil
}

func (p *PortAudio) device(endpoint audio.Endpoint) (*portaudio.DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, nativeError(p.Name(), "enumerate devices", KindDevice, err)
	}
	for i, dev := range devices {
		if fmt.Sprintf("%d", i) == endpoint.ID && dev.Name == endpoint.Name {
			return dev, nil
		}
	}
	return nil, &DeviceNotFoundError{Name: endpoint.Name}
}

// Close terminates the PortAudio library
func (p *PortAudio) Close() error {
	return portaudio.Terminate()
}

// portAudioDevice adapts a blocking-I/O stream to the polling contract.
// PortAudio writes the whole bound buffer, so frames go out a period at a time.
type portAudioDevice struct {
	stream   *portaudio.Stream
	out      []int16
	channels int
	period   int
	pause    time.Duration
	blocking bool
}

func (d *portAudioDevice) Avail() (int, error) {
	return d.stream.AvailableToWrite()
}

// Wait sleeps about half a period, or reports a timeout in non-blocking mode
func (d *portAudioDevice) Wait() error {
	if !d.blocking {
		return ErrWaitTimeout
	}
	time.Sleep(d.pause)
	return nil
}

// Write submits whole periods from data and returns the frames taken
func (d *portAudioDevice) Write(data []byte, frames int) (int, error) {
	written := 0
	for frames-written >= d.period {
		chunk := data[written*d.channels*2:]
		for i := range d.out {
			d.out[i] = int16(binary.LittleEndian.Uint16(chunk[i*2:]))
		}
		if err := d.stream.Write(); err != nil && !errors.Is(err, portaudio.OutputUnderflowed) {
			return written, err
		}
		written += d.period
	}
	return written, nil
}

// Recover restarts a stopped stream; an underflow needs no action
func (d *portAudioDevice) Recover(err error) error {
	switch {
	case errors.Is(err, portaudio.OutputUnderflowed):
		return nil
	case errors.Is(err, portaudio.StreamIsStopped):
		return d.stream.Start()
	}
	return err
}

func (d *portAudioDevice) Reset() error {
	if err := d.stream.Abort(); err != nil {
		return fmt.Errorf("abort: %w", err)
	}
	if err := d.stream.Start(); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	return nil
}

func (d *portAudioDevice) Close() error {
	stopErr := d.stream.Stop()
	closeErr := d.stream.Close()
	return errors.Join(stopErr, closeErr)
}

func classifyPortAudio(err error) ErrorKind {
	switch {
	case errors.Is(err, portaudio.DeviceUnavailable):
		return KindDeviceBusy
	case errors.Is(err, portaudio.InvalidSampleRate),
		errors.Is(err, portaudio.InvalidChannelCount),
		errors.Is(err, portaudio.SampleFormatNotSupported):
		return KindFormatUnsupported
	}
	return KindDevice
}
