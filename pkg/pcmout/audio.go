// ABOUTME: Capability-gated audio output facade
// ABOUTME: Validates each request against the driver's support lists before forwarding it
package pcmout

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/Resonate-Protocol/pcmout/pkg/audio"
	"github.com/Resonate-Protocol/pcmout/pkg/audio/output"
)

// Config holds audio configuration
type Config struct {
	// Driver is the backend name (default: DefaultDriver())
	Driver string

	// Device is the display name of the device to open (default: system default)
	Device string

	// SampleRate is the initial frequency in Hz (default: driver's choice)
	SampleRate int

	// LatencyMs is the initial target latency (default: driver's choice)
	LatencyMs int

	// Logger receives library logs (default: slog.Default())
	Logger *slog.Logger
}

// Audio is one output stream on one driver.
// Like the engine beneath it, it must be used from a single goroutine.
type Audio struct {
	config Config
	engine *output.Engine
}

// New opens the configured driver's default stream
func New(config Config) (*Audio, error) {
	if config.Driver == "" {
		config.Driver = DefaultDriver()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	backend, err := backendFactory(config.Driver)
	if err != nil {
		return nil, err
	}

	engine, err := output.NewEngine(backend, output.EngineConfig{
		Device:     config.Device,
		SampleRate: config.SampleRate,
		LatencyMs:  config.LatencyMs,
		Logger:     config.Logger,
	})
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("failed to open %s output: %w", config.Driver, err)
	}

	return &Audio{config: config, engine: engine}, nil
}

// Driver returns the active driver name
func (a *Audio) Driver() string {
	return a.engine.Driver()
}

// Output pushes one frame of amplitudes in [-1.0, 1.0], one per channel
func (a *Audio) Output(frame audio.Frame) error {
	return a.engine.Output(frame)
}

// OutputInt16 pushes one frame of 16-bit samples
func (a *Audio) OutputInt16(samples []int16) error {
	return a.engine.OutputInt16(samples)
}

// Clear drops pending audio and restarts the device transport
func (a *Audio) Clear() error {
	return a.engine.Clear()
}

// ListDevices re-queries the driver's output devices, default first
func (a *Audio) ListDevices() ([]audio.Endpoint, error) {
	return a.engine.ListDevices()
}

// SetDevice switches to a device listed by SupportedDevices
func (a *Audio) SetDevice(name string) error {
	if !slices.Contains(a.SupportedDevices(), name) {
		return &output.DeviceNotFoundError{Name: name}
	}
	return a.engine.SetDevice(name)
}

// SetExclusive is only accepted by drivers with an exclusive mode
func (a *Audio) SetExclusive(exclusive bool) error {
	if !a.SupportsExclusive() {
		return &output.UnsupportedError{Parameter: "exclusive mode"}
	}
	return a.engine.SetExclusive(exclusive)
}

// SetBlocking is only accepted by drivers that can switch wait behaviour
func (a *Audio) SetBlocking(blocking bool) error {
	if !a.SupportsBlocking() {
		return &output.UnsupportedError{Parameter: "blocking mode"}
	}
	return a.engine.SetBlocking(blocking)
}

func (a *Audio) SetChannels(channels int) error {
	if !slices.Contains(a.SupportedChannelCounts(), channels) {
		return &output.UnsupportedError{Parameter: "channels", Value: channels}
	}
	return a.engine.SetChannels(channels)
}

func (a *Audio) SetFrequency(hz int) error {
	if !slices.Contains(a.SupportedFrequencies(), hz) {
		return &output.UnsupportedError{Parameter: "frequency", Value: hz}
	}
	return a.engine.SetFrequency(hz)
}

func (a *Audio) SetLatency(ms int) error {
	if !slices.Contains(a.SupportedLatencies(), ms) {
		return &output.UnsupportedError{Parameter: "latency", Value: ms}
	}
	return a.engine.SetLatency(ms)
}

func (a *Audio) SupportsExclusive() bool       { return a.engine.SupportsExclusive() }
func (a *Audio) SupportsBlocking() bool        { return a.engine.SupportsBlocking() }
func (a *Audio) SupportedDevices() []string    { return a.engine.SupportedDevices() }
func (a *Audio) SupportedChannelCounts() []int { return a.engine.SupportedChannelCounts() }
func (a *Audio) SupportedFrequencies() []int   { return a.engine.SupportedFrequencies() }
func (a *Audio) SupportedLatencies() []int     { return a.engine.SupportedLatencies() }

// Status reports the current stream state
func (a *Audio) Status() Status {
	p := a.engine.Params()
	return Status{
		Driver:    a.engine.Driver(),
		Device:    p.Device,
		Exclusive: p.Exclusive,
		Blocking:  p.Blocking,
		LatencyMs: p.LatencyMs,
		Format:    a.engine.Format(),
		Stats:     a.engine.Stats(),
	}
}

// Close stops playback and releases the driver
func (a *Audio) Close() error {
	return a.engine.Close()
}

// Status describes the open stream
type Status struct {
	Driver    string
	Device    string
	Exclusive bool
	Blocking  bool
	LatencyMs int
	Format    audio.StreamFormat
	Stats     output.Stats
}
