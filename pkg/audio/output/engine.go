// ABOUTME: Audio output engine shared by every backend
// ABOUTME: Queues caller frames, triggers delivery and rebuilds streams on configuration changes
package output

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/Resonate-Protocol/pcmout/pkg/audio"
	"github.com/google/uuid"
)

// EngineConfig holds optional starting values for an engine.
// Zero values fall back to the backend's defaults. Non-zero values must be
// listed in the backend's capabilities, as for the matching setter.
type EngineConfig struct {
	// Device is the display name to open, default endpoint when empty
	Device string

	// SampleRate overrides the backend's default frequency
	SampleRate int

	// LatencyMs overrides the backend's default target latency
	LatencyMs int

	// Logger receives engine logs, slog.Default() when nil
	Logger *slog.Logger
}

// Stats counts delivery activity since the engine was created
type Stats struct {
	FramesPushed      int64
	FramesDelivered   int64
	Deliveries        int64
	PartialDeliveries int64
	SilentDeliveries  int64
	Recoveries        int64
	WaitTimeouts      int64
	Reconfigurations  int64
	Queued            int
}

// Engine pushes caller frames to one hardware stream of one backend.
// It is driven entirely by the caller's goroutine and is not safe for
// concurrent use.
type Engine struct {
	backend   Backend
	logger    *slog.Logger
	endpoints []audio.Endpoint
	params    Params
	stream    Stream
	queue     *PendingQueue
	stats     Stats
}

// NewEngine enumerates the backend's devices and opens the first stream
func NewEngine(backend Backend, config EngineConfig) (*Engine, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("engine", uuid.New(), "driver", backend.Name())

	endpoints, err := ListEndpoints(backend)
	if err != nil {
		return nil, err
	}

	params := backend.Defaults()
	params.Device = endpoints[0].Name
	if config.Device != "" {
		if _, ok := findEndpoint(endpoints, config.Device); !ok {
			return nil, &DeviceNotFoundError{Name: config.Device}
		}
		params.Device = config.Device
	}
	if err := applyStart(&params, backend.Capabilities(params, audio.StreamFormat{}), config); err != nil {
		return nil, err
	}

	e := &Engine{
		backend:   backend,
		logger:    logger,
		endpoints: endpoints,
		params:    params,
	}

	if err := e.open(params); err != nil {
		return nil, err
	}

	return e, nil
}

// applyStart checks starting overrides against what the backend accepts
// before any stream exists, as the matching setters would
func applyStart(params *Params, caps Capabilities, config EngineConfig) error {
	if config.SampleRate != 0 && config.SampleRate != params.SampleRate {
		if !slices.Contains(caps.Frequencies, config.SampleRate) {
			return &UnsupportedError{Parameter: "frequency", Value: config.SampleRate}
		}
		params.SampleRate = config.SampleRate
	}
	if config.LatencyMs != 0 && config.LatencyMs != params.LatencyMs {
		if !slices.Contains(caps.Latencies, config.LatencyMs) {
			return &UnsupportedError{Parameter: "latency", Value: config.LatencyMs}
		}
		params.LatencyMs = config.LatencyMs
	}
	return nil
}

// Driver returns the backend name
func (e *Engine) Driver() string {
	return e.backend.Name()
}

// Output queues one frame and delivers once the stream threshold is reached.
// Samples beyond the channel count are ignored. In blocking mode this may
// suspend the caller until the device is ready; in non-blocking mode it
// returns ErrWaitTimeout instead and the same call may be retried.
func (e *Engine) Output(frame audio.Frame) error {
	if e.stream == nil {
		return ErrStreamClosed
	}

	channels := e.queue.Channels()
	if len(frame) < channels {
		return &FrameSizeError{Got: len(frame), Want: channels}
	}

	e.queue.Push(frame)
	e.stats.FramesPushed++

	if e.queue.Len() < e.stream.Threshold() {
		return nil
	}

	d, err := e.stream.Deliver(e.queue)
	e.record(d)
	if errors.Is(err, ErrWaitTimeout) {
		// hand the frame back so a retry does not duplicate it
		e.queue.DropBack()
		e.stats.FramesPushed--
		e.stats.WaitTimeouts++
	}
	return err
}

// OutputInt16 queues one frame of 16-bit samples
func (e *Engine) OutputInt16(samples []int16) error {
	frame := make(audio.Frame, len(samples))
	for i, s := range samples {
		frame[i] = audio.SampleFromInt16(s)
	}
	return e.Output(frame)
}

// Clear drops pending frames and restarts the transport without reopening
func (e *Engine) Clear() error {
	if e.stream == nil {
		return ErrStreamClosed
	}
	e.queue.Clear()
	return e.stream.Reset()
}

// ListDevices re-queries the device directory
func (e *Engine) ListDevices() ([]audio.Endpoint, error) {
	return ListEndpoints(e.backend)
}

// SetDevice switches to the endpoint with the given display name
func (e *Engine) SetDevice(name string) error {
	if name == e.params.Device {
		return nil
	}
	if _, ok := findEndpoint(e.endpoints, name); !ok {
		return &DeviceNotFoundError{Name: name}
	}

	next := e.params
	next.Device = name
	return e.reconfigure(next)
}

// SetExclusive switches between shared and exclusive mode
func (e *Engine) SetExclusive(exclusive bool) error {
	if exclusive == e.params.Exclusive {
		return nil
	}
	if exclusive && !e.Capabilities().Exclusive {
		return &UnsupportedError{Parameter: "exclusive mode"}
	}

	next := e.params
	next.Exclusive = exclusive
	return e.reconfigure(next)
}

// SetBlocking switches between blocking and non-blocking waits
func (e *Engine) SetBlocking(blocking bool) error {
	if blocking == e.params.Blocking {
		return nil
	}
	if !e.Capabilities().Blocking {
		return &UnsupportedError{Parameter: "blocking mode"}
	}

	next := e.params
	next.Blocking = blocking
	return e.reconfigure(next)
}

// SetChannels requests a channel count
func (e *Engine) SetChannels(channels int) error {
	if channels == e.Format().Channels {
		return nil
	}
	if !slices.Contains(e.Capabilities().Channels, channels) {
		return &UnsupportedError{Parameter: "channels", Value: channels}
	}

	next := e.params
	next.Channels = channels
	return e.reconfigure(next)
}

// SetFrequency requests a sample rate in Hz
func (e *Engine) SetFrequency(hz int) error {
	if hz == e.Format().SampleRate {
		return nil
	}
	if !slices.Contains(e.Capabilities().Frequencies, hz) {
		return &UnsupportedError{Parameter: "frequency", Value: hz}
	}

	next := e.params
	next.SampleRate = hz
	return e.reconfigure(next)
}

// SetLatency requests a target buffer duration in milliseconds
func (e *Engine) SetLatency(ms int) error {
	if ms == e.params.LatencyMs {
		return nil
	}
	if !slices.Contains(e.Capabilities().Latencies, ms) {
		return &UnsupportedError{Parameter: "latency", Value: ms}
	}

	next := e.params
	next.LatencyMs = ms
	return e.reconfigure(next)
}

// Capabilities reports what the backend accepts in the current state
func (e *Engine) Capabilities() Capabilities {
	return e.backend.Capabilities(e.params, e.Format())
}

// Capability and parameter accessors
func (e *Engine) SupportsExclusive() bool       { return e.Capabilities().Exclusive }
func (e *Engine) SupportsBlocking() bool        { return e.Capabilities().Blocking }
func (e *Engine) SupportedChannelCounts() []int { return e.Capabilities().Channels }
func (e *Engine) SupportedFrequencies() []int   { return e.Capabilities().Frequencies }
func (e *Engine) SupportedLatencies() []int     { return e.Capabilities().Latencies }
func (e *Engine) SupportedDevices() []string    { return endpointNames(e.endpoints) }
func (e *Engine) Params() Params                { return e.params }

// Format returns the negotiated format of the open stream
func (e *Engine) Format() audio.StreamFormat {
	if e.stream == nil {
		return audio.StreamFormat{}
	}
	return e.stream.Format()
}

// Stats returns a snapshot of the delivery counters
func (e *Engine) Stats() Stats {
	s := e.stats
	if e.queue != nil {
		s.Queued = e.queue.Len()
	}
	return s
}

// Close stops the transport and releases the stream and backend
func (e *Engine) Close() error {
	var errs []error
	if err := e.closeStream(); err != nil {
		errs = append(errs, err)
	}
	if err := e.backend.Close(); err != nil {
		e.logger.Warn("backend close failed", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// reconfigure tears the stream down and rebuilds it with next.
// If the new stream cannot be opened the previous parameters are restored.
func (e *Engine) reconfigure(next Params) error {
	if endpoints, err := ListEndpoints(e.backend); err == nil {
		e.endpoints = endpoints
	} else {
		e.logger.Warn("device directory refresh failed, keeping previous list", "err", err)
	}
	if _, ok := findEndpoint(e.endpoints, next.Device); !ok {
		return &DeviceNotFoundError{Name: next.Device}
	}

	previous := e.params
	e.logger.Info("reconfiguring stream",
		"device", next.Device, "exclusive", next.Exclusive, "blocking", next.Blocking,
		"channels", next.Channels, "frequency", next.SampleRate, "latency_ms", next.LatencyMs)

	e.closeStream()

	if err := e.open(next); err != nil {
		e.logger.Warn("reconfiguration failed, restoring previous stream", "err", err)
		if rerr := e.open(previous); rerr != nil {
			e.logger.Error("restoring previous stream failed", "err", rerr)
			return errors.Join(err, fmt.Errorf("restore previous stream: %w", rerr))
		}
		return err
	}

	e.stats.Reconfigurations++
	return nil
}

// open negotiates a stream for params and attaches a fresh queue
func (e *Engine) open(params Params) error {
	endpoint, ok := findEndpoint(e.endpoints, params.Device)
	if !ok {
		return &DeviceNotFoundError{Name: params.Device}
	}

	stream, err := e.backend.Open(endpoint, params, e.logger)
	if err != nil {
		return err
	}

	format := stream.Format()
	e.stream = stream
	e.params = params
	e.queue = NewPendingQueue(format.Channels, stream.Threshold()+1)

	e.logger.Info("stream opened",
		"device", params.Device, "format", format.String(),
		"period_frames", stream.PeriodFrames(), "buffer_frames", stream.BufferFrames(),
		"exclusive", params.Exclusive, "blocking", params.Blocking)
	return nil
}

// closeStream releases the current stream, logging rather than aborting
func (e *Engine) closeStream() error {
	if e.stream == nil {
		return nil
	}
	err := e.stream.Close()
	if err != nil {
		e.logger.Warn("stream close reported errors", "err", err)
	}
	e.stream = nil
	if e.queue != nil {
		e.queue.Clear()
	}
	return err
}

func (e *Engine) record(d Delivery) {
	e.stats.Recoveries += int64(d.Recoveries)
	if d.Frames > 0 || d.Partial {
		e.stats.Deliveries++
		e.stats.FramesDelivered += int64(d.Frames)
	}
	if d.Partial {
		e.stats.PartialDeliveries++
	}
	if d.Silent && d.Frames > 0 {
		e.stats.SilentDeliveries++
	}
}
