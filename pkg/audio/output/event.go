// ABOUTME: Event-driven flow controller
// ABOUTME: Waits on the device readiness event and fills the space the hardware reports free
package output

import (
	"errors"
	"log/slog"

	"github.com/Resonate-Protocol/pcmout/pkg/audio"
	"github.com/Resonate-Protocol/pcmout/pkg/audio/encode"
)

// EventStreamConfig describes a negotiated event-driven stream
type EventStreamConfig struct {
	Backend      string
	Device       EventDevice
	Format       audio.StreamFormat
	BufferFrames int
	PeriodFrames int
	Exclusive    bool
	Blocking     bool
	Logger       *slog.Logger
}

type eventStream struct {
	backend   string
	dev       EventDevice
	format    audio.StreamFormat
	encoder   *encode.PCMEncoder // nil when the format is unsupported
	buffer    int
	period    int
	exclusive bool
	blocking  bool
	priority  *threadPriority
	logger    *slog.Logger
}

// NewEventStream wraps an event device with the event-driven flow controller.
// A format the encoder cannot produce is accepted and rendered as silence.
func NewEventStream(cfg EventStreamConfig) Stream {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	encoder, err := encode.NewPCM(cfg.Format)
	if err != nil {
		logger.Warn("negotiated format cannot be encoded, output will be silent",
			"format", cfg.Format.String(), "err", err)
		encoder = nil
	}

	period := cfg.PeriodFrames
	if period <= 0 {
		period = cfg.BufferFrames
	}

	return &eventStream{
		backend:   cfg.Backend,
		dev:       cfg.Device,
		format:    cfg.Format,
		encoder:   encoder,
		buffer:    cfg.BufferFrames,
		period:    period,
		exclusive: cfg.Exclusive,
		blocking:  cfg.Blocking,
		logger:    logger,
	}
}

func (s *eventStream) Format() audio.StreamFormat { return s.format }
func (s *eventStream) PeriodFrames() int          { return s.period }
func (s *eventStream) BufferFrames() int          { return s.buffer }

// Threshold is the full hardware buffer
func (s *eventStream) Threshold() int { return s.buffer }

func (s *eventStream) Deliver(q *PendingQueue) (Delivery, error) {
	var timeout = waitForever
	if !s.blocking {
		timeout = 0
	}

	if !s.dev.Wait(timeout) {
		return Delivery{Carried: q.Len()}, ErrWaitTimeout
	}

	return s.write(q)
}

// write submits min(available, queued) frames into the device buffer
func (s *eventStream) write(q *PendingQueue) (Delivery, error) {
	var d Delivery

	available := s.buffer
	if !s.exclusive {
		padding, err := s.dev.Padding()
		if err != nil {
			d.Recoveries++
			s.logger.Warn("padding query failed, resetting transport", "err", err)
			if rerr := s.dev.Reset(); rerr != nil {
				s.logger.Error("transport reset failed", "err", rerr)
				d.Carried = q.Len()
				return d, nativeError(s.backend, "padding", KindDevice, err)
			}
			padding = 0
		}
		available = s.buffer - padding
	}

	length := min(available, q.Len())
	if length <= 0 {
		d.Carried = q.Len()
		return d, nil
	}

	buf, err := s.dev.Buffer(length)
	if err != nil {
		d.Carried = q.Len()
		return d, nativeError(s.backend, "get buffer", KindDevice, err)
	}

	silent := s.encoder == nil
	if !silent {
		if _, err := s.encoder.Encode(buf, q.Front(length)); err != nil {
			s.logger.Warn("encoding failed, submitting silence", "err", err)
			silent = true
		}
	}
	if err := s.dev.Release(length, silent); err != nil {
		d.Carried = q.Len()
		return d, nativeError(s.backend, "release buffer", KindDevice, err)
	}
	q.Discard(length)

	d.Frames = length
	d.Silent = silent
	d.Carried = q.Len()
	return d, nil
}

func (s *eventStream) Reset() error {
	return nativeError(s.backend, "reset", KindDevice, s.dev.Reset())
}

// Close releases the device and then the priority token, whatever the device did
func (s *eventStream) Close() error {
	var errs []error
	if err := s.dev.Close(); err != nil {
		s.logger.Warn("device close failed", "err", err)
		errs = append(errs, err)
	}
	if err := s.priority.Release(); err != nil {
		s.logger.Warn("thread priority revert failed", "err", err)
		errs = append(errs, err)
	}
	s.priority = nil
	return errors.Join(errs...)
}

// withPriority attaches a thread priority token released on Close
func withPriority(s Stream, p *threadPriority) Stream {
	if es, ok := s.(*eventStream); ok {
		es.priority = p
	}
	return s
}
