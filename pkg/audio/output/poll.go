// ABOUTME: Polling flow controller with explicit recovery
// ABOUTME: Delivers once a period is queued, retries writes and carries unsent frames
package output

import (
	"errors"
	"log/slog"

	"github.com/Resonate-Protocol/pcmout/pkg/audio"
	"github.com/Resonate-Protocol/pcmout/pkg/audio/encode"
)

const (
	// maxWriteAttempts bounds the write/recover loop of one delivery
	maxWriteAttempts = 4

	// carryTrimSamples is dropped from a queue the device refused entirely,
	// counted in interleaved samples (one frame of stereo).
	carryTrimSamples = 2
)

// PollStreamConfig describes a negotiated polling stream
type PollStreamConfig struct {
	Backend      string
	Device       PollDevice
	Format       audio.StreamFormat
	BufferFrames int
	PeriodFrames int
	Logger       *slog.Logger
}

type pollStream struct {
	backend string
	dev     PollDevice
	format  audio.StreamFormat
	encoder *encode.PCMEncoder // nil when the format is unsupported
	buffer  int
	period  int
	data    []byte
	logger  *slog.Logger
}

// NewPollStream wraps a polling device with the recovering flow controller
func NewPollStream(cfg PollStreamConfig) Stream {
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
		period = max(1, cfg.BufferFrames/8)
	}

	return &pollStream{
		backend: cfg.Backend,
		dev:     cfg.Device,
		format:  cfg.Format,
		encoder: encoder,
		buffer:  cfg.BufferFrames,
		period:  period,
		logger:  logger,
	}
}

func (s *pollStream) Format() audio.StreamFormat { return s.format }
func (s *pollStream) PeriodFrames() int          { return s.period }
func (s *pollStream) BufferFrames() int          { return s.buffer }

// Threshold is one period
func (s *pollStream) Threshold() int { return s.period }

func (s *pollStream) Deliver(q *PendingQueue) (Delivery, error) {
	var d Delivery
	queued := q.Len()

	// Wait until the whole queue fits. Recovery may run any number of times
	// here: each round either frees space or fails for good.
	for {
		available, err := s.dev.Avail()
		if err != nil {
			d.Recoveries++
			if rerr := s.dev.Recover(err); rerr != nil {
				s.logger.Error("device recovery failed", "err", rerr)
				d.Carried = queued
				return d, nativeError(s.backend, "avail", KindDevice, err)
			}
			continue
		}

		if available >= queued {
			break
		}

		if err := s.dev.Wait(); err != nil {
			if errors.Is(err, ErrWaitTimeout) {
				d.Carried = queued
				return d, ErrWaitTimeout
			}
			d.Recoveries++
			if rerr := s.dev.Recover(err); rerr != nil {
				s.logger.Error("device recovery failed", "err", rerr)
				d.Carried = queued
				return d, nativeError(s.backend, "wait", KindDevice, err)
			}
		}
	}

	data := s.encode(q.Front(queued))
	stride := s.format.FrameSize()

	sent := 0
	var fatal error
	for attempt := 0; attempt < maxWriteAttempts && sent < queued; attempt++ {
		written, err := s.dev.Write(data[sent*stride:], queued-sent)
		if err != nil {
			d.Recoveries++
			if rerr := s.dev.Recover(err); rerr != nil {
				s.logger.Error("device recovery failed", "err", rerr)
				fatal = nativeError(s.backend, "write", KindDevice, err)
				break
			}
			continue
		}
		if written > 0 && written <= queued-sent {
			sent += written
		}
	}

	d.Frames = sent
	d.Silent = s.encoder == nil

	switch {
	case sent == queued:
		q.Discard(queued)
	case fatal != nil:
		q.Discard(sent)
	case sent == 0:
		// nothing went out: keep the queue minus a minimal trim so the
		// next delivery makes forward progress
		q.Discard(s.carryTrim())
		d.Partial = true
	default:
		q.Discard(sent)
		d.Partial = true
	}
	d.Carried = q.Len()

	if d.Partial {
		s.logger.Debug("partial delivery, carrying frames",
			"sent", sent, "queued", queued, "carried", d.Carried)
	}

	return d, fatal
}

// carryTrim converts carryTrimSamples to whole frames, at least one
func (s *pollStream) carryTrim() int {
	return max(1, carryTrimSamples/max(1, s.format.Channels))
}

// encode renders frames into the reusable byte buffer, or silence
func (s *pollStream) encode(frames []audio.Frame) []byte {
	need := len(frames) * s.format.FrameSize()
	if cap(s.data) < need {
		s.data = make([]byte, need)
	}
	data := s.data[:need]

	if s.encoder == nil {
		clear(data)
		return data
	}
	if _, err := s.encoder.Encode(data, frames); err != nil {
		s.logger.Warn("encoding failed, writing silence", "err", err)
		clear(data)
	}
	return data
}

func (s *pollStream) Reset() error {
	return nativeError(s.backend, "reset", KindDevice, s.dev.Reset())
}

func (s *pollStream) Close() error {
	if err := s.dev.Close(); err != nil {
		s.logger.Warn("device close failed", "err", err)
		return err
	}
	return nil
}
