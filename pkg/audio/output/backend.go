// ABOUTME: Backend and stream contracts for the output engine
// ABOUTME: Negotiation, flow control and device interfaces each backend provides
package output

import (
	"log/slog"
	"time"

	"github.com/Resonate-Protocol/pcmout/pkg/audio"
)

// Params is the caller-selected configuration of a stream
type Params struct {
	Device     string // display name from the device directory
	Exclusive  bool
	Blocking   bool
	Channels   int // 0 lets the backend choose
	SampleRate int // 0 lets the backend choose
	LatencyMs  int
}

// Capabilities lists the values a backend accepts for its current device
type Capabilities struct {
	Exclusive   bool
	Blocking    bool
	Channels    []int
	Frequencies []int
	Latencies   []int
}

// Backend negotiates hardware streams with one OS audio API
type Backend interface {
	// Name returns the driver name, e.g. "malgo"
	Name() string

	// Endpoints enumerates active render endpoints in backend order
	Endpoints() ([]audio.Endpoint, error)

	// Defaults returns the parameters a fresh engine starts with
	Defaults() Params

	// Capabilities reports supported values given the current state
	Capabilities(current Params, format audio.StreamFormat) Capabilities

	// Open negotiates a format and opens a hardware stream
	Open(endpoint audio.Endpoint, params Params, logger *slog.Logger) (Stream, error)

	// Close releases backend-wide resources
	Close() error
}

// Stream is an open hardware stream together with its flow controller
type Stream interface {
	// Format returns the negotiated wire format
	Format() audio.StreamFormat

	// PeriodFrames returns the frames the hardware consumes per cycle
	PeriodFrames() int

	// BufferFrames returns the frames the hardware holds before overrun
	BufferFrames() int

	// Threshold returns the queue length at which a delivery is attempted
	Threshold() int

	// Deliver waits for the device and hands queued frames to it
	Deliver(q *PendingQueue) (Delivery, error)

	// Reset stops, resets and restarts the transport without reopening
	Reset() error

	// Close stops the transport and releases every handle
	Close() error
}

// Delivery describes the outcome of one Deliver call
type Delivery struct {
	Frames     int  // frames handed to hardware
	Carried    int  // frames still queued afterwards
	Recoveries int  // device recoveries performed
	Partial    bool // write attempts exhausted before the queue drained
	Silent     bool // submitted as hardware silence
}

// EventDevice is the hardware side of an event-driven stream
type EventDevice interface {
	// Wait blocks until the device signals readiness.
	// A negative timeout waits forever. Returns false on timeout.
	Wait(timeout time.Duration) bool

	// Padding returns frames submitted but not yet consumed
	Padding() (int, error)

	// Buffer returns writable memory for the given number of frames
	Buffer(frames int) ([]byte, error)

	// Release commits frames written into the last Buffer
	Release(frames int, silent bool) error

	// Reset stops, resets and restarts the transport
	Reset() error

	// Close stops the transport and releases the device
	Close() error
}

// PollDevice is the hardware side of a polling stream
type PollDevice interface {
	// Avail returns the frames the device can accept right now
	Avail() (int, error)

	// Wait blocks until the device is ready for more frames.
	// A non-blocking device returns ErrWaitTimeout instead of blocking.
	Wait() error

	// Write submits up to frames frames from data and returns how many were taken
	Write(data []byte, frames int) (int, error)

	// Recover attempts to bring the device back after err
	Recover(err error) error

	// Reset stops, resets and restarts the transport
	Reset() error

	// Close stops the transport and releases the device
	Close() error
}

// waitForever is the EventDevice.Wait timeout for blocking mode
const waitForever time.Duration = -1
