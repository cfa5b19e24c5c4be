// ABOUTME: Render ring shared by callback-driven backends
// ABOUTME: Byte ring the OS callback pulls from, with padding and a readiness event
package output

import (
	"fmt"
	"sync"
	"time"
)

// RenderRing is the hardware-visible buffer of a callback-driven backend.
// The engine writes through Buffer/Release, the audio callback pulls with Read
// and every pull signals a one-slot auto-reset readiness event.
type RenderRing struct {
	buffer    []byte
	scratch   []byte
	frameSize int
	frames    int // capacity in frames
	readPos   int // byte offsets
	writePos  int
	count     int // frames currently in the ring
	exclusive bool
	ready     chan struct{}
	mu        sync.Mutex
}

// NewRenderRing creates a ring holding frames frames of frameSize bytes.
// In exclusive mode readiness is only signalled when a pull drains the ring,
// and once for the empty ring, so a woken writer may always fill the whole buffer.
func NewRenderRing(frames, frameSize int, exclusive bool) *RenderRing {
	r := &RenderRing{
		buffer:    make([]byte, frames*frameSize),
		scratch:   make([]byte, frames*frameSize),
		frameSize: frameSize,
		frames:    frames,
		exclusive: exclusive,
		ready:     make(chan struct{}, 1),
	}
	if exclusive {
		r.signal()
	}
	return r
}

// Frames returns the ring capacity in frames
func (r *RenderRing) Frames() int {
	return r.frames
}

// Padding returns the number of frames not yet pulled by the callback
func (r *RenderRing) Padding() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count, nil
}

// Buffer returns scratch memory for frames frames
func (r *RenderRing) Buffer(frames int) ([]byte, error) {
	if frames < 0 || frames > r.frames {
		return nil, fmt.Errorf("buffer request of %d frames exceeds ring of %d", frames, r.frames)
	}
	return r.scratch[:frames*r.frameSize], nil
}

// Release commits frames from the scratch buffer, or silence
func (r *RenderRing) Release(frames int, silent bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if frames > r.frames-r.count {
		return fmt.Errorf("release of %d frames overruns ring (%d free)", frames, r.frames-r.count)
	}

	src := r.scratch[:frames*r.frameSize]
	for i := 0; i < len(src); i++ {
		if silent {
			r.buffer[r.writePos] = 0
		} else {
			r.buffer[r.writePos] = src[i]
		}
		r.writePos = (r.writePos + 1) % len(r.buffer)
	}
	r.count += frames
	return nil
}

// Read fills p from the ring, zero-filling on underrun, and signals readiness
func (r *RenderRing) Read(p []byte) (int, error) {
	r.mu.Lock()

	before := r.count
	n := min(len(p)/r.frameSize, r.count)

	nbytes := n * r.frameSize
	for i := 0; i < nbytes; i++ {
		p[i] = r.buffer[r.readPos]
		r.readPos = (r.readPos + 1) % len(r.buffer)
	}
	clear(p[nbytes:])
	r.count -= n

	// Underrun pulls on an already empty exclusive ring must not signal:
	// the writer holding the empty-ring signal may be mid-fill.
	signal := !r.exclusive || (before > 0 && r.count == 0)
	r.mu.Unlock()

	if signal {
		r.signal()
	}
	return len(p), nil
}

// Wait blocks for the readiness event. A negative timeout waits forever.
func (r *RenderRing) Wait(timeout time.Duration) bool {
	if timeout < 0 {
		<-r.ready
		return true
	}
	if timeout == 0 {
		select {
		case <-r.ready:
			return true
		default:
			return false
		}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-r.ready:
		return true
	case <-timer.C:
		return false
	}
}

// Reset drops buffered frames and any pending readiness signal.
// An exclusive ring is left signalled since it is now empty.
func (r *RenderRing) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.readPos = 0
	r.writePos = 0
	r.count = 0
	select {
	case <-r.ready:
	default:
	}
	if r.exclusive {
		r.signal()
	}
}

func (r *RenderRing) signal() {
	select {
	case r.ready <- struct{}{}:
	default:
	}
}
