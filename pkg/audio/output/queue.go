// ABOUTME: Pending frame queue between the caller and the hardware
// ABOUTME: Bounded FIFO of frames with front discard and slot reuse
package output

import "github.com/Resonate-Protocol/pcmout/pkg/audio"

// PendingQueue holds frames pushed by the caller and not yet submitted.
// Slots are reused across discards so a steady-state stream does not allocate.
// It is not safe for concurrent use.
type PendingQueue struct {
	channels int
	frames   []audio.Frame
}

// NewPendingQueue creates a queue for frames of the given channel count
func NewPendingQueue(channels, capacity int) *PendingQueue {
	return &PendingQueue{
		channels: channels,
		frames:   make([]audio.Frame, 0, capacity),
	}
}

// Channels returns the number of samples stored per frame
func (q *PendingQueue) Channels() int {
	return q.channels
}

// Len returns the number of queued frames
func (q *PendingQueue) Len() int {
	return len(q.frames)
}

// Push copies the first Channels samples of frame onto the back of the queue
func (q *PendingQueue) Push(frame audio.Frame) {
	n := len(q.frames)

	var slot audio.Frame
	if n < cap(q.frames) {
		q.frames = q.frames[:n+1]
		slot = q.frames[n]
	} else {
		q.frames = append(q.frames, nil)
	}
	if cap(slot) < q.channels {
		slot = make(audio.Frame, q.channels)
	}
	slot = slot[:q.channels]

	copied := copy(slot, frame)
	clear(slot[copied:])
	q.frames[n] = slot
}

// Front returns the oldest n frames without removing them.
// The returned frames are only valid until the next mutation.
func (q *PendingQueue) Front(n int) []audio.Frame {
	if n > len(q.frames) {
		n = len(q.frames)
	}
	return q.frames[:n]
}

// Discard removes the oldest n frames
func (q *PendingQueue) Discard(n int) {
	if n <= 0 {
		return
	}
	if n >= len(q.frames) {
		q.frames = q.frames[:0]
		return
	}

	remaining := len(q.frames) - n
	for i := 0; i < remaining; i++ {
		// swap so the discarded slots keep their storage for reuse
		q.frames[i], q.frames[n+i] = q.frames[n+i], q.frames[i]
	}
	q.frames = q.frames[:remaining]
}

// Clear drops every queued frame
func (q *PendingQueue) Clear() {
	q.frames = q.frames[:0]
}

// DropBack removes the newest frame
func (q *PendingQueue) DropBack() {
	if len(q.frames) > 0 {
		q.frames = q.frames[:len(q.frames)-1]
	}
}
