// ABOUTME: Frame sources for the player
// ABOUTME: Source interface and channel remixing helper
package source

import "github.com/Resonate-Protocol/pcmout/pkg/audio"

// Source produces normalized audio frames
type Source interface {
	// Read fills frames and returns how many were written.
	// io.EOF is returned once the source is exhausted.
	Read(frames []audio.Frame) (int, error)

	// SampleRate returns the source rate in Hz
	SampleRate() int

	// Channels returns the samples per frame the source produces
	Channels() int

	// Name describes the source for display
	Name() string

	// Close releases the source
	Close() error
}

// Remix copies src into dst for a stream of len(dst) channels.
// Mono is duplicated to every channel, extra channels are dropped and
// missing ones are silent.
func Remix(dst, src audio.Frame) {
	if len(src) == 1 {
		for i := range dst {
			dst[i] = src[0]
		}
		return
	}
	n := copy(dst, src)
	clear(dst[n:])
}

// makeFrames sizes each frame to channels samples, reusing storage
func makeFrames(frames []audio.Frame, channels int) {
	for i := range frames {
		if cap(frames[i]) < channels {
			frames[i] = make(audio.Frame, channels)
		}
		frames[i] = frames[i][:channels]
	}
}
