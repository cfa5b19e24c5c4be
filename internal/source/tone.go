// ABOUTME: Test tone generator
// ABOUTME: Generates an endless sine wave at half amplitude
package source

import (
	"fmt"
	"math"

	"github.com/Resonate-Protocol/pcmout/pkg/audio"
)

// toneAmplitude keeps the tone at 50% volume
const toneAmplitude = 0.5

// Tone generates a sine wave on every channel
type Tone struct {
	frequency  float64
	sampleRate int
	channels   int
	index      uint64
}

// NewTone creates a sine generator
func NewTone(frequency float64, sampleRate, channels int) *Tone {
	return &Tone{
		frequency:  frequency,
		sampleRate: sampleRate,
		channels:   channels,
	}
}

func (t *Tone) Read(frames []audio.Frame) (int, error) {
	makeFrames(frames, t.channels)

	for i := range frames {
		x := float64(t.index+uint64(i)) / float64(t.sampleRate)
		sample := math.Sin(2*math.Pi*t.frequency*x) * toneAmplitude
		for c := range frames[i] {
			frames[i][c] = sample
		}
	}

	t.index += uint64(len(frames))
	return len(frames), nil
}

func (t *Tone) SampleRate() int { return t.sampleRate }
func (t *Tone) Channels() int   { return t.channels }
func (t *Tone) Name() string    { return fmt.Sprintf("Test Tone %gHz", t.frequency) }
func (t *Tone) Close() error    { return nil }
