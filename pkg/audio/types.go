// ABOUTME: Audio type definitions
// ABOUTME: Defines stream formats, endpoints, frames and sample conversion
package audio

import (
	"fmt"
	"math"
)

const (
	// Int16Scale maps amplitude 1.0 to the largest positive 16-bit sample
	Int16Scale = 32767.0 // 2^15 - 1
	// Int32Scale maps amplitude 1.0 to the largest positive 32-bit sample
	Int32Scale = 2147483647.0 // 2^31 - 1
)

// Encoding is the sample encoding of a wire format
type Encoding int

const (
	EncodingUnknown Encoding = iota
	EncodingInt              // signed integer PCM
	EncodingFloat            // IEEE float
)

func (e Encoding) String() string {
	switch e {
	case EncodingInt:
		return "int"
	case EncodingFloat:
		return "float"
	default:
		return "unknown"
	}
}

// StreamFormat describes the negotiated wire format of an open stream.
// It is fixed for the lifetime of the stream.
type StreamFormat struct {
	Channels   int
	SampleRate int
	BitDepth   int
	Encoding   Encoding
}

// Supported reports whether frames can be encoded into this format.
// Only 16-bit int, 32-bit int and 32-bit float are.
func (f StreamFormat) Supported() bool {
	switch {
	case f.Encoding == EncodingInt && f.BitDepth == 16:
		return true
	case f.Encoding == EncodingInt && f.BitDepth == 32:
		return true
	case f.Encoding == EncodingFloat && f.BitDepth == 32:
		return true
	}
	return false
}

// BytesPerSample returns the size of one channel sample on the wire
func (f StreamFormat) BytesPerSample() int {
	return f.BitDepth / 8
}

// FrameSize returns the byte stride of one frame on the wire
func (f StreamFormat) FrameSize() int {
	return f.Channels * f.BytesPerSample()
}

// FramesForDuration returns how many frames play in ms milliseconds
func (f StreamFormat) FramesForDuration(ms int) int {
	return f.SampleRate * ms / 1000
}

func (f StreamFormat) String() string {
	prefix := "S"
	switch f.Encoding {
	case EncodingFloat:
		prefix = "F"
	case EncodingUnknown:
		prefix = "?"
	}
	return fmt.Sprintf("%s%d %dHz %dch", prefix, f.BitDepth, f.SampleRate, f.Channels)
}

// Endpoint is an output device reported by a backend
type Endpoint struct {
	Name    string // user-facing, unique within one listing
	ID      string // opaque, backend specific
	Default bool
}

// Frame holds one amplitude per channel in [-1.0, 1.0]
type Frame []float64

// Float64ToInt16 converts an amplitude to a 16-bit sample
func Float64ToInt16(amplitude float64) int16 {
	return int16(math.Round(Clamp(amplitude) * Int16Scale))
}

// Float64ToInt32 converts an amplitude to a 32-bit sample
func Float64ToInt32(amplitude float64) int32 {
	return int32(math.Round(Clamp(amplitude) * Int32Scale))
}

// Float64ToFloat32 converts an amplitude to a clamped 32-bit float sample
func Float64ToFloat32(amplitude float64) float32 {
	return float32(Clamp(amplitude))
}

// SampleFromInt16 converts a 16-bit sample to an amplitude
func SampleFromInt16(sample int16) float64 {
	return float64(sample) / 32768.0
}

// Clamp limits an amplitude to [-1.0, 1.0]. NaN becomes silence.
func Clamp(amplitude float64) float64 {
	if math.IsNaN(amplitude) {
		return 0
	}
	return math.Max(-1.0, math.Min(1.0, amplitude))
}
