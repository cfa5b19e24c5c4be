// ABOUTME: PCM wire encoder
// ABOUTME: Encodes float frames to 16-bit int, 32-bit int or 32-bit float PCM bytes
package encode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/Resonate-Protocol/pcmout/pkg/audio"
)

// ErrUnsupportedFormat is returned for wire formats frames cannot be encoded into
var ErrUnsupportedFormat = errors.New("unsupported wire format")

// PCMEncoder encodes interleaved little-endian PCM
type PCMEncoder struct {
	format audio.StreamFormat
	stride int
	put    func(b []byte, amplitude float64)
}

// NewPCM creates a new PCM encoder for the given format
func NewPCM(format audio.StreamFormat) (*PCMEncoder, error) {
	if format.Channels <= 0 {
		return nil, fmt.Errorf("invalid channel count: %d", format.Channels)
	}

	var put func(b []byte, amplitude float64)
	switch {
	case format.Encoding == audio.EncodingInt && format.BitDepth == 16:
		put = putInt16
	case format.Encoding == audio.EncodingInt && format.BitDepth == 32:
		put = putInt32
	case format.Encoding == audio.EncodingFloat && format.BitDepth == 32:
		put = putFloat32
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	return &PCMEncoder{
		format: format,
		stride: format.FrameSize(),
		put:    put,
	}, nil
}

// Format returns the wire format being produced
func (e *PCMEncoder) Format() audio.StreamFormat {
	return e.format
}

// Encode writes frames into dst, advancing by one frame stride per frame.
// Missing channels in a frame are written as silence and extra ones ignored.
func (e *PCMEncoder) Encode(dst []byte, frames []audio.Frame) (int, error) {
	need := len(frames) * e.stride
	if len(dst) < need {
		return 0, fmt.Errorf("buffer too small: have %d bytes, need %d", len(dst), need)
	}

	size := e.format.BytesPerSample()
	offset := 0
	for _, frame := range frames {
		for ch := 0; ch < e.format.Channels; ch++ {
			var amplitude float64
			if ch < len(frame) {
				amplitude = frame[ch]
			}
			e.put(dst[offset+ch*size:], amplitude)
		}
		offset += e.stride
	}

	return offset, nil
}

func putInt16(b []byte, amplitude float64) {
	binary.LittleEndian.PutUint16(b, uint16(audio.Float64ToInt16(amplitude)))
}

func putInt32(b []byte, amplitude float64) {
	binary.LittleEndian.PutUint32(b, uint32(audio.Float64ToInt32(amplitude)))
}

func putFloat32(b []byte, amplitude float64) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(audio.Float64ToFloat32(amplitude)))
}
