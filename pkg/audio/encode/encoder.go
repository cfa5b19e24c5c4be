// ABOUTME: Encoder interface definition
// ABOUTME: Common interface for wire encoders
package encode

import "github.com/Resonate-Protocol/pcmout/pkg/audio"

// Encoder writes frames into a hardware buffer
type Encoder interface {
	// Encode writes frames into dst and returns the number of bytes written
	Encode(dst []byte, frames []audio.Frame) (int, error)

	// Format returns the wire format being produced
	Format() audio.StreamFormat
}
