// ABOUTME: Wire encoder package for converting float frames to PCM bytes
// ABOUTME: Provides Encoder interface and the PCM implementation
// Package encode converts float frames into the byte layout a hardware
// stream expects.
//
// Supports: 16-bit int, 32-bit int and 32-bit float, little-endian,
// interleaved.
//
// Example:
//
//	encoder, err := encode.NewPCM(format)
//	n, err := encoder.Encode(dst, frames)
package encode
