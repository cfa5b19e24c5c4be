// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines StreamFormat, Endpoint, Frame types and float sample conversion
// Package audio provides the value types shared by every output backend.
//
// This package defines:
//   - StreamFormat: the negotiated wire format of a hardware stream
//   - Endpoint: an output device as reported by a backend's device directory
//   - Frame: one amplitude per channel, in [-1.0, 1.0]
//
// It also provides the float to wire conversions used when frames are handed
// to hardware:
//   - 16-bit signed integer: round(amplitude * 32767)
//   - 32-bit signed integer: round(amplitude * 2147483647)
//   - 32-bit float: amplitude clamped to [-1.0, 1.0]
//
// Example:
//
//	format := audio.StreamFormat{
//	    Channels:   2,
//	    SampleRate: 48000,
//	    BitDepth:   16,
//	    Encoding:   audio.EncodingInt,
//	}
//
//	sample := audio.Float64ToInt16(0.5) // 16384
package audio
