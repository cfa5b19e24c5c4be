// ABOUTME: Tests for audio types
// ABOUTME: Tests format helpers and sample conversion functions
package audio

import (
	"math"
	"testing"
)

func TestFloat64ToInt16(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected int16
	}{
		{"zero", 0, 0},
		{"half", 0.5, 16384},
		{"negative half", -0.5, -16384},
		{"max", 1.0, 32767},
		{"min", -1.0, -32767},
		{"over range", 1.5, 32767},
		{"under range", -3, -32767},
		{"nan", math.NaN(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Float64ToInt16(tt.input)
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

func TestFloat64ToInt32(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected int32
	}{
		{"zero", 0, 0},
		{"max", 1.0, 2147483647},
		{"min", -1.0, -2147483647},
		{"quarter", 0.25, 536870912},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Float64ToInt32(tt.input)
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

func TestFloat64ToFloat32Clamps(t *testing.T) {
	if got := Float64ToFloat32(2.0); got != 1.0 {
		t.Errorf("expected 1.0, got %f", got)
	}
	if got := Float64ToFloat32(-2.0); got != -1.0 {
		t.Errorf("expected -1.0, got %f", got)
	}
	if got := Float64ToFloat32(0.25); got != 0.25 {
		t.Errorf("expected 0.25, got %f", got)
	}
}

func TestRoundTrip16Bit(t *testing.T) {
	// Every amplitude must survive within one quantization step
	step := 1.0 / Int16Scale
	for i := -1000; i <= 1000; i++ {
		amplitude := float64(i) / 1000.0
		back := float64(Float64ToInt16(amplitude)) / Int16Scale
		if math.Abs(back-amplitude) > step {
			t.Errorf("round-trip failed: %f -> %f", amplitude, back)
		}
	}
}

func TestSampleFromInt16(t *testing.T) {
	if got := SampleFromInt16(-32768); got != -1.0 {
		t.Errorf("expected -1.0, got %f", got)
	}
	if got := SampleFromInt16(16384); got != 0.5 {
		t.Errorf("expected 0.5, got %f", got)
	}
}

func TestStreamFormatSupported(t *testing.T) {
	tests := []struct {
		format   StreamFormat
		expected bool
	}{
		{StreamFormat{Channels: 2, BitDepth: 16, Encoding: EncodingInt}, true},
		{StreamFormat{Channels: 2, BitDepth: 32, Encoding: EncodingInt}, true},
		{StreamFormat{Channels: 2, BitDepth: 32, Encoding: EncodingFloat}, true},
		{StreamFormat{Channels: 2, BitDepth: 24, Encoding: EncodingInt}, false},
		{StreamFormat{Channels: 2, BitDepth: 64, Encoding: EncodingFloat}, false},
		{StreamFormat{Channels: 2, BitDepth: 16, Encoding: EncodingUnknown}, false},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			if got := tt.format.Supported(); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestStreamFormatSizes(t *testing.T) {
	f := StreamFormat{Channels: 2, SampleRate: 48000, BitDepth: 32, Encoding: EncodingFloat}

	if f.BytesPerSample() != 4 {
		t.Errorf("expected 4 bytes per sample, got %d", f.BytesPerSample())
	}
	if f.FrameSize() != 8 {
		t.Errorf("expected frame size 8, got %d", f.FrameSize())
	}
	if f.FramesForDuration(20) != 960 {
		t.Errorf("expected 960 frames in 20ms, got %d", f.FramesForDuration(20))
	}
	if f.String() != "F32 48000Hz 2ch" {
		t.Errorf("unexpected string %q", f.String())
	}
}
