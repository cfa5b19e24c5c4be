// ABOUTME: Unit tests for PCM encoder
// ABOUTME: Tests 16-bit int, 32-bit int and 32-bit float encoding
package encode

import (
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/Resonate-Protocol/pcmout/pkg/audio"
)

func TestNewPCM(t *testing.T) {
	tests := []struct {
		name        string
		format      audio.StreamFormat
		wantErr     bool
		errContains string
	}{
		{
			name:    "valid 16-bit int",
			format:  audio.StreamFormat{Channels: 2, SampleRate: 48000, BitDepth: 16, Encoding: audio.EncodingInt},
			wantErr: false,
		},
		{
			name:    "valid 32-bit int",
			format:  audio.StreamFormat{Channels: 2, SampleRate: 48000, BitDepth: 32, Encoding: audio.EncodingInt},
			wantErr: false,
		},
		{
			name:    "valid 32-bit float",
			format:  audio.StreamFormat{Channels: 6, SampleRate: 96000, BitDepth: 32, Encoding: audio.EncodingFloat},
			wantErr: false,
		},
		{
			name:        "24-bit int",
			format:      audio.StreamFormat{Channels: 2, SampleRate: 48000, BitDepth: 24, Encoding: audio.EncodingInt},
			wantErr:     true,
			errContains: "unsupported wire format",
		},
		{
			name:        "no channels",
			format:      audio.StreamFormat{Channels: 0, SampleRate: 48000, BitDepth: 16, Encoding: audio.EncodingInt},
			wantErr:     true,
			errContains: "invalid channel count",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoder, err := NewPCM(tt.format)
			if tt.wantErr {
				if err == nil {
					t.Errorf("NewPCM() expected error, got nil")
				} else if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("NewPCM() error = %v, want error containing %v", err, tt.errContains)
				}
			} else {
				if err != nil {
					t.Errorf("NewPCM() unexpected error = %v", err)
				}
				if encoder == nil {
					t.Errorf("NewPCM() returned nil encoder")
				}
			}
		})
	}
}

func TestNewPCMUnsupportedIsSentinel(t *testing.T) {
	_, err := NewPCM(audio.StreamFormat{Channels: 2, BitDepth: 8, Encoding: audio.EncodingInt})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestPCMEncoder_Encode16Bit(t *testing.T) {
	encoder, err := NewPCM(audio.StreamFormat{Channels: 2, SampleRate: 44100, BitDepth: 16, Encoding: audio.EncodingInt})
	if err != nil {
		t.Fatalf("NewPCM() failed: %v", err)
	}

	frames := []audio.Frame{
		{0, 1.0},
		{-1.0, 0.5},
	}
	dst := make([]byte, 8)

	n, err := encoder.Encode(dst, frames)
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}
	if n != 8 {
		t.Errorf("Encode() wrote %d bytes, want 8", n)
	}

	expected := []int16{0, 32767, -32767, 16384}
	for i, want := range expected {
		got := int16(binary.LittleEndian.Uint16(dst[i*2:]))
		if got != want {
			t.Errorf("Sample %d: got %d, want %d", i, got, want)
		}
	}
}

func TestPCMEncoder_Encode32BitInt(t *testing.T) {
	encoder, err := NewPCM(audio.StreamFormat{Channels: 1, SampleRate: 48000, BitDepth: 32, Encoding: audio.EncodingInt})
	if err != nil {
		t.Fatalf("NewPCM() failed: %v", err)
	}

	dst := make([]byte, 8)
	if _, err := encoder.Encode(dst, []audio.Frame{{1.0}, {-1.0}}); err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}

	if got := int32(binary.LittleEndian.Uint32(dst)); got != 2147483647 {
		t.Errorf("got %d, want 2147483647", got)
	}
	if got := int32(binary.LittleEndian.Uint32(dst[4:])); got != -2147483647 {
		t.Errorf("got %d, want -2147483647", got)
	}
}

func TestPCMEncoder_EncodeFloat(t *testing.T) {
	encoder, err := NewPCM(audio.StreamFormat{Channels: 2, SampleRate: 48000, BitDepth: 32, Encoding: audio.EncodingFloat})
	if err != nil {
		t.Fatalf("NewPCM() failed: %v", err)
	}

	dst := make([]byte, 8)
	if _, err := encoder.Encode(dst, []audio.Frame{{0.25, 4.0}}); err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}

	if got := math.Float32frombits(binary.LittleEndian.Uint32(dst)); got != 0.25 {
		t.Errorf("got %f, want 0.25", got)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(dst[4:])); got != 1.0 {
		t.Errorf("clamp failed: got %f, want 1.0", got)
	}
}

func TestPCMEncoder_ShortFramePadsSilence(t *testing.T) {
	encoder, err := NewPCM(audio.StreamFormat{Channels: 2, SampleRate: 48000, BitDepth: 16, Encoding: audio.EncodingInt})
	if err != nil {
		t.Fatalf("NewPCM() failed: %v", err)
	}

	dst := []byte{0xFF, 0xFF, 0xFF, 0xFF}
	if _, err := encoder.Encode(dst, []audio.Frame{{0.5}}); err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}
	if dst[2] != 0 || dst[3] != 0 {
		t.Errorf("missing channel not silenced: %v", dst)
	}
}

func TestPCMEncoder_BufferTooSmall(t *testing.T) {
	encoder, err := NewPCM(audio.StreamFormat{Channels: 2, SampleRate: 48000, BitDepth: 16, Encoding: audio.EncodingInt})
	if err != nil {
		t.Fatalf("NewPCM() failed: %v", err)
	}

	if _, err := encoder.Encode(make([]byte, 3), []audio.Frame{{0, 0}}); err == nil {
		t.Error("expected error for short buffer")
	}
}
