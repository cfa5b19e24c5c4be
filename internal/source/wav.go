// ABOUTME: WAV file source
// ABOUTME: Streams integer PCM from a .wav file as normalized frames
package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Resonate-Protocol/pcmout/pkg/audio"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAV reads frames from a PCM wave file
type WAV struct {
	path     string
	file     *os.File
	decoder  *wav.Decoder
	buf      *goaudio.IntBuffer
	pending  []int // decoded samples not yet returned
	channels int
	scale    float64
	offset   int // unsigned 8-bit samples are centred on 128
}

// NewWAV opens a wave file for streaming
func NewWAV(path string) (*WAV, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		f.Close()
		return nil, fmt.Errorf("not a valid wav file: %s", path)
	}
	if err := decoder.FwdToPCM(); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to find PCM data: %w", err)
	}

	bitDepth := int(decoder.BitDepth)
	channels := int(decoder.NumChans)
	if channels <= 0 || bitDepth <= 0 || bitDepth > 32 {
		f.Close()
		return nil, fmt.Errorf("unsupported wav format: %d channels, %d bits", channels, bitDepth)
	}

	w := &WAV{
		path:     path,
		file:     f,
		decoder:  decoder,
		channels: channels,
		scale:    float64(int64(1) << (bitDepth - 1)),
	}
	if bitDepth == 8 {
		w.offset = 128
	}
	w.buf = &goaudio.IntBuffer{
		Format: &goaudio.Format{NumChannels: channels, SampleRate: int(decoder.SampleRate)},
		Data:   make([]int, 4096*channels),
	}
	return w, nil
}

// Read decodes up to len(frames) frames; a trailing partial frame is dropped
func (w *WAV) Read(frames []audio.Frame) (int, error) {
	makeFrames(frames, w.channels)

	n := 0
	for n < len(frames) {
		if len(w.pending) < w.channels {
			if err := w.fill(); err != nil {
				if n > 0 && errors.Is(err, io.EOF) {
					return n, nil
				}
				return n, err
			}
			continue
		}

		for c := 0; c < w.channels; c++ {
			frames[n][c] = float64(w.pending[c]-w.offset) / w.scale
		}
		w.pending = w.pending[w.channels:]
		n++
	}
	return n, nil
}

func (w *WAV) fill() error {
	got, err := w.decoder.PCMBuffer(w.buf)
	if err != nil {
		return fmt.Errorf("failed to decode wav: %w", err)
	}
	if got == 0 {
		return io.EOF
	}
	// keep a leftover partial frame ahead of the new samples
	next := make([]int, 0, len(w.pending)+got)
	next = append(next, w.pending...)
	w.pending = append(next, w.buf.Data[:got]...)
	return nil
}

func (w *WAV) SampleRate() int { return int(w.decoder.SampleRate) }
func (w *WAV) Channels() int   { return w.channels }
func (w *WAV) Name() string    { return filepath.Base(w.path) }

func (w *WAV) Close() error {
	return w.file.Close()
}
