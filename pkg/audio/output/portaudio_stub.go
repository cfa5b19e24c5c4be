//go:build !portaudio

// ABOUTME: PortAudio stub when library not available
// ABOUTME: Provides compile-time placeholder when PortAudio not installed
package output

import (
	"errors"
	"log/slog"

	"github.com/Resonate-Protocol/pcmout/pkg/audio"
)

// PortAudioAvailable reports whether this binary was built with PortAudio
const PortAudioAvailable = false

var errPortAudioDisabled = errors.New("PortAudio support not enabled (build with -tags portaudio)")

// PortAudio output backend (stub)
type PortAudio struct{}

// NewPortAudio always fails without the portaudio build tag
func NewPortAudio() (*PortAudio, error) {
	return nil, errPortAudioDisabled
}

func (p *PortAudio) Name() string                         { return "portaudio" }
func (p *PortAudio) Endpoints() ([]audio.Endpoint, error) { return nil, errPortAudioDisabled }
func (p *PortAudio) Defaults() Params                     { return Params{} }
func (p *PortAudio) Close() error                         { return nil }

func (p *PortAudio) Capabilities(current Params, format audio.StreamFormat) Capabilities {
	return Capabilities{}
}

func (p *PortAudio) Open(endpoint audio.Endpoint, params Params, logger *slog.Logger) (Stream, error) {
	return nil, errPortAudioDisabled
}
