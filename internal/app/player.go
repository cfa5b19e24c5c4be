// ABOUTME: Playback loop for the pcmout player
// ABOUTME: Feeds a source into the output, applies TUI requests and reports status
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/Resonate-Protocol/pcmout/internal/source"
	"github.com/Resonate-Protocol/pcmout/internal/ui"
	"github.com/Resonate-Protocol/pcmout/pkg/audio"
	"github.com/Resonate-Protocol/pcmout/pkg/audio/output"
	"github.com/Resonate-Protocol/pcmout/pkg/pcmout"
	"github.com/google/uuid"
)

const (
	readFrames     = 256
	timeoutBackoff = time.Millisecond
	statusInterval = 500 * time.Millisecond
)

// Config holds player configuration
type Config struct {
	// Duration stops playback after this much audio; 0 plays until the source ends
	Duration time.Duration

	// Controls receives requests from the TUI (optional)
	Controls *ui.Controls

	// OnStatus is called from the playback goroutine with display updates (optional)
	OnStatus func(ui.StatusMsg)
}

// Player pushes one source through one output.
// Every call into the output happens on the goroutine running Run.
type Player struct {
	config Config
	output *pcmout.Audio
	source source.Source
	frames []audio.Frame
	frame  audio.Frame
	played int64
	logger *slog.Logger
}

// New creates a player over an open output and source
func New(config Config, out *pcmout.Audio, src source.Source) *Player {
	return &Player{
		config: config,
		output: out,
		source: src,
		frames: make([]audio.Frame, readFrames),
		logger: slog.Default().With("player", uuid.New().String()),
	}
}

// Run plays until the source ends, the duration elapses, ctx is cancelled
// or the TUI asks to quit
func (p *Player) Run(ctx context.Context) error {
	p.logger.Info("starting playback",
		"source", p.source.Name(),
		"rate", p.source.SampleRate(),
		"channels", p.source.Channels())
	p.report(ui.StatusMsg{Source: p.source.Name()})
	p.reportStream()

	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-p.quit():
			p.logger.Info("received quit signal from TUI")
			return nil
		case req := <-p.requests():
			p.handleControl(req)
			continue
		case <-ticker.C:
			p.reportStats()
		default:
		}

		n, err := p.source.Read(p.frames)
		if err := p.play(ctx, p.frames[:n]); err != nil {
			return err
		}
		if errors.Is(err, io.EOF) {
			p.logger.Info("source finished", "frames", p.played)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read source: %w", err)
		}
		if p.done() {
			p.logger.Info("duration reached", "frames", p.played)
			return nil
		}
	}
}

// play pushes frames, retrying non-blocking timeouts
func (p *Player) play(ctx context.Context, frames []audio.Frame) error {
	for _, src := range frames {
		channels := p.output.Status().Format.Channels
		if cap(p.frame) < channels {
			p.frame = make(audio.Frame, channels)
		}
		p.frame = p.frame[:channels]
		source.Remix(p.frame, src)

		for {
			err := p.output.Output(p.frame)
			if err == nil {
				break
			}
			if !errors.Is(err, output.ErrWaitTimeout) {
				return fmt.Errorf("output failed: %w", err)
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(timeoutBackoff):
			}
		}
		p.played++
	}
	return nil
}

func (p *Player) done() bool {
	if p.config.Duration <= 0 {
		return false
	}
	limit := int64(p.config.Duration.Seconds() * float64(p.source.SampleRate()))
	return p.played >= limit
}

// handleControl applies one TUI request. Rejected requests are reported,
// never fatal; the output keeps its previous configuration.
func (p *Player) handleControl(req ui.ControlMsg) {
	status := p.output.Status()
	var err error

	switch req.Kind {
	case ui.ToggleExclusive:
		err = p.output.SetExclusive(!status.Exclusive)
	case ui.ToggleBlocking:
		err = p.output.SetBlocking(!status.Blocking)
	case ui.NextDevice:
		err = p.output.SetDevice(nextOf(p.output.SupportedDevices(), status.Device))
	case ui.LatencyUp:
		err = p.output.SetLatency(stepLatency(p.output.SupportedLatencies(), status.LatencyMs, 1))
	case ui.LatencyDown:
		err = p.output.SetLatency(stepLatency(p.output.SupportedLatencies(), status.LatencyMs, -1))
	case ui.ClearBuffer:
		err = p.output.Clear()
	}

	if err != nil {
		p.logger.Warn("control request rejected", "request", req.Kind.String(), "error", err)
		p.report(ui.StatusMsg{Err: err.Error()})
	} else {
		p.logger.Info("control request applied", "request", req.Kind.String())
	}
	p.reportStream()
}

// nextOf returns the entry after current, wrapping around
func nextOf(names []string, current string) string {
	if len(names) == 0 {
		return current
	}
	i := slices.Index(names, current)
	return names[(i+1)%len(names)]
}

// stepLatency moves dir steps through the sorted supported latencies.
// Values at either end are returned unchanged.
func stepLatency(latencies []int, current, dir int) int {
	sorted := slices.Clone(latencies)
	slices.Sort(sorted)

	i, found := slices.BinarySearch(sorted, current)
	switch {
	case dir > 0 && found && i+1 < len(sorted):
		return sorted[i+1]
	case dir > 0 && !found && i < len(sorted):
		return sorted[i]
	case dir < 0 && i > 0:
		return sorted[i-1]
	}
	return current
}

func (p *Player) reportStream() {
	status := p.output.Status()
	exclusive, blocking := status.Exclusive, status.Blocking
	p.report(ui.StatusMsg{
		Driver:     status.Driver,
		Device:     status.Device,
		Exclusive:  &exclusive,
		Blocking:   &blocking,
		LatencyMs:  status.LatencyMs,
		Encoding:   encodingPrefix(status.Format.Encoding),
		SampleRate: status.Format.SampleRate,
		Channels:   status.Format.Channels,
		BitDepth:   status.Format.BitDepth,
	})
}

func (p *Player) reportStats() {
	stats := p.output.Status().Stats
	p.report(ui.StatusMsg{
		Pushed:           stats.FramesPushed,
		Delivered:        stats.FramesDelivered,
		Partial:          stats.PartialDeliveries,
		Recoveries:       stats.Recoveries,
		Timeouts:         stats.WaitTimeouts,
		Reconfigurations: stats.Reconfigurations,
		Queued:           stats.Queued,
	})
}

func (p *Player) report(msg ui.StatusMsg) {
	if p.config.OnStatus != nil {
		p.config.OnStatus(msg)
	}
}

func (p *Player) requests() <-chan ui.ControlMsg {
	if p.config.Controls == nil {
		return nil
	}
	return p.config.Controls.Requests
}

func (p *Player) quit() <-chan struct{} {
	if p.config.Controls == nil {
		return nil
	}
	return p.config.Controls.Quit
}

func encodingPrefix(e audio.Encoding) string {
	switch e {
	case audio.EncodingInt:
		return "S"
	case audio.EncodingFloat:
		return "F"
	}
	return "?"
}

// Played returns how many frames reached the output
func (p *Player) Played() int64 {
	return p.played
}
