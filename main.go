// ABOUTME: Entry point for the pcmout player
// ABOUTME: Parses configuration, opens the output and plays a WAV file or test tone
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Resonate-Protocol/pcmout/internal/app"
	"github.com/Resonate-Protocol/pcmout/internal/config"
	"github.com/Resonate-Protocol/pcmout/internal/logging"
	"github.com/Resonate-Protocol/pcmout/internal/source"
	"github.com/Resonate-Protocol/pcmout/internal/ui"
	"github.com/Resonate-Protocol/pcmout/internal/version"
	"github.com/Resonate-Protocol/pcmout/pkg/pcmout"
	tea "github.com/charmbracelet/bubbletea"
)

const defaultTUILogFile = "pcmout.log"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "pcmout: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(config.NewFlagSet(os.Args[0]), os.Args[1:])
	if err != nil {
		return err
	}

	useTUI := !cfg.NoTUI

	// TUI mode: never log to the terminal
	logFile := cfg.LogFile
	if useTUI && logFile == "" {
		logFile = defaultTUILogFile
	}
	f, err := logging.ConfigureDefaultLogger(cfg.LogLevel, logFile, slog.HandlerOptions{})
	if err != nil {
		return err
	}
	if f != nil {
		defer func() { _ = f.Close() }()
	}

	slog.Info("starting player", "product", version.Product, "version", version.Version)

	out, err := pcmout.New(pcmout.Config{
		Driver:     cfg.Driver,
		Device:     cfg.Device,
		SampleRate: cfg.Frequency,
		LatencyMs:  cfg.Latency,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := out.Close(); err != nil {
			slog.Error("error closing output", "error", err)
		}
	}()

	if err := applyModes(out, cfg); err != nil {
		return err
	}

	src, err := openSource(out, cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	// TUI setup
	var tuiProg *tea.Program
	var controls *ui.Controls

	if useTUI {
		controls = ui.NewControls()
		tuiProg = ui.Run(controls)
		go func() {
			if _, err := tuiProg.Run(); err != nil {
				slog.Error("TUI stopped", "error", err)
			}
		}()
		defer tuiProg.Quit()
	}

	// Helper to update TUI
	updateTUI := func(msg ui.StatusMsg) {
		if tuiProg != nil {
			tuiProg.Send(msg)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	player := app.New(app.Config{
		Duration: cfg.Duration,
		Controls: controls,
		OnStatus: updateTUI,
	}, out, src)

	if err := player.Run(ctx); err != nil {
		return err
	}

	slog.Info("player stopped", "frames", player.Played())
	return nil
}

// applyModes asks for the configured modes; only explicit requests are made
func applyModes(out *pcmout.Audio, cfg *config.Config) error {
	if cfg.Exclusive {
		if err := out.SetExclusive(true); err != nil {
			return fmt.Errorf("exclusive mode: %w", err)
		}
	}
	if !cfg.Blocking {
		if err := out.SetBlocking(false); err != nil {
			return fmt.Errorf("non-blocking mode: %w", err)
		}
	}
	if cfg.Channels != 0 && cfg.Channels != out.Status().Format.Channels {
		if err := out.SetChannels(cfg.Channels); err != nil {
			return fmt.Errorf("channels: %w", err)
		}
	}
	return nil
}

// openSource opens the WAV input or a test tone matching the stream.
// A file's rate is requested from the output; when the driver refuses it
// the file plays at the stream rate.
func openSource(out *pcmout.Audio, cfg *config.Config) (source.Source, error) {
	format := out.Status().Format

	if cfg.Input == "" {
		return source.NewTone(cfg.Tone, format.SampleRate, format.Channels), nil
	}

	wav, err := source.NewWAV(cfg.Input)
	if err != nil {
		return nil, err
	}

	if cfg.Frequency == 0 && wav.SampleRate() != format.SampleRate {
		if err := out.SetFrequency(wav.SampleRate()); err != nil {
			slog.Warn("playing at stream rate",
				"file_rate", wav.SampleRate(),
				"stream_rate", format.SampleRate,
				"error", err)
		}
	}
	return wav, nil
}
