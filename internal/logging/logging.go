// ABOUTME: Default slog logger configuration
// ABOUTME: Sets level and destination (stdout text or JSON file) for entry points
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// ConfigureDefaultLogger sets slog's default logger from a level name and an
// optional log file.
//
// Valid levels are "none", "error", "warn", "info" and "debug". An empty
// logFile logs text to stdout; otherwise the file is truncated and receives
// JSON records. The returned file, if any, must be closed by the caller:
//
//	logFile, err := logging.ConfigureDefaultLogger("info", "", slog.HandlerOptions{})
//	if logFile != nil {
//		defer logFile.Close()
//	}
func ConfigureDefaultLogger(logLevel string, logFile string, loggerOptions slog.HandlerOptions) (*os.File, error) {
	switch logLevel {
	case "none":
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return nil, nil
	case "error":
		loggerOptions.Level = slog.LevelError
	case "warn":
		loggerOptions.Level = slog.LevelWarn
	case "info":
		loggerOptions.Level = slog.LevelInfo
	case "debug":
		loggerOptions.Level = slog.LevelDebug
	default:
		return nil, fmt.Errorf("unexpected log level %q", logLevel)
	}

	if logFile == "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &loggerOptions)))
		return nil, nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(f, &loggerOptions)))
	return f, nil
}
