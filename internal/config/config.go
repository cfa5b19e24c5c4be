// ABOUTME: Player configuration backed by viper
// ABOUTME: Merges defaults, an optional config file, PCMOUT_ environment variables and flags
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the player settings
type Config struct {
	Driver    string
	Device    string
	Exclusive bool
	Blocking  bool
	Frequency int // Hz, 0 keeps the driver's choice
	Latency   int // ms, 0 keeps the driver's choice
	Channels  int // 0 keeps the driver's choice
	Input     string
	Tone      float64 // Hz of the test tone when Input is empty
	Duration  time.Duration
	LogLevel  string
	LogFile   string
	NoTUI     bool
}

func setViperDefaults(v *viper.Viper) {
	v.SetDefault("driver", "")
	v.SetDefault("device", "")
	v.SetDefault("exclusive", false)
	v.SetDefault("blocking", true)
	v.SetDefault("frequency", 0)
	v.SetDefault("latency", 0)
	v.SetDefault("channels", 0)
	v.SetDefault("input", "")
	v.SetDefault("tone", 440.0)
	v.SetDefault("duration", time.Duration(0))
	v.SetDefault("loglevel", "info")
	v.SetDefault("logfile", "")
	v.SetDefault("notui", false)
}

// NewFlagSet declares the player's command line flags
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("config", "", "Path to a config file (yaml, toml or json)")
	fs.StringP("driver", "d", "", "Output driver (malgo, oto, portaudio, null)")
	fs.String("device", "", "Output device name (default: system default)")
	fs.Bool("exclusive", false, "Open the device in exclusive mode")
	fs.Bool("blocking", true, "Block on the device instead of returning timeouts")
	fs.Int("frequency", 0, "Sample rate in Hz")
	fs.Int("latency", 0, "Target latency in milliseconds")
	fs.Int("channels", 0, "Channel count")
	fs.StringP("input", "i", "", "WAV file to play (default: test tone)")
	fs.Float64("tone", 440, "Test tone frequency in Hz")
	fs.Duration("duration", 0, "Stop after this long (0 plays until the input ends)")
	fs.String("loglevel", "info", "Log level (none, error, warn, info, debug)")
	fs.String("logfile", "", "Write JSON logs to this file instead of stdout")
	fs.Bool("notui", false, "Disable the interactive display")
	return fs
}

// Load parses args against fs and resolves every setting.
// Flags win over environment variables, which win over the config file.
func Load(fs *pflag.FlagSet, args []string) (*Config, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	setViperDefaults(v)
	v.SetEnvPrefix("PCMOUT")
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
			slog.Info("no config file found", "path", path)
		}
	}

	cfg := &Config{
		Driver:    v.GetString("driver"),
		Device:    v.GetString("device"),
		Exclusive: v.GetBool("exclusive"),
		Blocking:  v.GetBool("blocking"),
		Frequency: v.GetInt("frequency"),
		Latency:   v.GetInt("latency"),
		Channels:  v.GetInt("channels"),
		Input:     v.GetString("input"),
		Tone:      v.GetFloat64("tone"),
		Duration:  v.GetDuration("duration"),
		LogLevel:  v.GetString("loglevel"),
		LogFile:   v.GetString("logfile"),
		NoTUI:     v.GetBool("notui"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Frequency < 0:
		return fmt.Errorf("invalid frequency: %d", c.Frequency)
	case c.Latency < 0:
		return fmt.Errorf("invalid latency: %d", c.Latency)
	case c.Channels < 0:
		return fmt.Errorf("invalid channel count: %d", c.Channels)
	case c.Input == "" && c.Tone <= 0:
		return fmt.Errorf("invalid tone frequency: %g", c.Tone)
	case c.Duration < 0:
		return fmt.Errorf("invalid duration: %s", c.Duration)
	}
	return nil
}
