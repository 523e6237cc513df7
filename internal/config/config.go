// Package config holds all configuration types and loading logic for alarmd.
// The core protocol needs no configuration; everything here is an
// operational knob with a safe default, so alarmd runs fine with no config
// file at all.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for an alarmd process.
type Config struct {
	// TickInterval is one polling tick: the pause between dispatcher retries
	// on an empty queue and between worker status reports. A Go duration
	// string; parsed by Validate.
	TickInterval string `yaml:"tick_interval"`

	// Prompt is printed before each input line is read.
	Prompt string `yaml:"prompt"`

	Alarms    AlarmConfig    `yaml:"alarms"`
	Producers ProducerConfig `yaml:"producers"`
	Journal   JournalConfig  `yaml:"journal"`
	Log       LogConfig      `yaml:"log"`

	// tick caches the parsed TickInterval; set by Validate.
	tick time.Duration
}

// AlarmConfig bounds individual alarm requests.
type AlarmConfig struct {
	// MaxMessageLen caps alarm message text in bytes; longer input is
	// truncated at parse time.
	MaxMessageLen int `yaml:"max_message_len"`
}

// ProducerConfig sets rate limiting applied to alarm submission.
type ProducerConfig struct {
	// MaxRate is accepted alarms per second. 0 disables rate limiting.
	MaxRate int `yaml:"max_rate"`
	// Burst allows temporary spikes above MaxRate.
	Burst int `yaml:"burst"`
}

// JournalConfig controls the optional bbolt event journal.
type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LogConfig controls the structured operational log on stderr.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `yaml:"level"`
}

// Default returns a Config populated with safe, sensible defaults.
// It is the canonical source of truth for default values.
func Default() *Config {
	return &Config{
		TickInterval: "1s",
		Prompt:       "alarm> ",
		Alarms: AlarmConfig{
			MaxMessageLen: 64,
		},
		Producers: ProducerConfig{
			MaxRate: 0, // unlimited
			Burst:   1,
		},
		Journal: JournalConfig{
			Enabled: false,
			Path:    "./alarmd-journal.db",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML config file at path and overlays it on top of Default().
// If the file does not exist the default config is returned without error.
//
// After loading the file, environment variables are applied as overrides:
//
//	ALARMD_TICK_INTERVAL — Go duration string, e.g. "250ms"
//	ALARMD_JOURNAL_PATH  — sets journal.path and enables the journal
//	ALARMD_LOG_LEVEL     — sets log.level
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(cfg)
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnv(cfg)
	return cfg, nil
}

// applyEnv overlays environment variable overrides onto cfg.
func applyEnv(cfg *Config) {
	if v := os.Getenv("ALARMD_TICK_INTERVAL"); v != "" {
		cfg.TickInterval = v
	}
	if v := os.Getenv("ALARMD_JOURNAL_PATH"); v != "" {
		cfg.Journal.Path = v
		cfg.Journal.Enabled = true
	}
	if v := os.Getenv("ALARMD_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// Validate checks that the config values are consistent and within
// acceptable ranges. It returns the first error found.
func (c *Config) Validate() error {
	d, err := time.ParseDuration(c.TickInterval)
	if err != nil {
		return fmt.Errorf("tick_interval %q is not a duration: %w", c.TickInterval, err)
	}
	if d <= 0 {
		return errors.New("tick_interval must be positive")
	}
	c.tick = d
	if c.Alarms.MaxMessageLen < 1 {
		return errors.New("alarms.max_message_len must be at least 1")
	}
	if c.Producers.MaxRate < 0 {
		return errors.New("producers.max_rate must be >= 0")
	}
	if c.Producers.MaxRate > 0 && c.Producers.Burst < 1 {
		return errors.New("producers.burst must be at least 1 when rate limiting is enabled")
	}
	if c.Journal.Enabled && c.Journal.Path == "" {
		return errors.New("journal.path must not be empty when the journal is enabled")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("log.level %q must be one of debug, info, warn, error", c.Log.Level)
	}
	return nil
}

// Tick returns the parsed tick interval. Valid only after Validate; before
// that it falls back to the default of one second.
func (c *Config) Tick() time.Duration {
	if c.tick > 0 {
		return c.tick
	}
	return time.Second
}
