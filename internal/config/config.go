// Package config loads rover.yaml, the optional per-project configuration
// file. Flags override file values; file values override defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings such as
// "250ms" or "30s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the on-disk configuration for a rover session.
type Config struct {
	// Routine is the path to the routine source file.
	Routine string `yaml:"routine"`

	// Store selects the layout persistence backend: "file", "memory",
	// "redis" or "sqlite".
	Store StoreConfig `yaml:"store"`

	// Serve is the listen address for the HTTP control server. Empty
	// disables the server.
	Serve string `yaml:"serve"`

	// TickInterval overrides the engine tick cadence.
	TickInterval Duration `yaml:"tick_interval"`

	// FlushInterval is how often the learned layout is persisted while the
	// engine runs.
	FlushInterval Duration `yaml:"flush_interval"`

	// Watch recompiles and restarts when the routine file changes.
	Watch bool `yaml:"watch"`

	// Debug enables debug-level logging.
	Debug bool `yaml:"debug"`

	// Periodics are catalog commands run on a fixed interval while the
	// engine is running.
	Periodics []PeriodicConfig `yaml:"periodics"`
}

// StoreConfig selects and parameterizes the layout store backend.
type StoreConfig struct {
	Backend string `yaml:"backend"`
	// Path is the base directory (file backend) or database file (sqlite).
	Path string `yaml:"path"`
	// Addr is the redis address (redis backend).
	Addr string `yaml:"addr"`
}

// PeriodicConfig schedules one catalog command.
type PeriodicConfig struct {
	Command string        `yaml:"command"`
	Every   Duration `yaml:"every"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Store:         StoreConfig{Backend: "file"},
		TickInterval:  Duration(100 * time.Millisecond),
		FlushInterval: Duration(30 * time.Second),
	}
}

// Load reads a YAML config file and merges it over the defaults. A missing
// file at the default path is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Store.Backend {
	case "", "file", "memory", "redis", "sqlite":
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.TickInterval < 0 {
		return fmt.Errorf("tick_interval must not be negative")
	}
	for _, p := range c.Periodics {
		if p.Command == "" {
			return fmt.Errorf("periodic command must not be empty")
		}
		if p.Every <= 0 {
			return fmt.Errorf("periodic %q: interval must be positive", p.Command)
		}
	}
	return nil
}
