// Package config handles loading, defaulting, and validation of the
// usage-bar configuration. Files may be TOML or YAML; the format is picked
// from the extension. Every section maps to a typed struct so the rest of
// the codebase never does manual key lookups.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/large-farva/usage-bar/internal/typing"
)

// Config is the top-level configuration. The break and overspeed options
// live at the top level of the file; the rest are grouped in sections.
type Config struct {
	BreakThreshold           float64 `toml:"break_threshold"            yaml:"break_threshold"            json:"break_threshold"`
	BreakLength              float64 `toml:"break_length"               yaml:"break_length"               json:"break_length"`
	OverspeedThreshold       int     `toml:"overspeed_threshold"        yaml:"overspeed_threshold"        json:"overspeed_threshold"`
	OverspeedCountMultiplier float64 `toml:"overspeed_count_multiplier" yaml:"overspeed_count_multiplier" json:"overspeed_count_multiplier"`
	MaxOverspeedPenalty      float64 `toml:"max_overspeed_penalty"      yaml:"max_overspeed_penalty"      json:"max_overspeed_penalty"`

	Socket  SocketConfig  `toml:"socket"  yaml:"socket"  json:"socket"`
	Server  ServerConfig  `toml:"server"  yaml:"server"  json:"server"`
	Logging LoggingConfig `toml:"logging" yaml:"logging" json:"logging"`
	Input   InputConfig   `toml:"input"   yaml:"input"   json:"input"`
}

type SocketConfig struct {
	Path string `toml:"path" yaml:"path" json:"path"`
}

// ServerConfig controls the HTTP status and WebSocket endpoint. An empty
// Bind disables it.
type ServerConfig struct {
	Bind string `toml:"bind" yaml:"bind" json:"bind"`
}

type LoggingConfig struct {
	Level string `toml:"level" yaml:"level" json:"level"`
}

type InputConfig struct {
	Dir string `toml:"dir" yaml:"dir" json:"dir"`
}

// Default returns a Config populated with sane defaults. Values here are
// used whenever the file omits a field.
func Default() Config {
	return Config{
		BreakThreshold:           300,
		BreakLength:              1800,
		OverspeedThreshold:       40,
		OverspeedCountMultiplier: 5,
		MaxOverspeedPenalty:      600,
		Socket: SocketConfig{
			Path: "/tmp/usage-bar.sock",
		},
		Server: ServerConfig{
			Bind: "127.0.0.1:8765",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Input: InputConfig{
			Dir: "/dev/input",
		},
	}
}

// Params converts the file values into the state machine thresholds.
func (c Config) Params() typing.Params {
	return typing.Params{
		BreakThreshold:           seconds(c.BreakThreshold),
		BreakLength:              seconds(c.BreakLength),
		OverspeedThreshold:       c.OverspeedThreshold,
		OverspeedCountMultiplier: c.OverspeedCountMultiplier,
		MaxOverspeedPenalty:      seconds(c.MaxOverspeedPenalty),
	}
}

// Debug reports whether debug logging is enabled.
func (c Config) Debug() bool {
	return c.Logging.Level == "debug"
}

// Load reads the file at path, layers it on top of the defaults, and
// validates the result. An error is returned if the file can't be read,
// parsed, or if any constraint is violated.
func Load(path string) (Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := decode(path, b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := validate(cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

func decode(path string, b []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return yaml.Unmarshal(b, cfg)
	case ".toml", "":
		return toml.Unmarshal(b, cfg)
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
}

func validate(cfg Config) error {
	if cfg.BreakThreshold <= 0 {
		return errors.New("break_threshold must be > 0")
	}
	if cfg.BreakLength <= 0 {
		return errors.New("break_length must be > 0")
	}
	if cfg.OverspeedThreshold < 0 {
		return errors.New("overspeed_threshold must be >= 0")
	}
	if cfg.OverspeedCountMultiplier < 0 {
		return errors.New("overspeed_count_multiplier must be >= 0")
	}
	if cfg.MaxOverspeedPenalty < 0 {
		return errors.New("max_overspeed_penalty must be >= 0")
	}
	if cfg.Socket.Path == "" {
		return errors.New("socket.path must not be empty")
	}
	if cfg.Input.Dir == "" {
		return errors.New("input.dir must not be empty")
	}
	switch cfg.Logging.Level {
	case "info", "debug":
	default:
		return fmt.Errorf("logging.level must be info or debug, got %q", cfg.Logging.Level)
	}
	return nil
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
