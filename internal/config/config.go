// Package config loads and validates the prism.yml experiment configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Mode selects which experiment driver runs.
type Mode string

const (
	// ModeSequential runs the scored sequential protocol.
	ModeSequential Mode = "sequential"

	// ModeConcurrent runs the barrier-synchronized concurrent protocol.
	ModeConcurrent Mode = "concurrent"

	// ModeRandom runs the unscored random-choice baseline.
	ModeRandom Mode = "random"

	// ModeBaseline grows the palette until a conflict-free colouring exists.
	ModeBaseline Mode = "baseline"
)

// Validate checks the mode is a known value.
func (m Mode) Validate() error {
	switch m {
	case ModeSequential, ModeConcurrent, ModeRandom, ModeBaseline:
		return nil
	default:
		return fmt.Errorf("unknown mode: %q", m)
	}
}

// RewireConfig controls the one-shot edge rewiring perturbation within a run.
type RewireConfig struct {
	AtPaletteSize int     `yaml:"at_palette_size"` // rewire once when the palette shrinks to this size (0 = never)
	Fraction      float64 `yaml:"fraction"`        // fraction of edges to rewire
}

// RedisConfig optionally backs the score board with Redis so reputation can
// be shared across processes.
type RedisConfig struct {
	Addr   string `yaml:"addr"`              // host:port of the Redis server
	RunKey string `yaml:"run_key,omitempty"` // namespace for board keys (default: "prism")
}

// ExperimentConfig is the top-level prism.yml configuration.
type ExperimentConfig struct {
	Version     string `yaml:"version"`
	Graph       string `yaml:"graph"`        // path to the graph YAML file
	Mode        Mode   `yaml:"mode"`         // experiment driver to run
	Runs        int    `yaml:"runs"`         // number of experiment runs
	MaxRounds   int    `yaml:"max_rounds"`   // decision rounds per run
	PaletteSize int    `yaml:"palette_size"` // starting palette size
	MinPalette  int    `yaml:"min_palette"`  // palette never shrinks below this
	Reward      int    `yaml:"reward"`       // score reward/penalty magnitude (0 = mode default)
	Seed        int64  `yaml:"seed"`         // master seed for all random sources

	Rewire RewireConfig `yaml:"rewire,omitempty"`

	// RoundTimeout bounds one concurrent round; a round that does not finish
	// in time fails hard (barrier stall). Parsed as a Go duration string.
	RoundTimeout string `yaml:"round_timeout,omitempty"`

	Output string       `yaml:"output,omitempty"` // CSV results path (empty = no CSV)
	Redis  *RedisConfig `yaml:"redis,omitempty"`
}

// Defaults mirroring the reference experiment scripts.
const (
	DefaultRuns             = 100
	DefaultMaxRounds        = 10
	DefaultPaletteSize      = 14
	DefaultMinPalette       = 5
	DefaultSequentialReward = 10
	DefaultConcurrentReward = 5
	DefaultRoundTimeout     = 30 * time.Second
)

// ApplyDefaults fills zero-valued optional fields.
func (c *ExperimentConfig) ApplyDefaults() {
	if c.Runs == 0 {
		c.Runs = DefaultRuns
	}
	if c.MaxRounds == 0 {
		c.MaxRounds = DefaultMaxRounds
	}
	if c.PaletteSize == 0 {
		c.PaletteSize = DefaultPaletteSize
	}
	if c.MinPalette == 0 {
		c.MinPalette = DefaultMinPalette
	}
	if c.Reward == 0 {
		if c.Mode == ModeConcurrent {
			c.Reward = DefaultConcurrentReward
		} else {
			c.Reward = DefaultSequentialReward
		}
	}
	if c.Redis != nil && c.Redis.RunKey == "" {
		c.Redis.RunKey = "prism"
	}
}

// Validate performs strict validation on the configuration.
func (c *ExperimentConfig) Validate() error {
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	if c.Graph == "" {
		return fmt.Errorf("graph path is required")
	}

	if err := c.Mode.Validate(); err != nil {
		return err
	}

	if c.Runs < 1 {
		return fmt.Errorf("runs must be >= 1, got %d", c.Runs)
	}
	if c.MaxRounds < 1 {
		return fmt.Errorf("max_rounds must be >= 1, got %d", c.MaxRounds)
	}
	if c.PaletteSize < 1 {
		return fmt.Errorf("palette_size must be >= 1, got %d", c.PaletteSize)
	}
	if c.MinPalette < 0 || c.MinPalette > c.PaletteSize {
		return fmt.Errorf("min_palette must be in [0, palette_size], got %d", c.MinPalette)
	}
	if c.Reward < 1 {
		return fmt.Errorf("reward must be >= 1, got %d", c.Reward)
	}

	if c.Rewire.Fraction < 0 || c.Rewire.Fraction > 1 {
		return fmt.Errorf("rewire.fraction must be in [0, 1], got %v", c.Rewire.Fraction)
	}
	if c.Rewire.AtPaletteSize < 0 {
		return fmt.Errorf("rewire.at_palette_size must be >= 0, got %d", c.Rewire.AtPaletteSize)
	}

	if _, err := c.ParseRoundTimeout(); err != nil {
		return err
	}

	if c.Redis != nil && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required when redis is configured")
	}

	return nil
}

// ParseRoundTimeout returns the configured round timeout, or the default when
// unset.
func (c *ExperimentConfig) ParseRoundTimeout() (time.Duration, error) {
	if c.RoundTimeout == "" {
		return DefaultRoundTimeout, nil
	}
	d, err := time.ParseDuration(c.RoundTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid round_timeout %q: %w", c.RoundTimeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("round_timeout must be positive, got %v", d)
	}
	return d, nil
}

// LoadFromFile reads prism.yml, applies defaults and validates.
func LoadFromFile(path string) (*ExperimentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg ExperimentConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}
