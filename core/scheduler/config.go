package scheduler

import (
	"fmt"
	"time"

	"github.com/kilianp07/courtsched/core/model"
)

// Config holds the scheduling parameters.
type Config struct {
	// GroupSize is the default maximum number of players per group.
	GroupSize int `json:"group_size" yaml:"group_size"`
	// Seed drives group tie-breaking.
	Seed int64 `json:"seed" yaml:"seed"`
	// DurationSeconds is the solver time budget.
	DurationSeconds int `json:"duration_seconds" yaml:"duration_seconds"`
	// DummyPenalty is charged per dummy slot used.
	DummyPenalty float64 `json:"dummy_penalty" yaml:"dummy_penalty"`
	// BackToBackPenalty is charged per player and pair of consecutive time blocks played.
	BackToBackPenalty float64 `json:"back_to_back_penalty" yaml:"back_to_back_penalty"`
}

// DefaultConfig returns the parameters used when nothing is configured.
func DefaultConfig() Config {
	return Config{GroupSize: 4, Seed: 1, DurationSeconds: 30, DummyPenalty: 1, BackToBackPenalty: 1}
}

// SetDefaults fills fields for which zero is not a usable value. Zero seeds
// and penalties are kept.
func (c *Config) SetDefaults() {
	if c.GroupSize == 0 {
		c.GroupSize = 4
	}
	if c.DurationSeconds == 0 {
		c.DurationSeconds = 30
	}
}

// Validate checks the parameter ranges.
func (c Config) Validate() error {
	if c.GroupSize <= 1 {
		return fmt.Errorf("%w: group_size must be at least 2, got %d", model.ErrInvalidConfig, c.GroupSize)
	}
	if c.DurationSeconds <= 0 {
		return fmt.Errorf("%w: duration_seconds must be positive", model.ErrInvalidConfig)
	}
	if c.DummyPenalty < 0 {
		return fmt.Errorf("%w: dummy_penalty must not be negative", model.ErrInvalidConfig)
	}
	if c.BackToBackPenalty < 0 {
		return fmt.Errorf("%w: back_to_back_penalty must not be negative", model.ErrInvalidConfig)
	}
	return nil
}

// Budget returns the solver time budget.
func (c Config) Budget() time.Duration {
	return time.Duration(c.DurationSeconds) * time.Second
}

// Weights returns the objective penalties.
func (c Config) Weights() Weights {
	return Weights{Dummy: c.DummyPenalty, BackToBack: c.BackToBackPenalty}
}
