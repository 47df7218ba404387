package planner

import (
	"errors"
	"fmt"

	"github.com/example/tutorcore/internal/spaced_repetition"
)

// Default planning constants
const (
	DefaultMinutesPerItem   = 3
	DefaultNewRatio         = 0.6
	DefaultBacklogNewRatio  = 0.3
	DefaultBacklogThreshold = 0.7
	DefaultNewRunLength     = 3
	DefaultPivotSuggestions = 3
)

// ErrInvalidConfig is returned by New for out-of-range settings
var ErrInvalidConfig = errors.New("planner: invalid config")

// Config holds the planner knobs. Zero fields take the defaults.
type Config struct {
	DesiredRetention float64 `yaml:"desired_retention"`
	MinutesPerItem   int     `yaml:"minutes_per_item"`
	NewRatio         float64 `yaml:"new_ratio"`
	BacklogNewRatio  float64 `yaml:"backlog_new_ratio"`
	BacklogThreshold float64 `yaml:"backlog_threshold"` // share of the budget
	NewRunLength     int     `yaml:"new_run_length"`    // new items before each review
}

// DefaultConfig returns the standard planner settings
func DefaultConfig() Config {
	return Config{
		DesiredRetention: spaced_repetition.DefaultDesiredRetention,
		MinutesPerItem:   DefaultMinutesPerItem,
		NewRatio:         DefaultNewRatio,
		BacklogNewRatio:  DefaultBacklogNewRatio,
		BacklogThreshold: DefaultBacklogThreshold,
		NewRunLength:     DefaultNewRunLength,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.DesiredRetention == 0 {
		c.DesiredRetention = d.DesiredRetention
	}
	if c.MinutesPerItem == 0 {
		c.MinutesPerItem = d.MinutesPerItem
	}
	if c.NewRatio == 0 {
		c.NewRatio = d.NewRatio
	}
	if c.BacklogNewRatio == 0 {
		c.BacklogNewRatio = d.BacklogNewRatio
	}
	if c.BacklogThreshold == 0 {
		c.BacklogThreshold = d.BacklogThreshold
	}
	if c.NewRunLength == 0 {
		c.NewRunLength = d.NewRunLength
	}
	return c
}

func (c Config) validate() error {
	switch {
	case c.DesiredRetention <= 0 || c.DesiredRetention >= 1:
		return fmt.Errorf("%w: desired_retention %v outside (0, 1)", ErrInvalidConfig, c.DesiredRetention)
	case c.MinutesPerItem < 1:
		return fmt.Errorf("%w: minutes_per_item %d", ErrInvalidConfig, c.MinutesPerItem)
	case c.NewRatio < 0 || c.NewRatio > 1:
		return fmt.Errorf("%w: new_ratio %v outside [0, 1]", ErrInvalidConfig, c.NewRatio)
	case c.BacklogNewRatio < 0 || c.BacklogNewRatio > 1:
		return fmt.Errorf("%w: backlog_new_ratio %v outside [0, 1]", ErrInvalidConfig, c.BacklogNewRatio)
	case c.BacklogThreshold < 0:
		return fmt.Errorf("%w: backlog_threshold %v", ErrInvalidConfig, c.BacklogThreshold)
	case c.NewRunLength < 1:
		return fmt.Errorf("%w: new_run_length %d", ErrInvalidConfig, c.NewRunLength)
	}
	return nil
}

// Planner composes sessions from a graph and a progress record.
// It holds no learner state and is safe for concurrent use.
type Planner struct {
	cfg Config
}

// New creates a planner
func New(cfg Config) (*Planner, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Planner{cfg: cfg}, nil
}

// Default returns a planner with DefaultConfig
func Default() *Planner {
	return &Planner{cfg: DefaultConfig()}
}

// Config returns the effective settings
func (p *Planner) Config() Config {
	return p.cfg
}
