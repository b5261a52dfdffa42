package flocking

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

// ErrInvalidConfig is wrapped by every error returned from Config.Validate.
var ErrInvalidConfig = errors.New("invalid flocking config")

// SmoothingMode selects how the per-tick turn fraction is derived.
type SmoothingMode string

const (
	// SmoothingPerTick turns by TurnSmoothing of the remaining angle every tick.
	// Observed turning speed therefore depends on the tick rate.
	SmoothingPerTick SmoothingMode = "per_tick"
	// SmoothingExponential turns by 1-exp(-TurnRate*dt), independent of tick rate.
	SmoothingExponential SmoothingMode = "exponential"
)

// Config holds the tunables read by one tick of the pipeline.
// Hosts mutate it between ticks through a ConfigStore.
type Config struct {
	SeparationWeight float64 `json:"separationWeight" toml:"separationWeight" yaml:"separationWeight"`
	AlignmentWeight  float64 `json:"alignmentWeight" toml:"alignmentWeight" yaml:"alignmentWeight"`
	CohesionWeight   float64 `json:"cohesionWeight" toml:"cohesionWeight" yaml:"cohesionWeight"`

	// Speed is in world units per second.
	Speed float64 `json:"speed" toml:"speed" yaml:"speed"`

	Smoothing     SmoothingMode `json:"smoothing" toml:"smoothing" yaml:"smoothing"`
	TurnSmoothing float64       `json:"turnSmoothing" toml:"turnSmoothing" yaml:"turnSmoothing"` // fraction in (0,1]
	TurnRate      float64       `json:"turnRate" toml:"turnRate" yaml:"turnRate"`                // 1/s, exponential mode only

	// CellSize should be close to the interaction radius: the 3x3 block
	// around a cell then covers everything within CellSize of it.
	CellSize float64 `json:"cellSize" toml:"cellSize" yaml:"cellSize"`
	// ViewRadius of 0 keeps the whole 3x3 block as the neighborhood.
	ViewRadius float64 `json:"viewRadius" toml:"viewRadius" yaml:"viewRadius"`
}

// DefaultConfig is the classic scene: 25 unit cells, speed 10, 10% turn per tick.
func DefaultConfig() Config {
	return Config{
		SeparationWeight: 1.5,
		AlignmentWeight:  1.0,
		CohesionWeight:   1.0,
		Speed:            10,
		Smoothing:        SmoothingPerTick,
		TurnSmoothing:    0.1,
		TurnRate:         6,
		CellSize:         25,
		ViewRadius:       0,
	}
}

// Validate reports the first out-of-range field.
func (c Config) Validate() error {
	nonNegative := []struct {
		name  string
		value float64
	}{
		{"separationWeight", c.SeparationWeight},
		{"alignmentWeight", c.AlignmentWeight},
		{"cohesionWeight", c.CohesionWeight},
		{"speed", c.Speed},
		{"turnRate", c.TurnRate},
		{"viewRadius", c.ViewRadius},
	}
	for _, f := range nonNegative {
		if !finite(f.value) || f.value < 0 {
			return fmt.Errorf("%w: %s must be a finite value >= 0, got %v", ErrInvalidConfig, f.name, f.value)
		}
	}
	if !finite(c.CellSize) || c.CellSize <= 0 {
		return fmt.Errorf("%w: cellSize must be > 0, got %v", ErrInvalidConfig, c.CellSize)
	}
	if !finite(c.TurnSmoothing) || c.TurnSmoothing <= 0 || c.TurnSmoothing > 1 {
		return fmt.Errorf("%w: turnSmoothing must be in (0,1], got %v", ErrInvalidConfig, c.TurnSmoothing)
	}
	switch c.Smoothing {
	case SmoothingPerTick, SmoothingExponential, "":
	default:
		return fmt.Errorf("%w: unknown smoothing mode %q", ErrInvalidConfig, c.Smoothing)
	}
	return nil
}

// turnFraction is the share of the remaining angle covered during dt.
func (c Config) turnFraction(dt float64) float64 {
	if c.Smoothing == SmoothingExponential {
		return 1 - math.Exp(-c.TurnRate*dt)
	}
	return c.TurnSmoothing
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// ConfigStore is the shared mutable record hosts write between ticks.
// Readers take a Snapshot once per tick so a tick never sees a half update.
type ConfigStore struct {
	mu  sync.RWMutex
	cfg Config
}

// NewConfigStore starts from cfg, or from DefaultConfig when cfg is invalid.
func NewConfigStore(cfg Config) *ConfigStore {
	if cfg.Validate() != nil {
		cfg = DefaultConfig()
	}
	return &ConfigStore{cfg: cfg}
}

// Snapshot returns a copy of the current value.
func (s *ConfigStore) Snapshot() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Set replaces the whole record. An invalid cfg is rejected and the last
// valid value is kept.
func (s *ConfigStore) Set(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	return nil
}

// Update applies fn to a copy and commits it only if the result is valid.
func (s *ConfigStore) Update(fn func(*Config)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.cfg
	fn(&next)
	if err := next.Validate(); err != nil {
		return err
	}
	s.cfg = next
	return nil
}
