package flocking

import (
	"errors"
	"math"
	"sync"
	"testing"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero weights", func(c *Config) { c.SeparationWeight, c.AlignmentWeight, c.CohesionWeight = 0, 0, 0 }, false},
		{"zero speed", func(c *Config) { c.Speed = 0 }, false},
		{"empty smoothing mode", func(c *Config) { c.Smoothing = "" }, false},
		{"exponential", func(c *Config) { c.Smoothing = SmoothingExponential }, false},
		{"full smoothing", func(c *Config) { c.TurnSmoothing = 1 }, false},
		{"negative weight", func(c *Config) { c.CohesionWeight = -0.1 }, true},
		{"NaN weight", func(c *Config) { c.AlignmentWeight = math.NaN() }, true},
		{"infinite speed", func(c *Config) { c.Speed = math.Inf(1) }, true},
		{"zero cell size", func(c *Config) { c.CellSize = 0 }, true},
		{"negative cell size", func(c *Config) { c.CellSize = -25 }, true},
		{"zero smoothing", func(c *Config) { c.TurnSmoothing = 0 }, true},
		{"smoothing above one", func(c *Config) { c.TurnSmoothing = 1.01 }, true},
		{"negative view radius", func(c *Config) { c.ViewRadius = -1 }, true},
		{"negative turn rate", func(c *Config) { c.TurnRate = -1 }, true},
		{"unknown mode", func(c *Config) { c.Smoothing = "cubic" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v does not wrap ErrInvalidConfig", err)
			}
		})
	}
}

func TestConfigStore(t *testing.T) {
	t.Run("invalid initial value falls back to defaults", func(t *testing.T) {
		bad := DefaultConfig()
		bad.CellSize = 0
		if got := NewConfigStore(bad).Snapshot(); got != DefaultConfig() {
			t.Errorf("Snapshot() = %+v; want defaults", got)
		}
	})

	t.Run("rejected set keeps last valid", func(t *testing.T) {
		s := NewConfigStore(DefaultConfig())
		good := DefaultConfig()
		good.Speed = 42
		if err := s.Set(good); err != nil {
			t.Fatalf("Set(valid) = %v", err)
		}
		bad := good
		bad.TurnSmoothing = 2
		if err := s.Set(bad); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("Set(invalid) = %v; want ErrInvalidConfig", err)
		}
		if got := s.Snapshot(); got != good {
			t.Errorf("Snapshot() = %+v; want %+v", got, good)
		}
	})

	t.Run("update is all or nothing", func(t *testing.T) {
		s := NewConfigStore(DefaultConfig())
		err := s.Update(func(c *Config) {
			c.Speed = 99
			c.CellSize = -1
		})
		if err == nil {
			t.Fatal("expected Update to fail")
		}
		if got := s.Snapshot().Speed; got != DefaultConfig().Speed {
			t.Errorf("speed = %v; a failed update must not leak", got)
		}
		if err := s.Update(func(c *Config) { c.Speed = 99 }); err != nil {
			t.Fatalf("Update = %v", err)
		}
		if got := s.Snapshot().Speed; got != 99 {
			t.Errorf("speed = %v; want 99", got)
		}
	})

	t.Run("concurrent writers and readers", func(t *testing.T) {
		s := NewConfigStore(DefaultConfig())
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(2)
			go func(i int) {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					_ = s.Update(func(c *Config) { c.Speed = float64(i*100 + j) })
				}
			}(i)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					if err := s.Snapshot().Validate(); err != nil {
						t.Errorf("reader saw an invalid config: %v", err)
						return
					}
				}
			}()
		}
		wg.Wait()
	})
}
