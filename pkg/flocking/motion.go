package flocking

import (
	"math"

	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/geometry"
)

// MotionIntegrator turns every agent toward its target heading, then moves
// it forward at constant speed.
type MotionIntegrator struct {
	pool pool
}

// NewMotionIntegrator returns an integrator splitting work over up to workers goroutines.
func NewMotionIntegrator(workers int) MotionIntegrator {
	return MotionIntegrator{pool: newPool(workers)}
}

// Step advances agents by dt seconds. A dt that is not strictly positive
// leaves every agent untouched.
//
// In SmoothingPerTick mode the turn covers TurnSmoothing of the remaining
// angle regardless of dt, so turning looks faster at higher tick rates.
func (m MotionIntegrator) Step(agents []Agent, cfg Config, dt float64) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return
	}
	fraction := cfg.turnFraction(dt)
	step := cfg.Speed * dt

	m.pool.run(len(agents), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			integrate(&agents[i], fraction, step)
		}
	})
}

func integrate(a *Agent, fraction, step float64) {
	if !a.TargetHeading.IsZero() && a.TargetHeading.IsFinite() {
		a.Heading = a.Heading.RotateToward(a.TargetHeading, fraction)
	}
	if step > 0 {
		a.Position = a.Position.Add(a.Heading.Mul(step))
	}
}

// BoundaryWrap teleports agents leaving the world rectangle to the opposite edge.
type BoundaryWrap struct {
	pool pool
}

// NewBoundaryWrap returns a wrap phase splitting work over up to workers goroutines.
func NewBoundaryWrap(workers int) BoundaryWrap {
	return BoundaryWrap{pool: newPool(workers)}
}

// Apply relocates every agent outside [-W/2, W/2] x [-H/2, H/2].
// Only positions change; applying it twice is the same as applying it once.
// A non-positive dimension disables wrapping along that axis, and
// non-finite coordinates are left as they are.
func (b BoundaryWrap) Apply(agents []Agent, width, height float64) {
	hw, hh := width/2, height/2
	b.pool.run(len(agents), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			agents[i].Position = wrapPosition(agents[i].Position, hw, hh)
		}
	})
}

func wrapPosition(p geometry.Vector2D, hw, hh float64) geometry.Vector2D {
	if hw > 0 && finite(p.X) {
		if p.X > hw {
			p.X = -hw
		} else if p.X < -hw {
			p.X = hw
		}
	}
	if hh > 0 && finite(p.Y) {
		if p.Y > hh {
			p.Y = -hh
		} else if p.Y < -hh {
			p.Y = hh
		}
	}
	return p
}
