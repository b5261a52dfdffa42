package flocking

import (
	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/geometry"
)

// Steering is the outcome of one agent's flocking rules for one tick.
// Separation, Alignment and Cohesion are unit vectors or zero.
type Steering struct {
	Origin     geometry.Vector2D // position the rules were evaluated at
	Neighbors  int
	Separation geometry.Vector2D
	Alignment  geometry.Vector2D
	Cohesion   geometry.Vector2D
	Desired    geometry.Vector2D // weighted blend, not normalized
	Changed    bool              // Target differs from the agent's previous target
	Target     geometry.Vector2D
}

// Steer computes the target heading of a from its neighborhood in grid.
// The filtered neighbor set is returned in buf (reset, then appended to)
// so callers can recycle it. When the neighborhood is empty or the blended
// forces cancel out, Target stays a.TargetHeading.
func Steer(a Agent, grid *SpatialHashGrid, cfg Config, buf []Neighbor) (Steering, []Neighbor) {
	st := Steering{Origin: a.Position, Target: a.TargetHeading}
	buf = buf[:0]

	key, ok := grid.CellOf(a.Position)
	if !ok {
		return st, buf
	}
	buf = grid.AppendNeighborsInBlock(buf, key)

	// Filter in place: identity first, then the exact radius.
	radiusSq := cfg.ViewRadius * cfg.ViewRadius
	kept := buf[:0]
	for _, n := range buf {
		if n.ID == a.ID {
			continue
		}
		if cfg.ViewRadius > 0 && a.Position.DistanceSquaredTo(n.Position) > radiusSq {
			continue
		}
		kept = append(kept, n)
	}
	buf = kept

	if len(buf) == 0 {
		return st, buf
	}

	var sep, align, center geometry.Vector2D
	for _, n := range buf {
		away := a.Position.Sub(n.Position)
		if !away.IsZero() {
			sep = sep.Add(away.Normalize())
		}
		align = align.Add(n.Heading)
		center = center.Add(n.Position)
	}
	count := float64(len(buf))

	st.Neighbors = len(buf)
	st.Separation = sep.Div(count).Normalize()
	st.Alignment = align.Div(count).Normalize()
	st.Cohesion = center.Div(count).Sub(a.Position).Normalize()

	st.Desired = st.Separation.Mul(cfg.SeparationWeight).
		Add(st.Alignment.Mul(cfg.AlignmentWeight)).
		Add(st.Cohesion.Mul(cfg.CohesionWeight))

	if st.Desired.LenSqr() > 0 {
		if target := st.Desired.Normalize(); !target.IsZero() {
			st.Target = target
			st.Changed = target != a.TargetHeading
		}
	}
	return st, buf
}

// FlockingEngine runs Steer over the whole population.
type FlockingEngine struct {
	pool pool
	last []Steering
}

// NewFlockingEngine returns an engine splitting work over up to workers goroutines.
func NewFlockingEngine(workers int) *FlockingEngine {
	return &FlockingEngine{pool: newPool(workers)}
}

// Step updates TargetHeading of every agent from grid, which must already
// reflect the agents' current positions. Positions and headings are not
// written, so agents can be processed in any order and concurrently.
func (e *FlockingEngine) Step(agents []Agent, grid *SpatialHashGrid, cfg Config) {
	if cap(e.last) < len(agents) {
		e.last = make([]Steering, len(agents))
	}
	e.last = e.last[:len(agents)]

	e.pool.run(len(agents), func(lo, hi int) {
		var buf []Neighbor
		for i := lo; i < hi; i++ {
			var st Steering
			st, buf = Steer(agents[i], grid, cfg, buf)
			agents[i].TargetHeading = st.Target
			e.last[i] = st
		}
	})
}

// Last returns the steering computed for the agent at index id by the latest Step.
func (e *FlockingEngine) Last(id int) (Steering, bool) {
	if id < 0 || id >= len(e.last) {
		return Steering{}, false
	}
	return e.last[id], true
}
