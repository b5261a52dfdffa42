// Package diagnostics periodically logs the spatial hash contents and the
// state of leader agents.
package diagnostics

import (
	"time"

	"go.uber.org/zap"

	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/flocking"
)

// DefaultInterval is the dump period when none is configured.
const DefaultInterval = 2 * time.Second

// Dumper accumulates simulated time and dumps the simulation once per interval.
// It is driven from the goroutine ticking the simulation.
type Dumper struct {
	interval time.Duration
	elapsed  time.Duration
	log      *zap.Logger
	dumps    int
}

// NewDumper returns a Dumper logging to log every interval. A negative
// interval disables it, zero selects DefaultInterval.
func NewDumper(log *zap.Logger, interval time.Duration) *Dumper {
	if log == nil {
		log = zap.NewNop()
	}
	if interval == 0 {
		interval = DefaultInterval
	}
	return &Dumper{interval: interval, log: log.Named("dump")}
}

// Enabled reports whether Observe will ever dump.
func (d *Dumper) Enabled() bool {
	return d != nil && d.interval > 0
}

// Observe adds dt seconds and dumps sim when the interval is reached.
// It returns true when a dump happened.
func (d *Dumper) Observe(sim *flocking.Simulation, dt float64) bool {
	if !d.Enabled() || !(dt > 0) {
		return false
	}
	d.elapsed += time.Duration(dt * float64(time.Second))
	if d.elapsed < d.interval {
		return false
	}
	d.elapsed = 0
	d.Dump(sim)
	return true
}

// Dump logs one debug line per occupied cell and one info line per leader.
func (d *Dumper) Dump(sim *flocking.Simulation) {
	d.dumps++
	grid := sim.Grid()
	st := sim.Stats()
	d.log.Info("spatial hash",
		zap.Uint64("tick", st.Tick),
		zap.Int("cells", st.OccupiedCells),
		zap.Int("indexed", st.Indexed),
		zap.Float64("cellSize", grid.CellSize()),
	)
	if d.log.Core().Enabled(zap.DebugLevel) {
		for _, key := range grid.Cells() {
			bucket := grid.Bucket(key)
			ids := make([]int, len(bucket))
			for i, n := range bucket {
				ids[i] = n.ID
			}
			d.log.Debug("cell",
				zap.Int("x", key.X),
				zap.Int("y", key.Y),
				zap.Ints("agents", ids),
			)
		}
	}
	for _, v := range sim.LeaderViews() {
		d.log.Info("leader",
			zap.Int("id", v.Agent.ID),
			zap.Stringer("position", v.Agent.Position),
			zap.Float64("heading", v.Agent.Heading.Angle()),
			zap.Float64("target", v.Steering.Target.Angle()),
			zap.Int("neighbors", len(v.Neighbors)),
		)
	}
}

// Dumps returns the number of dumps written so far.
func (d *Dumper) Dumps() int {
	return d.dumps
}
