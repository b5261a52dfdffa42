package flocking

import (
	"math"
	"runtime"

	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/geometry"
	"go.uber.org/zap"
)

// Simulation owns the agents, the grid and the four pipeline phases.
// It is not safe for concurrent use: one goroutine ticks it, and readers
// look at it between ticks (or work from a Snapshot).
type Simulation struct {
	store  *AgentStore
	bounds Bounds
	grid   *SpatialHashGrid

	engine *FlockingEngine
	motion MotionIntegrator
	wrap   BoundaryWrap

	lastValid Config
	ticks     uint64
	log       *zap.Logger
}

// Option configures a Simulation.
type Option func(*options)

type options struct {
	log     *zap.Logger
	workers int
	cfg     Config
}

// WithLogger sets the logger used for rejected configs and skipped ticks.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithWorkers bounds the goroutines used by each phase. 1 runs everything
// on the ticking goroutine.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithConfig sets the fallback used when Tick receives an invalid config.
func WithConfig(cfg Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// New builds a simulation over store inside bounds.
func New(store *AgentStore, bounds Bounds, opts ...Option) *Simulation {
	o := options{
		log:     zap.NewNop(),
		workers: runtime.GOMAXPROCS(0),
		cfg:     DefaultConfig(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.cfg.Validate() != nil {
		o.cfg = DefaultConfig()
	}
	if store == nil {
		store = NewAgentStore(nil)
	}
	return &Simulation{
		store:     store,
		bounds:    bounds,
		grid:      NewSpatialHashGrid(),
		engine:    NewFlockingEngine(o.workers),
		motion:    NewMotionIntegrator(o.workers),
		wrap:      NewBoundaryWrap(o.workers),
		lastValid: o.cfg,
		log:       o.log,
	}
}

// Tick runs one full step: grid rebuild, steering, integration, wrap.
// cfg is read once; an invalid cfg is replaced by the last valid one.
// A negative or NaN dt skips the tick; dt == 0 steers without moving.
func (s *Simulation) Tick(cfg Config, dt float64) {
	if math.IsNaN(dt) || dt < 0 {
		s.log.Debug("skipping tick", zap.Float64("dt", dt))
		return
	}
	if err := cfg.Validate(); err != nil {
		s.log.Warn("rejected flocking config, keeping last valid one", zap.Error(err))
		cfg = s.lastValid
	} else {
		s.lastValid = cfg
	}

	agents := s.store.slice()
	s.grid.Rebuild(agents, cfg.CellSize)
	s.engine.Step(agents, s.grid, cfg)
	s.motion.Step(agents, cfg, dt)
	s.wrap.Apply(agents, s.bounds.Width, s.bounds.Height)
	s.ticks++
}

// Agents is the read-only view of the store.
func (s *Simulation) Agents() *AgentStore {
	return s.store
}

// Grid is the index built at the start of the latest tick.
// Treat it as read-only, it is rebuilt in place on the next Tick.
func (s *Simulation) Grid() *SpatialHashGrid {
	return s.grid
}

// Bounds returns the world size.
func (s *Simulation) Bounds() Bounds {
	return s.bounds
}

// TickCount is the number of ticks actually run.
func (s *Simulation) TickCount() uint64 {
	return s.ticks
}

// Config returns the last valid config seen by Tick.
func (s *Simulation) Config() Config {
	return s.lastValid
}

// LeaderView is what renderers draw for a leader: its local flockmates and
// where the rules want it to go.
type LeaderView struct {
	Agent     Agent
	Neighbors []Neighbor
	Steering  Steering
}

// LeaderViews recomputes the neighborhood of every leader against the
// current grid, from the position the latest steering phase saw it at.
func (s *Simulation) LeaderViews() []LeaderView {
	var views []LeaderView
	for _, a := range s.store.Leaders() {
		probe := a
		last, ok := s.engine.Last(a.ID)
		if ok {
			probe.Position = last.Origin
		}
		st, neighbors := Steer(probe, s.grid, s.lastValid, nil)
		if ok {
			st = last
		}
		views = append(views, LeaderView{Agent: a, Neighbors: neighbors, Steering: st})
	}
	return views
}

// Stats summarizes one tick for telemetry.
type Stats struct {
	Tick          uint64
	Population    int
	Indexed       int
	OccupiedCells int
	MeanNeighbors float64
	// Polarization is |mean heading|: 1 when everybody flies the same way,
	// close to 0 for a disordered swarm.
	Polarization float64
}

// Stats computes telemetry from the latest tick.
func (s *Simulation) Stats() Stats {
	st := Stats{
		Tick:          s.ticks,
		Population:    s.store.Len(),
		Indexed:       s.grid.Len(),
		OccupiedCells: len(s.grid.cells),
	}
	if st.Population == 0 {
		return st
	}
	var sum geometry.Vector2D
	neighbors := 0
	for i, a := range s.store.slice() {
		sum = sum.Add(a.Heading)
		if last, ok := s.engine.Last(i); ok {
			neighbors += last.Neighbors
		}
	}
	n := float64(st.Population)
	st.MeanNeighbors = float64(neighbors) / n
	st.Polarization = sum.Len() / n
	return st
}

// Snapshot is a self-contained copy of the state renderers need.
type Snapshot struct {
	Tick     uint64
	Bounds   Bounds
	CellSize float64
	Agents   []Agent
	Cells    []CellKey
	Leaders  []LeaderView
	Stats    Stats
}

// Snapshot copies the current state so it can cross goroutines.
func (s *Simulation) Snapshot() *Snapshot {
	return &Snapshot{
		Tick:     s.ticks,
		Bounds:   s.bounds,
		CellSize: s.lastValid.CellSize,
		Agents:   s.store.Snapshot(),
		Cells:    s.grid.Cells(),
		Leaders:  s.LeaderViews(),
		Stats:    s.Stats(),
	}
}
