package simulation

import (
	"runtime"

	"go.uber.org/zap"

	"github.com/lao-tseu-is-alive/go-boids-flocking/internal/config"
	"github.com/lao-tseu-is-alive/go-boids-flocking/internal/diagnostics"
	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/flocking"
)

// Setup holds everything a host needs to run the configured swarm.
type Setup struct {
	Seed   uint64
	Sim    *flocking.Simulation
	Config *flocking.ConfigStore
	Dumper *diagnostics.Dumper
}

// Build spawns the population described by cfg and wires the simulation,
// the live flocking config and the periodic dump.
func Build(cfg *config.Config, log *zap.Logger) *Setup {
	if log == nil {
		log = zap.NewNop()
	}
	seed := cfg.Seed()
	store := cfg.NewStore(seed)
	sim := flocking.New(store, cfg.World,
		flocking.WithLogger(log),
		flocking.WithWorkers(workers(cfg.Runtime.Workers)),
		flocking.WithConfig(cfg.Flocking))

	interval := cfg.DumpInterval()
	if interval == 0 {
		interval = -1
	}
	log.Info("swarm ready",
		zap.Int("agents", store.Len()),
		zap.Uint64("seed", seed),
		zap.String("distribution", cfg.Population.Distribution),
		zap.Float64("cellSize", cfg.Flocking.CellSize))
	return &Setup{
		Seed:   seed,
		Sim:    sim,
		Config: flocking.NewConfigStore(cfg.Flocking),
		Dumper: diagnostics.NewDumper(log, interval),
	}
}

// workers maps the config value, where 0 means all cores, onto the option.
func workers(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}
