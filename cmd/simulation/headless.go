package main

import (
	"context"
	"fmt"
	"time"

	"github.com/tochemey/goakt/v3/actor"
	"go.uber.org/zap"

	"github.com/lao-tseu-is-alive/go-boids-flocking/internal/simulation"
)

// runHeadless drives the world actor with fixed-length ticks and logs the
// stats once per simulated second.
func runHeadless(ctx context.Context, setup *simulation.Setup, log *zap.Logger, ticks int, dt time.Duration) error {
	world := simulation.NewWorldActor(setup.Sim, setup.Config, nil, log, setup.Dumper)
	system, pid, err := simulation.Spawn(ctx, "BoidsHeadless", world)
	if err != nil {
		return err
	}
	defer func() { _ = system.Stop(ctx) }()

	perSecond := max(int(time.Second/dt), 1)
	start := time.Now()
	for i := 1; i <= ticks; i++ {
		if err := actor.Tell(ctx, pid, simulation.TickMessage(dt)); err != nil {
			return fmt.Errorf("tick %d: %w", i, err)
		}
		if i%perSecond != 0 && i != ticks {
			continue
		}
		// the Ask queues behind the ticks sent so far
		st, err := simulation.Stats(ctx, pid, askTimeout)
		if err != nil {
			return err
		}
		log.Info("progress",
			zap.Uint64("tick", st.Tick),
			zap.Int("agents", st.Population),
			zap.Int("cells", st.OccupiedCells),
			zap.Float64("meanNeighbors", st.MeanNeighbors),
			zap.Float64("polarization", st.Polarization))
	}
	log.Info("headless run done",
		zap.Int("ticks", ticks),
		zap.Duration("elapsed", time.Since(start)),
		zap.Uint64("seed", setup.Seed))
	return nil
}
