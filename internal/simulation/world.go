package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	golog "github.com/tochemey/goakt/v3/log"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/lao-tseu-is-alive/go-boids-flocking/internal/diagnostics"
	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/flocking"
)

// WorldActor owns the simulation. Every tick, config change and stats query
// goes through its mailbox, so the simulation itself needs no locking.
type WorldActor struct {
	sim    *flocking.Simulation
	cfg    *flocking.ConfigStore
	dumper *diagnostics.Dumper
	log    *zap.Logger
	paused bool

	// Communication with UI
	snapshotCh chan<- *flocking.Snapshot

	// --- Benchmark Stats ---
	tickCount   int
	dropped     int
	tickCost    time.Duration
	lastLogTime time.Time
}

// NewWorldActor wraps sim. cfg is read once per tick; snapshotCh may be nil
// for headless runs. dumper may be nil.
func NewWorldActor(sim *flocking.Simulation, cfg *flocking.ConfigStore, snapshotCh chan<- *flocking.Snapshot,
	log *zap.Logger, dumper *diagnostics.Dumper) *WorldActor {
	if log == nil {
		log = zap.NewNop()
	}
	return &WorldActor{
		sim:         sim,
		cfg:         cfg,
		dumper:      dumper,
		log:         log.Named("world"),
		snapshotCh:  snapshotCh,
		lastLogTime: time.Now(),
	}
}

var _ actor.Actor = (*WorldActor)(nil)

func (w *WorldActor) PreStart(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Infof("World is starting with %d agents...", w.sim.Agents().Len())
	return nil
}

func (w *WorldActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {

	case *goaktpb.PostStart:
		ctx.Logger().Info("World Started.")
		w.pushSnapshot()

	// The main simulation step, driven by the host loop
	case *durationpb.Duration:
		w.logBenchmarks()
		if w.paused {
			return
		}
		dt := msg.AsDuration().Seconds()
		start := time.Now()
		w.sim.Tick(w.cfg.Snapshot(), dt)
		w.tickCost += time.Since(start)
		w.tickCount++
		w.dumper.Observe(w.sim, dt)
		w.pushSnapshot()

	// Slider and key updates from the UI
	case *structpb.Struct:
		if err := w.applyConfig(msg); err != nil {
			w.log.Warn("config update rejected", zap.Error(err))
		}

	case *wrapperspb.BoolValue:
		w.paused = msg.GetValue()
		ctx.Logger().Infof("World paused=%t", w.paused)

	case *emptypb.Empty:
		ctx.Response(StatsToStruct(w.sim.Stats()))

	default:
		ctx.Unhandled()
	}
}

func (w *WorldActor) applyConfig(msg *structpb.Struct) error {
	next := w.cfg.Snapshot()
	if err := ApplyStruct(&next, msg); err != nil {
		return err
	}
	return w.cfg.Set(next)
}

func (w *WorldActor) logBenchmarks() {
	elapsed := time.Since(w.lastLogTime)
	if elapsed < time.Second {
		return
	}
	var avg time.Duration
	if w.tickCount > 0 {
		avg = w.tickCost / time.Duration(w.tickCount)
	}
	w.log.Info("tick rate",
		zap.Float64("ticksPerSec", float64(w.tickCount)/elapsed.Seconds()),
		zap.Duration("avgTick", avg),
		zap.Int("droppedSnapshots", w.dropped),
		zap.Int("agents", w.sim.Agents().Len()),
	)
	w.tickCount = 0
	w.dropped = 0
	w.tickCost = 0
	w.lastLogTime = time.Now()
}

func (w *WorldActor) pushSnapshot() {
	if w.snapshotCh == nil {
		return
	}
	select {
	case w.snapshotCh <- w.sim.Snapshot():
	default:
		// UI busy, skip frame
		w.dropped++
	}
}

func (w *WorldActor) PostStop(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Info("World is shutdown...")
	return nil
}

// Spawn starts an actor system called name and spawns w into it as "world".
func Spawn(ctx context.Context, name string, w *WorldActor) (actor.ActorSystem, *actor.PID, error) {
	system, err := actor.NewActorSystem(name,
		actor.WithLogger(golog.DiscardLogger),
		actor.WithActorInitMaxRetries(3))
	if err != nil {
		return nil, nil, fmt.Errorf("create actor system: %w", err)
	}
	if err := system.Start(ctx); err != nil {
		return nil, nil, fmt.Errorf("start actor system: %w", err)
	}
	pid, err := system.Spawn(ctx, "world", w)
	if err != nil {
		_ = system.Stop(ctx)
		return nil, nil, fmt.Errorf("failed to spawn world: %w", err)
	}
	return system, pid, nil
}

// Stats asks the world behind pid for its latest stats.
func Stats(ctx context.Context, pid *actor.PID, timeout time.Duration) (flocking.Stats, error) {
	reply, err := actor.Ask(ctx, pid, StatsRequest(), timeout)
	if err != nil {
		return flocking.Stats{}, fmt.Errorf("ask stats: %w", err)
	}
	s, ok := reply.(*structpb.Struct)
	if !ok {
		return flocking.Stats{}, fmt.Errorf("ask stats: unexpected reply %T", reply)
	}
	return StatsFromStruct(s), nil
}
