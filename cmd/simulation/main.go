// Command simulation runs the flock without a window: in the terminal with
// arrow glyphs, or headless for a fixed number of ticks.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/tochemey/goakt/v3/actor"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"

	"github.com/lao-tseu-is-alive/go-boids-flocking/internal/config"
	"github.com/lao-tseu-is-alive/go-boids-flocking/internal/logging"
	"github.com/lao-tseu-is-alive/go-boids-flocking/internal/simulation"
	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/flocking"
)

const askTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "config file (.json, .toml, .yaml); built-in defaults when empty")
	schemaPath := flag.String("schema", "", "extra JSON schema the config must satisfy")
	headless := flag.Bool("headless", false, "run without a screen and log stats")
	ticks := flag.Int("ticks", 600, "ticks to run in headless mode")
	logFile := flag.String("log", "boids.log", "log file used while the terminal view is up")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadWithSchema(*configPath, *schemaPath); err != nil {
			return err
		}
	}

	var (
		log *zap.Logger
		err error
	)
	if *headless {
		log, err = logging.New(cfg.Logging)
	} else {
		log, err = logging.NewToFile(cfg.Logging, *logFile)
	}
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	setup := simulation.Build(cfg, log)
	if *headless {
		return runHeadless(ctx, setup, log, *ticks, cfg.TickInterval())
	}
	return runTerminal(ctx, setup, log, cfg.TickInterval())
}

func runTerminal(ctx context.Context, setup *simulation.Setup, log *zap.Logger, interval time.Duration) error {
	snapshotCh := make(chan *flocking.Snapshot, 2)
	world := simulation.NewWorldActor(setup.Sim, setup.Config, snapshotCh, log, setup.Dumper)
	system, pid, err := simulation.Spawn(ctx, "BoidsTerminal", world)
	if err != nil {
		return err
	}
	defer func() { _ = system.Stop(ctx) }()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer screen.Fini()

	view := newTerminalView(screen, setup.Config.Snapshot(), func(m proto.Message) error {
		return actor.Tell(ctx, pid, m)
	})

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case ev := <-events:
			keep, err := view.handleInput(ev)
			if err != nil {
				log.Warn("send to world", zap.Error(err))
			}
			if !keep {
				return nil
			}

		case snap := <-snapshotCh:
			view.last = snap

		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			if err := actor.Tell(ctx, pid, simulation.TickMessage(dt)); err != nil {
				return fmt.Errorf("tick world: %w", err)
			}
			view.draw()
		}
	}
}
