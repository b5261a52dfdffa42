package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/lao-tseu-is-alive/go-boids-flocking/internal/config"
	"github.com/lao-tseu-is-alive/go-boids-flocking/internal/logging"
	"github.com/lao-tseu-is-alive/go-boids-flocking/internal/simulation"
	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/flocking"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "config file (.json, .toml, .yaml); built-in defaults when empty")
	schemaPath := flag.String("schema", "", "extra JSON schema the config must satisfy")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadWithSchema(*configPath, *schemaPath); err != nil {
			return err
		}
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	setup := simulation.Build(cfg, log)

	// Buffer to avoid blocking the world actor
	snapshotCh := make(chan *flocking.Snapshot, 2)
	world := simulation.NewWorldActor(setup.Sim, setup.Config, snapshotCh, log, setup.Dumper)
	system, pid, err := simulation.Spawn(ctx, "BoidsFlocking", world)
	if err != nil {
		return err
	}
	defer func() { _ = system.Stop(ctx) }()

	game := NewGame(ctx, pid, snapshotCh, cfg.World, setup.Config.Snapshot(), log)

	ebiten.SetWindowSize(int(cfg.World.Width), int(cfg.World.Height))
	ebiten.SetWindowTitle("Boids: spatial hash flocking")
	ebiten.SetTPS(cfg.Runtime.TickRate)
	if err := ebiten.RunGame(game); err != nil {
		return fmt.Errorf("run game: %w", err)
	}
	log.Info("window closed", zap.Uint64("seed", setup.Seed))
	return nil
}
