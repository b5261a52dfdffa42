package diagnostics

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/flocking"
	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/geometry"
)

func newSim() *flocking.Simulation {
	bounds := flocking.Bounds{Width: 200, Height: 200}
	store := flocking.Initialize(4, bounds, flocking.Fixed{
		{Position: geometry.Vector2D{X: 1, Y: 1}, Heading: geometry.UnitX, Leader: true},
		{Position: geometry.Vector2D{X: 5, Y: 5}, Heading: geometry.UnitX},
		{Position: geometry.Vector2D{X: 60, Y: 60}, Heading: geometry.UnitX},
		{Position: geometry.Vector2D{X: -60, Y: 60}, Heading: geometry.UnitX},
	})
	sim := flocking.New(store, bounds, flocking.WithWorkers(1))
	sim.Tick(flocking.DefaultConfig(), 0)
	return sim
}

func TestDumper_Dump(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	d := NewDumper(zap.New(core), time.Second)
	d.Dump(newSim())

	if n := logs.FilterMessage("spatial hash").Len(); n != 1 {
		t.Errorf("summary lines = %d; want 1", n)
	}
	cells := logs.FilterMessage("cell").All()
	if len(cells) != 3 {
		t.Fatalf("cell lines = %d; want 3", len(cells))
	}
	// cells are dumped in key order: (-3,2) (0,0) (2,2)
	first := cells[0].ContextMap()
	if first["x"] != int64(-3) || first["y"] != int64(2) {
		t.Errorf("first cell = %v", first)
	}
	leaders := logs.FilterMessage("leader").All()
	if len(leaders) != 1 {
		t.Fatalf("leader lines = %d; want 1", len(leaders))
	}
	if got := leaders[0].ContextMap()["neighbors"]; got != int64(1) {
		t.Errorf("leader neighbors = %v; want 1", got)
	}
	if leaders[0].LoggerName != "dump" {
		t.Errorf("logger name = %q", leaders[0].LoggerName)
	}
}

func TestDumper_InfoLevelSkipsCells(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	NewDumper(zap.New(core), time.Second).Dump(newSim())
	if n := logs.FilterMessage("cell").Len(); n != 0 {
		t.Errorf("cell lines at info level = %d; want 0", n)
	}
}

func TestDumper_Observe(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	d := NewDumper(zap.New(core), 2*time.Second)
	sim := newSim()

	dumped := 0
	for i := 0; i < 300; i++ { // 5 seconds at 60 Hz
		if d.Observe(sim, 1.0/60) {
			dumped++
		}
	}
	if dumped != 2 || d.Dumps() != 2 {
		t.Errorf("dumps = %d (%d); want 2", dumped, d.Dumps())
	}
	if n := logs.FilterMessage("spatial hash").Len(); n != 2 {
		t.Errorf("summary lines = %d; want 2", n)
	}

	if d.Observe(sim, -1) || d.Observe(sim, 0) {
		t.Error("non positive dt must not dump")
	}
}

func TestDumper_Disabled(t *testing.T) {
	d := NewDumper(nil, -time.Second)
	if d.Enabled() || d.Observe(newSim(), 10) {
		t.Error("negative interval should disable the dumper")
	}
	if NewDumper(nil, 0).interval != DefaultInterval {
		t.Error("zero interval should select the default")
	}
}
