package flocking

import (
	"math"
	"testing"

	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/geometry"
)

func steeringConfig(sep, align, coh float64) Config {
	cfg := DefaultConfig()
	cfg.SeparationWeight = sep
	cfg.AlignmentWeight = align
	cfg.CohesionWeight = coh
	cfg.CellSize = 10
	return cfg
}

func TestSteer_ThreeAgentsInOneCell(t *testing.T) {
	agents := agentsAt(
		geometry.Vector2D{X: 0, Y: 0},
		geometry.Vector2D{X: 1, Y: 0},
		geometry.Vector2D{X: 0, Y: 1},
	)
	cfg := steeringConfig(1, 1, 1)
	g := NewSpatialHashGrid()
	g.Rebuild(agents, cfg.CellSize)

	st, neighbors := Steer(agents[0], g, cfg, nil)

	if st.Neighbors != 2 || len(neighbors) != 2 {
		t.Fatalf("expected 2 neighbors, got %d (%v)", st.Neighbors, ids(neighbors))
	}

	// Away from both (1,0) and (0,1): pointing into the third quadrant.
	wantSep := geometry.Vector2D{X: -1, Y: -1}.Normalize()
	if !st.Separation.Eq(wantSep) {
		t.Errorf("separation = %v; want %v", st.Separation, wantSep)
	}
	// Toward the centroid (0.5, 0.5).
	wantCoh := geometry.Vector2D{X: 1, Y: 1}.Normalize()
	if !st.Cohesion.Eq(wantCoh) {
		t.Errorf("cohesion = %v; want %v", st.Cohesion, wantCoh)
	}
	if !st.Alignment.Eq(geometry.UnitX) {
		t.Errorf("alignment = %v; want +x", st.Alignment)
	}

	// Separation and cohesion cancel, leaving pure alignment.
	if !st.Target.Eq(geometry.UnitX) {
		t.Errorf("target = %v; want +x", st.Target)
	}
}

func TestSteer_IsolatedAgentKeepsTarget(t *testing.T) {
	previous := geometry.FromAngle(2)
	agents := agentsAt(
		geometry.Vector2D{X: 0, Y: 0},
		geometry.Vector2D{X: 500, Y: 500},
	)
	agents[0].TargetHeading = previous
	cfg := steeringConfig(1, 1, 1)
	g := NewSpatialHashGrid()
	g.Rebuild(agents, cfg.CellSize)

	st, neighbors := Steer(agents[0], g, cfg, nil)
	if len(neighbors) != 0 || st.Neighbors != 0 {
		t.Fatalf("expected no neighbors, got %v", ids(neighbors))
	}
	if st.Target != previous || st.Changed {
		t.Errorf("target = %v (changed=%v); want unchanged %v", st.Target, st.Changed, previous)
	}
}

func TestSteer_SelfExclusionByIdentity(t *testing.T) {
	// Two agents on the exact same spot: each sees the other, never itself.
	agents := agentsAt(
		geometry.Vector2D{X: 3, Y: 3},
		geometry.Vector2D{X: 3, Y: 3},
	)
	cfg := steeringConfig(1, 0, 0)
	g := NewSpatialHashGrid()
	g.Rebuild(agents, cfg.CellSize)

	for _, a := range agents {
		st, neighbors := Steer(a, g, cfg, nil)
		for _, n := range neighbors {
			if n.ID == a.ID {
				t.Errorf("agent %d found itself among its neighbors", a.ID)
			}
		}
		if len(neighbors) != 1 {
			t.Errorf("agent %d: expected 1 neighbor, got %d", a.ID, len(neighbors))
		}
		// Coincident positions contribute a zero separation: nothing to steer by.
		if !st.Separation.IsZero() || st.Changed {
			t.Errorf("agent %d: separation = %v changed=%v; want zero, unchanged", a.ID, st.Separation, st.Changed)
		}
	}
}

func TestSteer_ZeroWeightsNeverChangeTarget(t *testing.T) {
	store := Initialize(300, Bounds{Width: 100, Height: 100},
		UniformRect{Rand: NewRand(3), HalfWidth: 50, HalfHeight: 50})
	agents := store.Snapshot()
	before := store.Snapshot()

	cfg := steeringConfig(0, 0, 0)
	g := NewSpatialHashGrid()
	g.Rebuild(agents, cfg.CellSize)
	NewFlockingEngine(4).Step(agents, g, cfg)

	for i := range agents {
		if agents[i].TargetHeading != before[i].TargetHeading {
			t.Fatalf("agent %d target changed from %v to %v", i, before[i].TargetHeading, agents[i].TargetHeading)
		}
	}
}

func TestSteer_ViewRadiusFilter(t *testing.T) {
	agents := agentsAt(
		geometry.Vector2D{X: 0, Y: 0},
		geometry.Vector2D{X: 2, Y: 0},  // within 3
		geometry.Vector2D{X: 0, Y: 9},  // same cell, outside 3
		geometry.Vector2D{X: 3, Y: 0},  // exactly on the radius
		geometry.Vector2D{X: -8, Y: 0}, // neighbor cell, outside 3
	)

	tests := []struct {
		name   string
		radius float64
		want   int
	}{
		{"block only", 0, 4},
		{"exact radius", 3, 2},
		{"radius wider than block", 1000, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := steeringConfig(1, 1, 1)
			cfg.ViewRadius = tt.radius
			g := NewSpatialHashGrid()
			g.Rebuild(agents, cfg.CellSize)

			_, neighbors := Steer(agents[0], g, cfg, nil)
			if len(neighbors) != tt.want {
				t.Errorf("neighbors = %v; want %d of them", ids(neighbors), tt.want)
			}
		})
	}
}

func TestSteer_CancellingForcesKeepTarget(t *testing.T) {
	// Neighbors symmetric around the agent, headings opposite: every force is zero.
	agents := agentsAt(
		geometry.Vector2D{X: 5, Y: 5},
		geometry.Vector2D{X: 3, Y: 5},
		geometry.Vector2D{X: 7, Y: 5},
	)
	agents[1].Heading = geometry.Vector2D{X: 0, Y: 1}
	agents[2].Heading = geometry.Vector2D{X: 0, Y: -1}
	previous := geometry.FromAngle(1)
	agents[0].TargetHeading = previous

	cfg := steeringConfig(1, 1, 1)
	g := NewSpatialHashGrid()
	g.Rebuild(agents, cfg.CellSize)

	st, _ := Steer(agents[0], g, cfg, nil)
	if st.Desired.LenSqr() != 0 {
		t.Fatalf("desired = %v; want zero", st.Desired)
	}
	if st.Target != previous {
		t.Errorf("target = %v; want %v", st.Target, previous)
	}
}

func TestSteer_TargetIsUnitLength(t *testing.T) {
	agents := agentsAt(
		geometry.Vector2D{X: 1, Y: 1},
		geometry.Vector2D{X: 4, Y: 2},
		geometry.Vector2D{X: 2, Y: 7},
	)
	cfg := steeringConfig(2, 0.5, 3)
	g := NewSpatialHashGrid()
	g.Rebuild(agents, cfg.CellSize)

	st, _ := Steer(agents[0], g, cfg, nil)
	if !st.Changed {
		t.Fatal("expected the target to change")
	}
	if math.Abs(st.Target.Len()-1) > geometry.Epsilon {
		t.Errorf("target length = %v; want 1", st.Target.Len())
	}
}

func TestFlockingEngine_ParallelMatchesSerial(t *testing.T) {
	store := Initialize(2000, Bounds{Width: 400, Height: 400},
		UniformRect{Rand: NewRand(11), HalfWidth: 200, HalfHeight: 200})
	serial := store.Snapshot()
	parallel := store.Snapshot()
	cfg := steeringConfig(1.5, 1, 1)
	cfg.ViewRadius = 8

	g := NewSpatialHashGrid()
	g.Rebuild(serial, cfg.CellSize)
	NewFlockingEngine(1).Step(serial, g, cfg)
	engine := NewFlockingEngine(8)
	engine.Step(parallel, g, cfg)

	for i := range serial {
		if serial[i].TargetHeading != parallel[i].TargetHeading {
			t.Fatalf("agent %d: serial %v != parallel %v", i, serial[i].TargetHeading, parallel[i].TargetHeading)
		}
		if serial[i].Position != parallel[i].Position || serial[i].Heading != parallel[i].Heading {
			t.Fatalf("agent %d: steering must not move or turn agents", i)
		}
	}
	if _, ok := engine.Last(len(parallel) - 1); !ok {
		t.Error("expected steering results for every agent")
	}
	if _, ok := engine.Last(len(parallel)); ok {
		t.Error("Last out of range should not be ok")
	}
}

func BenchmarkFlockingEngine_Step(b *testing.B) {
	store := Initialize(5000, Bounds{Width: 1200, Height: 700},
		UniformRect{Rand: NewRand(1), HalfWidth: 600, HalfHeight: 350})
	agents := store.Snapshot()
	cfg := DefaultConfig()
	g := NewSpatialHashGrid()
	g.Rebuild(agents, cfg.CellSize)
	engine := NewFlockingEngine(4)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.Step(agents, g, cfg)
	}
}
