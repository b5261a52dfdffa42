package main

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/flocking"
	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/geometry"
)

func newTestView(t *testing.T) (*terminalView, *[]proto.Message) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(40, 12)

	var sent []proto.Message
	v := newTerminalView(screen, flocking.DefaultConfig(), func(m proto.Message) error {
		sent = append(sent, m)
		return nil
	})
	return v, &sent
}

func TestHeadingGlyph(t *testing.T) {
	tests := []struct {
		heading geometry.Vector2D
		want    rune
	}{
		{geometry.Vector2D{X: 1}, '→'},
		{geometry.Vector2D{Y: 1}, '↓'},
		{geometry.Vector2D{X: -1}, '←'},
		{geometry.Vector2D{Y: -1}, '↑'},
		{geometry.Vector2D{X: 1, Y: 1}.Normalize(), '↘'},
		{geometry.Vector2D{X: -1, Y: -1}.Normalize(), '↖'},
	}
	for _, tt := range tests {
		if got := headingGlyph(flocking.Agent{Heading: tt.heading}); got != tt.want {
			t.Errorf("headingGlyph(%v) = %q; want %q", tt.heading, got, tt.want)
		}
	}
}

func TestTerminalView_Keys(t *testing.T) {
	v, sent := newTestView(t)
	def := flocking.DefaultConfig()

	press := func(r rune) bool {
		t.Helper()
		keep, err := v.handleRune(r)
		if err != nil {
			t.Fatalf("handleInput(%q) error = %v", r, err)
		}
		return keep
	}

	press('S')
	if got := v.cfg.SeparationWeight; got != def.SeparationWeight+weightStep {
		t.Errorf("separation = %v", got)
	}
	last, ok := (*sent)[len(*sent)-1].(*structpb.Struct)
	if !ok || last.GetFields()["separationWeight"].GetNumberValue() != v.cfg.SeparationWeight {
		t.Errorf("last message = %v; want the updated config", (*sent)[len(*sent)-1])
	}

	for i := 0; i < 100; i++ {
		press('a')
	}
	if v.cfg.AlignmentWeight != 0 {
		t.Errorf("alignment = %v; weights stop at 0", v.cfg.AlignmentWeight)
	}

	press('m')
	if v.cfg.Smoothing != flocking.SmoothingExponential {
		t.Errorf("smoothing = %q after m", v.cfg.Smoothing)
	}
	press('r')
	if v.cfg != def {
		t.Errorf("cfg after reset = %+v", v.cfg)
	}

	n := len(*sent)
	press(' ')
	if p, ok := (*sent)[n].(*wrapperspb.BoolValue); !ok || !p.GetValue() {
		t.Errorf("space sent %v; want pause", (*sent)[n])
	}

	n = len(*sent)
	press('x')
	if len(*sent) != n {
		t.Error("unbound keys must not send anything")
	}

	if press('q') {
		t.Error("q must quit")
	}
}

func TestTerminalView_Draw(t *testing.T) {
	v, _ := newTestView(t)
	v.last = &flocking.Snapshot{
		Bounds: flocking.Bounds{Width: 400, Height: 110},
		Agents: []flocking.Agent{
			{ID: 0, Heading: geometry.Vector2D{X: 1}},
			{ID: 1, Position: geometry.Vector2D{X: -195, Y: -50}, Heading: geometry.Vector2D{Y: -1}, Leader: true},
		},
		Stats: flocking.Stats{Tick: 7, Population: 2},
	}
	v.draw()

	if r, _, _, _ := v.screen.GetContent(20, 5); r != '→' {
		t.Errorf("cell (20,5) = %q; want the boid at the origin", r)
	}
	r, _, style, _ := v.screen.GetContent(0, 0)
	if r != '↑' || style != styleLeader {
		t.Errorf("cell (0,0) = %q; want the leader", r)
	}
	status := ""
	for x := 0; x < 10; x++ {
		r, _, _, _ := v.screen.GetContent(x, 11)
		status += string(r)
	}
	if status != " tick 7  b" {
		t.Errorf("status line starts with %q", status)
	}
}
