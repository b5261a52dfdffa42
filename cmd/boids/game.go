package main

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tochemey/goakt/v3/actor"
	"go.uber.org/zap"

	"github.com/lao-tseu-is-alive/go-boids-flocking/internal/simulation"
	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/flocking"
	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/ui"
)

// maxFrameDt caps the tick length after a stall (window drag, breakpoint).
const maxFrameDt = 100 * time.Millisecond

// triangles per DrawTriangles call, uint16 indices address 65535 vertices
const batchBoids = 65535 / 3

// boidShape is the tip and the two rear corners as (angle offset, length).
var boidShape = [3]struct{ da, l float64 }{{0, 6}, {2.5, 5}, {-2.5, 5}}

var (
	whiteImage = ebiten.NewImage(3, 3)

	colorBackground = color.RGBA{R: 10, G: 10, B: 30, A: 255}
	colorGrid       = color.RGBA{R: 60, G: 60, B: 90, A: 255}
	colorLeader     = color.RGBA{R: 255, G: 180, B: 40, A: 255}
	colorNeighbor   = color.RGBA{R: 255, G: 180, B: 40, A: 90}
	colorTarget     = color.RGBA{R: 80, G: 255, B: 120, A: 255}
)

func init() {
	whiteImage.Fill(color.White)
}

type Game struct {
	ctx        context.Context
	worldPID   *actor.PID
	snapshotCh chan *flocking.Snapshot
	lastState  *flocking.Snapshot
	log        *zap.Logger

	width, height int
	defaults      flocking.Config

	panel *ui.Panel
	keys  ui.KeyMap

	widgetSeparation  *ui.Slider
	widgetAlignment   *ui.Slider
	widgetCohesion    *ui.Slider
	widgetSpeed       *ui.Slider
	widgetTurn        *ui.Slider
	widgetTurnRate    *ui.Slider
	widgetCellSize    *ui.Slider
	widgetViewRadius  *ui.Slider
	widgetExponential *ui.Checkbox
	widgetPaused      *ui.Checkbox
	widgetShowGrid    *ui.Checkbox
	widgetShowLeader  *ui.Checkbox
	widgetShowPanel   *ui.Checkbox

	lastFrame time.Time
	vertices  []ebiten.Vertex
	indices   []uint16

	// Timing instrumentation
	updateAvg float64 // Rolling average in ms
	drawAvg   float64 // Rolling average in ms
}

func NewGame(ctx context.Context, worldPID *actor.PID, snapshotCh chan *flocking.Snapshot,
	bounds flocking.Bounds, cfg flocking.Config, log *zap.Logger) *Game {
	g := &Game{
		ctx:        ctx,
		worldPID:   worldPID,
		snapshotCh: snapshotCh,
		lastState:  &flocking.Snapshot{},
		log:        log,
		width:      int(bounds.Width),
		height:     int(bounds.Height),
		defaults:   cfg,
	}

	panel := ui.NewPanel("Flocking (H hides)", 10, 10, 260, bounds.Height-20)

	panel.AddSection("Weights")
	g.widgetSeparation = panel.AddSlider("Separation [Q/A]", 0, 5, cfg.SeparationWeight)
	g.widgetAlignment = panel.AddSlider("Alignment [W/S]", 0, 5, cfg.AlignmentWeight)
	g.widgetCohesion = panel.AddSlider("Cohesion [E/D]", 0, 5, cfg.CohesionWeight)

	panel.AddSection("Motion")
	g.widgetSpeed = panel.AddSlider("Speed [R/F]", 0, 400, cfg.Speed)
	g.widgetSpeed.Format = "%.0f"
	g.widgetTurn = panel.AddSlider("Turn smoothing", 0.01, 1, cfg.TurnSmoothing)
	g.widgetTurnRate = panel.AddSlider("Turn rate (1/s)", 0, 20, cfg.TurnRate)
	g.widgetExponential = panel.AddCheckbox("Frame-rate independent turn", cfg.Smoothing == flocking.SmoothingExponential)

	panel.AddSection("Neighborhood")
	g.widgetCellSize = panel.AddSlider("Cell size [T/G]", 5, 200, cfg.CellSize)
	g.widgetCellSize.Format = "%.0f"
	g.widgetViewRadius = panel.AddSlider("View radius (0 = block)", 0, 200, cfg.ViewRadius)
	g.widgetViewRadius.Format = "%.0f"

	panel.AddSection("View")
	g.widgetShowGrid = panel.AddCheckbox("Show grid [1]", false)
	g.widgetShowLeader = panel.AddCheckbox("Show leader gizmos [2]", true)
	g.widgetPaused = panel.AddCheckbox("Paused [Space]", false)
	g.widgetShowPanel = ui.NewCheckbox(0, 0, "", true)
	panel.AddButton("Reset to defaults", g.resetConfig)

	g.keys.Bind(ebiten.KeyQ, ebiten.KeyA, g.widgetSeparation)
	g.keys.Bind(ebiten.KeyW, ebiten.KeyS, g.widgetAlignment)
	g.keys.Bind(ebiten.KeyE, ebiten.KeyD, g.widgetCohesion)
	g.keys.Bind(ebiten.KeyR, ebiten.KeyF, g.widgetSpeed)
	g.keys.Bind(ebiten.KeyT, ebiten.KeyG, g.widgetCellSize)
	g.keys.BindToggle(ebiten.KeySpace, g.widgetPaused)
	g.keys.BindToggle(ebiten.Key1, g.widgetShowGrid)
	g.keys.BindToggle(ebiten.Key2, g.widgetShowLeader)
	g.keys.BindToggle(ebiten.KeyH, g.widgetShowPanel)

	g.panel = panel
	return g
}

func (g *Game) resetConfig() {
	c := g.defaults
	g.widgetSeparation.SetValue(c.SeparationWeight)
	g.widgetAlignment.SetValue(c.AlignmentWeight)
	g.widgetCohesion.SetValue(c.CohesionWeight)
	g.widgetSpeed.SetValue(c.Speed)
	g.widgetTurn.SetValue(c.TurnSmoothing)
	g.widgetTurnRate.SetValue(c.TurnRate)
	g.widgetCellSize.SetValue(c.CellSize)
	g.widgetViewRadius.SetValue(c.ViewRadius)
	if g.widgetExponential.Value != (c.Smoothing == flocking.SmoothingExponential) {
		g.widgetExponential.Toggle()
	}
}

// configChanged drains every Changed flag, so it must not short-circuit.
func (g *Game) configChanged() bool {
	changed := false
	for _, s := range []*ui.Slider{
		g.widgetSeparation, g.widgetAlignment, g.widgetCohesion, g.widgetSpeed,
		g.widgetTurn, g.widgetTurnRate, g.widgetCellSize, g.widgetViewRadius,
	} {
		changed = s.Changed() || changed
	}
	return g.widgetExponential.Changed() || changed
}

func (g *Game) currentConfig() flocking.Config {
	mode := flocking.SmoothingPerTick
	if g.widgetExponential.Value {
		mode = flocking.SmoothingExponential
	}
	return flocking.Config{
		SeparationWeight: g.widgetSeparation.Value,
		AlignmentWeight:  g.widgetAlignment.Value,
		CohesionWeight:   g.widgetCohesion.Value,
		Speed:            g.widgetSpeed.Value,
		Smoothing:        mode,
		TurnSmoothing:    g.widgetTurn.Value,
		TurnRate:         g.widgetTurnRate.Value,
		CellSize:         g.widgetCellSize.Value,
		ViewRadius:       g.widgetViewRadius.Value,
	}
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	// 1. Input
	if g.widgetShowPanel.Value {
		g.panel.Update()
	}
	g.keys.Update()

	// 2. Retrieve Latest State (Non-blocking)
	select {
	case snap := <-g.snapshotCh:
		g.lastState = snap
	default:
	}

	// 3. Forward changes, then trigger the simulation step
	if g.configChanged() {
		if err := actor.Tell(g.ctx, g.worldPID, simulation.ConfigToStruct(g.currentConfig())); err != nil {
			g.log.Warn("send config", zap.Error(err))
		}
	}
	if g.widgetPaused.Changed() {
		_ = actor.Tell(g.ctx, g.worldPID, simulation.PauseMessage(g.widgetPaused.Value))
	}

	dt := time.Second / time.Duration(ebiten.TPS())
	if !g.lastFrame.IsZero() {
		dt = min(start.Sub(g.lastFrame), maxFrameDt)
	}
	g.lastFrame = start
	if err := actor.Tell(g.ctx, g.worldPID, simulation.TickMessage(dt)); err != nil {
		return fmt.Errorf("tick world: %w", err)
	}
	return nil
}

// toScreen maps origin-centered world coordinates to pixels.
func (g *Game) toScreen(x, y float64) (float32, float32) {
	return float32(x + float64(g.width)/2), float32(y + float64(g.height)/2)
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	screen.Fill(colorBackground)
	snap := g.lastState

	if g.widgetShowGrid.Value {
		g.drawGrid(screen, snap)
	}
	g.drawBoids(screen, snap.Agents)
	if g.widgetShowLeader.Value {
		g.drawLeaders(screen, snap)
	}

	if g.widgetShowPanel.Value {
		g.panel.Draw(screen)
	}

	st := snap.Stats
	msg := fmt.Sprintf("FPS: %.2f\nTPS: %.2f\n\nUpdate: %.2fms\nDraw:   %.2fms\n\nTick:   %d\nBoids:  %d\nCells:  %d\nNeighb: %.2f\nPolar:  %.2f",
		ebiten.ActualFPS(),
		ebiten.ActualTPS(),
		g.updateAvg,
		g.drawAvg,
		st.Tick, st.Population, st.OccupiedCells, st.MeanNeighbors, st.Polarization)
	ebitenutil.DebugPrintAt(screen, msg, g.width-150, 10)
}

func (g *Game) drawGrid(screen *ebiten.Image, snap *flocking.Snapshot) {
	size := snap.CellSize
	if !(size > 0) {
		return
	}
	for _, c := range snap.Cells {
		x, y := g.toScreen(float64(c.X)*size, float64(c.Y)*size)
		vector.StrokeRect(screen, x, y, float32(size), float32(size), 1, colorGrid, false)
	}
}

// drawBoids batches every boid into as few DrawTriangles calls as possible.
func (g *Game) drawBoids(screen *ebiten.Image, agents []flocking.Agent) {
	for len(agents) > 0 {
		n := min(len(agents), batchBoids)
		g.vertices = g.vertices[:0]
		g.indices = g.indices[:0]
		for i, a := range agents[:n] {
			r, gr, b := float32(0.4), float32(0.8), float32(1)
			if a.Leader {
				r, gr, b = 1, 0.7, 0.15
			}
			angle := math.Atan2(a.Heading.Y, a.Heading.X)
			for _, p := range boidShape {
				x, y := g.toScreen(a.Position.X+math.Cos(angle+p.da)*p.l, a.Position.Y+math.Sin(angle+p.da)*p.l)
				g.vertices = append(g.vertices, ebiten.Vertex{
					DstX: x, DstY: y,
					SrcX: 1, SrcY: 1,
					ColorR: r, ColorG: gr, ColorB: b, ColorA: 1,
				})
			}
			base := uint16(i * 3)
			g.indices = append(g.indices, base, base+1, base+2)
		}
		screen.DrawTriangles(g.vertices, g.indices, whiteImage, &ebiten.DrawTrianglesOptions{})
		agents = agents[n:]
	}
}

// drawLeaders links each leader to the flockmates it saw and shows its
// target heading.
func (g *Game) drawLeaders(screen *ebiten.Image, snap *flocking.Snapshot) {
	for _, v := range snap.Leaders {
		ax, ay := g.toScreen(v.Agent.Position.X, v.Agent.Position.Y)
		for _, n := range v.Neighbors {
			if n.ID == v.Agent.ID {
				continue
			}
			nx, ny := g.toScreen(n.Position.X, n.Position.Y)
			vector.StrokeLine(screen, ax, ay, nx, ny, 1, colorNeighbor, true)
		}
		t := v.Steering.Target
		tx, ty := g.toScreen(v.Agent.Position.X+t.X*30, v.Agent.Position.Y+t.Y*30)
		vector.StrokeLine(screen, ax, ay, tx, ty, 2, colorTarget, true)
		if r := snap.CellSize * 1.5; r > 0 {
			vector.StrokeCircle(screen, ax, ay, float32(r), 1, colorLeader, true)
		}
	}
}

func (g *Game) Layout(w, h int) (int, int) { return g.width, g.height }
