package main

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"
	"google.golang.org/protobuf/proto"

	"github.com/lao-tseu-is-alive/go-boids-flocking/internal/simulation"
	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/flocking"
)

const (
	weightStep = 0.1
	speedStep  = 10
)

// headings indexed by octant, screen y grows downwards like world y
var headings = [8]rune{'→', '↘', '↓', '↙', '←', '↖', '↑', '↗'}

var (
	styleBoid   = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	styleLeader = tcell.StyleDefault.Foreground(tcell.ColorOrange).Bold(true)
	styleStatus = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver)
)

// terminalView draws snapshots as heading arrows and turns key presses into
// world messages.
type terminalView struct {
	screen   tcell.Screen
	send     func(proto.Message) error
	defaults flocking.Config
	cfg      flocking.Config
	paused   bool
	last     *flocking.Snapshot
}

func newTerminalView(screen tcell.Screen, cfg flocking.Config, send func(proto.Message) error) *terminalView {
	return &terminalView{
		screen:   screen,
		send:     send,
		defaults: cfg,
		cfg:      cfg,
		last:     &flocking.Snapshot{},
	}
}

func headingGlyph(h flocking.Agent) rune {
	octant := int(math.Round(math.Atan2(h.Heading.Y, h.Heading.X)/(math.Pi/4))) & 7
	return headings[octant]
}

// handleInput returns false when the user asked to quit.
func (v *terminalView) handleInput(ev tcell.Event) (bool, error) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false, nil
		}
		if ev.Key() != tcell.KeyRune {
			return true, nil
		}
		return v.handleRune(ev.Rune())
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true, nil
}

func (v *terminalView) handleRune(r rune) (bool, error) {
	c := &v.cfg
	switch r {
	case 'q':
		return false, nil
	case ' ':
		v.paused = !v.paused
		return true, v.send(simulation.PauseMessage(v.paused))
	case 's', 'S':
		c.SeparationWeight = nudge(c.SeparationWeight, weightStep, r == 'S')
	case 'a', 'A':
		c.AlignmentWeight = nudge(c.AlignmentWeight, weightStep, r == 'A')
	case 'c', 'C':
		c.CohesionWeight = nudge(c.CohesionWeight, weightStep, r == 'C')
	case '-', '+', '=':
		c.Speed = nudge(c.Speed, speedStep, r != '-')
	case 'm':
		if c.Smoothing == flocking.SmoothingExponential {
			c.Smoothing = flocking.SmoothingPerTick
		} else {
			c.Smoothing = flocking.SmoothingExponential
		}
	case 'r':
		v.cfg = v.defaults
	default:
		return true, nil
	}
	return true, v.send(simulation.ConfigToStruct(v.cfg))
}

func nudge(v, step float64, up bool) float64 {
	if up {
		return v + step
	}
	return max(v-step, 0)
}

// draw maps the world onto every row but the last, which holds the status.
func (v *terminalView) draw() {
	v.screen.Clear()
	cols, rows := v.screen.Size()
	snap := v.last
	if rows > 1 && snap.Bounds.Width > 0 && snap.Bounds.Height > 0 {
		for _, a := range snap.Agents {
			if !a.Leader {
				v.plot(a, styleBoid, cols, rows-1)
			}
		}
		// leaders last so they stay on top
		for _, a := range snap.Agents {
			if a.Leader {
				v.plot(a, styleLeader, cols, rows-1)
			}
		}
	}
	v.drawStatus(cols, rows-1)
	v.screen.Show()
}

func (v *terminalView) plot(a flocking.Agent, style tcell.Style, cols, rows int) {
	b := v.last.Bounds
	x := int((a.Position.X + b.Width/2) / b.Width * float64(cols))
	y := int((a.Position.Y + b.Height/2) / b.Height * float64(rows))
	if x < 0 || x >= cols || y < 0 || y >= rows {
		return
	}
	v.screen.SetContent(x, y, headingGlyph(a), nil, style)
}

func (v *terminalView) drawStatus(cols, row int) {
	st := v.last.Stats
	state := ""
	if v.paused {
		state = " PAUSED"
	}
	line := fmt.Sprintf(" tick %d  boids %d  polar %.2f  sep %.1f ali %.1f coh %.1f speed %.0f %s%s  [s/a/c ±, +/- speed, m mode, r reset, space pause, q quit]",
		st.Tick, st.Population, st.Polarization,
		v.cfg.SeparationWeight, v.cfg.AlignmentWeight, v.cfg.CohesionWeight, v.cfg.Speed,
		v.cfg.Smoothing, state)
	x := 0
	for _, r := range line {
		if x >= cols {
			break
		}
		v.screen.SetContent(x, row, r, nil, styleStatus)
		x++
	}
	for ; x < cols; x++ {
		v.screen.SetContent(x, row, ' ', nil, styleStatus)
	}
}
