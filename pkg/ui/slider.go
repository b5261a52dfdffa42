package ui

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Slider is a horizontal value picker. Dragging inside the bar or calling
// Nudge moves the value; Changed reports it once per change.
type Slider struct {
	Label    string
	Value    float64
	Min, Max float64
	Step     float64 // keyboard increment, 1% of the range when zero
	Format   string  // fmt verb for the value, "%.2f" when empty
	X, Y     float64
	W, H     float64
	changed  bool
}

// NewSlider creates a slider whose bar starts at x, y.
func NewSlider(x, y, w float64, label string, min, max, value float64) *Slider {
	s := &Slider{
		Label: label,
		Min:   min,
		Max:   max,
		X:     x,
		Y:     y,
		W:     w,
		H:     10,
	}
	s.Value = s.clamp(value)
	return s
}

// Update checks for mouse interaction
func (s *Slider) Update() {
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	if float64(mx) >= s.X && float64(mx) <= s.X+s.W &&
		float64(my) >= s.Y && float64(my) <= s.Y+s.H {
		p := (float64(mx) - s.X) / s.W
		s.SetValue(s.Min + p*(s.Max-s.Min))
	}
}

// SetValue clamps v into [Min, Max] and marks the slider changed when the
// value moves.
func (s *Slider) SetValue(v float64) {
	v = s.clamp(v)
	if v != s.Value {
		s.Value = v
		s.changed = true
	}
}

// Nudge moves the value by dir steps.
func (s *Slider) Nudge(dir float64) {
	step := s.Step
	if step <= 0 {
		step = (s.Max - s.Min) / 100
	}
	s.SetValue(s.Value + dir*step)
}

// Changed reports whether the value moved since the previous call.
func (s *Slider) Changed() bool {
	c := s.changed
	s.changed = false
	return c
}

func (s *Slider) clamp(v float64) float64 {
	if math.IsNaN(v) {
		return s.Min
	}
	return math.Max(s.Min, math.Min(s.Max, v))
}

// Draw renders the label, the bar and the current value.
func (s *Slider) Draw(screen *ebiten.Image) {
	format := s.Format
	if format == "" {
		format = "%.2f"
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s: "+format, s.Label, s.Value), int(s.X), int(s.Y)-16)

	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W), float32(s.H), color.RGBA{R: 80, G: 80, B: 80, A: 255}, true)

	ratio := 0.0
	if s.Max > s.Min {
		ratio = (s.Value - s.Min) / (s.Max - s.Min)
	}
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W*ratio), float32(s.H), color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)
}

func (s *Slider) height() float64 { return s.H + 25 }
func (s *Slider) setY(y float64)  { s.Y = y + 15 }
