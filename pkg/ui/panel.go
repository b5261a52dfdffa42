package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Widget is anything the panel can stack vertically.
type Widget interface {
	Update()
	Draw(screen *ebiten.Image)
	height() float64
	setY(y float64)
}

const (
	titleHeight   = 30
	sectionHeight = 25
	scrollStep    = 20
)

type section struct {
	title string
	start int // first widget index
}

// Panel is a scrollable column of titled sections.
type Panel struct {
	Title         string
	X, Y          float64
	Width, Height float64
	ScrollOffset  float64

	BGColor     color.RGBA
	BorderColor color.RGBA
	SectionBG   color.RGBA

	widgets  []Widget
	sections []section
}

// NewPanel creates an empty panel at x, y.
func NewPanel(title string, x, y, width, height float64) *Panel {
	return &Panel{
		Title:       title,
		X:           x,
		Y:           y,
		Width:       width,
		Height:      height,
		BGColor:     color.RGBA{R: 40, G: 40, B: 45, A: 230},
		BorderColor: color.RGBA{R: 100, G: 100, B: 110, A: 255},
		SectionBG:   color.RGBA{R: 60, G: 60, B: 70, A: 255},
	}
}

// AddSection starts a new section; following widgets belong to it.
func (p *Panel) AddSection(title string) {
	p.sections = append(p.sections, section{title: title, start: len(p.widgets)})
}

func (p *Panel) add(w Widget) {
	if len(p.sections) == 0 {
		p.AddSection("")
	}
	p.widgets = append(p.widgets, w)
	p.layout()
}

// AddSlider appends a slider to the current section.
func (p *Panel) AddSlider(label string, min, max, value float64) *Slider {
	s := NewSlider(p.X+10, 0, p.Width-20, label, min, max, value)
	p.add(s)
	return s
}

// AddCheckbox appends a checkbox to the current section.
func (p *Panel) AddCheckbox(label string, value bool) *Checkbox {
	c := NewCheckbox(p.X+10, 0, label, value)
	p.add(c)
	return c
}

// AddButton appends a full-width button to the current section.
func (p *Panel) AddButton(label string, onClick func()) *Button {
	b := NewButton(p.X+10, 0, p.Width-20, 22, label, onClick)
	p.add(b)
	return b
}

// Contains reports whether the screen point x, y lies on the panel.
func (p *Panel) Contains(x, y int) bool {
	return float64(x) >= p.X && float64(x) <= p.X+p.Width &&
		float64(y) >= p.Y && float64(y) <= p.Y+p.Height
}

// layout places every widget at its scrolled position. It must run before
// widgets handle input, otherwise clicks hit last frame's positions.
func (p *Panel) layout() {
	y := p.Y + titleHeight - p.ScrollOffset
	next := 0
	for i, w := range p.widgets {
		for next < len(p.sections) && p.sections[next].start == i {
			y += sectionHeight
			next++
		}
		w.setY(y)
		y += w.height()
	}
}

func (p *Panel) contentHeight() float64 {
	h := float64(titleHeight + sectionHeight*len(p.sections))
	for _, w := range p.widgets {
		h += w.height()
	}
	return h
}

// Update scrolls with the mouse wheel and forwards input to the widgets.
func (p *Panel) Update() {
	if _, dy := ebiten.Wheel(); dy != 0 {
		mx, my := ebiten.CursorPosition()
		if p.Contains(mx, my) {
			p.ScrollOffset -= dy * scrollStep
			maxScroll := max(p.contentHeight()-p.Height+40, 0)
			p.ScrollOffset = min(max(p.ScrollOffset, 0), maxScroll)
		}
	}
	p.layout()
	for _, w := range p.widgets {
		w.Update()
	}
}

func (p *Panel) visible(y, h float64) bool {
	return y+h >= p.Y+titleHeight && y <= p.Y+p.Height
}

// Draw renders the panel and the widgets inside its bounds.
func (p *Panel) Draw(screen *ebiten.Image) {
	vector.FillRect(screen, float32(p.X), float32(p.Y), float32(p.Width), float32(p.Height), p.BGColor, true)
	vector.StrokeRect(screen, float32(p.X), float32(p.Y), float32(p.Width), float32(p.Height), 2, p.BorderColor, true)
	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+10), int(p.Y+5))

	y := p.Y + titleHeight - p.ScrollOffset
	next := 0
	for i, w := range p.widgets {
		for next < len(p.sections) && p.sections[next].start == i {
			if s := p.sections[next]; s.title != "" && p.visible(y, 20) {
				vector.FillRect(screen, float32(p.X+5), float32(y), float32(p.Width-10), 20, p.SectionBG, true)
				ebitenutil.DebugPrintAt(screen, s.title, int(p.X+10), int(y+3))
			}
			y += sectionHeight
			next++
		}
		if p.visible(y, w.height()) {
			w.Draw(screen)
		}
		y += w.height()
	}
}
