package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// KeyNudge moves a slider by one step per press of Up or Down.
type KeyNudge struct {
	Up, Down ebiten.Key
	Slider   *Slider
}

// KeyMap holds keyboard shortcuts for sliders and checkboxes.
type KeyMap struct {
	Nudges  []KeyNudge
	Toggles map[ebiten.Key]*Checkbox
}

// Bind adds a pair of keys for s.
func (k *KeyMap) Bind(up, down ebiten.Key, s *Slider) {
	k.Nudges = append(k.Nudges, KeyNudge{Up: up, Down: down, Slider: s})
}

// BindToggle makes key flip c.
func (k *KeyMap) BindToggle(key ebiten.Key, c *Checkbox) {
	if k.Toggles == nil {
		k.Toggles = make(map[ebiten.Key]*Checkbox)
	}
	k.Toggles[key] = c
}

// Update applies the keys pressed this frame. Holding a key repeats it.
func (k *KeyMap) Update() {
	for _, n := range k.Nudges {
		if repeating(n.Up) {
			n.Slider.Nudge(1)
		}
		if repeating(n.Down) {
			n.Slider.Nudge(-1)
		}
	}
	for key, c := range k.Toggles {
		if inpututil.IsKeyJustPressed(key) {
			c.Toggle()
		}
	}
}

// repeating fires on the first frame and then every 4 frames after a
// 30 frame delay.
func repeating(key ebiten.Key) bool {
	d := inpututil.KeyPressDuration(key)
	return d == 1 || (d >= 30 && (d-30)%4 == 0)
}
