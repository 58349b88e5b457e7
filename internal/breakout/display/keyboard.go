package display

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/plus3/brickworks/core"
)

// DefaultBindings maps the keys the game listens to.
var DefaultBindings = map[ebiten.Key]core.Key{
	ebiten.KeyArrowLeft:  core.KeyLeft,
	ebiten.KeyArrowRight: core.KeyRight,
	ebiten.KeyArrowUp:    core.KeyUp,
	ebiten.KeyArrowDown:  core.KeyDown,
	ebiten.KeyA:          core.KeyA,
	ebiten.KeyD:          core.KeyD,
	ebiten.KeySpace:      core.KeySpace,
	ebiten.KeyEnter:      core.KeyEnter,
	ebiten.KeyEscape:     core.KeyEscape,
	ebiten.KeyR:          core.KeyR,
	ebiten.KeyF1:         core.KeyF1,
}

// Keyboard polls ebiten's keyboard state. Poll must be called from ebiten's
// Update.
type Keyboard struct {
	Bindings map[ebiten.Key]core.Key
	// Blocked suppresses key input, for example while an overlay has focus.
	Blocked func() bool
}

func NewKeyboard() *Keyboard {
	return &Keyboard{Bindings: DefaultBindings}
}

func (k *Keyboard) Poll() core.Input {
	in := core.Input{CloseRequested: ebiten.IsWindowBeingClosed()}
	if k.Blocked != nil && k.Blocked() {
		return in
	}
	for key, mapped := range k.Bindings {
		if ebiten.IsKeyPressed(key) {
			in.Held = in.Held.With(mapped)
		}
		if inpututil.IsKeyJustPressed(key) {
			in.Pressed = in.Pressed.With(mapped)
		}
	}
	return in
}
