package core

import "github.com/plus3/brickworks/ecs"

// Key identifies a keyboard key independently of the windowing backend.
type Key uint8

const (
	KeyUnknown Key = iota
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyA
	KeyD
	KeySpace
	KeyEnter
	KeyEscape
	KeyR
	KeyF1
)

// KeySet is a set of keys.
type KeySet uint64

// Keys builds a set from keys.
func Keys(keys ...Key) KeySet {
	var s KeySet
	for _, k := range keys {
		s = s.With(k)
	}
	return s
}

func (s KeySet) Has(k Key) bool {
	return s&(1<<k) != 0
}

func (s KeySet) With(k Key) KeySet {
	return s | 1<<k
}

// Input is the keyboard state for the current frame.
//
//ecs:component
type Input struct {
	// Held keys are down this frame.
	Held KeySet
	// Pressed keys went down this frame.
	Pressed KeySet
	// CloseRequested is set when the window was asked to close.
	CloseRequested bool
}

// QuitControl ends the game when its key is pressed or the window closes.
//
//ecs:component
type QuitControl struct {
	Key Key
}

// InputSource produces the input state for a frame.
type InputSource interface {
	Poll() Input
}

// InputFunc adapts a function to InputSource.
type InputFunc func() Input

func (f InputFunc) Poll() Input {
	return f()
}

// InputSystem copies the source's state into every Input component at the
// start of each frame.
type InputSystem struct {
	ecs.BaseSystem
	Source InputSource

	Inputs ecs.Query[struct{ *Input }]
}

func (s *InputSystem) Name() string { return "input" }

func (s *InputSystem) EarlyUpdate(*ecs.UpdateFrame) error {
	state := s.Source.Poll()
	for item := range s.Inputs.Values() {
		*item.Input = state
	}
	return nil
}

// QuitSystem ends the game on a close request or its quit key.
type QuitSystem struct {
	ecs.BaseSystem
	Context *GameContext

	Controls ecs.Query[struct {
		*Input
		*QuitControl
	}]
}

func (s *QuitSystem) Name() string { return "quit" }

func (s *QuitSystem) EarlyUpdate(*ecs.UpdateFrame) error {
	for item := range s.Controls.Values() {
		if item.Input.CloseRequested || item.Input.Pressed.Has(item.QuitControl.Key) {
			s.Context.End()
		}
	}
	return nil
}
