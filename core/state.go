package core

import (
	"fmt"
	"log"
	"sync"
)

// GameState is the coarse mode the game is in.
type GameState int

const (
	StateActive GameState = iota
	StateMenu
	StateWin
	StateLose
)

func (s GameState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateMenu:
		return "menu"
	case StateWin:
		return "win"
	case StateLose:
		return "lose"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// GameContext is shared between systems and the render side. It holds the
// current GameState and whether the game has ended.
type GameContext struct {
	mu     sync.RWMutex
	state  GameState
	ended  bool
	logger *log.Logger
}

// NewGameContext returns a context in the given state. A nil logger disables
// transition logging.
func NewGameContext(initial GameState, logger *log.Logger) *GameContext {
	return &GameContext{state: initial, logger: logger}
}

func (c *GameContext) State() GameState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// SetState switches to next and reports whether the state changed.
func (c *GameContext) SetState(next GameState) bool {
	c.mu.Lock()
	prev := c.state
	c.state = next
	c.mu.Unlock()

	if prev == next {
		return false
	}
	if c.logger != nil {
		c.logger.Printf("state %s -> %s", prev, next)
	}
	return true
}

// End marks the game as finished. The game loop exits before the next frame.
func (c *GameContext) End() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ended = true
}

func (c *GameContext) Ended() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ended
}
