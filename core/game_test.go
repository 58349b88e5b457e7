package core_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/plus3/brickworks/core"
	"github.com/plus3/brickworks/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedInput struct {
	frames []core.Input
	polls  int
}

func (s *scriptedInput) Poll() core.Input {
	s.polls++
	if s.polls <= len(s.frames) {
		return s.frames[s.polls-1]
	}
	return core.Input{}
}

type frameRecorder struct {
	frames []core.FrameResult
	err    error
}

func (r *frameRecorder) Present(_ *core.World, frame core.FrameResult) error {
	r.frames = append(r.frames, frame)
	return r.err
}

func newGameWorld(logs io.Writer) *core.World {
	config := core.DefaultConfig()
	config.Logger = log.New(logs, "", 0)
	return core.NewWorld(config, ecs.NewComponentRegistry())
}

func TestGameQuitsOnEscape(t *testing.T) {
	input := &scriptedInput{frames: []core.Input{
		{},
		{Held: core.Keys(core.KeyLeft), Pressed: core.Keys(core.KeyLeft)},
		{Pressed: core.Keys(core.KeyEscape)},
	}}
	renderer := &frameRecorder{}
	gameContext := core.NewGameContext(core.StateActive, nil)
	game := core.NewGame(newGameWorld(io.Discard), gameContext, renderer, input)

	require.NoError(t, game.Run(context.Background(), core.FixedClock(time.Second/60)))

	assert.True(t, gameContext.Ended())
	assert.Equal(t, 3, input.polls)
	assert.Len(t, renderer.frames, 3)
	assert.Equal(t, 1, renderer.frames[0].Steps)
}

func TestGameQuitsOnCloseRequest(t *testing.T) {
	input := core.InputFunc(func() core.Input {
		return core.Input{CloseRequested: true}
	})
	gameContext := core.NewGameContext(core.StateActive, nil)
	game := core.NewGame(newGameWorld(io.Discard), gameContext, nil, input)

	_, ended := game.Tick(16 * time.Millisecond)
	assert.True(t, ended)

	frame, ended := game.Tick(16 * time.Millisecond)
	assert.True(t, ended)
	assert.Zero(t, frame)
}

func TestGameCopiesInputToEveryEntity(t *testing.T) {
	held := core.Keys(core.KeyA, core.KeySpace)
	game := core.NewGame(newGameWorld(io.Discard), core.NewGameContext(core.StateActive, nil), nil,
		core.InputFunc(func() core.Input { return core.Input{Held: held} }))
	player := game.World().Spawn(core.Input{})

	game.Tick(0)

	input := ecs.ReadComponent[core.Input](game.World().Storage(), player)
	require.NotNil(t, input)
	assert.True(t, input.Held.Has(core.KeyA))
	assert.True(t, input.Held.Has(core.KeySpace))
	assert.False(t, input.Held.Has(core.KeyEscape))
}

func TestGameRunStopsOnCancel(t *testing.T) {
	game := core.NewGame(newGameWorld(io.Discard), core.NewGameContext(core.StateActive, nil), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := game.Run(ctx, core.FixedClock(time.Millisecond))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGameLogsRenderFailures(t *testing.T) {
	var logs bytes.Buffer
	renderer := &frameRecorder{err: errors.New("device lost")}
	game := core.NewGame(newGameWorld(&logs), core.NewGameContext(core.StateActive, nil), renderer, nil)

	_, ended := game.Tick(time.Millisecond)
	assert.False(t, ended)
	assert.Contains(t, logs.String(), "render: device lost")
}

func TestKeySet(t *testing.T) {
	keys := core.Keys(core.KeyLeft, core.KeyF1)
	assert.True(t, keys.Has(core.KeyLeft))
	assert.True(t, keys.Has(core.KeyF1))
	assert.False(t, keys.Has(core.KeyRight))
	assert.True(t, keys.With(core.KeyRight).Has(core.KeyRight))
}
