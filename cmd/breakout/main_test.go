package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/brickworks/core"
	"github.com/plus3/brickworks/ecs"
	"github.com/plus3/brickworks/level"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLevels(t *testing.T) {
	builtin, err := loadLevels("")
	require.NoError(t, err)
	assert.NotEmpty(t, builtin)

	path := filepath.Join(t.TempDir(), "single")
	data := []byte{2, 1, byte(level.Solid), byte(level.Blue)}
	require.NoError(t, os.WriteFile(path, data, 0o644))

	levels, err := loadLevels(path)
	require.NoError(t, err)
	require.Len(t, levels, 1)
	assert.Equal(t, 2, levels[0].Width)

	require.NoError(t, os.WriteFile(path, []byte{2, 2, 1}, 0o644))
	_, err = loadLevels(path)
	assert.ErrorIs(t, err, level.ErrGridSize)

	_, err = loadLevels(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestAppTerminatesWhenGameEnds(t *testing.T) {
	config := core.DefaultConfig()
	config.Logger = log.New(io.Discard, "", 0)
	world := core.NewWorld(config, ecs.NewComponentRegistry())
	ctx := core.NewGameContext(core.StateActive, nil)
	game := core.NewGame(world, ctx, nil, nil)

	a := newApp(game, nil, core.FixedClock(time.Second/60))
	require.NoError(t, a.Update())
	assert.Equal(t, uint64(1), world.Stats().Steps)

	ctx.End()
	assert.ErrorIs(t, a.Update(), ebiten.Termination)
}
