package main

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/plus3/brickworks/core"
	"github.com/plus3/brickworks/ecs/debugui"
	debugui_ebiten "github.com/plus3/brickworks/ecs/debugui/ebiten"
	"github.com/plus3/brickworks/internal/breakout/display"
)

// app adapts a core.Game to ebiten: every ebiten tick advances the world by
// the measured wall time.
type app struct {
	game     *core.Game
	renderer *display.Renderer
	clock    core.Clock
}

func newApp(game *core.Game, renderer *display.Renderer, clock core.Clock) *app {
	return &app{game: game, renderer: renderer, clock: clock}
}

func (a *app) Update() error {
	if _, ended := a.game.Tick(a.clock.Delta()); ended {
		return ebiten.Termination
	}
	return nil
}

func (a *app) Draw(screen *ebiten.Image) {
	a.renderer.Draw(screen)
}

func (a *app) Layout(int, int) (int, int) {
	return a.renderer.Layout()
}

// debugOverlay hides the inspector windows until F1 is pressed again.
type debugOverlay struct {
	*debugui_ebiten.Overlay
	hidden bool
}

func (d *debugOverlay) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		d.hidden = !d.hidden
	}
	return d.Overlay.Update()
}

func (d *debugOverlay) Draw(screen *ebiten.Image) {
	if d.hidden {
		d.Overlay.Game.Draw(screen)
		return
	}
	d.Overlay.Draw(screen)
}

func withDebugUI(game ebiten.Game, world *core.World, keyboard *display.Keyboard, width, height int) ebiten.Game {
	backend := debugui_ebiten.NewImguiBackend("Breakout", width, height)

	storage := world.Storage()
	debugui.Spawn(storage)
	storage.Spawn(debugui.NewStatsWindow("Physics", func() []debugui.Stat {
		return physicsStats(world)
	}))

	world.AddSystem(&debugui.ImguiSystem{})
	world.AddSystem(&debugui.WindowSystem{Scheduler: world.Scheduler()})

	overlay := &debugOverlay{Overlay: &debugui_ebiten.Overlay{Game: game, Backend: backend}}
	keyboard.Blocked = func() bool {
		return !overlay.hidden && debugui.KeyboardCaptured(storage)
	}
	return overlay
}

func physicsStats(world *core.World) []debugui.Stat {
	frame := world.Stats()
	engine := world.Engine().Stats()
	return []debugui.Stat{
		{Label: "Colliders", Value: fmt.Sprint(engine.Colliders)},
		{Label: "Rigid bodies", Value: fmt.Sprint(engine.RigidBodies)},
		{Label: "Contact pairs", Value: fmt.Sprint(engine.ActivePairs)},
		{Label: "Steps", Value: fmt.Sprintf("%d (%d dropped)", frame.Steps, frame.DroppedSteps)},
		{Label: "Lag", Value: world.Lag().String()},
		{Label: "Events", Value: fmt.Sprintf("%d received, %d discarded", frame.EventsReceived, frame.EventsDiscarded)},
		{Label: "Records", Value: fmt.Sprint(frame.RecordsPublished)},
		{Label: "Orphans removed", Value: fmt.Sprint(frame.OrphansRemoved)},
		{Label: "Scale failures", Value: fmt.Sprint(frame.ScaleFailures)},
	}
}
