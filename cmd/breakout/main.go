// Command breakout runs the Breakout game in a window.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/brickworks/core"
	"github.com/plus3/brickworks/ecs"
	"github.com/plus3/brickworks/ecs/debugui"
	"github.com/plus3/brickworks/internal/breakout"
	"github.com/plus3/brickworks/internal/breakout/display"
	"github.com/plus3/brickworks/level"
	"github.com/plus3/brickworks/resources"
)

func main() {
	fixedStep := flag.Duration("fixed-step", time.Second/60, "Simulated time per physics step.")
	maxCatchUp := flag.Int("max-catchup", 5, "Most physics steps run in one frame; 0 disables the cap.")
	levelPath := flag.String("level", "", "Play a single level file instead of the built-in levels.")
	assets := flag.String("assets", "", "Directory holding block.png, block_solid.png and background.jpg.")
	tps := flag.Int("tps", ebiten.DefaultTPS, "Ticks per second.")
	debugUI := flag.Bool("debug-ui", false, "Show the ECS and physics inspector. F1 toggles it.")
	flag.Parse()

	logger := log.New(os.Stderr, "breakout: ", log.LstdFlags|log.Lmsgprefix)

	levels, err := loadLevels(*levelPath)
	if err != nil {
		logger.Fatalf("load levels: %v", err)
	}

	config := core.DefaultConfig()
	config.FixedStep = *fixedStep
	config.MaxCatchUpSteps = *maxCatchUp
	config.Physics.Gravity = mgl32.Vec3{}
	config.Logger = logger

	registry := ecs.NewComponentRegistry()
	breakout.RegisterComponents(registry)
	debugui.RegisterComponents(registry)
	world := core.NewWorld(config, registry)

	gameConfig := breakout.DefaultConfig()
	gameContext := core.NewGameContext(core.StateMenu, logger)

	var textures *resources.TextureCache
	if *assets != "" {
		textures = resources.NewTextureCache(os.DirFS(*assets))
	}
	renderer := display.NewRenderer(gameConfig, gameContext, textures)
	keyboard := display.NewKeyboard()

	game := core.NewGame(world, gameContext, renderer, keyboard)
	_, systems := breakout.Setup(world, gameContext, gameConfig, levels...)
	game.AddSystems(systems...)

	width, height := renderer.Layout()
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle("Breakout")
	ebiten.SetTPS(*tps)
	ebiten.SetWindowClosingHandled(true)

	var runner ebiten.Game = newApp(game, renderer, core.NewWallClock())
	if *debugUI {
		runner = withDebugUI(runner, world, keyboard, width, height)
	}

	if err := ebiten.RunGame(runner); err != nil {
		logger.Fatalf("run: %v", err)
	}
}

func loadLevels(path string) ([]*level.Level, error) {
	if path == "" {
		return breakout.BuiltinLevels()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	l, err := level.Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return []*level.Level{l}, nil
}
