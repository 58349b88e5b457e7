// Command physics-stress fills a closed box with bouncing bodies and reports
// how long the world takes to advance a frame.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/brickworks/core"
	"github.com/plus3/brickworks/ecs"
	"github.com/plus3/brickworks/physics"
)

const (
	boxWidth  = 200
	boxHeight = 200
)

func main() {
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	bodyCount := flag.Int("bodies", 2000, "The number of dynamic bodies to create.")
	wallCount := flag.Int("walls", 40, "The number of static obstacles scattered in the box.")
	fixedStep := flag.Duration("fixed-step", time.Second/60, "The physics step.")
	churn := flag.Float64("churn", 0.005, "Fraction of bodies despawned and respawned every frame.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	log.Println("Starting physics stress test...")

	config := core.DefaultConfig()
	config.FixedStep = *fixedStep
	config.Logger = log.New(os.Stderr, "world: ", log.LstdFlags|log.Lmsgprefix)
	world := core.NewWorld(config, ecs.NewComponentRegistry())

	rng := rand.New(rand.NewSource(1))
	spawnBox(world)
	for range *wallCount {
		spawnObstacle(world, rng)
	}
	log.Printf("Populating world with %d bodies...\n", *bodyCount)
	bodies := make([]ecs.Entity, 0, *bodyCount)
	for range *bodyCount {
		bodies = append(bodies, spawnBody(world, rng))
	}
	log.Println("Population complete.")

	report := &Report{
		Duration:       *duration,
		Bodies:         *bodyCount,
		Walls:          *wallCount,
		FixedStep:      *fixedStep,
		GCPauseMetrics: *gcPauseMetrics,
	}
	runtime.ReadMemStats(&report.MemStatsStart)

	log.Printf("Running simulation for %s...\n", *duration)
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	startTime := time.Now()
	lastFrameTime := time.Now()

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			for i := range bodies {
				if rng.Float64() < *churn {
					_ = world.Storage().Despawn(bodies[i])
					bodies[i] = spawnBody(world, rng)
				}
			}

			deltaTime := time.Since(lastFrameTime)
			lastFrameTime = time.Now()

			frameStart := time.Now()
			result := world.Frame(deltaTime)
			report.FrameTime.Samples = append(report.FrameTime.Samples, time.Since(frameStart))
			report.TotalFrames++
			if result.Steps > report.MaxStepsPerFrame {
				report.MaxStepsPerFrame = result.Steps
			}
		}
	}

	report.TotalTime = time.Since(startTime)
	report.FrameTime.Finalize()
	report.World = world.Stats()
	report.Engine = world.Engine().Stats()
	runtime.ReadMemStats(&report.MemStatsEnd)

	log.Println("Simulation finished.")

	fmt.Println("\n\n--- Physics Stress Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Fatalf("Failed to generate report: %v", err)
	}
	fmt.Println("--- End of Report ---")
}

func spawnBox(world *core.World) {
	const t = 5
	walls := []struct{ x, y, hx, hy float32 }{
		{boxWidth / 2, -t, boxWidth/2 + t, t},
		{boxWidth / 2, boxHeight + t, boxWidth/2 + t, t},
		{-t, boxHeight / 2, t, boxHeight/2 + t},
		{boxWidth + t, boxHeight / 2, t, boxHeight/2 + t},
	}
	for _, w := range walls {
		world.Spawn(
			core.NewTransform(w.x, w.y, 0),
			physics.NewColliderBuilder(physics.Cuboid(w.hx, w.hy)).Restitution(0.9).Build(),
		)
	}
}

func spawnObstacle(world *core.World, rng *rand.Rand) {
	world.Spawn(
		core.NewTransform(rng.Float32()*boxWidth, rng.Float32()*boxHeight*0.8, 0),
		physics.NewColliderBuilder(physics.Cuboid(1+rng.Float32()*4, 0.5)).
			Rotation(rng.Float32()*math.Pi).
			Restitution(0.5).
			ActiveEvents(physics.ActiveEventsCollisionEvents).
			Build(),
	)
}

func spawnBody(world *core.World, rng *rand.Rand) ecs.Entity {
	var shape physics.Shape
	switch rng.Intn(3) {
	case 0:
		shape = physics.Ball(0.3 + rng.Float32()*0.5)
	case 1:
		shape = physics.Cuboid(0.3+rng.Float32()*0.5, 0.3+rng.Float32()*0.5)
	default:
		shape = physics.ConvexPolygon([]mgl32.Vec2{{0, 0.6}, {-0.5, -0.4}, {0.5, -0.4}})
	}
	return world.Spawn(
		core.NewTransform(rng.Float32()*boxWidth, rng.Float32()*boxHeight, 0),
		physics.NewColliderBuilder(shape).
			Restitution(0.8).
			ActiveEvents(physics.ActiveEventsCollisionEvents).
			Build(),
		physics.DynamicBody().
			LinearVelocity(rng.Float32()*20-10, rng.Float32()*20-10).
			Build(),
	)
}
