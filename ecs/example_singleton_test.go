package ecs_test

import (
	"fmt"

	"github.com/plus3/brickworks/ecs"
)

type Settings struct {
	Difficulty string
}

// ExampleNewSingleton shows that every accessor of a singleton type shares
// the same value.
func ExampleNewSingleton() {
	storage := ecs.NewStorage(ecs.NewComponentRegistry())

	settings := ecs.NewSingleton(storage, Settings{Difficulty: "normal"})
	settings.Get().Difficulty = "hard"

	again := ecs.NewSingleton[Settings](storage)
	fmt.Println(again.Get().Difficulty)

	var direct *Settings
	if storage.ReadSingleton(&direct) {
		fmt.Println(direct.Difficulty)
	}

	// Output:
	// hard
	// hard
}
