package debugui

import (
	"github.com/plus3/brickworks/ecs"
)

// EntityBrowser lists live entities with their component types.
//
//ecs:component
type EntityBrowser struct {
	entities    []EntityInfo
	generation  int
	selected    ecs.Entity
	filterText  string
	sortColumn  int
	descending  bool
	perPage     int
	currentPage int
}

// ComponentInspector edits the components of the entity selected in an
// EntityBrowser.
//
//ecs:component
type ComponentInspector struct {
	entity ecs.Entity
}

// PerformanceStats graphs frame time and lists storage and system counters.
//
//ecs:component
type PerformanceStats struct {
	history *FrameHistory
}

// StatsWindow shows a titled list of counters produced by Source.
//
//ecs:component
type StatsWindow struct {
	Title  string
	Source func() []Stat
}

// Stat is one labelled row of a StatsWindow.
type Stat struct {
	Label string
	Value string
}
