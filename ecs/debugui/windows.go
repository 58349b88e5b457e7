package debugui

import (
	"github.com/plus3/brickworks/ecs"
)

// WindowSystem renders every inspector window component in LateUpdate.
// Each ComponentInspector follows the selection of the first EntityBrowser.
type WindowSystem struct {
	ecs.BaseSystem
	// Scheduler, when set, adds the system table to PerformanceStats.
	Scheduler *ecs.Scheduler

	Browsers   ecs.Query[struct{ *EntityBrowser }]
	Inspectors ecs.Query[struct{ *ComponentInspector }]
	Perf       ecs.Query[struct{ *PerformanceStats }]
	Stats      ecs.Query[struct{ *StatsWindow }]
}

func (*WindowSystem) Name() string { return "debug_windows" }

func (w *WindowSystem) LateUpdate(frame *ecs.UpdateFrame) error {
	var selected ecs.Entity
	for _, b := range w.Browsers.Iter() {
		if selected == 0 {
			selected = b.Selected()
		}
		b.Render(frame.Storage)
	}
	for _, ci := range w.Inspectors.Iter() {
		ci.Render(frame.Storage, selected)
	}
	for _, ps := range w.Perf.Iter() {
		ps.Render(frame.Storage, w.Scheduler, frame.DeltaTime)
	}
	for _, sw := range w.Stats.Iter() {
		sw.Render()
	}
	return nil
}

// Spawn adds the standard inspector windows to storage.
func Spawn(storage *ecs.Storage) {
	storage.Spawn(NewEntityBrowser(100))
	storage.Spawn(NewComponentInspector())
	storage.Spawn(NewPerformanceStats(120))
}
