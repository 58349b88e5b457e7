package debugui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/brickworks/ecs"
)

// FrameHistory is a fixed-size ring of frame times in milliseconds.
type FrameHistory struct {
	samples []float32
	next    int
	filled  bool
}

func NewFrameHistory(size int) *FrameHistory {
	return &FrameHistory{samples: make([]float32, max(size, 1))}
}

// Push records one frame.
func (h *FrameHistory) Push(delta time.Duration) {
	h.samples[h.next] = float32(delta.Seconds() * 1000)
	h.next = (h.next + 1) % len(h.samples)
	if h.next == 0 {
		h.filled = true
	}
}

// Len returns the number of recorded samples.
func (h *FrameHistory) Len() int {
	if h.filled {
		return len(h.samples)
	}
	return h.next
}

// Average returns the mean of the recorded samples.
func (h *FrameHistory) Average() float32 {
	n := h.Len()
	if n == 0 {
		return 0
	}
	var total float32
	for _, s := range h.Ordered() {
		total += s
	}
	return total / float32(n)
}

// Ordered returns the recorded samples oldest first.
func (h *FrameHistory) Ordered() []float32 {
	if !h.filled {
		return slices.Clone(h.samples[:h.next])
	}
	return append(slices.Clone(h.samples[h.next:]), h.samples[:h.next]...)
}

func NewPerformanceStats(historyFrames int) PerformanceStats {
	return PerformanceStats{history: NewFrameHistory(historyFrames)}
}

// Render draws frame timing, storage counts and, when scheduler is not nil,
// per-system timings.
func (ps *PerformanceStats) Render(storage *ecs.Storage, scheduler *ecs.Scheduler, delta time.Duration) {
	ps.history.Push(delta)

	defer imgui.End()
	if !imgui.BeginV("Performance Stats", nil, imgui.WindowFlagsNone) {
		return
	}

	stats := storage.CollectStats()
	imgui.Text(fmt.Sprintf("Entities: %d", stats.TotalEntityCount))
	imgui.Text(fmt.Sprintf("Archetypes: %d", stats.ArchetypeCount))
	imgui.Text(fmt.Sprintf("Singletons: %d", stats.SingletonCount))

	avg := ps.history.Average()
	if avg > 0 {
		imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avg, 1000/avg))
	}
	if samples := ps.history.Ordered(); len(samples) > 0 {
		imgui.PlotLinesFloatPtr("##frametime", &samples[0], int32(len(samples)))
	}

	if imgui.TreeNodeStr("Archetypes") {
		for _, arch := range stats.ArchetypeBreakdown {
			imgui.BulletText(fmt.Sprintf("0x%X  %d entities  [%s]", arch.ID, arch.EntityCount, strings.Join(arch.ComponentTypes, ", ")))
		}
		imgui.TreePop()
	}
	if imgui.TreeNodeStr("Singletons") {
		for _, name := range stats.SingletonTypes {
			imgui.BulletText(name)
		}
		imgui.TreePop()
	}

	if scheduler != nil {
		renderSystems(scheduler.GetStats())
	}
}

func renderSystems(stats *ecs.SchedulerStats) {
	imgui.Separator()
	imgui.Text(fmt.Sprintf("Systems: %d  Runs: %d  Failures: %d", stats.SystemCount, stats.TotalExecutions, stats.TotalFailures))

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSizingFixedFit
	if !imgui.BeginTableV("Systems", 5, tableFlags, imgui.NewVec2(0, 0), 0) {
		return
	}
	imgui.TableSetupColumn("Name")
	imgui.TableSetupColumn("Avg (ms)")
	imgui.TableSetupColumn("Max (ms)")
	imgui.TableSetupColumn("Failures")
	imgui.TableSetupColumn("Last Error")
	imgui.TableHeadersRow()

	for _, sys := range stats.Systems {
		imgui.TableNextRow()
		imgui.TableNextColumn()
		imgui.Text(sys.Name)
		imgui.TableNextColumn()
		imgui.Text(milliseconds(sys.AvgDuration))
		imgui.TableNextColumn()
		imgui.Text(milliseconds(sys.MaxDuration))
		imgui.TableNextColumn()
		imgui.Text(fmt.Sprintf("%d", sys.Failures))
		imgui.TableNextColumn()
		if sys.LastError != nil {
			imgui.Text(sys.LastError.Error())
		}
	}
	imgui.EndTable()
}

func milliseconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", float64(d.Microseconds())/1000)
}
