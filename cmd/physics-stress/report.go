package main

import (
	"io"
	"runtime"
	"strconv"
	"text/template"
	"time"

	"github.com/plus3/brickworks/core"
	"github.com/plus3/brickworks/physics"
)

type Report struct {
	// Configuration
	Duration  time.Duration
	Bodies    int
	Walls     int
	FixedStep time.Duration

	// Results
	TotalFrames      int64
	TotalTime        time.Duration
	FrameTime        Stats
	MaxStepsPerFrame int
	World            core.FrameStats
	Engine           physics.EngineStats
	GCPauseMetrics   bool
	MemStatsStart    runtime.MemStats
	MemStatsEnd      runtime.MemStats
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]
	for _, sample := range s.Samples {
		s.Min = min(s.Min, sample)
		s.Max = max(s.Max, sample)
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))
}

const reportTemplate = `
# Physics Stress Test Report

## Test Configuration
- **Run Duration:** {{.Duration}}
- **Dynamic Bodies:** {{.Bodies}}
- **Obstacles:** {{.Walls}}
- **Fixed Step:** {{.FixedStep}}

## Frame Results
- **Total Frames:** {{.TotalFrames}}
- **Total Test Time:** {{.TotalTime}}
- **Frame Time:**
  - **Avg:** {{.FrameTime.Avg}}
  - **Min:** {{.FrameTime.Min}}
  - **Max:** {{.FrameTime.Max}}
- **Physics Steps:** {{.World.Steps}} (max {{.MaxStepsPerFrame}} per frame, {{.World.DroppedSteps}} dropped)

## Collision Events
- Received:   {{.World.EventsReceived}}
- Discarded:  {{.World.EventsDiscarded}}
- Records:    {{.World.RecordsPublished}}
- Orphans:    {{.World.OrphansRemoved}}
- Live pairs: {{.Engine.ActivePairs}} across {{.Engine.Colliders}} colliders and {{.Engine.RigidBodies}} bodies

## Memory Usage (MiB)
- Heap Alloc:  {{mb .MemStatsStart.HeapAlloc}} (start) -> {{mb .MemStatsEnd.HeapAlloc}} (end)
- Total Alloc: {{mb .MemStatsStart.TotalAlloc}} (start) -> {{mb .MemStatsEnd.TotalAlloc}} (end)
- Num GC:      {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
{{if .GCPauseMetrics}}
## GC Pause Durations
- **Total GC Pause:** {{.MemStatsEnd.PauseTotalNs | ns}}
{{end}}`

func (r *Report) Generate(w io.Writer) error {
	fm := template.FuncMap{
		"mb": func(v uint64) string {
			return fmtMiB(v)
		},
		"usub": func(a, b uint32) uint32 {
			return a - b
		},
		"ns": func(ns uint64) string {
			return time.Duration(ns).String()
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}
	return tmpl.Execute(w, r)
}

func fmtMiB(v uint64) string {
	return strconv.FormatFloat(float64(v)/1024/1024, 'f', 2, 64)
}
