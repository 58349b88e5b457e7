package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsFinalize(t *testing.T) {
	s := Stats{Samples: []time.Duration{3 * time.Millisecond, time.Millisecond, 5 * time.Millisecond}}
	s.Finalize()

	assert.Equal(t, time.Millisecond, s.Min)
	assert.Equal(t, 5*time.Millisecond, s.Max)
	assert.Equal(t, 3*time.Millisecond, s.Avg)

	var empty Stats
	empty.Finalize()
	assert.Zero(t, empty.Avg)
}

func TestReportGenerate(t *testing.T) {
	r := &Report{Duration: time.Second, Bodies: 10, FixedStep: time.Second / 60, GCPauseMetrics: true}
	r.World.EventsReceived = 42
	r.MemStatsEnd.HeapAlloc = 3 << 20

	var buf bytes.Buffer
	require.NoError(t, r.Generate(&buf))

	out := buf.String()
	assert.Contains(t, out, "# Physics Stress Test Report")
	assert.Contains(t, out, "- Received:   42")
	assert.Contains(t, out, "-> 3.00 (end)")
	assert.Contains(t, out, "## GC Pause Durations")
}
