package ecs

import "time"

// Phase identifies which part of a frame a system is executing.
type Phase int

const (
	PhaseStart Phase = iota
	PhaseEarlyUpdate
	PhaseUpdate
	PhaseLateUpdate
)

func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "start"
	case PhaseEarlyUpdate:
		return "early_update"
	case PhaseUpdate:
		return "update"
	case PhaseLateUpdate:
		return "late_update"
	default:
		return "unknown"
	}
}

// UpdateFrame is handed to every system phase.
type UpdateFrame struct {
	DeltaTime time.Duration
	Phase     Phase
	Commands  *Commands
	Storage   *Storage
}

// DeltaMicros returns the frame delta in microseconds
func (f *UpdateFrame) DeltaMicros() int64 {
	return f.DeltaTime.Microseconds()
}

// DeltaSeconds returns the frame delta in seconds
func (f *UpdateFrame) DeltaSeconds() float32 {
	return float32(f.DeltaTime.Seconds())
}

func newUpdateFrame(phase Phase, dt time.Duration, storage *Storage, commands *Commands) *UpdateFrame {
	return &UpdateFrame{
		DeltaTime: dt,
		Phase:     phase,
		Commands:  commands,
		Storage:   storage,
	}
}
