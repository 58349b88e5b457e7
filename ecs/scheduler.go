package ecs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"reflect"
	"strings"
	"time"
)

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	TotalFailures   int64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	ExecutionCount int64
	Failures       int64
	LastError      error
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemStatsInternal struct {
	executionCount int64
	failures       int64
	lastError      error
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

type scheduledSystem struct {
	system  System
	started bool
	stats   systemStatsInternal
}

// Scheduler manages and executes systems in registration order, one phase at a time.
type Scheduler struct {
	storage  *Storage
	logger   *log.Logger
	commands *Commands
	systems  []*scheduledSystem
}

// NewScheduler creates a new scheduler for the given storage.
// A nil logger writes to stderr.
func NewScheduler(storage *Storage, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.New(os.Stderr, "ecs: ", log.LstdFlags|log.Lmsgprefix)
	}
	return &Scheduler{
		storage:  storage,
		logger:   logger,
		commands: NewCommands(),
	}
}

// Storage returns the storage the scheduler runs against
func (s *Scheduler) Storage() *Storage {
	return s.storage
}

// Commands returns the command buffer shared by all systems.
// It is flushed after every phase.
func (s *Scheduler) Commands() *Commands {
	return s.commands
}

// Register adds a system to the scheduler and initializes its Query and Singleton fields.
// The system's Start phase runs on the next call to Start.
func (s *Scheduler) Register(system System) {
	s.initializeQueries(system)
	s.systems = append(s.systems, &scheduledSystem{
		system: system,
		stats:  systemStatsInternal{minDuration: time.Duration(1<<63 - 1)},
	})
}

// Systems returns the registered systems in execution order
func (s *Scheduler) Systems() []System {
	systems := make([]System, len(s.systems))
	for i, entry := range s.systems {
		systems[i] = entry.system
	}
	return systems
}

func (s *Scheduler) initializeQueries(system System) {
	systemValue := reflect.ValueOf(system)
	if systemValue.Kind() == reflect.Ptr {
		systemValue = systemValue.Elem()
	}

	if systemValue.Kind() != reflect.Struct {
		return
	}

	systemType := systemValue.Type()

	for i := 0; i < systemValue.NumField(); i++ {
		field := systemValue.Field(i)
		fieldType := systemType.Field(i)

		if !field.CanSet() || field.Kind() != reflect.Struct {
			continue
		}

		typeName := field.Type().Name()
		if !strings.HasPrefix(typeName, "Query[") && !strings.HasPrefix(typeName, "Singleton[") {
			continue
		}

		initMethod := field.Addr().MethodByName("Init")
		if !initMethod.IsValid() {
			panic("Init method not found on field: " + fieldType.Name)
		}
		initMethod.Call([]reflect.Value{
			reflect.ValueOf(s.storage),
		})
	}
}

// Start runs the Start phase of every system that has not started yet.
func (s *Scheduler) Start() error {
	frame := newUpdateFrame(PhaseStart, 0, s.storage, s.commands)
	var errs []error
	for _, entry := range s.systems {
		if entry.started {
			continue
		}
		entry.started = true
		if err := s.execute(entry, frame); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.flush(PhaseStart); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// RunPhase executes one phase of every started system, then flushes queued commands.
// Failing systems are logged and skipped; the returned error joins every failure.
func (s *Scheduler) RunPhase(phase Phase, dt time.Duration) error {
	if phase == PhaseStart {
		return s.Start()
	}

	frame := newUpdateFrame(phase, dt, s.storage, s.commands)
	var errs []error
	for _, entry := range s.systems {
		if !entry.started {
			continue
		}
		if err := s.execute(entry, frame); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.flush(phase); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *Scheduler) flush(phase Phase) error {
	if err := s.commands.Flush(s.storage); err != nil {
		s.logger.Printf("commands %s: %v", phase, err)
		return err
	}
	return nil
}

func (s *Scheduler) execute(entry *scheduledSystem, frame *UpdateFrame) error {
	start := time.Now()
	err := runPhase(entry.system, frame)
	duration := time.Since(start)

	stats := &entry.stats
	stats.executionCount++
	stats.lastDuration = duration
	stats.totalDuration += duration
	if duration < stats.minDuration {
		stats.minDuration = duration
	}
	if duration > stats.maxDuration {
		stats.maxDuration = duration
	}

	if err != nil {
		stats.failures++
		stats.lastError = err
		err = fmt.Errorf("system %s %s: %w", entry.system.Name(), frame.Phase, err)
		s.logger.Print(err)
	}
	return err
}

func runPhase(system System, frame *UpdateFrame) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrSystemPanic, r)
		}
	}()

	switch frame.Phase {
	case PhaseStart:
		return system.Start(frame)
	case PhaseEarlyUpdate:
		return system.EarlyUpdate(frame)
	case PhaseUpdate:
		return system.Update(frame)
	case PhaseLateUpdate:
		return system.LateUpdate(frame)
	}
	return nil
}

// Once starts pending systems and executes the early, main and late phases with the given delta.
func (s *Scheduler) Once(dt time.Duration) {
	_ = s.Start()
	_ = s.RunPhase(PhaseEarlyUpdate, dt)
	_ = s.RunPhase(PhaseUpdate, dt)
	_ = s.RunPhase(PhaseLateUpdate, dt)
}

// Run executes all systems repeatedly at the given interval until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(lastTime)
			lastTime = now
			s.Once(dt)
		}
	}
}

// GetStats returns statistics about system execution.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount: len(s.systems),
		Systems:     make([]SystemStats, len(s.systems)),
	}

	for i, entry := range s.systems {
		internal := entry.stats
		avgDuration := time.Duration(0)
		minDuration := internal.minDuration
		if internal.executionCount > 0 {
			avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
		} else {
			minDuration = 0
		}

		stats.Systems[i] = SystemStats{
			Name:           entry.system.Name(),
			ExecutionCount: internal.executionCount,
			Failures:       internal.failures,
			LastError:      internal.lastError,
			MinDuration:    minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    avgDuration,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
		}
		stats.TotalExecutions += internal.executionCount
		stats.TotalFailures += internal.failures
	}

	return stats
}
