package operations

import (
	"context"
	"sync"
	"time"
)

// Step is a single unit of the ingest pipeline. Steps run sequentially and
// communicate through the shared State: each reads the artifacts earlier
// steps stored and stores its own for the ones that follow.
type Step interface {
	// ID returns the stable identifier used in status reports and metrics.
	ID() string

	// Name returns the human-readable name shown to operators.
	Name() string

	// Execute runs the step. Returning a *SkipError marks the step skipped
	// without halting the pipeline; any other error fails the run.
	Execute(ctx context.Context, state *State) error
}

// SkipError signals that a step had nothing to do for this run. The runner
// records the reason and continues with the next step.
type SkipError struct {
	Reason string
}

func (e *SkipError) Error() string {
	return "step skipped: " + e.Reason
}

// StepStatus is the lifecycle state of one step within a run.
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusActive    StepStatus = "active"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// StepState is the runtime record of one step. All mutation goes through
// the lifecycle methods so readers holding a snapshot never see a torn
// update.
type StepState struct {
	mu        sync.RWMutex
	id        string
	name      string
	status    StepStatus
	startTime *time.Time
	endTime   *time.Time
	message   string
	err       error
}

// NewStepState creates a pending step record.
func NewStepState(id, name string) *StepState {
	return &StepState{id: id, name: name, status: StepStatusPending}
}

// ID returns the step identifier.
func (s *StepState) ID() string {
	return s.id
}

// Status returns the current lifecycle state.
func (s *StepState) Status() StepStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Start marks the step active.
func (s *StepState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.startTime = &now
	s.status = StepStatusActive
}

// Complete marks the step finished successfully.
func (s *StepState) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.endTime = &now
	s.status = StepStatusCompleted
}

// Fail marks the step failed with the given error.
func (s *StepState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.endTime = &now
	s.status = StepStatusFailed
	s.err = err
}

// Skip marks the step skipped and records why.
func (s *StepState) Skip(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.endTime = &now
	s.status = StepStatusSkipped
	s.message = reason
}

// Duration reports how long the step has been running, or its final
// duration once finished. Steps that never started report zero.
func (s *StepState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.startTime == nil {
		return 0
	}
	if s.endTime != nil {
		return s.endTime.Sub(*s.startTime)
	}
	return time.Since(*s.startTime)
}

// Snapshot returns a copy safe to serialize and hand to other goroutines.
func (s *StepState) Snapshot() StepSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := StepSnapshot{
		ID:      s.id,
		Name:    s.name,
		Status:  s.status,
		Message: s.message,
	}
	if s.startTime != nil {
		t := *s.startTime
		snap.StartTime = &t
	}
	if s.endTime != nil {
		t := *s.endTime
		snap.EndTime = &t
	}
	if s.err != nil {
		snap.Error = s.err.Error()
	}
	return snap
}

// StepSnapshot is the JSON-safe view of a step's state.
type StepSnapshot struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Status    StepStatus `json:"status"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Message   string     `json:"message,omitempty"`
	Error     string     `json:"error,omitempty"`
}
