// Package operations runs the league ingest pipeline: load sheet tabs,
// build or load the identity crosswalk, parse GM roster tabs, parse the
// transaction ledger, and export the normalized datasets. Steps execute
// sequentially against a shared State; the Manager owns run lifecycle and
// serves status to the HTTP and websocket layers.
package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/zazu-22/ff-data-analytics-sub000/internal/errors"
	"github.com/zazu-22/ff-data-analytics-sub000/internal/infrastructure"
)

// OperationIngest is the metric label shared by every ingest run. Run
// instances get unique IDs; metrics aggregate under this one name.
const OperationIngest = "ingest"

// DefaultTimeout bounds a run when the caller configures none.
const DefaultTimeout = 10 * time.Minute

// ErrAlreadyRunning is returned by Start while another run is in flight.
// Runs rewrite the shared snapshot directory, so only one may execute at
// a time.
var ErrAlreadyRunning = errors.New("an ingest operation is already running")

// ProgressFunc receives a fresh snapshot after every run and step
// transition. The websocket layer registers one to stream progress.
type ProgressFunc func(operationID string, snapshot OperationSnapshot)

// Manager starts ingest runs, executes the step pipeline in a background
// goroutine, and retains finished runs for status queries.
type Manager struct {
	steps   []Step
	metrics *infrastructure.PipelineMetrics
	logger  *slog.Logger

	mu         sync.RWMutex
	timeout    time.Duration
	operations map[string]*State
	order      []string
	active     string
	onProgress ProgressFunc
}

// NewManager creates a manager around the given step pipeline.
func NewManager(steps []Step, metrics *infrastructure.PipelineMetrics, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		steps:      steps,
		metrics:    metrics,
		logger:     logger.With(slog.String("component", "operations.manager")),
		timeout:    DefaultTimeout,
		operations: make(map[string]*State),
	}
}

// SetTimeout overrides the per-run deadline. Non-positive values are
// ignored.
func (m *Manager) SetTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeout = d
}

// SetProgressFunc registers the progress callback. Pass nil to disable.
func (m *Manager) SetProgressFunc(fn ProgressFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onProgress = fn
}

// Start launches a run asynchronously and returns its state immediately.
// An empty id gets a generated one. Start fails with ErrAlreadyRunning
// while another run is executing.
func (m *Manager) Start(id string) (*State, error) {
	if len(m.steps) == 0 {
		return nil, apperrors.NewValidationError("no pipeline steps configured")
	}
	if id == "" {
		id = "ingest-" + uuid.NewString()
	}

	m.mu.Lock()
	if m.active != "" {
		m.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	if _, exists := m.operations[id]; exists {
		m.mu.Unlock()
		return nil, apperrors.NewValidationError("operation id already used: " + id)
	}
	state := NewState(id, m.steps)
	m.operations[id] = state
	m.order = append(m.order, id)
	m.active = id
	timeout := m.timeout
	m.mu.Unlock()

	go m.execute(state, timeout)
	return state, nil
}

// Get returns the run with the given id.
func (m *Manager) Get(id string) (*State, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.operations[id]
	return state, ok
}

// List returns every known run in start order, oldest first.
func (m *Manager) List() []*State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*State, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.operations[id])
	}
	return out
}

// Active returns the id of the currently executing run, or empty.
func (m *Manager) Active() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// execute drives one run to a terminal status. It owns the run context;
// the deadline covers the whole pipeline, not individual steps.
func (m *Manager) execute(state *State, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	ctx = infrastructure.WithTraceID(ctx, state.ID())

	start := time.Now()
	state.Start()
	m.notify(state)
	infrastructure.RecordActiveOperationChange(ctx, m.metrics, 1)
	m.logger.InfoContext(ctx, "ingest run started",
		slog.String("operation_id", state.ID()),
		slog.Int("steps", len(m.steps)))

	var runErr error
	for i, step := range m.steps {
		if err := ctx.Err(); err != nil {
			runErr = err
			m.skipRemaining(state, i, "run cancelled")
			break
		}

		stepState := state.StepByID(step.ID())
		stepState.Start()
		m.notify(state)

		stepStart := time.Now()
		err := step.Execute(ctx, state)
		stepDuration := time.Since(stepStart)

		var skip *SkipError
		switch {
		case err == nil:
			stepState.Complete()
			infrastructure.RecordStepMetrics(ctx, m.metrics, OperationIngest, step.ID(), stepDuration, true)
			m.logger.InfoContext(ctx, "step completed",
				slog.String("operation_id", state.ID()),
				slog.String("step", step.ID()),
				slog.Duration("duration", stepDuration))
		case errors.As(err, &skip):
			stepState.Skip(skip.Reason)
			infrastructure.RecordStepMetrics(ctx, m.metrics, OperationIngest, step.ID(), stepDuration, true)
			m.logger.InfoContext(ctx, "step skipped",
				slog.String("operation_id", state.ID()),
				slog.String("step", step.ID()),
				slog.String("reason", skip.Reason))
		default:
			stepState.Fail(err)
			infrastructure.RecordStepMetrics(ctx, m.metrics, OperationIngest, step.ID(), stepDuration, false)
			m.logger.ErrorContext(ctx, "step failed",
				slog.String("operation_id", state.ID()),
				slog.String("step", step.ID()),
				slog.Duration("duration", stepDuration),
				slog.String("error", err.Error()))
			runErr = err
			m.skipRemaining(state, i+1, fmt.Sprintf("previous step %s failed", step.ID()))
		}

		m.notify(state)
		if runErr != nil {
			break
		}
	}

	// Release the run slot before the terminal status lands: anyone who
	// saw Done close must be able to start the next run.
	m.mu.Lock()
	m.active = ""
	m.mu.Unlock()

	switch {
	case runErr == nil:
		state.Complete()
	case errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded):
		state.Cancel(runErr)
	default:
		state.Fail(runErr)
	}

	infrastructure.RecordOperationMetrics(ctx, m.metrics, OperationIngest, time.Since(start), runErr)
	infrastructure.RecordActiveOperationChange(ctx, m.metrics, -1)
	m.notify(state)

	if runErr != nil {
		m.logger.ErrorContext(ctx, "ingest run finished with error",
			slog.String("operation_id", state.ID()),
			slog.String("status", string(state.Status())),
			slog.Duration("duration", state.Duration()),
			slog.String("error", runErr.Error()))
		return
	}
	m.logger.InfoContext(ctx, "ingest run completed",
		slog.String("operation_id", state.ID()),
		slog.Duration("duration", state.Duration()))
}

// skipRemaining marks every not-yet-started step from index from on as
// skipped.
func (m *Manager) skipRemaining(state *State, from int, reason string) {
	for _, step := range m.steps[from:] {
		if stepState := state.StepByID(step.ID()); stepState != nil && stepState.Status() == StepStatusPending {
			stepState.Skip(reason)
		}
	}
}

func (m *Manager) notify(state *State) {
	m.mu.RLock()
	fn := m.onProgress
	m.mu.RUnlock()
	if fn != nil {
		fn(state.ID(), state.Snapshot())
	}
}
