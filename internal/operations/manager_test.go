package operations

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/zazu-22/ff-data-analytics-sub000/internal/errors"
)

// funcStep is a configurable pipeline step for manager tests.
type funcStep struct {
	id   string
	name string
	fn   func(ctx context.Context, state *State) error
}

func (s funcStep) ID() string { return s.id }

func (s funcStep) Name() string {
	if s.name != "" {
		return s.name
	}
	return s.id
}

func (s funcStep) Execute(ctx context.Context, state *State) error {
	if s.fn == nil {
		return nil
	}
	return s.fn(ctx, state)
}

func waitDone(t *testing.T, state *State) {
	t.Helper()
	select {
	case <-state.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("run did not finish in time")
	}
}

func TestManagerRunsStepsInOrder(t *testing.T) {
	var mu sync.Mutex
	var executed []string
	record := func(id string) funcStep {
		return funcStep{id: id, fn: func(context.Context, *State) error {
			mu.Lock()
			defer mu.Unlock()
			executed = append(executed, id)
			return nil
		}}
	}

	m := NewManager([]Step{record("load"), record("parse"), record("export")}, nil, nil)
	state, err := m.Start("run-1")
	require.NoError(t, err)
	waitDone(t, state)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"load", "parse", "export"}, executed)
	assert.Equal(t, StatusCompleted, state.Status())
	assert.NoError(t, state.Err())

	snap := state.Snapshot()
	require.Len(t, snap.Steps, 3)
	for _, step := range snap.Steps {
		assert.Equal(t, StepStatusCompleted, step.Status)
	}
}

func TestManagerHaltsOnStepFailure(t *testing.T) {
	boom := errors.New("boom")
	var thirdRan bool

	steps := []Step{
		funcStep{id: "one"},
		funcStep{id: "two", fn: func(context.Context, *State) error { return boom }},
		funcStep{id: "three", fn: func(context.Context, *State) error {
			thirdRan = true
			return nil
		}},
	}

	m := NewManager(steps, nil, nil)
	state, err := m.Start("run-1")
	require.NoError(t, err)
	waitDone(t, state)

	assert.Equal(t, StatusFailed, state.Status())
	assert.ErrorIs(t, state.Err(), boom)
	assert.False(t, thirdRan)

	snap := state.Snapshot()
	assert.Equal(t, StepStatusCompleted, snap.Steps[0].Status)
	assert.Equal(t, StepStatusFailed, snap.Steps[1].Status)
	assert.Equal(t, StepStatusSkipped, snap.Steps[2].Status)
	assert.Contains(t, snap.Steps[2].Message, "two")
}

func TestManagerContinuesAfterSkippedStep(t *testing.T) {
	var thirdRan bool
	steps := []Step{
		funcStep{id: "one"},
		funcStep{id: "two", fn: func(context.Context, *State) error {
			return &SkipError{Reason: "nothing to do"}
		}},
		funcStep{id: "three", fn: func(context.Context, *State) error {
			thirdRan = true
			return nil
		}},
	}

	m := NewManager(steps, nil, nil)
	state, err := m.Start("run-1")
	require.NoError(t, err)
	waitDone(t, state)

	assert.Equal(t, StatusCompleted, state.Status())
	assert.True(t, thirdRan)

	snap := state.Snapshot()
	assert.Equal(t, StepStatusSkipped, snap.Steps[1].Status)
	assert.Equal(t, "nothing to do", snap.Steps[1].Message)
	assert.Equal(t, StepStatusCompleted, snap.Steps[2].Status)
}

func TestManagerRejectsConcurrentRuns(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	// The manager reuses the same Step instances across runs, so guard the
	// close: the step executes again for run "third".
	var startedOnce sync.Once
	steps := []Step{funcStep{id: "block", fn: func(context.Context, *State) error {
		startedOnce.Do(func() { close(started) })
		<-release
		return nil
	}}}

	m := NewManager(steps, nil, nil)
	first, err := m.Start("first")
	require.NoError(t, err)
	<-started

	_, err = m.Start("second")
	assert.ErrorIs(t, err, ErrAlreadyRunning)
	assert.Equal(t, "first", m.Active())

	close(release)
	waitDone(t, first)

	third, err := m.Start("third")
	require.NoError(t, err)
	waitDone(t, third)
	assert.Equal(t, StatusCompleted, third.Status())
}

func TestManagerGeneratesRunID(t *testing.T) {
	m := NewManager([]Step{funcStep{id: "one"}}, nil, nil)
	state, err := m.Start("")
	require.NoError(t, err)
	waitDone(t, state)

	assert.True(t, strings.HasPrefix(state.ID(), "ingest-"))
}

func TestManagerRejectsDuplicateRunID(t *testing.T) {
	m := NewManager([]Step{funcStep{id: "one"}}, nil, nil)
	first, err := m.Start("run-1")
	require.NoError(t, err)
	waitDone(t, first)

	_, err = m.Start("run-1")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeValidation, appErr.Type)
}

func TestManagerRejectsEmptyPipeline(t *testing.T) {
	m := NewManager(nil, nil, nil)
	_, err := m.Start("run-1")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeValidation, appErr.Type)
}

func TestManagerGetAndList(t *testing.T) {
	m := NewManager([]Step{funcStep{id: "one"}}, nil, nil)

	first, err := m.Start("run-1")
	require.NoError(t, err)
	waitDone(t, first)

	second, err := m.Start("run-2")
	require.NoError(t, err)
	waitDone(t, second)

	got, ok := m.Get("run-1")
	require.True(t, ok)
	assert.Equal(t, "run-1", got.ID())

	_, ok = m.Get("missing")
	assert.False(t, ok)

	runs := m.List()
	require.Len(t, runs, 2)
	assert.Equal(t, "run-1", runs[0].ID())
	assert.Equal(t, "run-2", runs[1].ID())
	assert.Empty(t, m.Active())
}

func TestManagerProgressCallback(t *testing.T) {
	events := make(chan OperationSnapshot, 32)

	m := NewManager([]Step{funcStep{id: "one"}, funcStep{id: "two"}}, nil, nil)
	m.SetProgressFunc(func(operationID string, snap OperationSnapshot) {
		assert.Equal(t, "run-1", operationID)
		events <- snap
	})

	_, err := m.Start("run-1")
	require.NoError(t, err)

	var seen []OperationSnapshot
collect:
	for {
		select {
		case snap := <-events:
			seen = append(seen, snap)
			if snap.Status == StatusCompleted || snap.Status == StatusFailed {
				break collect
			}
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for a terminal progress snapshot")
		}
	}

	require.NotEmpty(t, seen)
	assert.Equal(t, StatusRunning, seen[0].Status)

	final := seen[len(seen)-1]
	assert.Equal(t, StatusCompleted, final.Status)
	require.Len(t, final.Steps, 2)
	assert.Equal(t, StepStatusCompleted, final.Steps[0].Status)
	assert.Equal(t, StepStatusCompleted, final.Steps[1].Status)
}

func TestManagerTimeoutCancelsRun(t *testing.T) {
	m := NewManager([]Step{funcStep{id: "slow", fn: func(ctx context.Context, _ *State) error {
		<-ctx.Done()
		return ctx.Err()
	}}}, nil, nil)
	m.SetTimeout(50 * time.Millisecond)

	state, err := m.Start("run-1")
	require.NoError(t, err)
	waitDone(t, state)

	assert.Equal(t, StatusCancelled, state.Status())
	assert.ErrorIs(t, state.Err(), context.DeadlineExceeded)

	snap := state.Snapshot()
	assert.Equal(t, StepStatusFailed, snap.Steps[0].Status)
}
