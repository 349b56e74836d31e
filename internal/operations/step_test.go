package operations

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepStateLifecycle(t *testing.T) {
	s := NewStepState("load", "Load sheet tabs")

	assert.Equal(t, StepStatusPending, s.Status())
	assert.Zero(t, s.Duration())

	s.Start()
	assert.Equal(t, StepStatusActive, s.Status())

	s.Complete()
	assert.Equal(t, StepStatusCompleted, s.Status())

	snap := s.Snapshot()
	assert.Equal(t, "load", snap.ID)
	assert.Equal(t, "Load sheet tabs", snap.Name)
	assert.Equal(t, StepStatusCompleted, snap.Status)
	require.NotNil(t, snap.StartTime)
	require.NotNil(t, snap.EndTime)
	assert.Empty(t, snap.Error)
	assert.GreaterOrEqual(t, s.Duration(), time.Duration(0))
}

func TestStepStateFail(t *testing.T) {
	s := NewStepState("export", "Export datasets")
	s.Start()
	s.Fail(errors.New("disk full"))

	assert.Equal(t, StepStatusFailed, s.Status())
	snap := s.Snapshot()
	assert.Equal(t, "disk full", snap.Error)
	require.NotNil(t, snap.EndTime)
}

func TestStepStateSkip(t *testing.T) {
	s := NewStepState("crosswalk", "Build identity crosswalk")
	s.Skip("no identity source configured")

	assert.Equal(t, StepStatusSkipped, s.Status())
	assert.Equal(t, "no identity source configured", s.Snapshot().Message)
	assert.Zero(t, s.Duration())
}

func TestStepStateSnapshotIsDetached(t *testing.T) {
	s := NewStepState("load", "Load sheet tabs")
	s.Start()
	snap := s.Snapshot()

	s.Complete()

	assert.Equal(t, StepStatusActive, snap.Status)
	assert.Equal(t, StepStatusCompleted, s.Status())
}

func TestSkipErrorMessage(t *testing.T) {
	err := &SkipError{Reason: "nothing to do"}
	assert.Equal(t, "step skipped: nothing to do", err.Error())

	var skip *SkipError
	assert.ErrorAs(t, error(err), &skip)
}
