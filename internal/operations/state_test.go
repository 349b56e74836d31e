package operations

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zazu-22/ff-data-analytics-sub000/internal/exporter"
	"github.com/zazu-22/ff-data-analytics-sub000/internal/identity"
	"github.com/zazu-22/ff-data-analytics-sub000/internal/ledger"
	"github.com/zazu-22/ff-data-analytics-sub000/internal/sheets"
	"github.com/zazu-22/ff-data-analytics-sub000/pkg/contracts/domain"
)

func TestNewStateInitializesSteps(t *testing.T) {
	steps := []Step{
		funcStep{id: "load", name: "Load sheet tabs"},
		funcStep{id: "export", name: "Export datasets"},
	}
	state := NewState("run-1", steps)

	assert.Equal(t, "run-1", state.ID())
	assert.Equal(t, StatusPending, state.Status())

	load := state.StepByID("load")
	require.NotNil(t, load)
	assert.Equal(t, StepStatusPending, load.Status())
	assert.Nil(t, state.StepByID("missing"))

	snap := state.Snapshot()
	require.Len(t, snap.Steps, 2)
	assert.Equal(t, "load", snap.Steps[0].ID)
	assert.Equal(t, "export", snap.Steps[1].ID)
}

func TestStateLifecycleComplete(t *testing.T) {
	state := NewState("run-1", nil)
	state.Start()
	assert.Equal(t, StatusRunning, state.Status())

	select {
	case <-state.Done():
		t.Fatal("done channel closed before the run finished")
	default:
	}

	state.Complete()
	assert.Equal(t, StatusCompleted, state.Status())
	assert.NoError(t, state.Err())

	select {
	case <-state.Done():
	default:
		t.Fatal("done channel not closed after completion")
	}
}

func TestStateLifecycleFail(t *testing.T) {
	state := NewState("run-1", nil)
	state.Start()

	boom := errors.New("boom")
	state.Fail(boom)

	assert.Equal(t, StatusFailed, state.Status())
	assert.ErrorIs(t, state.Err(), boom)

	snap := state.Snapshot()
	assert.Equal(t, StatusFailed, snap.Status)
	assert.Equal(t, "boom", snap.Error)
	require.NotNil(t, snap.EndTime)
}

func TestStateLifecycleCancel(t *testing.T) {
	state := NewState("run-1", nil)
	state.Start()
	state.Cancel(errors.New("deadline exceeded"))

	assert.Equal(t, StatusCancelled, state.Status())
	select {
	case <-state.Done():
	default:
		t.Fatal("done channel not closed after cancellation")
	}
}

func TestStateArtifacts(t *testing.T) {
	state := NewState("run-1", nil)

	gmTab := sheets.TabGrid{Name: "Sharks", Rows: [][]string{{"GM:", "Alex Mack"}}}
	ledgerTab := sheets.TabGrid{Name: "Transaction Ledger"}
	state.SetTabs([]sheets.TabGrid{gmTab}, &ledgerTab)
	require.Len(t, state.GMTabs(), 1)
	assert.Equal(t, "Sharks", state.GMTabs()[0].Name)
	require.NotNil(t, state.LedgerTab())
	assert.Equal(t, "Transaction Ledger", state.LedgerTab().Name)

	identities := []domain.PlayerIdentity{{PlayerID: 1, DisplayName: "Josh Allen"}}
	state.SetCrosswalk(identities, identity.NewResolver(identities))
	assert.Len(t, state.Identities(), 1)
	require.NotNil(t, state.Resolver())
	id, ok := state.Resolver().Resolve("josh allen")
	require.True(t, ok)
	assert.Equal(t, int64(1), id)

	state.SetParsedGMs([]domain.ParsedGM{{GMName: "Alex Mack"}})
	require.Len(t, state.ParsedGMs(), 1)
	assert.Equal(t, "Alex Mack", state.ParsedGMs()[0].GMName)

	state.SetLedgerResult(ledger.ParseResult{
		Transactions:    []domain.TransactionRecord{{TransactionID: "T001"}},
		UnmappedPlayers: []domain.UnmappedAsset{{SubjectName: "Mystery Player"}},
		UnmappedPicks:   []domain.UnmappedAsset{{SubjectName: "2025 First Round"}},
	})
	assert.Len(t, state.Transactions(), 1)
	assert.Len(t, state.UnmappedPlayers(), 1)
	assert.Len(t, state.UnmappedPicks(), 1)

	state.SetManifest(&exporter.Manifest{SnapshotDate: "2025-08-24"})
	require.NotNil(t, state.Manifest())
	assert.Equal(t, "2025-08-24", state.Manifest().SnapshotDate)
}

func TestStateSnapshotReflectsStepProgress(t *testing.T) {
	steps := []Step{
		funcStep{id: "load"},
		funcStep{id: "crosswalk"},
		funcStep{id: "export"},
	}
	state := NewState("run-1", steps)
	state.StepByID("load").Complete()
	state.StepByID("crosswalk").Skip("no identity source configured")

	snap := state.Snapshot()
	require.Len(t, snap.Steps, 3)
	assert.Equal(t, StepStatusCompleted, snap.Steps[0].Status)
	assert.Equal(t, StepStatusSkipped, snap.Steps[1].Status)
	assert.Equal(t, StepStatusPending, snap.Steps[2].Status)
}
