package operations

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/zazu-22/ff-data-analytics-sub000/internal/errors"
	"github.com/zazu-22/ff-data-analytics-sub000/internal/exporter"
	"github.com/zazu-22/ff-data-analytics-sub000/internal/identity"
	"github.com/zazu-22/ff-data-analytics-sub000/internal/ledger"
	"github.com/zazu-22/ff-data-analytics-sub000/internal/sheets"
	"github.com/zazu-22/ff-data-analytics-sub000/pkg/contracts/domain"
)

func intPtr(v int) *int { return &v }

func testClassifier() sheets.Classifier {
	return sheets.Classifier{
		LedgerTab:   "Transaction Ledger",
		ExcludeTabs: []string{"Dashboard"},
	}
}

func gmGrid(tab, gm, player string) sheets.TabGrid {
	return sheets.TabGrid{
		Name: tab,
		Rows: [][]string{
			{"GM:", gm},
			{"Pos.", "Player", "2025", "2026", "2027", "2028", "2029", "Total", "RFA?", "FT?", "Contract", "Split"},
			{"QB", player, "10", "10", "-", "-", "-", "20", "-", "-", "20/2", "10-10"},
		},
	}
}

func ledgerGrid() sheets.TabGrid {
	return sheets.TabGrid{
		Name: "Transaction Ledger",
		Rows: [][]string{
			{"Transaction ID", "Season", "Time Frame", "GM", "Action", "Asset", "Position", "RFA Matched", "Contract", "Split", "Pick"},
			{"T001", "2025", "FAAD 2025", "Sharks", "Signing", "Josh Allen", "QB", "-", "30/2", "15-15", "-"},
			{"T002", "2025", "Rookie Draft", "Sharks", "Draft", "2025 1st Round", "-", "-", "-", "-", "4"},
			{"T003", "2025", "Wk 3", "Bears", "Trade", "Mystery Player", "RB", "-", "-", "-", "-"},
		},
	}
}

func writeTestCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestStepIdentifiers(t *testing.T) {
	assert.Equal(t, StepIDLoad, NewLoadStep(nil, sheets.Classifier{}, nil, nil).ID())
	assert.Equal(t, StepIDCrosswalk, NewCrosswalkStep(CrosswalkSources{}, nil, nil).ID())
	assert.Equal(t, StepIDParseGMs, NewParseGMTabsStep(ledger.DefaultSheetSchema(), nil).ID())
	assert.Equal(t, StepIDParseLedger, NewParseLedgerStep(nil, nil).ID())
	assert.Equal(t, StepIDExport, NewExportStep("", "", nil).ID())
}

func TestLoadStepExecute(t *testing.T) {
	loader := LoaderFunc(func(context.Context) ([]sheets.TabGrid, error) {
		return []sheets.TabGrid{
			gmGrid("Sharks", "Alex Mack", "Josh Allen"),
			{Name: "Dashboard", Rows: [][]string{{"standings chart"}}},
			ledgerGrid(),
		}, nil
	})
	step := NewLoadStep(loader, testClassifier(), nil, nil)
	state := NewState("run-1", nil)

	require.NoError(t, step.Execute(context.Background(), state))

	require.Len(t, state.GMTabs(), 1)
	assert.Equal(t, "Sharks", state.GMTabs()[0].Name)
	require.NotNil(t, state.LedgerTab())
	assert.Equal(t, "Transaction Ledger", state.LedgerTab().Name)
}

func TestLoadStepMissingLedgerTab(t *testing.T) {
	loader := LoaderFunc(func(context.Context) ([]sheets.TabGrid, error) {
		return []sheets.TabGrid{gmGrid("Sharks", "Alex Mack", "Josh Allen")}, nil
	})
	step := NewLoadStep(loader, testClassifier(), nil, nil)

	err := step.Execute(context.Background(), NewState("run-1", nil))

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeNotFound, appErr.Type)
}

func TestLoadStepLoaderError(t *testing.T) {
	boom := errors.New("fetch failed")
	loader := LoaderFunc(func(context.Context) ([]sheets.TabGrid, error) {
		return nil, boom
	})
	step := NewLoadStep(loader, testClassifier(), nil, nil)

	err := step.Execute(context.Background(), NewState("run-1", nil))
	assert.ErrorIs(t, err, boom)
}

func TestCrosswalkStepSkipsWithoutSources(t *testing.T) {
	step := NewCrosswalkStep(CrosswalkSources{}, nil, nil)
	state := NewState("run-1", nil)

	err := step.Execute(context.Background(), state)

	var skip *SkipError
	require.ErrorAs(t, err, &skip)
	assert.Equal(t, "no identity source configured", skip.Reason)

	// The run continues with an empty resolver, so the ledger step still
	// works and every player lands in the unmapped QA table.
	require.NotNil(t, state.Resolver())
	assert.Equal(t, 0, state.Resolver().Size())
	assert.Empty(t, state.Identities())
}

func TestCrosswalkStepLoadsExistingTable(t *testing.T) {
	dir := t.TempDir()
	path := writeTestCSV(t, dir, "player_identities.csv",
		"player_id,display_name,name_last_first,position,draft_year,sleeper_id,correction_status\n"+
			"1,Josh Allen,\"Allen, Josh\",QB,2018,4984,\n"+
			"2,Mike Williams,\"Williams, Mike\",WR,2017,555,kept_sleeper_verified\n")

	step := NewCrosswalkStep(CrosswalkSources{ExistingPath: path}, nil, nil)
	state := NewState("run-1", nil)

	require.NoError(t, step.Execute(context.Background(), state))

	require.Len(t, state.Identities(), 2)
	assert.Equal(t, "Allen, Josh", state.Identities()[0].NameLastFirst)

	id, ok := state.Resolver().Resolve("josh allen")
	require.True(t, ok)
	assert.Equal(t, int64(1), id)
}

func TestCrosswalkStepRebuildsFromFeed(t *testing.T) {
	dir := t.TempDir()
	feed := writeTestCSV(t, dir, "feed.csv",
		"name,position,team,birthdate,draft_year,mfl_id,sleeper_id,gsis_id,espn_id,yahoo_id,pfr_id\n"+
			"Josh Allen,QB,BUF,1996-05-21,2018,13593,4984,00-0034857,,,\n"+
			"Mike Williams,WR,LAC,1994-10-04,2017,,555,,,,\n")
	authority := writeTestCSV(t, dir, "authority.csv",
		"sleeper_id,birthdate\n4984,1996-05-21\n555,1994-10-04\n")

	step := NewCrosswalkStep(CrosswalkSources{FeedPath: feed, AuthorityPath: authority}, nil, nil)
	state := NewState("run-1", nil)

	require.NoError(t, step.Execute(context.Background(), state))

	rows := state.Identities()
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0].PlayerID)
	assert.Equal(t, "Allen, Josh", rows[0].NameLastFirst)

	id, ok := state.Resolver().Resolve("mike williams")
	require.True(t, ok)
	assert.Equal(t, int64(2), id)
}

func TestCrosswalkStepFallsBackWhenExistingAbsent(t *testing.T) {
	dir := t.TempDir()
	feed := writeTestCSV(t, dir, "feed.csv",
		"name,sleeper_id\nJosh Allen,4984\n")
	authority := writeTestCSV(t, dir, "authority.csv",
		"sleeper_id,birthdate\n4984,1996-05-21\n")

	step := NewCrosswalkStep(CrosswalkSources{
		ExistingPath:  filepath.Join(dir, "absent.csv"),
		FeedPath:      feed,
		AuthorityPath: authority,
	}, nil, nil)
	state := NewState("run-1", nil)

	require.NoError(t, step.Execute(context.Background(), state))
	assert.Len(t, state.Identities(), 1)
}

func TestCrosswalkStepRejectsMalformedExistingTable(t *testing.T) {
	dir := t.TempDir()
	path := writeTestCSV(t, dir, "bad.csv", "display_name\nJosh Allen\n")

	step := NewCrosswalkStep(CrosswalkSources{ExistingPath: path}, nil, nil)
	err := step.Execute(context.Background(), NewState("run-1", nil))

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeParsing, appErr.Type)
}

func TestCrosswalkStepMissingFeedFile(t *testing.T) {
	dir := t.TempDir()
	step := NewCrosswalkStep(CrosswalkSources{
		FeedPath:      filepath.Join(dir, "absent.csv"),
		AuthorityPath: filepath.Join(dir, "also-absent.csv"),
	}, nil, nil)

	err := step.Execute(context.Background(), NewState("run-1", nil))
	assert.Error(t, err)
}

func TestParseGMTabsStep(t *testing.T) {
	state := NewState("run-1", nil)
	state.SetTabs([]sheets.TabGrid{
		gmGrid("Sharks", "Alex Mack", "Josh Allen"),
		gmGrid("Bears", "Dana Cole", "Jordan Love"),
	}, nil)

	step := NewParseGMTabsStep(ledger.DefaultSheetSchema(), nil)
	require.NoError(t, step.Execute(context.Background(), state))

	parsed := state.ParsedGMs()
	require.Len(t, parsed, 2)
	assert.Equal(t, "Alex Mack", parsed[0].GMName)
	require.Len(t, parsed[0].Roster, 1)
	assert.Equal(t, "Josh Allen", parsed[0].Roster[0].Player)
	assert.Equal(t, []int{10, 10}, parsed[0].Roster[0].Contract.Split)
	assert.Equal(t, "Dana Cole", parsed[1].GMName)
}

func TestParseGMTabsStepNoTabs(t *testing.T) {
	state := NewState("run-1", nil)
	step := NewParseGMTabsStep(ledger.DefaultSheetSchema(), nil)

	require.NoError(t, step.Execute(context.Background(), state))
	assert.Empty(t, state.ParsedGMs())
}

func TestParseLedgerStep(t *testing.T) {
	identities := []domain.PlayerIdentity{
		{PlayerID: 7, DisplayName: "Josh Allen", DraftYear: intPtr(2018)},
	}
	state := NewState("run-1", nil)
	grid := ledgerGrid()
	state.SetTabs(nil, &grid)
	state.SetCrosswalk(identities, identity.NewResolver(identities))

	step := NewParseLedgerStep(nil, nil)
	require.NoError(t, step.Execute(context.Background(), state))

	txns := state.Transactions()
	require.Len(t, txns, 3)
	require.NotNil(t, txns[0].ResolvedID)
	assert.Equal(t, int64(7), *txns[0].ResolvedID)
	require.NotNil(t, txns[1].PickID)
	assert.Equal(t, "2025_R1_P04", *txns[1].PickID)

	require.Len(t, state.UnmappedPlayers(), 1)
	assert.Equal(t, "Mystery Player", state.UnmappedPlayers()[0].SubjectName)
	assert.Empty(t, state.UnmappedPicks())
}

func TestParseLedgerStepWithoutGrid(t *testing.T) {
	step := NewParseLedgerStep(nil, nil)
	err := step.Execute(context.Background(), NewState("run-1", nil))

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeValidation, appErr.Type)
}

func TestParseLedgerStepWithoutResolver(t *testing.T) {
	state := NewState("run-1", nil)
	grid := ledgerGrid()
	state.SetTabs(nil, &grid)

	step := NewParseLedgerStep(nil, nil)
	require.NoError(t, step.Execute(context.Background(), state))

	assert.Len(t, state.Transactions(), 3)
	// Both player subjects are unmapped without a crosswalk.
	assert.Len(t, state.UnmappedPlayers(), 2)
}

func TestExportStep(t *testing.T) {
	dir := t.TempDir()
	state := NewState("run-1", nil)
	grid := ledgerGrid()
	state.SetTabs([]sheets.TabGrid{gmGrid("Sharks", "Alex Mack", "Josh Allen")}, &grid)

	identities := []domain.PlayerIdentity{
		{PlayerID: 7, DisplayName: "Josh Allen", DraftYear: intPtr(2018)},
	}
	state.SetCrosswalk(identities, identity.NewResolver(identities))

	ctx := context.Background()
	require.NoError(t, NewParseGMTabsStep(ledger.DefaultSheetSchema(), nil).Execute(ctx, state))
	require.NoError(t, NewParseLedgerStep(nil, nil).Execute(ctx, state))

	step := NewExportStep(dir, "2025-08-24", nil)
	require.NoError(t, step.Execute(ctx, state))

	manifest := state.Manifest()
	require.NotNil(t, manifest)
	assert.Equal(t, "2025-08-24", manifest.SnapshotDate)
	assert.Equal(t, 3, manifest.Datasets[exporter.DatasetTransactions].Rows)
	assert.Equal(t, 1, manifest.Datasets[exporter.DatasetIdentities].Rows)

	_, err := os.Stat(filepath.Join(dir, "transactions", "dt=2025-08-24", "transactions.csv"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "manifest.json"))
	require.NoError(t, err)
}

func TestExportStepDefaultsToTodayUTC(t *testing.T) {
	dir := t.TempDir()
	state := NewState("run-1", nil)

	step := NewExportStep(dir, "", nil)
	require.NoError(t, step.Execute(context.Background(), state))

	manifest := state.Manifest()
	require.NotNil(t, manifest)
	_, err := time.Parse("2006-01-02", manifest.SnapshotDate)
	assert.NoError(t, err)
}
