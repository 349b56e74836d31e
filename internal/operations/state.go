package operations

import (
	"sync"
	"time"

	"github.com/zazu-22/ff-data-analytics-sub000/internal/exporter"
	"github.com/zazu-22/ff-data-analytics-sub000/internal/identity"
	"github.com/zazu-22/ff-data-analytics-sub000/internal/ledger"
	"github.com/zazu-22/ff-data-analytics-sub000/internal/sheets"
	"github.com/zazu-22/ff-data-analytics-sub000/pkg/contracts/domain"
)

// Status is the overall lifecycle state of an ingest run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// State is the shared record of one ingest run: overall status, per-step
// states, and the artifacts steps pass to each other. Steps execute one at
// a time but status readers arrive from other goroutines, so every access
// goes through the lock.
type State struct {
	mu        sync.RWMutex
	id        string
	status    Status
	startTime time.Time
	endTime   *time.Time
	err       error

	steps     map[string]*StepState
	stepOrder []string

	gmTabs          []sheets.TabGrid
	ledgerTab       *sheets.TabGrid
	identities      []domain.PlayerIdentity
	resolver        *identity.Resolver
	parsedGMs       []domain.ParsedGM
	transactions    []domain.TransactionRecord
	unmappedPlayers []domain.UnmappedAsset
	unmappedPicks   []domain.UnmappedAsset
	manifest        *exporter.Manifest

	done     chan struct{}
	doneOnce sync.Once
}

// NewState creates a pending run with one StepState per pipeline step, in
// execution order.
func NewState(id string, steps []Step) *State {
	s := &State{
		id:        id,
		status:    StatusPending,
		startTime: time.Now(),
		steps:     make(map[string]*StepState, len(steps)),
		done:      make(chan struct{}),
	}
	for _, step := range steps {
		s.steps[step.ID()] = NewStepState(step.ID(), step.Name())
		s.stepOrder = append(s.stepOrder, step.ID())
	}
	return s
}

// ID returns the run identifier.
func (s *State) ID() string {
	return s.id
}

// Status returns the current overall status.
func (s *State) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Err returns the error that failed the run, if any.
func (s *State) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Done returns a channel closed when the run reaches a terminal status.
func (s *State) Done() <-chan struct{} {
	return s.done
}

// Start marks the run as executing.
func (s *State) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusRunning
	s.startTime = time.Now()
}

// Complete marks the run finished successfully.
func (s *State) Complete() {
	s.finish(StatusCompleted, nil)
}

// Fail marks the run failed.
func (s *State) Fail(err error) {
	s.finish(StatusFailed, err)
}

// Cancel marks the run cancelled.
func (s *State) Cancel(err error) {
	s.finish(StatusCancelled, err)
}

func (s *State) finish(status Status, err error) {
	s.mu.Lock()
	now := time.Now()
	s.endTime = &now
	s.status = status
	s.err = err
	s.mu.Unlock()
	s.doneOnce.Do(func() { close(s.done) })
}

// StepByID returns the state record for one step, or nil.
func (s *State) StepByID(id string) *StepState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.steps[id]
}

// Duration reports elapsed time, or total runtime once finished.
func (s *State) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.endTime != nil {
		return s.endTime.Sub(s.startTime)
	}
	return time.Since(s.startTime)
}

// SetTabs stores the classified workbook grids.
func (s *State) SetTabs(gmTabs []sheets.TabGrid, ledgerTab *sheets.TabGrid) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gmTabs = gmTabs
	s.ledgerTab = ledgerTab
}

// GMTabs returns the GM roster tab grids.
func (s *State) GMTabs() []sheets.TabGrid {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gmTabs
}

// LedgerTab returns the transaction ledger grid, or nil before loading.
func (s *State) LedgerTab() *sheets.TabGrid {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledgerTab
}

// SetCrosswalk stores the identity table and its name resolver.
func (s *State) SetCrosswalk(identities []domain.PlayerIdentity, resolver *identity.Resolver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identities = identities
	s.resolver = resolver
}

// Identities returns the player identity crosswalk rows.
func (s *State) Identities() []domain.PlayerIdentity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identities
}

// Resolver returns the identity resolver, or nil before the crosswalk step.
func (s *State) Resolver() *identity.Resolver {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolver
}

// SetParsedGMs stores the per-tab roster parse results.
func (s *State) SetParsedGMs(gms []domain.ParsedGM) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parsedGMs = gms
}

// ParsedGMs returns the parsed GM tabs.
func (s *State) ParsedGMs() []domain.ParsedGM {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.parsedGMs
}

// SetLedgerResult stores the classified transaction table and its QA
// projections.
func (s *State) SetLedgerResult(result ledger.ParseResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = result.Transactions
	s.unmappedPlayers = result.UnmappedPlayers
	s.unmappedPicks = result.UnmappedPicks
}

// Transactions returns the classified transaction records.
func (s *State) Transactions() []domain.TransactionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transactions
}

// UnmappedPlayers returns ledger subjects the crosswalk could not resolve.
func (s *State) UnmappedPlayers() []domain.UnmappedAsset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unmappedPlayers
}

// UnmappedPicks returns ledger pick labels the pick parser rejected.
func (s *State) UnmappedPicks() []domain.UnmappedAsset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unmappedPicks
}

// SetManifest stores the export manifest.
func (s *State) SetManifest(m *exporter.Manifest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manifest = m
}

// Manifest returns the export manifest, or nil before the export step.
func (s *State) Manifest() *exporter.Manifest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.manifest
}

// Snapshot returns a serializable view of the run with steps in execution
// order.
func (s *State) Snapshot() OperationSnapshot {
	s.mu.RLock()
	snap := OperationSnapshot{
		ID:        s.id,
		Status:    s.status,
		StartTime: s.startTime,
	}
	if s.endTime != nil {
		t := *s.endTime
		snap.EndTime = &t
	}
	if s.err != nil {
		snap.Error = s.err.Error()
	}
	order := make([]string, len(s.stepOrder))
	copy(order, s.stepOrder)
	stepStates := make([]*StepState, 0, len(order))
	for _, id := range order {
		stepStates = append(stepStates, s.steps[id])
	}
	s.mu.RUnlock()

	snap.Steps = make([]StepSnapshot, 0, len(stepStates))
	for _, step := range stepStates {
		snap.Steps = append(snap.Steps, step.Snapshot())
	}
	return snap
}

// OperationSnapshot is the JSON-safe view of one ingest run.
type OperationSnapshot struct {
	ID        string         `json:"id"`
	Status    Status         `json:"status"`
	StartTime time.Time      `json:"start_time"`
	EndTime   *time.Time     `json:"end_time,omitempty"`
	Error     string         `json:"error,omitempty"`
	Steps     []StepSnapshot `json:"steps"`
}
