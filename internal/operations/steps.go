package operations

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	apperrors "github.com/zazu-22/ff-data-analytics-sub000/internal/errors"
	"github.com/zazu-22/ff-data-analytics-sub000/internal/exporter"
	"github.com/zazu-22/ff-data-analytics-sub000/internal/identity"
	"github.com/zazu-22/ff-data-analytics-sub000/internal/infrastructure"
	"github.com/zazu-22/ff-data-analytics-sub000/internal/ledger"
	"github.com/zazu-22/ff-data-analytics-sub000/internal/sheets"
	"github.com/zazu-22/ff-data-analytics-sub000/pkg/contracts/domain"
)

// Step identifiers, stable across runs. Status reports, metrics and the
// progress stream all key on these.
const (
	StepIDLoad        = "load"
	StepIDCrosswalk   = "crosswalk"
	StepIDParseGMs    = "parse_gm_tabs"
	StepIDParseLedger = "parse_ledger"
	StepIDExport      = "export"
)

// Loader fetches every tab of the league workbook as raw grids. The three
// sheet sources (Google Sheets, Excel workbook, CSV directory) all satisfy
// it through LoaderFunc.
type Loader interface {
	Load(ctx context.Context) ([]sheets.TabGrid, error)
}

// LoaderFunc adapts a plain function to the Loader interface.
type LoaderFunc func(ctx context.Context) ([]sheets.TabGrid, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context) ([]sheets.TabGrid, error) {
	return f(ctx)
}

// LoadStep fetches the workbook tabs and classifies them into GM roster
// tabs and the transaction ledger. A workbook without the ledger tab fails
// the run immediately.
type LoadStep struct {
	loader     Loader
	classifier sheets.Classifier
	metrics    *infrastructure.PipelineMetrics
	logger     *slog.Logger
}

// NewLoadStep creates the tab loading step.
func NewLoadStep(loader Loader, classifier sheets.Classifier, metrics *infrastructure.PipelineMetrics, logger *slog.Logger) *LoadStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoadStep{
		loader:     loader,
		classifier: classifier,
		metrics:    metrics,
		logger:     logger.With(slog.String("component", "operations.load")),
	}
}

func (s *LoadStep) ID() string { return StepIDLoad }

func (s *LoadStep) Name() string { return "Load sheet tabs" }

// Execute fetches and classifies the workbook grids.
func (s *LoadStep) Execute(ctx context.Context, state *State) error {
	grids, err := s.loader.Load(ctx)
	if err != nil {
		return err
	}

	for _, grid := range grids {
		kind := s.classifier.Classify(grid.Name)
		infrastructure.RecordTabLoaded(ctx, s.metrics, string(kind), len(grid.Rows))
	}

	gmTabs, ledgerTab := s.classifier.Split(grids)
	if ledgerTab == nil {
		return apperrors.NewNotFoundError(fmt.Sprintf("transaction ledger tab %q", s.classifier.LedgerTab))
	}
	state.SetTabs(gmTabs, ledgerTab)

	s.logger.InfoContext(ctx, "sheet tabs loaded",
		slog.Int("total_tabs", len(grids)),
		slog.Int("gm_tabs", len(gmTabs)),
		slog.Int("ledger_rows", len(ledgerTab.Rows)))
	return nil
}

// CrosswalkSources names the inputs the crosswalk step may draw from.
// ExistingPath wins when it points at a present file; otherwise FeedPath
// plus AuthorityPath trigger a rebuild; with neither the step is skipped
// and every ledger player lands in the unmapped QA table.
type CrosswalkSources struct {
	FeedPath      string
	AuthorityPath string
	ExistingPath  string
}

// CrosswalkStep produces the player identity table and the name resolver
// the ledger parser resolves against.
type CrosswalkStep struct {
	sources CrosswalkSources
	metrics *infrastructure.PipelineMetrics
	logger  *slog.Logger
}

// NewCrosswalkStep creates the identity crosswalk step.
func NewCrosswalkStep(sources CrosswalkSources, metrics *infrastructure.PipelineMetrics, logger *slog.Logger) *CrosswalkStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &CrosswalkStep{
		sources: sources,
		metrics: metrics,
		logger:  logger.With(slog.String("component", "operations.crosswalk")),
	}
}

func (s *CrosswalkStep) ID() string { return StepIDCrosswalk }

func (s *CrosswalkStep) Name() string { return "Build identity crosswalk" }

// Execute loads or rebuilds the crosswalk depending on configured sources.
func (s *CrosswalkStep) Execute(ctx context.Context, state *State) error {
	if s.sources.ExistingPath != "" {
		if _, err := os.Stat(s.sources.ExistingPath); err == nil {
			return s.loadExisting(ctx, state)
		}
		s.logger.WarnContext(ctx, "existing identity table not found, falling back",
			slog.String("path", s.sources.ExistingPath))
	}
	if s.sources.FeedPath != "" && s.sources.AuthorityPath != "" {
		return s.build(ctx, state)
	}

	state.SetCrosswalk(nil, identity.NewResolver(nil))
	return &SkipError{Reason: "no identity source configured"}
}

func (s *CrosswalkStep) loadExisting(ctx context.Context, state *State) error {
	grid, err := sheets.LoadCSVFile(s.sources.ExistingPath)
	if err != nil {
		return err
	}
	rows := identity.ReadIdentities(grid.Rows)
	if rows == nil {
		return apperrors.NewParsingError(
			fmt.Sprintf("identity table %s is missing the player_id or display_name column", s.sources.ExistingPath), nil)
	}
	if len(rows) == 0 {
		return apperrors.NewParsingError(
			fmt.Sprintf("identity table %s has no usable rows", s.sources.ExistingPath), nil)
	}

	state.SetCrosswalk(rows, identity.NewResolver(rows))
	infrastructure.RecordCrosswalk(ctx, s.metrics, len(rows), correctionCounts(rows))
	s.logger.InfoContext(ctx, "identity crosswalk loaded",
		slog.String("path", s.sources.ExistingPath),
		slog.Int("players", len(rows)))
	return nil
}

func (s *CrosswalkStep) build(ctx context.Context, state *State) error {
	feedGrid, err := sheets.LoadCSVFile(s.sources.FeedPath)
	if err != nil {
		return err
	}
	authorityGrid, err := sheets.LoadCSVFile(s.sources.AuthorityPath)
	if err != nil {
		return err
	}

	records := identity.ReadFeed(feedGrid.Rows)
	authority := identity.ReadAuthority(authorityGrid.Rows)
	rows, err := identity.NewBuilder(s.logger).Build(records, authority)
	if err != nil {
		return err
	}

	state.SetCrosswalk(rows, identity.NewResolver(rows))
	infrastructure.RecordCrosswalk(ctx, s.metrics, len(rows), correctionCounts(rows))
	return nil
}

func correctionCounts(rows []domain.PlayerIdentity) map[string]int {
	counts := make(map[string]int)
	for _, row := range rows {
		if row.Status == domain.CorrectionNone {
			continue
		}
		counts[string(row.Status)]++
	}
	return counts
}

// ParseGMTabsStep decomposes every GM roster tab into its roster, cut
// contract, and draft pick blocks. Tabs that fail to parse yield empty
// blocks rather than failing the run; a league with no GM tabs at all is
// still a valid, if empty, snapshot.
type ParseGMTabsStep struct {
	schema ledger.SheetSchema
	logger *slog.Logger
}

// NewParseGMTabsStep creates the roster parsing step.
func NewParseGMTabsStep(schema ledger.SheetSchema, logger *slog.Logger) *ParseGMTabsStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParseGMTabsStep{
		schema: schema,
		logger: logger.With(slog.String("component", "operations.parse_gm_tabs")),
	}
}

func (s *ParseGMTabsStep) ID() string { return StepIDParseGMs }

func (s *ParseGMTabsStep) Name() string { return "Parse GM roster tabs" }

// Execute parses every GM tab grid stored by the load step.
func (s *ParseGMTabsStep) Execute(ctx context.Context, state *State) error {
	tabs := state.GMTabs()
	parsed := make([]domain.ParsedGM, 0, len(tabs))
	rows := 0
	for _, tab := range tabs {
		gm := ledger.ParseGMTab(tab.Name, tab.Rows, s.schema)
		parsed = append(parsed, gm)
		rows += gm.RowCount()
	}
	state.SetParsedGMs(parsed)

	s.logger.InfoContext(ctx, "gm tabs parsed",
		slog.Int("tabs", len(parsed)),
		slog.Int("rows", rows))
	return nil
}

// ParseLedgerStep turns the transaction ledger grid into classified
// transaction records, resolving player subjects through the crosswalk.
// Without a crosswalk every player subject lands in the unmapped QA table.
type ParseLedgerStep struct {
	metrics *infrastructure.PipelineMetrics
	logger  *slog.Logger
}

// NewParseLedgerStep creates the ledger parsing step.
func NewParseLedgerStep(metrics *infrastructure.PipelineMetrics, logger *slog.Logger) *ParseLedgerStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParseLedgerStep{
		metrics: metrics,
		logger:  logger.With(slog.String("component", "operations.parse_ledger")),
	}
}

func (s *ParseLedgerStep) ID() string { return StepIDParseLedger }

func (s *ParseLedgerStep) Name() string { return "Parse transaction ledger" }

// Execute classifies the ledger grid stored by the load step.
func (s *ParseLedgerStep) Execute(ctx context.Context, state *State) error {
	grid := state.LedgerTab()
	if grid == nil {
		return apperrors.NewValidationError("transaction ledger grid not loaded")
	}
	resolver := state.Resolver()
	if resolver == nil {
		resolver = identity.NewResolver(nil)
	}

	result := ledger.NewParser(resolver, s.logger).Parse(grid.Rows)
	state.SetLedgerResult(result)

	byType := make(map[string]int)
	for _, txn := range result.Transactions {
		byType[string(txn.TransactionType)]++
	}
	for txnType, n := range byType {
		infrastructure.RecordTransactions(ctx, s.metrics, txnType, n)
	}
	infrastructure.RecordUnmappedAssets(ctx, s.metrics, "player", len(result.UnmappedPlayers))
	infrastructure.RecordUnmappedAssets(ctx, s.metrics, "pick", len(result.UnmappedPicks))

	s.logger.InfoContext(ctx, "transaction ledger parsed",
		slog.Int("transactions", len(result.Transactions)),
		slog.Int("unmapped_players", len(result.UnmappedPlayers)),
		slog.Int("unmapped_picks", len(result.UnmappedPicks)))
	return nil
}

// ExportStep writes every normalized dataset as a dated snapshot partition
// under the output directory and stores the manifest on the run state.
type ExportStep struct {
	outDir string
	date   string
	logger *slog.Logger
}

// NewExportStep creates the dataset export step. An empty date means the
// snapshot is stamped with today's UTC date at execution time.
func NewExportStep(outDir, date string, logger *slog.Logger) *ExportStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportStep{
		outDir: outDir,
		date:   date,
		logger: logger.With(slog.String("component", "operations.export")),
	}
}

func (s *ExportStep) ID() string { return StepIDExport }

func (s *ExportStep) Name() string { return "Export datasets" }

// Execute writes the snapshot and its manifest.
func (s *ExportStep) Execute(ctx context.Context, state *State) error {
	date := s.date
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}

	bundle := exporter.Bundle{
		GMs:             state.ParsedGMs(),
		Transactions:    state.Transactions(),
		Identities:      state.Identities(),
		UnmappedPlayers: state.UnmappedPlayers(),
		UnmappedPicks:   state.UnmappedPicks(),
	}
	manifest, err := exporter.NewDatasetExporter(s.outDir, s.logger).WriteDatasets(date, bundle)
	if err != nil {
		return err
	}
	state.SetManifest(manifest)
	return nil
}
