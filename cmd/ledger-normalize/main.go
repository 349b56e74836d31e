// ledger-normalize runs the league ingest pipeline once: load the sheet
// tabs from the chosen source, build or load the player identity
// crosswalk, parse the GM roster tabs and the transaction ledger, and
// export the normalized datasets as a dated snapshot.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/zazu-22/ff-data-analytics-sub000/internal/config"
	"github.com/zazu-22/ff-data-analytics-sub000/internal/infrastructure"
	"github.com/zazu-22/ff-data-analytics-sub000/internal/ledger"
	"github.com/zazu-22/ff-data-analytics-sub000/internal/operations"
	"github.com/zazu-22/ff-data-analytics-sub000/internal/sheets"
	"github.com/zazu-22/ff-data-analytics-sub000/pkg/contracts"
)

func main() {
	var (
		sheetID    = flag.String("sheet", "", "Google spreadsheet ID to load (overrides config)")
		workbook   = flag.String("workbook", "", "path to an .xlsx workbook export")
		csvDir     = flag.String("in", "", "directory of per-tab CSV exports")
		outDir     = flag.String("out", "", "output directory for normalized datasets (defaults to data/normalized)")
		date       = flag.String("date", "", "snapshot date YYYY-MM-DD (defaults to today, UTC)")
		feed       = flag.String("feed", "", "provider identity feed CSV for a crosswalk rebuild")
		authority  = flag.String("authority", "", "authoritative birthdate reference CSV")
		identities = flag.String("identities", "", "previously built identity table CSV")
		schemaFile = flag.String("schema", "", "block schema YAML override")
		timeout    = flag.Duration("timeout", 10*time.Minute, "overall run deadline")
		version    = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *version {
		fmt.Println(contracts.GetVersionString())
		return
	}

	paths, err := config.GetPaths()
	if err != nil {
		slog.Error("failed to resolve paths", "error", err)
		os.Exit(1)
	}
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("failed to create required directories", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}
	cfg.Logging.FilePath = paths.LogPath("normalize.log")

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	if *sheetID != "" {
		cfg.Sheets.SpreadsheetID = *sheetID
	}
	if *outDir == "" {
		*outDir = paths.NormalizedDir
	}
	sources := operations.CrosswalkSources{
		FeedPath:      *feed,
		AuthorityPath: *authority,
		ExistingPath:  *identities,
	}
	if sources.FeedPath == "" && sources.AuthorityPath == "" && sources.ExistingPath == "" {
		sources = operations.CrosswalkSources{
			FeedPath:      paths.ReferencePath("identity_feed.csv"),
			AuthorityPath: paths.ReferencePath("authority_birthdates.csv"),
			ExistingPath:  paths.ReferencePath("player_identity.csv"),
		}
	}

	schema := ledger.DefaultSheetSchema()
	if *schemaFile != "" {
		schema, err = ledger.LoadSheetSchema(*schemaFile)
		if err != nil {
			logger.Error("failed to load block schema", "path", *schemaFile, "error", err)
			os.Exit(1)
		}
	}

	loader, err := buildLoader(cfg, paths, *workbook, *csvDir, logger)
	if err != nil {
		logger.Error("no usable tab source", "error", err)
		os.Exit(1)
	}

	classifier := sheets.Classifier{
		LedgerTab:   cfg.Sheets.LedgerTab,
		ExcludeTabs: cfg.Sheets.ExcludeTabs,
	}
	steps := []operations.Step{
		operations.NewLoadStep(loader, classifier, nil, logger),
		operations.NewCrosswalkStep(sources, nil, logger),
		operations.NewParseGMTabsStep(schema, logger),
		operations.NewParseLedgerStep(nil, logger),
		operations.NewExportStep(*outDir, *date, logger),
	}

	manager := operations.NewManager(steps, nil, logger)
	manager.SetTimeout(*timeout)

	state, err := manager.Start("")
	if err != nil {
		logger.Error("failed to start ingest run", "error", err)
		os.Exit(1)
	}
	<-state.Done()

	printSummary(os.Stdout, state)
	if state.Status() != operations.StatusCompleted {
		os.Exit(1)
	}
}

// buildLoader selects the tab source by explicit flag, falling back to
// the configured spreadsheet and then the input directory.
func buildLoader(cfg *config.Config, paths *config.Paths, workbook, csvDir string, logger *slog.Logger) (operations.Loader, error) {
	switch {
	case workbook != "":
		return operations.LoaderFunc(func(ctx context.Context) ([]sheets.TabGrid, error) {
			return sheets.LoadWorkbook(workbook)
		}), nil
	case csvDir != "":
		return operations.LoaderFunc(func(ctx context.Context) ([]sheets.TabGrid, error) {
			return sheets.LoadCSVDir(csvDir)
		}), nil
	case cfg.Sheets.SpreadsheetID != "":
		return operations.LoaderFunc(func(ctx context.Context) ([]sheets.TabGrid, error) {
			client, err := sheets.NewGoogleClient(ctx, cfg.Sheets, logger)
			if err != nil {
				return nil, err
			}
			names, err := client.ListTabs(ctx)
			if err != nil {
				return nil, err
			}
			return client.FetchAll(ctx, names)
		}), nil
	default:
		return operations.LoaderFunc(func(ctx context.Context) ([]sheets.TabGrid, error) {
			return sheets.LoadCSVDir(paths.InputDir)
		}), nil
	}
}

// printSummary renders the run outcome: per-step status, then dataset
// row counts from the export manifest.
func printSummary(w io.Writer, state *operations.State) {
	snap := state.Snapshot()

	fmt.Fprintf(w, "run %s: %s (%s)\n\n", snap.ID, snap.Status, state.Duration().Round(time.Millisecond))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STEP\tSTATUS\tDETAIL")
	for _, step := range snap.Steps {
		detail := step.Message
		if step.Error != "" {
			detail = step.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", step.ID, step.Status, detail)
	}
	tw.Flush()

	manifest := state.Manifest()
	if manifest == nil {
		return
	}

	names := make([]string, 0, len(manifest.Datasets))
	for name := range manifest.Datasets {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(w, "\nsnapshot %s\n", manifest.SnapshotDate)
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATASET\tROWS\tPATH")
	for _, name := range names {
		info := manifest.Datasets[name]
		fmt.Fprintf(tw, "%s\t%d\t%s\n", name, info.Rows, info.Path)
	}
	tw.Flush()
}
