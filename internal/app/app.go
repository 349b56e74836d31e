package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/zazu-22/ff-data-analytics-sub000/internal/config"
	"github.com/zazu-22/ff-data-analytics-sub000/internal/infrastructure"
	"github.com/zazu-22/ff-data-analytics-sub000/internal/ledger"
	"github.com/zazu-22/ff-data-analytics-sub000/internal/operations"
	"github.com/zazu-22/ff-data-analytics-sub000/internal/sheets"
	transport "github.com/zazu-22/ff-data-analytics-sub000/internal/transport/http"
	ws "github.com/zazu-22/ff-data-analytics-sub000/internal/websocket"
	"github.com/zazu-22/ff-data-analytics-sub000/pkg/contracts"
)

// Reference file names the crosswalk step looks for under the reference
// directory. Drop a fresh provider feed and authority export there to
// enable crosswalk rebuilds; a previously built identity table short-
// circuits both.
const (
	IdentityFeedFile  = "identity_feed.csv"
	AuthorityFile     = "authority_birthdates.csv"
	IdentityTableFile = "player_identity.csv"
)

// WorkbookFile is the Excel fallback the loader looks for in the input
// directory when no spreadsheet ID is configured.
const WorkbookFile = "league.xlsx"

// Application is the assembled ledger server: configuration, pipeline,
// HTTP surface and progress stream.
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.PipelineMetrics
	Hub           *ws.Hub
	Manager       *operations.Manager
	Server        *http.Server
}

// NewApplication wires the full server from configuration and the
// executable-relative directory layout.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	paths, err := config.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	return newApplication(cfg, paths)
}

// newApplication is the testable assembly path: configuration and layout
// are injected instead of discovered.
func newApplication(cfg *config.Config, paths *config.Paths) (*Application, error) {
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	if cfg.Logging.FilePath == "logs/app.log" {
		cfg.Logging.FilePath = paths.LogPath("server.log")
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("ledger server starting",
		slog.String("version", contracts.Version),
		slog.String("data_dir", paths.DataDir))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	var metrics *infrastructure.PipelineMetrics
	if otelProviders.Meter != nil {
		metrics, err = infrastructure.NewPipelineMetrics(otelProviders.Meter)
		if err != nil {
			return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
		}
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
	}

	app.Hub = ws.NewHub(logger)
	app.Hub.Start()

	manager, err := app.buildManager()
	if err != nil {
		return nil, err
	}
	manager.SetTimeout(cfg.Server.OperationTimeout)
	manager.SetProgressFunc(ws.ProgressBroadcaster(app.Hub))
	app.Manager = manager

	app.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        app.buildRouter(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	return app, nil
}

// buildManager assembles the ingest pipeline from configuration.
func (a *Application) buildManager() (*operations.Manager, error) {
	schema := ledger.DefaultSheetSchema()
	if a.Config.League.SchemaFile != "" {
		loaded, err := ledger.LoadSheetSchema(a.Config.League.SchemaFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load block schema: %w", err)
		}
		schema = loaded
	}

	classifier := sheets.Classifier{
		LedgerTab:   a.Config.Sheets.LedgerTab,
		ExcludeTabs: a.Config.Sheets.ExcludeTabs,
	}

	steps := []operations.Step{
		operations.NewLoadStep(a.buildLoader(), classifier, a.Metrics, a.Logger),
		operations.NewCrosswalkStep(operations.CrosswalkSources{
			FeedPath:      a.Paths.ReferencePath(IdentityFeedFile),
			AuthorityPath: a.Paths.ReferencePath(AuthorityFile),
			ExistingPath:  a.Paths.ReferencePath(IdentityTableFile),
		}, a.Metrics, a.Logger),
		operations.NewParseGMTabsStep(schema, a.Logger),
		operations.NewParseLedgerStep(a.Metrics, a.Logger),
		operations.NewExportStep(a.Paths.NormalizedDir, "", a.Logger),
	}

	return operations.NewManager(steps, a.Metrics, a.Logger), nil
}

// buildLoader picks the tab source: a configured Google spreadsheet wins,
// then an Excel workbook dropped in the input directory, then per-tab CSV
// files in the same directory.
func (a *Application) buildLoader() operations.Loader {
	cfg := a.Config
	paths := a.Paths

	return operations.LoaderFunc(func(ctx context.Context) ([]sheets.TabGrid, error) {
		if cfg.Sheets.SpreadsheetID != "" {
			client, err := sheets.NewGoogleClient(ctx, cfg.Sheets, a.Logger)
			if err != nil {
				return nil, err
			}
			names, err := client.ListTabs(ctx)
			if err != nil {
				return nil, err
			}
			return client.FetchAll(ctx, names)
		}

		workbook := filepath.Join(paths.InputDir, WorkbookFile)
		if config.FileExists(workbook) {
			return sheets.LoadWorkbook(workbook)
		}
		return sheets.LoadCSVDir(paths.InputDir)
	})
}

func (a *Application) buildRouter() http.Handler {
	return transport.NewRouter(transport.RouterDeps{
		Config:        a.Config,
		Logger:        a.Logger,
		Metrics:       a.Metrics,
		Tracer:        a.OTelProviders.Tracer,
		Prometheus:    a.OTelProviders.PrometheusHTTP,
		Store:         transport.NewSnapshotStore(a.Paths.NormalizedDir, a.Logger),
		Operations:    a.Manager,
		WebSocket:     ws.NewHandler(a.Hub, a.Config, a.Logger),
		WebDir:        a.Paths.WebDir,
		NormalizedDir: a.Paths.NormalizedDir,
	})
}

// Run serves HTTP until SIGINT/SIGTERM, then shuts down gracefully.
func (a *Application) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("http server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case sig := <-stop:
		a.Logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	}

	return a.Shutdown()
}

// Shutdown stops the HTTP server, the progress hub, and the telemetry
// providers in that order.
func (a *Application) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	var firstErr error
	if err := a.Server.Shutdown(ctx); err != nil {
		a.Logger.Error("http shutdown failed", slog.String("error", err.Error()))
		firstErr = err
	}

	a.Hub.Stop()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(ctx); err != nil {
			a.Logger.Warn("telemetry shutdown failed", slog.String("error", err.Error()))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if err := infrastructure.CloseLogFile(); err != nil && firstErr == nil {
		firstErr = err
	}

	a.Logger.Info("shutdown complete")
	return firstErr
}
