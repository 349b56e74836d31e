package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.opentelemetry.io/otel/trace"

	"github.com/zazu-22/ff-data-analytics-sub000/internal/config"
	apierrors "github.com/zazu-22/ff-data-analytics-sub000/internal/errors"
	"github.com/zazu-22/ff-data-analytics-sub000/internal/infrastructure"
	"github.com/zazu-22/ff-data-analytics-sub000/internal/middleware"
)

// RouterDeps carries everything the HTTP surface serves.
type RouterDeps struct {
	Config        *config.Config
	Logger        *slog.Logger
	Metrics       *infrastructure.PipelineMetrics
	Tracer        trace.Tracer
	Prometheus    http.Handler     // /metrics scrape endpoint
	Store         SnapshotReader   // exported snapshot reads
	Operations    OperationService // ingest trigger and status
	WebSocket     http.HandlerFunc // /ws upgrade handler
	WebDir        string           // static review UI, served when present
	NormalizedDir string           // readiness target
}

// NewRouter assembles the full route tree. The WebSocket upgrade and the
// Prometheus scrape endpoint sit outside the main middleware group: the
// upgrade needs an unwrapped ResponseWriter, and scrapes should not spend
// a rate-limit token or emit request logs.
func NewRouter(deps RouterDeps) chi.Router {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config
	if cfg == nil {
		cfg = config.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.StripSlashes)

	if deps.WebSocket != nil {
		r.HandleFunc("/ws", deps.WebSocket)
	}
	if deps.Prometheus != nil {
		r.Handle("/metrics", deps.Prometheus)
	}
	if deps.WebDir != "" {
		if info, err := os.Stat(deps.WebDir); err == nil && info.IsDir() {
			r.With(middleware.Compress(5)).Handle("/*", http.FileServer(http.Dir(deps.WebDir)))
		}
	}

	r.Group(func(r chi.Router) {
		if deps.Metrics != nil || deps.Tracer != nil {
			r.Use(middleware.NewHTTPMetrics(deps.Tracer, deps.Metrics, logger).Handler)
		}
		r.Use(middleware.StructuredLogger(logger))
		r.Use(middleware.Recoverer(logger))
		r.Use(middleware.SecurityHeaders)
		if cfg.Security.EnableCORS {
			r.Use(middleware.CORS(middleware.CORSConfig{
				AllowedOrigins:   cfg.Security.AllowedOrigins,
				ExposedHeaders:   []string{"X-Request-ID"},
				AllowCredentials: true,
			}))
		}
		if cfg.Security.RateLimit.Enabled {
			r.Use(middleware.NewRateLimiter(
				cfg.Security.RateLimit.RPS,
				cfg.Security.RateLimit.Burst,
				logger,
			).Handler)
		}

		healthHandler := NewHealthHandler(deps.NormalizedDir, logger)
		r.Get("/healthz", healthHandler.Healthz)
		r.Get("/readyz", healthHandler.Readyz)

		errorHandler := apierrors.NewErrorHandler(logger, cfg.Logging.Development)
		dataHandler := NewDataHandler(deps.Store, logger, errorHandler)
		operationsHandler := NewOperationsHandler(deps.Operations, logger, errorHandler)
		clientLogHandler := NewClientLogHandler(logger)

		r.Route("/api", func(r chi.Router) {
			r.Use(render.SetContentType(render.ContentTypeJSON))

			r.Group(func(r chi.Router) {
				r.Use(middleware.Timeout(cfg.Server.ReadTimeout))
				r.Mount("/datasets", dataHandler.Routes())
				r.Get("/qa/unmapped", dataHandler.GetUnmapped)
				r.Post("/logs", clientLogHandler.Handle)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.Timeout(cfg.Server.OperationTimeout))
				r.Mount("/operations", operationsHandler.Routes())
			})
		})
	})

	return r
}
