package http

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/render"

	"github.com/zazu-22/ff-data-analytics-sub000/internal/infrastructure"
)

// HealthHandler answers liveness and readiness probes.
type HealthHandler struct {
	normalizedDir string
	startTime     time.Time
	logger        *slog.Logger
}

// NewHealthHandler creates a health handler. Readiness checks the
// normalized output directory the server serves from.
func NewHealthHandler(normalizedDir string, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{
		normalizedDir: normalizedDir,
		startTime:     time.Now(),
		logger:        logger.With(slog.String("handler", "health")),
	}
}

// Healthz handles GET /healthz.
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status":  "ok",
		"service": infrastructure.ServiceName,
		"version": infrastructure.ServiceVersion,
		"uptime":  time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Readyz handles GET /readyz. The server is ready when its output
// directory is reachable; a missing snapshot is reported but does not
// fail readiness, since an ingest run can be triggered to produce one.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	if _, err := os.Stat(h.normalizedDir); err != nil {
		h.logger.ErrorContext(r.Context(), "normalized data directory unavailable",
			slog.String("dir", h.normalizedDir),
			slog.String("error", err.Error()))
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, map[string]interface{}{
			"status": "unavailable",
			"reason": "normalized data directory is not accessible",
		})
		return
	}

	_, err := os.Stat(filepath.Join(h.normalizedDir, "manifest.json"))
	render.JSON(w, r, map[string]interface{}{
		"status":             "ready",
		"snapshot_available": err == nil,
	})
}
