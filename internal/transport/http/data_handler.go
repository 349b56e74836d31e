package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "github.com/zazu-22/ff-data-analytics-sub000/internal/errors"
	"github.com/zazu-22/ff-data-analytics-sub000/internal/exporter"
	"github.com/zazu-22/ff-data-analytics-sub000/internal/middleware"
)

// SnapshotReader is the read surface the dataset endpoints serve from.
type SnapshotReader interface {
	Manifest(ctx context.Context) (*exporter.Manifest, error)
	DatasetRows(ctx context.Context, name string) (*DatasetRows, error)
	Unmapped(ctx context.Context) (*UnmappedReport, error)
}

// DatasetSummary is one manifest entry in the dataset listing.
type DatasetSummary struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
	Path string `json:"path"`
}

// DataHandler serves the exported snapshot datasets.
type DataHandler struct {
	store        SnapshotReader
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDataHandler creates a data handler over the given snapshot reader.
func NewDataHandler(store SnapshotReader, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DataHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataHandler{
		store:        store,
		logger:       logger.With(slog.String("handler", "data")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dataset routes, mounted under /api/datasets.
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/", h.ListDatasets)
	r.Get("/{name}", h.GetDataset)
	return r
}

// ListDatasets handles GET /api/datasets.
func (h *DataHandler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	manifest, err := h.store.Manifest(ctx)
	if err != nil {
		h.respondError(w, r, err, "failed to list datasets")
		return
	}

	// Manifest order is map order; present datasets in export order.
	datasets := make([]DatasetSummary, 0, len(exporter.DatasetNames))
	for _, name := range exporter.DatasetNames {
		if info, ok := manifest.Datasets[name]; ok {
			datasets = append(datasets, DatasetSummary{Name: name, Rows: info.Rows, Path: info.Path})
		}
	}

	render.JSON(w, r, map[string]interface{}{
		"status":        "success",
		"snapshot_date": manifest.SnapshotDate,
		"generated_at":  manifest.GeneratedAt,
		"data":          datasets,
		"count":         len(datasets),
	})
}

// GetDataset handles GET /api/datasets/{name}.
func (h *DataHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "name")

	h.logger.InfoContext(ctx, "fetching dataset",
		slog.String("request_id", middleware.GetRequestID(ctx)),
		slog.String("dataset", name))

	rows, err := h.store.DatasetRows(ctx, name)
	if err != nil {
		h.respondError(w, r, err, "failed to load dataset")
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   rows,
		"count":  len(rows.Rows),
	})
}

// GetUnmapped handles GET /api/qa/unmapped.
func (h *DataHandler) GetUnmapped(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	report, err := h.store.Unmapped(ctx)
	if err != nil {
		h.respondError(w, r, err, "failed to load unmapped assets")
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   report,
		"count":  len(report.Players) + len(report.Picks),
	})
}

func (h *DataHandler) respondError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	h.logger.ErrorContext(r.Context(), msg,
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetRequestID(r.Context())))

	switch {
	case errors.Is(err, ErrNoSnapshot):
		h.errorHandler.HandleError(w, r, apierrors.ErrSnapshotNotFound)
	case errors.Is(err, ErrUnknownDataset):
		h.errorHandler.HandleError(w, r, apierrors.ErrDatasetNotFound)
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}
