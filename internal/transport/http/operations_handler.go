package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "github.com/zazu-22/ff-data-analytics-sub000/internal/errors"
	"github.com/zazu-22/ff-data-analytics-sub000/internal/middleware"
	"github.com/zazu-22/ff-data-analytics-sub000/internal/operations"
)

// OperationService is the slice of the run manager the HTTP surface needs.
type OperationService interface {
	Start(id string) (*operations.State, error)
	Get(id string) (*operations.State, bool)
	List() []*operations.State
	Active() string
}

// OperationsHandler triggers and reports ingest runs.
type OperationsHandler struct {
	service      OperationService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewOperationsHandler creates an operations handler over the run manager.
func NewOperationsHandler(service OperationService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *OperationsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OperationsHandler{
		service:      service,
		logger:       logger.With(slog.String("handler", "operations")),
		errorHandler: errorHandler,
	}
}

// StartOperationRequest is the optional POST body. Omitting the ID lets
// the manager assign one.
type StartOperationRequest struct {
	ID string `json:"id,omitempty"`
}

// Bind implements render.Binder.
func (req *StartOperationRequest) Bind(_ *http.Request) error {
	if strings.ContainsAny(req.ID, " \t\n") {
		return errors.New("operation id must not contain whitespace")
	}
	return nil
}

// Routes returns the operation routes, mounted under /api/operations.
func (h *OperationsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Post("/", h.StartOperation)
	r.Get("/", h.ListOperations)
	r.Get("/{id}", h.GetOperation)
	return r
}

// StartOperation handles POST /api/operations. The run executes in the
// background; clients follow progress via GET or the WebSocket feed.
func (h *OperationsHandler) StartOperation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middleware.GetRequestID(ctx)

	data := &StartOperationRequest{}
	if r.ContentLength != 0 {
		if err := render.Bind(r, data); err != nil {
			h.logger.WarnContext(ctx, "invalid operation request",
				slog.String("error", err.Error()),
				slog.String("request_id", reqID))
			h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
			return
		}
	}

	state, err := h.service.Start(data.ID)
	if err != nil {
		if errors.Is(err, operations.ErrAlreadyRunning) {
			h.logger.WarnContext(ctx, "rejected concurrent ingest run",
				slog.String("active_operation", h.service.Active()),
				slog.String("request_id", reqID))
			h.errorHandler.HandleError(w, r, apierrors.ErrOperationRunning)
			return
		}
		h.logger.ErrorContext(ctx, "failed to start ingest run",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "ingest run accepted",
		slog.String("operation_id", state.ID()),
		slog.String("request_id", reqID))

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, map[string]interface{}{
		"status":    "accepted",
		"operation": state.Snapshot(),
	})
}

// GetOperation handles GET /api/operations/{id}.
func (h *OperationsHandler) GetOperation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	state, ok := h.service.Get(id)
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrOperationNotFound)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":    "success",
		"operation": state.Snapshot(),
	})
}

// ListOperations handles GET /api/operations.
func (h *OperationsHandler) ListOperations(w http.ResponseWriter, r *http.Request) {
	states := h.service.List()
	snapshots := make([]operations.OperationSnapshot, 0, len(states))
	for _, state := range states {
		snapshots = append(snapshots, state.Snapshot())
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   snapshots,
		"count":  len(snapshots),
		"active": h.service.Active(),
	})
}
