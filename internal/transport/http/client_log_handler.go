package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	apierrors "github.com/zazu-22/ff-data-analytics-sub000/internal/errors"
)

// ClientLogHandler forwards browser console entries from the review UI
// into the server log, so QA sessions leave one merged trail.
type ClientLogHandler struct {
	logger *slog.Logger
}

// NewClientLogHandler creates a client log handler.
func NewClientLogHandler(logger *slog.Logger) *ClientLogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClientLogHandler{
		logger: logger.With(slog.String("handler", "client_log")),
	}
}

// ClientLogRequest is one forwarded log entry.
type ClientLogRequest struct {
	Level   string                 `json:"level"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Source  string                 `json:"source,omitempty"`
}

// Handle processes POST /api/logs.
func (h *ClientLogHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req ClientLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.WriteError(w, apierrors.InvalidRequestWithError(err))
		return
	}
	if req.Message == "" {
		apierrors.WriteError(w, apierrors.ErrValidation("message", "log message is required"))
		return
	}

	level := slog.LevelInfo
	switch req.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	attrs := []slog.Attr{slog.String("client_source", req.Source)}
	if req.Data != nil {
		attrs = append(attrs, slog.Any("data", req.Data))
	}
	h.logger.LogAttrs(r.Context(), level, req.Message, attrs...)

	render.JSON(w, r, map[string]interface{}{"status": "success"})
}
