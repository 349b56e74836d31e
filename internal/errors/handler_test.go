package errors

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHandler() *ErrorHandler {
	return NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), false)
}

func TestErrorToProblemTimeout(t *testing.T) {
	h := testHandler()
	r := httptest.NewRequest(http.MethodGet, "/api/datasets/roster", nil)

	problem := h.ErrorToProblem(context.DeadlineExceeded, r)

	assert.Equal(t, http.StatusGatewayTimeout, problem.Status)
	assert.Equal(t, TypeTimeout, problem.Type)
}

func TestErrorToProblemAPIError(t *testing.T) {
	h := testHandler()
	r := httptest.NewRequest(http.MethodGet, "/api/datasets/bogus", nil)

	problem := h.ErrorToProblem(ErrDatasetNotFound, r)

	assert.Equal(t, http.StatusNotFound, problem.Status)
	assert.Equal(t, TypeDatasetNotFound, problem.Type)
	assert.Equal(t, "DATASET_NOT_FOUND", problem.Extensions["error_code"])
	assert.Equal(t, "/api/datasets/bogus", problem.Instance)
}

func TestErrorToProblemAppError(t *testing.T) {
	h := testHandler()
	r := httptest.NewRequest(http.MethodPost, "/api/operations", nil)

	tests := []struct {
		name           string
		err            *AppError
		expectedStatus int
		expectedType   string
	}{
		{"validation", NewValidationError("bad source"), http.StatusBadRequest, TypeValidation},
		{"not found", NewNotFoundError("snapshot"), http.StatusNotFound, TypeNotFound},
		{"parsing", NewParsingError("bad grid", nil), http.StatusUnprocessableEntity, TypeParseFailed},
		{"authority", NewAuthorityError("missing reference"), http.StatusInternalServerError, TypeAuthorityMissing},
		{"network", NewNetworkError("sheets unreachable", nil), http.StatusBadGateway, TypeServiceDown},
		{"storage", NewStorageError("disk", nil), http.StatusInternalServerError, TypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problem := h.ErrorToProblem(tt.err, r)
			assert.Equal(t, tt.expectedStatus, problem.Status)
			assert.Equal(t, tt.expectedType, problem.Type)
			assert.Equal(t, string(tt.err.Type), problem.Extensions["error_type"])
		})
	}
}

func TestErrorToProblemWrappedAppError(t *testing.T) {
	h := testHandler()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	wrapped := NewParsingError("ledger grid", errors.New("no header"))
	problem := h.ErrorToProblem(wrapped, r)

	assert.Equal(t, http.StatusUnprocessableEntity, problem.Status)
}

func TestErrorToProblemUnknownError(t *testing.T) {
	h := testHandler()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	problem := h.ErrorToProblem(errors.New("mystery"), r)

	assert.Equal(t, http.StatusInternalServerError, problem.Status)
	assert.Equal(t, TypeInternal, problem.Type)
}

func TestHandleErrorWritesProblemJSON(t *testing.T) {
	h := testHandler()
	r := httptest.NewRequest(http.MethodGet, "/api/datasets/roster", nil)
	rec := httptest.NewRecorder()

	h.HandleError(rec, r, ErrSnapshotNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, TypeSnapshotNotFound, body["type"])
	assert.Contains(t, body, "trace_id")
}

func TestHandleErrorNilIsNoop(t *testing.T) {
	h := testHandler()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	h.HandleError(rec, r, nil)

	assert.Empty(t, rec.Body.String())
}

func TestProblemDetailsMarshalIncludesExtensions(t *testing.T) {
	problem := NewProblemDetails(http.StatusConflict, TypeOperationRunning, "Conflict", "already running", "/api/operations").
		WithExtension("operation_id", "op-1")

	data, err := json.Marshal(problem)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "op-1", decoded["operation_id"])
	assert.Equal(t, float64(http.StatusConflict), decoded["status"])
}

func TestHandlePanic(t *testing.T) {
	h := testHandler()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	h.HandlePanic(rec, r, "boom")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, TypeInternal, body["type"])
}
