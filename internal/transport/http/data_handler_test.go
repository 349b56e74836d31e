package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "github.com/zazu-22/ff-data-analytics-sub000/internal/errors"
	"github.com/zazu-22/ff-data-analytics-sub000/internal/exporter"
)

// MockSnapshotReader is a mock implementation of SnapshotReader.
type MockSnapshotReader struct {
	mock.Mock
}

func (m *MockSnapshotReader) Manifest(ctx context.Context) (*exporter.Manifest, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*exporter.Manifest), args.Error(1)
}

func (m *MockSnapshotReader) DatasetRows(ctx context.Context, name string) (*DatasetRows, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*DatasetRows), args.Error(1)
}

func (m *MockSnapshotReader) Unmapped(ctx context.Context) (*UnmappedReport, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*UnmappedReport), args.Error(1)
}

func newTestDataHandler(store SnapshotReader) *DataHandler {
	logger := discardLogger()
	return NewDataHandler(store, logger, apierrors.NewErrorHandler(logger, false))
}

func TestDataHandlerListDatasets(t *testing.T) {
	store := new(MockSnapshotReader)
	store.On("Manifest").Return(&exporter.Manifest{
		SnapshotDate: "2025-08-24",
		GeneratedAt:  time.Date(2025, 8, 24, 12, 0, 0, 0, time.UTC),
		Datasets: map[string]exporter.DatasetInfo{
			exporter.DatasetIdentities:   {Rows: 412, Path: "player_identities/dt=2025-08-24/player_identities.csv"},
			exporter.DatasetTransactions: {Rows: 187, Path: "transactions/dt=2025-08-24/transactions.csv"},
		},
	}, nil)

	rec := httptest.NewRecorder()
	newTestDataHandler(store).Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status       string           `json:"status"`
		SnapshotDate string           `json:"snapshot_date"`
		Data         []DatasetSummary `json:"data"`
		Count        int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "2025-08-24", resp.SnapshotDate)
	assert.Equal(t, 2, resp.Count)
	// Export order, not map order.
	require.Len(t, resp.Data, 2)
	assert.Equal(t, exporter.DatasetTransactions, resp.Data[0].Name)
	assert.Equal(t, 187, resp.Data[0].Rows)
	assert.Equal(t, exporter.DatasetIdentities, resp.Data[1].Name)

	store.AssertExpectations(t)
}

func TestDataHandlerListDatasetsNoSnapshot(t *testing.T) {
	store := new(MockSnapshotReader)
	store.On("Manifest").Return(nil, ErrNoSnapshot)

	rec := httptest.NewRecorder()
	newTestDataHandler(store).Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "/errors/dataset/no-snapshot")
	assert.Contains(t, rec.Body.String(), "SNAPSHOT_NOT_FOUND")
}

func TestDataHandlerGetDataset(t *testing.T) {
	store := new(MockSnapshotReader)
	store.On("DatasetRows", exporter.DatasetTransactions).Return(&DatasetRows{
		Name:         exporter.DatasetTransactions,
		SnapshotDate: "2025-08-24",
		Headers:      []string{"transaction_id", "subject_name"},
		Rows: []map[string]string{
			{"transaction_id": "T001", "subject_name": "Josh Allen"},
		},
	}, nil)

	rec := httptest.NewRecorder()
	newTestDataHandler(store).Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/transactions", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Josh Allen")
	assert.Contains(t, rec.Body.String(), `"count":1`)

	store.AssertExpectations(t)
}

func TestDataHandlerGetDatasetUnknown(t *testing.T) {
	store := new(MockSnapshotReader)
	store.On("DatasetRows", "salary_cap").Return(nil, fmt.Errorf("%q: %w", "salary_cap", ErrUnknownDataset))

	rec := httptest.NewRecorder()
	newTestDataHandler(store).Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/salary_cap", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "DATASET_NOT_FOUND")
}

func TestDataHandlerGetUnmapped(t *testing.T) {
	store := new(MockSnapshotReader)
	store.On("Unmapped").Return(&UnmappedReport{
		SnapshotDate: "2025-08-24",
		Players: []map[string]string{
			{"subject_name": "Mystery Player", "transaction_id": "T002"},
		},
		Picks: []map[string]string{},
	}, nil)

	r := chi.NewRouter()
	r.Get("/qa/unmapped", newTestDataHandler(store).GetUnmapped)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/qa/unmapped", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Mystery Player")
	assert.Contains(t, rec.Body.String(), `"count":1`)
}

func TestDataHandlerStoreFailure(t *testing.T) {
	store := new(MockSnapshotReader)
	store.On("Manifest").Return(nil, apierrors.NewStorageError("failed to read export manifest", fmt.Errorf("disk gone")))

	rec := httptest.NewRecorder()
	newTestDataHandler(store).Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "/errors/internal")
}
