package sheets

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zazu-22/ff-data-analytics-sub000/internal/config"
	apperrors "github.com/zazu-22/ff-data-analytics-sub000/internal/errors"
)

func TestCellString(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"string", "Josh Allen", "Josh Allen"},
		{"integer float", float64(42), "42"},
		{"fractional float", 1.5, "1.5"},
		{"bool", true, "true"},
		{"nil", nil, ""},
		{"fallback", 7, "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cellString(tt.value))
		})
	}
}

func TestNewGoogleClient_MissingSpreadsheetID(t *testing.T) {
	_, err := NewGoogleClient(context.Background(), config.SheetsConfig{APIKey: "key"}, nil)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrTypeConfig, appErr.Type)
}

func TestNewGoogleClient_MissingAuth(t *testing.T) {
	_, err := NewGoogleClient(context.Background(), config.SheetsConfig{SpreadsheetID: "sheet-1"}, nil)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrTypeConfig, appErr.Type)
}

func TestNewGoogleClient_APIKey(t *testing.T) {
	client, err := NewGoogleClient(context.Background(), config.SheetsConfig{
		SpreadsheetID: "sheet-1",
		APIKey:        "test-key",
		RatePerSecond: 1,
		Burst:         1,
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.NotNil(t, client.limiter)
}
