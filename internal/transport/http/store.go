package http

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/zazu-22/ff-data-analytics-sub000/internal/errors"
	"github.com/zazu-22/ff-data-analytics-sub000/internal/exporter"
)

// Sentinel errors the handlers map to API problem responses.
var (
	ErrNoSnapshot     = errors.New("no exported snapshot available")
	ErrUnknownDataset = errors.New("unknown dataset")
)

// DatasetRows is one dataset snapshot rendered for API clients. Rows are
// keyed by the CSV header so the payload tracks the export format without
// a parallel set of response types.
type DatasetRows struct {
	Name         string              `json:"name"`
	SnapshotDate string              `json:"snapshot_date"`
	Headers      []string            `json:"headers"`
	Rows         []map[string]string `json:"rows"`
}

// UnmappedReport pairs the two QA datasets for the review endpoint.
type UnmappedReport struct {
	SnapshotDate string              `json:"snapshot_date"`
	Players      []map[string]string `json:"players"`
	Picks        []map[string]string `json:"picks"`
}

// SnapshotStore reads exported datasets from the normalized output
// directory. The manifest written by the exporter is the source of truth
// for what a snapshot contains.
type SnapshotStore struct {
	baseDir string
	logger  *slog.Logger
}

// NewSnapshotStore creates a store over the given export root.
func NewSnapshotStore(baseDir string, logger *slog.Logger) *SnapshotStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotStore{
		baseDir: baseDir,
		logger:  logger.With(slog.String("component", "snapshot_store")),
	}
}

// Manifest reads the latest run manifest. Returns ErrNoSnapshot when no
// export has completed yet.
func (s *SnapshotStore) Manifest(ctx context.Context) (*exporter.Manifest, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, "manifest.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSnapshot
		}
		return nil, apperrors.NewStorageError("failed to read export manifest", err)
	}

	var manifest exporter.Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, apperrors.NewParsingError("export manifest is not valid JSON", err)
	}
	return &manifest, nil
}

// DatasetRows loads one dataset from the latest snapshot.
func (s *SnapshotStore) DatasetRows(ctx context.Context, name string) (*DatasetRows, error) {
	manifest, err := s.Manifest(ctx)
	if err != nil {
		return nil, err
	}

	info, ok := manifest.Datasets[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownDataset)
	}

	headers, rows, err := s.readCSV(filepath.Join(s.baseDir, info.Path))
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "dataset loaded",
		slog.String("dataset", name),
		slog.String("snapshot_date", manifest.SnapshotDate),
		slog.Int("rows", len(rows)))

	return &DatasetRows{
		Name:         name,
		SnapshotDate: manifest.SnapshotDate,
		Headers:      headers,
		Rows:         rows,
	}, nil
}

// Unmapped loads both QA datasets from the latest snapshot.
func (s *SnapshotStore) Unmapped(ctx context.Context) (*UnmappedReport, error) {
	players, err := s.DatasetRows(ctx, exporter.DatasetUnmappedPlayers)
	if err != nil {
		return nil, err
	}
	picks, err := s.DatasetRows(ctx, exporter.DatasetUnmappedPicks)
	if err != nil {
		return nil, err
	}

	return &UnmappedReport{
		SnapshotDate: players.SnapshotDate,
		Players:      players.Rows,
		Picks:        picks.Rows,
	}, nil
}

func (s *SnapshotStore) readCSV(path string) ([]string, []map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, apperrors.NewNotFoundError(fmt.Sprintf("dataset file %s", filepath.Base(path)))
		}
		return nil, nil, apperrors.NewStorageError("failed to open dataset file", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, apperrors.NewParsingError(fmt.Sprintf("failed to parse dataset file %s", filepath.Base(path)), err)
	}
	if len(records) == 0 {
		return nil, []map[string]string{}, nil
	}

	headers := records[0]
	// Dataset files carry a UTF-8 BOM for Excel; it must not leak into
	// the first header key.
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}
	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(record) {
				row[header] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}
