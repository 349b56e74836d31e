package sheets

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperrors "github.com/zazu-22/ff-data-analytics-sub000/internal/errors"
)

// LoadCSVDir reads every .csv file in a directory as one tab each, the
// tab name being the file name without its extension. Files load in
// sorted name order so runs are reproducible.
func LoadCSVDir(dir string) ([]TabGrid, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read csv directory", err).
			WithContext("dir", dir)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	grids := make([]TabGrid, 0, len(names))
	for _, name := range names {
		rows, err := readCSVFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		grids = append(grids, TabGrid{
			Name: strings.TrimSuffix(name, filepath.Ext(name)),
			Rows: rows,
		})
	}
	return grids, nil
}

// LoadCSVFile reads a single CSV file as one tab named after the file.
func LoadCSVFile(path string) (TabGrid, error) {
	rows, err := readCSVFile(path)
	if err != nil {
		return TabGrid{}, err
	}
	name := filepath.Base(path)
	return TabGrid{
		Name: strings.TrimSuffix(name, filepath.Ext(name)),
		Rows: rows,
	}, nil
}

func readCSVFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open csv file", err).
			WithContext("path", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	// Sheet exports have ragged rows; let each record keep its own width.
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError("failed to parse csv file", err).
			WithContext("path", path)
	}
	// Exports written for Excel carry a UTF-8 BOM; it would otherwise
	// corrupt the first header label.
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}
