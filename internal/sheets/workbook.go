package sheets

import (
	"github.com/xuri/excelize/v2"

	apperrors "github.com/zazu-22/ff-data-analytics-sub000/internal/errors"
)

// LoadWorkbook reads every tab of an Excel workbook into raw grids,
// preserving workbook tab order. Commissioners often hand the league
// sheet around as an .xlsx export, so this path must accept whatever
// Sheets produces on download.
func LoadWorkbook(path string) ([]TabGrid, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open workbook", err).
			WithContext("path", path)
	}
	defer f.Close()

	var grids []TabGrid
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, apperrors.NewParsingError("failed to read workbook tab", err).
				WithContext("tab", name)
		}
		grids = append(grids, TabGrid{Name: name, Rows: rows})
	}
	return grids, nil
}
