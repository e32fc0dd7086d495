package dataset

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// LoadXLSX reads a numeric table from an Excel workbook. When sheet is
// empty the first sheet containing parseable numeric rows is used; header
// detection and tolerant parsing follow LoadCSV.
func LoadXLSX(path, sheet string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet != "" {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		return buildTable(fmt.Sprintf("%s[%s]", path, sheet), rows)
	}

	// No sheet named: take the first one that yields a table.
	var lastErr error
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			lastErr = err
			continue
		}
		table, err := buildTable(fmt.Sprintf("%s[%s]", path, name), rows)
		if err != nil {
			lastErr = err
			continue
		}
		return table, nil
	}
	if lastErr != nil {
		return nil, fmt.Errorf("no usable sheet in %s: %w", path, lastErr)
	}
	return nil, fmt.Errorf("workbook %s has no sheets", path)
}
