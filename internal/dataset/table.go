package dataset

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Table is a named numeric observation matrix: one row per observation,
// one column per variable.
type Table struct {
	Columns []string
	Data    *mat.Dense
}

// Rows returns the number of observations.
func (t *Table) Rows() int {
	r, _ := t.Data.Dims()
	return r
}

// Cols returns the number of variables.
func (t *Table) Cols() int {
	_, c := t.Data.Dims()
	return c
}

// Column returns a copy of column j.
func (t *Table) Column(j int) []float64 {
	out := make([]float64, t.Rows())
	mat.Col(out, j, t.Data)
	return out
}

// LoadCSV reads a numeric table from a CSV file. A leading header row is
// detected by attempting to parse it as numbers; rows that fail numeric
// parsing are skipped rather than failing the whole load.
func LoadCSV(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV file %s: %w", path, err)
	}

	return buildTable(path, records)
}

// buildTable turns raw string records into a Table, shared by the CSV and
// Excel loaders.
func buildTable(source string, records [][]string) (*Table, error) {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		if !isBlankRow(record) {
			rows = append(rows, record)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data rows in %s", source)
	}

	columns, dataRows := splitHeader(rows)
	if len(dataRows) == 0 {
		return nil, fmt.Errorf("no numeric rows in %s", source)
	}

	width := len(columns)
	parsed := make([]float64, 0, len(dataRows)*width)
	kept, skipped := 0, 0
	for _, record := range dataRows {
		values, ok := parseRow(record, width)
		if !ok {
			skipped++
			continue
		}
		parsed = append(parsed, values...)
		kept++
	}
	if kept == 0 {
		return nil, fmt.Errorf("no parseable numeric rows in %s", source)
	}
	if skipped > 0 {
		slog.Warn("skipped unparseable rows",
			slog.String("source", source),
			slog.Int("skipped", skipped),
			slog.Int("kept", kept))
	}

	return &Table{
		Columns: columns,
		Data:    mat.NewDense(kept, width, parsed),
	}, nil
}

// splitHeader decides whether the first row is a header. A row where any
// cell fails numeric parsing is treated as the header; otherwise columns
// get positional names.
func splitHeader(rows [][]string) ([]string, [][]string) {
	first := rows[0]
	if _, ok := parseRow(first, len(first)); !ok {
		header := make([]string, len(first))
		for i, cell := range first {
			name := strings.TrimSpace(cell)
			if name == "" {
				name = fmt.Sprintf("col%d", i+1)
			}
			header[i] = name
		}
		return header, rows[1:]
	}

	header := make([]string, len(first))
	for i := range first {
		header[i] = fmt.Sprintf("col%d", i+1)
	}
	return header, rows
}

// parseRow parses a record of exactly width numeric cells.
func parseRow(record []string, width int) ([]float64, bool) {
	if len(record) != width {
		return nil, false
	}
	values := make([]float64, width)
	for i, cell := range record {
		v, err := parseNumber(cell)
		if err != nil {
			return nil, false
		}
		values[i] = v
	}
	return values, true
}

// parseNumber parses a numeric cell, tolerating surrounding whitespace and
// thousands separators.
func parseNumber(cell string) (float64, error) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, fmt.Errorf("empty cell")
	}
	s = strings.ReplaceAll(s, ",", "")
	return strconv.ParseFloat(s, 64)
}

func isBlankRow(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
