package exporter

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
)

// WriteXLSX renders the report as a multi-sheet Excel workbook.
func WriteXLSX(path string, r *Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}
	if err := writeSummarySheet(f, r); err != nil {
		return err
	}
	if err := writeProfileSheet(f, r); err != nil {
		return err
	}
	if len(r.Concentration) > 0 {
		if err := writeConcentrationSheet(f, r); err != nil {
			return err
		}
	}
	if r.Samples != nil {
		if err := writeSamplesSheet(f, r); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, r *Report) error {
	rows := [][]any{
		{"Run", r.RunID},
		{"Generated", r.GeneratedAt.Format(time.RFC3339)},
		{"Family", r.Summary.Name},
		{"Dimension", r.Summary.Dim},
		{"State", r.Summary.State.String()},
		{"Parameters", formatVector(r.Summary.Params)},
	}
	if s := r.Summary.Stats; s != nil {
		rows = append(rows,
			[]any{"Method", s.Method.String()},
			[]any{"Observations", s.Observations},
			[]any{"LogLik", s.LogLik},
			[]any{"AIC", s.AIC()},
			[]any{"BIC", s.BIC()},
		)
		if s.StdErrs != nil {
			rows = append(rows, []any{"StdErrs", formatVector(s.StdErrs)})
		}
	}
	return writeSheetRows(f, "Summary", nil, rows)
}

func writeProfileSheet(f *excelize.File, r *Report) error {
	if _, err := f.NewSheet("Profiles"); err != nil {
		return fmt.Errorf("create profiles sheet: %w", err)
	}
	headers := []any{"Column", "Count", "Mean", "Median", "StdDev", "Min", "Max", "IQR"}
	rows := make([][]any, len(r.Profiles))
	for i, p := range r.Profiles {
		rows[i] = []any{p.Name, p.Count, p.Mean, p.Median, p.StdDev, p.Min, p.Max, p.IQR}
	}
	return writeSheetRows(f, "Profiles", headers, rows)
}

func writeConcentrationSheet(f *excelize.File, r *Report) error {
	if _, err := f.NewSheet("Concentration"); err != nil {
		return fmt.Errorf("create concentration sheet: %w", err)
	}
	rows := make([][]any, len(r.Concentration))
	for i, p := range r.Concentration {
		rows[i] = []any{p.X, p.Value}
	}
	return writeSheetRows(f, "Concentration", []any{"X", "Concentration"}, rows)
}

func writeSamplesSheet(f *excelize.File, r *Report) error {
	if _, err := f.NewSheet("Samples"); err != nil {
		return fmt.Errorf("create samples sheet: %w", err)
	}
	n, d := r.Samples.Dims()
	headers := make([]any, d)
	for j := range headers {
		headers[j] = fmt.Sprintf("u%d", j+1)
	}
	rows := make([][]any, n)
	for i := range rows {
		row := make([]any, d)
		for j := range row {
			row[j] = r.Samples.At(i, j)
		}
		rows[i] = row
	}
	return writeSheetRows(f, "Samples", headers, rows)
}

// writeSheetRows writes an optional header row followed by data rows,
// starting at A1.
func writeSheetRows(f *excelize.File, sheet string, headers []any, rows [][]any) error {
	rowNum := 1
	if headers != nil {
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &headers); err != nil {
			return fmt.Errorf("write %s headers: %w", sheet, err)
		}
		rowNum++
	}
	for _, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, rowNum, err)
		}
		rowNum++
	}
	return nil
}

func formatVector(v []float64) string {
	if len(v) == 0 {
		return "(none)"
	}
	s := ""
	for i, x := range v {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%.6f", x)
	}
	return "[" + s + "]"
}
