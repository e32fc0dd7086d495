package exporter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// WriteOptions configures one CSV file write.
type WriteOptions struct {
	Headers []string
	Records [][]string
	// BOMPrefix writes a UTF-8 BOM so Excel recognizes the encoding.
	BOMPrefix bool
}

// WriteCSV writes the report as a directory of CSV files plus a plain-text
// summary, returning the paths written.
func WriteCSV(dir string, r *Report) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create report directory: %w", err)
	}

	var written []string

	summaryPath := filepath.Join(dir, "summary.txt")
	if err := os.WriteFile(summaryPath, []byte(summaryText(r)), 0644); err != nil {
		return nil, fmt.Errorf("write summary: %w", err)
	}
	written = append(written, summaryPath)

	profilePath := filepath.Join(dir, "profiles.csv")
	if err := writeCSVFile(profilePath, WriteOptions{
		Headers:   []string{"Column", "Count", "Mean", "Median", "StdDev", "Min", "Max", "IQR"},
		Records:   profileRecords(r),
		BOMPrefix: true,
	}); err != nil {
		return nil, fmt.Errorf("write profiles: %w", err)
	}
	written = append(written, profilePath)

	if len(r.Concentration) > 0 {
		curvePath := filepath.Join(dir, "concentration.csv")
		if err := writeCSVFile(curvePath, WriteOptions{
			Headers:   []string{"X", "Concentration"},
			Records:   concentrationRecords(r),
			BOMPrefix: true,
		}); err != nil {
			return nil, fmt.Errorf("write concentration curve: %w", err)
		}
		written = append(written, curvePath)
	}

	if r.Samples != nil {
		samplesPath := filepath.Join(dir, "samples.csv")
		if err := writeCSVFile(samplesPath, WriteOptions{
			Headers:   sampleHeaders(r),
			Records:   sampleRecords(r),
			BOMPrefix: true,
		}); err != nil {
			return nil, fmt.Errorf("write samples: %w", err)
		}
		written = append(written, samplesPath)
	}

	return written, nil
}

// writeCSVFile writes one CSV file, creating parent directories as needed.
func writeCSVFile(path string, options WriteOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer file.Close()

	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}
	return writer.Error()
}

func summaryText(r *Report) string {
	return fmt.Sprintf("Run:       %s\nGenerated: %s\n\n%s",
		r.RunID, r.GeneratedAt.Format(time.RFC3339), r.Summary.String())
}

func profileRecords(r *Report) [][]string {
	records := make([][]string, len(r.Profiles))
	for i, p := range r.Profiles {
		records[i] = []string{
			p.Name,
			strconv.Itoa(p.Count),
			formatFloat(p.Mean),
			formatFloat(p.Median),
			formatFloat(p.StdDev),
			formatFloat(p.Min),
			formatFloat(p.Max),
			formatFloat(p.IQR),
		}
	}
	return records
}

func concentrationRecords(r *Report) [][]string {
	records := make([][]string, len(r.Concentration))
	for i, p := range r.Concentration {
		records[i] = []string{formatFloat(p.X), formatFloat(p.Value)}
	}
	return records
}

func sampleHeaders(r *Report) []string {
	_, d := r.Samples.Dims()
	headers := make([]string, d)
	for j := range headers {
		headers[j] = fmt.Sprintf("u%d", j+1)
	}
	return headers
}

func sampleRecords(r *Report) [][]string {
	n, d := r.Samples.Dims()
	records := make([][]string, n)
	for i := range records {
		row := make([]string, d)
		for j := range row {
			row[j] = formatFloat(r.Samples.At(i, j))
		}
		records[i] = row
	}
	return records
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 8, 64)
}
