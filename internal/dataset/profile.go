package dataset

import (
	"fmt"

	"github.com/montanaflynn/stats"
)

// ColumnProfile summarizes one variable of a Table.
type ColumnProfile struct {
	Name   string
	Count  int
	Mean   float64
	Median float64
	StdDev float64
	Min    float64
	Max    float64
	IQR    float64
}

// Profile computes descriptive statistics for every column of the table.
func Profile(t *Table) ([]ColumnProfile, error) {
	profiles := make([]ColumnProfile, t.Cols())
	for j := range profiles {
		p, err := profileColumn(t.Columns[j], t.Column(j))
		if err != nil {
			return nil, fmt.Errorf("profile column %q: %w", t.Columns[j], err)
		}
		profiles[j] = p
	}
	return profiles, nil
}

func profileColumn(name string, column []float64) (ColumnProfile, error) {
	data := stats.Float64Data(column)

	p := ColumnProfile{Name: name, Count: len(column)}
	var err error
	if p.Mean, err = data.Mean(); err != nil {
		return ColumnProfile{}, err
	}
	if p.Median, err = data.Median(); err != nil {
		return ColumnProfile{}, err
	}
	if p.StdDev, err = data.StandardDeviationSample(); err != nil {
		// A single observation has no sample deviation; report zero.
		p.StdDev = 0
	}
	if p.Min, err = data.Min(); err != nil {
		return ColumnProfile{}, err
	}
	if p.Max, err = data.Max(); err != nil {
		return ColumnProfile{}, err
	}
	if p.IQR, err = data.InterQuartileRange(); err != nil {
		p.IQR = 0
	}
	return p, nil
}
