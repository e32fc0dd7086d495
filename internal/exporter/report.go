package exporter

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"copulakit/internal/copula"
	"copulakit/internal/dataset"
)

// ConcentrationPoint is one sample of the tail concentration function.
type ConcentrationPoint struct {
	X     float64
	Value float64
}

// Report collects the artifacts of one estimation run.
type Report struct {
	RunID       string
	GeneratedAt time.Time
	Summary     copula.Summary
	Profiles    []dataset.ColumnProfile
	// Concentration is nil for models whose CDF has no closed form.
	Concentration []ConcentrationPoint
	// Samples holds simulated draws, nil when simulation was not requested.
	Samples *mat.Dense
}

// NewReport assembles a report from a fitted model. curvePoints controls
// how densely the concentration function is sampled; models without a
// usable CDF simply omit the curve.
func NewReport(runID string, model *copula.Copula, profiles []dataset.ColumnProfile, curvePoints int) *Report {
	return &Report{
		RunID:         runID,
		GeneratedAt:   time.Now(),
		Summary:       model.Summary(),
		Profiles:      profiles,
		Concentration: concentrationCurve(model, curvePoints),
	}
}

// concentrationCurve samples the concentration function on an interior
// grid of (0,1). The endpoints are excluded: down(x) divides by x and
// up(x) by 1-x.
func concentrationCurve(model *copula.Copula, points int) []ConcentrationPoint {
	if points < 2 {
		return nil
	}
	curve := make([]ConcentrationPoint, 0, points)
	for i := 1; i <= points; i++ {
		x := float64(i) / float64(points+1)
		v, err := model.Concentration(x)
		if err != nil {
			return nil
		}
		curve = append(curve, ConcentrationPoint{X: x, Value: v})
	}
	return curve
}
