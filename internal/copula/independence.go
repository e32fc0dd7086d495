package copula

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// Independence is the product copula C(u) = u_1 * ... * u_d. It has no
// parameters and serves as the null model in comparisons.
type Independence struct {
	dim int
}

// NewIndependence builds an independence copula of the given dimension.
func NewIndependence(dim int) (*Independence, error) {
	if dim < 2 {
		return nil, &ValidationError{Field: "dim", Message: "copula dimension must be at least 2", Value: dim}
	}
	return &Independence{dim: dim}, nil
}

func (ic *Independence) Name() string { return "Independence" }

func (ic *Independence) Dim() int { return ic.dim }

func (ic *Independence) Params() []float64 { return []float64{} }

func (ic *Independence) SetParams(params []float64) error {
	if len(params) != 0 {
		return &ValidationError{Field: "params", Message: "independence copula has no parameters", Value: len(params)}
	}
	return nil
}

func (ic *Independence) CDF(u []float64) (float64, error) {
	p := 1.0
	for _, v := range u {
		p *= v
	}
	return p, nil
}

func (ic *Independence) LogPDF(u []float64) (float64, error) {
	return 0, nil
}

func (ic *Independence) Sample(n int, src rand.Source) *mat.Dense {
	rr := newRand(src)
	out := mat.NewDense(n, ic.dim, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < ic.dim; j++ {
			out.Set(i, j, rr.Float64())
		}
	}
	return out
}

func (ic *Independence) StartParams(u mat.Matrix) []float64 { return []float64{} }

func (ic *Independence) Bounds() (lower, upper []float64) {
	return []float64{}, []float64{}
}

// Tau is zero for every pair, reported as an empty vector to match the
// empty parameter vector.
func (ic *Independence) Tau() []float64 { return []float64{} }

func (ic *Independence) ITau(taus []float64) []float64 { return []float64{} }

func (ic *Independence) DTau(at []float64) []float64 { return []float64{} }

func (ic *Independence) Rho() []float64 { return []float64{} }

func (ic *Independence) IRho(rhos []float64) []float64 { return []float64{} }

func (ic *Independence) DRho(at []float64) []float64 { return []float64{} }

// TailDependence reports zero in both tails.
func (ic *Independence) TailDependence() TailDependence {
	return TailDependence{Lower: []float64{0}, Upper: []float64{0}}
}
