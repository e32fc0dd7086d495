package copula

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"
)

// Gaussian is the copula of a multivariate normal distribution. Its
// parameters are the d*(d-1)/2 pairwise correlations in row-major upper
// triangle order: (0,1), (0,2), ..., (d-2,d-1). The correlation matrix
// they form must be positive definite.
type Gaussian struct {
	dim   int
	rho   []float64
	sigma *mat.SymDense
	chol  mat.Cholesky
}

// NewGaussian builds a Gaussian copula of the given dimension with all
// correlations zero.
func NewGaussian(dim int) (*Gaussian, error) {
	if dim < 2 {
		return nil, &ValidationError{Field: "dim", Message: "copula dimension must be at least 2", Value: dim}
	}
	g := &Gaussian{dim: dim}
	if err := g.SetParams(make([]float64, dim*(dim-1)/2)); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Gaussian) Name() string { return "Gaussian" }

func (g *Gaussian) Dim() int { return g.dim }

func (g *Gaussian) Params() []float64 {
	out := make([]float64, len(g.rho))
	copy(out, g.rho)
	return out
}

// SetParams validates the correlation vector, rebuilds the correlation
// matrix, and refreshes its Cholesky factorization.
func (g *Gaussian) SetParams(params []float64) error {
	want := g.dim * (g.dim - 1) / 2
	if len(params) != want {
		return &ValidationError{
			Field:   "rho",
			Message: "correlation vector length does not match the number of variable pairs",
			Value:   len(params),
		}
	}
	for _, r := range params {
		if math.IsNaN(r) || r <= -1 || r >= 1 {
			return &ValidationError{Field: "rho", Message: "pairwise correlations must lie strictly between -1 and 1", Value: r}
		}
	}
	sigma := sigmaFromRho(g.dim, params)
	var chol mat.Cholesky
	if !chol.Factorize(sigma) {
		return &ValidationError{Field: "rho", Message: "correlation matrix is not positive definite", Value: params}
	}
	g.rho = make([]float64, want)
	copy(g.rho, params)
	g.sigma = sigma
	g.chol = chol
	return nil
}

// CDF evaluates the copula distribution function. Above two dimensions no
// stable quadrature is available and a NotImplementedError is returned.
func (g *Gaussian) CDF(u []float64) (float64, error) {
	if g.dim != 2 {
		return math.NaN(), notImplemented(g.Name(), "distribution function above two dimensions")
	}
	if u[0] <= 0 || u[1] <= 0 {
		return 0, nil
	}
	if u[0] >= 1 {
		return u[1], nil
	}
	if u[1] >= 1 {
		return u[0], nil
	}
	x := distuv.UnitNormal.Quantile(u[0])
	y := distuv.UnitNormal.Quantile(u[1])
	return bivariateNormalCDF(x, y, g.rho[0]), nil
}

// LogPDF evaluates the log-density
// -0.5*logdet(R) - 0.5*q'(R^-1 - I)q with q the normal scores of u.
func (g *Gaussian) LogPDF(u []float64) (float64, error) {
	q := make([]float64, g.dim)
	for i, v := range u {
		if v <= 0 || v >= 1 {
			return math.Inf(-1), nil
		}
		q[i] = distuv.UnitNormal.Quantile(v)
	}
	qv := mat.NewVecDense(g.dim, q)
	var solved mat.VecDense
	if err := g.chol.SolveVecTo(&solved, qv); err != nil {
		return math.NaN(), &ValidationError{Field: "rho", Message: "correlation matrix is numerically singular", Value: g.Params()}
	}
	qForm := mat.Dot(qv, &solved)
	qq := mat.Dot(qv, qv)
	return -0.5*g.chol.LogDet() - 0.5*(qForm-qq), nil
}

// Sample draws n rows by transforming multivariate normal draws through
// the standard normal CDF.
func (g *Gaussian) Sample(n int, src rand.Source) *mat.Dense {
	rr := newRand(src)
	norm, ok := distmv.NewNormal(make([]float64, g.dim), g.sigma, rr)
	if !ok {
		// SetParams guarantees positive definiteness.
		panic("copula: correlation matrix lost positive definiteness")
	}
	out := mat.NewDense(n, g.dim, nil)
	x := make([]float64, g.dim)
	for i := 0; i < n; i++ {
		norm.Rand(x)
		for j := 0; j < g.dim; j++ {
			out.Set(i, j, distuv.UnitNormal.CDF(x[j]))
		}
	}
	return out
}

// StartParams maps pairwise sample taus through sin(pi*tau/2) and shrinks
// the result toward zero until the implied matrix is positive definite.
func (g *Gaussian) StartParams(u mat.Matrix) []float64 {
	taus := pairwiseTau(u)
	rho := make([]float64, len(taus))
	for i, t := range taus {
		r := math.Sin(math.Pi * t / 2)
		rho[i] = clampInterior(r, -1, 1)
	}
	for iter := 0; iter < 32; iter++ {
		var chol mat.Cholesky
		if chol.Factorize(sigmaFromRho(g.dim, rho)) {
			break
		}
		for i := range rho {
			rho[i] *= 0.9
		}
	}
	return rho
}

// Bounds reports the open box (-1, 1) per correlation.
func (g *Gaussian) Bounds() (lower, upper []float64) {
	k := g.dim * (g.dim - 1) / 2
	lower = make([]float64, k)
	upper = make([]float64, k)
	for i := 0; i < k; i++ {
		lower[i] = -1 + 1e-6
		upper[i] = 1 - 1e-6
	}
	return lower, upper
}

// Tau returns 2/pi*asin(rho) per pair.
func (g *Gaussian) Tau() []float64 {
	out := make([]float64, len(g.rho))
	for i, r := range g.rho {
		out[i] = 2 / math.Pi * math.Asin(r)
	}
	return out
}

// ITau inverts Kendall's tau via rho = sin(pi*tau/2).
func (g *Gaussian) ITau(taus []float64) []float64 {
	out := make([]float64, len(taus))
	for i, t := range taus {
		out[i] = math.Sin(math.Pi * t / 2)
	}
	return out
}

// DTau returns dtau/drho = 2/(pi*sqrt(1-rho^2)) at the given correlations,
// or at the current ones when at is nil.
func (g *Gaussian) DTau(at []float64) []float64 {
	if at == nil {
		at = g.rho
	}
	out := make([]float64, len(at))
	for i, r := range at {
		out[i] = 2 / (math.Pi * math.Sqrt(1-r*r))
	}
	return out
}

// Rho returns 6/pi*asin(rho/2) per pair.
func (g *Gaussian) Rho() []float64 {
	out := make([]float64, len(g.rho))
	for i, r := range g.rho {
		out[i] = 6 / math.Pi * math.Asin(r/2)
	}
	return out
}

// IRho inverts Spearman's rho via rho = 2*sin(pi*rho_s/6).
func (g *Gaussian) IRho(rhos []float64) []float64 {
	out := make([]float64, len(rhos))
	for i, r := range rhos {
		out[i] = 2 * math.Sin(math.Pi*r/6)
	}
	return out
}

// DRho returns drho_s/drho = 6/(pi*sqrt(4-rho^2)) at the given
// correlations, or at the current ones when at is nil.
func (g *Gaussian) DRho(at []float64) []float64 {
	if at == nil {
		at = g.rho
	}
	out := make([]float64, len(at))
	for i, r := range at {
		out[i] = 6 / (math.Pi * math.Sqrt(4-r*r))
	}
	return out
}

// TailDependence reports zero in both tails for every pair; the Gaussian
// copula is asymptotically independent.
func (g *Gaussian) TailDependence() TailDependence {
	k := len(g.rho)
	return TailDependence{Lower: make([]float64, k), Upper: make([]float64, k)}
}

// sigmaFromRho assembles a correlation matrix from upper-triangle pairs.
func sigmaFromRho(dim int, rho []float64) *mat.SymDense {
	s := mat.NewSymDense(dim, nil)
	for i := 0; i < dim; i++ {
		s.SetSym(i, i, 1)
	}
	k := 0
	for i := 0; i < dim; i++ {
		for j := i + 1; j < dim; j++ {
			s.SetSym(i, j, rho[k])
			k++
		}
	}
	return s
}
