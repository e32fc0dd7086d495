package copula

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/mat"
)

const (
	// frankSmallTheta is the magnitude below which Frank formulas switch
	// to their independence-limit expansions.
	frankSmallTheta = 1e-5
	// frankCalMax bounds the parameter search during tau and rho
	// inversion. Tau at the bound is above 0.92, beyond any realistic
	// rank correlation.
	frankCalMax = 50.0
)

// Frank is the bivariate Frank Archimedean copula. It is radially
// symmetric, covers the full range of negative and positive dependence,
// and has no tail dependence.
type Frank struct {
	theta float64
}

// NewFrank builds a bivariate Frank copula. Any finite parameter is valid;
// zero is the independence copula.
func NewFrank(theta float64) (*Frank, error) {
	f := &Frank{}
	if err := f.SetParams([]float64{theta}); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Frank) Name() string { return "Frank" }

func (f *Frank) Dim() int { return 2 }

func (f *Frank) Params() []float64 { return []float64{f.theta} }

func (f *Frank) SetParams(params []float64) error {
	if len(params) != 1 {
		return &ValidationError{Field: "theta", Message: "Frank copula takes exactly one parameter", Value: len(params)}
	}
	th := params[0]
	if math.IsNaN(th) || math.IsInf(th, 0) {
		return &ValidationError{Field: "theta", Message: "theta must be finite", Value: th}
	}
	f.theta = th
	return nil
}

// CDF evaluates -log(1 + em(u)em(v)/em(1))/theta with em(x) = exp(-theta*x) - 1.
func (f *Frank) CDF(u []float64) (float64, error) {
	th := f.theta
	if math.Abs(th) < frankSmallTheta {
		return u[0] * u[1], nil
	}
	num := math.Expm1(-th*u[0]) * math.Expm1(-th*u[1])
	return -math.Log1p(num/math.Expm1(-th)) / th, nil
}

// LogPDF evaluates the log-density
// log|theta*em(1)| - theta*(u+v) - 2*log|em(1) + em(u)em(v)|.
func (f *Frank) LogPDF(u []float64) (float64, error) {
	th := f.theta
	if math.Abs(th) < frankSmallTheta {
		return 0, nil
	}
	emU := math.Expm1(-th * u[0])
	emV := math.Expm1(-th * u[1])
	logA := math.Log(math.Abs(th)) + frankLogAbsEm1(th)
	den := math.Expm1(-th) + emU*emV
	return logA - th*(u[0]+u[1]) - 2*math.Log(math.Abs(den)), nil
}

// frankLogAbsEm1 returns log|exp(-theta) - 1| without overflowing for
// large negative theta.
func frankLogAbsEm1(th float64) float64 {
	x := math.Abs(th)
	l := math.Log(-math.Expm1(-x))
	if th < 0 {
		l += x
	}
	return l
}

// Sample draws n rows via the conditional distribution inverse.
func (f *Frank) Sample(n int, src rand.Source) *mat.Dense {
	rr := newRand(src)
	out := mat.NewDense(n, 2, nil)
	th := f.theta
	for i := 0; i < n; i++ {
		u := rr.Float64()
		w := rr.Float64()
		v := w
		if math.Abs(th) >= frankSmallTheta {
			v = -math.Log1p(w*math.Expm1(-th)/(w+(1-w)*math.Exp(-th*u))) / th
		}
		out.Set(i, 0, u)
		out.Set(i, 1, v)
	}
	return out
}

// StartParams inverts the sample tau for a starting guess.
func (f *Frank) StartParams(u mat.Matrix) []float64 {
	th := f.ITau([]float64{meanOf(pairwiseTau(u))})[0]
	lo, hi := f.Bounds()
	return []float64{clampInterior(th, lo[0], hi[0])}
}

// Bounds reports the parameter box searched during likelihood fitting.
func (f *Frank) Bounds() (lower, upper []float64) {
	return []float64{-35}, []float64{35}
}

// Tau returns 1 - 4/theta*(1 - D1(theta)) where D1 is the first Debye
// function.
func (f *Frank) Tau() []float64 {
	return []float64{frankTau(f.theta)}
}

// ITau inverts Kendall's tau by bisection over the monotone tau map.
func (f *Frank) ITau(taus []float64) []float64 {
	out := make([]float64, len(taus))
	for i, t := range taus {
		out[i] = frankInvert(frankTau, t)
	}
	return out
}

// DTau differentiates the tau map numerically at the given parameters, or
// at the current parameter when at is nil.
func (f *Frank) DTau(at []float64) []float64 {
	if at == nil {
		at = []float64{f.theta}
	}
	out := make([]float64, len(at))
	for i, th := range at {
		out[i] = fd.Derivative(frankTau, th, nil)
	}
	return out
}

// Rho returns 1 - 12/theta*(D1(theta) - D2(theta)).
func (f *Frank) Rho() []float64 {
	return []float64{frankRho(f.theta)}
}

// IRho inverts Spearman's rho by bisection over the monotone rho map.
func (f *Frank) IRho(rhos []float64) []float64 {
	out := make([]float64, len(rhos))
	for i, r := range rhos {
		out[i] = frankInvert(frankRho, r)
	}
	return out
}

// DRho differentiates the rho map numerically at the given parameters, or
// at the current parameter when at is nil.
func (f *Frank) DRho(at []float64) []float64 {
	if at == nil {
		at = []float64{f.theta}
	}
	out := make([]float64, len(at))
	for i, th := range at {
		out[i] = fd.Derivative(frankRho, th, nil)
	}
	return out
}

// TailDependence reports zero in both tails.
func (f *Frank) TailDependence() TailDependence {
	return TailDependence{Lower: []float64{0}, Upper: []float64{0}}
}

func frankTau(th float64) float64 {
	if math.Abs(th) < frankSmallTheta {
		return th / 9
	}
	return 1 - 4/th*(1-debye(1, th))
}

func frankRho(th float64) float64 {
	if math.Abs(th) < frankSmallTheta {
		return th / 6
	}
	return 1 - 12/th*(debye(1, th)-debye(2, th))
}

// debye evaluates the Debye function D_n(x) = n/x^n * int_0^x t^n/(e^t-1) dt,
// extended to negative arguments by D_n(-x) = D_n(x) + n*x/(n+1).
func debye(n int, x float64) float64 {
	if x == 0 {
		return 1
	}
	ax := math.Abs(x)
	fn := float64(n)
	integrand := func(t float64) float64 {
		return math.Pow(t, fn) / math.Expm1(t)
	}
	d := fn / math.Pow(ax, fn) * quad.Fixed(integrand, 0, ax, 128, nil, 0)
	if x < 0 {
		d += fn * ax / (fn + 1)
	}
	return d
}

// frankInvert solves measure(theta) = target by bisection. The measure
// maps are strictly increasing in theta; targets beyond the searchable
// range clamp to the boundary.
func frankInvert(measure func(float64) float64, target float64) float64 {
	lo, hi := -frankCalMax, frankCalMax
	if target <= measure(lo) {
		return lo
	}
	if target >= measure(hi) {
		return hi
	}
	for i := 0; i < 200 && hi-lo > 1e-12; i++ {
		mid := (lo + hi) / 2
		if measure(mid) < target {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}
