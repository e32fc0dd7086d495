package copula

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// claytonIndepEps is the parameter magnitude below which the Clayton
// copula is treated as independence to avoid degenerate powers.
const claytonIndepEps = 6.06e-6

// Clayton is the Clayton Archimedean copula with generator
// (t^-theta - 1)/theta. It captures lower tail dependence for theta > 0.
// Negative dependence (theta in [-1, 0)) is only defined in two dimensions.
type Clayton struct {
	theta float64
	dim   int
}

// NewClayton builds a Clayton copula of the given dimension. The parameter
// must be at least -1 in two dimensions and non-negative above that.
func NewClayton(theta float64, dim int) (*Clayton, error) {
	if dim < 2 {
		return nil, &ValidationError{Field: "dim", Message: "copula dimension must be at least 2", Value: dim}
	}
	c := &Clayton{dim: dim}
	if err := c.SetParams([]float64{theta}); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Clayton) Name() string { return "Clayton" }

func (c *Clayton) Dim() int { return c.dim }

func (c *Clayton) Params() []float64 { return []float64{c.theta} }

// SetParams validates and replaces the dependence parameter.
func (c *Clayton) SetParams(params []float64) error {
	if len(params) != 1 {
		return &ValidationError{Field: "theta", Message: "Clayton copula takes exactly one parameter", Value: len(params)}
	}
	th := params[0]
	if math.IsNaN(th) || math.IsInf(th, 0) {
		return &ValidationError{Field: "theta", Message: "theta must be finite", Value: th}
	}
	if c.dim == 2 && th < -1 {
		return &ValidationError{Field: "theta", Message: "theta must be at least -1 for a bivariate Clayton copula", Value: th}
	}
	if c.dim > 2 && th < 0 {
		return &ValidationError{Field: "theta", Message: "theta cannot be negative when the dimension exceeds 2", Value: th}
	}
	c.theta = th
	return nil
}

// CDF evaluates (sum u_i^-theta - d + 1)^(-1/theta), clamped to zero where
// the generator sum leaves the copula's support.
func (c *Clayton) CDF(u []float64) (float64, error) {
	th := c.theta
	if math.Abs(th) < claytonIndepEps {
		p := 1.0
		for _, v := range u {
			p *= v
		}
		return p, nil
	}
	s := 0.0
	for _, v := range u {
		s += math.Pow(v, -th)
	}
	base := s - float64(len(u)) + 1
	if base <= 0 {
		return 0, nil
	}
	return math.Pow(base, -1/th), nil
}

// LogPDF evaluates the log-density. The density vanishes on the lower
// boundary and, for negative theta, outside the support of the generator.
func (c *Clayton) LogPDF(u []float64) (float64, error) {
	th := c.theta
	d := float64(len(u))
	if math.Abs(th) < claytonIndepEps {
		return 0, nil
	}
	sgn := 1.0
	if th < 0 {
		sgn = -1
	}
	lu, t := 0.0, 0.0
	for _, v := range u {
		if v <= 0 {
			return math.Inf(-1), nil
		}
		lu += math.Log(v)
		t += sgn * (math.Pow(v, -th) - 1)
	}
	if th < 0 {
		if t >= 1 {
			return math.Inf(-1), nil
		}
		return math.Log1p(th) - (1+th)*lu - (d+1/th)*math.Log1p(-t), nil
	}
	p := 0.0
	for j := 1; j < len(u); j++ {
		p += math.Log1p(th * float64(j))
	}
	return p - (1+th)*lu - (d+1/th)*math.Log1p(t), nil
}

// Sample draws n rows. Bivariate draws use the conditional inverse; higher
// dimensions use the gamma frailty representation.
func (c *Clayton) Sample(n int, src rand.Source) *mat.Dense {
	rr := newRand(src)
	out := mat.NewDense(n, c.dim, nil)
	th := c.theta
	switch {
	case math.Abs(th) < claytonIndepEps:
		for i := 0; i < n; i++ {
			for j := 0; j < c.dim; j++ {
				out.Set(i, j, rr.Float64())
			}
		}
	case c.dim == 2:
		for i := 0; i < n; i++ {
			u := rr.Float64()
			w := rr.Float64()
			var v float64
			if th == -1 {
				// Countermonotone limit.
				v = 1 - u
			} else {
				v = math.Pow(math.Pow(u, -th)*(math.Pow(w, -th/(th+1))-1)+1, -1/th)
			}
			out.Set(i, 0, u)
			out.Set(i, 1, v)
		}
	default:
		gamma := distuv.Gamma{Alpha: 1 / th, Beta: 1, Src: rr}
		for i := 0; i < n; i++ {
			g := gamma.Rand()
			for j := 0; j < c.dim; j++ {
				e := -math.Log(rr.Float64())
				out.Set(i, j, math.Pow(1+e/g, -1/th))
			}
		}
	}
	return out
}

// StartParams inverts the mean pairwise sample tau for a starting guess.
func (c *Clayton) StartParams(u mat.Matrix) []float64 {
	t := meanOf(pairwiseTau(u))
	if t > 0.95 {
		t = 0.95
	}
	lo, hi := c.Bounds()
	return []float64{clampInterior(2*t/(1-t), lo[0], hi[0])}
}

// Bounds reports the parameter box searched during likelihood fitting.
func (c *Clayton) Bounds() (lower, upper []float64) {
	if c.dim == 2 {
		return []float64{-1 + 1e-6}, []float64{math.Inf(1)}
	}
	return []float64{0}, []float64{math.Inf(1)}
}

// Tau returns theta/(theta+2).
func (c *Clayton) Tau() []float64 {
	return []float64{c.theta / (c.theta + 2)}
}

// ITau inverts Kendall's tau via theta = 2*tau/(1-tau).
func (c *Clayton) ITau(taus []float64) []float64 {
	out := make([]float64, len(taus))
	for i, t := range taus {
		out[i] = 2 * t / (1 - t)
	}
	return out
}

// DTau returns dtau/dtheta = 2/(theta+2)^2 at the given parameters, or at
// the current parameter when at is nil.
func (c *Clayton) DTau(at []float64) []float64 {
	if at == nil {
		at = []float64{c.theta}
	}
	out := make([]float64, len(at))
	for i, th := range at {
		out[i] = 2 / ((th + 2) * (th + 2))
	}
	return out
}

// TailDependence reports lower tail dependence 2^(-1/theta) for positive
// theta. The Clayton copula has no upper tail dependence.
func (c *Clayton) TailDependence() TailDependence {
	lower := 0.0
	if c.theta > 0 {
		lower = math.Pow(2, -1/c.theta)
	}
	return TailDependence{Lower: []float64{lower}, Upper: []float64{0}}
}
