package copula

import (
	"log/slog"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// Family is a parametric copula family. Implementations evaluate the copula
// on single points of the unit hypercube; the Copula wrapper layers domain
// checking, vectorization, fitting, and state tracking on top.
//
// CDF and LogPDF may assume coordinates lie in [0,1]. Params returns a copy
// of the parameter vector; SetParams validates and replaces it atomically,
// returning a ValidationError for values outside the family's parameter
// space. Sample draws n rows from the copula using src, or an unseeded
// source when src is nil. StartParams derives a starting guess for
// likelihood optimization from pseudo-observations, and Bounds reports the
// box the optimizer should search.
type Family interface {
	Name() string
	Dim() int
	Params() []float64
	SetParams(params []float64) error
	CDF(u []float64) (float64, error)
	LogPDF(u []float64) (float64, error)
	Sample(n int, src rand.Source) *mat.Dense
	StartParams(u mat.Matrix) []float64
	Bounds() (lower, upper []float64)
}

// TailDependent is implemented by families with known tail dependence
// coefficients.
type TailDependent interface {
	TailDependence() TailDependence
}

// TauMeasurer is implemented by families that relate their parameters to
// Kendall's tau in closed or invertible form.
type TauMeasurer interface {
	// Tau returns Kendall's tau implied by the current parameters.
	Tau() []float64
	// ITau inverts tau values into parameter values.
	ITau(taus []float64) []float64
	// DTau returns the derivative of tau with respect to each parameter,
	// evaluated at "at", or at the current parameters when at is nil.
	DTau(at []float64) []float64
}

// RhoMeasurer is implemented by families that relate their parameters to
// Spearman's rho in closed or invertible form.
type RhoMeasurer interface {
	Rho() []float64
	IRho(rhos []float64) []float64
	DRho(at []float64) []float64
}

// Copula wraps a Family with data validation, fitting, sampling, and
// dependence diagnostics. Construct with New.
type Copula struct {
	family    Family
	estimator Estimator
	log       *slog.Logger
	state     State
	stats     *FitStats
}

// Option configures a Copula at construction time.
type Option func(*Copula)

// WithLogger sets the structured logger used by Fit and the estimator.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Copula) {
		if logger != nil {
			c.log = logger
		}
	}
}

// WithEstimator replaces the default estimation strategy.
func WithEstimator(est Estimator) Option {
	return func(c *Copula) {
		if est != nil {
			c.estimator = est
		}
	}
}

// New wraps a family in an unfitted model.
func New(f Family, opts ...Option) *Copula {
	c := &Copula{
		family: f,
		log:    slog.Default(),
		state:  StateUnfitted,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.estimator == nil {
		c.estimator = NewDefaultEstimator(c.log)
	}
	return c
}

// Name returns the family name, such as "Clayton".
func (c *Copula) Name() string { return c.family.Name() }

// Dim returns the number of variables the copula couples.
func (c *Copula) Dim() int { return c.family.Dim() }

// Params returns a copy of the current parameter vector.
func (c *Copula) Params() []float64 { return c.family.Params() }

// SetParams replaces the parameter vector after validation. Setting
// parameters directly does not change the fit state.
func (c *Copula) SetParams(params []float64) error {
	return c.family.SetParams(params)
}

// Family exposes the wrapped family, for capability inspection.
func (c *Copula) Family() Family { return c.family }

// CDF evaluates the copula distribution function at each row of u. Rows
// must lie in the unit hypercube; coordinates outside [0,1] produce a
// DomainError. With takeLog the natural logarithm of each value is
// returned.
func (c *Copula) CDF(u mat.Matrix, takeLog bool) ([]float64, error) {
	rows, err := c.checkData("cdf", u)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(rows))
	for i, row := range rows {
		v, err := c.family.CDF(row)
		if err != nil {
			return nil, err
		}
		if takeLog {
			v = math.Log(v)
		}
		out[i] = v
	}
	return out, nil
}

// CDFAt evaluates the copula distribution function at a single point.
func (c *Copula) CDFAt(u []float64, takeLog bool) (float64, error) {
	if err := c.checkPoint("cdf", u); err != nil {
		return math.NaN(), err
	}
	v, err := c.family.CDF(u)
	if err != nil {
		return math.NaN(), err
	}
	if takeLog {
		v = math.Log(v)
	}
	return v, nil
}

// PDF evaluates the copula density at each row of u, applying the same
// domain rules as CDF. With takeLog the log-density is returned, which is
// the numerically stable form for likelihood work.
func (c *Copula) PDF(u mat.Matrix, takeLog bool) ([]float64, error) {
	rows, err := c.checkData("pdf", u)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(rows))
	for i, row := range rows {
		lp, err := c.family.LogPDF(row)
		if err != nil {
			return nil, err
		}
		if takeLog {
			out[i] = lp
		} else {
			out[i] = math.Exp(lp)
		}
	}
	return out, nil
}

// PDFAt evaluates the copula density at a single point.
func (c *Copula) PDFAt(u []float64, takeLog bool) (float64, error) {
	if err := c.checkPoint("pdf", u); err != nil {
		return math.NaN(), err
	}
	lp, err := c.family.LogPDF(u)
	if err != nil {
		return math.NaN(), err
	}
	if takeLog {
		return lp, nil
	}
	return math.Exp(lp), nil
}

// LogLik returns the log-likelihood of data under the current parameters,
// the sum of log-densities over all rows. The data must already live on
// [0,1]^d; apply Pobs first for raw observations.
func (c *Copula) LogLik(data mat.Matrix) (float64, error) {
	vals, err := c.PDF(data, true)
	if err != nil {
		return math.NaN(), err
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum, nil
}

// Tau returns Kendall's tau implied by the current parameters, or a
// NotImplementedError when the family has no tau relation.
func (c *Copula) Tau() ([]float64, error) {
	m, ok := c.family.(TauMeasurer)
	if !ok {
		return nil, notImplemented(c.Name(), "Kendall's tau")
	}
	return m.Tau(), nil
}

// ITau inverts Kendall's tau values into parameter values.
func (c *Copula) ITau(taus []float64) ([]float64, error) {
	m, ok := c.family.(TauMeasurer)
	if !ok {
		return nil, notImplemented(c.Name(), "Kendall's tau inversion")
	}
	return m.ITau(taus), nil
}

// DTau returns the derivative of Kendall's tau with respect to each
// parameter at "at", or at the current parameters when at is nil.
func (c *Copula) DTau(at []float64) ([]float64, error) {
	m, ok := c.family.(TauMeasurer)
	if !ok {
		return nil, notImplemented(c.Name(), "Kendall's tau derivative")
	}
	return m.DTau(at), nil
}

// Rho returns Spearman's rho implied by the current parameters, or a
// NotImplementedError when the family has no rho relation.
func (c *Copula) Rho() ([]float64, error) {
	m, ok := c.family.(RhoMeasurer)
	if !ok {
		return nil, notImplemented(c.Name(), "Spearman's rho")
	}
	return m.Rho(), nil
}

// IRho inverts Spearman's rho values into parameter values.
func (c *Copula) IRho(rhos []float64) ([]float64, error) {
	m, ok := c.family.(RhoMeasurer)
	if !ok {
		return nil, notImplemented(c.Name(), "Spearman's rho inversion")
	}
	return m.IRho(rhos), nil
}

// DRho returns the derivative of Spearman's rho with respect to each
// parameter at "at", or at the current parameters when at is nil.
func (c *Copula) DRho(at []float64) ([]float64, error) {
	m, ok := c.family.(RhoMeasurer)
	if !ok {
		return nil, notImplemented(c.Name(), "Spearman's rho derivative")
	}
	return m.DRho(at), nil
}

// TailDependence returns the lower and upper tail dependence coefficients,
// or a NotImplementedError when the family does not expose them.
func (c *Copula) TailDependence() (TailDependence, error) {
	td, ok := c.family.(TailDependent)
	if !ok {
		return TailDependence{}, notImplemented(c.Name(), "tail dependence")
	}
	return td.TailDependence(), nil
}

// ConcentrationDown measures lower-tail concentration at x, defined as
// C(x,...,x)/x. The domain is [0, 0.5]; values outside it produce a
// DomainError.
func (c *Copula) ConcentrationDown(x float64) (float64, error) {
	if x < 0 || x > 0.5 || math.IsNaN(x) {
		return math.NaN(), &DomainError{Op: "concentration_down", Value: x, Min: 0, Max: 0.5}
	}
	v, err := c.cdfDiagonal(x)
	if err != nil {
		return math.NaN(), err
	}
	return v / x, nil
}

// ConcentrationUp measures upper-tail concentration at x, defined as
// (1 - 2x + C(x,...,x))/(1 - x). The domain is [0.5, 1]; values outside it
// produce a DomainError.
func (c *Copula) ConcentrationUp(x float64) (float64, error) {
	if x < 0.5 || x > 1 || math.IsNaN(x) {
		return math.NaN(), &DomainError{Op: "concentration_up", Value: x, Min: 0.5, Max: 1}
	}
	v, err := c.cdfDiagonal(x)
	if err != nil {
		return math.NaN(), err
	}
	return (1 - 2*x + v) / (1 - x), nil
}

// Concentration evaluates the tail concentration function at x on [0,1]:
// the lower measure below 0.5 and the upper measure from 0.5 up. The
// midpoint belongs to the upper branch.
func (c *Copula) Concentration(x float64) (float64, error) {
	if x < 0 || x > 1 || math.IsNaN(x) {
		return math.NaN(), &DomainError{Op: "concentration", Value: x, Min: 0, Max: 1}
	}
	if x < 0.5 {
		return c.ConcentrationDown(x)
	}
	return c.ConcentrationUp(x)
}

// Random draws n rows from the fitted copula. It returns a
// PreconditionError until Fit has succeeded. Pass a seeded src for
// reproducible draws, or nil for a nondeterministic source.
func (c *Copula) Random(n int, src rand.Source) (*mat.Dense, error) {
	if err := c.requireFitted("random"); err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, &ValidationError{Field: "n", Message: "number of draws must be positive", Value: n}
	}
	return c.family.Sample(n, src), nil
}

// cdfDiagonal evaluates C(x,...,x).
func (c *Copula) cdfDiagonal(x float64) (float64, error) {
	diag := make([]float64, c.Dim())
	for i := range diag {
		diag[i] = x
	}
	return c.family.CDF(diag)
}

// checkPoint validates a single evaluation point against the model
// dimension and the unit hypercube.
func (c *Copula) checkPoint(op string, u []float64) error {
	if len(u) != c.Dim() {
		return &ValidationError{
			Field:   "data",
			Message: "point dimension does not match copula dimension",
			Value:   len(u),
		}
	}
	for _, v := range u {
		if v < 0 || v > 1 || math.IsNaN(v) {
			return &DomainError{Op: op, Value: v, Min: 0, Max: 1}
		}
	}
	return nil
}

// checkData validates a matrix of evaluation points and materializes its
// rows.
func (c *Copula) checkData(op string, u mat.Matrix) ([][]float64, error) {
	n, d := u.Dims()
	if d != c.Dim() {
		return nil, &ValidationError{
			Field:   "data",
			Message: "data width does not match copula dimension",
			Value:   d,
		}
	}
	rows := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, d)
		mat.Row(row, i, u)
		for _, v := range row {
			if v < 0 || v > 1 || math.IsNaN(v) {
				return nil, &DomainError{Op: op, Value: v, Min: 0, Max: 1}
			}
		}
		rows[i] = row
	}
	return rows, nil
}

// newRand adapts an optional source into a usable generator. A nil src
// yields an unseeded generator.
func newRand(src rand.Source) *rand.Rand {
	if src == nil {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(src)
}
