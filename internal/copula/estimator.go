package copula

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"golang.org/x/time/rate"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

// DefaultEstimator implements pseudo-maximum-likelihood fitting via
// Nelder-Mead with multiple starting points, plus calibration by inversion
// of Kendall's tau or Spearman's rho.
type DefaultEstimator struct {
	log *slog.Logger
}

// NewDefaultEstimator builds the standard estimator. A nil logger falls
// back to slog.Default.
func NewDefaultEstimator(logger *slog.Logger) *DefaultEstimator {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultEstimator{log: logger}
}

// Estimate dispatches to the configured estimation method.
func (e *DefaultEstimator) Estimate(ctx context.Context, family Family, u *mat.Dense, cfg FitConfig) (*FitStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch cfg.Method {
	case MethodMPL:
		return e.estimateMPL(ctx, family, u, cfg)
	case MethodITau, MethodIRho:
		return e.estimateInversion(family, u, cfg)
	default:
		return nil, &ValidationError{
			Field:   "method",
			Message: fmt.Sprintf("unknown estimation method %q (valid: mpl, itau, irho)", string(cfg.Method)),
			Value:   string(cfg.Method),
		}
	}
}

// estimateMPL maximizes the pseudo log-likelihood over the family's
// parameter box. The initial guess is perturbed into several starting
// points; the best converged optimum wins.
func (e *DefaultEstimator) estimateMPL(ctx context.Context, family Family, u *mat.Dense, cfg FitConfig) (*FitStats, error) {
	n, _ := u.Dims()
	k := len(family.Params())
	if k == 0 {
		return e.parameterFreeStats(family, u, MethodMPL)
	}

	x0 := cfg.X0
	if x0 == nil {
		x0 = family.StartParams(u)
	}
	if len(x0) != k {
		return nil, &EstimationError{
			Method:  MethodMPL,
			Message: fmt.Sprintf("starting guess has %d parameters, want %d", len(x0), k),
		}
	}

	obj := func(x []float64) float64 {
		if err := family.SetParams(x); err != nil {
			return math.Inf(1)
		}
		ll, err := familyLogLik(family, u)
		if err != nil || math.IsNaN(ll) {
			return math.Inf(1)
		}
		return -ll
	}
	problem := optimize.Problem{Func: obj}
	settings := &optimize.Settings{
		Converger: &optimize.FunctionConverge{
			Absolute:   cfg.Optim.Tolerance,
			Iterations: 50,
		},
		MajorIterations: cfg.Optim.MaxIterations,
		FuncEvaluations: cfg.Optim.MaxFuncEvals,
	}
	if cfg.Verbose >= 2 {
		settings.Recorder = newProgressRecorder(e.log)
	}

	lo, hi := family.Bounds()
	starts := buildStarts(x0, lo, hi, cfg.Optim.MultiStart)

	var best *optimize.Result
	var lastErr error
	totalIters, totalEvals := 0, 0
	for _, start := range starts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if f0 := obj(start); math.IsInf(f0, 1) || math.IsNaN(f0) {
			continue
		}
		result, err := optimize.Minimize(problem, start, settings, &optimize.NelderMead{})
		if err != nil {
			lastErr = err
			continue
		}
		totalIters += result.Stats.MajorIterations
		totalEvals += result.Stats.FuncEvaluations
		if math.IsNaN(result.F) || math.IsInf(result.F, 0) {
			continue
		}
		if best == nil || result.F < best.F {
			best = result
		}
	}
	if best == nil {
		if lastErr != nil {
			return nil, &EstimationError{
				Method:  MethodMPL,
				Message: "optimizer did not converge from any starting point",
				Err:     lastErr,
			}
		}
		return nil, &EstimationError{Method: MethodMPL, Message: "no viable starting point for optimization"}
	}

	if err := family.SetParams(best.X); err != nil {
		return nil, &EstimationError{
			Method:  MethodMPL,
			Message: "optimum lies outside the family's parameter space",
			Err:     err,
		}
	}
	stats := &FitStats{
		Params:       slices.Clone(best.X),
		LogLik:       -best.F,
		Method:       MethodMPL,
		Observations: n,
		Iterations:   totalIters,
		FuncEvals:    totalEvals,
		FittedAt:     time.Now(),
	}
	if cfg.EstVar {
		stats.StdErrs = e.stdErrs(family, u, best.X)
	}
	return stats, nil
}

// estimateInversion calibrates parameters by inverting pairwise rank
// correlations. Families with a single parameter are calibrated against
// the mean pairwise measure.
func (e *DefaultEstimator) estimateInversion(family Family, u *mat.Dense, cfg FitConfig) (*FitStats, error) {
	n, _ := u.Dims()
	k := len(family.Params())
	if cfg.EstVar {
		e.log.Debug("variance estimation is not available for inversion methods",
			slog.String("method", string(cfg.Method)))
	}
	if k == 0 {
		return e.parameterFreeStats(family, u, cfg.Method)
	}

	var params []float64
	switch cfg.Method {
	case MethodITau:
		m, ok := family.(TauMeasurer)
		if !ok {
			return nil, &EstimationError{
				Method:  cfg.Method,
				Message: "family cannot be calibrated from Kendall's tau",
				Err:     notImplemented(family.Name(), "Kendall's tau inversion"),
			}
		}
		vals := pairwiseTau(u)
		if k == 1 && len(vals) > 1 {
			vals = []float64{meanOf(vals)}
		}
		params = m.ITau(vals)
	case MethodIRho:
		m, ok := family.(RhoMeasurer)
		if !ok {
			return nil, &EstimationError{
				Method:  cfg.Method,
				Message: "family cannot be calibrated from Spearman's rho",
				Err:     notImplemented(family.Name(), "Spearman's rho inversion"),
			}
		}
		vals := pairwiseRho(u)
		if k == 1 && len(vals) > 1 {
			vals = []float64{meanOf(vals)}
		}
		params = m.IRho(vals)
	}
	if len(params) != k {
		return nil, &EstimationError{
			Method:  cfg.Method,
			Message: fmt.Sprintf("calibration produced %d parameters, want %d", len(params), k),
		}
	}
	if err := family.SetParams(params); err != nil {
		return nil, &EstimationError{
			Method:  cfg.Method,
			Message: "calibrated parameters are outside the family's parameter space",
			Err:     err,
		}
	}
	ll, err := familyLogLik(family, u)
	if err != nil {
		return nil, err
	}
	return &FitStats{
		Params:       slices.Clone(params),
		LogLik:       ll,
		Method:       cfg.Method,
		Observations: n,
		FittedAt:     time.Now(),
	}, nil
}

// parameterFreeStats records a fit for a family with nothing to estimate.
func (e *DefaultEstimator) parameterFreeStats(family Family, u *mat.Dense, method Method) (*FitStats, error) {
	n, _ := u.Dims()
	ll, err := familyLogLik(family, u)
	if err != nil {
		return nil, err
	}
	return &FitStats{
		Params:       []float64{},
		LogLik:       ll,
		Method:       method,
		Observations: n,
		FittedAt:     time.Now(),
	}, nil
}

// stdErrs derives asymptotic standard errors from the observed information
// matrix, the Hessian of the negative log-likelihood at the optimum. A
// numerically indefinite Hessian degrades to nil rather than failing the
// fit.
func (e *DefaultEstimator) stdErrs(family Family, u *mat.Dense, x []float64) []float64 {
	k := len(x)
	negLL := func(p []float64) float64 {
		if err := family.SetParams(p); err != nil {
			return math.Inf(1)
		}
		ll, err := familyLogLik(family, u)
		if err != nil || math.IsNaN(ll) {
			return math.Inf(1)
		}
		return -ll
	}
	hess := mat.NewSymDense(k, nil)
	fd.Hessian(hess, negLL, x, nil)
	if err := family.SetParams(x); err != nil {
		return nil
	}
	var chol mat.Cholesky
	if !chol.Factorize(hess) {
		e.log.Warn("observed information matrix is not positive definite, skipping standard errors")
		return nil
	}
	var inv mat.SymDense
	if err := chol.InverseTo(&inv); err != nil {
		e.log.Warn("inverting observed information failed, skipping standard errors",
			slog.String("error", err.Error()))
		return nil
	}
	out := make([]float64, k)
	for i := 0; i < k; i++ {
		v := inv.At(i, i)
		if v < 0 {
			return nil
		}
		out[i] = math.Sqrt(v)
	}
	return out
}

// progressRecorder logs optimizer iterations, throttled so long fits do
// not flood the log.
type progressRecorder struct {
	log     *slog.Logger
	limiter *rate.Limiter
}

func newProgressRecorder(log *slog.Logger) *progressRecorder {
	return &progressRecorder{
		log:     log,
		limiter: rate.NewLimiter(rate.Limit(5), 1),
	}
}

func (r *progressRecorder) Init() error { return nil }

func (r *progressRecorder) Record(loc *optimize.Location, op optimize.Operation, stats *optimize.Stats) error {
	if op&optimize.MajorIteration == 0 || !r.limiter.Allow() {
		return nil
	}
	r.log.Debug("optimizer progress",
		slog.Int("iteration", stats.MajorIterations),
		slog.Float64("objective", loc.F))
	return nil
}

// familyLogLik sums the family's log-density over the rows of u.
func familyLogLik(f Family, u *mat.Dense) (float64, error) {
	n, _ := u.Dims()
	sum := 0.0
	for i := 0; i < n; i++ {
		lp, err := f.LogPDF(u.RawRowView(i))
		if err != nil {
			return math.NaN(), err
		}
		sum += lp
	}
	return sum, nil
}

// pairwiseTau computes Kendall's tau for every column pair in row-major
// upper triangle order.
func pairwiseTau(u mat.Matrix) []float64 {
	n, d := u.Dims()
	xi := make([]float64, n)
	xj := make([]float64, n)
	out := make([]float64, 0, d*(d-1)/2)
	for i := 0; i < d; i++ {
		for j := i + 1; j < d; j++ {
			mat.Col(xi, i, u)
			mat.Col(xj, j, u)
			out = append(out, stat.Kendall(xi, xj, nil))
		}
	}
	return out
}

// pairwiseRho computes Spearman's rho for every column pair. The input is
// expected to be pseudo-observations, where the Pearson correlation of the
// scaled ranks is exactly the Spearman correlation of the raw data.
func pairwiseRho(u mat.Matrix) []float64 {
	n, d := u.Dims()
	xi := make([]float64, n)
	xj := make([]float64, n)
	out := make([]float64, 0, d*(d-1)/2)
	for i := 0; i < d; i++ {
		for j := i + 1; j < d; j++ {
			mat.Col(xi, i, u)
			mat.Col(xj, j, u)
			out = append(out, stat.Correlation(xi, xj, nil))
		}
	}
	return out
}

func meanOf(vals []float64) float64 {
	return stat.Mean(vals, nil)
}

// clampInterior pulls x inside [lo, hi] with a small margin, leaving
// infinite bounds open.
func clampInterior(x, lo, hi float64) float64 {
	const margin = 1e-3
	if !math.IsInf(lo, -1) && x < lo+margin {
		x = lo + margin
	}
	if !math.IsInf(hi, 1) && x > hi-margin {
		x = hi - margin
	}
	return x
}

// buildStarts derives optimizer starting points: the initial guess plus
// symmetric perturbations of it, clamped inside the parameter box.
func buildStarts(x0, lo, hi []float64, extra int) [][]float64 {
	deltas := []float64{0.5, -0.5, 1.5, -1.5, 3, -3, 6, -6}
	if extra > len(deltas) {
		extra = len(deltas)
	}
	starts := make([][]float64, 0, extra+1)
	starts = append(starts, slices.Clone(x0))
	for k := 0; k < extra; k++ {
		s := make([]float64, len(x0))
		for i := range x0 {
			step := math.Max(math.Abs(x0[i]), 0.5)
			s[i] = clampInterior(x0[i]+deltas[k]*step, lo[i], hi[i])
		}
		starts = append(starts, s)
	}
	return starts
}
