package copula

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
)

// Ties selects the rank-assignment policy used when observations are equal.
type Ties string

const (
	// TiesAverage assigns tied values the mean of their ordinal ranks.
	TiesAverage Ties = "average"
	// TiesMin assigns tied values the smallest of their ordinal ranks.
	TiesMin Ties = "min"
	// TiesMax assigns tied values the largest of their ordinal ranks.
	TiesMax Ties = "max"
	// TiesDense ranks like TiesMin but without gaps after tie groups.
	TiesDense Ties = "dense"
	// TiesOrdinal assigns distinct ranks in order of appearance.
	TiesOrdinal Ties = "ordinal"
)

// IsValid reports whether t is a known ties policy.
func (t Ties) IsValid() bool {
	switch t {
	case TiesAverage, TiesMin, TiesMax, TiesDense, TiesOrdinal:
		return true
	}
	return false
}

func (t Ties) String() string { return string(t) }

// ParseTies converts a string into a Ties policy.
func ParseTies(s string) (Ties, error) {
	t := Ties(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", &ValidationError{
			Field:   "ties",
			Message: fmt.Sprintf("unknown ties policy %q (valid: average, min, max, dense, ordinal)", s),
			Value:   s,
		}
	}
	return t, nil
}

// Method identifies a parameter estimation strategy.
type Method string

const (
	// MethodMPL fits by pseudo-maximum-likelihood.
	MethodMPL Method = "mpl"
	// MethodITau calibrates by inverting Kendall's tau.
	MethodITau Method = "itau"
	// MethodIRho calibrates by inverting Spearman's rho.
	MethodIRho Method = "irho"
)

// IsValid reports whether m is a known estimation method.
func (m Method) IsValid() bool {
	switch m {
	case MethodMPL, MethodITau, MethodIRho:
		return true
	}
	return false
}

func (m Method) String() string { return string(m) }

// ParseMethod converts a string into an estimation Method.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", &ValidationError{
			Field:   "method",
			Message: fmt.Sprintf("unknown estimation method %q (valid: mpl, itau, irho)", s),
			Value:   s,
		}
	}
	return m, nil
}

// State describes the fit lifecycle of a Copula.
type State int

const (
	// StateUnfitted is the state of a freshly constructed model.
	StateUnfitted State = iota
	// StateFitted indicates a successful Fit has run.
	StateFitted
)

func (s State) String() string {
	switch s {
	case StateUnfitted:
		return "unfitted"
	case StateFitted:
		return "fitted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// TailDependence holds lower and upper tail dependence coefficients. For
// exchangeable families both slices hold a single entry; for families with
// pairwise parameters they hold one entry per variable pair.
type TailDependence struct {
	Lower []float64
	Upper []float64
}

// FitStats records the outcome of a successful estimation run.
type FitStats struct {
	// Params is the fitted parameter vector.
	Params []float64
	// StdErrs holds asymptotic standard errors per parameter, or nil when
	// variance estimation was not requested or not available.
	StdErrs []float64
	// LogLik is the maximized pseudo log-likelihood at Params.
	LogLik float64
	// Method is the estimation strategy that produced Params.
	Method Method
	// Observations is the number of rows used for estimation.
	Observations int
	// Iterations and FuncEvals report optimizer effort. Both are zero for
	// inversion methods.
	Iterations int
	FuncEvals  int
	// FittedAt is the wall-clock completion time of the fit.
	FittedAt time.Time
}

// AIC returns the Akaike information criterion, 2k - 2*LogLik.
func (s *FitStats) AIC() float64 {
	return 2*float64(len(s.Params)) - 2*s.LogLik
}

// BIC returns the Bayesian information criterion, k*ln(n) - 2*LogLik.
func (s *FitStats) BIC() float64 {
	return float64(len(s.Params))*math.Log(float64(s.Observations)) - 2*s.LogLik
}

// Clone returns a deep copy so callers cannot mutate recorded results.
func (s *FitStats) Clone() *FitStats {
	if s == nil {
		return nil
	}
	out := *s
	out.Params = slices.Clone(s.Params)
	out.StdErrs = slices.Clone(s.StdErrs)
	return &out
}

// OptimOptions tunes the numerical optimizer used by MethodMPL.
type OptimOptions struct {
	// MaxIterations caps optimizer major iterations per start. Zero means
	// no cap.
	MaxIterations int
	// MaxFuncEvals caps objective evaluations per start. Zero means no
	// cap.
	MaxFuncEvals int
	// Tolerance is the absolute function convergence tolerance.
	Tolerance float64
	// MultiStart is the number of perturbed starting points tried in
	// addition to the initial guess.
	MultiStart int
}

// DefaultOptimOptions returns optimizer settings suitable for the bundled
// copula families.
func DefaultOptimOptions() OptimOptions {
	return OptimOptions{
		MaxIterations: 500,
		MaxFuncEvals:  2000,
		Tolerance:     1e-10,
		MultiStart:    4,
	}
}

// Validate checks optimizer settings for internal consistency.
func (o OptimOptions) Validate() error {
	if o.MaxIterations < 0 {
		return &ValidationError{Field: "optim.max_iterations", Message: "max iterations cannot be negative", Value: o.MaxIterations}
	}
	if o.MaxFuncEvals < 0 {
		return &ValidationError{Field: "optim.max_func_evals", Message: "max function evaluations cannot be negative", Value: o.MaxFuncEvals}
	}
	if o.Tolerance < 0 || math.IsNaN(o.Tolerance) {
		return &ValidationError{Field: "optim.tolerance", Message: "tolerance must be non-negative", Value: o.Tolerance}
	}
	if o.MultiStart < 0 {
		return &ValidationError{Field: "optim.multi_start", Message: "multi-start count cannot be negative", Value: o.MultiStart}
	}
	return nil
}

// FitConfig controls a single Fit run.
type FitConfig struct {
	// X0 overrides the family's own starting parameter guess. Leave nil to
	// let the family derive one from the data.
	X0 []float64
	// Method selects the estimation strategy.
	Method Method
	// Ties is the rank policy applied when building pseudo-observations.
	Ties Ties
	// EstVar requests asymptotic standard errors where the method supports
	// them. Unavailability is reported in the log, not as an error.
	EstVar bool
	// Verbose tunes fit logging: 0 silences progress, 1 logs start and
	// result, 2 additionally logs optimizer iterations.
	Verbose int
	// Optim tunes the optimizer for MethodMPL.
	Optim OptimOptions
}

// DefaultFitConfig returns the standard fit configuration:
// pseudo-maximum-likelihood with average ranks.
func DefaultFitConfig() FitConfig {
	return FitConfig{
		Method:  MethodMPL,
		Ties:    TiesAverage,
		EstVar:  false,
		Verbose: 1,
		Optim:   DefaultOptimOptions(),
	}
}

// Validate checks the configuration before a fit starts.
func (c FitConfig) Validate() error {
	if !c.Method.IsValid() {
		return &ValidationError{
			Field:   "method",
			Message: fmt.Sprintf("unknown estimation method %q (valid: mpl, itau, irho)", string(c.Method)),
			Value:   string(c.Method),
		}
	}
	if !c.Ties.IsValid() {
		return &ValidationError{
			Field:   "ties",
			Message: fmt.Sprintf("unknown ties policy %q (valid: average, min, max, dense, ordinal)", string(c.Ties)),
			Value:   string(c.Ties),
		}
	}
	if c.Verbose < 0 {
		return &ValidationError{Field: "verbose", Message: "verbosity cannot be negative", Value: c.Verbose}
	}
	for i, v := range c.X0 {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &ValidationError{
				Field:   "x0",
				Message: fmt.Sprintf("starting guess contains non-finite value at index %d", i),
				Value:   v,
			}
		}
	}
	return c.Optim.Validate()
}
