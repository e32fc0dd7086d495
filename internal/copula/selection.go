package copula

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// CandidateFit records one candidate's outcome in a model comparison.
type CandidateFit struct {
	Name    string
	Dim     int
	Params  []float64
	LogLik  float64
	AIC     float64
	BIC     float64
	Elapsed time.Duration
	// Err is non-nil when this candidate failed to fit. Failed candidates
	// rank after all successful ones.
	Err error

	model *Copula
}

// Model returns the candidate's model, fitted when Err is nil.
func (cf CandidateFit) Model() *Copula { return cf.model }

// SelectionConfig controls a model comparison run.
type SelectionConfig struct {
	// MaxConcurrency caps the number of candidates fitted in parallel.
	MaxConcurrency int
	// Fit is the configuration applied to every candidate.
	Fit FitConfig
	// Logger receives progress messages. Nil falls back to slog.Default.
	Logger *slog.Logger
}

// DefaultSelectionConfig fits up to four candidates in parallel with the
// default fit configuration.
func DefaultSelectionConfig() SelectionConfig {
	return SelectionConfig{
		MaxConcurrency: 4,
		Fit:            DefaultFitConfig(),
	}
}

// SelectionResult ranks candidate families by fit quality.
type SelectionResult struct {
	// Best is the fitted model with the lowest AIC.
	Best *Copula
	// Ranked lists all candidates, successful fits first in ascending AIC
	// order, failed fits last.
	Ranked  []CandidateFit
	Elapsed time.Duration
}

// Select fits every candidate model to the same data and ranks them by
// AIC. Candidates are fitted concurrently; each candidate is mutated by
// its own fit. Individual fit failures are recorded per candidate, and an
// error is returned only when the context is cancelled or every candidate
// fails.
func Select(ctx context.Context, candidates []*Copula, data mat.Matrix, cfg SelectionConfig) (*SelectionResult, error) {
	if len(candidates) == 0 {
		return nil, &ValidationError{Field: "candidates", Message: "model selection needs at least one candidate", Value: 0}
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 1
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	log.InfoContext(ctx, "comparing copula families",
		slog.Int("candidates", len(candidates)),
		slog.Int("max_concurrency", cfg.MaxConcurrency))

	start := time.Now()
	fits := make([]CandidateFit, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.MaxConcurrency)
	for i, cand := range candidates {
		g.Go(func() error {
			fits[i] = fitCandidate(gctx, cand, data, cfg.Fit)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(fits, func(a, b int) bool {
		fa, fb := fits[a], fits[b]
		if (fa.Err == nil) != (fb.Err == nil) {
			return fa.Err == nil
		}
		if fa.Err != nil {
			return false
		}
		return fa.AIC < fb.AIC
	})

	res := &SelectionResult{Ranked: fits, Elapsed: time.Since(start)}
	if fits[0].Err != nil {
		return nil, &EstimationError{
			Method:  cfg.Fit.Method,
			Message: "all candidate families failed to fit",
			Err:     fits[0].Err,
		}
	}
	res.Best = fits[0].model

	log.InfoContext(ctx, "family comparison finished",
		slog.String("best", fits[0].Name),
		slog.Float64("aic", fits[0].AIC),
		slog.Duration("elapsed", res.Elapsed))
	return res, nil
}

func fitCandidate(ctx context.Context, cand *Copula, data mat.Matrix, cfg FitConfig) CandidateFit {
	cf := CandidateFit{Name: cand.Name(), Dim: cand.Dim(), model: cand}
	start := time.Now()
	if err := cand.Fit(ctx, data, cfg); err != nil {
		cf.Err = err
		cf.Elapsed = time.Since(start)
		return cf
	}
	stats := cand.FitStats()
	cf.Params = stats.Params
	cf.LogLik = stats.LogLik
	cf.AIC = stats.AIC()
	cf.BIC = stats.BIC()
	cf.Elapsed = time.Since(start)
	return cf
}

// NewFamily builds a copula family by name: clayton, frank, gaussian, or
// independence. The Frank copula is bivariate only.
func NewFamily(name string, dim int) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "clayton":
		return NewClayton(1, dim)
	case "frank":
		if dim != 2 {
			return nil, &ValidationError{Field: "family", Message: "Frank copula is only available in two dimensions", Value: dim}
		}
		return NewFrank(0)
	case "gaussian", "normal":
		return NewGaussian(dim)
	case "independence", "indep":
		return NewIndependence(dim)
	default:
		return nil, &ValidationError{
			Field:   "family",
			Message: fmt.Sprintf("unknown copula family %q (valid: clayton, frank, gaussian, independence)", name),
			Value:   name,
		}
	}
}

// DefaultCandidates builds one unfitted model per bundled family that
// supports the dimension, ready to hand to Select.
func DefaultCandidates(dim int, opts ...Option) ([]*Copula, error) {
	names := []string{"clayton", "frank", "gaussian", "independence"}
	out := make([]*Copula, 0, len(names))
	for _, name := range names {
		if name == "frank" && dim != 2 {
			continue
		}
		fam, err := NewFamily(name, dim)
		if err != nil {
			return nil, err
		}
		out = append(out, New(fam, opts...))
	}
	return out, nil
}
