package copula

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Estimator calibrates a family's parameters to pseudo-observations. On
// success it leaves the family at the fitted parameters and returns the
// run's statistics. On failure implementations may leave the family at any
// intermediate parameters; Fit rolls the family back.
type Estimator interface {
	Estimate(ctx context.Context, family Family, u *mat.Dense, cfg FitConfig) (*FitStats, error)
}

// Fit estimates the copula parameters from data. The data may live on any
// scale: each fit first converts it to pseudo-observations under the
// configured ties policy, then hands it to the estimator.
//
// On success the model transitions to StateFitted and FitStats reports the
// run. On failure Fit returns an EstimationError and the model is exactly
// as before the call: parameters, fit state, and any earlier fit
// statistics all keep their values.
func (c *Copula) Fit(ctx context.Context, data mat.Matrix, cfg FitConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	n, d := data.Dims()
	if n == 0 {
		return &ValidationError{Field: "data", Message: "cannot fit on empty data", Value: n}
	}
	if d != c.Dim() {
		return &ValidationError{
			Field:   "data",
			Message: fmt.Sprintf("data has %d columns but the copula couples %d variables", d, c.Dim()),
			Value:   d,
		}
	}

	u, err := Pobs(data, cfg.Ties)
	if err != nil {
		return fmt.Errorf("building pseudo-observations: %w", err)
	}

	if cfg.Verbose >= 1 {
		c.log.InfoContext(ctx, "fitting copula",
			slog.String("family", c.Name()),
			slog.Int("dim", c.Dim()),
			slog.String("method", string(cfg.Method)),
			slog.Int("observations", n))
	}

	prev := c.family.Params()
	start := time.Now()
	stats, err := c.estimator.Estimate(ctx, c.family, u, cfg)
	if err != nil {
		if rerr := c.family.SetParams(prev); rerr != nil {
			c.log.ErrorContext(ctx, "restoring parameters after failed fit",
				slog.String("family", c.Name()),
				slog.String("error", rerr.Error()))
		}
		var estErr *EstimationError
		if errors.As(err, &estErr) {
			return err
		}
		return &EstimationError{Method: cfg.Method, Message: "estimation failed", Err: err}
	}

	stats.Observations = n
	c.markFitted(stats)

	if cfg.Verbose >= 1 {
		c.log.InfoContext(ctx, "copula fitted",
			slog.String("family", c.Name()),
			slog.String("method", string(cfg.Method)),
			slog.Float64("log_lik", stats.LogLik),
			slog.Any("params", stats.Params),
			slog.Duration("elapsed", time.Since(start)))
	}
	return nil
}
