package copula

// State reports whether the model has been fitted.
func (c *Copula) State() State { return c.state }

// Fitted reports whether a successful Fit has run.
func (c *Copula) Fitted() bool { return c.state == StateFitted }

// FitStats returns a copy of the statistics recorded by the last successful
// Fit, or nil on an unfitted model.
func (c *Copula) FitStats() *FitStats {
	return c.stats.Clone()
}

// requireFitted guards operations that are only meaningful after fitting.
func (c *Copula) requireFitted(op string) error {
	if c.state == StateFitted {
		return nil
	}
	return &PreconditionError{
		Op:      op,
		Message: "copula must be fitted before it can generate random numbers",
	}
}

// markFitted transitions the model to the fitted state. Only Fit calls it,
// and only after the estimator succeeded.
func (c *Copula) markFitted(stats *FitStats) {
	c.stats = stats.Clone()
	c.state = StateFitted
}
