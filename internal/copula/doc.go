// Package copula implements copula models for multivariate dependence
// analysis, including parameter estimation, simulation, and tail
// concentration diagnostics.
//
// A copula is a multivariate distribution function on the unit hypercube
// [0,1]^d with uniform margins. By Sklar's theorem any joint distribution
// can be decomposed into its margins and a copula that captures the
// dependence structure alone. This package provides the dependence side of
// that decomposition: parametric copula families, rank-based
// pseudo-observations to bring raw data onto [0,1]^d, and estimators that
// calibrate family parameters to data.
//
// # Components
//
// The package is organized around a small set of collaborators:
//
//   - Family: a parametric copula family (Clayton, Frank, Gaussian,
//     Independence). A Family evaluates its CDF and log-density at points of
//     the unit hypercube, samples from itself, and exposes its parameter
//     vector. Families optionally implement TauMeasurer, RhoMeasurer, and
//     TailDependent for rank-correlation calibration and tail diagnostics.
//   - Copula: the model wrapper. It owns a Family, tracks fit state, and
//     provides the user-facing operations: CDF, PDF, LogLik, Fit, Random,
//     concentration functions, and Summary.
//   - Estimator: the fitting strategy. DefaultEstimator supports
//     pseudo-maximum-likelihood via Nelder-Mead as well as inversion of
//     Kendall's tau and Spearman's rho.
//
// # Usage
//
//	fam, err := copula.NewClayton(1, 2)
//	if err != nil {
//	    return err
//	}
//	cop := copula.New(fam, copula.WithLogger(logger))
//	if err := cop.Fit(ctx, data, copula.DefaultFitConfig()); err != nil {
//	    return err
//	}
//	draws, err := cop.Random(1000, rand.NewPCG(42, 42))
//
// Fit transforms the data to pseudo-observations internally, so raw
// observations on any scale are acceptable. Random requires a prior
// successful Fit; on a fresh model it returns a PreconditionError.
//
// # Concurrency
//
// A Copula is not safe for concurrent mutation: Fit and SetParams must not
// race with readers. Distinct Copula values are independent and may be
// fitted concurrently, which Select exploits for model comparison.
//
// # References
//
//   - Nelsen, R.B. (2006). An Introduction to Copulas. Springer.
//   - Joe, H. (2014). Dependence Modeling with Copulas. CRC Press.
//   - Genest, C., Ghoudi, K., Rivest, L.-P. (1995). A semiparametric
//     estimation procedure of dependence parameters in multivariate
//     families of distributions. Biometrika 82(3).
package copula
