package copula

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/stat/distuv"
)

// bvnTail is the integration cutoff for the bivariate normal CDF. Standard
// normal mass beyond it is below 1e-17.
const bvnTail = 8.5

// bivariateNormalCDF evaluates P(X <= x, Y <= y) for standard normal X, Y
// with correlation rho, by Gauss-Legendre quadrature of
// phi(t)*Phi((y-rho*t)/sqrt(1-rho^2)) over t in (-inf, x].
func bivariateNormalCDF(x, y, rho float64) float64 {
	if math.IsNaN(x) || math.IsNaN(y) {
		return math.NaN()
	}
	// Comonotone and countermonotone limits.
	if rho >= 1-1e-12 {
		return distuv.UnitNormal.CDF(math.Min(x, y))
	}
	if rho <= -1+1e-12 {
		return math.Max(distuv.UnitNormal.CDF(x)+distuv.UnitNormal.CDF(y)-1, 0)
	}
	if x <= -bvnTail || y <= -bvnTail {
		return 0
	}
	if x >= bvnTail {
		return distuv.UnitNormal.CDF(y)
	}
	if y >= bvnTail {
		return distuv.UnitNormal.CDF(x)
	}
	s := math.Sqrt(1 - rho*rho)
	f := func(t float64) float64 {
		return distuv.UnitNormal.Prob(t) * distuv.UnitNormal.CDF((y-rho*t)/s)
	}
	v := quad.Fixed(f, -bvnTail, x, 96, nil, 0)
	return math.Min(math.Max(v, 0), 1)
}
