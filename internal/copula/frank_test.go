package copula

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestFrankCDFProperties(t *testing.T) {
	t.Run("independence at theta zero", func(t *testing.T) {
		f, err := NewFrank(0)
		require.NoError(t, err)
		v, err := f.CDF([]float64{0.4, 0.9})
		require.NoError(t, err)
		assert.InDelta(t, 0.36, v, 1e-12)
	})

	t.Run("symmetry", func(t *testing.T) {
		f, err := NewFrank(4)
		require.NoError(t, err)
		a, err := f.CDF([]float64{0.2, 0.7})
		require.NoError(t, err)
		b, err := f.CDF([]float64{0.7, 0.2})
		require.NoError(t, err)
		assert.InDelta(t, a, b, 1e-12)
	})

	t.Run("Frechet bounds", func(t *testing.T) {
		grid := []float64{0.1, 0.35, 0.6, 0.85}
		for _, theta := range []float64{-10, -2, 2, 10} {
			f, err := NewFrank(theta)
			require.NoError(t, err)
			for _, u := range grid {
				for _, v := range grid {
					c, err := f.CDF([]float64{u, v})
					require.NoError(t, err)
					lower := math.Max(u+v-1, 0)
					upper := math.Min(u, v)
					assert.GreaterOrEqual(t, c, lower-1e-12, "theta=%v u=%v v=%v", theta, u, v)
					assert.LessOrEqual(t, c, upper+1e-12, "theta=%v u=%v v=%v", theta, u, v)
				}
			}
		}
	})

	t.Run("uniform margins", func(t *testing.T) {
		f, err := NewFrank(6)
		require.NoError(t, err)
		for _, v := range []float64{0.25, 0.5, 0.75} {
			c, err := f.CDF([]float64{1, v})
			require.NoError(t, err)
			assert.InDelta(t, v, c, 1e-9, "C(1,v) = v")
		}
	})
}

func TestFrankDensityMatchesClosedForm(t *testing.T) {
	points := [][]float64{
		{0.3, 0.6},
		{0.15, 0.9},
		{0.5, 0.5},
	}
	for _, theta := range []float64{-3, 4} {
		f, err := NewFrank(theta)
		require.NoError(t, err)
		for _, p := range points {
			lp, err := f.LogPDF(p)
			require.NoError(t, err)

			u, v := p[0], p[1]
			num := theta * (1 - math.Exp(-theta)) * math.Exp(-theta*(u+v))
			den := (1 - math.Exp(-theta)) - (1-math.Exp(-theta*u))*(1-math.Exp(-theta*v))
			assert.InDelta(t, num/(den*den), math.Exp(lp), 1e-9,
				"density at (%v,%v) with theta=%v", u, v, theta)
		}
	}

	f, err := NewFrank(0)
	require.NoError(t, err)
	lp, err := f.LogPDF([]float64{0.3, 0.8})
	require.NoError(t, err)
	assert.Equal(t, 0.0, lp)
}

func TestFrankTauAndRho(t *testing.T) {
	// D1(1) = 0.77750463... gives tau(1) = 0.110018...
	assert.InDelta(t, 0.110019, frankTau(1), 1e-4)

	t.Run("antisymmetry", func(t *testing.T) {
		for _, theta := range []float64{0.5, 2, 8, 20} {
			assert.InDelta(t, -frankTau(theta), frankTau(-theta), 1e-10)
			assert.InDelta(t, -frankRho(theta), frankRho(-theta), 1e-10)
		}
	})

	t.Run("monotone increasing", func(t *testing.T) {
		prevTau, prevRho := -1.0, -1.0
		for _, theta := range []float64{-20, -5, -1, 0, 1, 5, 20} {
			tau := frankTau(theta)
			rho := frankRho(theta)
			assert.Greater(t, tau, prevTau)
			assert.Greater(t, rho, prevRho)
			prevTau, prevRho = tau, rho
		}
	})

	t.Run("rho exceeds tau for positive dependence", func(t *testing.T) {
		for _, theta := range []float64{1, 4, 10} {
			assert.Greater(t, frankRho(theta), frankTau(theta))
		}
	})

	t.Run("derivatives are positive", func(t *testing.T) {
		f, err := NewFrank(3)
		require.NoError(t, err)
		assert.Greater(t, f.DTau(nil)[0], 0.0)
		assert.Greater(t, f.DRho(nil)[0], 0.0)
		assert.Greater(t, f.DTau([]float64{-5})[0], 0.0)
	})
}

func TestFrankInversionRoundTrip(t *testing.T) {
	f, err := NewFrank(0)
	require.NoError(t, err)
	for _, theta := range []float64{-8, -2, 0.5, 2, 8} {
		tau := frankTau(theta)
		assert.InDelta(t, theta, f.ITau([]float64{tau})[0], 1e-6,
			"itau(tau(theta)) at theta=%v", theta)

		rho := frankRho(theta)
		assert.InDelta(t, theta, f.IRho([]float64{rho})[0], 1e-6,
			"irho(rho(theta)) at theta=%v", theta)
	}

	t.Run("targets beyond the searchable range clamp", func(t *testing.T) {
		assert.InDelta(t, frankCalMax, f.ITau([]float64{0.99})[0], 1e-9)
		assert.InDelta(t, -frankCalMax, f.ITau([]float64{-0.99})[0], 1e-9)
	})
}

func TestFrankSampling(t *testing.T) {
	for _, theta := range []float64{6, -6} {
		f, err := NewFrank(theta)
		require.NoError(t, err)

		n := 2000
		draws := f.Sample(n, rand.NewPCG(7, 7))
		r, cols := draws.Dims()
		require.Equal(t, n, r)
		require.Equal(t, 2, cols)
		for i := 0; i < n; i++ {
			for j := 0; j < 2; j++ {
				v := draws.At(i, j)
				assert.GreaterOrEqual(t, v, 0.0)
				assert.LessOrEqual(t, v, 1.0)
			}
		}

		tau := pairwiseTau(draws)[0]
		assert.InDelta(t, frankTau(theta), tau, 0.08,
			"sample tau should match the model at theta=%v", theta)

		again := f.Sample(n, rand.NewPCG(7, 7))
		assert.True(t, mat.Equal(draws, again))
	}
}

func TestFrankTailDependenceIsZero(t *testing.T) {
	f, err := NewFrank(12)
	require.NoError(t, err)
	td := f.TailDependence()
	assert.Equal(t, []float64{0}, td.Lower)
	assert.Equal(t, []float64{0}, td.Upper)
}

func TestFrankSetParams(t *testing.T) {
	f, err := NewFrank(1)
	require.NoError(t, err)

	var ve *ValidationError
	require.ErrorAs(t, f.SetParams([]float64{math.Inf(1)}), &ve)
	require.ErrorAs(t, f.SetParams([]float64{1, 2}), &ve)
	assert.NoError(t, f.SetParams([]float64{-20}))
	assert.Equal(t, []float64{-20}, f.Params())
}
