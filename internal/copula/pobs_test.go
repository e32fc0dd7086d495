package copula

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestPobsAverageTies(t *testing.T) {
	data := mat.NewDense(3, 2, []float64{
		0.1, 0.9,
		0.5, 0.5,
		0.9, 0.1,
	})

	u, err := Pobs(data, TiesAverage)
	require.NoError(t, err)

	expected := [][]float64{
		{0.25, 0.75},
		{0.50, 0.50},
		{0.75, 0.25},
	}
	for i, row := range expected {
		for j, want := range row {
			assert.InDelta(t, want, u.At(i, j), 1e-12,
				"pseudo-observation at (%d,%d)", i, j)
		}
	}
}

func TestRankTiePolicies(t *testing.T) {
	column := []float64{10, 20, 20, 30}

	tests := []struct {
		name string
		ties Ties
		want []float64
	}{
		{"average", TiesAverage, []float64{1, 2.5, 2.5, 4}},
		{"min", TiesMin, []float64{1, 2, 2, 4}},
		{"max", TiesMax, []float64{1, 3, 3, 4}},
		{"dense", TiesDense, []float64{1, 2, 2, 3}},
		{"ordinal", TiesOrdinal, []float64{1, 2, 3, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Rank(column, tt.ties))
		})
	}
}

func TestRankOrdinalBreaksTiesByPosition(t *testing.T) {
	// The two 20s keep their input order: the first gets the lower rank.
	got := Rank([]float64{20, 10, 30, 20}, TiesOrdinal)
	assert.Equal(t, []float64{2, 1, 4, 3}, got)
}

func TestRankDenseReusesConsecutiveRanks(t *testing.T) {
	got := Rank([]float64{5, 1, 5, 3, 3}, TiesDense)
	assert.Equal(t, []float64{3, 1, 3, 2, 2}, got)
}

func TestPobsStaysInsideOpenInterval(t *testing.T) {
	data := mat.NewDense(5, 2, []float64{
		-120, 4,
		3.5, 4,
		0, 4,
		99, 4,
		7, 4,
	})

	u, err := Pobs(data, TiesAverage)
	require.NoError(t, err)

	n, d := u.Dims()
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			v := u.At(i, j)
			assert.Greater(t, v, 0.0, "pseudo-observation must exceed 0")
			assert.Less(t, v, 1.0, "pseudo-observation must stay below 1")
		}
	}
	// A constant column collapses to the central value.
	for i := 0; i < n; i++ {
		assert.InDelta(t, 0.5, u.At(i, 1), 1e-12)
	}
}

func TestPobsInvariantToMonotoneTransforms(t *testing.T) {
	x := []float64{-3, 10, 2.5, 7, 0.1, 99}
	a := mat.NewDense(6, 1, x)
	scaled := make([]float64, len(x))
	for i, v := range x {
		scaled[i] = 2*v + 5
	}
	b := mat.NewDense(6, 1, scaled)

	ua, err := Pobs(a, TiesAverage)
	require.NoError(t, err)
	ub, err := Pobs(b, TiesAverage)
	require.NoError(t, err)

	assert.True(t, mat.EqualApprox(ua, ub, 1e-12),
		"pseudo-observations depend only on ranks")
}

func TestPobsRejectsBadInput(t *testing.T) {
	t.Run("non-finite value", func(t *testing.T) {
		data := mat.NewDense(2, 2, []float64{1, 2, math.NaN(), 4})
		_, err := Pobs(data, TiesAverage)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "data", ve.Field)
	})

	t.Run("unknown ties policy", func(t *testing.T) {
		data := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
		_, err := Pobs(data, Ties("median"))
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "ties", ve.Field)
	})
}

func TestParseTiesAndMethod(t *testing.T) {
	ties, err := ParseTies(" Average ")
	require.NoError(t, err)
	assert.Equal(t, TiesAverage, ties)

	_, err = ParseTies("nearest")
	assert.Error(t, err)

	m, err := ParseMethod("MPL")
	require.NoError(t, err)
	assert.Equal(t, MethodMPL, m)

	_, err = ParseMethod("mle")
	assert.Error(t, err)
}
