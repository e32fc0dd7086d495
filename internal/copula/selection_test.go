package copula

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietSelectionConfig() SelectionConfig {
	cfg := DefaultSelectionConfig()
	cfg.Fit = quietFitConfig()
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return cfg
}

func TestSelectRanksByAIC(t *testing.T) {
	data := claytonSampleForTest(t, 3, 600)
	candidates, err := DefaultCandidates(2)
	require.NoError(t, err)
	require.Len(t, candidates, 4)

	cfg := quietSelectionConfig()
	cfg.MaxConcurrency = 2
	res, err := Select(context.Background(), candidates, data, cfg)
	require.NoError(t, err)
	require.NotNil(t, res.Best)
	require.Len(t, res.Ranked, 4)

	for _, cf := range res.Ranked {
		assert.NoError(t, cf.Err, "family %s", cf.Name)
		assert.True(t, cf.Model().Fitted())
	}
	for i := 1; i < len(res.Ranked); i++ {
		assert.LessOrEqual(t, res.Ranked[i-1].AIC, res.Ranked[i].AIC)
	}

	assert.Same(t, res.Ranked[0].Model(), res.Best)
	assert.NotEqual(t, "Independence", res.Best.Name(),
		"lower tail clustered data is nowhere near independent")
	assert.Equal(t, "Independence", res.Ranked[len(res.Ranked)-1].Name,
		"every dependent family beats the product copula here")

	var clayton CandidateFit
	for _, cf := range res.Ranked {
		if cf.Name == "Clayton" {
			clayton = cf
		}
	}
	require.NotNil(t, clayton.Model())
	assert.Greater(t, clayton.Params[0], 1.8, "estimate should land near the generating theta")
	assert.Less(t, clayton.Params[0], 4.2)

	draws, err := res.Best.Random(10, rand.NewPCG(3, 3))
	require.NoError(t, err)
	r, c := draws.Dims()
	assert.Equal(t, 10, r)
	assert.Equal(t, 2, c)

	assert.Positive(t, res.Elapsed)
}

func TestSelectRecordsPartialFailures(t *testing.T) {
	good := newTestCopula(t, 1, 2)
	broken := New(
		mustClayton(t, 1, 2),
		WithEstimator(&scrambleEstimator{params: []float64{2}, err: errors.New("no convergence")}),
	)

	cfg := quietSelectionConfig()
	cfg.Fit.Method = MethodITau
	res, err := Select(context.Background(), []*Copula{broken, good}, rankedPairs8(), cfg)
	require.NoError(t, err)

	require.Len(t, res.Ranked, 2)
	assert.Same(t, good, res.Best)
	assert.NoError(t, res.Ranked[0].Err)
	assert.Error(t, res.Ranked[1].Err, "failed candidates rank last")
	assert.False(t, res.Ranked[1].Model().Fitted())
}

func TestSelectAllCandidatesFail(t *testing.T) {
	mk := func() *Copula {
		return New(
			mustClayton(t, 1, 2),
			WithEstimator(&scrambleEstimator{params: []float64{2}, err: errors.New("no convergence")}),
		)
	}

	res, err := Select(context.Background(), []*Copula{mk(), mk()}, rankedPairs8(), quietSelectionConfig())
	assert.Nil(t, res)

	var ee *EstimationError
	require.ErrorAs(t, err, &ee)
	assert.Contains(t, ee.Message, "all candidate families failed")
}

func TestSelectNeedsCandidates(t *testing.T) {
	_, err := Select(context.Background(), nil, rankedPairs8(), quietSelectionConfig())
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "candidates", ve.Field)
}

func TestSelectCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	candidates, err := DefaultCandidates(2)
	require.NoError(t, err)
	_, err = Select(ctx, candidates, rankedPairs8(), quietSelectionConfig())
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNewFamily(t *testing.T) {
	cases := []struct {
		in   string
		dim  int
		name string
	}{
		{"clayton", 3, "Clayton"},
		{"CLAYTON", 2, "Clayton"},
		{"frank", 2, "Frank"},
		{"gaussian", 2, "Gaussian"},
		{"normal", 4, "Gaussian"},
		{"independence", 2, "Independence"},
		{"indep", 3, "Independence"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			fam, err := NewFamily(tc.in, tc.dim)
			require.NoError(t, err)
			assert.Equal(t, tc.name, fam.Name())
			assert.Equal(t, tc.dim, fam.Dim())
		})
	}

	t.Run("frank above two dimensions", func(t *testing.T) {
		_, err := NewFamily("frank", 3)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "family", ve.Field)
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := NewFamily("gumbel", 2)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Message, "unknown copula family")
	})
}

func TestDefaultCandidates(t *testing.T) {
	two, err := DefaultCandidates(2)
	require.NoError(t, err)
	names := make([]string, len(two))
	for i, c := range two {
		names[i] = c.Name()
	}
	assert.Equal(t, []string{"Clayton", "Frank", "Gaussian", "Independence"}, names)

	three, err := DefaultCandidates(3)
	require.NoError(t, err)
	require.Len(t, three, 3, "Frank drops out above two dimensions")
	for _, c := range three {
		assert.NotEqual(t, "Frank", c.Name())
		assert.Equal(t, 3, c.Dim())
	}
}
