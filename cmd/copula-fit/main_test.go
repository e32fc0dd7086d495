package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copulakit/internal/config"
	"copulakit/internal/copula"
)

func TestResolveProfile_FromFlags(t *testing.T) {
	flags := flagProfile{
		Family:   "clayton",
		Method:   "itau",
		Ties:     "dense",
		EstVar:   true,
		Simulate: 100,
		Seed:     7,
		Verbose:  2,
		Export:   "both",
	}

	prof, err := resolveProfile("", 3, flags)
	require.NoError(t, err)

	assert.Equal(t, "clayton", prof.Family)
	assert.Equal(t, 3, prof.Dim)
	assert.Equal(t, "itau", prof.Method)
	assert.Equal(t, "dense", prof.Ties)
	assert.True(t, prof.EstVar)
	assert.Equal(t, 100, prof.Simulate)
	assert.Equal(t, int64(7), prof.Seed)
}

func TestResolveProfile_InvalidFlags(t *testing.T) {
	_, err := resolveProfile("", 2, flagProfile{
		Family: "gumbel", Method: "mpl", Ties: "average", Export: "csv",
	})
	assert.Error(t, err)
}

func TestResolveProfile_FileDimMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("family: clayton\ndim: 3\n"), 0644))

	_, err := resolveProfile(path, 2, flagProfile{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "columns")
}

func TestFitConfigFrom(t *testing.T) {
	prof := config.DefaultProfile()
	prof.Method = "irho"
	prof.Ties = "min"
	prof.EstVar = true
	prof.Verbose = 0
	prof.Optimizer.MaxIterations = 50
	prof.Optimizer.Tolerance = 1e-6

	cfg := fitConfigFrom(prof)
	assert.Equal(t, copula.MethodIRho, cfg.Method)
	assert.Equal(t, copula.TiesMin, cfg.Ties)
	assert.True(t, cfg.EstVar)
	assert.Equal(t, 0, cfg.Verbose)
	assert.Equal(t, 50, cfg.Optim.MaxIterations)
	assert.Equal(t, 1e-6, cfg.Optim.Tolerance)
	// Unset optimizer fields keep the package defaults.
	defaults := copula.DefaultOptimOptions()
	assert.Equal(t, defaults.MaxFuncEvals, cfg.Optim.MaxFuncEvals)
	assert.Equal(t, defaults.MultiStart, cfg.Optim.MultiStart)
}

func TestLoadTable_ExtensionDispatch(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("x,y\n1,2\n3,4\n"), 0644))

	table, err := loadTable(csvPath, "")
	require.NoError(t, err)
	assert.Equal(t, 2, table.Rows())

	_, err = loadTable(filepath.Join(dir, "data.parquet"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported input format")
}

func TestSeedSource(t *testing.T) {
	assert.Nil(t, seedSource(-1), "negative seed means unseeded")
	require.NotNil(t, seedSource(42))

	a, b := seedSource(42), seedSource(42)
	assert.Equal(t, a.Uint64(), b.Uint64(), "same seed must reproduce the stream")
}
