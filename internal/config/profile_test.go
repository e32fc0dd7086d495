package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProfile(t *testing.T) {
	p := DefaultProfile()
	require.NotNil(t, p)
	assert.NoError(t, p.Validate(), "default profile must validate")
	assert.Equal(t, "gaussian", p.Family)
	assert.Equal(t, 2, p.Dim)
	assert.Equal(t, "mpl", p.Method)
	assert.Equal(t, int64(-1), p.Seed)
}

func TestProfileValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*FitProfile)
		wantErr bool
	}{
		{name: "defaults", mutate: func(p *FitProfile) {}},
		{name: "clayton trivariate", mutate: func(p *FitProfile) { p.Family = "clayton"; p.Dim = 3 }},
		{name: "unknown family", mutate: func(p *FitProfile) { p.Family = "gumbel" }, wantErr: true},
		{name: "dim too small", mutate: func(p *FitProfile) { p.Dim = 1 }, wantErr: true},
		{name: "unknown method", mutate: func(p *FitProfile) { p.Method = "mle" }, wantErr: true},
		{name: "unknown ties", mutate: func(p *FitProfile) { p.Ties = "random" }, wantErr: true},
		{name: "negative simulate", mutate: func(p *FitProfile) { p.Simulate = -1 }, wantErr: true},
		{name: "unknown export", mutate: func(p *FitProfile) { p.Export = "pdf" }, wantErr: true},
		{name: "frank trivariate", mutate: func(p *FitProfile) { p.Family = "frank"; p.Dim = 3 }, wantErr: true},
		{name: "negative optimizer tolerance", mutate: func(p *FitProfile) { p.Optimizer.Tolerance = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultProfile()
			tt.mutate(p)
			err := p.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadProfile(t *testing.T) {
	dir := t.TempDir()

	t.Run("partial profile inherits defaults", func(t *testing.T) {
		path := filepath.Join(dir, "clayton.yaml")
		content := []byte("family: clayton\ndim: 3\nest_var: true\nsimulate: 500\nseed: 42\n")
		require.NoError(t, os.WriteFile(path, content, 0644))

		p, err := LoadProfile(path)
		require.NoError(t, err)
		assert.Equal(t, "clayton", p.Family)
		assert.Equal(t, 3, p.Dim)
		assert.True(t, p.EstVar)
		assert.Equal(t, 500, p.Simulate)
		assert.Equal(t, int64(42), p.Seed)
		// Defaults survive for unset fields.
		assert.Equal(t, "mpl", p.Method)
		assert.Equal(t, "average", p.Ties)
		assert.Equal(t, "csv", p.Export)
	})

	t.Run("invalid profile rejected", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("family: gumbel\n"), 0644))

		_, err := LoadProfile(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadProfile(filepath.Join(dir, "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(dir, "broken.yaml")
		require.NoError(t, os.WriteFile(path, []byte("family: [unclosed\n"), 0644))

		_, err := LoadProfile(path)
		assert.Error(t, err)
	})
}
