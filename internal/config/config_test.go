package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "console", cfg.Logging.Output)
	assert.Equal(t, "reports", cfg.Report.OutputDir)
	assert.Equal(t, "csv", cfg.Report.Format)
	assert.Equal(t, 21, cfg.Report.ConcentrationPoints)

	assert.NoError(t, cfg.validate(), "defaults must validate")
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("COPULA_LOGGING_LEVEL", "debug")
	t.Setenv("COPULA_REPORT_FORMAT", "xlsx")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "xlsx", cfg.Report.Format)
	// Untouched fields keep their defaults.
	assert.Equal(t, "console", cfg.Logging.Output)
	assert.Equal(t, "reports", cfg.Report.OutputDir)
}

func TestLoad_InvalidEnvValue(t *testing.T) {
	t.Setenv("COPULA_LOGGING_LEVEL", "loud")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging level")
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "copulakit.yaml")
	content := []byte("logging:\n  level: warn\nreport:\n  output_dir: out\n  concentration_points: 11\n")
	require.NoError(t, os.WriteFile(path, content, 0644))

	cfg := Default()
	require.NoError(t, loadFromFile(path, cfg))

	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "out", cfg.Report.OutputDir)
	assert.Equal(t, 11, cfg.Report.ConcentrationPoints)
	// Fields absent from the file retain defaults.
	assert.Equal(t, "csv", cfg.Report.Format)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "bad level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "logging level",
		},
		{
			name:    "bad format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "logging format",
		},
		{
			name:    "file output without path",
			mutate:  func(c *Config) { c.Logging.Output = "file"; c.Logging.FilePath = "" },
			wantErr: "requires a file path",
		},
		{
			name:    "bad report format",
			mutate:  func(c *Config) { c.Report.Format = "pdf" },
			wantErr: "report format",
		},
		{
			name:    "empty output dir",
			mutate:  func(c *Config) { c.Report.OutputDir = "" },
			wantErr: "output directory",
		},
		{
			name:    "too few concentration points",
			mutate:  func(c *Config) { c.Report.ConcentrationPoints = 1 },
			wantErr: "concentration points",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
