package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the complete application configuration.
type Config struct {
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Report  ReportConfig  `yaml:"report" envconfig:"REPORT"`
}

// LoggingConfig controls the slog handler built by the infrastructure
// package.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// ReportConfig controls where and how fit reports are written.
type ReportConfig struct {
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR"`
	Format    string `yaml:"format" envconfig:"FORMAT"`
	// ConcentrationPoints is the number of grid points sampled when
	// tabulating the tail concentration function for a report.
	ConcentrationPoints int `yaml:"concentration_points" envconfig:"CONCENTRATION_POINTS"`
}

// Load builds the configuration by layering sources: defaults first, then
// an optional YAML file, then COPULA_* environment variables. Later
// sources win.
func Load() (*Config, error) {
	cfg := Default()

	if path := findConfigFile(); path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process("COPULA", cfg); err != nil {
		return nil, fmt.Errorf("load config from environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFromFile overlays YAML file values onto cfg.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// findConfigFile returns the first config file found in the conventional
// locations, or "" when none exists.
func findConfigFile() string {
	locations := []string{
		"copulakit.yaml",
		"configs/copulakit.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

func (c *Config) validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %q", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid logging format: %q", c.Logging.Format)
	}

	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid logging output: %q", c.Logging.Output)
	}
	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return fmt.Errorf("logging output %q requires a file path", c.Logging.Output)
	}

	switch c.Report.Format {
	case "csv", "xlsx", "both":
	default:
		return fmt.Errorf("invalid report format: %q", c.Report.Format)
	}
	if c.Report.OutputDir == "" {
		return fmt.Errorf("report output directory must not be empty")
	}
	if c.Report.ConcentrationPoints < 2 {
		return fmt.Errorf("report concentration points must be at least 2, got %d", c.Report.ConcentrationPoints)
	}
	return nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "text",
			Output:   "console",
			FilePath: "logs/copulakit.log",
		},
		Report: ReportConfig{
			OutputDir:           "reports",
			Format:              "csv",
			ConcentrationPoints: 21,
		},
	}
}
