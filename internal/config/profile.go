package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

var profileValidator = validator.New()

// FitProfile is a declarative description of one estimation run, loaded
// from YAML. It covers everything copula-fit would otherwise take from
// flags: the model, the estimation settings, and what to do with the
// fitted result.
type FitProfile struct {
	Family  string    `yaml:"family" validate:"required,oneof=clayton frank gaussian independence"`
	Dim     int       `yaml:"dim" validate:"required,gte=2"`
	Method  string    `yaml:"method" validate:"required,oneof=mpl itau irho"`
	Ties    string    `yaml:"ties" validate:"required,oneof=average min max dense ordinal"`
	EstVar  bool      `yaml:"est_var"`
	Verbose int       `yaml:"verbose" validate:"gte=0"`
	// X0 overrides the family's starting guess for likelihood optimization.
	X0 []float64 `yaml:"x0"`

	Optimizer OptimizerProfile `yaml:"optimizer"`

	// Compare fits every bundled family that supports Dim and ranks them
	// by AIC instead of fitting Family alone.
	Compare bool `yaml:"compare"`

	// Simulate draws this many observations from the fitted model; zero
	// disables simulation. Seed below zero leaves the draw unseeded.
	Simulate int   `yaml:"simulate" validate:"gte=0"`
	Seed     int64 `yaml:"seed"`

	Export string `yaml:"export" validate:"required,oneof=csv xlsx both none"`
}

// OptimizerProfile mirrors the optimizer settings of the copula package.
// Zero values fall back to the package defaults.
type OptimizerProfile struct {
	MaxIterations int     `yaml:"max_iterations" validate:"gte=0"`
	MaxFuncEvals  int     `yaml:"max_func_evals" validate:"gte=0"`
	Tolerance     float64 `yaml:"tolerance" validate:"gte=0"`
	MultiStart    int     `yaml:"multi_start" validate:"gte=0"`
}

// DefaultProfile returns a bivariate maximum pseudo-likelihood run with
// CSV export and no simulation.
func DefaultProfile() *FitProfile {
	return &FitProfile{
		Family:  "gaussian",
		Dim:     2,
		Method:  "mpl",
		Ties:    "average",
		Verbose: 1,
		Seed:    -1,
		Export:  "csv",
	}
}

// LoadProfile reads and validates a fit profile, overlaying the YAML file
// onto DefaultProfile so partial profiles stay usable.
func LoadProfile(path string) (*FitProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fit profile: %w", err)
	}

	profile := DefaultProfile()
	if err := yaml.Unmarshal(data, profile); err != nil {
		return nil, fmt.Errorf("parse fit profile %s: %w", path, err)
	}
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("fit profile %s: %w", path, err)
	}
	return profile, nil
}

// Validate checks field constraints plus the cross-field rules the struct
// tags cannot express.
func (p *FitProfile) Validate() error {
	if err := profileValidator.Struct(p); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if p.Family == "frank" && p.Dim != 2 {
		return fmt.Errorf("frank copula supports dim=2 only, got %d", p.Dim)
	}
	return nil
}
