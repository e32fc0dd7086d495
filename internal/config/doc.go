// Package config loads and validates application configuration.
//
// Two kinds of configuration live here. Config is the ambient application
// configuration (logging and report output), loaded from built-in defaults,
// then an optional YAML file, then COPULA_* environment variables, with
// later sources taking precedence. FitProfile is a self-contained YAML
// description of one estimation run (family, method, optimizer settings,
// simulation and export choices) that the copula-fit command accepts as an
// alternative to command-line flags.
package config
