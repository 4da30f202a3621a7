// Package config carries the tuning knobs of the likelihood engine:
// quadrature tolerances, the per-integration interval budget, row
// evaluation concurrency, and diagnostic verbosity. None of these change
// the semantics of a density evaluation, only its precision/latency
// trade-off and its log output.
//
// Configuration resolves in the usual order: built-in defaults, then an
// optional YAML file, then OBSLIKE_* environment variables.
package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Engine contains the engine tuning configuration.
type Engine struct {
	// Quadrature controls the adaptive error-convolution integrals.
	Quadrature QuadratureConfig `yaml:"quadrature" envconfig:"QUADRATURE"`

	// MaxConcurrency bounds the number of rows evaluated in parallel per
	// density call. Values below 1 evaluate sequentially.
	MaxConcurrency int `yaml:"max_concurrency" envconfig:"MAX_CONCURRENCY"`

	// Verbosity adjusts diagnostic logging: negative silences integration
	// warnings, zero logs them at warn level, positive adds per-call
	// summaries.
	Verbosity int `yaml:"verbosity" envconfig:"VERBOSITY"`
}

// QuadratureConfig contains the adaptive integration budget.
type QuadratureConfig struct {
	RelTol       float64 `yaml:"rel_tol" envconfig:"REL_TOL"`
	AbsTol       float64 `yaml:"abs_tol" envconfig:"ABS_TOL"`
	MaxIntervals int     `yaml:"max_intervals" envconfig:"MAX_INTERVALS"`
}

// Default returns the built-in engine configuration.
func Default() Engine {
	return Engine{
		Quadrature: QuadratureConfig{
			RelTol:       1e-8,
			AbsTol:       1e-10,
			MaxIntervals: 64,
		},
		MaxConcurrency: 4,
		Verbosity:      0,
	}
}

// Load reads configuration from an optional YAML file and then applies
// OBSLIKE_* environment overrides. A missing file is not an error; the
// defaults simply stand.
func Load(path string) (Engine, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := envconfig.Process("OBSLIKE", &cfg); err != nil {
		return cfg, fmt.Errorf("process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// FromEnv resolves configuration from defaults and environment only.
func FromEnv() (Engine, error) {
	return Load("")
}

// Validate checks the configuration for usable values.
func (e Engine) Validate() error {
	if e.Quadrature.RelTol <= 0 && e.Quadrature.AbsTol <= 0 {
		return fmt.Errorf("quadrature tolerances must not both be non-positive")
	}
	if e.Quadrature.MaxIntervals < 1 {
		return fmt.Errorf("quadrature max_intervals must be at least 1, got %d", e.Quadrature.MaxIntervals)
	}
	return nil
}
