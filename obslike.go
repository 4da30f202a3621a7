// Package obslike computes maximum-likelihood statistics for multivariate
// observational data whose components carry heteroscedastic measurement
// errors, are mutually correlated through a Gaussian copula, and may be
// partially missing.
//
// The package is the public face of the module; the implementation lives
// in the internal packages:
//
//   - internal/observation: the immutable value/uncertainty store
//   - internal/dist:        marginal and error-kernel families
//   - internal/quadrature:  adaptive error-convolution integration
//   - internal/likelihood:  the density-evaluation engine
//   - internal/simulate:    seeded synthetic-data generators
//
// # Usage
//
// Build a store from a table following the v{i}/e_v{i} column contract,
// bind an engine to it, and evaluate candidate population parameters —
// typically inside an external optimizer's inner loop:
//
//	table, err := obslike.LoadCSV("galaxies.csv")
//	if err != nil {
//	    return err
//	}
//	store, err := obslike.Build(table, "galaxies")
//	if err != nil {
//	    return err
//	}
//	engine, err := obslike.NewEngine(store, "lognorm", nil)
//	if err != nil {
//	    return err
//	}
//	densities, err := engine.Density(ctx, obslike.Params{
//	    Loc:   []float64{0, 2},
//	    Scale: []float64{1, 3},
//	    Shape: []float64{0.5, 1.5},
//	    Corr:  corr,
//	})
//	if err != nil {
//	    return err
//	}
//	nll, err := obslike.NegLogLikelihood(densities, 0)
//
// Zero densities signal underflow or out-of-support parameter regions,
// not necessarily impossibility; NegLogLikelihood guards them before the
// logarithm.
package obslike

import (
	"obslike/internal/config"
	"obslike/internal/likelihood"
	"obslike/internal/observation"
)

// Core types, re-exported for callers outside the module.
type (
	// Table is the column-oriented tabular input form.
	Table = observation.Table
	// Store is the immutable observation store.
	Store = observation.Store
	// ShapeError reports malformed tables or parameter vectors.
	ShapeError = observation.ShapeError
	// Engine evaluates per-observation joint densities.
	Engine = likelihood.Engine
	// Params is the population parameter vector.
	Params = likelihood.Params
	// Diagnostics is the numerical side channel of a density call.
	Diagnostics = likelihood.Diagnostics
	// EngineConfig tunes quadrature budgets, concurrency and verbosity.
	EngineConfig = config.Engine
)

// Sentinel errors of the evaluation path.
var (
	// ErrInvalidParams marks a recoverable parameter-domain failure.
	ErrInvalidParams = likelihood.ErrInvalidParams
	// ErrTooManyZeroRows marks an objective invalidated by underflow.
	ErrTooManyZeroRows = likelihood.ErrTooManyZeroRows
)

// Build validates a table and constructs an immutable store.
var Build = observation.Build

// LoadCSV reads a CSV file into a Table.
var LoadCSV = observation.LoadCSV

// LoadExcel reads one Excel sheet into a Table.
var LoadExcel = observation.LoadExcel

// NewEngine binds a likelihood engine to a store with the named marginal
// family on every dimension.
var NewEngine = likelihood.NewEngine

// NegLogLikelihood folds a density result into the zero-guarded mean
// negative log-likelihood.
var NegLogLikelihood = likelihood.NegLogLikelihood

// DefaultConfig returns the built-in engine tuning configuration.
var DefaultConfig = config.Default

// LoadConfig resolves engine tuning from a YAML file and OBSLIKE_*
// environment variables.
var LoadConfig = config.Load
