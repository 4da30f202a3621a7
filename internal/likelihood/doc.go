// Package likelihood computes per-observation joint densities for
// correlated multivariate data with heteroscedastic measurement errors and
// missing cells.
//
// The engine couples heterogeneous marginal families through a Gaussian
// copula: each dimension's observed value is mapped into standard-normal
// space via Phi^-1(F(y)), the transformed vector is weighted by the
// multivariate-normal density under the candidate correlation matrix, and
// the standard-normal factors are divided back out. Cells with nonzero
// measurement uncertainty use the error-convolved marginal (an adaptive
// quadrature over the unobserved true value) in place of the point
// density; missing cells are marginalized by omission, reducing the joint
// to the sub-correlation matrix of the observed dimensions.
//
// # Components
//
//   - types.go:     Params, Diagnostics, sentinel errors
//   - validate.go:  parameter-vector and correlation-matrix validation
//   - engine.go:    the Engine orchestrator and row evaluation
//   - copula.go:    copula transform and sub-matrix normal density
//   - convolve.go:  error-kernel convolution of marginal pdf/cdf
//   - objective.go: zero-guarded negative log-likelihood helper
//
// # Usage
//
//	store, err := observation.Build(table, "survey")
//	if err != nil {
//	    return err
//	}
//	engine, err := likelihood.NewEngine(store, "lognorm", slog.Default())
//	if err != nil {
//	    return err
//	}
//	p, err := engine.Density(ctx, likelihood.Params{
//	    Loc:   []float64{0, 2},
//	    Scale: []float64{1, 3},
//	    Shape: []float64{0.5, 1.5},
//	    Corr:  corr,
//	})
//
// A typical caller is a numerical optimizer iterating over candidate
// parameter vectors; the engine therefore absorbs numerical and
// parameter-domain problems into the result stream (zeros or the
// ErrInvalidParams sentinel) instead of failing, and reserves hard errors
// for structural shape mismatches.
//
// Each Density call is a pure function of its arguments and the immutable
// store: the engine keeps no state across calls and is safe for concurrent
// use.
package likelihood
