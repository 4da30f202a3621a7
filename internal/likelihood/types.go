package likelihood

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// ErrInvalidParams marks a recoverable parameter-domain failure: a
// correlation matrix that is not positive semi-definite, or scale/shape
// values outside a family's domain. Optimizers treat it as a bad parameter
// region, not a fatal condition.
var ErrInvalidParams = errors.New("invalid population parameters")

// ErrTooManyZeroRows marks an objective rendered invalid by underflowed or
// out-of-support rows beyond the caller's tolerance.
var ErrTooManyZeroRows = errors.New("too many zero-density rows")

// Params is the population parameter vector evaluated by Density. The
// engine never retains it; a fresh vector is validated on every call.
type Params struct {
	// Loc holds the per-dimension location parameters, length D.
	Loc []float64
	// Scale holds the per-dimension scale parameters, length D.
	Scale []float64
	// Shape holds the per-dimension shape parameters. May be nil when no
	// configured family uses a shape; otherwise length D.
	Shape []float64
	// Corr is the D x D correlation matrix: symmetric, unit diagonal,
	// positive semi-definite. May be nil when D == 1.
	Corr *mat.SymDense
}

// Diagnostics summarizes the numerical side channel of one Density call.
type Diagnostics struct {
	// Convolutions is the number of error-convolution integrals evaluated.
	Convolutions int
	// NonConverged counts integrals that exhausted the interval budget;
	// their best estimates are still used.
	NonConverged int
	// ZeroRows counts observations whose density underflowed to zero.
	ZeroRows int
}

func (p Params) shape(dim int) float64 {
	if p.Shape == nil {
		return 0
	}
	return p.Shape[dim]
}
