package likelihood

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"obslike/internal/observation"
)

const (
	// diagTol bounds the accepted deviation of correlation diagonals
	// from one.
	diagTol = 1e-9
	// psdTol is the negative-eigenvalue tolerance below which a
	// correlation matrix is rejected.
	psdTol = 1e-9
)

// validateParams checks a parameter vector against the store's dimensions
// and the configured families. Shape mismatches are fatal; domain problems
// come back wrapped in ErrInvalidParams.
func (e *Engine) validateParams(p Params) error {
	d := e.store.Dims()

	if len(p.Loc) != d {
		return &observation.ShapeError{
			Field:   "loc",
			Message: fmt.Sprintf("expected length %d, got %d", d, len(p.Loc)),
		}
	}
	if len(p.Scale) != d {
		return &observation.ShapeError{
			Field:   "scale",
			Message: fmt.Sprintf("expected length %d, got %d", d, len(p.Scale)),
		}
	}
	if p.Shape == nil {
		if e.needShape {
			return &observation.ShapeError{
				Field:   "shape",
				Message: "configured families require shape parameters",
			}
		}
	} else if len(p.Shape) != d {
		return &observation.ShapeError{
			Field:   "shape",
			Message: fmt.Sprintf("expected length %d, got %d", d, len(p.Shape)),
		}
	}

	for dim := 0; dim < d; dim++ {
		if !e.trueFams[dim].ParamsOK(p.Loc[dim], p.Scale[dim], p.shape(dim)) {
			return fmt.Errorf("dimension %d: %s parameters out of domain (loc=%g scale=%g shape=%g): %w",
				dim, e.trueFams[dim].Name(), p.Loc[dim], p.Scale[dim], p.shape(dim), ErrInvalidParams)
		}
	}

	return validateCorrelation(p.Corr, d)
}

// validateCorrelation checks symmetry conventions, the unit diagonal and
// positive semi-definiteness of the correlation matrix.
func validateCorrelation(corr *mat.SymDense, d int) error {
	if corr == nil {
		if d == 1 {
			return nil
		}
		return &observation.ShapeError{
			Field:   "correlation",
			Message: fmt.Sprintf("matrix required for %d dimensions", d),
		}
	}
	if n := corr.SymmetricDim(); n != d {
		return &observation.ShapeError{
			Field:   "correlation",
			Message: fmt.Sprintf("expected %dx%d matrix, got %dx%d", d, d, n, n),
		}
	}

	for i := 0; i < d; i++ {
		if math.Abs(corr.At(i, i)-1) > diagTol {
			return fmt.Errorf("correlation diagonal entry %d is %g, want 1: %w", i, corr.At(i, i), ErrInvalidParams)
		}
		for j := i + 1; j < d; j++ {
			if r := corr.At(i, j); math.Abs(r) > 1+diagTol || math.IsNaN(r) {
				return fmt.Errorf("correlation entry (%d,%d) is %g, outside [-1,1]: %w", i, j, r, ErrInvalidParams)
			}
		}
	}

	var eig mat.EigenSym
	if !eig.Factorize(corr, false) {
		return fmt.Errorf("correlation eigendecomposition failed: %w", ErrInvalidParams)
	}
	for _, ev := range eig.Values(nil) {
		if ev < -psdTol {
			return fmt.Errorf("correlation matrix has negative eigenvalue %g: %w", ev, ErrInvalidParams)
		}
	}
	return nil
}
