package likelihood

import (
	"fmt"
	"math"
)

// NegLogLikelihood folds a density result into the mean negative
// log-likelihood over rows, the objective shape external optimizers
// minimize. Zero-density rows would poison the sum through log(0); up to
// maxZeroRows of them are skipped (a partial-sum objective over the
// remaining rows), beyond that the objective is invalid and
// ErrTooManyZeroRows comes back.
func NegLogLikelihood(densities []float64, maxZeroRows int) (float64, error) {
	if len(densities) == 0 {
		return 0, fmt.Errorf("empty density result")
	}

	var sum float64
	zeros := 0
	for _, p := range densities {
		if p <= 0 {
			zeros++
			continue
		}
		sum -= math.Log(p)
	}
	if zeros > maxZeroRows {
		return 0, fmt.Errorf("%d of %d rows have zero density: %w", zeros, len(densities), ErrTooManyZeroRows)
	}
	return sum / float64(len(densities)), nil
}
