package likelihood

import (
	"math"

	"obslike/internal/dist"
	"obslike/internal/quadrature"
)

// kernelHalfWidth is the window, in units of the measurement uncertainty,
// outside which the Gaussian error kernel carries no usable mass.
const kernelHalfWidth = 8.0

// convolved evaluates the observed-value marginal pdf and cdf of one
// uncertain cell: the true-value density integrated against the error
// kernel. The integration window is the intersection of the marginal's
// support with [y - 8*sigma, y + 8*sigma]; outside the window the kernel
// cdf saturates, so the marginal mass below the window enters the cdf in
// closed form.
func convolved(fam, kern dist.Family, y, sigma, loc, scale, shape float64, opts quadrature.Options) (pdf, cdf float64, converged bool) {
	lo, hi := fam.Support(loc, scale, shape)
	a := math.Max(lo, y-kernelHalfWidth*sigma)
	b := math.Min(hi, y+kernelHalfWidth*sigma)

	if a >= b {
		// The window misses the support entirely: the observed value is
		// either far below every possible true value or far above it.
		if lo >= y {
			return 0, 0, true
		}
		return 0, 1, true
	}

	pdfRes := quadrature.Integrate(func(t float64) float64 {
		return fam.PDF(t, loc, scale, shape) * kern.PDF(y, t, sigma, 0)
	}, a, b, opts)

	cdfRes := quadrature.Integrate(func(t float64) float64 {
		return fam.PDF(t, loc, scale, shape) * kern.CDF(y, t, sigma, 0)
	}, a, b, opts)

	// True values below the window all but certainly produce observations
	// under y; their mass contributes directly.
	cdf = fam.CDF(a, loc, scale, shape) + cdfRes.Value
	if cdf < 0 {
		cdf = 0
	} else if cdf > 1 {
		cdf = 1
	}

	pdf = pdfRes.Value
	if pdf < 0 || math.IsNaN(pdf) {
		pdf = 0
	}

	return pdf, cdf, pdfRes.Converged && cdfRes.Converged
}
