package likelihood

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// cdfClamp keeps copula-transformed coordinates finite by bounding CDF
// values away from 0 and 1 before the probit transform.
const cdfClamp = 1e-15

var unitNormal = distuv.Normal{Mu: 0, Sigma: 1}

// probit maps a cumulative probability into standard-normal space.
func probit(p float64) float64 {
	if p < cdfClamp {
		p = cdfClamp
	} else if p > 1-cdfClamp {
		p = 1 - cdfClamp
	}
	return unitNormal.Quantile(p)
}

// subCorrelation extracts the correlation sub-matrix of the given
// dimensions. Marginalizing a Gaussian copula over missing dimensions
// reduces exactly to this restriction.
func subCorrelation(corr *mat.SymDense, dims []int) *mat.SymDense {
	k := len(dims)
	sub := mat.NewSymDense(k, nil)
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			sub.SetSym(i, j, corr.At(dims[i], dims[j]))
		}
	}
	return sub
}

// copulaFactor returns the density ratio phi_R(z) / prod_i phi(z_i) for
// the transformed coordinates z under the factorized sub-correlation
// matrix. This is the copula density correction that re-couples the
// independent marginals.
func copulaFactor(chol *mat.Cholesky, z []float64) float64 {
	k := len(z)
	if k <= 1 {
		return 1
	}

	zVec := mat.NewVecDense(k, z)
	w := mat.NewVecDense(k, nil)
	if err := chol.SolveVecTo(w, zVec); err != nil {
		return 0
	}

	quad := mat.Dot(zVec, w)
	var sumSq float64
	for _, zi := range z {
		sumSq += zi * zi
	}

	exponent := -0.5 * (chol.LogDet() + quad - sumSq)
	factor := math.Exp(exponent)
	if math.IsNaN(factor) || math.IsInf(factor, 0) {
		return 0
	}
	return factor
}
