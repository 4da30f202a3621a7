// Package simulate generates synthetic observational datasets from known
// population parameters: correlated draws through a Gaussian copula,
// additive measurement noise, and logistic missing-at-random masking.
//
// Every generator takes an explicit seed; there is no process-wide random
// state. The package exists for scenario tests and calibration studies,
// outside the likelihood core.
package simulate

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"

	"obslike/internal/dist"
	"obslike/internal/observation"
)

// Config describes one synthetic population.
type Config struct {
	// N is the number of samples to draw.
	N int
	// Family names the marginal family applied to every dimension.
	Family string
	// Loc, Scale, Shape are the per-dimension population parameters.
	Loc, Scale, Shape []float64
	// Noise holds the per-dimension measurement-noise standard deviation;
	// zero disables noise for that dimension.
	Noise []float64
	// Corr is the copula correlation matrix, D x D.
	Corr *mat.SymDense
	// Seed feeds the random source; equal seeds reproduce datasets.
	Seed uint64
}

// Dataset holds generated samples. True values are kept alongside the
// noisy observed values so tests can evaluate against either.
type Dataset struct {
	// True and Observed are N x D; Observed is True plus noise, with NaN
	// where a cell has been masked.
	True, Observed [][]float64
	// Noise is the per-dimension noise level used during generation.
	Noise []float64
}

// Generate draws N correlated samples through the Gaussian copula: latent
// x ~ MVN(0, Corr), mapped dimension-wise through Quantile(Phi(x)), then
// perturbed with additive Gaussian noise.
func Generate(cfg Config) (*Dataset, error) {
	fam, err := dist.Lookup(cfg.Family)
	if err != nil {
		return nil, err
	}
	if cfg.N < 1 {
		return nil, fmt.Errorf("sample count must be positive, got %d", cfg.N)
	}
	d := len(cfg.Loc)
	if len(cfg.Scale) != d || (cfg.Shape != nil && len(cfg.Shape) != d) || len(cfg.Noise) != d {
		return nil, fmt.Errorf("parameter vectors disagree on dimension count")
	}
	if cfg.Corr == nil || cfg.Corr.SymmetricDim() != d {
		return nil, fmt.Errorf("correlation matrix must be %dx%d", d, d)
	}

	src := rand.NewSource(cfg.Seed)
	mvn, ok := distmv.NewNormal(make([]float64, d), cfg.Corr, src)
	if !ok {
		return nil, fmt.Errorf("correlation matrix is not positive definite")
	}
	stdNormal := distuv.Normal{Mu: 0, Sigma: 1, Src: src}

	ds := &Dataset{
		True:     make([][]float64, cfg.N),
		Observed: make([][]float64, cfg.N),
		Noise:    append([]float64(nil), cfg.Noise...),
	}

	x := make([]float64, d)
	for i := 0; i < cfg.N; i++ {
		mvn.Rand(x)
		truth := make([]float64, d)
		obs := make([]float64, d)
		for j := 0; j < d; j++ {
			shape := 0.0
			if cfg.Shape != nil {
				shape = cfg.Shape[j]
			}
			truth[j] = fam.Quantile(unitCDF(x[j]), cfg.Loc[j], cfg.Scale[j], shape)
			obs[j] = truth[j]
			if cfg.Noise[j] > 0 {
				obs[j] += cfg.Noise[j] * stdNormal.Rand()
			}
		}
		ds.True[i] = truth
		ds.Observed[i] = obs
	}
	return ds, nil
}

// MaskMAR masks cells missing-at-random: dimension j of a row goes
// missing with probability logistic(observed[driver[j]] - offset[j]).
// Missingness depends only on the other, observed dimension, the MAR
// mechanism. Cells whose driver is already masked stay observed.
func (ds *Dataset) MaskMAR(driver []int, offset []float64, seed uint64) error {
	d := len(ds.Noise)
	if len(driver) != d || len(offset) != d {
		return fmt.Errorf("driver and offset must have one entry per dimension")
	}
	for j, drv := range driver {
		if drv < 0 || drv >= d || drv == j {
			return fmt.Errorf("dimension %d: driver must name a different dimension, got %d", j, drv)
		}
	}

	src := rand.NewSource(seed)
	uniform := distuv.Uniform{Min: 0, Max: 1, Src: src}
	for _, row := range ds.Observed {
		// Decide from the pre-mask values so drivers stay well-defined.
		pre := append([]float64(nil), row...)
		for j, drv := range driver {
			if math.IsNaN(pre[drv]) {
				continue
			}
			if uniform.Rand() < logistic(pre[drv]-offset[j]) {
				row[j] = math.NaN()
			}
		}
	}
	return nil
}

// CompleteCases returns a copy holding only rows with no masked cells.
func (ds *Dataset) CompleteCases() *Dataset {
	out := &Dataset{Noise: append([]float64(nil), ds.Noise...)}
	for i, row := range ds.Observed {
		complete := true
		for _, v := range row {
			if math.IsNaN(v) {
				complete = false
				break
			}
		}
		if complete {
			out.Observed = append(out.Observed, append([]float64(nil), row...))
			out.True = append(out.True, append([]float64(nil), ds.True[i]...))
		}
	}
	return out
}

// Table lays the observed values out under the v{i}/e_v{i} column
// contract, ready for observation.Build. When modelNoise is false the
// uncertainty columns are zero: the dataset of a caller that ignores its
// measurement errors.
func (ds *Dataset) Table(modelNoise bool) observation.Table {
	d := len(ds.Noise)
	cols := make([]string, 0, 2*d)
	for j := 0; j < d; j++ {
		cols = append(cols, fmt.Sprintf("v%d", j))
	}
	for j := 0; j < d; j++ {
		cols = append(cols, fmt.Sprintf("e_v%d", j))
	}

	rows := make([][]float64, len(ds.Observed))
	for i, obs := range ds.Observed {
		row := make([]float64, 2*d)
		copy(row, obs)
		for j := 0; j < d; j++ {
			if modelNoise {
				row[d+j] = ds.Noise[j]
			}
		}
		rows[i] = row
	}
	return observation.Table{Columns: cols, Rows: rows}
}

func unitCDF(x float64) float64 {
	return distuv.Normal{Mu: 0, Sigma: 1}.CDF(x)
}

func logistic(x float64) float64 {
	if x > 20 {
		return 1
	}
	return math.Exp(x) / (math.Exp(x) + 1)
}
