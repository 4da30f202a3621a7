package likelihood

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"obslike/internal/config"
	"obslike/internal/dist"
	"obslike/internal/observation"
)

func buildStore(t *testing.T, columns []string, rows [][]float64) *observation.Store {
	t.Helper()
	store, err := observation.Build(observation.Table{Columns: columns, Rows: rows}, "test")
	require.NoError(t, err)
	return store
}

func corr2(rho float64) *mat.SymDense {
	return mat.NewSymDense(2, []float64{1, rho, rho, 1})
}

// closedForm2D is the analytic copula joint density for two exact,
// fully-observed cells: the marginal densities times the bivariate-normal
// density of the probit-transformed coordinates, divided by the
// standard-normal factors.
func closedForm2D(t *testing.T, fams [2]dist.Family, y, loc, scale, shape [2]float64, rho float64) float64 {
	t.Helper()
	var z, pdf [2]float64
	for j := 0; j < 2; j++ {
		pdf[j] = fams[j].PDF(y[j], loc[j], scale[j], shape[j])
		z[j] = probit(fams[j].CDF(y[j], loc[j], scale[j], shape[j]))
	}
	det := 1 - rho*rho
	biv := math.Exp(-(z[0]*z[0]-2*rho*z[0]*z[1]+z[1]*z[1])/(2*det)) / (2 * math.Pi * math.Sqrt(det))
	phi := func(x float64) float64 { return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi) }
	return pdf[0] * pdf[1] * biv / (phi(z[0]) * phi(z[1]))
}

func TestDensityExactPathMatchesClosedForm(t *testing.T) {
	// Exact cells, no missingness: the no-integration fast path must equal
	// the copula formula evaluated directly.
	rows := [][]float64{
		{0.8, 4.0, 0, 0},
		{2.3, 9.5, 0, 0},
		{0.1, 2.2, 0, 0},
	}
	store := buildStore(t, []string{"v0", "v1", "e_v0", "e_v1"}, rows)

	engine, err := NewEngine(store, "lognorm", nil)
	require.NoError(t, err)

	rho := 0.6
	p := Params{
		Loc:   []float64{0, 1},
		Scale: []float64{1, 2},
		Shape: []float64{0.5, 1.0},
		Corr:  corr2(rho),
	}
	densities, err := engine.Density(context.Background(), p)
	require.NoError(t, err)
	require.Len(t, densities, 3)

	fams := [2]dist.Family{dist.LogNormal{}, dist.LogNormal{}}
	for i, row := range rows {
		want := closedForm2D(t, fams,
			[2]float64{row[0], row[1]},
			[2]float64{p.Loc[0], p.Loc[1]},
			[2]float64{p.Scale[0], p.Scale[1]},
			[2]float64{p.Shape[0], p.Shape[1]}, rho)
		assert.InEpsilon(t, want, densities[i], 1e-10, "row %d", i)
	}
}

func TestDensityConvergesToPointDensityAsUncertaintyShrinks(t *testing.T) {
	// One dimension, normal marginal: the convolved density must approach
	// the point density as the uncertainty goes to zero.
	y := 0.3
	exactStore := buildStore(t, []string{"v0", "e_v0"}, [][]float64{{y, 0}})
	exactEngine, err := NewEngine(exactStore, "norm", nil)
	require.NoError(t, err)

	p := Params{Loc: []float64{0}, Scale: []float64{1}}
	exact, err := exactEngine.Density(context.Background(), p)
	require.NoError(t, err)

	prevGap := math.Inf(1)
	for _, sigma := range []float64{0.5, 0.1, 0.01, 1e-4} {
		store := buildStore(t, []string{"v0", "e_v0"}, [][]float64{{y, sigma}})
		engine, err := NewEngine(store, "norm", nil)
		require.NoError(t, err)

		got, err := engine.Density(context.Background(), p)
		require.NoError(t, err)

		gap := math.Abs(got[0] - exact[0])
		assert.Less(t, gap, prevGap, "sigma=%g must tighten the gap", sigma)
		prevGap = gap
	}
	assert.Less(t, prevGap, 1e-6)
}

func TestDensityConvolutionMatchesAnalyticNormalCase(t *testing.T) {
	// Normal marginal plus normal noise has a closed form: the observed
	// value is N(loc, sqrt(scale^2 + sigma^2)) in the single-dimension
	// case, so the engine's quadrature can be checked exactly.
	loc, scale, sigma := 0.5, 1.2, 0.7
	for _, y := range []float64{-1.0, 0.5, 2.7} {
		store := buildStore(t, []string{"v0", "e_v0"}, [][]float64{{y, sigma}})
		engine, err := NewEngine(store, "norm", nil)
		require.NoError(t, err)

		got, err := engine.Density(context.Background(), Params{Loc: []float64{loc}, Scale: []float64{scale}})
		require.NoError(t, err)

		want := dist.Normal{}.PDF(y, loc, math.Hypot(scale, sigma), 0)
		assert.InEpsilon(t, want, got[0], 1e-6, "y=%g", y)
	}
}

func TestDensityMarginalizesMissingBySubMatrix(t *testing.T) {
	// Marking a dimension missing must equal evaluating the joint over
	// the observed dimensions only.
	p3 := Params{
		Loc:   []float64{0, 1, 0.5},
		Scale: []float64{1, 2, 1.5},
		Shape: []float64{0.5, 1.0, 0.8},
		Corr: mat.NewSymDense(3, []float64{
			1, 0.5, 0.2,
			0.5, 1, 0.4,
			0.2, 0.4, 1,
		}),
	}
	nan := math.NaN()

	// Row observes dims 0 and 1; dim 2 is missing.
	store3 := buildStore(t,
		[]string{"v0", "v1", "v2", "e_v0", "e_v1", "e_v2"},
		[][]float64{{0.8, 4.0, nan, 0, 0, 0}})
	engine3, err := NewEngine(store3, "lognorm", nil)
	require.NoError(t, err)
	got3, err := engine3.Density(context.Background(), p3)
	require.NoError(t, err)

	// The same row evaluated in a two-dimensional store under the
	// sub-correlation matrix of the observed dimensions.
	store2 := buildStore(t,
		[]string{"v0", "v1", "e_v0", "e_v1"},
		[][]float64{{0.8, 4.0, 0, 0}})
	engine2, err := NewEngine(store2, "lognorm", nil)
	require.NoError(t, err)
	got2, err := engine2.Density(context.Background(), Params{
		Loc:   p3.Loc[:2],
		Scale: p3.Scale[:2],
		Shape: p3.Shape[:2],
		Corr:  corr2(0.5),
	})
	require.NoError(t, err)

	assert.InEpsilon(t, got2[0], got3[0], 1e-12)
}

func TestDensitySingleObservedDimensionDropsCopulaFactor(t *testing.T) {
	// With only one observed dimension the copula correction cancels and
	// the density is the bare marginal.
	nan := math.NaN()
	store := buildStore(t,
		[]string{"v0", "v1", "e_v0", "e_v1"},
		[][]float64{{nan, 4.0, 0, 0}})
	engine, err := NewEngine(store, "lognorm", nil)
	require.NoError(t, err)

	p := Params{
		Loc:   []float64{0, 1},
		Scale: []float64{1, 2},
		Shape: []float64{0.5, 1.0},
		Corr:  corr2(0.9),
	}
	got, err := engine.Density(context.Background(), p)
	require.NoError(t, err)

	want := dist.LogNormal{}.PDF(4.0, 1, 2, 1.0)
	assert.InEpsilon(t, want, got[0], 1e-12)
}

func TestDensityAllMissingRowIsOne(t *testing.T) {
	nan := math.NaN()
	store := buildStore(t,
		[]string{"v0", "v1", "e_v0", "e_v1"},
		[][]float64{
			{nan, nan, 0, 0},
			{0.8, 4.0, 0, 0},
		})
	engine, err := NewEngine(store, "lognorm", nil)
	require.NoError(t, err)

	p := Params{
		Loc:   []float64{0, 1},
		Scale: []float64{1, 2},
		Shape: []float64{0.5, 1.0},
		Corr:  corr2(0.3),
	}
	got, err := engine.Density(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, 1.0, got[0], "uninformative row must not penalize the likelihood")
	assert.Greater(t, got[1], 0.0)
}

func TestDensityOutOfSupportRowUnderflowsToZero(t *testing.T) {
	// A value below the lognormal location cannot occur; the row reports
	// zero density, not an error.
	store := buildStore(t, []string{"v0", "e_v0"}, [][]float64{{-5.0, 0}})
	engine, err := NewEngine(store, "lognorm", nil)
	require.NoError(t, err)

	got, diag, err := engine.DensityDiagnostics(context.Background(), Params{
		Loc:   []float64{0},
		Scale: []float64{1},
		Shape: []float64{0.5},
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, got[0])
	assert.Equal(t, 1, diag.ZeroRows)
}

func TestDensityParameterValidation(t *testing.T) {
	store := buildStore(t,
		[]string{"v0", "v1", "e_v0", "e_v1"},
		[][]float64{{0.8, 4.0, 0, 0}})
	engine, err := NewEngine(store, "lognorm", nil)
	require.NoError(t, err)
	ctx := context.Background()

	valid := Params{
		Loc:   []float64{0, 1},
		Scale: []float64{1, 2},
		Shape: []float64{0.5, 1.0},
		Corr:  corr2(0.5),
	}

	t.Run("valid params pass", func(t *testing.T) {
		_, err := engine.Density(ctx, valid)
		assert.NoError(t, err)
	})

	t.Run("shape mismatches are fatal", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(*Params)
		}{
			{"short loc", func(p *Params) { p.Loc = p.Loc[:1] }},
			{"short scale", func(p *Params) { p.Scale = p.Scale[:1] }},
			{"short shape", func(p *Params) { p.Shape = p.Shape[:1] }},
			{"missing shape for shaped family", func(p *Params) { p.Shape = nil }},
			{"missing correlation", func(p *Params) { p.Corr = nil }},
			{"wrong correlation size", func(p *Params) { p.Corr = mat.NewSymDense(3, nil) }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				p := valid
				tt.mutate(&p)
				_, err := engine.Density(ctx, p)
				require.Error(t, err)
				var se *observation.ShapeError
				assert.ErrorAs(t, err, &se)
			})
		}
	})

	t.Run("domain problems are the recoverable sentinel", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(*Params)
		}{
			{"negative eigenvalue", func(p *Params) { p.Corr = corr2(1.2) }},
			{"broken diagonal", func(p *Params) {
				c := corr2(0.5)
				c.SetSym(0, 0, 1.5)
				p.Corr = c
			}},
			{"non-positive scale", func(p *Params) { p.Scale = []float64{1, -2} }},
			{"non-positive shape", func(p *Params) { p.Shape = []float64{0.5, 0} }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				p := valid
				tt.mutate(&p)
				_, err := engine.Density(ctx, p)
				assert.ErrorIs(t, err, ErrInvalidParams)
			})
		}
	})
}

func TestDensityPreservesRowOrderUnderConcurrency(t *testing.T) {
	// Many rows with distinct values; order of results must match the
	// store regardless of evaluation order.
	n := 200
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = []float64{0.1 + 0.05*float64(i), 0}
	}
	store := buildStore(t, []string{"v0", "e_v0"}, rows)
	engine, err := NewEngine(store, "norm", nil)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.MaxConcurrency = 8
	require.NoError(t, engine.SetConfig(cfg))

	p := Params{Loc: []float64{0}, Scale: []float64{1}}
	got, err := engine.Density(context.Background(), p)
	require.NoError(t, err)

	for i, row := range rows {
		want := dist.Normal{}.PDF(row[0], 0, 1, 0)
		assert.InEpsilon(t, want, got[i], 1e-12, "row %d", i)
	}
}

func TestDensityHonorsContextCancellation(t *testing.T) {
	store := buildStore(t, []string{"v0", "e_v0"}, [][]float64{{0.5, 0}, {0.7, 0}})
	engine, err := NewEngine(store, "norm", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = engine.Density(ctx, Params{Loc: []float64{0}, Scale: []float64{1}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewEngineConstruction(t *testing.T) {
	store := buildStore(t, []string{"v0", "v1", "e_v0", "e_v1"}, [][]float64{{1, 2, 0, 0}})

	t.Run("unknown family fails", func(t *testing.T) {
		_, err := NewEngine(store, "cauchy", nil)
		assert.Error(t, err)
	})

	t.Run("nil store fails", func(t *testing.T) {
		_, err := NewEngine(nil, "norm", nil)
		assert.Error(t, err)
	})

	t.Run("per-dimension families", func(t *testing.T) {
		engine, err := NewEngine(store, "norm", nil)
		require.NoError(t, err)
		require.NoError(t, engine.SetTrueFamilies("norm", "lognorm"))
		assert.Error(t, engine.SetTrueFamilies("norm"), "family count must match dimensions")
		assert.Error(t, engine.SetTrueFamilies("norm", "gamma"))
	})

	t.Run("shaped family rejected as error kernel", func(t *testing.T) {
		engine, err := NewEngine(store, "norm", nil)
		require.NoError(t, err)
		assert.Error(t, engine.SetErrorFamily("lognorm"))
		assert.NoError(t, engine.SetErrorFamily("norm"))
	})
}

func TestMixedFamiliesPerDimension(t *testing.T) {
	// Heterogeneous marginals coupled through one correlation matrix:
	// normal in dimension 0, lognormal in dimension 1.
	store := buildStore(t,
		[]string{"v0", "v1", "e_v0", "e_v1"},
		[][]float64{{0.4, 3.2, 0, 0}})
	engine, err := NewEngine(store, "norm", nil)
	require.NoError(t, err)
	require.NoError(t, engine.SetTrueFamilies("norm", "lognorm"))

	rho := 0.7
	p := Params{
		Loc:   []float64{0, 1},
		Scale: []float64{1, 2},
		Shape: []float64{0, 0.8},
		Corr:  corr2(rho),
	}
	got, err := engine.Density(context.Background(), p)
	require.NoError(t, err)

	fams := [2]dist.Family{dist.Normal{}, dist.LogNormal{}}
	want := closedForm2D(t, fams,
		[2]float64{0.4, 3.2},
		[2]float64{0, 1},
		[2]float64{1, 2},
		[2]float64{0, 0.8}, rho)
	assert.InEpsilon(t, want, got[0], 1e-10)
}
