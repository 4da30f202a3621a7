package likelihood

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"obslike/internal/config"
	"obslike/internal/dist"
	"obslike/internal/observation"
	"obslike/internal/quadrature"
)

// Engine evaluates per-observation joint densities for one immutable
// observation store under candidate population parameters. Configure it
// before the first Density call; evaluation itself is stateless and safe
// for concurrent use.
type Engine struct {
	store    *observation.Store
	trueFams []dist.Family
	errFams  []dist.Family
	logger   *slog.Logger
	cfg      config.Engine

	needShape bool
	// Unique missingness patterns of the store, fixed at construction.
	patterns map[uint64][]int
}

// NewEngine builds an engine bound to a store, with the named marginal
// family applied to every dimension and a Gaussian error kernel. A nil
// logger falls back to slog.Default. Per-dimension families and the error
// kernel can be changed with the Set methods before evaluating.
func NewEngine(store *observation.Store, trueFamily string, logger *slog.Logger) (*Engine, error) {
	if store == nil {
		return nil, &observation.ShapeError{Field: "store", Message: "store must not be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	fam, err := dist.Lookup(trueFamily)
	if err != nil {
		return nil, err
	}
	kern, _ := dist.Lookup("norm")

	d := store.Dims()
	e := &Engine{
		store:    store,
		trueFams: make([]dist.Family, d),
		errFams:  make([]dist.Family, d),
		logger:   logger,
		cfg:      config.Default(),
		patterns: make(map[uint64][]int),
	}
	for dim := 0; dim < d; dim++ {
		e.trueFams[dim] = fam
		e.errFams[dim] = kern
	}
	e.needShape = fam.NumShape() > 0

	for row := 0; row < store.Samples(); row++ {
		pattern := store.MissingPattern(row)
		if _, seen := e.patterns[pattern]; !seen {
			e.patterns[pattern] = store.ObservedDims(row)
		}
	}
	return e, nil
}

// SetTrueFamilies assigns per-dimension marginal families by name. The
// number of names must match the store's dimensions.
func (e *Engine) SetTrueFamilies(names ...string) error {
	if len(names) != e.store.Dims() {
		return &observation.ShapeError{
			Field:   "families",
			Message: fmt.Sprintf("expected %d family names, got %d", e.store.Dims(), len(names)),
		}
	}
	fams := make([]dist.Family, len(names))
	need := false
	for i, name := range names {
		fam, err := dist.Lookup(name)
		if err != nil {
			return err
		}
		fams[i] = fam
		need = need || fam.NumShape() > 0
	}
	e.trueFams = fams
	e.needShape = need
	return nil
}

// SetErrorFamily assigns the measurement-error kernel family for all
// dimensions. Only shape-free families can serve as kernels: the kernel's
// location is the unobserved true value and its scale the per-cell
// uncertainty, leaving no slot for a shape parameter.
func (e *Engine) SetErrorFamily(name string) error {
	kern, err := dist.Lookup(name)
	if err != nil {
		return err
	}
	if kern.NumShape() != 0 {
		return fmt.Errorf("family %q cannot serve as an error kernel: it requires a shape parameter", kern.Name())
	}
	for dim := range e.errFams {
		e.errFams[dim] = kern
	}
	return nil
}

// SetConfig replaces the engine tuning configuration.
func (e *Engine) SetConfig(cfg config.Engine) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.cfg = cfg
	return nil
}

// Store returns the observation store the engine is bound to.
func (e *Engine) Store() *observation.Store { return e.store }

// Density computes the joint density of every observation under the given
// population parameters, in store order. Structural mismatches return a
// *observation.ShapeError; out-of-domain parameters return a result
// wrapped in ErrInvalidParams. Underflowed rows come back as zeros, which
// callers must guard before taking logarithms.
func (e *Engine) Density(ctx context.Context, p Params) ([]float64, error) {
	densities, diag, err := e.DensityDiagnostics(ctx, p)
	if err != nil {
		return nil, err
	}
	if diag.NonConverged > 0 && e.cfg.Verbosity >= 0 {
		e.logger.WarnContext(ctx, "error convolution integrals did not converge; best estimates used",
			"non_converged", diag.NonConverged,
			"convolutions", diag.Convolutions,
		)
	}
	return densities, nil
}

// DensityDiagnostics is Density with the numerical side channel exposed:
// convolution counts, integration-budget exhaustion, and underflowed rows.
func (e *Engine) DensityDiagnostics(ctx context.Context, p Params) ([]float64, Diagnostics, error) {
	if err := e.validateParams(p); err != nil {
		return nil, Diagnostics{}, err
	}

	corr := p.Corr
	if corr == nil {
		corr = mat.NewSymDense(1, []float64{1})
	}

	factors, err := e.factorizePatterns(corr)
	if err != nil {
		return nil, Diagnostics{}, err
	}

	n := e.store.Samples()
	densities := make([]float64, n)
	rowDiags := make([]Diagnostics, n)

	g, gctx := errgroup.WithContext(ctx)
	workers := e.cfg.MaxConcurrency
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)

	for row := 0; row < n; row++ {
		row := row
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			densities[row], rowDiags[row] = e.evaluateRow(row, p, factors)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Diagnostics{}, err
	}

	var diag Diagnostics
	for _, rd := range rowDiags {
		diag.Convolutions += rd.Convolutions
		diag.NonConverged += rd.NonConverged
		diag.ZeroRows += rd.ZeroRows
	}

	if e.cfg.Verbosity > 0 {
		e.logger.InfoContext(ctx, "density evaluation complete",
			"store", e.store.Name(),
			"samples", n,
			"convolutions", diag.Convolutions,
			"non_converged", diag.NonConverged,
			"zero_rows", diag.ZeroRows,
		)
	}
	return densities, diag, nil
}

// factorizePatterns computes the Cholesky factor of the sub-correlation
// matrix of every missingness pattern present in the store. Factors are
// per-call state: they depend on the candidate correlation matrix, never
// on previous evaluations.
func (e *Engine) factorizePatterns(corr *mat.SymDense) (map[uint64]*mat.Cholesky, error) {
	// Deterministic order keeps failure messages stable.
	patterns := make([]uint64, 0, len(e.patterns))
	for pattern := range e.patterns {
		patterns = append(patterns, pattern)
	}
	sort.Slice(patterns, func(i, j int) bool { return patterns[i] < patterns[j] })

	factors := make(map[uint64]*mat.Cholesky, len(patterns))
	for _, pattern := range patterns {
		dims := e.patterns[pattern]
		if len(dims) <= 1 {
			factors[pattern] = nil
			continue
		}
		chol := new(mat.Cholesky)
		if !chol.Factorize(subCorrelation(corr, dims)) {
			return nil, fmt.Errorf("correlation matrix numerically singular for observed dimensions %v: %w",
				dims, ErrInvalidParams)
		}
		factors[pattern] = chol
	}
	return factors, nil
}

// evaluateRow computes one observation's joint density: per-dimension
// observed marginals (convolved where uncertain), the probit transform,
// and the copula factor under the row's sub-correlation matrix. Rows with
// every dimension missing carry no information and evaluate to exactly 1.
func (e *Engine) evaluateRow(row int, p Params, factors map[uint64]*mat.Cholesky) (float64, Diagnostics) {
	var diag Diagnostics

	pattern := e.store.MissingPattern(row)
	dims := e.patterns[pattern]
	if len(dims) == 0 {
		return 1, diag
	}

	qopts := quadrature.Options{
		RelTol:       e.cfg.Quadrature.RelTol,
		AbsTol:       e.cfg.Quadrature.AbsTol,
		MaxIntervals: e.cfg.Quadrature.MaxIntervals,
	}

	prod := 1.0
	z := make([]float64, len(dims))
	for i, dim := range dims {
		y := e.store.Value(row, dim)
		fam := e.trueFams[dim]
		loc, scale, shape := p.Loc[dim], p.Scale[dim], p.shape(dim)

		var pdf, cdf float64
		if e.store.IsUncertain(row, dim) {
			var ok bool
			pdf, cdf, ok = convolved(fam, e.errFams[dim], y, e.store.Uncertainty(row, dim), loc, scale, shape, qopts)
			diag.Convolutions++
			if !ok {
				diag.NonConverged++
			}
		} else {
			pdf = fam.PDF(y, loc, scale, shape)
			cdf = fam.CDF(y, loc, scale, shape)
		}

		if pdf <= 0 || math.IsNaN(pdf) {
			diag.ZeroRows++
			return 0, diag
		}
		prod *= pdf
		z[i] = probit(cdf)
	}

	density := prod * copulaFactor(factors[pattern], z)
	if density <= 0 || math.IsNaN(density) || math.IsInf(density, 0) {
		diag.ZeroRows++
		return 0, diag
	}
	return density, diag
}
