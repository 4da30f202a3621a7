package observation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// Store is an immutable set of N observations in D dimensions, with a
// parallel uncertainty for every cell. Built once from a Table, read-only
// afterwards; safe for concurrent use.
type Store struct {
	name string
	n    int
	d    int

	// Row-major N x D.
	values    []float64
	uncerts   []float64
	missing   []bool
	uncertain []bool
}

var (
	valueColRe  = regexp.MustCompile(`^v(\d+)$`)
	uncertColRe = regexp.MustCompile(`^e_v(\d+)$`)
)

// Build validates a table against the v{i}/e_v{i} column contract and
// constructs a store. The value columns must cover v0..v{D-1} without
// gaps; uncertainty columns are optional per dimension. Missing cells are
// normalized to NaN, absent or NaN uncertainties to zero (exact).
func Build(table Table, name string) (*Store, error) {
	if len(table.Columns) == 0 || len(table.Rows) == 0 {
		return nil, &ShapeError{Field: "table", Message: "empty table"}
	}

	valueCols := make(map[int]int)  // dimension -> column index
	uncertCols := make(map[int]int) // dimension -> column index
	for ci, col := range table.Columns {
		if m := valueColRe.FindStringSubmatch(col); m != nil {
			dim, _ := strconv.Atoi(m[1])
			if _, dup := valueCols[dim]; dup {
				return nil, &ShapeError{Field: col, Message: "duplicate value column"}
			}
			valueCols[dim] = ci
			continue
		}
		if m := uncertColRe.FindStringSubmatch(col); m != nil {
			dim, _ := strconv.Atoi(m[1])
			if _, dup := uncertCols[dim]; dup {
				return nil, &ShapeError{Field: col, Message: "duplicate uncertainty column"}
			}
			uncertCols[dim] = ci
			continue
		}
		return nil, &ShapeError{
			Field:   col,
			Message: "column does not match the v{i}/e_v{i} naming contract",
		}
	}

	d := len(valueCols)
	if d == 0 {
		return nil, &ShapeError{Field: "table", Message: "no value columns found"}
	}
	if d > MaxDims {
		return nil, &ShapeError{
			Field:   "table",
			Message: fmt.Sprintf("too many dimensions: %d exceeds the supported maximum of %d", d, MaxDims),
			Value:   d,
		}
	}
	for dim := 0; dim < d; dim++ {
		if _, ok := valueCols[dim]; !ok {
			return nil, &ShapeError{
				Field:   fmt.Sprintf("v%d", dim),
				Message: "value columns are not contiguous from v0",
				Value:   d,
			}
		}
	}
	for dim := range uncertCols {
		if _, ok := valueCols[dim]; !ok {
			return nil, &ShapeError{
				Field:   fmt.Sprintf("e_v%d", dim),
				Message: "uncertainty column has no paired value column",
			}
		}
	}

	n := len(table.Rows)
	s := &Store{
		name:      name,
		n:         n,
		d:         d,
		values:    make([]float64, n*d),
		uncerts:   make([]float64, n*d),
		missing:   make([]bool, n*d),
		uncertain: make([]bool, n*d),
	}

	width := len(table.Columns)
	for ri, row := range table.Rows {
		if len(row) != width {
			return nil, &ShapeError{
				Field:   "table",
				Message: fmt.Sprintf("row %d has %d cells, expected %d", ri, len(row), width),
			}
		}
		for dim := 0; dim < d; dim++ {
			cell := ri*d + dim
			v := row[valueCols[dim]]
			e := 0.0
			if ci, ok := uncertCols[dim]; ok {
				e = row[ci]
			}
			if missing(e) || e < 0 {
				e = 0
			}
			if missing(v) {
				s.values[cell] = math.NaN()
				s.missing[cell] = true
				continue
			}
			s.values[cell] = v
			s.uncerts[cell] = e
			s.uncertain[cell] = e > 0
		}
	}
	return s, nil
}

// Name returns the store label supplied at build time.
func (s *Store) Name() string { return s.name }

// Samples returns N, the number of observations.
func (s *Store) Samples() int { return s.n }

// Dims returns D, the number of tracked dimensions.
func (s *Store) Dims() int { return s.d }

// Value returns the observed value for (row, dim). NaN when missing.
func (s *Store) Value(row, dim int) float64 { return s.values[row*s.d+dim] }

// Uncertainty returns the measurement uncertainty for (row, dim). Zero
// means known exactly.
func (s *Store) Uncertainty(row, dim int) float64 { return s.uncerts[row*s.d+dim] }

// IsMissing reports whether the cell (row, dim) has no observed value.
func (s *Store) IsMissing(row, dim int) bool { return s.missing[row*s.d+dim] }

// IsUncertain reports whether the cell (row, dim) carries a nonzero
// measurement uncertainty. Always false for missing cells.
func (s *Store) IsUncertain(row, dim int) bool { return s.uncertain[row*s.d+dim] }

// Column returns copies of the value and uncertainty columns for one
// dimension, in row order.
func (s *Store) Column(dim int) (values, uncertainties []float64) {
	values = make([]float64, s.n)
	uncertainties = make([]float64, s.n)
	for i := 0; i < s.n; i++ {
		values[i] = s.values[i*s.d+dim]
		uncertainties[i] = s.uncerts[i*s.d+dim]
	}
	return values, uncertainties
}

// MissingPattern returns a bitmask with bit j set when dimension j is
// missing for the given row. Rows sharing a pattern share the same
// sub-correlation structure during likelihood evaluation.
func (s *Store) MissingPattern(row int) uint64 {
	var pattern uint64
	for dim := 0; dim < s.d; dim++ {
		if s.missing[row*s.d+dim] {
			pattern |= 1 << uint(dim)
		}
	}
	return pattern
}

// ObservedDims returns the indices of the non-missing dimensions of a row,
// in ascending order.
func (s *Store) ObservedDims(row int) []int {
	dims := make([]int, 0, s.d)
	for dim := 0; dim < s.d; dim++ {
		if !s.missing[row*s.d+dim] {
			dims = append(dims, dim)
		}
	}
	return dims
}
