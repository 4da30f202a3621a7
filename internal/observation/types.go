package observation

import (
	"fmt"
	"math"
)

// MaxDims bounds the number of tracked dimensions per store. The engine
// encodes per-row missingness as a 64-bit pattern, so wider tables are
// rejected at build time.
const MaxDims = 64

// Table is the column-oriented input form accepted by Build. Loaders
// normalize file formats into a Table; callers may also assemble one
// directly from in-memory data.
type Table struct {
	// Columns holds the column names, in file order.
	Columns []string
	// Rows holds one float slice per sample, parallel to Columns.
	// NaN marks an empty or missing cell.
	Rows [][]float64
}

// ShapeError reports a structural problem with an input table or a
// parameter vector: mismatched column groups, ragged rows, wrong vector
// lengths. Shape problems are fatal and surfaced immediately.
type ShapeError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Error implements the error interface.
func (se *ShapeError) Error() string {
	if se.Field == "" {
		return se.Message
	}
	return fmt.Sprintf("%s: %s", se.Field, se.Message)
}

// missing reports whether x encodes a missing cell.
func missing(x float64) bool {
	return math.IsNaN(x)
}
