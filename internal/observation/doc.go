// Package observation holds tabular observational data in an immutable,
// column-validated store that the likelihood engine evaluates against.
//
// A store keeps one record per sample: a fixed-width vector of observed
// values and a parallel vector of measurement uncertainties. Missing cells
// are represented explicitly (NaN sentinel), never dropped, so that the
// engine can marginalize them instead of discarding partial rows.
//
// # Input contract
//
// Tables follow the column naming convention of the observational data
// pipeline: value columns are named "v0".."v{D-1}" and their paired
// uncertainty columns "e_v0".."e_v{D-1}". Uncertainty columns are optional
// per dimension; a value without a paired uncertainty is treated as known
// exactly. Any other column name is rejected at build time.
//
// # Components
//
//   - types.go: Table input form, ShapeError, sentinels
//   - store.go: Build validation and read-only accessors
//   - load.go:  CSV and Excel loaders producing Tables
//
// # Usage
//
//	table, err := observation.LoadCSV("data/sample.csv")
//	if err != nil {
//	    return err
//	}
//	store, err := observation.Build(table, "sample")
//	if err != nil {
//	    return err
//	}
//	values, uncerts := store.Column(0)
//
// Stores are read-only after Build. Callers needing different data build a
// new store rather than mutating an existing one.
package observation
