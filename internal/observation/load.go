package observation

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// LoadCSV reads a comma-separated file with a header row into a Table.
// Blank cells and the literals "nan"/"NaN" are read as missing.
func LoadCSV(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("open CSV file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("read CSV file: %w", err)
	}
	if len(records) < 2 {
		return Table{}, &ShapeError{Field: "csv", Message: "file needs a header row and at least one data row"}
	}

	header := make([]string, len(records[0]))
	for i, col := range records[0] {
		header[i] = strings.TrimSpace(col)
	}

	rows := make([][]float64, 0, len(records)-1)
	for lineNum, record := range records[1:] {
		row, err := parseCells(record, len(header), lineNum+2)
		if err != nil {
			return Table{}, err
		}
		rows = append(rows, row)
	}
	return Table{Columns: header, Rows: rows}, nil
}

// LoadExcel reads one sheet of an Excel workbook into a Table. The first
// row of the sheet is the header. An empty sheet name selects the
// workbook's first sheet.
func LoadExcel(path, sheet string) (Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	records, err := f.GetRows(sheet)
	if err != nil {
		return Table{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(records) < 2 {
		return Table{}, &ShapeError{Field: "sheet", Message: "sheet needs a header row and at least one data row", Value: sheet}
	}

	header := make([]string, len(records[0]))
	for i, col := range records[0] {
		header[i] = strings.TrimSpace(col)
	}

	rows := make([][]float64, 0, len(records)-1)
	for lineNum, record := range records[1:] {
		// excelize trims trailing empty cells; pad back to header width.
		row, err := parseCells(record, len(header), lineNum+2)
		if err != nil {
			return Table{}, err
		}
		rows = append(rows, row)
	}
	return Table{Columns: header, Rows: rows}, nil
}

// parseCells converts one record's string cells to floats, padding short
// records with missing markers so ragged trailing cells read as absent.
func parseCells(record []string, width, lineNum int) ([]float64, error) {
	if len(record) > width {
		return nil, &ShapeError{
			Field:   "row",
			Message: fmt.Sprintf("line %d has %d cells, expected at most %d", lineNum, len(record), width),
		}
	}
	row := make([]float64, width)
	for i := range row {
		row[i] = math.NaN()
	}
	for i, cell := range record {
		cell = strings.TrimSpace(cell)
		if cell == "" || strings.EqualFold(cell, "nan") {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, fmt.Errorf("parse cell %d (line %d): %w", i+1, lineNum, err)
		}
		row[i] = v
	}
	return row, nil
}
