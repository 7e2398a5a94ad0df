// =============================================================================
// Catalog Reconciler - XLSX Catalog Parser
// =============================================================================
//
// This module reads a pricing catalog from an XLSX/XLSM workbook.
//
// SHEET STRUCTURE (Expected Columns):
//
//   | Column A | Column B | Column C  | Column D | Column E | ...            |
//   |----------|----------|-----------|----------|----------|----------------|
//   | Tipo     | Clase    | Versiones | Precio   | Precio2  | (ignored)      |
//   | 0        |          |           |          |          |                |
//   | 3        |          | 2025      |          |          |                |
//   | 4        | SUV      | MDX       | 85000    | 82000    |                |
//
// Only the positions matter; header labels are kept for the annotated output.
// Cells are read raw, so a numeric cell arrives as its stored value rather
// than its display format, and becomes a number cell.
//
// Blank sheet rows are kept as malformed placeholders so data indices stay
// aligned with sheet rows.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/catalog-reconciler/internal/types"
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options selects the data inside a workbook.
type Options struct {
	// Sheet is the sheet to read. Empty reads the first sheet.
	Sheet string

	// HeaderRow is the 1-based row holding the column labels. Rows above it
	// are ignored. Default: 1
	HeaderRow int
}

// DefaultOptions returns options that read the first sheet with the header
// on row 1.
func DefaultOptions() Options {
	return Options{HeaderRow: 1}
}

// =============================================================================
// PARSING FUNCTIONS
// =============================================================================

// Parse reads a catalog workbook using the default options.
//
// PARAMETERS:
//   - path: The path to the XLSX file.
//
// RETURNS:
//   - The catalog, named after the file.
//   - An error if the file cannot be opened or the sheet cannot be read.
func Parse(path string) (*types.Catalog, error) {
	return ParseWithOptions(path, DefaultOptions())
}

// ParseWithOptions reads a catalog workbook.
//
// PARAMETERS:
//   - path: The path to the XLSX file.
//   - options: Sheet and header row selection.
//
// RETURNS:
//   - The catalog, named after the file.
//   - An error if the file cannot be opened or the sheet cannot be read.
func ParseWithOptions(path string, options Options) (*types.Catalog, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return ParseFile(f, filepath.Base(path), options)
}

// ParseFile reads a catalog from an already opened workbook.
func ParseFile(f *excelize.File, name string, options Options) (*types.Catalog, error) {
	if options.HeaderRow <= 0 {
		options.HeaderRow = 1
	}

	sheetName := options.Sheet
	if sheetName == "" {
		sheetName = f.GetSheetName(0)
		if sheetName == "" {
			return nil, fmt.Errorf("workbook has no sheets")
		}
	} else if idx, err := f.GetSheetIndex(sheetName); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found", sheetName)
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	cat := &types.Catalog{Name: name}
	start := options.HeaderRow - 1
	if start >= len(rows) {
		return cat, nil
	}

	cat.Header = make([]string, len(rows[start]))
	for i, h := range rows[start] {
		cat.Header[i] = strings.TrimSpace(h)
	}
	yearCol := trailingYearColumn(cat.Header)
	if yearCol >= 0 {
		cat.Header = cat.Header[:yearCol]
	}

	for _, raw := range rows[start+1:] {
		if yearCol >= 0 && len(raw) > yearCol {
			raw = raw[:yearCol]
		}
		if isRowEmpty(raw) {
			cat.Rows = append(cat.Rows, types.NewRow())
			continue
		}
		cells := make([]types.Cell, len(raw))
		for i, value := range raw {
			cells[i] = types.ParseCell(value)
		}
		cat.Rows = append(cat.Rows, types.NewRow(cells...))
	}

	return cat, nil
}

// SheetNames lists the sheets of a workbook in order.
func SheetNames(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// trailingYearColumn finds a year-context column appended by a previous run.
// Re-reading an annotated output would otherwise grow one such column per
// pass.
func trailingYearColumn(header []string) int {
	if n := len(header); n > 0 && header[n-1] == types.ContextYearHeader {
		return n - 1
	}
	return -1
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
