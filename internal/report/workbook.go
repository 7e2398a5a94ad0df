// =============================================================================
// Catalog Reconciler - Workbook Report
// =============================================================================
//
// Writes the annotated base catalog back out as XLSX with every flagged cell
// highlighted.
//
// WORKBOOK STRUCTURE:
//   Comparison - The annotated base catalog (header, rows, ContextYear).
//                Flagged cells carry the highlight fill.
//   Findings   - One line per finding: sheet cell, kind, detail.
//   Summary    - The comparison counters.
//
// Data row i of the catalog lands on sheet row i+2 (row 1 is the header), so
// a difference "r:c" is the cell at column c+1, row r+2.
//
// =============================================================================

package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/catalog-reconciler/internal/reconcile"
	"github.com/ginjaninja78/catalog-reconciler/internal/types"
)

// =============================================================================
// WORKBOOK OPTIONS
// =============================================================================

// WorkbookOptions contains options for workbook generation.
type WorkbookOptions struct {
	// SheetName names the annotated catalog sheet.
	// Default: "Comparison"
	SheetName string

	// HighlightColor is the fill for flagged cells.
	// Default: "#FFFF00"
	HighlightColor string

	// IncludeFindings adds the Findings sheet.
	// Default: true
	IncludeFindings bool

	// IncludeSummary adds the Summary sheet.
	// Default: true
	IncludeSummary bool
}

// DefaultWorkbookOptions returns the default workbook options.
func DefaultWorkbookOptions() WorkbookOptions {
	return WorkbookOptions{
		SheetName:       "Comparison",
		HighlightColor:  "#FFFF00",
		IncludeFindings: true,
		IncludeSummary:  true,
	}
}

const (
	findingsSheet = "Findings"
	summarySheet  = "Summary"
)

// =============================================================================
// WORKBOOK GENERATION
// =============================================================================

// WriteWorkbook builds the report workbook and saves it to path.
func WriteWorkbook(path string, result *reconcile.Result, options WorkbookOptions) error {
	f, err := BuildWorkbook(result, options)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// BuildWorkbook builds the report workbook in memory. The caller closes it.
func BuildWorkbook(result *reconcile.Result, options WorkbookOptions) (*excelize.File, error) {
	if result == nil || result.AnnotatedBase == nil {
		return nil, fmt.Errorf("no comparison result to write")
	}
	if options.SheetName == "" {
		options.SheetName = "Comparison"
	}
	if options.HighlightColor == "" {
		options.HighlightColor = "#FFFF00"
	}

	f := excelize.NewFile()
	ok := false
	defer func() {
		if !ok {
			f.Close()
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), options.SheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := writeComparisonSheet(f, options, result); err != nil {
		return nil, err
	}
	if options.IncludeFindings {
		if err := writeFindingsSheet(f, result.Findings); err != nil {
			return nil, err
		}
	}
	if options.IncludeSummary {
		if err := writeSummarySheet(f, result.Stats); err != nil {
			return nil, err
		}
	}

	ok = true
	return f, nil
}

// CellName returns the sheet cell a difference coordinate points at.
func CellName(c types.Coord) string {
	name, err := excelize.CoordinatesToCellName(c.Col+1, c.Row+2)
	if err != nil {
		return c.String()
	}
	return name
}

func writeComparisonSheet(f *excelize.File, options WorkbookOptions, result *reconcile.Result) error {
	sheet := options.SheetName

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	highlight, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{options.HighlightColor}},
	})
	if err != nil {
		return fmt.Errorf("failed to create highlight style: %w", err)
	}

	matrix := result.AnnotatedBase.Matrix()
	for r, row := range matrix {
		values := make([]any, len(row))
		for c, cell := range row {
			values[c] = cell.Value()
		}
		if err := setRow(f, sheet, r+1, values); err != nil {
			return err
		}
	}

	if len(matrix) > 0 && len(matrix[0]) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(matrix[0]), 1)
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}
	}

	for _, coord := range result.Differences.Sorted() {
		name := CellName(coord)
		if err := f.SetCellStyle(sheet, name, name, highlight); err != nil {
			return fmt.Errorf("failed to highlight %s: %w", name, err)
		}
	}
	return nil
}

func writeFindingsSheet(f *excelize.File, findings []types.Finding) error {
	if _, err := f.NewSheet(findingsSheet); err != nil {
		return fmt.Errorf("failed to create findings sheet: %w", err)
	}
	if err := setRow(f, findingsSheet, 1, []any{"Cell", "Row", "Column", "Kind", "Detail"}); err != nil {
		return err
	}
	for i, finding := range findings {
		values := []any{
			CellName(finding.Coord),
			finding.Coord.Row,
			finding.Coord.Col,
			string(finding.Kind),
			finding.Detail,
		}
		if err := setRow(f, findingsSheet, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func writeSummarySheet(f *excelize.File, stats reconcile.Stats) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	for i, entry := range statEntries(stats) {
		if err := setRow(f, summarySheet, i+1, []any{entry.name, entry.value}); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

type statEntry struct {
	name  string
	value int
}

func statEntries(s reconcile.Stats) []statEntry {
	return []statEntry{
		{"BaseRows", s.BaseRows},
		{"ReferenceRows", s.ReferenceRows},
		{"SkippedRows", s.SkippedRows},
		{"ExactMatches", s.ExactMatches},
		{"FallbackMatches", s.FallbackMatches},
		{"NoMatch", s.NoMatch},
		{"DuplicateBase", s.DuplicateBase},
		{"DuplicateReference", s.DuplicateReference},
		{"RuleViolations", s.RuleViolations},
		{"TotalComparisons", s.TotalComparisons},
		{"Differences", s.Differences},
	}
}
