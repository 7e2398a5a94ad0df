// =============================================================================
// Catalog Reconciler - Shared Types: Rows and Catalogs
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - annotate, rowkey, index, validation, reconcile (the core)
//   - xlsxparser, csvparser (ingestion)
//   - report, comparison (export and orchestration)
//
// LOGICAL COLUMN LAYOUT:
//   | 0    | 1     | 2              | 3      | 4      | ... |
//   | type | class | version label  | price1 | price2 | ... |
//
// TYPE TAGS:
//   1 = brand, 2 = model, 3 = year/section header, 4 = version/price line,
//   0 = separator.
//
// =============================================================================

package types

import "strings"

// =============================================================================
// COLUMN INDICES
// =============================================================================

const (
	ColType    = 0
	ColClass   = 1
	ColVersion = 2
	ColPrice1  = 3
	ColPrice2  = 4

	// TrackedColumns is the width of the comparison window.
	TrackedColumns = 5

	// MinRowCells is the shortest row that still carries a version label.
	MinRowCells = 3
)

// Type tags.
const (
	TagSeparator = 0
	TagBrand     = 1
	TagModel     = 2
	TagYear      = 3
	TagVersion   = 4
)

// ContextYearHeader is the header label of the appended year-context column.
const ContextYearHeader = "ContextYear"

// =============================================================================
// ROW
// =============================================================================

// Row is one data row of a catalog.
type Row struct {
	// Cells holds the row's values in sheet order.
	Cells []Cell

	// ContextYear is the most recent section year seen above this row.
	// Zero means unknown. Set by the annotate package.
	ContextYear int

	// Malformed marks rows that could not be shaped into a catalog row at
	// ingestion (not a row at all, or fewer than MinRowCells cells). They keep
	// their position so data indices stay aligned with the source sheet.
	Malformed bool
}

// NewRow builds a row from cells, marking it malformed when it is too short.
func NewRow(cells ...Cell) Row {
	return Row{Cells: cells, Malformed: len(cells) < MinRowCells}
}

// Cell returns the cell at index i, or a blank cell when out of range.
func (r Row) Cell(i int) Cell {
	if i < 0 || i >= len(r.Cells) {
		return Cell{}
	}
	return r.Cells[i]
}

// Type returns the type-tag cell.
func (r Row) Type() Cell { return r.Cell(ColType) }

// Class returns the class cell.
func (r Row) Class() Cell { return r.Cell(ColClass) }

// Version returns the version label cell.
func (r Row) Version() Cell { return r.Cell(ColVersion) }

// Price1 returns the mandatory price cell.
func (r Row) Price1() Cell { return r.Cell(ColPrice1) }

// Price2 returns the optional price cell.
func (r Row) Price2() Cell { return r.Cell(ColPrice2) }

// VersionLabel returns the version label trimmed, case and inner spacing intact.
func (r Row) VersionLabel() string {
	return strings.TrimSpace(r.Version().String())
}

// TypeTag returns the row's integer type tag.
func (r Row) TypeTag() (int, bool) {
	f, ok := r.Type().Float()
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

// Clone returns a copy of the row that shares no cell storage.
func (r Row) Clone() Row {
	cells := make([]Cell, len(r.Cells))
	copy(cells, r.Cells)
	r.Cells = cells
	return r
}

// =============================================================================
// CATALOG
// =============================================================================

// Catalog is one spreadsheet's worth of pricing rows.
// Row indices into Rows are the zero-based data indices used by Coord.
type Catalog struct {
	// Name identifies the catalog in logs and reports (usually the file name).
	Name string

	// Header holds the column labels from the first sheet row.
	Header []string

	// Rows holds the data rows, header excluded.
	Rows []Row
}

// FromRaw converts an array-of-arrays (row 0 = header) into a Catalog.
// A nil input yields a nil catalog. Rows that are not slices become
// malformed placeholders.
func FromRaw(name string, raw [][]any) *Catalog {
	if raw == nil {
		return nil
	}

	cat := &Catalog{Name: name}
	if len(raw) == 0 {
		return cat
	}

	for _, h := range raw[0] {
		cat.Header = append(cat.Header, CellOf(h).String())
	}

	for _, values := range raw[1:] {
		if values == nil {
			cat.Rows = append(cat.Rows, Row{Malformed: true})
			continue
		}
		cells := make([]Cell, len(values))
		for i, v := range values {
			cells[i] = CellOf(v)
		}
		cat.Rows = append(cat.Rows, NewRow(cells...))
	}

	return cat
}

// IsEmpty reports whether the catalog has neither a header nor rows.
func (c *Catalog) IsEmpty() bool {
	return c == nil || (len(c.Header) == 0 && len(c.Rows) == 0)
}

// Width returns the column count defined by the header.
func (c *Catalog) Width() int {
	return len(c.Header)
}

// Clone returns a deep copy of the catalog.
func (c *Catalog) Clone() *Catalog {
	if c == nil {
		return nil
	}
	out := &Catalog{
		Name:   c.Name,
		Header: append([]string(nil), c.Header...),
		Rows:   make([]Row, len(c.Rows)),
	}
	for i, row := range c.Rows {
		out.Rows[i] = row.Clone()
	}
	return out
}

// Matrix renders the catalog as header plus rows with the year-context
// column appended. Rows are padded to the header width so the year column
// lines up.
func (c *Catalog) Matrix() [][]Cell {
	width := c.Width()
	for _, row := range c.Rows {
		if len(row.Cells) > width {
			width = len(row.Cells)
		}
	}

	out := make([][]Cell, 0, len(c.Rows)+1)

	header := make([]Cell, width+1)
	for i, h := range c.Header {
		header[i] = TextCell(h)
	}
	header[width] = TextCell(ContextYearHeader)
	out = append(out, header)

	for _, row := range c.Rows {
		cells := make([]Cell, width+1)
		copy(cells, row.Cells)
		cells[width] = NumberCell(float64(row.ContextYear))
		out = append(out, cells)
	}

	return out
}
