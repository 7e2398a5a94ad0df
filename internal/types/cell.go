// =============================================================================
// Catalog Reconciler - Shared Types: Cells
// =============================================================================
//
// Spreadsheet readers hand the reconciler loosely typed cell values: strings,
// numbers, or nothing at all. Cell is the typed form of such a value. It is
// created once at the ingestion boundary (xlsxparser, csvparser, FromRaw) so
// the rest of the pipeline never type-switches on interface values.
//
// =============================================================================

package types

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// CellKind identifies what a Cell holds.
type CellKind uint8

const (
	// KindEmpty is a blank cell (nil, missing, or empty string).
	KindEmpty CellKind = iota

	// KindText is a textual cell.
	KindText

	// KindNumber is a numeric cell.
	KindNumber
)

// Cell is a single raw spreadsheet value.
type Cell struct {
	kind CellKind
	text string
	num  float64
}

// EmptyCell returns a blank cell.
func EmptyCell() Cell { return Cell{} }

// TextCell returns a textual cell. An empty string yields a blank cell.
func TextCell(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{kind: KindText, text: s}
}

// NumberCell returns a numeric cell.
func NumberCell(f float64) Cell {
	return Cell{kind: KindNumber, num: f}
}

// numericLiteral matches plain decimal literals as spreadsheets store them.
var numericLiteral = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?$`)

// ParseCell converts a string read from a sheet into a Cell.
//
// A string becomes a number only when the number renders back to exactly the
// same text, so "85000" is numeric while "007" and "1.50" stay textual and
// keep their surface form.
func ParseCell(s string) Cell {
	if s == "" {
		return Cell{}
	}
	if numericLiteral.MatchString(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil && FormatNumber(f) == s {
			return NumberCell(f)
		}
	}
	return TextCell(s)
}

// CellOf converts an arbitrary Go value into a Cell.
// Unsupported types are rendered with fmt and kept as text.
func CellOf(v any) Cell {
	switch x := v.(type) {
	case nil:
		return Cell{}
	case Cell:
		return x
	case string:
		return TextCell(x)
	case float64:
		return NumberCell(x)
	case float32:
		return NumberCell(float64(x))
	case int:
		return NumberCell(float64(x))
	case int8:
		return NumberCell(float64(x))
	case int16:
		return NumberCell(float64(x))
	case int32:
		return NumberCell(float64(x))
	case int64:
		return NumberCell(float64(x))
	case uint:
		return NumberCell(float64(x))
	case uint8:
		return NumberCell(float64(x))
	case uint16:
		return NumberCell(float64(x))
	case uint32:
		return NumberCell(float64(x))
	case uint64:
		return NumberCell(float64(x))
	case bool:
		return TextCell(strconv.FormatBool(x))
	default:
		return TextCell(fmt.Sprint(x))
	}
}

// Kind reports what the cell holds.
func (c Cell) Kind() CellKind { return c.kind }

// IsEmpty reports whether the cell is blank.
func (c Cell) IsEmpty() bool { return c.kind == KindEmpty }

// String renders the cell the way spreadsheet tooling stringifies it:
// blank cells are "", numbers use their shortest round-trip form.
func (c Cell) String() string {
	switch c.kind {
	case KindText:
		return c.text
	case KindNumber:
		return FormatNumber(c.num)
	default:
		return ""
	}
}

// Float returns the numeric value of the cell.
// Text cells are parsed after trimming; blank cells report false.
func (c Cell) Float() (float64, bool) {
	switch c.kind {
	case KindNumber:
		return c.num, true
	case KindText:
		f, err := strconv.ParseFloat(strings.TrimSpace(c.text), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Value returns the cell as a plain Go value (nil, string or float64),
// which is what spreadsheet writers expect.
func (c Cell) Value() any {
	switch c.kind {
	case KindText:
		return c.text
	case KindNumber:
		return c.num
	default:
		return nil
	}
}

// FormatNumber renders a float64 in its shortest round-trip form.
// Integral values have no fractional part; magnitudes at or above 1e21 and
// below 1e-6 switch to exponent notation without zero-padded exponents.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		s = strings.Replace(s, "e+0", "e+", 1)
		s = strings.Replace(s, "e-0", "e-", 1)
		return s
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
