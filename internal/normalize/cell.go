// =============================================================================
// Catalog Reconciler - Normalization
// =============================================================================
//
// This package turns raw cell values into canonical comparable strings.
//
//   Cell           : generic cell normalization (identity columns)
//   PriceNormalizer: price strings to signed integer amounts
//
// Both are pure: no logging, no shared state, no error returns. An input
// that cannot be normalized yields "" (cells) or "" / invalid (prices).
//
// =============================================================================

package normalize

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/ginjaninja78/catalog-reconciler/internal/types"
)

var cellSymbols = strings.NewReplacer("$", "", ",", "")

// isSpace matches Unicode white space plus the byte order mark, which
// spreadsheet exports leave inside cells.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// Cell returns the canonical comparable form of a cell.
//
// STEPS:
//  1. Blank cells become "".
//  2. Stringify, lower-case, trim.
//  3. Remove "$" and "," and collapse whitespace runs to one space; trim again.
//  4. If the result is a finite number whose canonical rendering is exactly
//     the result, return the canonical rendering.
func Cell(c types.Cell) string {
	if c.IsEmpty() {
		return ""
	}
	return String(c.String())
}

// String applies Cell normalization to an already stringified value.
func String(s string) string {
	s = cellSymbols.Replace(strings.ToLower(s))
	s = strings.Join(strings.FieldsFunc(s, isSpace), " ")

	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		if canonical := types.FormatNumber(f); canonical == s {
			return canonical
		}
	}
	return s
}
