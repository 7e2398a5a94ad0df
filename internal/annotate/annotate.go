// Package annotate prepares catalogs for keying: it tags every row with the
// year of the section it sits in and drops scratch columns.
package annotate

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ginjaninja78/catalog-reconciler/internal/types"
)

var yearToken = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// YearToken returns the first 4-digit year (1900-2099) found in label.
func YearToken(label string) (int, bool) {
	m := yearToken.FindString(label)
	if m == "" {
		return 0, false
	}
	year, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return year, true
}

// YearContext returns a copy of cat whose rows carry their section year.
//
// The context starts at 0 (unknown). A type-3 row whose label holds a year
// token sets it; a type-4 row seen while the context is still unknown may set
// it from its own label. The value is sticky until the next tag.
// Malformed rows inherit the current context but never change it.
func YearContext(cat *types.Catalog) *types.Catalog {
	if cat == nil {
		return nil
	}

	out := cat.Clone()
	current := 0

	for i := range out.Rows {
		row := &out.Rows[i]
		if !row.Malformed {
			tag, ok := row.TypeTag()
			switch {
			case ok && tag == types.TagYear:
				if year, found := YearToken(row.Version().String()); found {
					current = year
				}
			case ok && tag == types.TagVersion && current == 0:
				if year, found := YearToken(row.Version().String()); found {
					current = year
				}
			}
		}
		row.ContextYear = current
	}

	return out
}

// StripColumns returns a copy of cat without the columns whose header
// contains any of the given substrings (case-insensitive), plus the labels
// that were dropped.
func StripColumns(cat *types.Catalog, substrings []string) (*types.Catalog, []string) {
	if cat == nil {
		return nil, nil
	}

	drop := make(map[int]bool)
	var dropped []string
	for i, h := range cat.Header {
		label := strings.ToLower(h)
		for _, sub := range substrings {
			if sub != "" && strings.Contains(label, strings.ToLower(sub)) {
				drop[i] = true
				dropped = append(dropped, h)
				break
			}
		}
	}

	if len(drop) == 0 {
		return cat.Clone(), nil
	}

	out := &types.Catalog{Name: cat.Name}
	for i, h := range cat.Header {
		if !drop[i] {
			out.Header = append(out.Header, h)
		}
	}

	for _, row := range cat.Rows {
		kept := make([]types.Cell, 0, len(row.Cells))
		for i, c := range row.Cells {
			if !drop[i] {
				kept = append(kept, c)
			}
		}
		out.Rows = append(out.Rows, types.Row{
			Cells:       kept,
			ContextYear: row.ContextYear,
			Malformed:   row.Malformed || len(kept) < types.MinRowCells,
		})
	}

	return out, dropped
}
