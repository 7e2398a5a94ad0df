package types

import (
	"fmt"
	"sort"
)

// Coord addresses a flagged cell: Row is the zero-based data row index
// (header excluded) and Col the original column index.
type Coord struct {
	Row int
	Col int
}

// String renders the coordinate as "row:col".
func (c Coord) String() string {
	return fmt.Sprintf("%d:%d", c.Row, c.Col)
}

// DifferenceSet is the set of flagged cells.
type DifferenceSet map[Coord]struct{}

// NewDifferenceSet returns an empty set.
func NewDifferenceSet() DifferenceSet {
	return make(DifferenceSet)
}

// Add flags a cell. It reports whether the cell was newly added.
func (s DifferenceSet) Add(row, col int) bool {
	c := Coord{Row: row, Col: col}
	if _, ok := s[c]; ok {
		return false
	}
	s[c] = struct{}{}
	return true
}

// Has reports whether a cell is flagged.
func (s DifferenceSet) Has(row, col int) bool {
	_, ok := s[Coord{Row: row, Col: col}]
	return ok
}

// Len returns the number of flagged cells.
func (s DifferenceSet) Len() int {
	return len(s)
}

// Sorted returns the coordinates ordered by row, then column.
func (s DifferenceSet) Sorted() []Coord {
	out := make([]Coord, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}

// Strings returns the sorted coordinates in "row:col" form.
func (s DifferenceSet) Strings() []string {
	coords := s.Sorted()
	out := make([]string, len(coords))
	for i, c := range coords {
		out[i] = c.String()
	}
	return out
}

// FindingKind classifies why a cell was flagged.
type FindingKind string

const (
	FindingDuplicateBase FindingKind = "duplicate_base"
	FindingNoMatch       FindingKind = "no_match"
	FindingMissingPrice1 FindingKind = "missing_price1"
	FindingInvalidPrice2 FindingKind = "invalid_price2"
	FindingPriceOrder    FindingKind = "price_order"
	FindingPriceMismatch FindingKind = "price_mismatch"
	FindingCellMismatch  FindingKind = "cell_mismatch"
)

// Finding records one reason a cell was flagged. A cell may carry several.
type Finding struct {
	Coord  Coord
	Kind   FindingKind
	Detail string
}
