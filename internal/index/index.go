// Package index builds the lookup structures the reconciler resolves base
// rows against.
package index

import (
	"github.com/charmbracelet/log"

	"github.com/ginjaninja78/catalog-reconciler/internal/logging"
	"github.com/ginjaninja78/catalog-reconciler/internal/rowkey"
	"github.com/ginjaninja78/catalog-reconciler/internal/types"
)

// Entry is an indexed reference row and its data index.
type Entry struct {
	Index int
	Row   types.Row
}

// Index holds the exact-key and version-only lookups over a reference catalog.
type Index struct {
	// Exact maps full join keys to rows. The last row with a key wins.
	Exact map[string]Entry

	// Fallback maps trimmed version labels to the row with the most recent
	// year context. Ties keep the first row seen.
	Fallback map[string]Entry

	// DuplicateKeys lists join keys that appeared more than once, in order
	// of their second appearance.
	DuplicateKeys []string

	// Skipped counts rows that produced the invalid key.
	Skipped int
}

// Build indexes an annotated reference catalog.
// It never fails; a nil or empty catalog yields empty maps.
func Build(ref *types.Catalog, logger *log.Logger) *Index {
	logger = logging.OrDiscard(logger)

	idx := &Index{
		Exact:    make(map[string]Entry),
		Fallback: make(map[string]Entry),
	}
	if ref == nil {
		return idx
	}

	for i, row := range ref.Rows {
		key := rowkey.Key(row)
		if !rowkey.IsValid(key) {
			idx.Skipped++
			continue
		}

		entry := Entry{Index: i, Row: row}

		if prev, dup := idx.Exact[key]; dup {
			idx.DuplicateKeys = append(idx.DuplicateKeys, key)
			logger.Debug("duplicate reference entry", "key", key, "first", prev.Index, "row", i)
		}
		idx.Exact[key] = entry

		version := rowkey.Version(row)
		if prev, ok := idx.Fallback[version]; !ok || prev.Row.ContextYear < row.ContextYear {
			idx.Fallback[version] = entry
		}
	}

	logger.Debug("reference index built",
		"catalog", ref.Name,
		"exact", len(idx.Exact),
		"fallback", len(idx.Fallback),
		"duplicates", len(idx.DuplicateKeys),
		"skipped", idx.Skipped,
	)

	return idx
}

// Resolve finds the reference row for a base row: first by exact key, then
// by version label. fallback reports whether the second lookup was used.
func (idx *Index) Resolve(key, version string) (entry Entry, fallback, ok bool) {
	if e, found := idx.Exact[key]; found {
		return e, false, true
	}
	if e, found := idx.Fallback[version]; found {
		return e, true, true
	}
	return Entry{}, false, false
}
