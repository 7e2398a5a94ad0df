// =============================================================================
// Catalog Reconciler - Row Keys
// =============================================================================
//
// A join key matches a base row to its reference counterpart:
//
//   "<type>|<version>|<year>"
//
//   type    : normalized type-tag cell ("4")
//   version : version label, trimmed only. Case and inner spacing are kept so
//             truncated or altered names do not match.
//   year    : the row's year context, or "_" when unknown
//
// Keys are not unique by construction. Duplicates inside one catalog are a
// finding, not a precondition violation.
//
// =============================================================================

package rowkey

import (
	"strconv"
	"strings"

	"github.com/ginjaninja78/catalog-reconciler/internal/normalize"
	"github.com/ginjaninja78/catalog-reconciler/internal/types"
)

// Invalid is the key of rows that cannot be matched at all.
const Invalid = "invalid|invalid|invalid"

// UnknownYear stands in for a missing year context.
const UnknownYear = "_"

const sep = "|"

// Key builds the join key of a row.
func Key(row types.Row) string {
	if row.Malformed || len(row.Cells) == 0 {
		return Invalid
	}

	year := UnknownYear
	if row.ContextYear > 0 {
		year = strconv.Itoa(row.ContextYear)
	}

	return strings.Join([]string{normalize.Cell(row.Type()), Version(row), year}, sep)
}

// Version returns the version-only key used by fallback matching.
func Version(row types.Row) string {
	return row.VersionLabel()
}

// IsValid reports whether key can be used for matching.
func IsValid(key string) bool {
	return key != Invalid
}
