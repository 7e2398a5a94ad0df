// =============================================================================
// Catalog Reconciler - Reconciliation Engine
// =============================================================================
//
// The engine compares a base catalog against a reference catalog cell by
// cell and reports every cell that needs attention.
//
// PIPELINE:
//   1. Validate the inputs (the only fatal step)
//   2. Tag both catalogs with their year context
//   3. Index the reference catalog (exact key + version-only fallback)
//   4. For each base row:
//      a. Skip rows with the invalid key
//      b. Flag repeated keys (duplicate base entries)
//      c. Apply the intra-row business rules
//      d. Resolve the reference row, exact then fallback; flag misses
//      e. Compare both price columns as integers
//      f. Compare the identity columns (type, class, version) as
//         normalized cells
//
// CONCURRENCY:
//   A call is synchronous and run-to-completion. Every call builds fresh
//   indexes and sets, so one Engine may serve concurrent callers.
//
// =============================================================================

package reconcile

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/ginjaninja78/catalog-reconciler/internal/annotate"
	"github.com/ginjaninja78/catalog-reconciler/internal/index"
	"github.com/ginjaninja78/catalog-reconciler/internal/logging"
	"github.com/ginjaninja78/catalog-reconciler/internal/normalize"
	"github.com/ginjaninja78/catalog-reconciler/internal/rowkey"
	"github.com/ginjaninja78/catalog-reconciler/internal/types"
	"github.com/ginjaninja78/catalog-reconciler/internal/validation"
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures an Engine.
type Options struct {
	// Prices normalizes every price the engine touches.
	// Default: normalize.DefaultPrices (whole units, positive only).
	Prices *normalize.PriceNormalizer

	// Tolerance is the largest price difference, in normalized units, that
	// is not reported. Default: 0 (exact match).
	Tolerance int64

	// Strictness selects the intra-row rule set.
	Strictness validation.Strictness

	// PriceRowTypes lists the type tags the intra-row price rules apply to.
	// Default: [4].
	PriceRowTypes []int

	// Logger receives progress and per-finding debug output.
	// Default: discard.
	Logger *log.Logger
}

// DefaultOptions returns the strict, exact-match configuration.
func DefaultOptions() Options {
	return Options{
		Prices:        normalize.DefaultPrices,
		Tolerance:     0,
		Strictness:    validation.StrictnessStandard,
		PriceRowTypes: []int{types.TagVersion},
	}
}

// =============================================================================
// RESULT
// =============================================================================

// Stats summarizes one comparison.
type Stats struct {
	BaseRows      int
	ReferenceRows int

	// SkippedRows counts base rows that produced the invalid key.
	SkippedRows int

	ExactMatches    int
	FallbackMatches int
	NoMatch         int

	DuplicateBase      int
	DuplicateReference int

	// RuleViolations counts intra-row business-rule breaches.
	RuleViolations int

	// TotalComparisons counts cell comparisons inside the tracked window.
	TotalComparisons int

	// Differences is the number of distinct flagged cells.
	Differences int
}

// Result is the outcome of a successful comparison.
type Result struct {
	// AnnotatedBase is the base catalog with its year context filled in.
	// Render it with Matrix() to get the appended year column.
	AnnotatedBase *types.Catalog

	// Differences holds every flagged cell.
	Differences types.DifferenceSet

	// Findings explains the flags, in the order they were raised.
	Findings []types.Finding

	Stats Stats
}

func (r *Result) flag(row, col int, kind types.FindingKind, detail string) {
	r.Differences.Add(row, col)
	r.Findings = append(r.Findings, types.Finding{
		Coord:  types.Coord{Row: row, Col: col},
		Kind:   kind,
		Detail: detail,
	})
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine reconciles catalogs.
type Engine struct {
	prices    *normalize.PriceNormalizer
	tolerance int64
	validator *validation.Validator
	logger    *log.Logger
}

// New creates an Engine. Zero-valued options fall back to DefaultOptions.
func New(opts Options) *Engine {
	if opts.Prices == nil {
		opts.Prices = normalize.DefaultPrices
	}
	if opts.Tolerance < 0 {
		opts.Tolerance = 0
	}
	opts.Logger = logging.OrDiscard(opts.Logger)

	return &Engine{
		prices:    opts.Prices,
		tolerance: opts.Tolerance,
		validator: validation.NewValidatorWithOptions(opts.Prices, validation.Options{
			Strictness:    opts.Strictness,
			PriceRowTypes: opts.PriceRowTypes,
		}),
		logger: opts.Logger,
	}
}

// Reconcile compares base against reference.
//
// It fails only when a catalog is missing or both are empty; every row-level
// problem is reported through the result instead. The inputs are not
// modified.
func (e *Engine) Reconcile(base, reference *types.Catalog) (*Result, error) {
	switch {
	case base == nil:
		return nil, &EngineError{Op: "reconcile", Catalog: "base", Err: ErrInvalidInput}
	case reference == nil:
		return nil, &EngineError{Op: "reconcile", Catalog: "reference", Err: ErrInvalidInput}
	case base.IsEmpty() && reference.IsEmpty():
		return nil, &EngineError{Op: "reconcile", Err: ErrEmptyInput}
	}

	annotatedBase := annotate.YearContext(base)
	annotatedRef := annotate.YearContext(reference)

	idx := index.Build(annotatedRef, e.logger)

	res, err := e.ReconcileIndexed(annotatedBase, idx)
	if err != nil {
		return nil, err
	}
	res.Stats.ReferenceRows = len(reference.Rows)
	return res, nil
}

// ReconcileIndexed compares an already annotated base catalog against a
// prebuilt reference index.
func (e *Engine) ReconcileIndexed(base *types.Catalog, idx *index.Index) (*Result, error) {
	if base == nil || idx == nil {
		return nil, &EngineError{Op: "reconcile", Err: ErrInvalidInput}
	}

	res := &Result{
		AnnotatedBase: base,
		Differences:   types.NewDifferenceSet(),
	}
	res.Stats.BaseRows = len(base.Rows)
	res.Stats.DuplicateReference = len(idx.DuplicateKeys)

	seen := make(map[string]int, len(base.Rows))

	for i, row := range base.Rows {
		key := rowkey.Key(row)
		if !rowkey.IsValid(key) {
			res.Stats.SkippedRows++
			continue
		}

		if first, dup := seen[key]; dup {
			res.Stats.DuplicateBase++
			res.flag(i, types.ColVersion, types.FindingDuplicateBase,
				fmt.Sprintf("key %q already used by row %d", key, first))
			e.logger.Debug("duplicate base entry", "row", i, "key", key, "first", first)
		} else {
			seen[key] = i
		}

		// Business rules depend on the row alone, so they run even when
		// the row has no reference counterpart.
		for _, v := range e.validator.ValidateRow(row, i) {
			res.Stats.RuleViolations++
			for _, col := range v.Columns {
				res.flag(i, col, v.Kind, v.Message)
			}
		}

		ref, fallback, ok := idx.Resolve(key, rowkey.Version(row))
		if !ok {
			res.Stats.NoMatch++
			res.flag(i, types.ColVersion, types.FindingNoMatch,
				fmt.Sprintf("no reference row for key %q", key))
			e.logger.Debug("no reference match", "row", i, "key", key)
			continue
		}
		if fallback {
			res.Stats.FallbackMatches++
			e.logger.Debug("fallback match", "row", i, "key", key, "reference", ref.Index)
		} else {
			res.Stats.ExactMatches++
		}

		e.comparePrice(res, i, types.ColPrice1, row.Price1(), ref.Row.Price1())
		e.comparePrice(res, i, types.ColPrice2, row.Price2(), ref.Row.Price2())

		for _, col := range []int{types.ColType, types.ColClass, types.ColVersion} {
			b, r := normalize.Cell(row.Cell(col)), normalize.Cell(ref.Row.Cell(col))
			if b != r {
				res.flag(i, col, types.FindingCellMismatch, fmt.Sprintf("%q vs %q", b, r))
			}
		}

		res.Stats.TotalComparisons += types.TrackedColumns
	}

	res.Stats.Differences = res.Differences.Len()

	e.logger.Info("comparison complete",
		"catalog", base.Name,
		"rows", res.Stats.BaseRows,
		"exact", res.Stats.ExactMatches,
		"fallback", res.Stats.FallbackMatches,
		"no_match", res.Stats.NoMatch,
		"differences", res.Stats.Differences,
	)

	return res, nil
}

// comparePrice flags a price column whose base and reference amounts
// disagree. Missing or unusable prices on both sides are not a difference;
// on one side only, they are.
func (e *Engine) comparePrice(res *Result, row, col int, base, ref types.Cell) {
	b, bok := e.prices.DecodeCell(base)
	r, rok := e.prices.DecodeCell(ref)

	switch {
	case !bok && !rok:
		return
	case !bok:
		res.flag(row, col, types.FindingPriceMismatch,
			fmt.Sprintf("base %q has no usable price, reference has %d", base.String(), r))
	case !rok:
		res.flag(row, col, types.FindingPriceMismatch,
			fmt.Sprintf("reference %q has no usable price, base has %d", ref.String(), b))
	default:
		diff := b - r
		if diff < 0 {
			diff = -diff
		}
		if diff > e.tolerance {
			res.flag(row, col, types.FindingPriceMismatch, fmt.Sprintf("%d vs %d", b, r))
			e.logger.Debug("price mismatch", "row", row, "col", col, "base", b, "reference", r)
		}
	}
}
