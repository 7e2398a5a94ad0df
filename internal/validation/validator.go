// =============================================================================
// Catalog Reconciler - Business Rule Validation
// =============================================================================
//
// This module checks the intra-row business rules of a catalog. They depend
// only on the row itself, never on the other catalog:
//
//   - price1 is mandatory and must be a valid (strictly positive) price
//   - when both prices are valid, price1 >= price2
//   - paired strictness only: a populated price2 must be valid too
//
// Rules apply to rows whose type tag is listed in Options.PriceRowTypes
// (version/price lines by default). Brand, model and section rows carry no
// prices and are never validated.
//
// =============================================================================

package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ginjaninja78/catalog-reconciler/internal/normalize"
	"github.com/ginjaninja78/catalog-reconciler/internal/types"
)

// =============================================================================
// STRICTNESS
// =============================================================================

// Strictness selects how strictly price cells are validated.
type Strictness string

const (
	// StrictnessStandard enforces the mandatory price1 and price ordering.
	StrictnessStandard Strictness = "standard"

	// StrictnessPaired also flags a populated price2 that is not a valid price.
	StrictnessPaired Strictness = "paired"
)

// ParseStrictness validates a strictness name from configuration.
// "" means StrictnessStandard.
func ParseStrictness(s string) (Strictness, error) {
	switch Strictness(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrictnessStandard:
		return StrictnessStandard, nil
	case StrictnessPaired:
		return StrictnessPaired, nil
	default:
		return "", fmt.Errorf("unknown strictness %q (want %q or %q)", s, StrictnessStandard, StrictnessPaired)
	}
}

// =============================================================================
// VIOLATION
// =============================================================================

// Violation is a single business-rule breach in one row.
type Violation struct {
	// Kind names the rule that was violated.
	Kind types.FindingKind

	// Row is the zero-based data row index.
	Row int

	// Columns lists the flagged column indices.
	Columns []int

	// Value is the offending raw value(s).
	Value string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (v *Violation) Error() string {
	return fmt.Sprintf("row %d, %s: %s (value: '%s')", v.Row, v.Kind, v.Message, v.Value)
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Options contains options for validation.
type Options struct {
	// Strictness selects the rule set. Default: StrictnessStandard.
	Strictness Strictness

	// PriceRowTypes lists the type tags whose rows carry prices.
	// Default: [4].
	PriceRowTypes []int
}

// DefaultOptions returns the default validation options.
func DefaultOptions() Options {
	return Options{
		Strictness:    StrictnessStandard,
		PriceRowTypes: []int{types.TagVersion},
	}
}

// Validator checks rows against the business rules.
type Validator struct {
	prices  *normalize.PriceNormalizer
	options Options
}

// NewValidator creates a Validator with default options.
func NewValidator(prices *normalize.PriceNormalizer) *Validator {
	return NewValidatorWithOptions(prices, DefaultOptions())
}

// NewValidatorWithOptions creates a Validator with custom options.
// A nil normalizer means normalize.DefaultPrices.
func NewValidatorWithOptions(prices *normalize.PriceNormalizer, options Options) *Validator {
	if prices == nil {
		prices = normalize.DefaultPrices
	}
	if options.Strictness == "" {
		options.Strictness = StrictnessStandard
	}
	if options.PriceRowTypes == nil {
		options.PriceRowTypes = []int{types.TagVersion}
	}
	return &Validator{prices: prices, options: options}
}

// Applies reports whether the price rules apply to row.
func (v *Validator) Applies(row types.Row) bool {
	if row.Malformed {
		return false
	}
	tag, ok := row.TypeTag()
	return ok && slices.Contains(v.options.PriceRowTypes, tag)
}

// ValidateRow checks a single row. dataIndex is stored in the violations.
func (v *Validator) ValidateRow(row types.Row, dataIndex int) []*Violation {
	if !v.Applies(row) {
		return nil
	}

	var violations []*Violation

	p1, p2 := row.Price1(), row.Price2()
	p1Valid := v.prices.IsValidCell(p1)
	p2Valid := v.prices.IsValidCell(p2)

	if !p1Valid {
		violations = append(violations, &Violation{
			Kind:    types.FindingMissingPrice1,
			Row:     dataIndex,
			Columns: []int{types.ColPrice1},
			Value:   p1.String(),
			Message: "price1 is mandatory and must be a positive price",
		})
	}

	if v.options.Strictness == StrictnessPaired && !p2Valid && strings.TrimSpace(p2.String()) != "" {
		violations = append(violations, &Violation{
			Kind:    types.FindingInvalidPrice2,
			Row:     dataIndex,
			Columns: []int{types.ColPrice2},
			Value:   p2.String(),
			Message: "price2 is populated but is not a positive price",
		})
	}

	if p1Valid && p2Valid {
		a, _ := v.prices.DecodeCell(p1)
		b, _ := v.prices.DecodeCell(p2)
		if a < b {
			violations = append(violations, &Violation{
				Kind:    types.FindingPriceOrder,
				Row:     dataIndex,
				Columns: []int{types.ColPrice1, types.ColPrice2},
				Value:   fmt.Sprintf("%s < %s", p1.String(), p2.String()),
				Message: fmt.Sprintf("price1 (%d) is lower than price2 (%d)", a, b),
			})
		}
	}

	return violations
}

// =============================================================================
// CATALOG VALIDATION
// =============================================================================

// Result contains the results of validating a whole catalog.
type Result struct {
	// IsValid is true if no row violated a rule.
	IsValid bool

	// Violations contains every violation in row order.
	Violations []*Violation

	// RowsValidated counts rows the rules applied to.
	RowsValidated int
}

// ValidateCatalog checks every row of a catalog on its own.
func (v *Validator) ValidateCatalog(cat *types.Catalog) *Result {
	result := &Result{IsValid: true}
	if cat == nil {
		return result
	}

	for i, row := range cat.Rows {
		if !v.Applies(row) {
			continue
		}
		result.RowsValidated++
		result.Violations = append(result.Violations, v.ValidateRow(row, i)...)
	}

	result.IsValid = len(result.Violations) == 0
	return result
}

// FormatViolations renders violations one per line.
func FormatViolations(violations []*Violation) string {
	if len(violations) == 0 {
		return "No violations found."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d violation(s):\n", len(violations))
	for i, v := range violations {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, v.Error())
	}
	return sb.String()
}
