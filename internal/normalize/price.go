package normalize

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ginjaninja78/catalog-reconciler/internal/types"
)

// =============================================================================
// UNITS
// =============================================================================

// Unit selects what one step of a normalized price represents.
type Unit string

const (
	// UnitWhole stores prices as whole currency units (rounded).
	UnitWhole Unit = "whole"

	// UnitCents stores prices as minor units (x100, rounded).
	UnitCents Unit = "cents"
)

// ParseUnit validates a unit name from configuration. "" means UnitWhole.
func ParseUnit(s string) (Unit, error) {
	switch Unit(strings.ToLower(strings.TrimSpace(s))) {
	case "", UnitWhole:
		return UnitWhole, nil
	case UnitCents:
		return UnitCents, nil
	default:
		return "", fmt.Errorf("unknown price unit %q (want %q or %q)", s, UnitWhole, UnitCents)
	}
}

// =============================================================================
// PRICE NORMALIZER
// =============================================================================

// PriceNormalizer converts price strings from heterogeneous spreadsheet
// exports into integer amounts, without a locale flag.
//
// One instance should be shared by every component of a comparison so that
// base and reference prices always use the same unit.
type PriceNormalizer struct {
	// Unit is the integer unit of normalized prices.
	Unit Unit

	// AllowNegative keeps negative amounts instead of rejecting them.
	// Negative amounts are never valid prices either way (see IsValid).
	AllowNegative bool
}

// DefaultPrices is the whole-unit, positive-only normalizer.
var DefaultPrices = &PriceNormalizer{Unit: UnitWhole}

// NormalizePrice normalizes with DefaultPrices.
func NormalizePrice(raw string) string {
	return DefaultPrices.Normalize(raw)
}

// IsValidPrice validates with DefaultPrices.
func IsValidPrice(raw string) bool {
	return DefaultPrices.IsValid(raw)
}

// DecodePrice decodes with DefaultPrices.
func DecodePrice(raw string) (int64, bool) {
	return DefaultPrices.Decode(raw)
}

// maxAmount keeps rounded amounts inside int64.
const maxAmount = 1 << 62

var leadingNumber = regexp.MustCompile(`^(\d+\.?\d*|\.\d+)`)

// Normalize returns the integer amount of raw as a decimal string, or ""
// when raw holds no usable price.
//
// ALGORITHM:
//  1. Empty input is invalid.
//  2. Remove every whitespace character, including no-break and the
//     U+2000..U+200B range (removed, not collapsed).
//  3. Keep only digits, ".", "," and "-".
//  4. A leading "-" is the sign.
//  5. Decide which separator is the decimal point (see resolveSeparators).
//  6. Parse the leading number, scale by the unit and round half up.
//  7. Zero, overflow and (unless AllowNegative) negative amounts are invalid.
func (p *PriceNormalizer) Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	// Whitespace of every class, currency symbols and text all fall outside
	// the kept set, so steps 2 and 3 are a single pass.
	s := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' || r == '-' {
			return r
		}
		return -1
	}, raw)

	negative := strings.HasPrefix(s, "-")
	if negative {
		s = s[1:]
	}

	s = resolveSeparators(s)

	match := leadingNumber.FindString(s)
	if match == "" {
		return ""
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return ""
	}

	if p.Unit == UnitCents {
		f *= 100
	}
	amount := math.Floor(f + 0.5)

	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 || amount >= maxAmount {
		return ""
	}

	if negative {
		if !p.AllowNegative {
			return ""
		}
		return "-" + strconv.FormatInt(int64(amount), 10)
	}
	return strconv.FormatInt(int64(amount), 10)
}

// NormalizeCell normalizes the string form of a cell.
func (p *PriceNormalizer) NormalizeCell(c types.Cell) string {
	return p.Normalize(c.String())
}

// Decode returns the normalized amount of raw.
// ok is false when raw holds no usable price.
func (p *PriceNormalizer) Decode(raw string) (amount int64, ok bool) {
	n := p.Normalize(raw)
	if n == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(n, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// DecodeCell decodes the string form of a cell.
func (p *PriceNormalizer) DecodeCell(c types.Cell) (int64, bool) {
	return p.Decode(c.String())
}

// IsValid reports whether raw normalizes to a strictly positive amount.
func (p *PriceNormalizer) IsValid(raw string) bool {
	v, ok := p.Decode(raw)
	return ok && v > 0
}

// IsValidCell validates the string form of a cell.
func (p *PriceNormalizer) IsValidCell(c types.Cell) bool {
	return p.IsValid(c.String())
}

// =============================================================================
// HELPERS
// =============================================================================

// resolveSeparators rewrites an unsigned digit string so that "." is the only
// decimal point and thousands separators are gone.
//
//   - Both "." and ",": the one occurring last is the decimal point.
//     "1.234,56" -> "1234.56", "1,234.56" -> "1234.56".
//   - Only ",": a final group of at most 2 digits is decimals ("1234,5" ->
//     "1234.5"), otherwise every comma is a thousands separator.
//   - Only ".": a final group of exactly 3 digits means thousands
//     ("1.234.567" -> "1234567"), otherwise the dot is the decimal point.
func resolveSeparators(s string) string {
	hasDot := strings.Contains(s, ".")
	hasComma := strings.Contains(s, ",")

	switch {
	case hasDot && hasComma:
		if strings.LastIndex(s, ".") > strings.LastIndex(s, ",") {
			return keepLastAsDecimal(strings.ReplaceAll(s, ",", ""), ".")
		}
		return keepLastAsDecimal(strings.ReplaceAll(s, ".", ""), ",")

	case hasComma:
		parts := strings.Split(s, ",")
		if len(parts[len(parts)-1]) <= 2 {
			return keepLastAsDecimal(s, ",")
		}
		return strings.ReplaceAll(s, ",", "")

	case hasDot:
		parts := strings.Split(s, ".")
		if len(parts[len(parts)-1]) == 3 {
			return strings.ReplaceAll(s, ".", "")
		}
		return s

	default:
		return s
	}
}

// keepLastAsDecimal drops every sep except the last, which becomes ".".
func keepLastAsDecimal(s, sep string) string {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s
	}
	return strings.ReplaceAll(s[:i], sep, "") + "." + s[i+len(sep):]
}
