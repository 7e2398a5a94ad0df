package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/catalog-reconciler/internal/normalize"
	"github.com/ginjaninja78/catalog-reconciler/internal/types"
)

func row(values ...any) types.Row {
	cells := make([]types.Cell, len(values))
	for i, v := range values {
		cells[i] = types.CellOf(v)
	}
	return types.NewRow(cells...)
}

func kinds(vs []*Violation) []types.FindingKind {
	out := make([]types.FindingKind, len(vs))
	for i, v := range vs {
		out[i] = v.Kind
	}
	return out
}

func TestValidateRow(t *testing.T) {
	v := NewValidator(nil)

	tests := []struct {
		name string
		row  types.Row
		want []types.FindingKind
	}{
		{"valid pair", row(4, "SUV", "MDX A-Spec", "85000", "82000"), []types.FindingKind{}},
		{"price2 optional", row(4, "SUV", "MDX A-Spec", "85000", ""), []types.FindingKind{}},
		{"price1 missing", row(4, "SUV", "MDX A-Spec", "", "82000"), []types.FindingKind{types.FindingMissingPrice1}},
		{"price1 zero", row(4, "SUV", "MDX A-Spec", "0", ""), []types.FindingKind{types.FindingMissingPrice1}},
		{"price2 above price1", row(4, "Sedan", "TLX A-Spec", "80000", "85000"), []types.FindingKind{types.FindingPriceOrder}},
		{"equal prices", row(4, "Sedan", "TLX", "80,000", "80.000"), []types.FindingKind{}},
		{"header rows skipped", row(3, "SUV", "MDX A-Spec", "", ""), []types.FindingKind{}},
		{"invalid price2 tolerated", row(4, "SUV", "MDX", "85000", "N/A"), []types.FindingKind{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, kinds(v.ValidateRow(tt.row, 7)))
		})
	}
}

func TestPriceOrderFlagsBothColumns(t *testing.T) {
	v := NewValidator(nil)
	vs := v.ValidateRow(row(4, "Sedan", "TLX A-Spec", "80000", "85000"), 3)
	require.Len(t, vs, 1)
	assert.Equal(t, []int{types.ColPrice1, types.ColPrice2}, vs[0].Columns)
	assert.Equal(t, 3, vs[0].Row)
	assert.Contains(t, vs[0].Error(), "price_order")
}

func TestPairedStrictness(t *testing.T) {
	v := NewValidatorWithOptions(nil, Options{Strictness: StrictnessPaired})

	vs := v.ValidateRow(row(4, "SUV", "MDX", "85000", "N/A"), 0)
	assert.Equal(t, []types.FindingKind{types.FindingInvalidPrice2}, kinds(vs))

	vs = v.ValidateRow(row(4, "SUV", "MDX", "85000", ""), 0)
	assert.Empty(t, vs, "an empty price2 is still optional")
}

func TestCentsValidator(t *testing.T) {
	v := NewValidator(&normalize.PriceNormalizer{Unit: normalize.UnitCents})
	assert.Empty(t, v.ValidateRow(row(4, "", "TLX", "0.50", ""), 0))
	assert.NotEmpty(t, NewValidator(nil).ValidateRow(row(4, "", "TLX", "0.40", ""), 0))
}

func TestValidateCatalog(t *testing.T) {
	cat := types.FromRaw("base", [][]any{
		{"Tipo", "Clase", "Versiones", "Precio", "Precio2"},
		{1, "", "Acura"},
		{4, "SUV", "MDX", "85000", "82000"},
		{4, "SUV", "RDX", "", ""},
	})

	res := NewValidator(nil).ValidateCatalog(cat)
	assert.False(t, res.IsValid)
	assert.Equal(t, 2, res.RowsValidated)
	require.Len(t, res.Violations, 1)
	assert.Equal(t, 2, res.Violations[0].Row)
	assert.Contains(t, FormatViolations(res.Violations), "Found 1 violation(s)")
	assert.Equal(t, "No violations found.", FormatViolations(nil))
}

func TestParseStrictness(t *testing.T) {
	s, err := ParseStrictness("PAIRED")
	require.NoError(t, err)
	assert.Equal(t, StrictnessPaired, s)

	_, err = ParseStrictness("lenient")
	assert.Error(t, err)
}
