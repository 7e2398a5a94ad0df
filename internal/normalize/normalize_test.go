package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/catalog-reconciler/internal/types"
)

func TestCell(t *testing.T) {
	tests := []struct {
		name string
		in   types.Cell
		want string
	}{
		{"blank", types.EmptyCell(), ""},
		{"number", types.NumberCell(4), "4"},
		{"case and padding", types.TextCell("  MDX  Type   S "), "mdx type s"},
		{"currency symbols", types.TextCell("$85,000"), "85000"},
		{"float surface", types.NumberCell(85000.0), "85000"},
		{"text stays text", types.TextCell("SUV"), "suv"},
		{"tabs collapse", types.TextCell("a\t\tb"), "a b"},
		{"non-breaking space", types.TextCell("SUV\u00a0 Premium"), "suv premium"},
		{"unicode spaces", types.TextCell("\u3000MDX\u2009Type\u00a0\u00a0S\uFEFF"), "mdx type s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Cell(tt.in))
		})
	}
}

func TestNormalizePriceEquivalentFormats(t *testing.T) {
	inputs := []string{
		"85000",
		"85,000",
		"85.000",
		"$85,000",
		"85 000",
		"85\u00A0000",
		"85000 MXN",
		"$ 85,000.00",
		"85.000,00",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, "85000", NormalizePrice(in))
		})
	}
}

func TestNormalizePrice(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"0", ""},
		{"abc", ""},
		{"N/A", ""},
		{"—", ""},
		{"-123", ""},
		{"1.234.000", "1234000"},
		{"1,234,000", "1234000"},
		{"1\u200B234\u00A0000", "1234000"},
		{"$ 1,234,000 MXN", "1234000"},
		{"1.234,56", "1235"},
		{"1,234.56", "1235"},
		{"1234,4", "1234"},
		{"12.5", "13"},
		{"0,4", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePrice(tt.in))
		})
	}
}

func TestNormalizePriceIsIdempotent(t *testing.T) {
	for _, in := range []string{"85000", "$85,000", "1.234.567", "99,90"} {
		once := NormalizePrice(in)
		require.NotEmpty(t, once, in)
		assert.Equal(t, once, NormalizePrice(once), in)
	}
}

func TestCentsUnit(t *testing.T) {
	p := &PriceNormalizer{Unit: UnitCents}

	assert.Equal(t, "123456", p.Normalize("1.234,56"))
	assert.Equal(t, "123456", p.Normalize("1,234.56"))
	assert.Equal(t, "8500000", p.Normalize("85,000"))
	assert.Equal(t, "", p.Normalize("0.004"))
}

func TestAllowNegative(t *testing.T) {
	p := &PriceNormalizer{Unit: UnitWhole, AllowNegative: true}

	assert.Equal(t, "-123", p.Normalize("-123"))
	assert.Equal(t, "-1234", p.Normalize("-$1,234"))
	assert.False(t, p.IsValid("-123"), "negative amounts are never valid prices")

	v, ok := p.Decode("-123")
	require.True(t, ok)
	assert.Equal(t, int64(-123), v)
}

func TestIsValidPriceMatchesNormalize(t *testing.T) {
	for _, in := range []string{"", "0", "abc", "-5", "85000", "85.000", "1,5", "$ 99"} {
		n := NormalizePrice(in)
		v, ok := DefaultPrices.Decode(in)
		assert.Equal(t, n != "" && ok && v > 0, IsValidPrice(in), in)
	}
}

func TestNormalizeCellUsesStringForm(t *testing.T) {
	assert.Equal(t, "85000", DefaultPrices.NormalizeCell(types.NumberCell(85000)))
	assert.Equal(t, "", DefaultPrices.NormalizeCell(types.EmptyCell()))
	assert.True(t, DefaultPrices.IsValidCell(types.TextCell("$92,000")))
}

func TestParseUnit(t *testing.T) {
	u, err := ParseUnit("")
	require.NoError(t, err)
	assert.Equal(t, UnitWhole, u)

	u, err = ParseUnit("CENTS")
	require.NoError(t, err)
	assert.Equal(t, UnitCents, u)

	_, err = ParseUnit("pesos")
	assert.Error(t, err)
}
