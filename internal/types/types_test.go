package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCell(t *testing.T) {
	tests := []struct {
		in   string
		kind CellKind
		out  string
	}{
		{"", KindEmpty, ""},
		{"85000", KindNumber, "85000"},
		{"-12.5", KindNumber, "-12.5"},
		{"007", KindText, "007"},
		{"1.50", KindText, "1.50"},
		{"MDX A-Spec", KindText, "MDX A-Spec"},
		{"$85,000", KindText, "$85,000"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c := ParseCell(tt.in)
			assert.Equal(t, tt.kind, c.Kind())
			assert.Equal(t, tt.out, c.String())
		})
	}
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "85000", FormatNumber(85000))
	assert.Equal(t, "0.1", FormatNumber(0.1))
	assert.Equal(t, "1e+21", FormatNumber(1e21))
	assert.Equal(t, "1e-7", FormatNumber(1e-7))
	assert.Equal(t, "0", FormatNumber(0))
}

func TestCellOf(t *testing.T) {
	assert.True(t, CellOf(nil).IsEmpty())
	assert.Equal(t, KindNumber, CellOf(4).Kind())
	assert.Equal(t, "4", CellOf(int64(4)).String())
	assert.Equal(t, KindText, CellOf("SUV").Kind())
	assert.True(t, CellOf("").IsEmpty())
}

func TestRowTypeTag(t *testing.T) {
	tag, ok := NewRow(NumberCell(4), EmptyCell(), TextCell("x")).TypeTag()
	require.True(t, ok)
	assert.Equal(t, TagVersion, tag)

	tag, ok = NewRow(TextCell(" 3 "), EmptyCell(), TextCell("2024")).TypeTag()
	require.True(t, ok)
	assert.Equal(t, TagYear, tag)

	_, ok = NewRow(TextCell("brand"), EmptyCell(), TextCell("x")).TypeTag()
	assert.False(t, ok)
}

func TestFromRaw(t *testing.T) {
	cat := FromRaw("base", [][]any{
		{"Tipo", "Clase", "Versiones", "Precio", "Precio2"},
		{4, "SUV", "MDX A-Spec", "85000", "82000"},
		nil,
		{1, "Acura"},
	})
	require.NotNil(t, cat)

	assert.Equal(t, 5, cat.Width())
	require.Len(t, cat.Rows, 3)
	assert.False(t, cat.Rows[0].Malformed)
	assert.True(t, cat.Rows[1].Malformed)
	assert.True(t, cat.Rows[2].Malformed)
	assert.Equal(t, "MDX A-Spec", cat.Rows[0].VersionLabel())

	assert.Nil(t, FromRaw("nil", nil))
	assert.True(t, FromRaw("empty", [][]any{}).IsEmpty())
}

func TestMatrixAppendsContextYear(t *testing.T) {
	cat := FromRaw("base", [][]any{
		{"Tipo", "Clase", "Versiones", "Precio", "Precio2"},
		{4, "SUV", "MDX"},
	})
	cat.Rows[0].ContextYear = 2025

	m := cat.Matrix()
	require.Len(t, m, 2)
	require.Len(t, m[0], 6)
	assert.Equal(t, ContextYearHeader, m[0][5].String())
	assert.Equal(t, "2025", m[1][5].String())
	assert.True(t, m[1][3].IsEmpty())
}

func TestCloneIsDeep(t *testing.T) {
	cat := FromRaw("base", [][]any{{"a", "b", "c"}, {4, "x", "y"}})
	cp := cat.Clone()
	cp.Rows[0].Cells[2] = TextCell("changed")
	cp.Rows[0].ContextYear = 2020

	assert.Equal(t, "y", cat.Rows[0].VersionLabel())
	assert.Equal(t, 0, cat.Rows[0].ContextYear)
}

func TestDifferenceSet(t *testing.T) {
	s := NewDifferenceSet()
	assert.True(t, s.Add(2, 3))
	assert.False(t, s.Add(2, 3))
	s.Add(0, 4)
	s.Add(2, 1)

	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Has(0, 4))
	assert.False(t, s.Has(4, 0))
	assert.Equal(t, []string{"0:4", "2:1", "2:3"}, s.Strings())
}
