package xlsxparser

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/catalog-reconciler/internal/types"
)

func writeWorkbook(t *testing.T, sheet string, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestParseReadsRawValues(t *testing.T) {
	path := writeWorkbook(t, "Sheet1", [][]any{
		{"Tipo", "Clase", "Versiones", "Precio", "Precio2"},
		{0},
		{3, nil, 2025},
		{4, "SUV", "MDX A-Spec", 85000, "$82,000"},
	})

	cat, err := Parse(path)
	require.NoError(t, err)

	assert.Equal(t, "catalog.xlsx", cat.Name)
	assert.Equal(t, []string{"Tipo", "Clase", "Versiones", "Precio", "Precio2"}, cat.Header)
	require.Len(t, cat.Rows, 3)

	assert.True(t, cat.Rows[0].Malformed)
	assert.False(t, cat.Rows[1].Malformed)
	assert.Equal(t, types.KindNumber, cat.Rows[1].Version().Kind())

	row := cat.Rows[2]
	tag, ok := row.TypeTag()
	assert.True(t, ok)
	assert.Equal(t, 4, tag)
	assert.Equal(t, types.KindNumber, row.Price1().Kind())
	assert.Equal(t, "85000", row.Price1().String())
	assert.Equal(t, "$82,000", row.Price2().String())
}

func TestParseKeepsBlankRowsAsPlaceholders(t *testing.T) {
	path := writeWorkbook(t, "Sheet1", [][]any{
		{"Tipo", "Clase", "Versiones"},
		{4, "SUV", "MDX"},
		{},
		{4, "SUV", "RDX"},
	})

	cat, err := Parse(path)
	require.NoError(t, err)
	require.Len(t, cat.Rows, 3)
	assert.True(t, cat.Rows[1].Malformed)
	assert.Equal(t, "RDX", cat.Rows[2].VersionLabel())
}

func TestParseWithOptions(t *testing.T) {
	path := writeWorkbook(t, "Precios", [][]any{
		{"Lista de precios 2025"},
		{"Tipo", "Clase", "Versiones", "Precio", "Precio2", types.ContextYearHeader},
		{4, "SUV", "MDX", 85000, 82000, 2025},
	})

	cat, err := ParseWithOptions(path, Options{Sheet: "Precios", HeaderRow: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"Tipo", "Clase", "Versiones", "Precio", "Precio2"}, cat.Header)
	require.Len(t, cat.Rows, 1)
	assert.Len(t, cat.Rows[0].Cells, 5)

	_, err = ParseWithOptions(path, Options{Sheet: "Missing"})
	assert.ErrorContains(t, err, "not found")
}

func TestParseHeaderBeyondData(t *testing.T) {
	path := writeWorkbook(t, "Sheet1", [][]any{{"Tipo"}})
	cat, err := ParseWithOptions(path, Options{HeaderRow: 5})
	require.NoError(t, err)
	assert.True(t, cat.IsEmpty())
}

func TestParseMissingFile(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.Error(t, err)
}

func TestSheetNames(t *testing.T) {
	path := writeWorkbook(t, "Precios", [][]any{{"Tipo"}})
	names, err := SheetNames(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sheet1", "Precios"}, names)
}
