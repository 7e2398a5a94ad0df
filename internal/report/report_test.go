package report

import (
	"encoding/xml"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/catalog-reconciler/internal/reconcile"
	"github.com/ginjaninja78/catalog-reconciler/internal/types"
)

func sampleResult(t *testing.T) *reconcile.Result {
	t.Helper()
	header := []any{"Tipo", "Clase", "Versiones", "Precio", "Precio2"}
	base := types.FromRaw("base.xlsx", [][]any{
		header,
		{3, "", 2025},
		{4, "SUV", "MDX", 95000, 92000},
	})
	ref := types.FromRaw("ref.xlsx", [][]any{
		header,
		{3, "", 2025},
		{4, "SUV", "MDX", 96000, 92000},
	})

	res, err := reconcile.New(reconcile.DefaultOptions()).Reconcile(base, ref)
	require.NoError(t, err)
	require.Equal(t, []string{"1:3"}, res.Differences.Strings())
	return res
}

func TestCellName(t *testing.T) {
	assert.Equal(t, "D3", CellName(types.Coord{Row: 1, Col: 3}))
	assert.Equal(t, "A2", CellName(types.Coord{Row: 0, Col: 0}))
}

func TestWriteWorkbookHighlightsDifferences(t *testing.T) {
	res := sampleResult(t)
	path := filepath.Join(t.TempDir(), "diff.xlsx")
	require.NoError(t, WriteWorkbook(path, res, DefaultWorkbookOptions()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Comparison", "Findings", "Summary"}, f.GetSheetList())

	header, err := f.GetCellValue("Comparison", "F1")
	require.NoError(t, err)
	assert.Equal(t, types.ContextYearHeader, header)

	year, err := f.GetCellValue("Comparison", "F3")
	require.NoError(t, err)
	assert.Equal(t, "2025", year)

	flagged, err := f.GetCellStyle("Comparison", "D3")
	require.NoError(t, err)
	plain, err := f.GetCellStyle("Comparison", "E3")
	require.NoError(t, err)
	assert.NotEqual(t, plain, flagged)

	kind, err := f.GetCellValue("Findings", "D2")
	require.NoError(t, err)
	assert.Equal(t, string(types.FindingPriceMismatch), kind)

	label, err := f.GetCellValue("Summary", "A11")
	require.NoError(t, err)
	assert.Equal(t, "Differences", label)
	count, err := f.GetCellValue("Summary", "B11")
	require.NoError(t, err)
	assert.Equal(t, "1", count)
}

func TestBuildWorkbookWithoutExtras(t *testing.T) {
	opts := DefaultWorkbookOptions()
	opts.IncludeFindings = false
	opts.IncludeSummary = false
	opts.SheetName = "Base"

	f, err := BuildWorkbook(sampleResult(t), opts)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Base"}, f.GetSheetList())

	_, err = BuildWorkbook(nil, opts)
	assert.Error(t, err)
}

func TestGenerateXML(t *testing.T) {
	res := sampleResult(t)
	meta := Meta{
		RunID:       "run-1",
		Job:         "acura",
		Base:        "base.xlsx",
		Reference:   "ref.xlsx",
		GeneratedAt: time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC),
	}

	data, err := GenerateXML(meta, res)
	require.NoError(t, err)

	text := string(data)
	assert.True(t, strings.HasPrefix(text, xml.Header))
	assert.Contains(t, text, `generatedAt="2025-01-02T15:04:05Z"`)
	assert.Contains(t, text, `<cell row="1" col="3" ref="D3"></cell>`)
	assert.Contains(t, text, `kind="price_mismatch"`)
	assert.Contains(t, text, `differences="1"`)

	var doc xmlReport
	require.NoError(t, xml.Unmarshal(data, &doc))
	assert.Equal(t, "acura", doc.Job)
	assert.Len(t, doc.Findings, 1)
}

func TestWriteXMLRejectsNil(t *testing.T) {
	err := WriteXML(filepath.Join(t.TempDir(), "r.xml"), Meta{}, nil)
	assert.Error(t, err)
}
