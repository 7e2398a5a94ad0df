package comparison

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/catalog-reconciler/internal/config"
	"github.com/ginjaninja78/catalog-reconciler/internal/reconcile"
)

var header = []any{"Tipo", "Clase", "Versiones", "Precio", "Precio2", "Temp Notes"}

func writeWorkbook(t *testing.T, path string, rows [][]any) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

func testConfig(t *testing.T) *config.MainConfig {
	t.Helper()
	root := t.TempDir()
	cfg := config.DefaultMainConfig()
	cfg.InputDir = filepath.Join(root, "input")
	cfg.OutputDir = filepath.Join(root, "output")
	cfg.InputArchiveDir = filepath.Join(root, "archive")
	cfg.OutputNameFormat = "{job}_diff"
	require.NoError(t, os.MkdirAll(cfg.InputDir, 0o755))
	return cfg
}

func writeJobInputs(t *testing.T, cfg *config.MainConfig) *config.JobConfig {
	t.Helper()
	writeWorkbook(t, filepath.Join(cfg.InputDir, "base.xlsx"), [][]any{
		header,
		{3, nil, 2025},
		{4, "SUV", "MDX", 95000, 92000, "check"},
		{4, "SUV", "RDX", nil, 50000},
	})
	writeWorkbook(t, filepath.Join(cfg.InputDir, "ref.xlsx"), [][]any{
		header,
		{3, nil, 2025},
		{4, "SUV", "MDX", 96000, 92000, "other note"},
		{4, "SUV", "RDX", nil, 50000},
	})
	return &config.JobConfig{
		JobName:       "Acura",
		JobCode:       "acura",
		BaseFile:      "base.xlsx",
		ReferenceFile: "ref.xlsx",
	}
}

func TestRunWritesOutputs(t *testing.T) {
	cfg := testConfig(t)
	job := writeJobInputs(t, cfg)

	res := New(job, cfg, nil).Run()
	require.NoError(t, res.Error)
	assert.True(t, res.Success)

	assert.Equal(t, []string{"1:3", "2:3"}, res.Differences)
	assert.Equal(t, 3, res.Stats.BaseRows)
	assert.Equal(t, 3, res.Stats.ExactMatches)
	assert.NotEmpty(t, res.RunID)

	assert.Equal(t, filepath.Join(cfg.OutputDir, "acura_diff.xlsx"), res.OutputFile)
	assert.Equal(t, filepath.Join(cfg.OutputDir, "acura_diff.xml"), res.ReportFile)

	f, err := excelize.OpenFile(res.OutputFile)
	require.NoError(t, err)
	defer f.Close()

	// The scratch column is gone and the year column takes its place.
	label, err := f.GetCellValue("Comparison", "F1")
	require.NoError(t, err)
	assert.Equal(t, "ContextYear", label)

	xmlData, err := os.ReadFile(res.ReportFile)
	require.NoError(t, err)
	assert.Contains(t, string(xmlData), `job="acura"`)
	assert.Contains(t, string(xmlData), `kind="missing_price1"`)

	// Inputs stay put unless archiving is on.
	assert.FileExists(t, res.BaseFile)
}

func TestRunArchivesInputs(t *testing.T) {
	cfg := testConfig(t)
	cfg.ArchiveInputs = true
	disabled := false
	cfg.WriteXMLReport = &disabled
	job := writeJobInputs(t, cfg)

	res := New(job, cfg, nil).Run()
	require.NoError(t, res.Error)

	assert.Empty(t, res.ReportFile)
	assert.NoFileExists(t, res.BaseFile)
	assert.FileExists(t, filepath.Join(cfg.InputArchiveDir, "base.xlsx"))
	assert.FileExists(t, filepath.Join(cfg.InputArchiveDir, "ref.xlsx"))
}

func TestRunAppliesJobPolicy(t *testing.T) {
	cfg := testConfig(t)
	job := writeJobInputs(t, cfg)
	job.Reconcile = &config.ReconcileConfig{PriceTolerance: 1000}

	res := New(job, cfg, nil).Run()
	require.NoError(t, res.Error)
	assert.Equal(t, []string{"2:3"}, res.Differences)
}

func TestRunCSVCatalogs(t *testing.T) {
	cfg := testConfig(t)
	base := "Tipo;Clase;Versiones;Precio;Precio2\n4;SUV;MDX;85.000;82.000\n"
	ref := "Tipo;Clase;Versiones;Precio;Precio2\n4;SUV;MDX;$85,000;82000\n"
	require.NoError(t, os.WriteFile(filepath.Join(cfg.InputDir, "base.csv"), []byte(base), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.InputDir, "ref.csv"), []byte(ref), 0o644))

	job := &config.JobConfig{
		JobCode:       "csv",
		BaseFile:      "base.csv",
		ReferenceFile: "ref.csv",
		CSV:           &config.CSVSettings{Delimiter: ";"},
	}

	res := New(job, cfg, nil).Run()
	require.NoError(t, res.Error)
	assert.Empty(t, res.Differences)
	assert.Equal(t, 1, res.Stats.ExactMatches)
}

func TestRunFailures(t *testing.T) {
	cfg := testConfig(t)

	res := New(nil, cfg, nil).Run()
	assert.False(t, res.Success)
	assert.Error(t, res.Error)

	res = New(&config.JobConfig{JobCode: "x", BaseFile: "missing.xlsx", ReferenceFile: "ref.xlsx"}, cfg, nil).Run()
	assert.False(t, res.Success)
	assert.ErrorContains(t, res.Error, "base catalog")

	res = New(&config.JobConfig{JobCode: "x", BaseFile: "a.ods", ReferenceFile: "b.ods"}, cfg, nil).Run()
	assert.ErrorContains(t, res.Error, "unsupported catalog format")
}

func TestRunEmptyCatalogsIsFatal(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.InputDir, "a.csv"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.InputDir, "b.csv"), nil, 0o644))

	res := New(&config.JobConfig{JobCode: "empty", BaseFile: "a.csv", ReferenceFile: "b.csv"}, cfg, nil).Run()
	assert.ErrorIs(t, res.Error, reconcile.ErrEmptyInput)
	assert.Empty(t, res.OutputFile)
}

func TestRunAsync(t *testing.T) {
	cfg := testConfig(t)
	job := writeJobInputs(t, cfg)

	select {
	case res := <-New(job, cfg, nil).RunAsync(context.Background()):
		require.NoError(t, res.Error)
		assert.True(t, res.Success)
	case <-time.After(30 * time.Second):
		t.Fatal("async comparison did not finish")
	}
}

func TestRunAsyncCanceled(t *testing.T) {
	cfg := testConfig(t)
	job := writeJobInputs(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch := New(job, cfg, nil).RunAsync(ctx)
	res, ok := <-ch
	require.True(t, ok)
	assert.ErrorIs(t, res.Error, context.Canceled)
	assert.Equal(t, "acura", res.JobCode)

	_, ok = <-ch
	assert.False(t, ok, "exactly one result is delivered")
}
