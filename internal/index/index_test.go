package index

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/catalog-reconciler/internal/annotate"
	"github.com/ginjaninja78/catalog-reconciler/internal/types"
)

func reference() *types.Catalog {
	return annotate.YearContext(types.FromRaw("ref", [][]any{
		{"Tipo", "Clase", "Versiones", "Precio", "Precio2"},
		{3, "", "2024"},
		{4, "SUV", "MDX A-Spec", "80000", "78000"},
		{3, "", "2025"},
		{4, "SUV", "MDX A-Spec", "85000", "82000"},
		{4, "SUV", "MDX Type S", "96000", "92000"},
		{4, "SUV", "MDX Type S", "97000", "92000"},
		{4, "SUV"},
	}))
}

func TestBuildExactAndFallback(t *testing.T) {
	idx := Build(reference(), nil)

	require.Contains(t, idx.Exact, "4|MDX A-Spec|2024")
	require.Contains(t, idx.Exact, "4|MDX A-Spec|2025")
	assert.Equal(t, 1, idx.Exact["4|MDX A-Spec|2024"].Index)

	fb, ok := idx.Fallback["MDX A-Spec"]
	require.True(t, ok)
	assert.Equal(t, 2025, fb.Row.ContextYear, "most recent year wins")

	assert.Equal(t, 1, idx.Skipped)
}

func TestBuildDuplicatesLastWins(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)

	idx := Build(reference(), logger)

	assert.Equal(t, []string{"4|MDX Type S|2025"}, idx.DuplicateKeys)
	assert.Equal(t, 5, idx.Exact["4|MDX Type S|2025"].Index)
	assert.Equal(t, 4, idx.Fallback["MDX Type S"].Index, "equal years keep the first row")
	assert.Contains(t, buf.String(), "duplicate reference entry")
}

func TestDuplicateReferenceIsDebugOnly(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.InfoLevel)

	idx := Build(reference(), logger)

	require.Len(t, idx.DuplicateKeys, 1)
	assert.NotContains(t, buf.String(), "duplicate reference entry")
}

func TestResolve(t *testing.T) {
	idx := Build(reference(), nil)

	e, fallback, ok := idx.Resolve("4|MDX A-Spec|2024", "MDX A-Spec")
	require.True(t, ok)
	assert.False(t, fallback)
	assert.Equal(t, 1, e.Index)

	e, fallback, ok = idx.Resolve("4|MDX A-Spec|_", "MDX A-Spec")
	require.True(t, ok)
	assert.True(t, fallback)
	assert.Equal(t, 3, e.Index)

	_, _, ok = idx.Resolve("4|RDX|2025", "RDX")
	assert.False(t, ok)
}

func TestBuildNil(t *testing.T) {
	idx := Build(nil, nil)
	assert.Empty(t, idx.Exact)
	assert.Empty(t, idx.Fallback)
}
