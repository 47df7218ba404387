package excel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/example/tutorcore/internal/graph"
	"github.com/example/tutorcore/pkg/models"
)

func writeXLSX(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cellName, &row))
	}
	path := filepath.Join(t.TempDir(), "graph.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestImportGraphFromExcel(t *testing.T) {
	path := writeXLSX(t, [][]any{
		{"id", "title", "prerequisites", "bloom", "difficulty", "unit"},
		{"values", "Values", "", "understand", 0.1, "basics"},
		{"functions", "Functions", "values", "Apply", 0.4, "basics"},
		{"closures", "Closures", "functions; values", "analyze", "", "advanced"},
	})

	cfg := DefaultImportConfig()
	cfg.FilePath = path
	g, res, err := ImportGraph(cfg)
	require.NoError(t, err)

	assert.Equal(t, 3, res.TotalProcessed)
	assert.Equal(t, 3, res.Imported)
	assert.Empty(t, res.Errors)
	assert.Equal(t, []string{"values", "functions", "closures"}, g.IDs())

	c, ok := g.Concept("closures")
	require.True(t, ok)
	assert.Equal(t, []string{"functions", "values"}, c.Prerequisites)
	assert.Equal(t, models.BloomAnalyze, c.BloomTarget)
	assert.Equal(t, DefaultDifficulty, c.Difficulty)
	assert.Equal(t, "advanced", c.Unit)

	c, _ = g.Concept("functions")
	assert.Equal(t, models.BloomApply, c.BloomTarget)
	assert.InDelta(t, 0.4, c.Difficulty, 1e-9)

	assert.Empty(t, graph.ValidateGraph(g))
}

func TestImportGraphReportsBadRows(t *testing.T) {
	path := writeXLSX(t, [][]any{
		{"id", "title", "prerequisites", "bloom", "difficulty"},
		{"a", "A", "", "remember", 0.2},
		{"", "No id", "", "apply", 0.2},
		{"b", "B", "a", "master", 0.2},
		{"c", "C", "a", "apply", 1.5},
		{"a", "Again", "", "apply", 0.2},
		{},
		{"d", "D", "a", "apply", 0.3},
	})

	cfg := DefaultImportConfig()
	cfg.FilePath = path
	g, res, err := ImportGraph(cfg)
	require.NoError(t, err)

	assert.Equal(t, 6, res.TotalProcessed)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 4, res.Skipped)
	require.Len(t, res.Errors, 4)
	assert.Contains(t, res.Errors[0], "Row 3")
	assert.Contains(t, res.Errors[3], "already on row 2")
	assert.Equal(t, []string{"a", "d"}, g.IDs())
}

func TestImportGraphFromCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"id,title,prerequisites,bloom,difficulty,unit\n"+
			"values,Values,,understand,0.1,basics\n"+
			"functions,Functions,\"values\",apply,0.4,basics\n"+
			"loops,Loops,\"values, functions\",apply,0.3\n",
	), 0o644))

	cfg := DefaultImportConfig()
	cfg.FilePath = path
	g, res, err := ImportGraph(cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Imported)
	assert.Equal(t, []string{"values", "functions", "loops"}, g.IDs())

	c, _ := g.Concept("loops")
	assert.Equal(t, []string{"values", "functions"}, c.Prerequisites)
	assert.Empty(t, c.Unit)
}

func TestImportGraphCustomColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.csv")
	require.NoError(t, os.WriteFile(path, []byte("apply,x\nremember,y\n"), 0o644))

	g, res, err := ImportGraph(ImportConfig{FilePath: path, IDColumn: "B", BloomColumn: "A", StartRow: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, []string{"x", "y"}, g.IDs())
}

func TestImportGraphErrors(t *testing.T) {
	_, _, err := ImportGraph(ImportConfig{FilePath: "x.csv", BloomColumn: "D"})
	assert.Error(t, err, "id column is required")

	cfg := DefaultImportConfig()
	cfg.IDColumn = "1A"
	_, _, err = ImportGraph(cfg)
	assert.Error(t, err)

	cfg = DefaultImportConfig()
	cfg.FilePath = filepath.Join(t.TempDir(), "missing.xlsx")
	_, _, err = ImportGraph(cfg)
	assert.Error(t, err)

	cfg.FilePath = writeXLSX(t, [][]any{{"id"}})
	cfg.SheetName = "Nope"
	_, _, err = ImportGraph(cfg)
	assert.Error(t, err)
}
