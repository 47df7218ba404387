// Package excel builds knowledge graphs from spreadsheets. Each data row is
// one concept: id, title, prerequisites, bloom target, difficulty, unit.
package excel

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/tutorcore/pkg/models"
)

// DefaultDifficulty is used when the difficulty cell is empty
const DefaultDifficulty = 0.5

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath            string // Path to the Excel or CSV file
	IDColumn            string // Column with the concept id
	TitleColumn         string
	PrerequisitesColumn string // Comma or semicolon separated ids
	BloomColumn         string // Bloom target by name, e.g. "apply"
	DifficultyColumn    string // 0.0 - 1.0
	UnitColumn          string
	SheetName           string // Name of the sheet to import, xlsx only
	StartRow            int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		IDColumn:            "A",
		TitleColumn:         "B",
		PrerequisitesColumn: "C",
		BloomColumn:         "D",
		DifficultyColumn:    "E",
		UnitColumn:          "F",
		SheetName:           "Sheet1",
		StartRow:            2, // skip header
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Imported       int
	Skipped        int
	Errors         []string
}

type columns struct {
	id, title, prereqs, bloom, difficulty, unit int
}

// ImportGraph reads concepts from an Excel or CSV file. Rows that cannot be
// read are skipped and reported in the result; the graph holds the rest in
// row order. The graph is not validated.
func ImportGraph(cfg ImportConfig) (*models.Graph, *ImportResult, error) {
	cols, err := cfg.columns()
	if err != nil {
		return nil, nil, err
	}

	var rows [][]string
	if strings.ToLower(filepath.Ext(cfg.FilePath)) == ".csv" {
		rows, err = readCSV(cfg.FilePath)
	} else {
		rows, err = readExcel(cfg.FilePath, cfg.SheetName)
	}
	if err != nil {
		return nil, nil, err
	}

	start := max(cfg.StartRow, 1)
	result := &ImportResult{Errors: make([]string, 0)}
	concepts := make([]models.Concept, 0, len(rows))
	seen := make(map[string]int)
	for i, row := range rows {
		rowNum := i + 1
		if rowNum < start || isBlank(row) {
			continue
		}
		result.TotalProcessed++

		c, err := parseRow(row, cols)
		if err == nil {
			if first, dup := seen[c.ID]; dup {
				err = fmt.Errorf("%w: %q already on row %d", models.ErrDuplicateConcept, c.ID, first)
			}
		}
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}
		seen[c.ID] = rowNum
		concepts = append(concepts, c)
		result.Imported++
	}

	g, err := models.NewGraph(concepts...)
	if err != nil {
		return nil, nil, err
	}
	return g, result, nil
}

func (cfg ImportConfig) columns() (columns, error) {
	var cols columns
	for _, c := range []struct {
		name string
		dst  *int
		req  bool
	}{
		{cfg.IDColumn, &cols.id, true},
		{cfg.TitleColumn, &cols.title, false},
		{cfg.PrerequisitesColumn, &cols.prereqs, false},
		{cfg.BloomColumn, &cols.bloom, true},
		{cfg.DifficultyColumn, &cols.difficulty, false},
		{cfg.UnitColumn, &cols.unit, false},
	} {
		if c.name == "" {
			if c.req {
				return columns{}, errors.New("excel: id and bloom columns are required")
			}
			*c.dst = -1
			continue
		}
		n, err := excelize.ColumnNameToNumber(c.name)
		if err != nil {
			return columns{}, fmt.Errorf("excel: %w", err)
		}
		*c.dst = n - 1
	}
	return cols, nil
}

func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(row []string, cols columns) (models.Concept, error) {
	c := models.Concept{
		ID:    cell(row, cols.id),
		Title: cell(row, cols.title),
		Unit:  cell(row, cols.unit),
	}
	if c.ID == "" {
		return models.Concept{}, errors.New("concept id cannot be empty")
	}

	bloom, err := models.ParseBloomLevel(strings.ToLower(cell(row, cols.bloom)))
	if err != nil {
		return models.Concept{}, err
	}
	c.BloomTarget = bloom

	c.Difficulty = DefaultDifficulty
	if s := cell(row, cols.difficulty); s != "" {
		d, err := strconv.ParseFloat(s, 64)
		if err != nil || d < 0 || d > 1 {
			return models.Concept{}, fmt.Errorf("difficulty %q is not between 0 and 1", s)
		}
		c.Difficulty = d
	}

	c.Prerequisites = splitIDs(cell(row, cols.prereqs))
	return c, nil
}

// splitIDs splits a prerequisite cell on commas and semicolons
func splitIDs(s string) []string {
	ids := make([]string, 0)
	for _, id := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' }) {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
