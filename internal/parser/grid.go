// Package parser reads edited product grids back into pending edits.
package parser

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/badno/metaops/internal/metafields"
	"github.com/badno/metaops/internal/state"
	"github.com/badno/metaops/pkg/models"
	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"
)

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeCSV  = "text/csv"
)

// GridRow is one product row of an imported grid
type GridRow struct {
	Line      int
	ProductID string
	Handle    string
	Values    map[models.MetafieldKey]string
}

// Grid is an imported product grid. Only known metafield columns are kept.
type Grid struct {
	Columns []models.MetafieldKey
	Ignored []string
	Rows    []GridRow
}

// ParseFile reads a CSV or XLSX grid, detected from content with the file
// extension as fallback.
func ParseFile(path string) (*Grid, error) {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if mt, err := mimetype.DetectFile(path); err == nil {
		switch {
		case mt.Is(mimeXLSX):
			format = "xlsx"
		case mt.Is(mimeCSV):
			format = "csv"
		}
	}

	switch format {
	case "xlsx":
		return ParseXLSX(path)
	case "csv", "txt", "":
		return ParseCSV(path)
	}
	return nil, fmt.Errorf("unsupported grid format: %s", format)
}

// ParseCSV parses a grid exported as CSV
func ParseCSV(path string) (*Grid, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return parseRecords(records)
}

// ParseXLSX parses the first sheet of a grid spreadsheet
func ParseXLSX(path string) (*Grid, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &Grid{}, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return parseRecords(rows)
}

func parseRecords(records [][]string) (*Grid, error) {
	grid := &Grid{}
	if len(records) == 0 {
		return grid, nil
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	idIdx := findColumn(header, "id")
	handleIdx := findColumn(header, "handle")
	if idIdx < 0 && handleIdx < 0 {
		return nil, fmt.Errorf("grid has neither an id nor a handle column")
	}

	columns := map[int]models.MetafieldKey{}
	for i, col := range header {
		name := strings.ToLower(strings.TrimSpace(col))
		if metafields.IsKnown(name) {
			columns[i] = models.MetafieldKey(name)
			grid.Columns = append(grid.Columns, models.MetafieldKey(name))
		} else if i != idIdx && i != handleIdx && !isFixedColumn(name) {
			grid.Ignored = append(grid.Ignored, col)
		}
	}

	for n, row := range records[1:] {
		r := GridRow{
			Line:      n + 2,
			ProductID: cell(row, idIdx),
			Handle:    cell(row, handleIdx),
			Values:    map[models.MetafieldKey]string{},
		}
		if r.ProductID == "" && r.Handle == "" {
			continue
		}
		if r.ProductID != "" {
			r.ProductID = metafields.ToProductGID(r.ProductID)
		}
		for i, key := range columns {
			r.Values[key] = rawCell(row, i)
		}
		grid.Rows = append(grid.Rows, r)
	}

	return grid, nil
}

// ImportStats summarises applying a grid
type ImportStats struct {
	Rows      int
	Matched   int
	Unmatched []string
	Changed   int
	Reverted  int
}

// Apply stages every cell that differs from the product snapshot. Rows are
// matched by id, then by handle. Cells equal to the stored value revert any
// pending edit.
func (g *Grid) Apply(products []models.Product, store *state.DirtyStore) ImportStats {
	byID := make(map[string]models.Product, len(products))
	byHandle := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
		byHandle[strings.ToLower(p.Handle)] = p
	}

	stats := ImportStats{Rows: len(g.Rows)}
	for _, r := range g.Rows {
		p, ok := byID[r.ProductID]
		if !ok && r.Handle != "" {
			p, ok = byHandle[strings.ToLower(r.Handle)]
		}
		if !ok {
			ref := r.ProductID
			if ref == "" {
				ref = r.Handle
			}
			stats.Unmatched = append(stats.Unmatched, fmt.Sprintf("line %d: %s", r.Line, ref))
			continue
		}
		stats.Matched++

		for _, key := range g.Columns {
			value := r.Values[key]
			original := p.Metafield(key)
			if sameText(value, original) {
				value = original
			}
			wasDirty := store.IsDirty(p.ID, key)
			store.SetCell(p.ID, key, value, original)
			switch {
			case value != original:
				stats.Changed++
			case wasDirty:
				stats.Reverted++
			}
		}
	}
	return stats
}

// sameText compares cell text ignoring CRLF versus LF line endings, which
// CSV reading does not preserve.
func sameText(a, b string) bool {
	return a == b || strings.ReplaceAll(a, "\r\n", "\n") == strings.ReplaceAll(b, "\r\n", "\n")
}

var fixedColumns = map[string]bool{
	"title":        true,
	"vendor":       true,
	"product_type": true,
	"status":       true,
	"tags":         true,
}

func isFixedColumn(name string) bool {
	return fixedColumns[name]
}

func findColumn(header []string, name string) int {
	for i, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), name) {
			return i
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	return strings.TrimSpace(rawCell(row, idx))
}

func rawCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
