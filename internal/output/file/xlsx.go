package file

import (
	"context"
	"fmt"
	"time"

	"github.com/badno/metaops/internal/output"
	"github.com/badno/metaops/pkg/models"
	"github.com/xuri/excelize/v2"
)

const (
	XLSXAdapterName = "xlsx"
	XLSXSheetName   = "Products"
)

// XLSXAdapter writes the product grid as a spreadsheet
type XLSXAdapter struct {
	dirAdapter
}

// NewXLSXAdapter creates a new spreadsheet adapter
func NewXLSXAdapter(cfg Config) *XLSXAdapter {
	return &XLSXAdapter{newDirAdapter(XLSXAdapterName, []output.Format{output.FormatXLSX}, cfg)}
}

// ExportProducts writes the grid to a single sheet with a styled header row
func (a *XLSXAdapter) ExportProducts(ctx context.Context, products []models.Product, opts output.ExportOptions) (*output.ExportResult, error) {
	result := &output.ExportResult{StartedAt: time.Now()}

	if err := a.ensure(ctx); err != nil {
		result.Error = err
		return result, err
	}

	filename := a.destination(opts, "products", "xlsx")
	if opts.DryRun {
		result.ProductsExported = len(products)
		result.Success = true
		result.Details = fmt.Sprintf("Dry run: would export %d products to %s", len(products), filename)
		result.CompletedAt = time.Now()
		return result, nil
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", XLSXSheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})

	header := output.GridHeader(opts.Columns)
	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(XLSXSheetName, cell, h)
		f.SetCellStyle(XLSXSheetName, cell, cell, headerStyle)

		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(XLSXSheetName, colName, colName, 24)
	}

	for rowIdx, p := range products {
		for colIdx, v := range output.GridRow(p, opts.Columns) {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellStr(XLSXSheetName, cell, v); err != nil {
				result.Error = err
				return result, err
			}
		}
	}

	if err := f.SaveAs(filename); err != nil {
		result.Error = fmt.Errorf("failed to save spreadsheet: %w", err)
		return result, result.Error
	}

	result.Destination = filename
	result.ProductsExported = len(products)
	result.Success = true
	result.Details = fmt.Sprintf("Exported %d products to %s", len(products), filename)
	result.CompletedAt = time.Now()
	return result, nil
}
