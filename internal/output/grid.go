package output

import (
	"strings"

	"github.com/badno/metaops/pkg/models"
)

// Fixed grid columns preceding the metafield columns
const (
	ColumnID          = "id"
	ColumnHandle      = "handle"
	ColumnTitle       = "title"
	ColumnVendor      = "vendor"
	ColumnProductType = "product_type"
	ColumnStatus      = "status"
	ColumnTags        = "tags"
)

// GridFixedColumns are the product attribute columns of an exported grid
var GridFixedColumns = []string{
	ColumnID,
	ColumnHandle,
	ColumnTitle,
	ColumnVendor,
	ColumnProductType,
	ColumnStatus,
	ColumnTags,
}

// GridHeader returns the header row for the given metafield columns
func GridHeader(columns []models.MetafieldKey) []string {
	if len(columns) == 0 {
		columns = models.AllMetafieldKeys
	}
	header := append([]string{}, GridFixedColumns...)
	for _, c := range columns {
		header = append(header, string(c))
	}
	return header
}

// GridRow returns the cells of p matching GridHeader(columns)
func GridRow(p models.Product, columns []models.MetafieldKey) []string {
	if len(columns) == 0 {
		columns = models.AllMetafieldKeys
	}
	row := []string{
		p.ID,
		p.Handle,
		p.Title,
		p.Vendor,
		p.ProductType,
		p.Status,
		strings.Join(p.Tags, ", "),
	}
	for _, c := range columns {
		row = append(row, p.Metafield(c))
	}
	return row
}
