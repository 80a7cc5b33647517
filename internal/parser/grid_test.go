package parser

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/badno/metaops/internal/output"
	outputfile "github.com/badno/metaops/internal/output/file"
	"github.com/badno/metaops/internal/state"
	"github.com/badno/metaops/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func snapshot() []models.Product {
	a := models.Product{ID: "gid://shopify/Product/1", Handle: "amber-japan", Metafields: models.NewMetafields()}
	a.Metafields[models.KeyDetails] = "old"
	b := models.Product{ID: "gid://shopify/Product/2", Handle: "nelson-oxford", Metafields: models.NewMetafields()}
	b.Metafields[models.KeyCare] = "gid://shopify/Page/7"
	return []models.Product{a, b}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseCSV(t *testing.T) {
	path := writeFile(t, "grid.csv", "\ufeffid,handle,title,details,care,notes\n"+
		"1,amber-japan,Amber,\"new\nlines\",,x\n"+
		",,,,\n"+
		",nelson-oxford,Nelson,,gid://shopify/Page/7,\n")

	grid, err := ParseFile(path)
	require.NoError(t, err)

	assert.Equal(t, []models.MetafieldKey{models.KeyDetails, models.KeyCare}, grid.Columns)
	assert.Equal(t, []string{"notes"}, grid.Ignored)
	require.Len(t, grid.Rows, 2)
	assert.Equal(t, "gid://shopify/Product/1", grid.Rows[0].ProductID)
	assert.Equal(t, "new\nlines", grid.Rows[0].Values[models.KeyDetails])
	assert.Equal(t, 4, grid.Rows[1].Line)
}

func TestParseRequiresIdentity(t *testing.T) {
	path := writeFile(t, "grid.csv", "title,details\nAmber,x\n")
	_, err := ParseCSV(path)
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	path := writeFile(t, "grid.csv", "id,handle,details,care\n"+
		"gid://shopify/Product/1,,new,\n"+
		",nelson-oxford,,\n"+
		"99,,x,\n")

	grid, err := ParseCSV(path)
	require.NoError(t, err)

	store := state.NewDirtyStore()
	store.SetCell("gid://shopify/Product/1", models.KeyCare, "gid://shopify/Page/1", "")

	stats := grid.Apply(snapshot(), store)

	assert.Equal(t, 3, stats.Rows)
	assert.Equal(t, 2, stats.Matched)
	assert.Equal(t, []string{"line 4: gid://shopify/Product/99"}, stats.Unmatched)
	assert.Equal(t, 2, stats.Changed)
	assert.Equal(t, 1, stats.Reverted)

	c, ok := store.Get("gid://shopify/Product/1", models.KeyDetails)
	require.True(t, ok)
	assert.Equal(t, "new", c.Value)

	c, ok = store.Get("gid://shopify/Product/2", models.KeyCare)
	require.True(t, ok)
	assert.Equal(t, "", c.Value)

	assert.False(t, store.IsDirty("gid://shopify/Product/1", models.KeyCare))
}

func TestParseXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]string{"id", "handle", "fitguide"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]string{"1", "amber-japan", "gid://shopify/Page/3"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	grid, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, grid.Rows, 1)
	assert.Equal(t, "gid://shopify/Page/3", grid.Rows[0].Values[models.KeyFitguide])
}

func TestCSVRoundTripKeepsCRLFValues(t *testing.T) {
	products := snapshot()
	products[0].Metafields[models.KeyDetails] = "line one\r\nline two"

	dir := t.TempDir()
	r := output.NewRegistry()
	require.NoError(t, outputfile.Register(r, outputfile.Config{OutputDir: dir}))

	path := filepath.Join(dir, "grid.csv")
	_, err := r.Export(context.Background(), products, output.ExportOptions{
		Format:     output.FormatCSV,
		OutputPath: path,
		Columns:    []models.MetafieldKey{models.KeyDetails, models.KeyCare},
	})
	require.NoError(t, err)

	grid, err := ParseFile(path)
	require.NoError(t, err)

	store := state.NewDirtyStore()
	store.SetCell(products[0].ID, models.KeyDetails, "pending", "line one\r\nline two")
	stats := grid.Apply(products, store)

	assert.Equal(t, 2, stats.Matched)
	assert.Equal(t, 0, stats.Changed)
	assert.Equal(t, 1, stats.Reverted)
	assert.Equal(t, 0, store.Len())
}

func TestApplyStagesRealLineChanges(t *testing.T) {
	path := writeFile(t, "grid.csv", "id,details\ngid://shopify/Product/1,\"old\nnew\"\n")
	grid, err := ParseFile(path)
	require.NoError(t, err)

	store := state.NewDirtyStore()
	stats := grid.Apply(snapshot(), store)
	assert.Equal(t, 1, stats.Changed)
	c, ok := store.Get("gid://shopify/Product/1", models.KeyDetails)
	require.True(t, ok)
	assert.Equal(t, "old\nnew", c.Value)
}
