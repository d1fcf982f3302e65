package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/JonMunkholm/catalog/internal/source"
)

func testProducts(n int) source.Static {
	out := make(source.Static, n)
	for i := range out {
		out[i] = core.Product{
			ID:       i + 1,
			Name:     fmt.Sprintf("Product %d", i+1),
			Category: []string{"Books", "Toys", "Garden"}[i%3],
			Price:    float64(i+1) * 2.5,
			Stock:    i * 3,
			Status:   core.StatusActive,
		}
	}
	return out
}

// run executes the CLI against 25 fixed products.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd(testProducts(25))
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func browseJSON(t *testing.T, args ...string) pageJSON {
	t.Helper()
	out, err := run(t, append([]string{"browse", "-o", "json"}, args...)...)
	require.NoError(t, err)

	var page pageJSON
	require.NoError(t, json.Unmarshal([]byte(out), &page), out)
	return page
}

func ids(rows []core.Product) []int {
	out := make([]int, len(rows))
	for i, p := range rows {
		out[i] = p.ID
	}
	return out
}

func TestBrowse_DefaultTable(t *testing.T) {
	out, err := run(t, "browse")
	require.NoError(t, err)

	assert.Contains(t, out, "Product 1")
	assert.Contains(t, out, "Product 10")
	assert.NotContains(t, out, "Product 11")
	assert.Contains(t, out, "Page 1 of 3")
	assert.Contains(t, out, "[1] 2 3")
	assert.Contains(t, out, "(25 of 25 products)")
}

func TestBrowse_QuerySortDescAndPage(t *testing.T) {
	page := browseJSON(t, "--query", "product 2", "--sort", "price", "--desc")

	assert.Equal(t, "product 2", page.Query)
	assert.Equal(t, core.FieldPrice, page.Sort.Field)
	assert.Equal(t, core.SortDesc, page.Sort.Order)
	assert.Equal(t, 7, page.Matches)
	assert.Equal(t, []int{25, 24, 23, 22, 21, 20, 2}, ids(page.Rows))
}

func TestBrowse_PageClamps(t *testing.T) {
	page := browseJSON(t, "--page", "99")

	assert.Equal(t, 3, page.Page)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, []int{21, 22, 23, 24, 25}, ids(page.Rows))
}

func TestBrowse_Columns(t *testing.T) {
	page := browseJSON(t, "--columns", "price,name")

	assert.Equal(t, []core.FieldKey{
		core.FieldPrice, core.FieldName, core.FieldID,
		core.FieldStock, core.FieldCategory, core.FieldStatus,
	}, page.Columns)
}

func TestBrowse_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown sort field", []string{"--sort", "colour"}, "unknown field"},
		{"actions not sortable", []string{"--sort", "actions"}, "not sortable"},
		{"desc without sort", []string{"--desc"}, "--desc requires --sort"},
		{"unknown column", []string{"--columns", "price,colour"}, "unknown field"},
		{"duplicate column", []string{"--columns", "price,price"}, "listed twice"},
		{"page below one", []string{"--page", "0"}, "--page"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, append([]string{"browse"}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestBrowse_NoMatches(t *testing.T) {
	out, err := run(t, "browse", "--query", "zzz")
	require.NoError(t, err)
	assert.Equal(t, "No products found\n", out)
}

func TestBrowse_Markdown(t *testing.T) {
	out, err := run(t, "browse", "-o", "markdown")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.True(t, strings.HasPrefix(lines[0], "|"), "markdown table expected, got %q", lines[0])
	assert.Contains(t, out, "Product 1")
}

func TestBrowse_UnknownOutput(t *testing.T) {
	_, err := run(t, "browse", "-o", "yaml")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestStats(t *testing.T) {
	out, err := run(t, "stats")
	require.NoError(t, err)

	assert.Contains(t, out, "Total products")
	// 2.5 * (1 + ... + 25)
	assert.Contains(t, out, "$812.50")
	assert.Contains(t, out, "Low stock (< 5)")

	out, err = run(t, "stats", "-o", "json")
	require.NoError(t, err)
	var stats core.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 25, stats.TotalProducts)
	assert.Equal(t, 2, stats.LowStock)
	assert.Equal(t, 3, stats.Categories)
}

func TestCart(t *testing.T) {
	out, err := run(t, "cart", "3", "3", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "Product 3")
	assert.Contains(t, out, "$15.00")
	assert.Contains(t, out, "$32.50")

	out, err = run(t, "cart", "-o", "json", "3", "3", "7")
	require.NoError(t, err)
	var cart core.CartSnapshot
	require.NoError(t, json.Unmarshal([]byte(out), &cart))
	assert.Equal(t, 2, cart.Count)
	assert.Equal(t, 3, cart.Units)
	assert.Equal(t, 32.5, cart.Total)
}

func TestCart_Errors(t *testing.T) {
	_, err := run(t, "cart", "999")
	assert.ErrorIs(t, err, core.ErrProductNotFound)
	assert.Equal(t, "VIEW001", core.MapError(err).Code)

	_, err = run(t, "cart", "abc")
	assert.ErrorContains(t, err, "invalid product id")

	_, err = run(t, "cart")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "catalog v"+Version)
}

func TestDescribe(t *testing.T) {
	err := fmt.Errorf("add to cart: %w: %d", core.ErrProductNotFound, 9)
	assert.Contains(t, describe(err), "VIEW001")
	assert.Equal(t, "boom", describe(fmt.Errorf("boom")))
}
