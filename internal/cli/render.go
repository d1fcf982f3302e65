package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/JonMunkholm/catalog/internal/core"
)

const defaultLowStock = core.DefaultLowStockThreshold

// pageJSON is the machine-readable form of one browsed page.
type pageJSON struct {
	Query      string          `json:"query"`
	Sort       core.SortState  `json:"sort"`
	Page       int             `json:"page"`
	TotalPages int             `json:"totalPages"`
	Matches    int             `json:"matches"`
	Total      int             `json:"total"`
	Columns    []core.FieldKey `json:"columns"`
	Rows       []core.Product  `json:"rows"`
}

// dataColumns drops the actions column, which has nothing to show offline.
func dataColumns(cols []core.Column) []core.Column {
	out := make([]core.Column, 0, len(cols))
	for _, c := range cols {
		if c.Key != core.FieldActions {
			out = append(out, c)
		}
	}
	return out
}

func renderPage(w io.Writer, format string, snap core.Snapshot) error {
	cols := dataColumns(snap.Columns)

	if format == FormatJSON {
		page := pageJSON{
			Query:      snap.State.Query,
			Sort:       snap.State.Sort,
			Page:       snap.Page,
			TotalPages: snap.TotalPages,
			Matches:    snap.FilteredCount,
			Total:      snap.TotalCount,
			Rows:       make([]core.Product, len(snap.Rows)),
		}
		for _, c := range cols {
			page.Columns = append(page.Columns, c.Key)
		}
		for i, r := range snap.Rows {
			page.Rows[i] = r.Product
		}
		return writeJSON(w, page)
	}

	if len(snap.Rows) == 0 {
		_, _ = fmt.Fprintln(w, "No products found")
		return nil
	}

	t := newTable(w)

	header := make(table.Row, len(cols))
	var configs []table.ColumnConfig
	for i, c := range cols {
		label := c.Label
		if c.Key == snap.State.Sort.Field {
			label += " " + snap.State.Sort.Order.Indicator()
		}
		header[i] = label
		if c.Key == core.FieldID || c.Key == core.FieldPrice || c.Key == core.FieldStock {
			configs = append(configs, table.ColumnConfig{Number: i + 1, Align: text.AlignRight})
		}
	}
	t.AppendHeader(header)
	t.SetColumnConfigs(configs)

	for _, r := range snap.Rows {
		row := make(table.Row, len(cols))
		for i, c := range cols {
			row[i] = r.Product.Display(c.Key)
		}
		t.AppendRow(row)
	}

	render(t, format)
	_, _ = fmt.Fprintf(w, "Page %d of %d  %s  (%d of %d products)\n",
		snap.Page, snap.TotalPages, pageStrip(snap.PageItems), snap.FilteredCount, snap.TotalCount)
	return nil
}

// pageStrip renders the compact page list with the current page bracketed.
func pageStrip(items []core.PageItem) string {
	parts := make([]string, len(items))
	for i, it := range items {
		if it.Current {
			parts[i] = "[" + it.Label() + "]"
		} else {
			parts[i] = it.Label()
		}
	}
	return strings.Join(parts, " ")
}

func renderCart(w io.Writer, format string, cart core.CartSnapshot) error {
	if format == FormatJSON {
		return writeJSON(w, cart)
	}
	if cart.Count == 0 {
		_, _ = fmt.Fprintln(w, "Your cart is empty")
		return nil
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Name", "Price", "Qty", "Subtotal"})
	for _, e := range cart.Items {
		t.AppendRow(table.Row{e.ProductID, e.Name, money(e.Price), e.Quantity, money(e.Subtotal())})
	}
	t.AppendFooter(table.Row{"", "Total", "", cart.Units, money(cart.Total)})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 5, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})
	render(t, format)
	return nil
}

func renderKeyValue(w io.Writer, format string, rows [][2]string) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Metric", "Value"})
	for _, r := range rows {
		t.AppendRow(table.Row{r[0], r[1]})
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	render(t, format)
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func render(t table.Writer, format string) {
	if format == FormatMarkdown {
		t.RenderMarkdown()
		return
	}
	t.Render()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
