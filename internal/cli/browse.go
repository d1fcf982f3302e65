package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/catalog/internal/core"
)

type browseOptions struct {
	query   string
	sort    string
	desc    bool
	page    int
	columns []string
}

func newBrowseCommand() *cobra.Command {
	o := &browseOptions{}

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Render one page of the catalog",
		Long: `Render one page of the catalog after applying a search, a sort and a
column order. Out-of-range pages are clamped to the last page.`,
		Example: `  # First page, natural order
  catalog browse

  # Search, sort by price descending, third page
  catalog browse --query lamp --sort price --desc --page 3

  # Show price and name first
  catalog browse --columns price,name

  # Machine-readable output
  catalog browse -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt := runtimeFrom(cmd)
			ws := rt.workspace()
			defer ws.Close()

			if err := o.apply(ws.View); err != nil {
				return err
			}
			return renderPage(cmd.OutOrStdout(), rt.opts.output, ws.Snapshot())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.query, "query", "q", "", "Case-insensitive search over name and category")
	f.StringVarP(&o.sort, "sort", "s", "", "Sort field (id|name|price|stock|category|status)")
	f.BoolVar(&o.desc, "desc", false, "Sort descending")
	f.IntVarP(&o.page, "page", "p", 1, "Page number")
	f.StringSliceVar(&o.columns, "columns", nil, "Columns to show first, in order (e.g. price,name)")

	_ = cmd.RegisterFlagCompletionFunc("sort", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"id", "name", "price", "stock", "category", "status"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// apply drives the view the way the dashboard would: query, then sort, then
// column order, then page.
func (o *browseOptions) apply(v *core.TableView) error {
	if o.query != "" {
		v.SetQuery(o.query)
	}

	switch {
	case o.sort != "":
		field, err := core.ParseFieldKey(o.sort)
		if err != nil {
			return err
		}
		if !field.Sortable() {
			return fmt.Errorf("%w: %q is not sortable", core.ErrUnknownField, o.sort)
		}
		order := core.SortAsc
		if o.desc {
			order = core.SortDesc
		}
		v.SetSort(core.SortState{Field: field, Order: order})
	case o.desc:
		return errors.New("--desc requires --sort")
	}

	if len(o.columns) > 0 {
		if err := reorderColumns(v.ColumnOrder(), o.columns); err != nil {
			return err
		}
	}

	if o.page < 1 {
		return fmt.Errorf("--page must be at least 1, got %d", o.page)
	}
	v.GoToPage(o.page)
	return nil
}

// reorderColumns moves the named columns to the front in the given order;
// the rest keep their natural order.
func reorderColumns(order *core.ColumnOrder, names []string) error {
	keys := make([]core.FieldKey, 0, order.Len())
	seen := make(map[core.FieldKey]bool)
	for _, name := range names {
		key, err := core.ParseFieldKey(name)
		if err != nil {
			return err
		}
		if seen[key] {
			return fmt.Errorf("column %q listed twice", name)
		}
		seen[key] = true
		keys = append(keys, key)
	}
	for _, key := range order.Keys() {
		if !seen[key] {
			keys = append(keys, key)
		}
	}
	if !order.SetKeys(keys) {
		return fmt.Errorf("invalid column order %v", names)
	}
	return nil
}
