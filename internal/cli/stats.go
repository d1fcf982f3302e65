package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the catalog summary",
		Long: `Print the summary cards shown above the dashboard table: product count,
total list revenue, products below the low stock threshold and distinct
categories.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt := runtimeFrom(cmd)
			ws := rt.workspace()
			defer ws.Close()

			stats := ws.Stats()
			if rt.opts.output == FormatJSON {
				return writeJSON(cmd.OutOrStdout(), stats)
			}

			threshold := rt.opts.lowStock
			if threshold <= 0 {
				threshold = defaultLowStock
			}
			rows := [][2]string{
				{"Total products", fmt.Sprint(stats.TotalProducts)},
				{"Total revenue", money(stats.TotalRevenue)},
				{fmt.Sprintf("Low stock (< %d)", threshold), fmt.Sprint(stats.LowStock)},
				{"Categories", fmt.Sprint(stats.Categories)},
			}
			renderKeyValue(cmd.OutOrStdout(), rt.opts.output, rows)
			return nil
		},
	}
}
