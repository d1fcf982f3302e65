package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/catalog/internal/core"
)

func newCartCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cart ID...",
		Short: "Add products to a cart and print the totals",
		Long: `Add one unit per listed id to an empty cart and print it. Listing an id
more than once raises its quantity.`,
		Example: `  # Two of product 3, one of product 7
  catalog cart 3 3 7`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := runtimeFrom(cmd)
			ws := rt.workspace()
			defer ws.Close()

			for _, arg := range args {
				id, err := strconv.Atoi(arg)
				if err != nil {
					return fmt.Errorf("invalid product id %q", arg)
				}
				if err := ws.AddToCart(id); err != nil {
					return err
				}
			}

			return renderCart(cmd.OutOrStdout(), rt.opts.output, core.SnapshotCart(ws.Cart))
		},
	}
}
