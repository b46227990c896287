package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"storefront/internal/admin"
	"storefront/internal/shop"
)

func NewCartCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show the cart of the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCart(cmd, rootOpts, "")
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "toggle <shop-ref>",
		Short: "Flip the selection of one shop group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCart(cmd, rootOpts, args[0])
		},
	})
	return cmd
}

type cartOutput struct {
	Cart          any    `json:"cart"`
	TotalQuantity int    `json:"totalQuantity"`
	SelectedTotal string `json:"selectedTotal"`
}

func runCart(cmd *cobra.Command, opts *RootOptions, toggle string) error {
	ctx, cancel := opts.context(cmd)
	defer cancel()

	c, err := opts.apiClient(ctx)
	if err != nil {
		return err
	}
	view := shop.NewCartView(c)
	if err := view.Load(ctx); err != nil {
		return err
	}
	if toggle != "" {
		if err := view.ToggleShop(ctx, toggle); err != nil {
			return err
		}
	}

	cart, _ := view.Detail()
	out := cartOutput{Cart: cart, TotalQuantity: view.TotalQuantity(), SelectedTotal: admin.FormatVND(view.SelectedTotal())}
	return opts.emit(cmd.OutOrStdout(), out, func(w io.Writer) error {
		if len(cart.ShopGroup) == 0 {
			_, err := fmt.Fprintln(w, "cart is empty")
			return err
		}
		for _, g := range cart.ShopGroup {
			mark := " "
			if g.Selected {
				mark = "x"
			}
			fmt.Fprintf(w, "[%s] %s (%s)\n", mark, g.ShopName, g.ShopRef)
			for _, it := range g.ItemList {
				fmt.Fprintf(w, "    %s %s/%s x%d\n", it.ProductName, it.ColorName, it.SizeName, it.Quantity)
			}
		}
		_, err := fmt.Fprintf(w, "items: %d  selected total: %s\n", out.TotalQuantity, out.SelectedTotal)
		return err
	})
}
