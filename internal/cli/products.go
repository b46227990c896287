package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"storefront/internal/admin"
	"storefront/internal/client"
)

// ProductsOptions holds flags for the products command.
type ProductsOptions struct {
	*RootOptions
	Published bool
	Category  string
}

func NewProductsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProductsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List products as the admin table shows them",
		Long: `List products with their resolved category, stock, price and variants.

Examples:
  storefront products --email admin@storefront.test --password 'Passw0rd!'
  storefront products --published --format json
  storefront products delete p-chino --email admin@storefront.test --password 'Passw0rd!'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProducts(cmd, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.Published, "published", false, "only products on sale")
	cmd.Flags().StringVar(&opts.Category, "category", "", "filter by category id")

	cmd.AddCommand(newProductActionCommand(rootOpts, "delete", "Delete a product", func(t *admin.ProductTable, cmd *cobra.Command, id string) error {
		return t.Delete(cmd.Context(), id)
	}))
	cmd.AddCommand(newProductActionCommand(rootOpts, "publish", "Put a product on sale", func(t *admin.ProductTable, cmd *cobra.Command, id string) error {
		return t.SetStatus(cmd.Context(), id, true)
	}))
	cmd.AddCommand(newProductActionCommand(rootOpts, "pause", "Take a product off sale", func(t *admin.ProductTable, cmd *cobra.Command, id string) error {
		return t.SetStatus(cmd.Context(), id, false)
	}))
	return cmd
}

func runProducts(cmd *cobra.Command, opts *ProductsOptions) error {
	ctx, cancel := opts.context(cmd)
	defer cancel()

	c, err := opts.apiClient(ctx)
	if err != nil {
		return err
	}
	products, err := c.ListProducts(ctx, client.ProductQuery{PublishedOnly: opts.Published, CategoryRef: opts.Category})
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}

	tbl := admin.NewProductTable(products, c, c, admin.LogNotifier{})
	tbl.LoadCategories(ctx)
	rows := tbl.Rows()

	return opts.emit(cmd.OutOrStdout(), rows, func(w io.Writer) error {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tCOLORS\tSIZES\tSTOCK\tPRICE\tADDED\tON SALE")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\t%t\n",
				r.ID, r.Name, r.Category, r.Colors, r.Sizes, r.Stock, r.Price, r.AddedOn, r.Published)
		}
		return tw.Flush()
	})
}

type productAction func(t *admin.ProductTable, cmd *cobra.Command, id string) error

func newProductActionCommand(rootOpts *RootOptions, use, short string, run productAction) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <product-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := rootOpts.context(cmd)
			defer cancel()
			cmd.SetContext(ctx)

			c, err := rootOpts.apiClient(ctx)
			if err != nil {
				return err
			}
			n := &lastMessage{}
			tbl := admin.NewProductTable(nil, c, c, n)
			if err := run(tbl, cmd, args[0]); err != nil {
				return fmt.Errorf("%s %s: %w", use, args[0], err)
			}
			return rootOpts.emit(cmd.OutOrStdout(), map[string]string{"id": args[0], "message": n.msg}, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, n.msg)
				return err
			})
		},
	}
}

// lastMessage keeps the most recent notification for printing.
type lastMessage struct{ msg string }

func (l *lastMessage) Success(msg string) { l.msg = msg }
func (l *lastMessage) Error(msg string)   { l.msg = msg }
