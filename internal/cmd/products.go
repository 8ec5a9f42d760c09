package cmd

import (
	"strconv"

	"github.com/spf13/cobra"
)

func newProductsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"product"},
		Short:   "Browse the product catalog",
	}
	cmd.AddCommand(newProductsListCmd())
	cmd.AddCommand(newProductsGetCmd())
	return cmd
}

func newProductsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List products",
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			products, err := client.Products().List(cmdContext(cmd))
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, products)
			}
			f := formatter(cmd)
			if len(products) == 0 {
				f.Empty("No products found")
				return nil
			}
			f.StartTable("ID", "NAME", "SKU", "PRICE", "ACTIVE")
			for _, p := range products {
				f.Row(p.ID, p.Name, p.SKU, p.Price.String(), strconv.FormatBool(p.Active))
			}
			return f.EndTable()
		}),
	}
}

func newProductsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <id>",
		Short:   "Get a product",
		Example: `  merchant products get "SKU 42+blue"`,
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if err := requireIDs("product ID", args); err != nil {
				return err
			}
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			p, err := client.Products().Get(cmdContext(cmd), args[0])
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, p)
			}
			f := formatter(cmd)
			f.StartTable("ID", "NAME", "SKU", "PRICE", "ACTIVE")
			f.Row(p.ID, p.Name, p.SKU, p.Price.String(), strconv.FormatBool(p.Active))
			return f.EndTable()
		}),
	}
}
