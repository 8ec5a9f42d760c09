package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/merchantkit/merchant-cli/internal/iocontext"
)

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <endpoint>",
		Short: "Show the URL an endpoint resolves to without sending anything",
		Example: `  merchant resolve "products/SKU 42"
  merchant resolve 'orders?status=open'
  merchant resolve 'orders/a%2Fb'   # rejected: encoded slash`,
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			resolved, err := client.Resolve(args[0])
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]string{"endpoint": args[0], "url": resolved})
			}
			_, _ = fmt.Fprintln(iocontext.GetIO(cmd.Context()).Out, resolved)
			return nil
		}),
	}
}
