package cmd

import (
	"github.com/spf13/cobra"

	"github.com/merchantkit/merchant-cli/internal/api"
)

func newAccountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "accounts",
		Aliases: []string{"account", "acct"},
		Short:   "Show merchant accounts",
	}
	cmd.AddCommand(newAccountsGetCmd())
	cmd.AddCommand(newAccountsBalanceCmd())
	return cmd
}

func newAccountsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <id>",
		Short:   "Get an account",
		Example: "  merchant accounts get acct_123",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if err := requireIDs("account ID", args); err != nil {
				return err
			}
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			account, err := client.Accounts().Get(cmdContext(cmd), args[0])
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, account)
			}
			f := formatter(cmd)
			f.StartTable("ID", "NAME", "EMAIL", "CURRENCY", "STATUS")
			f.Row(account.ID, account.Name, account.Email, account.Currency, account.Status)
			return f.EndTable()
		}),
	}
}

func newAccountsBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "balance <id>",
		Short:   "Show available and pending funds",
		Example: "  merchant accounts balance acct_123",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if err := requireIDs("account ID", args); err != nil {
				return err
			}
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			balance, err := client.Accounts().Balance(cmdContext(cmd), args[0])
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, balance)
			}
			f := formatter(cmd)
			f.StartTable("KIND", "AMOUNT")
			writeMoneyRows(f.Row, "available", balance.Available)
			writeMoneyRows(f.Row, "pending", balance.Pending)
			return f.EndTable()
		}),
	}
}

func writeMoneyRows(row func(...string), kind string, amounts []api.Money) {
	if len(amounts) == 0 {
		row(kind, "-")
		return
	}
	for _, m := range amounts {
		row(kind, m.String())
	}
}
