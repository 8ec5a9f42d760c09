package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/merchantkit/merchant-cli/internal/api"
)

func newTokensCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tokens",
		Aliases: []string{"token"},
		Short:   "Manage stored payment tokens",
	}
	cmd.AddCommand(newTokensGetCmd())
	cmd.AddCommand(newTokensCreateCmd())
	cmd.AddCommand(newTokensDeleteCmd())
	return cmd
}

func newTokensGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <id>",
		Short:   "Get a payment token",
		Example: "  merchant tokens get tok_123",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if err := requireIDs("token ID", args); err != nil {
				return err
			}
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			tok, err := client.Tokens().Get(cmdContext(cmd), args[0])
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, api.TokenValue{Token: tok})
			}
			f := formatter(cmd)
			f.StartTable("ID", "TYPE", "DETAILS")
			f.Row(tok.TokenID(), tok.TokenType(), tokenDetails(tok))
			return f.EndTable()
		}),
	}
}

// tokenDetails summarizes a token without any full instrument number.
func tokenDetails(tok api.Token) string {
	switch t := tok.(type) {
	case *api.CardToken:
		return fmt.Sprintf("%s ****%s exp %02d/%d", t.Brand, t.Last4, t.ExpMonth, t.ExpYear)
	case *api.BankAccountToken:
		return fmt.Sprintf("%s (%s) ****%s", t.BankName, t.Country, t.Last4)
	case *api.WalletToken:
		return t.Provider
	default:
		return ""
	}
}

func newTokensCreateCmd() *cobra.Command {
	var req api.CreateTokenRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Tokenize a payment instrument",
		Long: `Tokenize a card, bank account or wallet.

Instrument details are sent once and are masked in debug output.`,
		Example: `  merchant tokens create --type card --card-number 4242424242424242 --exp-month 12 --exp-year 2030 --cvc 123
  merchant tokens create --type bank_account --iban DE89370400440532013000
  merchant tokens create --type wallet --provider paypal --wallet-id w_123`,
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			req.Type = strings.TrimSpace(req.Type)
			switch req.Type {
			case api.TokenTypeCard:
				if req.CardNumber == "" || req.ExpMonth == 0 || req.ExpYear == 0 {
					return fmt.Errorf("--card-number, --exp-month and --exp-year are required for card tokens")
				}
				if req.ExpMonth < 1 || req.ExpMonth > 12 {
					return fmt.Errorf("--exp-month must be between 1 and 12")
				}
			case api.TokenTypeBankAccount:
				if req.IBAN == "" {
					return fmt.Errorf("--iban is required for bank account tokens")
				}
			case api.TokenTypeWallet:
				if req.Provider == "" {
					return fmt.Errorf("--provider is required for wallet tokens")
				}
			}

			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			tok, err := client.Tokens().Create(cmdContext(cmd), req)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, api.TokenValue{Token: tok})
			}
			printAction(cmd, "Created", tok.TokenType()+" token", tok.TokenID())
			return nil
		}),
	}

	cmd.Flags().StringVar(&req.Type, "type", "", "Token type (card, bank_account, wallet)")
	cmd.Flags().StringVar(&req.CardNumber, "card-number", "", "Card number")
	cmd.Flags().IntVar(&req.ExpMonth, "exp-month", 0, "Card expiry month")
	cmd.Flags().IntVar(&req.ExpYear, "exp-year", 0, "Card expiry year")
	cmd.Flags().StringVar(&req.CVC, "cvc", "", "Card security code")
	cmd.Flags().StringVar(&req.IBAN, "iban", "", "Bank account IBAN")
	cmd.Flags().StringVar(&req.Provider, "provider", "", "Wallet provider")
	cmd.Flags().StringVar(&req.WalletID, "wallet-id", "", "Wallet identifier")
	return cmd
}

func newTokensDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a payment token",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if err := requireIDs("token ID", args); err != nil {
				return err
			}
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			if err := client.Tokens().Delete(cmdContext(cmd), args[0]); err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"id": args[0], "deleted": true})
			}
			printAction(cmd, "Deleted", "token", args[0])
			return nil
		}),
	}
}
