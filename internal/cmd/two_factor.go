package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/merchantkit/merchant-cli/internal/api"
)

func newTwoFactorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "2fa",
		Aliases: []string{"two-factor"},
		Short:   "Run two-factor challenges",
	}
	cmd.AddCommand(newTwoFactorChallengeCmd())
	cmd.AddCommand(newTwoFactorVerifyCmd())
	return cmd
}

func newTwoFactorChallengeCmd() *cobra.Command {
	var req api.CreateChallengeRequest

	cmd := &cobra.Command{
		Use:   "challenge",
		Short: "Start a challenge",
		Example: `  merchant 2fa challenge --method sms --destination "+1 555 0100"
  merchant 2fa challenge --method totp`,
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			challenge, err := client.TwoFactor().CreateChallenge(cmdContext(cmd), req)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, challenge)
			}
			f := formatter(cmd)
			f.StartTable("ID", "METHOD", "STATUS", "EXPIRES")
			f.Row(challenge.ID, challenge.Method, challenge.Status, challenge.ExpiresAt.Format(time.RFC3339))
			return f.EndTable()
		}),
	}

	cmd.Flags().StringVar(&req.Method, "method", "totp", "Delivery method (sms, email, totp)")
	cmd.Flags().StringVar(&req.Destination, "destination", "", "Phone number or email address")
	return cmd
}

func newTwoFactorVerifyCmd() *cobra.Command {
	var code string

	cmd := &cobra.Command{
		Use:     "verify <challenge-id>",
		Short:   "Verify a challenge with its one-time code",
		Example: "  merchant 2fa verify ch_123 --code 918273",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if err := requireIDs("challenge ID", args); err != nil {
				return err
			}
			if code == "" {
				return fmt.Errorf("--code is required")
			}
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			result, err := client.TwoFactor().Verify(cmdContext(cmd), args[0], code)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, result)
			}
			f := formatter(cmd)
			f.StartTable("CHALLENGE", "VERIFIED")
			f.Row(result.ChallengeID, strconv.FormatBool(result.Verified))
			return f.EndTable()
		}),
	}

	cmd.Flags().StringVar(&code, "code", "", "One-time code (required)")
	return cmd
}
