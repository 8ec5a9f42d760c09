package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/merchantkit/merchant-cli/internal/api"
)

func newWebhooksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "webhooks",
		Aliases: []string{"webhook", "wh"},
		Short:   "Manage webhooks",
		Long:    "Manage webhook subscriptions for receiving event notifications",
	}
	cmd.AddCommand(newWebhooksListCmd())
	cmd.AddCommand(newWebhooksCreateCmd())
	cmd.AddCommand(newWebhooksDeleteCmd())
	return cmd
}

func newWebhooksListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all webhooks",
		Example: "  merchant webhooks list",
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			webhooks, err := client.Webhooks().List(cmdContext(cmd))
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, webhooks)
			}
			f := formatter(cmd)
			if len(webhooks) == 0 {
				f.Empty("No webhooks found")
				return nil
			}
			f.StartTable("ID", "URL", "EVENTS")
			for _, wh := range webhooks {
				f.Row(wh.ID, wh.URL, strings.Join(wh.Events, ", "))
			}
			return f.EndTable()
		}),
	}
}

func newWebhooksCreateCmd() *cobra.Command {
	var (
		url    string
		events []string
	)

	cmd := &cobra.Command{
		Use:     "create",
		Aliases: []string{"mk"},
		Short:   "Create a new webhook",
		Long: fmt.Sprintf(`Create a new webhook subscription.

The target must be a public http(s) URL; loopback hosts are accepted for
local development and private networks with --allow-private.

Available events:
  %s`, strings.Join(api.ValidWebhookEvents, "\n  ")),
		Example: `  merchant webhooks create --url https://example.com/hook --event order.paid --event order.refunded
  merchant webhooks create --url https://example.com/hook --event order.created,order.cancelled`,
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if url == "" {
				return fmt.Errorf("--url is required")
			}
			if len(events) == 0 {
				return fmt.Errorf("at least one --event is required")
			}

			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			webhook, err := client.Webhooks().Create(cmdContext(cmd), url, events)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, webhook)
			}
			printAction(cmd, "Created", "webhook", webhook.ID)
			return nil
		}),
	}

	cmd.Flags().StringVar(&url, "url", "", "Target URL (required)")
	cmd.Flags().StringSliceVar(&events, "event", nil, "Event to subscribe to (repeatable or comma-separated)")
	return cmd
}

func newWebhooksDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a webhook",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if err := requireIDs("webhook ID", args); err != nil {
				return err
			}
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			if err := client.Webhooks().Delete(cmdContext(cmd), args[0]); err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"id": args[0], "deleted": true})
			}
			printAction(cmd, "Deleted", "webhook", args[0])
			return nil
		}),
	}
}
