package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/merchantkit/merchant-cli/internal/api"
	"github.com/merchantkit/merchant-cli/internal/cli"
)

func newOrdersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "orders",
		Aliases: []string{"order", "o"},
		Short:   "Manage orders",
	}
	cmd.AddCommand(newOrdersListCmd())
	cmd.AddCommand(newOrdersGetCmd())
	cmd.AddCommand(newOrdersCreateCmd())
	cmd.AddCommand(newOrdersCancelCmd())
	return cmd
}

func newOrdersListCmd() *cobra.Command {
	var params api.ListOrdersParams
	var since, until string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List orders",
		Example: `  merchant orders list --status open
  merchant orders list --account acct_1 --page 2 --per-page 50
  merchant orders list --since 7d --until yesterday`,
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if params.Page < 0 || params.PerPage < 0 {
				return fmt.Errorf("--page and --per-page must not be negative")
			}
			now := time.Now()
			var err error
			if since != "" {
				if params.CreatedAfter, err = cli.ParseTime(since, now); err != nil {
					return fmt.Errorf("--since: %w", err)
				}
			}
			if until != "" {
				if params.CreatedBefore, err = cli.ParseTime(until, now); err != nil {
					return fmt.Errorf("--until: %w", err)
				}
			}
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			list, err := client.Orders().List(cmdContext(cmd), params)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, list)
			}
			f := formatter(cmd)
			if len(list.Data) == 0 {
				f.Empty("No orders found")
				return nil
			}
			f.StartTable("ID", "ACCOUNT", "STATUS", "TOTAL", "CREATED")
			for _, o := range list.Data {
				f.Row(orderRow(o)...)
			}
			if err := f.EndTable(); err != nil {
				return err
			}
			if list.TotalPages > 1 {
				f.Empty(fmt.Sprintf("Page %d of %d", list.Page, list.TotalPages))
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&params.AccountID, "account", "", "Filter by account ID")
	cmd.Flags().StringVar(&params.Status, "status", "", "Filter by status ("+strings.Join(api.ValidOrderStatuses, ", ")+")")
	cmd.Flags().StringVar(&since, "since", "", "Only orders created at or after this time (e.g. 7d, yesterday, 2026-01-31)")
	cmd.Flags().StringVar(&until, "until", "", "Only orders created before this time")
	cmd.Flags().IntVar(&params.Page, "page", 0, "Page number")
	cmd.Flags().IntVar(&params.PerPage, "per-page", 0, "Orders per page")
	return cmd
}

func newOrdersGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>...",
		Short: "Get one or more orders",
		Long: `Get one or more orders. Several IDs are fetched concurrently,
at most --concurrency at a time; results keep the order of the arguments.`,
		Example: `  merchant orders get ord_123
  merchant orders get ord_1 ord_2 ord_3 --concurrency 2`,
		Args: cobra.MinimumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if err := requireIDs("order ID", args); err != nil {
				return err
			}
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			orders := client.Orders()

			if len(args) == 1 {
				order, err := orders.Get(cmdContext(cmd), args[0])
				if err != nil {
					return err
				}
				if isJSON(cmd) {
					return printJSON(cmd, order)
				}
				f := formatter(cmd)
				f.StartTable("ID", "ACCOUNT", "STATUS", "TOTAL", "CREATED")
				f.Row(orderRow(*order)...)
				return f.EndTable()
			}

			results := runBulkOperation(cmdContext(cmd), args, int64(flags.Concurrency), func(ctx context.Context, id string) (*api.Order, error) {
				return getOrderAsync(ctx, orders, id)
			})
			if err := printOrderResults(cmd, results); err != nil {
				return err
			}
			if _, failed := countResults(results); failed > 0 {
				return fmt.Errorf("%d of %d orders could not be retrieved: %w", failed, len(results), firstError(results))
			}
			return nil
		}),
	}
}

// getOrderAsync fetches through the non-blocking path, falling back to Get
// when the transport cannot send asynchronously.
func getOrderAsync(ctx context.Context, orders api.OrdersService, id string) (*api.Order, error) {
	future, err := orders.GetAsync(ctx, id)
	if errors.Is(err, api.ErrAsyncUnsupported) {
		return orders.Get(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	return future.Wait(ctx)
}

type orderResult struct {
	ID    string               `json:"id"`
	Order *api.Order           `json:"order,omitempty"`
	Error *api.StructuredError `json:"error,omitempty"`
}

func printOrderResults(cmd *cobra.Command, results []BulkResult[*api.Order]) error {
	if isJSON(cmd) {
		out := make([]orderResult, len(results))
		for i, r := range results {
			out[i] = orderResult{ID: r.ID, Order: r.Data}
			if r.Error != nil {
				out[i].Error = api.StructuredErrorFromError(r.Error)
			}
		}
		return printJSON(cmd, out)
	}

	f := formatter(cmd)
	f.StartTable("ID", "ACCOUNT", "STATUS", "TOTAL", "CREATED")
	for _, r := range results {
		if !r.OK() {
			f.Row(r.ID, "-", "error", "-", api.StructuredErrorFromError(r.Error).Message)
			continue
		}
		f.Row(orderRow(*r.Data)...)
	}
	return f.EndTable()
}

func newOrdersCreateCmd() *cobra.Command {
	var (
		accountID string
		items     []string
		reference string
		tokenID   string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Place an order",
		Example: `  merchant orders create --account acct_1 --item prod_1:2 --item prod_2
  merchant orders create --account acct_1 --item prod_1 --payment-token tok_123 --idempotency-key auto`,
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if accountID == "" {
				return fmt.Errorf("--account is required")
			}
			if len(items) == 0 {
				return fmt.Errorf("at least one --item is required")
			}
			orderItems, err := parseOrderItems(items)
			if err != nil {
				return err
			}

			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			order, err := client.Orders().Create(cmdContext(cmd), api.CreateOrderRequest{
				AccountID: accountID,
				Reference: reference,
				Items:     orderItems,
				TokenID:   tokenID,
			})
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, order)
			}
			printAction(cmd, "Created", "order", order.ID)
			return nil
		}),
	}

	cmd.Flags().StringVar(&accountID, "account", "", "Account ID (required)")
	cmd.Flags().StringArrayVar(&items, "item", nil, "Item as product_id[:quantity] (repeatable)")
	cmd.Flags().StringVar(&reference, "reference", "", "Merchant reference")
	cmd.Flags().StringVar(&tokenID, "payment-token", "", "Payment token ID to charge")
	return cmd
}

// parseOrderItems parses product_id[:quantity] values. Quantity defaults to 1.
func parseOrderItems(values []string) ([]api.OrderItem, error) {
	items := make([]api.OrderItem, 0, len(values))
	for _, v := range values {
		productID, qty, hasQty := strings.Cut(strings.TrimSpace(v), ":")
		if productID == "" {
			return nil, fmt.Errorf("invalid --item %q: product ID is empty", v)
		}
		quantity := int64(1)
		if hasQty {
			n, err := strconv.ParseInt(qty, 10, 64)
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("invalid --item %q: quantity must be a positive integer", v)
			}
			quantity = n
		}
		items = append(items, api.OrderItem{ProductID: productID, Quantity: api.FlexInt(quantity)})
	}
	return items, nil
}

func newOrdersCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "cancel <id>",
		Short:   "Cancel an open order",
		Example: "  merchant orders cancel ord_123",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if err := requireIDs("order ID", args); err != nil {
				return err
			}
			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			order, err := client.Orders().Cancel(cmdContext(cmd), args[0])
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, order)
			}
			printAction(cmd, "Cancelled", "order", order.ID)
			return nil
		}),
	}
}

func orderRow(o api.Order) []string {
	created := "-"
	if !o.CreatedAt.IsZero() {
		created = o.CreatedAt.Format(time.RFC3339)
	}
	return []string{o.ID, o.AccountID, o.Status, o.Total.String(), created}
}
