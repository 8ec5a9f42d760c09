package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/merchantkit/merchant-cli/internal/api"
	"github.com/merchantkit/merchant-cli/internal/iocontext"
	"github.com/merchantkit/merchant-cli/internal/validation"
)

var validAPIMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}

// apiRequest is a parsed `merchant api` invocation.
type apiRequest struct {
	Method   string
	Endpoint string
	Headers  http.Header
	Body     []byte
	Async    bool
}

func newAPICmd() *cobra.Command {
	var (
		method         string
		headers        []string
		inputFile      string
		jsonBody       string
		includeHeaders bool
		async          bool
		silent         bool
	)

	cmd := &cobra.Command{
		Use:   "api <endpoint>",
		Short: "Send a raw request to any endpoint below the base URL",
		Long: strings.TrimSpace(`
Send a request to an endpoint relative to the configured base URL.

Each path segment is percent-encoded before sending. Endpoints that are
absolute URLs, start with '//', climb above the base path with '..', or
hide a '/' inside a segment (%2F, %252F, ...) are rejected and nothing is
sent. A query string is passed through unchanged.`),
		Example: strings.TrimSpace(`
  # GET request (default)
  merchant api orders/ord_123

  # Identifiers with spaces or reserved characters are encoded per segment
  merchant api "products/SKU 42+blue"

  # POST with an inline JSON body and an extra header
  merchant api orders -X POST -d '{"account_id":"acct_1","items":[{"product_id":"p1","quantity":1}]}' -H 'X-Trace: abc'

  # Body from a file or stdin
  merchant api webhooks -X POST -i body.json
  echo '{}' | merchant api orders/ord_123/cancel -X POST -i -

  # Show status and response headers
  merchant api accounts/acct_1 --include

  # Print the (redacted) request a write would send, without sending it
  merchant api tokens/tok_1 -X DELETE --dry-run`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			req, err := parseAPIRequest(cmd, args[0], method, headers, jsonBody, inputFile)
			if err != nil {
				return err
			}
			req.Async = async

			client, err := getClient(cmd)
			if err != nil {
				return err
			}
			resp, err := sendAPIRequest(cmdContext(cmd), client, req)
			if err != nil {
				return err
			}
			if silent {
				return resp.Err(client.Redactor())
			}
			if err := writeAPIResponse(cmd, resp, includeHeaders); err != nil {
				return err
			}
			return resp.Err(client.Redactor())
		}),
	}

	cmd.Flags().StringVarP(&method, "method", "X", http.MethodGet, "HTTP method (GET, POST, PUT, PATCH, DELETE)")
	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "Extra request header as 'Name: value' (repeatable)")
	cmd.Flags().StringVarP(&jsonBody, "data", "d", "", "Request body as inline JSON")
	cmd.Flags().StringVarP(&inputFile, "input", "i", "", "Read request body from file (use - for stdin)")
	cmd.Flags().BoolVar(&includeHeaders, "include", false, "Include status and response headers in output")
	cmd.Flags().BoolVar(&async, "async", false, "Send without blocking and wait for the result")
	cmd.Flags().BoolVarP(&silent, "silent", "s", false, "Print nothing on success")

	return cmd
}

func parseAPIRequest(cmd *cobra.Command, endpoint, method string, rawHeaders []string, jsonBody, inputFile string) (apiRequest, error) {
	method = strings.ToUpper(strings.TrimSpace(method))
	valid := false
	for _, m := range validAPIMethods {
		if m == method {
			valid = true
			break
		}
	}
	if !valid {
		return apiRequest{}, api.NewValidationError("method", method, validAPIMethods)
	}
	if jsonBody != "" && inputFile != "" {
		return apiRequest{}, fmt.Errorf("cannot use both --data and --input")
	}

	headers, err := parseHeaders(rawHeaders)
	if err != nil {
		return apiRequest{}, err
	}

	var body []byte
	switch {
	case jsonBody != "":
		body = []byte(jsonBody)
	case inputFile == "-":
		body, err = io.ReadAll(iocontext.GetIO(cmd.Context()).In)
	case inputFile != "":
		body, err = os.ReadFile(inputFile)
	}
	if err != nil {
		return apiRequest{}, fmt.Errorf("failed to read input: %w", err)
	}
	if body != nil {
		if err := validation.ValidateJSONPayload(body); err != nil {
			return apiRequest{}, err
		}
		if !json.Valid(body) {
			return apiRequest{}, fmt.Errorf("request body must be valid JSON")
		}
	}

	return apiRequest{Method: method, Endpoint: endpoint, Headers: headers, Body: body}, nil
}

// parseHeaders parses "Name: value" pairs. Names are canonicalized.
func parseHeaders(raw []string) (http.Header, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	h := make(http.Header, len(raw))
	for _, item := range raw {
		name, value, ok := strings.Cut(item, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q: must be 'Name: value'", item)
		}
		h.Add(name, strings.TrimSpace(value))
	}
	return h, nil
}

// sendAPIRequest sends req, through SendAsync when req.Async is set.
func sendAPIRequest(ctx context.Context, s api.Sender, req apiRequest) (*api.Response, error) {
	if !req.Async {
		return s.Send(ctx, req.Method, req.Endpoint, req.Headers, req.Body)
	}
	future, err := s.SendAsync(ctx, req.Method, req.Endpoint, req.Headers, req.Body)
	if err != nil {
		return nil, err
	}
	return future.Wait(ctx)
}

func writeAPIResponse(cmd *cobra.Command, resp *api.Response, includeHeaders bool) error {
	if isJSON(cmd) {
		return printJSON(cmd, apiJSONPayload(resp, includeHeaders))
	}

	out := iocontext.GetIO(cmd.Context()).Out
	if includeHeaders {
		_, _ = fmt.Fprintf(out, "HTTP %d\n", resp.StatusCode)
		keys := make([]string, 0, len(resp.Header))
		for k := range resp.Header {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			for _, v := range resp.Header[k] {
				_, _ = fmt.Fprintf(out, "%s: %s\n", k, v)
			}
		}
		_, _ = fmt.Fprintln(out)
	}
	if len(resp.Body) == 0 {
		return nil
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, resp.Body, "", "  "); err == nil {
		_, _ = fmt.Fprintln(out, pretty.String())
		return nil
	}
	_, _ = fmt.Fprintln(out, string(resp.Body))
	return nil
}

func apiJSONPayload(resp *api.Response, includeHeaders bool) any {
	body := apiJSONBody(resp.Body)
	if !includeHeaders {
		return body
	}
	return map[string]any{
		"status":  resp.StatusCode,
		"headers": resp.Header,
		"body":    body,
	}
}

func apiJSONBody(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	if !json.Valid(raw) {
		return string(raw)
	}
	return json.RawMessage(raw)
}
