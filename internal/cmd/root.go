package cmd

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/merchantkit/merchant-cli/internal/api"
	"github.com/merchantkit/merchant-cli/internal/config"
	"github.com/merchantkit/merchant-cli/internal/debug"
	"github.com/merchantkit/merchant-cli/internal/dryrun"
	"github.com/merchantkit/merchant-cli/internal/iocontext"
	"github.com/merchantkit/merchant-cli/internal/outfmt"
	"github.com/merchantkit/merchant-cli/internal/validation"
)

// rootFlags holds global CLI flags.
type rootFlags struct {
	Output         string
	JSON           bool
	Query          string
	JQ             string
	Compact        bool
	Quiet          bool
	Debug          bool
	Timeout        time.Duration
	BaseURL        string
	Token          string
	Profile        string
	AllowPrivate   bool
	IdempotencyKey string
	Concurrency    int
	DryRun         bool
}

// flags is reset at the start of every Execute call. Code outside a
// command's RunE must not read it.
var flags rootFlags

func defaultFlags() rootFlags {
	return rootFlags{
		Output:      defaultOutput(),
		Debug:       parseBoolEnv(config.EnvDebug),
		Timeout:     api.DefaultTimeout,
		Concurrency: DefaultConcurrency,
	}
}

func defaultOutput() string {
	if value := strings.TrimSpace(os.Getenv("MERCHANT_OUTPUT")); value != "" {
		return value
	}
	return "text"
}

func parseBoolEnv(key string) bool {
	v, _ := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	return v
}

// normalizeFlagName accepts snake_case spellings of every flag.
func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

//go:embed help.txt
var helpText string

// Execute runs the root command.
func Execute(ctx context.Context, args []string) error {
	// .env values must be in place before flag defaults read the environment.
	if err := config.LoadDotEnv(); err != nil {
		_, _ = fmt.Fprintln(iocontext.GetIO(ctx).ErrOut, "Warning:", err)
	}

	flags = defaultFlags()

	root := &cobra.Command{
		Use:                "merchant",
		Short:              "CLI for the merchant REST API",
		SilenceUsage:       true,
		SilenceErrors:      true,
		DisableSuggestions: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if flags.JSON {
				if cmd.Flags().Changed("output") && flags.Output != "json" {
					return fmt.Errorf("--json conflicts with --output %s", flags.Output)
				}
				flags.Output = "json"
			}
			query := flags.JQ
			if query == "" {
				query = flags.Query
			}
			if query != "" && flags.Output == "text" {
				if cmd.Flags().Changed("output") {
					return fmt.Errorf("--query/--jq require --output json or jsonl (or --json)")
				}
				flags.Output = "json"
			}
			mode, err := outfmt.Parse(flags.Output)
			if err != nil {
				return err
			}
			ctx = outfmt.WithMode(ctx, mode)
			ctx = outfmt.WithCompact(ctx, flags.Compact)
			if query != "" {
				ctx = outfmt.WithQuery(ctx, query)
			}

			if flags.Timeout <= 0 {
				return fmt.Errorf("--timeout must be positive")
			}
			if flags.Concurrency <= 0 {
				return fmt.Errorf("--concurrency must be at least 1")
			}

			streams := *iocontext.GetIO(ctx)
			if flags.Quiet {
				streams.ErrOut = io.Discard
				if mode == outfmt.Text {
					streams.Out = io.Discard
				}
			}
			ctx = iocontext.WithIO(ctx, &streams)
			cmd.SetOut(streams.Out)
			cmd.SetErr(streams.ErrOut)

			allowPrivate := parseBoolEnv(validation.AllowPrivateEnv) || flags.AllowPrivate
			validation.SetAllowPrivate(allowPrivate)
			if allowPrivate && !flags.Quiet {
				_, _ = fmt.Fprintln(streams.ErrOut, "Warning: allowing private/localhost URLs (use only with trusted targets).")
			}

			ctx = debug.WithDebug(ctx, flags.Debug)
			ctx = dryrun.WithDryRun(ctx, flags.DryRun)

			cmd.SetContext(ctx)
			return nil
		},
	}

	root.SetContext(ctx)
	root.SetArgs(args)
	streams := iocontext.GetIO(ctx)
	root.SetIn(streams.In)
	root.SetOut(streams.Out)
	root.SetErr(streams.ErrOut)
	root.SetGlobalNormalizationFunc(normalizeFlagName)

	defaultHelp := root.HelpFunc()
	root.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if !cmd.HasParent() {
			_, _ = fmt.Fprint(cmd.OutOrStdout(), helpText)
			return
		}
		defaultHelp(cmd, args)
	})

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.Output, "output", "o", flags.Output, "Output format: text|json|jsonl (env MERCHANT_OUTPUT)")
	pf.BoolVarP(&flags.JSON, "json", "j", false, "Shorthand for --output json")
	pf.StringVarP(&flags.Query, "query", "q", "", "jq expression to filter JSON output")
	pf.StringVar(&flags.JQ, "jq", "", "Alias for --query")
	pf.BoolVar(&flags.Compact, "compact-json", false, "Compact JSON output (no indentation)")
	pf.BoolVarP(&flags.Quiet, "quiet", "Q", false, "Suppress non-essential output")
	pf.BoolVar(&flags.Debug, "debug", flags.Debug, "Log redacted requests and responses to stderr (env MERCHANT_DEBUG)")
	pf.DurationVar(&flags.Timeout, "timeout", flags.Timeout, "HTTP request timeout (e.g., 30s, 2m)")
	pf.StringVar(&flags.BaseURL, "base-url", "", "API base URL (overrides profile and MERCHANT_BASE_URL)")
	pf.StringVar(&flags.Token, "token", "", "API token (overrides profile and MERCHANT_TOKEN)")
	pf.StringVar(&flags.Profile, "profile", "", "Stored profile to use (env MERCHANT_PROFILE)")
	pf.BoolVar(&flags.AllowPrivate, "allow-private", false, "Allow private/localhost base URLs (unsafe; env MERCHANT_ALLOW_PRIVATE)")
	pf.StringVar(&flags.IdempotencyKey, "idempotency-key", "", "Idempotency key for write requests ('auto' for one per request)")
	pf.IntVar(&flags.Concurrency, "concurrency", flags.Concurrency, "Concurrent requests for multi-ID commands")
	pf.BoolVar(&flags.DryRun, "dry-run", false, "Preview write requests (redacted) without sending them")

	root.AddCommand(newAPICmd())
	root.AddCommand(newResolveCmd())
	root.AddCommand(newSchemaCmd())
	root.AddCommand(newAccountsCmd())
	root.AddCommand(newOrdersCmd())
	root.AddCommand(newProductsCmd())
	root.AddCommand(newTokensCmd())
	root.AddCommand(newWebhooksCmd())
	root.AddCommand(newTwoFactorCmd())
	root.AddCommand(newAuthCmd())
	root.AddCommand(newProfilesCmd())
	root.AddCommand(newVersionCmd())

	targetCmd, err := root.ExecuteC()
	if err != nil {
		if !errors.Is(err, errAlreadyHandled) {
			_, _ = fmt.Fprintln(root.ErrOrStderr(), enhanceUnknownError(err, root, targetCmd))
		}
		return err
	}
	return nil
}

// enhanceUnknownError adds a "did you mean" hint to unknown command and
// flag errors.
func enhanceUnknownError(err error, root, targetCmd *cobra.Command) string {
	msg := err.Error()

	if strings.Contains(msg, "unknown command") {
		if unknown := extractQuoted(msg); unknown != "" {
			parent := root
			if targetCmd != nil {
				parent = targetCmd
			}
			var names []string
			for _, c := range parent.Commands() {
				if c.IsAvailableCommand() {
					names = append(names, c.Name())
					names = append(names, c.Aliases...)
				}
			}
			if suggestion := suggestCommand(unknown, names); suggestion != "" {
				return fmt.Sprintf("%s\n\nDid you mean %q?", msg, suggestion)
			}
		}
		return msg
	}

	if strings.Contains(msg, "unknown flag") || strings.Contains(msg, "unknown shorthand flag") {
		unknown := extractFlag(msg)
		if unknown == "" {
			return msg
		}
		cmd := root
		if targetCmd != nil {
			cmd = targetCmd
		}
		var names []string
		collect := func(fs *pflag.FlagSet) {
			fs.VisitAll(func(f *pflag.Flag) {
				names = append(names, "--"+f.Name)
			})
		}
		collect(cmd.Flags())
		collect(cmd.InheritedFlags())
		helpCmd := cmd.CommandPath() + " --help"
		if suggestion := suggestFlag(unknown, names); suggestion != "" {
			return fmt.Sprintf("%s\n\nDid you mean %q?\nRun %q to see supported flags.", msg, suggestion, helpCmd)
		}
		return fmt.Sprintf("%s\n\nRun %q to see supported flags.", msg, helpCmd)
	}

	return msg
}

// extractQuoted returns the first double-quoted substring of s.
func extractQuoted(s string) string {
	start := strings.IndexByte(s, '"')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(s[start+1:], '"')
	if end < 0 {
		return ""
	}
	return s[start+1 : start+1+end]
}

// extractFlag returns the first --flag in s.
func extractFlag(s string) string {
	idx := strings.Index(s, "--")
	if idx < 0 {
		return ""
	}
	rest := s[idx:]
	if end := strings.IndexAny(rest, " ="); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimRight(rest, ".,;:!?\"'")
}
