package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/merchantkit/merchant-cli/internal/config"
	"github.com/merchantkit/merchant-cli/internal/endpoint"
	"github.com/merchantkit/merchant-cli/internal/iocontext"
	"github.com/merchantkit/merchant-cli/internal/validation"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage stored credentials",
		Long:  "Store API credentials in your OS keychain, one profile per environment.",
	}
	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthLogoutCmd())
	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var (
		url        string
		token      string
		profile    string
		redactKeys []string
		envFile    string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save credentials to the keychain",
		Long: strings.TrimSpace(`
Save a base URL and API token under a profile in your OS keychain.

The base URL may carry a path prefix (https://api.example.com/v2) but no
credentials, query or fragment. Extra JSON field names to mask in debug
output can be saved with --redact-key.`),
		Example: strings.TrimSpace(`
  merchant auth login --url https://api.example.com/v1 --token sk_live_xxx
  merchant auth login --url https://sandbox.example.com/v1 --token sk_test_xxx --profile sandbox
  merchant auth login --env-file .env.production`),
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if envFile != "" {
				envVars, err := loadAuthEnvFile(envFile)
				if err != nil {
					return err
				}
				applyAuthEnvFileRuntimeVars(envVars)
				if url == "" {
					url = strings.TrimSpace(envVars[config.EnvBaseURL])
				}
				if token == "" {
					token = strings.TrimSpace(envVars[config.EnvToken])
				}
				if len(redactKeys) == 0 {
					if v := strings.TrimSpace(envVars[config.EnvRedactKeys]); v != "" {
						redactKeys = strings.Split(v, ",")
					}
				}
				if !cmd.Flags().Changed("profile") {
					if p := strings.TrimSpace(envVars[config.EnvProfile]); p != "" {
						profile = p
					}
				}
			}

			if url == "" {
				return fmt.Errorf("--url is required")
			}
			if token == "" {
				return fmt.Errorf("--token is required")
			}

			base, err := endpoint.ParseBase(url)
			if err != nil {
				return err
			}
			if err := validation.ValidateBaseURL(base.String()); err != nil {
				return fmt.Errorf("invalid URL: %w", err)
			}

			p := config.Profile{BaseURL: base.String(), Token: token, RedactKeys: cleanList(redactKeys)}
			if err := config.SaveProfile(profile, p); err != nil {
				return fmt.Errorf("failed to save credentials: %w", err)
			}

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"profile": profile, "base_url": p.BaseURL, "saved": true})
			}
			out := iocontext.GetIO(cmd.Context()).Out
			_, _ = fmt.Fprintln(out, "Credentials saved.")
			_, _ = fmt.Fprintf(out, "  Base URL: %s\n", p.BaseURL)
			_, _ = fmt.Fprintf(out, "  Profile: %s\n", profile)
			return nil
		}),
	}

	cmd.Flags().StringVar(&url, "url", "", "API base URL, optionally with a path prefix")
	cmd.Flags().StringVar(&token, "token", "", "API token")
	cmd.Flags().StringVar(&profile, "profile", "default", "Profile name to save credentials under")
	cmd.Flags().StringSliceVar(&redactKeys, "redact-key", nil, "Extra JSON field name to mask in debug output (repeatable)")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Load MERCHANT_* values from a .env file")
	return cmd
}

func loadAuthEnvFile(path string) (map[string]string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("--env-file requires a file path")
	}
	envVars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read --env-file %q: %w", path, err)
	}
	return envVars, nil
}

// applyAuthEnvFileRuntimeVars exports keyring settings from an env file
// unless they are already set.
func applyAuthEnvFileRuntimeVars(envVars map[string]string) {
	for _, key := range []string{"MERCHANT_KEYRING_BACKEND", "MERCHANT_KEYRING_PASSWORD", "MERCHANT_CREDENTIALS_DIR"} {
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if value := strings.TrimSpace(envVars[key]); value != "" {
			_ = os.Setenv(key, value)
		}
	}
}

func cleanList(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active credentials",
		Long:  "Show which base URL and token the next command would use. The token is masked.",
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.ResolveClientConfig(config.Overrides{
				Profile: flags.Profile,
				BaseURL: flags.BaseURL,
				Token:   flags.Token,
			})
			if err != nil {
				if errors.Is(err, config.ErrNotConfigured) || errors.Is(err, config.ErrNoBaseURL) {
					if isJSON(cmd) {
						return printJSON(cmd, map[string]any{
							"authenticated": false,
							"message":       "Not authenticated. Run 'merchant auth login' to configure credentials.",
						})
					}
					out := iocontext.GetIO(cmd.Context()).Out
					_, _ = fmt.Fprintln(out, "Not authenticated.")
					_, _ = fmt.Fprintln(out, "Run 'merchant auth login' to configure credentials.")
					return nil
				}
				return fmt.Errorf("failed to load credentials: %w", err)
			}

			if isJSON(cmd) {
				payload := map[string]any{
					"authenticated": cfg.Token != "",
					"base_url":      cfg.BaseURL,
					"token":         maskToken(cfg.Token),
				}
				if cfg.Profile != "" {
					payload["profile"] = cfg.Profile
				}
				if len(cfg.RedactKeys) > 0 {
					payload["redact_keys"] = cfg.RedactKeys
				}
				return printJSON(cmd, payload)
			}

			out := iocontext.GetIO(cmd.Context()).Out
			_, _ = fmt.Fprintf(out, "  Base URL: %s\n", cfg.BaseURL)
			_, _ = fmt.Fprintf(out, "  Token: %s\n", maskToken(cfg.Token))
			if cfg.Profile != "" {
				_, _ = fmt.Fprintf(out, "  Profile: %s\n", cfg.Profile)
			}
			if len(cfg.RedactKeys) > 0 {
				_, _ = fmt.Fprintf(out, "  Redacted fields: %s\n", strings.Join(cfg.RedactKeys, ", "))
			}
			return nil
		}),
	}
}

func newAuthLogoutCmd() *cobra.Command {
	var profile string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove credentials from the keychain",
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if profile == "" {
				current, err := config.CurrentProfile()
				if err != nil {
					return err
				}
				profile = current
			}
			if err := config.DeleteProfile(profile); err != nil {
				return fmt.Errorf("failed to remove credentials: %w", err)
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"profile": profile, "removed": true})
			}
			_, _ = fmt.Fprintf(iocontext.GetIO(cmd.Context()).Out, "Profile %s removed.\n", profile)
			return nil
		}),
	}

	cmd.Flags().StringVar(&profile, "profile", "", "Profile name to remove (defaults to current)")
	return cmd
}

// maskToken shows at most the first and last 4 characters of a token.
func maskToken(token string) string {
	if len(token) < 12 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}
