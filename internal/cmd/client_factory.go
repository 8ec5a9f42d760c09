package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/merchantkit/merchant-cli/internal/api"
	"github.com/merchantkit/merchant-cli/internal/config"
	"github.com/merchantkit/merchant-cli/internal/debug"
	"github.com/merchantkit/merchant-cli/internal/dryrun"
	"github.com/merchantkit/merchant-cli/internal/iocontext"
	"github.com/merchantkit/merchant-cli/internal/outfmt"
	"github.com/merchantkit/merchant-cli/internal/redact"
	"github.com/merchantkit/merchant-cli/internal/validation"
)

type clientFactory struct {
	timeout   time.Duration
	userAgent string
	debug     bool
	logOut    io.Writer
	overrides config.Overrides

	// dryRunOut receives previews of write requests; nil sends them.
	dryRunOut  io.Writer
	dryRunJSON bool
}

func newClientFactory(logOut io.Writer) *clientFactory {
	return &clientFactory{
		timeout:   flags.Timeout,
		userAgent: fmt.Sprintf("merchant-cli/%s", version),
		debug:     flags.Debug,
		logOut:    logOut,
		overrides: config.Overrides{
			Profile: flags.Profile,
			BaseURL: flags.BaseURL,
			Token:   flags.Token,
		},
	}
}

// client resolves settings, checks the base URL and builds a client whose
// debug log goes through the profile's redactor.
func (f *clientFactory) client() (*api.Client, error) {
	cfg, err := config.ResolveClientConfig(f.overrides)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateBaseURL(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	redactor := redact.New(redact.WithFieldKeys(cfg.RedactKeys...))
	debugOn := f.debug || cfg.Debug
	key, gen := idempotencyOptions(flags.IdempotencyKey)

	var transport api.Transport
	if f.dryRunOut != nil {
		transport = &dryrun.Transport{
			Next:     api.NewHTTPTransport(f.timeout),
			Out:      f.dryRunOut,
			Redactor: redactor,
			JSON:     f.dryRunJSON,
		}
	}

	return api.New(api.Config{
		BaseURL:            cfg.BaseURL,
		Token:              cfg.Token,
		UserAgent:          f.userAgent,
		IdempotencyKey:     key,
		IdempotencyKeyFunc: gen,
		Timeout:            f.timeout,
		Transport:          transport,
		Logger:             debug.NewLogger(f.logOut, debugOn, redactor),
		Debug:              debugOn,
		Redactor:           redactor,
	})
}

// getClient builds a client for cmd, logging to its stderr stream.
func getClient(cmd *cobra.Command) (*api.Client, error) {
	ctx := cmd.Context()
	streams := iocontext.GetIO(ctx)
	f := newClientFactory(streams.ErrOut)
	if dryrun.IsEnabled(ctx) {
		f.dryRunOut = streams.Out
		f.dryRunJSON = outfmt.IsJSON(ctx)
	}
	return f.client()
}
