package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/merchantkit/merchant-cli/internal/api"
	"github.com/merchantkit/merchant-cli/internal/dryrun"
	"github.com/merchantkit/merchant-cli/internal/iocontext"
	"github.com/merchantkit/merchant-cli/internal/outfmt"
	"github.com/merchantkit/merchant-cli/internal/validation"
)

// errAlreadyHandled marks an error that RunE has already printed.
var errAlreadyHandled = errors.New("error already handled")

type handledError struct {
	err      error
	exitCode int
}

func (e *handledError) Error() string { return e.err.Error() }

func (e *handledError) Unwrap() []error { return []error{errAlreadyHandled, e.err} }

func (e *handledError) ExitCode() int { return e.exitCode }

// RunE wraps a command function so failures are printed once, with
// suggestions in text mode or as a structured error in JSON mode.
func RunE(fn func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if err == nil || errors.Is(err, dryrun.ErrSkipped) {
			return nil
		}
		errOut := iocontext.GetIO(cmd.Context()).ErrOut
		if isJSON(cmd) {
			_ = outfmt.WriteJSON(errOut, map[string]any{"error": api.StructuredErrorFromError(err)}, outfmt.IsCompact(cmd.Context()))
		} else {
			_, _ = fmt.Fprint(errOut, HandleError(err))
		}
		return &handledError{err: err, exitCode: ExitCode(err)}
	}
}

func cmdContext(cmd *cobra.Command) context.Context {
	return cmd.Context()
}

func isJSON(cmd *cobra.Command) bool {
	return outfmt.IsJSON(cmd.Context())
}

func formatter(cmd *cobra.Command) *outfmt.Formatter {
	streams := iocontext.GetIO(cmd.Context())
	return outfmt.NewFormatter(cmd.Context(), streams.Out, streams.ErrOut)
}

// printJSON writes v through the global query and compact settings.
func printJSON(cmd *cobra.Command, v any) error {
	return formatter(cmd).Output(v)
}

// printAction reports a completed mutation in text mode.
func printAction(cmd *cobra.Command, action, resource, id string) {
	if isJSON(cmd) || flags.Quiet {
		return
	}
	_, _ = fmt.Fprintf(iocontext.GetIO(cmd.Context()).Out, "%s %s %s\n", action, resource, id)
}

// requireIDs validates identifiers given as arguments.
func requireIDs(field string, ids []string) error {
	for _, id := range ids {
		if err := validation.ValidateIdentifier(field, id); err != nil {
			return err
		}
	}
	return nil
}
