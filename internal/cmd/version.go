package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/merchantkit/merchant-cli/internal/iocontext"
)

// version is set at build time via ldflags
var version = "dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Aliases: []string{"v"},
		Short:   "Print version information",
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if isJSON(cmd) {
				return printJSON(cmd, map[string]string{"version": version, "go": runtime.Version()})
			}
			_, _ = fmt.Fprintf(iocontext.GetIO(cmd.Context()).Out, "merchant-cli version %s (%s)\n", version, runtime.Version())
			return nil
		}),
	}
}
