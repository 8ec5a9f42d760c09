package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/merchantkit/merchant-cli/internal/config"
	"github.com/merchantkit/merchant-cli/internal/iocontext"
)

func newProfilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profiles",
		Aliases: []string{"profile"},
		Short:   "List and switch stored credential profiles",
	}
	cmd.AddCommand(newProfilesListCmd())
	cmd.AddCommand(newProfilesUseCmd())
	return cmd
}

type profileRow struct {
	Name    string `json:"name"`
	BaseURL string `json:"base_url,omitempty"`
	Current bool   `json:"current"`
}

func newProfilesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List configured profiles",
		Example: "  merchant profiles list",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			names, err := config.ListProfiles()
			if err != nil {
				return err
			}
			current, _ := config.CurrentProfile()

			rows := make([]profileRow, 0, len(names))
			for _, name := range names {
				row := profileRow{Name: name, Current: name == current}
				if p, err := config.LoadProfile(name); err == nil {
					row.BaseURL = p.BaseURL
				}
				rows = append(rows, row)
			}

			if isJSON(cmd) {
				return printJSON(cmd, rows)
			}
			f := formatter(cmd)
			if len(rows) == 0 {
				f.Empty("No profiles configured. Run 'merchant auth login' to add one.")
				return nil
			}
			f.StartTable("CURRENT", "PROFILE", "BASE_URL")
			for _, row := range rows {
				marker, baseURL := "", "-"
				if row.Current {
					marker = "*"
				}
				if row.BaseURL != "" {
					baseURL = row.BaseURL
				}
				f.Row(marker, row.Name, baseURL)
			}
			return f.EndTable()
		}),
	}
}

func newProfilesUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "use <name>",
		Short:   "Switch the active profile",
		Example: "  merchant profiles use sandbox",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name := args[0]
			p, err := config.LoadProfile(name)
			if err != nil {
				return fmt.Errorf("profile %q not found: %w", name, err)
			}
			if err := config.SetCurrentProfile(name); err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, profileRow{Name: name, BaseURL: p.BaseURL, Current: true})
			}
			_, _ = fmt.Fprintf(iocontext.GetIO(cmd.Context()).Out, "Current profile: %s (%s)\n", name, p.BaseURL)
			return nil
		}),
	}
}
