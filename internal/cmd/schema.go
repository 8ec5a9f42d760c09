package cmd

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/merchantkit/merchant-cli/internal/iocontext"
	"github.com/merchantkit/merchant-cli/internal/schema"
)

func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Describe API resources and the JSON error format",
		Example: strings.TrimSpace(`
  merchant schema list
  merchant schema show order
  merchant schema show error --json`),
	}

	cmd.AddCommand(newSchemaListCmd())
	cmd.AddCommand(newSchemaShowCmd())
	return cmd
}

type schemaSummary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func newSchemaListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List described resources",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			names := schema.List()
			summaries := make([]schemaSummary, 0, len(names))
			for _, name := range names {
				s, _ := schema.Get(name)
				summaries = append(summaries, schemaSummary{Name: name, Description: s.Description})
			}

			if isJSON(cmd) {
				return printJSON(cmd, summaries)
			}
			f := formatter(cmd)
			f.StartTable("RESOURCE", "DESCRIPTION")
			for _, s := range summaries {
				desc := s.Description
				if len(desc) > 60 {
					desc = desc[:57] + "..."
				}
				f.Row(s.Name, desc)
			}
			return f.EndTable()
		}),
	}
}

func newSchemaShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <resource>",
		Short: "Show the fields of a resource",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name := args[0]
			s, err := schema.Get(name)
			if err != nil {
				return err
			}

			if isJSON(cmd) {
				return printJSON(cmd, s)
			}
			out := iocontext.GetIO(cmd.Context()).Out
			_, _ = fmt.Fprintf(out, "%s (%s): %s\n\n", name, s.Type, s.Description)
			f := formatter(cmd)
			f.StartTable("FIELD", "TYPE", "REQUIRED", "DESCRIPTION")
			for _, row := range schemaFieldRows(s) {
				f.Row(row...)
			}
			return f.EndTable()
		}),
	}
}

// schemaFieldRows lists the top-level properties of s sorted by name.
func schemaFieldRows(s *schema.Schema) [][]string {
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		prop := s.Properties[name]
		rows = append(rows, []string{name, schemaTypeName(prop), yesNo(slices.Contains(s.Required, name)), schemaFieldDescription(prop)})
	}
	return rows
}

func schemaTypeName(s *schema.Schema) string {
	switch {
	case s.Items != nil:
		return "array<" + s.Items.Type + ">"
	case s.Format != "":
		return s.Type + "<" + s.Format + ">"
	default:
		return s.Type
	}
}

func schemaFieldDescription(s *schema.Schema) string {
	enum := s.Enum
	if s.Items != nil && len(s.Items.Enum) > 0 {
		enum = s.Items.Enum
	}
	if len(enum) == 0 {
		return s.Description
	}
	return fmt.Sprintf("%s; one of: %s", s.Description, strings.Join(enum, ", "))
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
