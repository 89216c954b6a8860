package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chazuruo/agentdeck/internal/agents"
)

// NewTemplatesCommand creates the templates command.
func NewTemplatesCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List the starting templates offered by create",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplates(cmd.OutOrStdout(), asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output in JSON format")
	return cmd
}

func runTemplates(out io.Writer, asJSON bool) error {
	templates := agents.Templates()
	if asJSON {
		return printJSON(out, templates)
	}

	tbl := newTable(out, "ID", "Name", "Category", "Tags")
	for _, t := range templates {
		tags, _ := t.Fragment["tags"].([]string)
		tbl.AddRow(t.ID, t.Name, t.Category, strings.Join(tags, ", "))
	}
	tbl.Print()
	fmt.Fprintln(out, "\nUse 'agentdeck create --template <id>' to start from one.")
	return nil
}
