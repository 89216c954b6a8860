package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chazuruo/agentdeck/internal/app"
)

// ListOptions contains the options for the list command.
type ListOptions struct {
	Filters criteriaFlags
	Sort    string
	Limit   int
	Format  string
}

// NewListCommand creates the list command for listing agents.
func NewListCommand() *cobra.Command {
	opts := &ListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List agents with optional filtering",
		Long: `List agents with filtering options.

Agents can be filtered by:
- --query: text search over name, description, creator and tags
- --status, --type, --org, --category, --model: exact match ("all" disables)
- --where: a CEL expression over the agent's fields
- --format: Output format (table, json, plain)

Examples:
  agentdeck list                              # List all agents in table format
  agentdeck list --status active --org AutoCorp
  agentdeck list -q support --sort chats
  agentdeck list --where 'downloads > 5000'   # Popular agents
  agentdeck list --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), cmd, opts)
		},
	}

	opts.Filters.bind(cmd)
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "sort by: "+strings.Join(app.SortKeys, ", "))
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of agents to show (0 = all)")
	cmd.Flags().StringVar(&opts.Format, "format", "table", "output format (table, json, plain)")

	return cmd
}

func runList(ctx context.Context, cmd *cobra.Command, opts *ListOptions) error {
	format, err := parseFormat(opts.Format)
	if err != nil {
		return err
	}
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	c, err := opts.Filters.criteria(e)
	if err != nil {
		return err
	}

	res, err := app.ListAgents(ctx, e.store, app.ListOptions{Criteria: c, SortBy: opts.Sort, Limit: opts.Limit})
	if err != nil {
		return fmt.Errorf("failed to list agents: %w", err)
	}

	out := cmd.OutOrStdout()
	switch format {
	case FormatJSON:
		return printJSON(out, res)
	case FormatPlain:
		printAgentsPlain(out, res.Agents)
	default:
		printAgentsTable(out, res.Agents)
		if c.Active() {
			fmt.Fprintf(out, "\nShowing %d of %d agents\n", res.Stats.Filtered, res.Stats.Total)
		}
	}
	return nil
}
