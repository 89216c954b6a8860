package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chazuruo/agentdeck/internal/app"
)

// StatsOptions contains the options for the stats command.
type StatsOptions struct {
	Filters criteriaFlags
	JSON    bool
}

// NewStatsCommand creates the stats command.
func NewStatsCommand() *cobra.Command {
	opts := &StatsOptions{}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate counts over all agents",
		Long: `Show totals over every stored agent: active agents, total chats, average
rating and the distinct organizations, types and categories.

Filter flags only change the "filtered" count; every other figure always
describes the whole collection.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	opts.Filters.bind(cmd)
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "output in JSON format")
	return cmd
}

func runStats(ctx context.Context, out io.Writer, opts *StatsOptions) error {
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	c, err := opts.Filters.criteria(e)
	if err != nil {
		return err
	}

	res, err := app.ListAgents(ctx, e.store, app.ListOptions{Criteria: c})
	if err != nil {
		return fmt.Errorf("failed to compute stats: %w", err)
	}
	if opts.JSON {
		return printJSON(out, res.Stats)
	}
	printStats(out, res.Stats)
	return nil
}

func printStats(out io.Writer, s app.Stats) {
	fmt.Fprintf(out, "Agents:        %d (showing %d)\n", s.Total, s.Filtered)
	fmt.Fprintf(out, "Active:        %d\n", s.Active)
	fmt.Fprintf(out, "Total chats:   %d\n", s.TotalChats)
	fmt.Fprintf(out, "Avg rating:    %s\n", rating(s.AvgRating))
	fmt.Fprintf(out, "Organizations: %s\n", strings.Join(s.Organizations, ", "))
	fmt.Fprintf(out, "Types:         %s\n", strings.Join(s.Types, ", "))
	fmt.Fprintf(out, "Categories:    %s\n", strings.Join(s.Categories, ", "))

	statuses := make([]string, 0, len(s.ByStatus))
	for status := range s.ByStatus {
		statuses = append(statuses, status)
	}
	slices.Sort(statuses)
	parts := make([]string, 0, len(statuses))
	for _, status := range statuses {
		parts = append(parts, fmt.Sprintf("%s=%d", status, s.ByStatus[status]))
	}
	fmt.Fprintf(out, "By status:     %s\n", strings.Join(parts, " "))
}
