package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chazuruo/agentdeck/internal/app"
)

// TrendingOptions contains the options for the trending command.
type TrendingOptions struct {
	Filters criteriaFlags
	Limit   int
	JSON    bool
}

// NewTrendingCommand creates the trending command.
func NewTrendingCommand() *cobra.Command {
	opts := &TrendingOptions{}

	cmd := &cobra.Command{
		Use:   "trending",
		Short: "Show the featured agent and the most downloaded ones",
		Example: `  agentdeck trending
  agentdeck trending --type "Public Template" --limit 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrending(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	opts.Filters.bind(cmd)
	cmd.Flags().IntVar(&opts.Limit, "limit", 10, "maximum number of ranked agents (0 = all)")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "output in JSON format")
	return cmd
}

func runTrending(ctx context.Context, out io.Writer, opts *TrendingOptions) error {
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	c, err := opts.Filters.criteria(e)
	if err != nil {
		return err
	}

	res, err := app.Trending(ctx, e.store, c, opts.Limit)
	if err != nil {
		return err
	}
	if opts.JSON {
		return printJSON(out, res)
	}

	if f := res.Featured; f != nil {
		fmt.Fprintf(out, "★ Featured: %s by %s\n", f.Name, f.Creator)
		if f.Description != "" {
			fmt.Fprintf(out, "  %s\n", f.Description)
		}
		fmt.Fprintf(out, "  %d downloads • %s rating • +%.0f%% this week\n\n", f.Downloads, rating(f.Rating), f.WeeklyGrowth)
	}

	if len(res.Ranked) == 0 {
		fmt.Fprintln(out, "No agents found.")
		return nil
	}
	tbl := newTable(out, "#", "Name", "Creator", "Downloads", "Rating", "Growth")
	for i, a := range res.Ranked {
		tbl.AddRow(i+1, a.Name, a.Creator, a.Downloads, rating(a.Rating), fmt.Sprintf("+%.0f%%", a.WeeklyGrowth))
	}
	tbl.Print()
	return nil
}
