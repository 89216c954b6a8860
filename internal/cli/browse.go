package cli

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/chazuruo/agentdeck/internal/app"
	"github.com/chazuruo/agentdeck/internal/tui"
)

// BrowseOptions contains the options for the browse command.
type BrowseOptions struct {
	Filters criteriaFlags
}

// NewBrowseCommand creates the browse command.
func NewBrowseCommand() *cobra.Command {
	opts := &BrowseOptions{}

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse and filter agents interactively",
		Long: `Open the interactive agent browser. Type to search; the list and the
statistics update as you type.

Keys:
  ctrl+s / ctrl+t / ctrl+o   cycle the status, type and organization filters
  ctrl+r                     reset search and filters
  enter                      show the selected agent
  esc                        quit

The filter flags set the initial criteria. With --no-tui, browse behaves
like 'agentdeck list'.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	opts.Filters.bind(cmd)
	return cmd
}

func runBrowse(ctx context.Context, out io.Writer, opts *BrowseOptions) error {
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	c, err := opts.Filters.criteria(e)
	if err != nil {
		return err
	}

	if !e.interactive() {
		res, err := app.ListAgents(ctx, e.store, app.ListOptions{Criteria: c})
		if err != nil {
			return err
		}
		printAgentsTable(out, res.Agents)
		return nil
	}

	records, err := e.store.ListRecords(ctx)
	if err != nil {
		return fmt.Errorf("failed to list agents: %w", err)
	}

	p := tea.NewProgram(tui.NewBrowserModel(records, c), tea.WithAltScreen(), tea.WithContext(ctx))
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	result := finalModel.(tui.BrowserModel)
	if !result.DidConfirm() || result.Selected == nil {
		return nil
	}

	printAgent(out, result.Selected)
	return nil
}
