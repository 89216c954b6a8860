package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chazuruo/agentdeck/internal/agents"
	"github.com/chazuruo/agentdeck/internal/app"
	"github.com/chazuruo/agentdeck/internal/tui"
)

// EditOptions contains the options for the edit command.
type EditOptions struct {
	wizardFlags
}

// NewEditCommand creates the edit command.
func NewEditCommand() *cobra.Command {
	opts := &EditOptions{}

	cmd := &cobra.Command{
		Use:   "edit <agent-id>",
		Short: "Edit an existing agent's configuration",
		Long: `Edit an agent's configuration with the create wizard's steps, starting
from what is stored: prompt, model, capabilities, knowledge base,
guardrails, integrations and settings. The agent keeps its id.

A changed system prompt is recorded as a new current prompt version.

With --no-tui, fields are changed with --set key=value and --finish saves
the agent. Without --finish the edit is kept as a draft.

Examples:
  agentdeck edit customer-support-assistant
  agentdeck edit technical-support --no-tui --set capabilities.voice=true --finish
  agentdeck edit technical-support --no-tui --set system_prompt="You fix cars." --finish`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd.Context(), cmd.OutOrStdout(), opts, args[0])
		},
	}

	cmd.Flags().StringArrayVar(&opts.Sets, "set", nil, "set a config field, key=value (repeatable)")
	cmd.Flags().StringVar(&opts.Resume, "resume", "", "resume a saved draft by id")
	cmd.Flags().BoolVar(&opts.Finish, "finish", false, "save the agent (non-interactive)")

	return cmd
}

func runEdit(ctx context.Context, out io.Writer, opts *EditOptions, agentID string) error {
	sets, err := parseAssignments(opts.Sets)
	if err != nil {
		return err
	}

	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	a, err := e.store.Get(ctx, agentID)
	if err != nil {
		return err
	}

	wopts, err := wizardOptions(e)
	if err != nil {
		return err
	}
	w, err := agents.NewEditWizard(a, wopts)
	if err != nil {
		return err
	}
	if opts.Resume != "" {
		if err := resumeDraft(ctx, e.store, w, opts.Resume); err != nil {
			return err
		}
	}
	if err := applyAssignments(w, sets); err != nil {
		return err
	}

	sink := &app.EditSink{
		Store:   e.store,
		AgentID: a.ID,
		Author:  e.cfg.Identity.Creator,
		Logger:  e.log,
	}

	if e.interactive() {
		outcome, err := tui.RunCreateWizard(ctx, w, sink, formOptions(e, out, w))
		if err != nil {
			return err
		}
		switch outcome {
		case tui.OutcomeSaved:
			printDraftSaved(out, w)
			return nil
		case tui.OutcomeQuit:
			fmt.Fprintln(out, "Quit without saving.")
			return nil
		}
	} else {
		done, err := finishWizard(ctx, out, e, w, sink, opts.Finish)
		if err != nil || !done {
			return err
		}
	}

	dropDraft(ctx, e, opts.Resume)
	fmt.Fprintf(out, "✓ Updated agent %s (%s)\n", sink.Updated.ID, sink.Updated.Name)
	if v := sink.Version; v != nil {
		fmt.Fprintf(out, "  Prompt version: %s\n", v.ID)
	}
	return nil
}
