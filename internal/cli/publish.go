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

// PublishOptions contains the options for the publish command.
type PublishOptions struct {
	wizardFlags
}

// NewPublishCommand creates the publish command.
func NewPublishCommand() *cobra.Command {
	opts := &PublishOptions{}

	cmd := &cobra.Command{
		Use:   "publish [agent-id]",
		Short: "Submit an agent to the marketplace with the publish wizard",
		Long: `Walk through the publish wizard: Select Agent, Pricing, Metadata,
Review and Live. Finishing submits the listing for review.

With --no-tui, the wizard is driven by --set key=value using the publish
config's field names (pricing.model, pricing.price, metadata.description,
...). Without --finish the wizard is saved as a draft.

Examples:
  agentdeck publish customer-support-assistant
  agentdeck publish customer-support-assistant --no-tui \
      --set pricing.model=one-time --set pricing.price=99 \
      --set metadata.description="Diagnose engine faults" --finish`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			agentID := ""
			if len(args) == 1 {
				agentID = args[0]
			}
			return runPublish(cmd.Context(), cmd.OutOrStdout(), opts, agentID)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Sets, "set", nil, "set a publish field, key=value (repeatable)")
	cmd.Flags().StringVar(&opts.Resume, "resume", "", "resume a saved draft by id")
	cmd.Flags().BoolVar(&opts.Finish, "finish", false, "finalize the wizard (non-interactive)")

	return cmd
}

func runPublish(ctx context.Context, out io.Writer, opts *PublishOptions, agentID string) error {
	sets, err := parseAssignments(opts.Sets)
	if err != nil {
		return err
	}

	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	if agentID != "" {
		if _, err := e.store.Get(ctx, agentID); err != nil {
			return err
		}
	}

	wopts, err := wizardOptions(e)
	if err != nil {
		return err
	}
	w, err := agents.NewPublishWizard(agentID, wopts)
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

	sink := &app.PublishSink{Store: e.store, Logger: e.log}

	if e.interactive() {
		fo := formOptions(e, out, w)
		if fo.Agents, err = publishCandidates(ctx, e); err != nil {
			return err
		}
		outcome, err := tui.RunPublishWizard(ctx, w, sink, fo)
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
	l := sink.Published.Listing
	fmt.Fprintf(out, "✓ Submitted %s to the marketplace\n", sink.Published.ID)
	fmt.Fprintf(out, "  Listing: %s\n", l.Status)
	fmt.Fprintf(out, "  Pricing: %s\n", l.Pricing.Model)
	return nil
}

// publishCandidates are the stored agents without a published listing.
func publishCandidates(ctx context.Context, e *env) ([]agents.Agent, error) {
	all, err := e.store.ListRecords(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]agents.Agent, 0, len(all))
	for _, a := range all {
		if a.Listing != nil && a.Listing.Status == agents.ListingPublished {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}
