package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chazuruo/agentdeck/internal/agents"
	"github.com/chazuruo/agentdeck/internal/app"
	"github.com/chazuruo/agentdeck/internal/tui"
	"github.com/chazuruo/agentdeck/internal/wizard"
)

// CreateOptions contains the options for the create command.
type CreateOptions struct {
	wizardFlags
	Template string
	Name     string
}

// NewCreateCommand creates the create command.
func NewCreateCommand() *cobra.Command {
	opts := &CreateOptions{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an agent with the step wizard",
		Long: `Create a new agent by walking through the create wizard:
Basic Info, Knowledge Base, Guardrails and Settings.

Interactively, you first pick a template (or start from scratch) and then
fill in one form per step. Drafts can be saved and resumed later.

With --no-tui, the wizard is driven by flags. Values are set with
--set key=value using the agent config's field names; nested fields use
dots. Without --finish the wizard is saved as a draft.

Examples:
  agentdeck create
  agentdeck create --template customer-support
  agentdeck create --no-tui --name "Parts Finder" --set category=Automotive --finish
  agentdeck create --no-tui --template sales-assistant --set capabilities.voice=true \
      --set 'knowledge.sources=[https://example.com/catalog]'
  agentdeck create --resume 3f1c... --finish`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Template, "template", "", "start from a template (see 'agentdeck templates')")
	cmd.Flags().StringVar(&opts.Name, "name", "", "agent name")
	cmd.Flags().StringArrayVar(&opts.Sets, "set", nil, "set a config field, key=value (repeatable)")
	cmd.Flags().StringVar(&opts.Resume, "resume", "", "resume a saved draft by id")
	cmd.Flags().BoolVar(&opts.Finish, "finish", false, "finalize the wizard (non-interactive)")

	return cmd
}

func runCreate(ctx context.Context, out io.Writer, opts *CreateOptions) error {
	sets, err := parseAssignments(opts.Sets)
	if err != nil {
		return err
	}

	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	wopts, err := wizardOptions(e)
	if err != nil {
		return err
	}
	w, err := agents.NewCreateWizard(wopts)
	if err != nil {
		return err
	}
	if err := prepareCreate(ctx, e, w, opts, !e.interactive()); err != nil {
		return err
	}
	if err := applyAssignments(w, sets); err != nil {
		return err
	}

	sink := &app.CreateSink{Store: e.store, Identity: e.cfg.Identity, Logger: e.log}

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
	fmt.Fprintf(out, "✓ Created agent %s (%s)\n", sink.Created.ID, sink.Created.Name)
	fmt.Fprintf(out, "  Status: %s\n", sink.Created.Status)
	fmt.Fprintf(out, "\nTry it out: agentdeck playground %s\n", sink.Created.ID)
	return nil
}

// prepareCreate resumes a draft or leaves the gallery. Interactive runs
// without --template stay in the gallery so the user can choose.
func prepareCreate(ctx context.Context, e *env, w *agents.CreateWizard, opts *CreateOptions, leaveGallery bool) error {
	if opts.Resume != "" {
		if err := resumeDraft(ctx, e.store, w, opts.Resume); err != nil {
			return err
		}
	} else if opts.Template != "" || leaveGallery {
		if opts.Template != "" {
			if err := w.SelectTemplate(opts.Template); err != nil {
				return err
			}
		} else if err := w.StartFromScratch(); err != nil {
			return err
		}
		if err := w.Begin(); err != nil {
			return err
		}
	}

	if opts.Name != "" {
		if w.Phase() == wizard.PhaseGallery {
			if err := w.StartFromScratch(); err != nil {
				return err
			}
			if err := w.Begin(); err != nil {
				return err
			}
		}
		return w.Set("name", opts.Name)
	}
	return nil
}
