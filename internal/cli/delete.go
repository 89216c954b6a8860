package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

// DeleteOptions contains the options for the delete command.
type DeleteOptions struct {
	Yes bool
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand() *cobra.Command {
	opts := &DeleteOptions{}

	cmd := &cobra.Command{
		Use:   "delete <agent-id>",
		Short: "Delete an agent and its prompt history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd.Context(), cmd.OutOrStdout(), opts, args[0])
		},
	}

	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func runDelete(ctx context.Context, out io.Writer, opts *DeleteOptions, id string) error {
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	a, err := e.store.Get(ctx, id)
	if err != nil {
		return err
	}

	if !opts.Yes {
		if !e.interactive() {
			return fmt.Errorf("refusing to delete %s without --yes in non-interactive mode", id)
		}
		confirmed := false
		if err := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %s (%s)?", a.Name, a.ID)).
				Description("The agent and all of its prompt versions will be removed.").
				Value(&confirmed),
		)).RunWithContext(ctx); err != nil {
			return fmt.Errorf("form error: %w", err)
		}
		if !confirmed {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	if err := e.store.Delete(ctx, id); err != nil {
		return err
	}
	e.log.Info("agent deleted", "id", id)
	fmt.Fprintf(out, "Deleted %s\n", id)
	return nil
}
