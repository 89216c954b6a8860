package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chazuruo/agentdeck/internal/agents/store"
)

// NewDraftsCommand creates the drafts command with list, show and delete.
func NewDraftsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "drafts",
		Short: "Manage saved wizard drafts",
		Long: `List, inspect and delete create and publish wizards saved for later.

Resume a draft with 'agentdeck create --resume <id>' or
'agentdeck publish --resume <id>'.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDraftsList(cmd.Context(), cmd.OutOrStdout(), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output in JSON format")

	cmd.AddCommand(&cobra.Command{
		Use:   "show <draft-id>",
		Short: "Print a draft as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDraftsShow(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <draft-id>",
		Short: "Delete a draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDraftsDelete(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	})

	return cmd
}

func runDraftsList(ctx context.Context, out io.Writer, asJSON bool) error {
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	drafts, err := e.store.ListDrafts(ctx)
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(out, drafts)
	}
	printDrafts(out, drafts)
	return nil
}

func printDrafts(w io.Writer, drafts []store.DraftInfo) {
	if len(drafts) == 0 {
		fmt.Fprintln(w, "No drafts saved.")
		return
	}
	tbl := newTable(w, "ID", "Kind", "Agent", "Phase", "Step", "Updated")
	for _, d := range drafts {
		tbl.AddRow(d.ID, d.Kind, dash(d.Subject), d.Phase, d.Current+1, d.UpdatedAt.Format("2006-01-02 15:04"))
	}
	tbl.Print()
}

func runDraftsShow(ctx context.Context, out io.Writer, id string) error {
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	data, err := e.store.LoadDraft(ctx, id)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

func runDraftsDelete(ctx context.Context, out io.Writer, id string) error {
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.store.DeleteDraft(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(out, "Deleted draft %s\n", id)
	return nil
}
