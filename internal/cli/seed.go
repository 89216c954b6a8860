package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chazuruo/agentdeck/internal/agents"
	"github.com/chazuruo/agentdeck/internal/app"
)

// SeedOptions contains the options for the seed command.
type SeedOptions struct {
	Force bool
	JSON  bool
}

// NewSeedCommand creates the seed command.
func NewSeedCommand() *cobra.Command {
	opts := &SeedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the sample agent catalog into the store",
		Long: `Load the built-in sample catalog (agents, templates and prompt versions)
into the configured store.

Agents that already exist are skipped unless --force is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite agents that already exist")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "output in JSON format")
	return cmd
}

func runSeed(ctx context.Context, out io.Writer, opts *SeedOptions) error {
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()
	return importSeed(ctx, out, e, opts)
}

func importSeed(ctx context.Context, out io.Writer, e *env, opts *SeedOptions) error {
	cat, err := agents.Seed()
	if err != nil {
		return err
	}

	res, err := app.ImportCatalog(ctx, e.store, cat, opts.Force)
	if err != nil {
		return fmt.Errorf("failed to import catalog: %w", err)
	}
	e.log.Info("catalog imported", "agents", res.Agents, "versions", res.Versions, "skipped", len(res.Skipped))

	if opts.JSON {
		return printJSON(out, res)
	}
	fmt.Fprintf(out, "Imported %d agents and %d prompt versions\n", res.Agents, res.Versions)
	if len(res.Skipped) > 0 {
		fmt.Fprintf(out, "Skipped %d existing: %s (use --force to overwrite)\n", len(res.Skipped), strings.Join(res.Skipped, ", "))
	}
	return nil
}
