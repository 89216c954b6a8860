package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chazuruo/agentdeck/internal/app"
	deckerrors "github.com/chazuruo/agentdeck/internal/errors"
)

// WhoamiOptions contains the options for the whoami command.
type WhoamiOptions struct {
	JSON bool
}

// NewWhoamiCommand creates the whoami command.
func NewWhoamiCommand() *cobra.Command {
	opts := &WhoamiOptions{}

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Display identity and store configuration",
		Long: `Display the current agentdeck identity configuration.

Shows the config file location, the creator and organization recorded on
new agents, the store backend and the wizard finalize policy.

By default, output is in plain text format. Use --json for JSON output.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhoami(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "output in JSON format")

	return cmd
}

func runWhoami(out, errOut io.Writer, opts *WhoamiOptions) error {
	cfg, path, err := loadConfig()
	if err != nil {
		if deckerrors.IsNotFound(err) {
			fmt.Fprintf(errOut, "Config file not found.\n")
			fmt.Fprintf(errOut, "Run 'agentdeck init' to create one, or drop --config to use the defaults.\n")
		}
		return err
	}

	output := app.Whoami(cfg, path)
	if opts.JSON {
		if err := app.PrintWhoamiJSON(out, output); err != nil {
			return fmt.Errorf("failed to output JSON: %w", err)
		}
		return nil
	}
	app.PrintWhoami(out, output)
	return nil
}
