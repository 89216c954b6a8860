package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chazuruo/agentdeck/internal/cli"
)

// Version is set at build time using ldflags
var Version = "dev"

// Commit is set at build time using ldflags
var Commit = "unknown"

// Date is set at build time using ldflags
var Date = "unknown"

func main() {
	rootCmd := &cobra.Command{
		Use:   "agentdeck",
		Short: "Terminal dashboard for building, testing and publishing AI agents",
		Long: `agentdeck manages a catalog of AI agents from the terminal: browse and
filter agents, create new ones with a step wizard, chat with them in a
playground, track prompt versions and submit them to the marketplace.

Agents are stored in a local directory of YAML files or in Redis.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	// Add global flags
	cli.AddGlobalFlags(rootCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Add subcommands
	rootCmd.AddCommand(cli.NewInitCommand())
	rootCmd.AddCommand(cli.NewWhoamiCommand())
	rootCmd.AddCommand(cli.NewSeedCommand())
	rootCmd.AddCommand(cli.NewListCommand())
	rootCmd.AddCommand(cli.NewBrowseCommand())
	rootCmd.AddCommand(cli.NewStatsCommand())
	rootCmd.AddCommand(cli.NewTrendingCommand())
	rootCmd.AddCommand(cli.NewViewCommand())
	rootCmd.AddCommand(cli.NewDeleteCommand())
	rootCmd.AddCommand(cli.NewTemplatesCommand())
	rootCmd.AddCommand(cli.NewCreateCommand())
	rootCmd.AddCommand(cli.NewEditCommand())
	rootCmd.AddCommand(cli.NewPublishCommand())
	rootCmd.AddCommand(cli.NewDraftsCommand())
	rootCmd.AddCommand(cli.NewVersionsCommand())
	rootCmd.AddCommand(cli.NewPlaygroundCommand())
	rootCmd.AddCommand(cli.NewExportCommand())
	rootCmd.AddCommand(cli.NewVersionCommand(Version, Commit, Date))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	os.Exit(cli.Exit(os.Stderr, err))
}
