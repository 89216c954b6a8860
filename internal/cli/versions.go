package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chazuruo/agentdeck/internal/agents"
	"github.com/chazuruo/agentdeck/internal/app"
	"github.com/chazuruo/agentdeck/internal/filter"
)

// VersionsOptions contains the options for the versions command.
type VersionsOptions struct {
	Query  string
	Status string
	Branch string
	Author string
	JSON   bool
}

// NewVersionsCommand creates the versions command and its add subcommand.
func NewVersionsCommand() *cobra.Command {
	opts := &VersionsOptions{}

	cmd := &cobra.Command{
		Use:   "versions <agent-id>",
		Short: "Show an agent's prompt version history",
		Long: `Show the prompt version history of an agent, newest first.

Examples:
  agentdeck versions customer-support-assistant
  agentdeck versions customer-support-assistant --status draft
  agentdeck versions customer-support-assistant -q safety --branch main`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersions(cmd.Context(), cmd.OutOrStdout(), opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "text search over id, message, author and changes")
	cmd.Flags().StringVar(&opts.Status, "status", filter.All, "filter by status (current, previous, draft)")
	cmd.Flags().StringVar(&opts.Branch, "branch", filter.All, "filter by branch")
	cmd.Flags().StringVar(&opts.Author, "author", filter.All, "filter by author")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "output in JSON format")

	cmd.AddCommand(newVersionsAddCommand())
	return cmd
}

func runVersions(ctx context.Context, out io.Writer, opts *VersionsOptions, agentID string) error {
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	if _, err := e.store.Get(ctx, agentID); err != nil {
		return err
	}

	c := filter.Criteria{Query: opts.Query}.
		With("status", opts.Status).
		With("branch", opts.Branch).
		With("author", opts.Author)
	versions, err := app.Versions(ctx, e.store, agentID, c)
	if err != nil {
		return err
	}

	if opts.JSON {
		return printJSON(out, versions)
	}
	printVersions(out, versions)
	return nil
}

func printVersions(w io.Writer, versions []agents.PromptVersion) {
	if len(versions) == 0 {
		fmt.Fprintln(w, "No versions found.")
		return
	}
	tbl := newTable(w, "Version", "Status", "Branch", "Author", "Date", "Message")
	for _, v := range versions {
		tbl.AddRow(v.ID, v.Status, v.Branch, dash(v.Author), v.CreatedAt.Format("2006-01-02"), v.Message)
	}
	tbl.Print()
}

// VersionAddOptions contains the options for versions add.
type VersionAddOptions struct {
	ID         string
	Author     string
	Message    string
	Branch     string
	Prompt     string
	PromptFile string
	Changes    string
	Draft      bool
}

func newVersionsAddCommand() *cobra.Command {
	opts := &VersionAddOptions{}

	cmd := &cobra.Command{
		Use:   "add <agent-id>",
		Short: "Record a new prompt version",
		Long: `Record a new prompt version of an agent.

Unless --draft is given, the new version becomes current, the previous
current version is demoted and the agent's system prompt is updated.
The version id defaults to the current version with its patch bumped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersionAdd(cmd.Context(), cmd.OutOrStdout(), opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "version id (default: next patch version)")
	cmd.Flags().StringVar(&opts.Author, "author", "", "author (default: identity.creator)")
	cmd.Flags().StringVarP(&opts.Message, "message", "m", "", "version message (required)")
	cmd.Flags().StringVar(&opts.Branch, "branch", "main", "branch name")
	cmd.Flags().StringVar(&opts.Prompt, "prompt", "", "prompt text")
	cmd.Flags().StringVar(&opts.PromptFile, "prompt-file", "", "read the prompt text from a file")
	cmd.Flags().StringVar(&opts.Changes, "changes", "", "summary of what changed")
	cmd.Flags().BoolVar(&opts.Draft, "draft", false, "record as a draft without making it current")

	return cmd
}

func runVersionAdd(ctx context.Context, out io.Writer, opts *VersionAddOptions, agentID string) error {
	prompt := opts.Prompt
	if opts.PromptFile != "" {
		data, err := os.ReadFile(opts.PromptFile)
		if err != nil {
			return fmt.Errorf("failed to read prompt file: %w", err)
		}
		prompt = strings.TrimRight(string(data), "\n")
	}

	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	v, err := app.RecordVersion(ctx, e.store, app.RecordVersionOptions{
		AgentID: agentID,
		ID:      opts.ID,
		Author:  firstNonEmpty(opts.Author, e.cfg.Identity.Creator),
		Message: opts.Message,
		Branch:  opts.Branch,
		Prompt:  prompt,
		Changes: opts.Changes,
		Draft:   opts.Draft,
	})
	if err != nil {
		return err
	}
	e.log.Info("recorded version", "agent", agentID, "version", v.ID, "status", v.Status)
	fmt.Fprintf(out, "Recorded %s %s (%s)\n", agentID, v.ID, v.Status)
	return nil
}
