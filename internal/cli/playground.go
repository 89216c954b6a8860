package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/chazuruo/agentdeck/internal/agents"
	deckerrors "github.com/chazuruo/agentdeck/internal/errors"
	"github.com/chazuruo/agentdeck/internal/playground"
	"github.com/chazuruo/agentdeck/internal/tui"
)

// PlaygroundOptions contains the options for the playground command.
type PlaygroundOptions struct {
	Messages []string
	JSON     bool
}

// NewPlaygroundCommand creates the playground command.
func NewPlaygroundCommand() *cobra.Command {
	opts := &PlaygroundOptions{}

	cmd := &cobra.Command{
		Use:   "playground [agent-id]",
		Short: "Chat with a simulated agent",
		Long: `Open a chat session with an agent. Replies are simulated: after
playground.response_delay the agent answers with a canned response.

Without an agent id, playground.default_agent is used, then the first
active agent in the store.

With --no-tui, each line read from stdin is sent as a message. Use -m to
send messages from flags instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			agentID := ""
			if len(args) == 1 {
				agentID = args[0]
			}
			return runPlayground(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), opts, agentID)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Messages, "message", "m", nil, "send a message and print the reply (repeatable)")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "print the transcript as JSON when done (non-interactive)")

	return cmd
}

func runPlayground(ctx context.Context, in io.Reader, out io.Writer, opts *PlaygroundOptions, agentID string) error {
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	agent, err := playgroundAgent(ctx, e, agentID)
	if err != nil {
		return err
	}
	session := playground.NewSession(*agent, playground.Options{
		Responder: playground.NewCannedResponder(e.cfg.Playground.ResponseDelay.Duration, e.cfg.Playground.CannedResponse),
		Logger:    e.log,
	})

	if e.interactive() && len(opts.Messages) == 0 {
		p := tea.NewProgram(tui.NewPlaygroundModel(ctx, session), tea.WithAltScreen(), tea.WithContext(ctx))
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("failed to run TUI: %w", err)
		}
		session.Cancel()
		return nil
	}

	var lines []string
	if len(opts.Messages) > 0 {
		lines = opts.Messages
	} else {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
	}

	return chat(ctx, out, session, lines, opts.JSON)
}

// chat sends each non-blank line in turn and waits for its reply.
func chat(ctx context.Context, out io.Writer, s *playground.Session, lines []string, asJSON bool) error {
	if !asJSON {
		fmt.Fprintf(out, "%s: %s\n", s.Agent().Name, s.Messages()[0].Content)
	}
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		reply, err := s.Send(ctx, line)
		if err != nil {
			return err
		}
		msg, err := reply.Wait(ctx)
		if err != nil {
			return err
		}
		if reply.Status() != playground.ReplyResolved {
			return fmt.Errorf("%w: reply %s", deckerrors.ErrCanceled, reply.Status())
		}
		if !asJSON {
			fmt.Fprintf(out, "you: %s\n", line)
			fmt.Fprintf(out, "%s: %s\n", s.Agent().Name, msg.Content)
			if len(msg.RetrievedDocs) > 0 {
				fmt.Fprintf(out, "  (%d tokens; sources: %s)\n", msg.Tokens, strings.Join(msg.RetrievedDocs, ", "))
			}
		}
	}
	if asJSON {
		return printJSON(out, s.Messages())
	}
	return nil
}

// playgroundAgent resolves the agent to chat with. An empty store falls
// back to the sample catalog so the playground works before seeding.
func playgroundAgent(ctx context.Context, e *env, id string) (*agents.Agent, error) {
	id = firstNonEmpty(id, e.cfg.Playground.DefaultAgent)
	if id != "" {
		return e.store.Get(ctx, id)
	}

	records, err := e.store.ListRecords(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		cat, err := agents.Seed()
		if err != nil {
			return nil, err
		}
		records = cat.Agents
	}
	for i := range records {
		if records[i].Status == agents.StatusActive {
			return &records[i], nil
		}
	}
	if len(records) > 0 {
		return &records[0], nil
	}
	return nil, fmt.Errorf("no agents available: %w", deckerrors.ErrNotFound)
}
