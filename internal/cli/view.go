package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chazuruo/agentdeck/internal/agents"
)

// ViewOptions contains the options for the view command.
type ViewOptions struct {
	Raw bool
}

// NewViewCommand creates the view command.
func NewViewCommand() *cobra.Command {
	opts := &ViewOptions{}

	cmd := &cobra.Command{
		Use:   "view <agent-id>",
		Short: "View agent details",
		Long: `Display detailed information about an agent.

Output formats:
- Default: Formatted display
- --raw: Print the stored YAML record`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd.Context(), cmd.OutOrStdout(), opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.Raw, "raw", false, "print raw YAML")
	return cmd
}

func runView(ctx context.Context, out io.Writer, opts *ViewOptions, id string) error {
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	a, err := e.store.Get(ctx, id)
	if err != nil {
		return err
	}

	if opts.Raw {
		data, err := agents.MarshalAgent(a)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}
	printAgent(out, a)
	return nil
}

func printAgent(out io.Writer, a *agents.Agent) {
	fmt.Fprintf(out, "%s (%s)\n", a.Name, a.ID)
	if a.Description != "" {
		fmt.Fprintf(out, "%s\n", a.Description)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Creator:      %s\n", a.Creator)
	fmt.Fprintf(out, "Type:         %s\n", a.Type)
	fmt.Fprintf(out, "Status:       %s\n", a.Status)
	fmt.Fprintf(out, "Model:        %s\n", a.Model)
	fmt.Fprintf(out, "Organization: %s\n", dash(a.Organization))
	fmt.Fprintf(out, "Category:     %s\n", dash(a.Category))
	if len(a.Tags) > 0 {
		fmt.Fprintf(out, "Tags:         %s\n", strings.Join(a.Tags, ", "))
	}
	fmt.Fprintf(out, "Chats:        %d\n", a.TotalChats)
	fmt.Fprintf(out, "Rating:       %s\n", rating(a.Rating))
	if a.Downloads > 0 {
		fmt.Fprintf(out, "Downloads:    %d (+%.0f%% this week)\n", a.Downloads, a.WeeklyGrowth)
	}
	if !a.CreatedAt.IsZero() {
		fmt.Fprintf(out, "Created:      %s\n", a.CreatedAt.Format("2006-01-02"))
	}
	if !a.LastUsed.IsZero() {
		fmt.Fprintf(out, "Last used:    %s\n", a.LastUsed.Format("2006-01-02 15:04"))
	}

	if c := a.Config; c != nil {
		fmt.Fprintln(out, "\nConfiguration:")
		fmt.Fprintf(out, "  Language:     %s\n", c.Language)
		fmt.Fprintf(out, "  Pricing:      %s / %s\n", c.Pricing.Tier, c.Pricing.Model)
		if caps := c.Capabilities.Enabled(); len(caps) > 0 {
			fmt.Fprintf(out, "  Capabilities: %s\n", strings.Join(caps, ", "))
		}
		fmt.Fprintf(out, "  Knowledge:    chunk %d, top-k %d\n", c.Knowledge.ChunkSize, c.Knowledge.TopK)
		fmt.Fprintf(out, "  Limits:       %ds response, %d messages\n", c.Settings.ResponseTimeLimit, c.Settings.MaxConversationLength)
		if len(c.Integrations) > 0 {
			fmt.Fprintln(out, "  Integrations:")
			for _, in := range c.Integrations {
				fmt.Fprintf(out, "    • %s (%s) %s\n", in.Name, in.Type, in.URL)
			}
		}
	}

	if l := a.Listing; l != nil {
		fmt.Fprintln(out, "\nMarketplace:")
		fmt.Fprintf(out, "  Status:  %s\n", l.Status)
		fmt.Fprintf(out, "  Pricing: %s", l.Pricing.Model)
		if l.Pricing.Model != "free" {
			fmt.Fprintf(out, " %.2f %s", l.Pricing.Price, l.Pricing.Currency)
		}
		fmt.Fprintln(out)
	}
}
