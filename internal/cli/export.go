package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chazuruo/agentdeck/internal/agents"
	"github.com/chazuruo/agentdeck/internal/app"
	deckerrors "github.com/chazuruo/agentdeck/internal/errors"
	"github.com/chazuruo/agentdeck/internal/export"
	"github.com/chazuruo/agentdeck/internal/filter"
)

// ExportOptions contains the options for the export command.
type ExportOptions struct {
	Filters        criteriaFlags
	All            bool
	Format         string
	Out            string
	CustomTemplate string
	NoVersions     bool
}

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	opts := &ExportOptions{}

	cmd := &cobra.Command{
		Use:   "export [agent-id...]",
		Short: "Export agents to Markdown, YAML or JSON",
		Long: `Export one or more agents to different formats with optional custom templates.

Name agents by id, or use --all together with the filter flags to export
every matching agent.

Supported formats:
- md (default): Markdown
- yaml: YAML format
- json: JSON format

Custom templates are Go text/template files. A bare file name is also
looked up in ~/.config/agentdeck/templates.

Examples:
  agentdeck export customer-support-assistant               # Markdown to stdout
  agentdeck export customer-support-assistant --format json # Single agent with its prompt history
  agentdeck export --all --org AutoCorp -o autocorp.md
  agentdeck export --all --format yaml --status active
  agentdeck export my-agent --template card.tmpl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), cmd.OutOrStdout(), opts, args)
		},
	}

	opts.Filters.bind(cmd)
	cmd.Flags().BoolVar(&opts.All, "all", false, "export every agent matching the filters")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "md", "output format (md, yaml, json)")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "-", "output path (default: stdout)")
	cmd.Flags().StringVarP(&opts.CustomTemplate, "template", "t", "", "custom template file")
	cmd.Flags().BoolVar(&opts.NoVersions, "no-versions", false, "omit prompt history from single-agent exports")

	return cmd
}

func runExport(ctx context.Context, out io.Writer, opts *ExportOptions, ids []string) error {
	if len(ids) == 0 && !opts.All {
		return deckerrors.Invalidf("name at least one agent id, or use --all")
	}
	if len(ids) > 0 && opts.All {
		return deckerrors.Invalidf("agent ids and --all are mutually exclusive")
	}

	format := export.Format(opts.Format)
	if format != export.FormatMarkdown && format != export.FormatYAML && format != export.FormatJSON {
		return deckerrors.Invalidf("invalid format: %s (must be md, yaml, or json)", opts.Format)
	}

	outPath := opts.Out
	if outPath == "-" {
		outPath = ""
	}

	exporter, err := export.NewExporter(export.Options{
		Format:         format,
		Out:            outPath,
		CustomTemplate: opts.CustomTemplate,
	})
	if err != nil {
		return fmt.Errorf("failed to create exporter: %w", err)
	}

	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	var output string
	if len(ids) == 1 {
		a, err := e.store.Get(ctx, ids[0])
		if err != nil {
			return err
		}
		var versions []agents.PromptVersion
		if !opts.NoVersions {
			if versions, err = app.Versions(ctx, e.store, a.ID, filter.Criteria{}); err != nil {
				return err
			}
		}
		if output, err = exporter.Export(a, versions); err != nil {
			return fmt.Errorf("failed to export agent: %w", err)
		}
	} else {
		as, err := exportSelection(ctx, e, opts, ids)
		if err != nil {
			return err
		}
		if output, err = exporter.ExportAll(as); err != nil {
			return fmt.Errorf("failed to export agents: %w", err)
		}
		e.log.Debug("exported agents", "count", len(as), "format", format)
	}

	if outPath == "" {
		fmt.Fprint(out, output)
	} else {
		fmt.Fprintf(out, "Exported to: %s\n", outPath)
	}
	return nil
}

// exportSelection resolves ids in the given order, or the filtered list
// when --all is set.
func exportSelection(ctx context.Context, e *env, opts *ExportOptions, ids []string) ([]agents.Agent, error) {
	if opts.All {
		c, err := opts.Filters.criteria(e)
		if err != nil {
			return nil, err
		}
		res, err := app.ListAgents(ctx, e.store, app.ListOptions{Criteria: c})
		if err != nil {
			return nil, err
		}
		return res.Agents, nil
	}

	as := make([]agents.Agent, 0, len(ids))
	for _, id := range ids {
		a, err := e.store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		as = append(as, *a)
	}
	return as, nil
}
