// Package cli provides Cobra command definitions for agentdeck.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/chazuruo/agentdeck/internal/agents/store"
	"github.com/chazuruo/agentdeck/internal/config"
)

// InitOptions contains the options for the init command.
type InitOptions struct {
	// Scriptable/flag options for --no-tui mode
	Creator      string
	Organization string
	Backend      string
	Path         string
	RedisURL     string
	Policy       string
	Seed         bool
}

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	opts := &InitOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize agentdeck configuration",
		Long: `Initialize agentdeck configuration.

The init command guides you through setting up your agentdeck configuration:
- Set the creator and organization recorded on new agents
- Choose a store backend (filesystem or redis)
- Choose the wizard finalize policy (lenient or strict)

Use --no-tui with flags for scripted setup.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Creator, "creator", "", "creator recorded on new agents")
	cmd.Flags().StringVar(&opts.Organization, "org", "", "organization recorded on new agents")
	cmd.Flags().StringVar(&opts.Backend, "backend", "", "store backend: filesystem or redis")
	cmd.Flags().StringVar(&opts.Path, "path", "", "filesystem store directory")
	cmd.Flags().StringVar(&opts.RedisURL, "redis-url", "", "redis connection URL")
	cmd.Flags().StringVar(&opts.Policy, "policy", "", "wizard finalize policy: lenient or strict")
	cmd.Flags().BoolVar(&opts.Seed, "seed", false, "load the sample catalog after writing the config")

	return cmd
}

func runInit(ctx context.Context, out io.Writer, opts *InitOptions) error {
	if IsNoTUI() {
		return runInitNonInteractive(ctx, out, opts)
	}
	return runInitInteractive(ctx, out, opts)
}

// runInitInteractive runs the init wizard with TUI.
func runInitInteractive(ctx context.Context, out io.Writer, opts *InitOptions) error {
	cfg := config.DefaultConfig()

	creator := firstNonEmpty(opts.Creator, cfg.Identity.Creator)
	organization := opts.Organization
	backend := firstNonEmpty(opts.Backend, cfg.Store.Backend)
	policy := firstNonEmpty(opts.Policy, cfg.Wizard.FinalizePolicy)
	seed := true

	// Step 1: identity
	if err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Creator").
				Description("Recorded as the creator of agents you build").
				Value(&creator).
				Validate(required("creator")),
			huh.NewInput().
				Title("Organization").
				Description("Optional; shown in listings and used by the org filter").
				Value(&organization),
		),
	).RunWithContext(ctx); err != nil {
		return fmt.Errorf("form error: %w", err)
	}

	// Step 2: store backend
	if err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Store backend").
				Options(
					huh.NewOption("Filesystem - YAML files in a local directory", store.BackendFilesystem),
					huh.NewOption("Redis - shared keyspace on a Redis server", store.BackendRedis),
				).
				Value(&backend),
		),
	).RunWithContext(ctx); err != nil {
		return fmt.Errorf("form error: %w", err)
	}

	location := firstNonEmpty(opts.Path, cfg.Store.Path)
	title := "Store directory"
	if backend == store.BackendRedis {
		location = firstNonEmpty(opts.RedisURL, cfg.Store.RedisURL)
		title = "Redis URL"
	}

	// Step 3: backend details and policy
	if err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Value(&location).
				Validate(required(title)),
			huh.NewSelect[string]().
				Title("Finalize policy").
				Description("When may a wizard be finished?").
				Options(
					huh.NewOption("Lenient - required fields of every step", "lenient"),
					huh.NewOption("Strict - every step must be visited as well", "strict"),
				).
				Value(&policy),
			huh.NewConfirm().
				Title("Load the sample agent catalog?").
				Value(&seed),
		),
	).RunWithContext(ctx); err != nil {
		return fmt.Errorf("form error: %w", err)
	}

	built := *opts
	built.Creator = creator
	built.Organization = organization
	built.Backend = backend
	built.Policy = policy
	built.Seed = seed
	if backend == store.BackendRedis {
		built.RedisURL = location
	} else {
		built.Path = location
	}
	finalCfg := buildConfig(cfg, &built)

	if err := finalCfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	path, err := writeConfig(finalCfg)
	if err != nil {
		return err
	}

	if built.Seed {
		if err := seedInto(ctx, out, finalCfg); err != nil {
			return err
		}
	}

	fmt.Fprintln(out, "\n✓ Configuration written successfully!")
	fmt.Fprintf(out, "  Config:  %s\n", path)
	fmt.Fprintf(out, "  Creator: %s\n", finalCfg.Identity.Creator)
	fmt.Fprintf(out, "  Store:   %s\n", finalCfg.Store.Backend)
	fmt.Fprintf(out, "  Policy:  %s\n", finalCfg.Wizard.FinalizePolicy)
	fmt.Fprintln(out, "\nYou're ready to go! Try 'agentdeck list' or 'agentdeck create'.")
	return nil
}

// runInitNonInteractive runs init in non-TUI mode using flags.
func runInitNonInteractive(ctx context.Context, out io.Writer, opts *InitOptions) error {
	cfg := buildConfig(config.DefaultConfig(), opts)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	path, err := writeConfig(cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Configuration written to: %s\n", path)

	if opts.Seed {
		return seedInto(ctx, out, cfg)
	}
	return nil
}

// buildConfig applies the non-empty options on top of base.
func buildConfig(base *config.Config, opts *InitOptions) *config.Config {
	cfg := *base

	if opts.Creator != "" {
		cfg.Identity.Creator = opts.Creator
	}
	if opts.Organization != "" {
		cfg.Identity.Organization = opts.Organization
	}
	if opts.Backend != "" {
		cfg.Store.Backend = opts.Backend
	}
	if opts.Path != "" {
		cfg.Store.Path = opts.Path
	}
	if opts.RedisURL != "" {
		cfg.Store.RedisURL = opts.RedisURL
	}
	if opts.Policy != "" {
		cfg.Wizard.FinalizePolicy = opts.Policy
	}
	return &cfg
}

// writeConfig writes cfg to --config or the default location.
func writeConfig(cfg *config.Config) (string, error) {
	path := configPathFlag()
	if path == "" {
		path = config.DefaultConfigPath()
	}
	if err := config.Write(path, cfg); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	return path, nil
}

func seedInto(ctx context.Context, out io.Writer, cfg *config.Config) error {
	log := newLogger(cfg)
	st, err := store.Open(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Store.Backend, err)
	}
	e := &env{cfg: cfg, log: log, store: st}
	defer e.Close()
	return importSeed(ctx, out, e, &SeedOptions{})
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func required(name string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}
