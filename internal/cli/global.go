// Package cli provides global state and utilities for CLI commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/chazuruo/agentdeck/internal/agents"
	"github.com/chazuruo/agentdeck/internal/agents/store"
	"github.com/chazuruo/agentdeck/internal/config"
	deckerrors "github.com/chazuruo/agentdeck/internal/errors"
	"github.com/chazuruo/agentdeck/internal/filter"
	"github.com/chazuruo/agentdeck/internal/logging"
)

var (
	// NoTUI indicates that TUI/interactive mode should be disabled.
	// This is set by the global --no-tui flag.
	NoTUI bool

	// ConfigPath overrides config discovery. Set by --config.
	ConfigPath string

	// LogLevel overrides log.level from the config. Set by --log-level.
	LogLevel string

	// globalMu protects the globals above for concurrent access.
	globalMu sync.RWMutex
)

// AddGlobalFlags adds global flags to a command.
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVar(&NoTUI, "no-tui", false,
		"disable TUI/interactive mode; use plain text or JSON output")
	cmd.PersistentFlags().StringVar(&ConfigPath, "config", "",
		"config file path (default: ~/.config/agentdeck/config.toml)")
	cmd.PersistentFlags().StringVar(&LogLevel, "log-level", "",
		"log level override: debug, info, warn, error")
}

// IsNoTUI returns true if TUI mode is disabled by the --no-tui flag.
func IsNoTUI() bool {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return NoTUI
}

func configPathFlag() string {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return ConfigPath
}

func logLevelFlag() string {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return LogLevel
}

// env is what most commands need: the loaded config, a logger and an
// open store.
type env struct {
	cfg        *config.Config
	configPath string
	log        *slog.Logger
	store      store.Store
}

// loadConfig loads the config named by --config, or the detected one.
func loadConfig() (*config.Config, string, error) {
	path := configPathFlag()
	if path == "" {
		path = config.DetectConfigPath()
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config: %w", err)
	}
	if lvl := logLevelFlag(); lvl != "" {
		cfg.Log.Level = lvl
	}
	return cfg, path, nil
}

// newLogger writes to stderr so command output stays clean on stdout.
func newLogger(cfg *config.Config) *slog.Logger {
	return logging.New(os.Stderr, cfg.Log)
}

// setup loads the config and opens the configured store.
func setup(ctx context.Context) (*env, error) {
	cfg, path, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := newLogger(cfg)
	st, err := store.Open(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Backend, err)
	}
	return &env{cfg: cfg, configPath: path, log: log, store: st}, nil
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		e.log.Warn("closing store", "error", err)
	}
}

// interactive reports whether a TUI may be used.
func (e *env) interactive() bool {
	return !IsNoTUI() && e.cfg.TUI.Enabled
}

// criteriaFlags are the filter flags shared by list, stats, browse and
// export.
type criteriaFlags struct {
	Query        string
	Status       string
	Type         string
	Organization string
	Category     string
	Model        string
	Creator      string
	Mine         bool
	Where        string
}

func (f *criteriaFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.Query, "query", "q", "", "case-insensitive text search over name, description, creator and tags")
	cmd.Flags().StringVar(&f.Status, "status", filter.All, "filter by status (active, testing, disabled)")
	cmd.Flags().StringVar(&f.Type, "type", filter.All, `filter by type ("User Agent", "Public Template", "Shared Agent")`)
	cmd.Flags().StringVar(&f.Organization, "org", filter.All, "filter by organization")
	cmd.Flags().StringVar(&f.Category, "category", filter.All, "filter by category")
	cmd.Flags().StringVar(&f.Model, "model", filter.All, "filter by model")
	cmd.Flags().StringVar(&f.Creator, "creator", filter.All, "filter by creator")
	cmd.Flags().BoolVar(&f.Mine, "mine", false, "only agents created by identity.creator")
	cmd.Flags().StringVar(&f.Where, "where", "", `CEL expression, e.g. 'rating >= 4.5 && "sales" in tags'`)
}

// criteria builds filter criteria from the flags. --mine resolves to the
// configured identity.
func (f *criteriaFlags) criteria(e *env) (filter.Criteria, error) {
	c := filter.Criteria{Query: f.Query}
	c = c.With(agents.FieldStatus, f.Status)
	c = c.With(agents.FieldType, f.Type)
	c = c.With(agents.FieldOrganization, f.Organization)
	c = c.With(agents.FieldCategory, f.Category)
	c = c.With(agents.FieldModel, f.Model)

	creator := f.Creator
	if f.Mine {
		if creator != "" && creator != filter.All {
			return c, deckerrors.Invalidf("--mine and --creator cannot be combined")
		}
		creator = e.cfg.Identity.Creator
		if creator == "" {
			return c, deckerrors.Invalidf("--mine needs identity.creator in the config")
		}
	}
	c = c.With(agents.FieldCreator, creator)

	if f.Where != "" {
		expr, err := filter.CompileExpression(f.Where, agents.ExprFields...)
		if err != nil {
			return c, fmt.Errorf("invalid --where expression: %w", err)
		}
		c.Expr = expr
	}
	return c, nil
}

// exitCode maps an error to the process exit status: 2 for usage and
// validation problems, 3 for missing records, 1 otherwise.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case deckerrors.IsInvalid(err):
		return 2
	case deckerrors.IsNotFound(err):
		return 3
	}
	return 1
}

// Exit prints err to w and returns the exit status for it.
func Exit(w io.Writer, err error) int {
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
	}
	return exitCode(err)
}
