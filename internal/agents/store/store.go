// Package store persists agents, their prompt versions and in-progress
// wizard drafts. Two backends are provided: a directory tree of YAML files
// and a Redis keyspace.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/chazuruo/agentdeck/internal/agents"
	"github.com/chazuruo/agentdeck/internal/config"
	deckerrors "github.com/chazuruo/agentdeck/internal/errors"
	"github.com/chazuruo/agentdeck/internal/wizard"
)

// Backend names accepted by store.backend.
const (
	BackendFilesystem = "filesystem"
	BackendRedis      = "redis"
)

// Source is the read-only records source the list views are built on.
type Source interface {
	// ListRecords returns every stored agent ordered by creation time.
	ListRecords(ctx context.Context) ([]agents.Agent, error)
}

// Drafts persists serialized wizard state between sessions.
type Drafts interface {
	SaveDraft(ctx context.Context, id string, data []byte) error
	LoadDraft(ctx context.Context, id string) ([]byte, error)
	ListDrafts(ctx context.Context) ([]DraftInfo, error)
	DeleteDraft(ctx context.Context, id string) error
}

// Store defines the agent persistence operations.
type Store interface {
	Source
	Drafts

	// Get loads one agent by id.
	Get(ctx context.Context, id string) (*agents.Agent, error)

	// Save writes an agent. An existing id is only overwritten with Force.
	Save(ctx context.Context, a *agents.Agent, opts SaveOptions) error

	// Delete removes an agent together with its versions.
	Delete(ctx context.Context, id string) error

	// SaveVersion writes a prompt version of an existing agent.
	SaveVersion(ctx context.Context, v agents.PromptVersion) error

	// ListVersions returns an agent's prompt versions, newest first.
	ListVersions(ctx context.Context, agentID string) ([]agents.PromptVersion, error)

	// Close releases backend resources.
	Close() error
}

// SaveOptions contains options for saving an agent.
type SaveOptions struct {
	// Force allows overwriting an existing agent if true.
	Force bool
}

// DraftInfo summarizes a saved draft without decoding its config.
type DraftInfo struct {
	ID        string       `yaml:"id" json:"id"`
	Kind      string       `yaml:"kind" json:"kind"`
	Subject   string       `yaml:"subject,omitempty" json:"subject,omitempty"`
	Phase     wizard.Phase `yaml:"phase" json:"phase"`
	Current   int          `yaml:"current" json:"current"`
	UpdatedAt time.Time    `yaml:"updated_at" json:"updated_at"`
}

var validID = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// checkID rejects ids that are empty or would escape a directory or key.
func checkID(kind, id string) error {
	if !validID.MatchString(id) {
		return deckerrors.Invalidf("%s id %q must match %s", kind, id, validID)
	}
	return nil
}

// Open creates the store selected by cfg.Store.Backend.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, error) {
	switch cfg.Store.Backend {
	case BackendFilesystem, "":
		return NewFileSystemStore(cfg.Store.Path, logger)
	case BackendRedis:
		return NewRedisStore(ctx, RedisOptions{
			URL:            cfg.Store.RedisURL,
			KeyPrefix:      cfg.Store.KeyPrefix,
			ConnectTimeout: cfg.Store.ConnectTimeout.Duration,
		}, logger)
	default:
		return nil, deckerrors.Invalidf("unknown store backend %q", cfg.Store.Backend)
	}
}

// SaveState serializes a wizard snapshot into drafts under its own id.
func SaveState[C any](ctx context.Context, d Drafts, s wizard.State[C]) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}
	return d.SaveDraft(ctx, s.ID, data)
}

// LoadState reads back a snapshot written by SaveState.
func LoadState[C any](ctx context.Context, d Drafts, id string) (wizard.State[C], error) {
	var s wizard.State[C]
	data, err := d.LoadDraft(ctx, id)
	if err != nil {
		return s, err
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("%w: draft %s: %v", deckerrors.ErrInvalid, id, err)
	}
	return s, nil
}

func parseDraftInfo(id string, data []byte) (DraftInfo, error) {
	var info DraftInfo
	if err := yaml.Unmarshal(data, &info); err != nil {
		return DraftInfo{}, fmt.Errorf("%w: draft %s: %v", deckerrors.ErrInvalid, id, err)
	}
	if info.ID == "" {
		info.ID = id
	}
	return info, nil
}

func sortVersions(vs []agents.PromptVersion) {
	// newest first, id breaks ties so the order is stable across backends
	slices.SortFunc(vs, func(a, b agents.PromptVersion) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

func sortRecords(as []agents.Agent) {
	slices.SortFunc(as, func(a, b agents.Agent) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

func sortDrafts(ds []DraftInfo) {
	slices.SortFunc(ds, func(a, b DraftInfo) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
