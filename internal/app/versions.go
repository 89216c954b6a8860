package app

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/chazuruo/agentdeck/internal/agents"
	"github.com/chazuruo/agentdeck/internal/agents/store"
	deckerrors "github.com/chazuruo/agentdeck/internal/errors"
	"github.com/chazuruo/agentdeck/internal/filter"
)

// Versions returns an agent's prompt versions matching c, newest first.
func Versions(ctx context.Context, st store.Store, agentID string, c filter.Criteria) ([]agents.PromptVersion, error) {
	all, err := st.ListVersions(ctx, agentID)
	if err != nil {
		return nil, err
	}
	return filter.Apply(all, c), nil
}

// RecordVersionOptions describes a new prompt version.
type RecordVersionOptions struct {
	AgentID string
	// ID defaults to the current version with its patch number bumped.
	ID      string
	Author  string
	Message string
	Branch  string
	Prompt  string
	Changes string
	// Draft records the version without making it current.
	Draft bool
	Now   func() time.Time
}

var semver = regexp.MustCompile(`^v(\d+)\.(\d+)\.(\d+)$`)

// NextVersionID bumps the patch number of the newest current version.
// Histories without a parseable current version start at v1.0.0.
func NextVersionID(history []agents.PromptVersion) string {
	for _, v := range history {
		if v.Status != agents.VersionCurrent {
			continue
		}
		m := semver.FindStringSubmatch(v.ID)
		if m == nil {
			break
		}
		patch, _ := strconv.Atoi(m[3])
		return fmt.Sprintf("v%s.%s.%d", m[1], m[2], patch+1)
	}
	return "v1.0.0"
}

// RecordVersion saves a new prompt version. Unless it is a draft, the
// previous current version is demoted and the agent's system prompt is
// updated to match.
func RecordVersion(ctx context.Context, st store.Store, opts RecordVersionOptions) (*agents.PromptVersion, error) {
	if strings.TrimSpace(opts.Message) == "" {
		return nil, deckerrors.Invalidf("version message cannot be empty")
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	agent, err := st.Get(ctx, opts.AgentID)
	if err != nil {
		return nil, err
	}
	history, err := st.ListVersions(ctx, opts.AgentID)
	if err != nil {
		return nil, err
	}

	v := agents.PromptVersion{
		ID:        opts.ID,
		AgentID:   opts.AgentID,
		Author:    opts.Author,
		Message:   opts.Message,
		Branch:    opts.Branch,
		Status:    agents.VersionCurrent,
		Prompt:    opts.Prompt,
		Changes:   opts.Changes,
		CreatedAt: now(),
	}
	if v.ID == "" {
		v.ID = NextVersionID(history)
	}
	if v.Branch == "" {
		v.Branch = "main"
	}
	if opts.Draft {
		v.Status = agents.VersionDraft
	}
	for _, old := range history {
		if old.ID == v.ID {
			return nil, &deckerrors.AgentError{Op: "record version", Err: fmt.Errorf("%w: version %s", deckerrors.ErrAlreadyExists, v.ID), ID: opts.AgentID}
		}
	}

	if !opts.Draft {
		for _, old := range history {
			if old.Status != agents.VersionCurrent {
				continue
			}
			old.Status = agents.VersionPrevious
			if err := st.SaveVersion(ctx, old); err != nil {
				return nil, err
			}
		}
	}
	if err := st.SaveVersion(ctx, v); err != nil {
		return nil, err
	}

	if !opts.Draft && opts.Prompt != "" {
		if agent.Config == nil {
			cfg := agents.DefaultConfig()
			cfg.Name = agent.Name
			agent.Config = &cfg
		}
		agent.Config.SystemPrompt = opts.Prompt
		if err := st.Save(ctx, agent, store.SaveOptions{Force: true}); err != nil {
			return nil, err
		}
	}
	return &v, nil
}
