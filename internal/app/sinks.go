package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chazuruo/agentdeck/internal/agents"
	"github.com/chazuruo/agentdeck/internal/agents/store"
	"github.com/chazuruo/agentdeck/internal/config"
	deckerrors "github.com/chazuruo/agentdeck/internal/errors"
	"github.com/chazuruo/agentdeck/internal/logging"
	"github.com/chazuruo/agentdeck/internal/wizard"
)

// CreateSink receives finished create wizards and stores the new agent.
type CreateSink struct {
	Store    store.Store
	Identity config.IdentityConfig
	Now      func() time.Time
	Logger   *slog.Logger

	// Created is the agent written by the last successful Finalize.
	Created *agents.Agent
}

var _ wizard.Sink[agents.Config] = (*CreateSink)(nil)

// Finalize implements wizard.Sink. The agent id is a slug of the name that
// does not collide with any stored agent.
func (s *CreateSink) Finalize(ctx context.Context, cfg agents.Config) error {
	if err := cfg.Validate(); err != nil {
		return deckerrors.Invalidf("%v", err)
	}
	now := nowFunc(s.Now)()

	existing, err := s.Store.ListRecords(ctx)
	if err != nil {
		return fmt.Errorf("failed to list agents: %w", err)
	}
	taken := make([]string, len(existing))
	for i, a := range existing {
		taken[i] = a.ID
	}

	cfg = cfg.Clone()
	a := &agents.Agent{
		SchemaVersion: agents.SchemaVersion,
		ID:            store.GenerateUniqueSlug(cfg.Name, taken),
		Name:          strings.TrimSpace(cfg.Name),
		Description:   cfg.Description,
		Creator:       s.Identity.Creator,
		Type:          agents.TypeUser,
		Model:         cfg.Pricing.Model,
		Status:        agents.StatusTesting,
		Organization:  s.Identity.Organization,
		Category:      cfg.Category,
		Tags:          cfg.Tags,
		CreatedAt:     now,
		Config:        &cfg,
	}
	if err := s.Store.Save(ctx, a, store.SaveOptions{}); err != nil {
		return err
	}

	if cfg.SystemPrompt != "" {
		v := agents.PromptVersion{
			ID:        "v1.0.0",
			AgentID:   a.ID,
			Author:    s.Identity.Creator,
			Message:   "Initial version",
			Branch:    "main",
			Status:    agents.VersionCurrent,
			Prompt:    cfg.SystemPrompt,
			CreatedAt: now,
		}
		if err := s.Store.SaveVersion(ctx, v); err != nil {
			logging.OrDiscard(s.Logger).Warn("failed to record initial version", "agent", a.ID, "error", err)
		}
	}

	logging.OrDiscard(s.Logger).Info("created agent", "agent", a.ID, "name", a.Name)
	s.Created = a
	return nil
}

// EditSink receives finished edit wizards and rewrites the stored agent's
// configuration. A changed system prompt is recorded as a new current
// prompt version.
type EditSink struct {
	Store   store.Store
	AgentID string
	// Author is credited with the prompt version.
	Author  string
	Now     func() time.Time
	Logger  *slog.Logger

	Updated *agents.Agent
	// Version is set when the edit recorded a prompt version.
	Version *agents.PromptVersion
}

var _ wizard.Sink[agents.Config] = (*EditSink)(nil)

// Finalize implements wizard.Sink. The agent keeps its id even when it is
// renamed.
func (s *EditSink) Finalize(ctx context.Context, cfg agents.Config) error {
	s.Updated, s.Version = nil, nil
	if err := cfg.Validate(); err != nil {
		return deckerrors.Invalidf("%v", err)
	}
	a, err := s.Store.Get(ctx, s.AgentID)
	if err != nil {
		return err
	}
	previousPrompt := ""
	if a.Config != nil {
		previousPrompt = a.Config.SystemPrompt
	}

	cfg = cfg.Clone()
	a.Name = strings.TrimSpace(cfg.Name)
	a.Description = cfg.Description
	a.Category = cfg.Category
	a.Tags = cfg.Tags
	a.Model = cfg.Pricing.Model
	a.Config = &cfg
	if err := s.Store.Save(ctx, a, store.SaveOptions{Force: true}); err != nil {
		return err
	}
	log := logging.OrDiscard(s.Logger)

	if cfg.SystemPrompt != "" && cfg.SystemPrompt != previousPrompt {
		v, err := RecordVersion(ctx, s.Store, RecordVersionOptions{
			AgentID: a.ID,
			Author:  s.Author,
			Message: "Edited system prompt",
			Prompt:  cfg.SystemPrompt,
			Now:     s.Now,
		})
		if err != nil {
			log.Warn("failed to record prompt version", "agent", a.ID, "error", err)
		} else {
			s.Version = v
		}
	}

	log.Info("updated agent", "agent", a.ID, "name", a.Name)
	s.Updated = a
	return nil
}

// PublishSink receives finished publish wizards and submits the listing
// for review.
type PublishSink struct {
	Store  store.Store
	Now    func() time.Time
	Logger *slog.Logger

	// Published is the agent updated by the last successful Finalize.
	Published *agents.Agent
}

var _ wizard.Sink[agents.PublishConfig] = (*PublishSink)(nil)

// Finalize implements wizard.Sink. An agent whose listing is already
// published cannot be resubmitted.
func (s *PublishSink) Finalize(ctx context.Context, p agents.PublishConfig) error {
	if err := p.Validate(); err != nil {
		return deckerrors.Invalidf("%v", err)
	}

	a, err := s.Store.Get(ctx, p.AgentID)
	if err != nil {
		return err
	}
	if a.Listing != nil && a.Listing.Status == agents.ListingPublished {
		return &deckerrors.AgentError{Op: "publish", Err: fmt.Errorf("%w: listing is already published", deckerrors.ErrConflict), ID: a.ID}
	}

	listing := agents.NewListing(p, nowFunc(s.Now)())
	if listing.Metadata.Description == "" {
		listing.Metadata.Description = a.Description
	}
	a.Listing = &listing
	if err := s.Store.Save(ctx, a, store.SaveOptions{Force: true}); err != nil {
		return err
	}

	logging.OrDiscard(s.Logger).Info("submitted listing", "agent", a.ID, "pricing", listing.Pricing.Model)
	s.Published = a
	return nil
}

func nowFunc(now func() time.Time) func() time.Time {
	if now == nil {
		return time.Now
	}
	return now
}
