package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazuruo/agentdeck/internal/agents"
	"github.com/chazuruo/agentdeck/internal/agents/store"
	"github.com/chazuruo/agentdeck/internal/config"
	deckerrors "github.com/chazuruo/agentdeck/internal/errors"
	"github.com/chazuruo/agentdeck/internal/filter"
	"github.com/chazuruo/agentdeck/internal/testutil"
	"github.com/chazuruo/agentdeck/internal/wizard"
)

var now = time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return now }

// sliceSource serves records in slice order.
type sliceSource []agents.Agent

func (s sliceSource) ListRecords(context.Context) ([]agents.Agent, error) {
	return append([]agents.Agent(nil), s...), nil
}

func seedCatalog(t *testing.T) *agents.Catalog {
	t.Helper()
	return testutil.Catalog(t)
}

func seededStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewFileSystemStore(t.TempDir(), nil)
	require.NoError(t, err)
	_, err = ImportCatalog(context.Background(), st, seedCatalog(t), false)
	require.NoError(t, err)
	return st
}

func names(as []agents.Agent) []string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = a.Name
	}
	return out
}

func TestListAgents(t *testing.T) {
	src := sliceSource(seedCatalog(t).Agents)

	c := filter.Criteria{Query: "SUPPORT"}.
		With(agents.FieldStatus, agents.StatusActive).
		With(agents.FieldOrganization, "AutoCorp")

	res, err := ListAgents(context.Background(), src, ListOptions{Criteria: c})
	require.NoError(t, err)

	assert.Equal(t, []string{"Customer Support Assistant", "Technical Support", "Customer Support Pro"}, names(res.Agents))

	// Aggregates describe the unfiltered base
	assert.Equal(t, 13, res.Stats.Total)
	assert.Equal(t, 3, res.Stats.Filtered)
	assert.Equal(t, 11, res.Stats.Active)
	assert.Equal(t, 57296, res.Stats.TotalChats)
	assert.Equal(t, map[string]int{"active": 11, "testing": 1, "disabled": 1}, res.Stats.ByStatus)
	assert.Equal(t, []string{agents.TypeUser, agents.TypeTemplate, agents.TypeShared}, res.Stats.Types)
	assert.Contains(t, res.Stats.Organizations, "AutoCorp")
	assert.Greater(t, res.Stats.AvgRating, 4.0)
}

func TestListAgents_NoCriteria(t *testing.T) {
	cat := seedCatalog(t)
	res, err := ListAgents(context.Background(), sliceSource(cat.Agents), ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, names(cat.Agents), names(res.Agents))
	assert.Equal(t, res.Stats.Total, res.Stats.Filtered)
}

func TestListAgents_SortAndLimit(t *testing.T) {
	src := sliceSource(seedCatalog(t).Agents)

	res, err := ListAgents(context.Background(), src, ListOptions{SortBy: SortChats, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"Universal Customer Support", "Automotive Diagnostic Expert"}, names(res.Agents))
	assert.Equal(t, 13, res.Stats.Filtered)

	_, err = ListAgents(context.Background(), src, ListOptions{SortBy: "popularity"})
	assert.True(t, deckerrors.IsInvalid(err))

	_, err = ListAgents(context.Background(), src, ListOptions{Limit: -1})
	assert.True(t, deckerrors.IsInvalid(err))
}

func TestListAgents_Expression(t *testing.T) {
	expr, err := filter.CompileExpression(`downloads > 7000 && r.type == "Public Template"`, agents.ExprFields...)
	require.NoError(t, err)

	res, err := ListAgents(context.Background(), sliceSource(seedCatalog(t).Agents), ListOptions{
		Criteria: filter.Criteria{Expr: expr},
		SortBy:   SortName,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Sales Conversion Specialist", "Universal Customer Support"}, names(res.Agents))
}

func TestSortAgents_Stable(t *testing.T) {
	as := []agents.Agent{
		{ID: "a", Name: "b", Rating: 4.5},
		{ID: "b", Name: "a", Rating: 4.9},
		{ID: "c", Name: "c", Rating: 4.5},
	}
	SortAgents(as, SortRating)
	assert.Equal(t, "b", as[0].ID)
	assert.Equal(t, "a", as[1].ID)
	assert.Equal(t, "c", as[2].ID)

	SortAgents(as, "")
	assert.Equal(t, "b", as[0].ID)
}

func TestTrending(t *testing.T) {
	src := sliceSource(seedCatalog(t).Agents)
	c := filter.Criteria{}.With(agents.FieldType, agents.TypeTemplate)

	res, err := Trending(context.Background(), src, c, 0)
	require.NoError(t, err)
	require.NotNil(t, res.Featured)
	assert.Equal(t, "universal-customer-support", res.Featured.ID)
	assert.Equal(t, []string{"Sales Conversion Specialist", "Healthcare Assistant", "E-commerce Helper"}, names(res.Ranked))

	res, err = Trending(context.Background(), src, c.With(agents.FieldOrganization, "Nobody"), 5)
	require.NoError(t, err)
	assert.Nil(t, res.Featured)
	assert.Empty(t, res.Ranked)

	res, err = Trending(context.Background(), src, filter.Criteria{}, 2)
	require.NoError(t, err)
	assert.Len(t, res.Ranked, 2)
}

func TestImportCatalog(t *testing.T) {
	ctx := context.Background()
	st, err := store.NewFileSystemStore(t.TempDir(), nil)
	require.NoError(t, err)
	cat := seedCatalog(t)

	res, err := ImportCatalog(ctx, st, cat, false)
	require.NoError(t, err)
	assert.Equal(t, 13, res.Agents)
	assert.Equal(t, 4, res.Versions)
	assert.Empty(t, res.Skipped)

	res, err = ImportCatalog(ctx, st, cat, false)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Agents)
	assert.Equal(t, 0, res.Versions)
	assert.Len(t, res.Skipped, 13)

	res, err = ImportCatalog(ctx, st, cat, true)
	require.NoError(t, err)
	assert.Equal(t, 13, res.Agents)
}

func TestImportCatalog_AlreadySeeded(t *testing.T) {
	st := testutil.SeededStore(t)

	res, err := ImportCatalog(context.Background(), st, seedCatalog(t), false)
	require.NoError(t, err)
	assert.Zero(t, res.Agents)
	assert.Zero(t, res.Versions)
	assert.Len(t, res.Skipped, 13)
}

func TestVersions(t *testing.T) {
	st := seededStore(t)
	ctx := context.Background()

	all, err := Versions(ctx, st, "customer-support-assistant", filter.Criteria{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "v1.2.3-exp", all[0].ID)

	prev, err := Versions(ctx, st, "customer-support-assistant", filter.Criteria{}.With("status", agents.VersionPrevious))
	require.NoError(t, err)
	require.Len(t, prev, 2)
	assert.Equal(t, "v1.2.2", prev[0].ID)
	assert.Equal(t, "v1.2.1", prev[1].ID)

	_, err = Versions(ctx, st, "ghost", filter.Criteria{})
	assert.True(t, deckerrors.IsNotFound(err))
}

func TestRecordVersion(t *testing.T) {
	st := seededStore(t)
	ctx := context.Background()

	v, err := RecordVersion(ctx, st, RecordVersionOptions{
		AgentID: "customer-support-assistant",
		Author:  "Ana",
		Message: "Shorter greeting",
		Prompt:  "You are brief and kind.",
		Now:     fixedNow,
	})
	require.NoError(t, err)
	assert.Equal(t, "v1.2.4", v.ID)
	assert.Equal(t, agents.VersionCurrent, v.Status)
	assert.Equal(t, "main", v.Branch)

	current, err := Versions(ctx, st, "customer-support-assistant", filter.Criteria{}.With("status", agents.VersionCurrent))
	require.NoError(t, err)
	require.Len(t, current, 1)
	assert.Equal(t, "v1.2.4", current[0].ID)

	a, err := st.Get(ctx, "customer-support-assistant")
	require.NoError(t, err)
	assert.Equal(t, "You are brief and kind.", a.Config.SystemPrompt)

	// Drafts leave the current version and the prompt alone
	d, err := RecordVersion(ctx, st, RecordVersionOptions{
		AgentID: "customer-support-assistant",
		ID:      "v2.0.0-rc",
		Message: "Experiment",
		Prompt:  "Be loud.",
		Draft:   true,
		Now:     fixedNow,
	})
	require.NoError(t, err)
	assert.Equal(t, agents.VersionDraft, d.Status)
	a, err = st.Get(ctx, "customer-support-assistant")
	require.NoError(t, err)
	assert.Equal(t, "You are brief and kind.", a.Config.SystemPrompt)

	_, err = RecordVersion(ctx, st, RecordVersionOptions{AgentID: "customer-support-assistant", ID: "v1.2.4", Message: "dup"})
	assert.True(t, deckerrors.IsAlreadyExists(err))

	_, err = RecordVersion(ctx, st, RecordVersionOptions{AgentID: "customer-support-assistant", Message: "  "})
	assert.True(t, deckerrors.IsInvalid(err))
}

func TestNextVersionID(t *testing.T) {
	assert.Equal(t, "v1.0.0", NextVersionID(nil))
	assert.Equal(t, "v2.3.5", NextVersionID([]agents.PromptVersion{
		{ID: "v9.0.0", Status: agents.VersionDraft},
		{ID: "v2.3.4", Status: agents.VersionCurrent},
	}))
	assert.Equal(t, "v1.0.0", NextVersionID([]agents.PromptVersion{{ID: "latest", Status: agents.VersionCurrent}}))
}

func TestCreateSink(t *testing.T) {
	ctx := context.Background()
	st, err := store.NewFileSystemStore(t.TempDir(), nil)
	require.NoError(t, err)

	sink := &CreateSink{
		Store:    st,
		Identity: config.IdentityConfig{Creator: "ana", Organization: "AutoCorp"},
		Now:      fixedNow,
	}

	create := func(id string) *agents.Agent {
		w, err := agents.NewCreateWizard(agents.WizardOptions{IDs: wizard.Sequence(id), Now: fixedNow})
		require.NoError(t, err)
		require.NoError(t, w.SelectTemplate("customer-support"))
		require.NoError(t, w.Begin())
		require.NoError(t, w.Set("name", "Support Bot"))
		require.NoError(t, w.Finalize(ctx, sink))
		assert.Equal(t, wizard.PhaseFinalized, w.Phase())
		return sink.Created
	}

	first := create("wiz-1")
	assert.Equal(t, "support-bot", first.ID)
	assert.Equal(t, agents.StatusTesting, first.Status)
	assert.Equal(t, agents.TypeUser, first.Type)
	assert.Equal(t, "ana", first.Creator)
	assert.Equal(t, "AutoCorp", first.Organization)
	assert.True(t, first.CreatedAt.Equal(now))
	require.NotNil(t, first.Config)
	assert.NotEmpty(t, first.Config.SystemPrompt)

	second := create("wiz-2")
	assert.Equal(t, "support-bot-1", second.ID)

	stored, err := st.Get(ctx, "support-bot")
	require.NoError(t, err)
	assert.Equal(t, "Support Bot", stored.Name)

	versions, err := st.ListVersions(ctx, "support-bot")
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, agents.VersionCurrent, versions[0].Status)
}

func TestCreateSink_InvalidConfigLeavesWizardOpen(t *testing.T) {
	ctx := context.Background()
	st, err := store.NewFileSystemStore(t.TempDir(), nil)
	require.NoError(t, err)

	w, err := agents.NewCreateWizard(agents.WizardOptions{Now: fixedNow})
	require.NoError(t, err)
	require.NoError(t, w.StartFromScratch())
	require.NoError(t, w.Begin())
	require.NoError(t, w.Set("name", "Bot"))
	require.NoError(t, w.Set("knowledge.chunk_size", 42))

	err = w.Finalize(ctx, &CreateSink{Store: st, Identity: config.IdentityConfig{Creator: "ana"}})
	require.Error(t, err)
	assert.True(t, deckerrors.IsInvalid(err))
	assert.Equal(t, wizard.PhaseSteps, w.Phase())

	records, err := st.ListRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestEditSink(t *testing.T) {
	ctx := context.Background()
	st := seededStore(t)
	sink := &EditSink{Store: st, AgentID: "customer-support-assistant", Author: "ana", Now: fixedNow}

	a, err := st.Get(ctx, "customer-support-assistant")
	require.NoError(t, err)
	w, err := agents.NewEditWizard(a, agents.WizardOptions{Now: fixedNow})
	require.NoError(t, err)
	assert.Equal(t, wizard.PhaseSteps, w.Phase())
	assert.Equal(t, *a.Config, w.Config(), "starts from the stored config")

	require.NoError(t, w.Set("name", "Support Desk"))
	require.NoError(t, w.Set("capabilities.vision", true))
	require.NoError(t, w.Set("system_prompt", "You answer AutoCorp support tickets."))
	require.NoError(t, w.Finalize(ctx, sink))

	stored, err := st.Get(ctx, "customer-support-assistant")
	require.NoError(t, err)
	assert.Equal(t, "Support Desk", stored.Name, "renamed in place")
	assert.Equal(t, 1247, stored.TotalChats, "usage kept")
	require.NotNil(t, stored.Config)
	assert.True(t, stored.Config.Capabilities.Vision)
	assert.True(t, stored.Config.Capabilities.Voice, "untouched fields kept")
	require.Len(t, stored.Config.Integrations, 1)

	require.NotNil(t, sink.Version)
	assert.Equal(t, "v1.2.4", sink.Version.ID)
	assert.Equal(t, "ana", sink.Version.Author)
	versions, err := st.ListVersions(ctx, "customer-support-assistant")
	require.NoError(t, err)
	current := filter.Apply(versions, filter.Criteria{}.With("status", agents.VersionCurrent))
	require.Len(t, current, 1)
	assert.Equal(t, "You answer AutoCorp support tickets.", current[0].Prompt)

	// Same prompt again: no new version.
	w, err = agents.NewEditWizard(stored, agents.WizardOptions{Now: fixedNow})
	require.NoError(t, err)
	require.NoError(t, w.Set("description", "Front line support"))
	require.NoError(t, w.Finalize(ctx, sink))
	assert.Nil(t, sink.Version)
	after, err := st.ListVersions(ctx, "customer-support-assistant")
	require.NoError(t, err)
	assert.Len(t, after, len(versions))
}

func TestEditSink_RecordWithoutConfig(t *testing.T) {
	ctx := context.Background()
	st := seededStore(t)

	a, err := st.Get(ctx, "technical-support")
	require.NoError(t, err)
	require.Nil(t, a.Config)

	w, err := agents.NewEditWizard(a, agents.WizardOptions{})
	require.NoError(t, err)
	cfg := w.Config()
	assert.Equal(t, "Technical Support", cfg.Name)
	assert.Equal(t, "GPT-4 Turbo", cfg.Pricing.Model)
	assert.Equal(t, []string{"technical", "troubleshooting"}, cfg.Tags)

	require.NoError(t, w.Set("capabilities.calling", true))
	sink := &EditSink{Store: st, AgentID: a.ID}
	require.NoError(t, w.Finalize(ctx, sink))
	assert.Nil(t, sink.Version, "no prompt, no version")

	stored, err := st.Get(ctx, "technical-support")
	require.NoError(t, err)
	require.NotNil(t, stored.Config)
	assert.True(t, stored.Config.Capabilities.Calling)
	assert.Equal(t, "AutoCorp", stored.Organization)
}

func TestEditSink_MissingAgentLeavesWizardOpen(t *testing.T) {
	ctx := context.Background()
	st := seededStore(t)

	a, err := st.Get(ctx, "parts-specialist")
	require.NoError(t, err)
	w, err := agents.NewEditWizard(a, agents.WizardOptions{})
	require.NoError(t, err)
	require.NoError(t, st.Delete(ctx, a.ID))

	err = w.Finalize(ctx, &EditSink{Store: st, AgentID: a.ID})
	assert.True(t, deckerrors.IsNotFound(err), "got %v", err)
	assert.Equal(t, wizard.PhaseSteps, w.Phase())
}

func TestPublishSink(t *testing.T) {
	ctx := context.Background()
	st := seededStore(t)
	sink := &PublishSink{Store: st, Now: fixedNow}

	w, err := agents.NewPublishWizard("sales-assistant", agents.WizardOptions{Now: fixedNow})
	require.NoError(t, err)
	require.NoError(t, w.Set("metadata.description", "Qualifies leads"))
	require.NoError(t, w.Set("metadata.category", "sales"))
	require.NoError(t, w.Finalize(ctx, sink))

	a, err := st.Get(ctx, "sales-assistant")
	require.NoError(t, err)
	require.NotNil(t, a.Listing)
	assert.Equal(t, agents.ListingReview, a.Listing.Status)
	assert.Equal(t, "subscription", a.Listing.Pricing.Model)
	assert.True(t, a.Listing.SubmittedAt.Equal(now))
	assert.Equal(t, "sales", a.Listing.Metadata.Category)

	// Already published listings are rejected
	p := agents.DefaultPublishConfig()
	p.AgentID = "customer-support-pro"
	p.Metadata.Description = "again"
	err = sink.Finalize(ctx, p)
	assert.True(t, deckerrors.IsConflict(err))

	p.AgentID = "ghost"
	err = sink.Finalize(ctx, p)
	assert.True(t, deckerrors.IsNotFound(err))

	p.AgentID = ""
	err = sink.Finalize(ctx, p)
	assert.True(t, deckerrors.IsInvalid(err))
}
