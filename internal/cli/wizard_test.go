package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/chazuruo/agentdeck/internal/agents"
	"github.com/chazuruo/agentdeck/internal/agents/store"
	deckerrors "github.com/chazuruo/agentdeck/internal/errors"
	"github.com/chazuruo/agentdeck/internal/logging"
)

func openStore(t *testing.T) store.Store {
	t.Helper()
	cfg, _, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	st, err := store.Open(context.Background(), cfg, logging.Discard())
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestParseAssignments(t *testing.T) {
	got, err := parseAssignments([]string{
		"name=Parts Finder",
		"capabilities.voice=true",
		"knowledge.top_k=8",
		"tags=[parts, search]",
		"description=",
	})
	if err != nil {
		t.Fatalf("parseAssignments() error = %v", err)
	}
	if got[0].Path != "name" || got[0].Value != "Parts Finder" {
		t.Errorf("got[0] = %+v", got[0])
	}
	if got[1].Value != true {
		t.Errorf("capabilities.voice = %#v, want true", got[1].Value)
	}
	if got[2].Value != 8 {
		t.Errorf("knowledge.top_k = %#v, want 8", got[2].Value)
	}
	if tags, ok := got[3].Value.([]any); !ok || len(tags) != 2 {
		t.Errorf("tags = %#v, want two-element list", got[3].Value)
	}
	if got[4].Value != "" {
		t.Errorf("empty value = %#v, want empty string", got[4].Value)
	}

	for _, bad := range []string{"novalue", "=x"} {
		if _, err := parseAssignments([]string{bad}); !deckerrors.IsInvalid(err) {
			t.Errorf("parseAssignments(%q) error = %v, want invalid", bad, err)
		}
	}
}

func TestCreate_NonInteractiveFinish(t *testing.T) {
	testConfig(t)

	out, err := execute(t, NewCreateCommand(),
		"--name", "Parts Finder",
		"--set", "category=Automotive",
		"--set", "capabilities.vision=true",
		"--set", "system_prompt=You find parts.",
		"--finish")
	if err != nil {
		t.Fatalf("create error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Created agent parts-finder") {
		t.Errorf("output should name the new agent, got:\n%s", out)
	}

	st := openStore(t)
	a, err := st.Get(context.Background(), "parts-finder")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if a.Creator != "Test User" || a.Organization != "TestOrg" {
		t.Errorf("creator/org = %q/%q, want Test User/TestOrg", a.Creator, a.Organization)
	}
	if a.Status != agents.StatusTesting {
		t.Errorf("Status = %q, want %q", a.Status, agents.StatusTesting)
	}
	if a.Config == nil || !a.Config.Capabilities.Vision {
		t.Errorf("vision capability not stored: %+v", a.Config)
	}
	versions, err := st.ListVersions(context.Background(), "parts-finder")
	if err != nil {
		t.Fatalf("ListVersions() error = %v", err)
	}
	if len(versions) != 1 || versions[0].Prompt != "You find parts." {
		t.Errorf("versions = %+v, want the initial prompt version", versions)
	}
}

func TestCreate_Template(t *testing.T) {
	testConfig(t)

	tmpl := agents.Templates()[0]
	out, err := execute(t, NewCreateCommand(), "--template", tmpl.ID, "--name", "From Template", "--finish")
	if err != nil {
		t.Fatalf("create error = %v\n%s", err, out)
	}
	a, err := openStore(t).Get(context.Background(), "from-template")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if a.Name != "From Template" {
		t.Errorf("Name = %q, want From Template", a.Name)
	}

	if _, err := execute(t, NewCreateCommand(), "--template", "no-such-template"); !deckerrors.IsNotFound(err) {
		t.Errorf("unknown template error = %v, want not found", err)
	}
}

func TestCreate_DraftThenResume(t *testing.T) {
	testConfig(t)

	// No name: finishing is refused and the wizard is kept as a draft.
	out, err := execute(t, NewCreateCommand(), "--set", "description=half done", "--finish")
	if err != nil {
		t.Fatalf("create error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Cannot finish") || !strings.Contains(out, "Saved draft") {
		t.Errorf("output should explain the refusal and save a draft, got:\n%s", out)
	}

	st := openStore(t)
	drafts, err := st.ListDrafts(context.Background())
	if err != nil {
		t.Fatalf("ListDrafts() error = %v", err)
	}
	if len(drafts) != 1 || drafts[0].Kind != agents.KindCreate {
		t.Fatalf("drafts = %+v, want one create draft", drafts)
	}
	id := drafts[0].ID

	out, err = execute(t, NewDraftsCommand())
	if err != nil || !strings.Contains(out, id) {
		t.Errorf("drafts list = %q (err %v), want it to contain %s", out, err, id)
	}

	out, err = execute(t, NewCreateCommand(), "--resume", id, "--name", "Resumed Agent", "--finish")
	if err != nil {
		t.Fatalf("resume error = %v\n%s", err, out)
	}
	a, err := st.Get(context.Background(), "resumed-agent")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if a.Description != "half done" {
		t.Errorf("Description = %q, want the drafted value", a.Description)
	}
	if _, err := st.LoadDraft(context.Background(), id); !deckerrors.IsNotFound(err) {
		t.Errorf("finished draft should be deleted, LoadDraft() error = %v", err)
	}
}

func TestCreate_BadSet(t *testing.T) {
	testConfig(t)

	_, err := execute(t, NewCreateCommand(), "--name", "X", "--set", "no_such_field=1")
	if !deckerrors.IsInvalid(err) {
		t.Errorf("unknown field error = %v, want invalid", err)
	}
}

func TestPublish_NonInteractiveFinish(t *testing.T) {
	seeded(t)

	out, err := execute(t, NewPublishCommand(), "sales-assistant",
		"--set", "pricing.model=one-time",
		"--set", "pricing.price=99",
		"--set", "metadata.description=Closes deals",
		"--finish")
	if err != nil {
		t.Fatalf("publish error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Submitted sales-assistant") {
		t.Errorf("output = %s", out)
	}

	a, err := openStore(t).Get(context.Background(), "sales-assistant")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if a.Listing == nil || a.Listing.Status != agents.ListingReview {
		t.Fatalf("Listing = %+v, want status review", a.Listing)
	}
	if a.Listing.Pricing.Model != "one-time" || a.Listing.Pricing.Price != 99 {
		t.Errorf("Pricing = %+v, want one-time 99", a.Listing.Pricing)
	}
}

func TestPublish_AlreadyPublished(t *testing.T) {
	seeded(t)

	_, err := execute(t, NewPublishCommand(), "customer-support-pro",
		"--set", "metadata.description=again", "--finish")
	if !deckerrors.IsConflict(err) {
		t.Errorf("republish error = %v, want conflict", err)
	}
}

func TestPublish_UnknownAgent(t *testing.T) {
	seeded(t)

	_, err := execute(t, NewPublishCommand(), "ghost", "--finish")
	if !deckerrors.IsNotFound(err) {
		t.Errorf("publish ghost error = %v, want not found", err)
	}
	if code := exitCode(err); code != 3 {
		t.Errorf("exitCode() = %d, want 3", code)
	}
}

func TestCreate_SetKeepsTextForStringFields(t *testing.T) {
	testConfig(t)

	out, err := execute(t, NewCreateCommand(), "--name", "Year Bot",
		"--set", "description=2024", "--set", "category=true", "--finish")
	if err != nil {
		t.Fatalf("create error = %v\n%s", err, out)
	}
	a, err := openStore(t).Get(context.Background(), "year-bot")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if a.Description != "2024" || a.Category != "true" {
		t.Errorf("description/category = %q/%q, want the text as typed", a.Description, a.Category)
	}

	_, err = execute(t, NewCreateCommand(), "--name", "Y", "--set", "knowledge.top_k=ten")
	if !deckerrors.IsInvalid(err) {
		t.Errorf("text into a number field error = %v, want invalid", err)
	}
}

func TestEdit_NonInteractiveFinish(t *testing.T) {
	seeded(t)

	out, err := execute(t, NewEditCommand(), "customer-support-assistant",
		"--set", "capabilities.vision=true",
		"--set", "system_prompt=You fix cars.",
		"--finish")
	if err != nil {
		t.Fatalf("edit error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Updated agent customer-support-assistant") || !strings.Contains(out, "Prompt version: v1.2.4") {
		t.Errorf("output should name the agent and the new version, got:\n%s", out)
	}

	a, err := openStore(t).Get(context.Background(), "customer-support-assistant")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if a.Name != "Customer Support Assistant" {
		t.Errorf("Name = %q, want it unchanged", a.Name)
	}
	if a.Config == nil || !a.Config.Capabilities.Vision || !a.Config.Capabilities.Voice {
		t.Errorf("capabilities = %+v, want vision added and voice kept", a.Config)
	}
	if a.Config.SystemPrompt != "You fix cars." {
		t.Errorf("SystemPrompt = %q", a.Config.SystemPrompt)
	}
}

func TestEdit_DraftThenResume(t *testing.T) {
	seeded(t)

	out, err := execute(t, NewEditCommand(), "technical-support", "--set", "capabilities.voice=true")
	if err != nil {
		t.Fatalf("edit error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Resume with: agentdeck edit technical-support --resume") {
		t.Errorf("resume hint should name the agent, got:\n%s", out)
	}

	st := openStore(t)
	drafts, err := st.ListDrafts(context.Background())
	if err != nil {
		t.Fatalf("ListDrafts() error = %v", err)
	}
	if len(drafts) != 1 || drafts[0].Kind != agents.KindEdit || drafts[0].Subject != "technical-support" {
		t.Fatalf("drafts = %+v, want one edit draft for technical-support", drafts)
	}
	id := drafts[0].ID

	_, err = execute(t, NewEditCommand(), "parts-specialist", "--resume", id, "--finish")
	if !deckerrors.IsInvalid(err) {
		t.Errorf("resuming another agent's draft error = %v, want invalid", err)
	}

	out, err = execute(t, NewEditCommand(), "technical-support", "--resume", id, "--finish")
	if err != nil {
		t.Fatalf("resume error = %v\n%s", err, out)
	}
	a, err := st.Get(context.Background(), "technical-support")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if a.Config == nil || !a.Config.Capabilities.Voice {
		t.Errorf("drafted capability not saved: %+v", a.Config)
	}
	if _, err := st.LoadDraft(context.Background(), id); !deckerrors.IsNotFound(err) {
		t.Errorf("finished draft should be deleted, LoadDraft() error = %v", err)
	}
}

func TestEdit_UnknownAgent(t *testing.T) {
	seeded(t)

	_, err := execute(t, NewEditCommand(), "no-such-agent", "--finish")
	if code := exitCode(err); code != 3 {
		t.Errorf("exitCode = %d (err %v), want 3", code, err)
	}
}
