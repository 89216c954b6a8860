// Package tui provides tests for Bubble Tea models.
package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/chazuruo/agentdeck/internal/agents"
	"github.com/chazuruo/agentdeck/internal/filter"
	"github.com/chazuruo/agentdeck/internal/testutil"
)

func seedAgents(t *testing.T) []agents.Agent {
	t.Helper()
	return testutil.Agents(t)
}

func press(m BrowserModel, keys ...tea.KeyMsg) BrowserModel {
	for _, k := range keys {
		updated, _ := m.Update(k)
		m = updated.(BrowserModel)
	}
	return m
}

func typeText(m BrowserModel, s string) BrowserModel {
	return press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

// TestNewBrowserModel verifies the initial unfiltered view.
func TestNewBrowserModel(t *testing.T) {
	m := NewBrowserModel(seedAgents(t), filter.Criteria{})

	if len(m.Results) != 13 {
		t.Errorf("expected 13 results, got %d", len(m.Results))
	}
	if m.Stats.Total != 13 || m.Stats.Filtered != 13 {
		t.Errorf("expected 13/13, got %d/%d", m.Stats.Filtered, m.Stats.Total)
	}
	if m.Stats.Active != 11 {
		t.Errorf("expected 11 active, got %d", m.Stats.Active)
	}
	if len(m.Table.Rows()) != 13 {
		t.Errorf("expected 13 table rows, got %d", len(m.Table.Rows()))
	}
	if m.Quit || m.Confirmed {
		t.Error("expected fresh model to be neither quit nor confirmed")
	}
}

// TestBrowserModel_Search verifies typing narrows the view while the
// aggregates keep describing the whole base.
func TestBrowserModel_Search(t *testing.T) {
	m := typeText(NewBrowserModel(seedAgents(t), filter.Criteria{}), "sales")

	if m.SearchInput.Value() != "sales" {
		t.Fatalf("expected query 'sales', got %q", m.SearchInput.Value())
	}
	if len(m.Results) == 0 || len(m.Results) >= 13 {
		t.Fatalf("expected a narrowed view, got %d results", len(m.Results))
	}
	for _, a := range m.Results {
		if !strings.Contains(strings.ToLower(strings.Join(a.SearchText(), " ")), "sales") {
			t.Errorf("%s does not mention sales", a.ID)
		}
	}
	if m.Stats.Total != 13 {
		t.Errorf("expected total to stay 13, got %d", m.Stats.Total)
	}
	if m.Stats.Filtered != len(m.Results) {
		t.Errorf("expected filtered %d, got %d", len(m.Results), m.Stats.Filtered)
	}
	if !strings.Contains(m.View(), "Showing") {
		t.Error("expected footer to show filtered vs total counts")
	}
}

// TestBrowserModel_CycleStatus verifies the status filter cycles through
// every status and back to all.
func TestBrowserModel_CycleStatus(t *testing.T) {
	m := NewBrowserModel(seedAgents(t), filter.Criteria{})
	ctrlS := tea.KeyMsg{Type: tea.KeyCtrlS}

	want := []struct {
		value string
		count int
	}{
		{agents.StatusActive, 11},
		{agents.StatusTesting, 1},
		{agents.StatusDisabled, 1},
		{filter.All, 13},
	}
	for _, w := range want {
		m = press(m, ctrlS)
		if got := m.Criteria().Value(agents.FieldStatus); got != w.value {
			t.Errorf("expected status %q, got %q", w.value, got)
		}
		if len(m.Results) != w.count {
			t.Errorf("status %s: expected %d results, got %d", w.value, w.count, len(m.Results))
		}
	}
}

// TestBrowserModel_CycleOrganization verifies organizations come from the
// records in first-seen order.
func TestBrowserModel_CycleOrganization(t *testing.T) {
	m := press(NewBrowserModel(seedAgents(t), filter.Criteria{}), tea.KeyMsg{Type: tea.KeyCtrlO})

	if got := m.Criteria().Value(agents.FieldOrganization); got != "AutoCorp" {
		t.Fatalf("expected AutoCorp, got %q", got)
	}
	if len(m.Results) != 6 {
		t.Errorf("expected 6 AutoCorp agents, got %d", len(m.Results))
	}
}

// TestBrowserModel_Reset verifies ctrl+r clears query and enum filters.
func TestBrowserModel_Reset(t *testing.T) {
	m := typeText(NewBrowserModel(seedAgents(t), filter.Criteria{}), "zzz")
	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlT})
	if len(m.Results) != 0 {
		t.Fatalf("expected no matches, got %d", len(m.Results))
	}
	if !strings.Contains(m.View(), "(no matches)") {
		t.Error("expected empty state in view")
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlR})
	if len(m.Results) != 13 {
		t.Errorf("expected 13 results after reset, got %d", len(m.Results))
	}
	if m.Criteria().Active() {
		t.Error("expected no active criteria after reset")
	}
}

// TestBrowserModel_Select verifies enter confirms the highlighted agent.
func TestBrowserModel_Select(t *testing.T) {
	m := NewBrowserModel(seedAgents(t), filter.Criteria{})
	m = press(m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})

	if !m.DidConfirm() {
		t.Fatal("expected confirmation")
	}
	if m.Selected == nil || m.Selected.ID != m.Results[1].ID {
		t.Errorf("expected second agent to be selected, got %+v", m.Selected)
	}
}

// TestBrowserModel_InitialCriteria verifies flags passed on the command
// line seed the browser.
func TestBrowserModel_InitialCriteria(t *testing.T) {
	c := filter.Criteria{Query: "customer"}.With(agents.FieldType, agents.TypeTemplate)
	m := NewBrowserModel(seedAgents(t), c)

	if m.SearchInput.Value() != "customer" {
		t.Errorf("expected query to seed the input, got %q", m.SearchInput.Value())
	}
	if len(m.Results) != 1 || m.Results[0].ID != "universal-customer-support" {
		t.Errorf("expected only universal-customer-support, got %d results", len(m.Results))
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	if !m.DidQuit() || m.DidConfirm() {
		t.Error("expected esc to quit without selecting")
	}
}
