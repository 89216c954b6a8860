// Package tui provides Bubble Tea models for agentdeck.
package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chazuruo/agentdeck/internal/agents"
	"github.com/chazuruo/agentdeck/internal/app"
	"github.com/chazuruo/agentdeck/internal/filter"
)

// BrowserModel is a Bubble Tea model for searching and filtering agents.
type BrowserModel struct {
	// Records is the unfiltered base.
	Records []agents.Agent

	// Results is the current filtered view.
	Results []agents.Agent

	// Stats aggregates Records; Stats.Filtered is len(Results).
	Stats app.Stats

	// SearchInput is the text input for the free-text query.
	SearchInput textinput.Model

	// Table lists Results.
	Table table.Model

	// Quit indicates whether the user quit without selecting.
	Quit bool

	// Confirmed indicates whether the user confirmed a selection.
	Confirmed bool

	// Selected is the confirmed agent.
	Selected *agents.Agent

	criteria filter.Criteria
	choices  map[string][]string
}

// enumKeys binds each cycling shortcut to the field it cycles.
var enumKeys = []struct {
	key   string
	field string
	label string
}{
	{"ctrl+s", agents.FieldStatus, "Status"},
	{"ctrl+t", agents.FieldType, "Type"},
	{"ctrl+o", agents.FieldOrganization, "Org"},
}

// NewBrowserModel creates a browser over records, starting from c. The
// query of c seeds the search input.
func NewBrowserModel(records []agents.Agent, c filter.Criteria) BrowserModel {
	ti := textinput.New()
	ti.Placeholder = "Search agents..."
	ti.SetValue(c.Query)
	ti.Focus()

	// Letters go to the search input, so the table only navigates with
	// non-printing keys.
	km := table.DefaultKeyMap()
	km.LineUp = key.NewBinding(key.WithKeys("up"))
	km.LineDown = key.NewBinding(key.WithKeys("down"))
	km.PageUp = key.NewBinding(key.WithKeys("pgup"))
	km.PageDown = key.NewBinding(key.WithKeys("pgdown"))
	km.HalfPageUp = key.NewBinding(key.WithKeys("ctrl+u"))
	km.HalfPageDown = key.NewBinding(key.WithKeys("ctrl+d"))
	km.GotoTop = key.NewBinding(key.WithKeys("home"))
	km.GotoBottom = key.NewBinding(key.WithKeys("end"))

	tbl := table.New(
		table.WithColumns([]table.Column{
			{Title: "Name", Width: 30},
			{Title: "Type", Width: 16},
			{Title: "Status", Width: 9},
			{Title: "Organization", Width: 18},
			{Title: "Chats", Width: 7},
			{Title: "Rating", Width: 6},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
		table.WithKeyMap(km),
	)
	ts := table.DefaultStyles()
	ts.Header = ts.Header.BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).Bold(true)
	ts.Selected = selectedStyle
	tbl.SetStyles(ts)

	m := BrowserModel{
		Records:     records,
		SearchInput: ti,
		Table:       tbl,
		criteria:    c,
		choices: map[string][]string{
			agents.FieldStatus:       agents.Statuses,
			agents.FieldType:         agents.Types,
			agents.FieldOrganization: filter.Distinct(records, agents.FieldOrganization),
		},
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m BrowserModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "esc":
			m.Quit = true
			return m, tea.Quit

		case "enter":
			if len(m.Results) > 0 {
				a := m.Results[m.Table.Cursor()].Clone()
				m.Selected = &a
				m.Confirmed = true
			}
			return m, tea.Quit

		case "ctrl+r":
			m.criteria = filter.Criteria{Expr: m.criteria.Expr}
			m.SearchInput.SetValue("")
			m.refresh()
			return m, nil
		}

		for _, ek := range enumKeys {
			if msg.String() == ek.key {
				m.cycle(ek.field)
				return m, nil
			}
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd

	oldQuery := m.SearchInput.Value()
	m.SearchInput, cmd = m.SearchInput.Update(msg)
	cmds = append(cmds, cmd)
	if m.SearchInput.Value() != oldQuery {
		m.refresh()
	}

	m.Table, cmd = m.Table.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// cycle moves the enum filter on field to its next value, wrapping back
// to "all" after the last one.
func (m *BrowserModel) cycle(field string) {
	options := append([]string{filter.All}, m.choices[field]...)
	next := (slices.Index(options, m.criteria.Value(field)) + 1) % len(options)
	m.criteria = m.criteria.With(field, options[next])
	m.refresh()
}

// refresh reapplies the criteria and rebuilds the table rows.
func (m *BrowserModel) refresh() {
	m.criteria.Query = m.SearchInput.Value()
	m.Results = filter.Apply(m.Records, m.criteria)
	m.Stats = app.ComputeStats(m.Records, len(m.Results))

	rows := make([]table.Row, 0, len(m.Results))
	for _, a := range m.Results {
		rating := "-"
		if a.Rating > 0 {
			rating = fmt.Sprintf("%.1f", a.Rating)
		}
		rows = append(rows, table.Row{
			a.Name, a.Type, a.Status, a.Organization, fmt.Sprint(a.TotalChats), rating,
		})
	}
	m.Table.SetRows(rows)
	if m.Table.Cursor() >= len(rows) {
		m.Table.SetCursor(max(0, len(rows)-1))
	}
}

// Criteria returns the criteria currently applied.
func (m BrowserModel) Criteria() filter.Criteria {
	return m.criteria
}

// View implements tea.Model.
func (m BrowserModel) View() string {
	var b strings.Builder

	b.WriteString("\n  ")
	b.WriteString(headerStyle.Render("Agents"))
	b.WriteString("\n\n  Search: ")
	b.WriteString(m.SearchInput.View())
	b.WriteString("\n\n  ")

	filters := make([]string, 0, len(enumKeys))
	for _, ek := range enumKeys {
		filters = append(filters, fmt.Sprintf("%s: %s", ek.label, m.criteria.Value(ek.field)))
	}
	if m.criteria.Expr != nil {
		filters = append(filters, "Where: "+m.criteria.Expr.String())
	}
	b.WriteString(metadataStyle.Render(strings.Join(filters, "  ")))
	b.WriteString("\n\n")

	if len(m.Results) == 0 {
		b.WriteString("  (no matches)\n")
	} else {
		b.WriteString(boxStyle.Render(m.Table.View()))
		b.WriteString("\n")
	}

	b.WriteString("  ")
	b.WriteString(metadataStyle.Render(m.footer()))
	b.WriteString("\n  ")
	b.WriteString(helpStyle.Render(helpLine(
		"[Enter] Select", "[Ctrl+S] Status", "[Ctrl+T] Type", "[Ctrl+O] Org", "[Ctrl+R] Reset", "[Esc] Quit",
	)))
	b.WriteString("\n")
	return b.String()
}

func (m BrowserModel) footer() string {
	s := m.Stats
	if s.Filtered == s.Total {
		return fmt.Sprintf("%d agents • %d active • %d chats", s.Total, s.Active, s.TotalChats)
	}
	return fmt.Sprintf("Showing %d of %d agents • %d active • %d chats", s.Filtered, s.Total, s.Active, s.TotalChats)
}

// DidQuit returns true if the user quit without selecting.
func (m BrowserModel) DidQuit() bool {
	return m.Quit
}

// DidConfirm returns true if the user confirmed a selection.
func (m BrowserModel) DidConfirm() bool {
	return m.Confirmed
}
