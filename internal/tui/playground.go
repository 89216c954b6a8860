package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	deckerrors "github.com/chazuruo/agentdeck/internal/errors"
	"github.com/chazuruo/agentdeck/internal/playground"
)

// replyMsg is delivered when a pending reply settles.
type replyMsg struct {
	reply *playground.Reply
	msg   playground.Message
	err   error
}

// PlaygroundModel is a chat view over a playground session.
type PlaygroundModel struct {
	Session *playground.Session

	Input    textinput.Model
	Viewport viewport.Model
	Spinner  spinner.Model

	// Quit indicates the user left the playground.
	Quit bool

	ctx     context.Context
	pending *playground.Reply
	notice  string
	err     error
}

// NewPlaygroundModel creates a playground view. ctx bounds every reply.
func NewPlaygroundModel(ctx context.Context, s *playground.Session) PlaygroundModel {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.CharLimit = 2000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = assistantStyle

	m := PlaygroundModel{
		Session:  s,
		Input:    ti,
		Viewport: viewport.New(80, 16),
		Spinner:  sp,
		ctx:      ctx,
	}
	m.renderTranscript()
	return m
}

// Init implements tea.Model.
func (m PlaygroundModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m PlaygroundModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Viewport.Width = msg.Width
		m.Viewport.Height = max(4, msg.Height-8)
		m.renderTranscript()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.Session.Cancel()
			m.Quit = true
			return m, tea.Quit

		case "esc":
			if m.pending != nil {
				m.Session.Cancel()
				m.pending = nil
				m.notice = "Reply canceled."
				return m, nil
			}
			m.Quit = true
			return m, tea.Quit

		case "ctrl+r":
			m.Session.Reset()
			m.pending = nil
			m.notice = "Conversation reset."
			m.err = nil
			m.renderTranscript()
			return m, nil

		case "enter":
			return m.send()
		}

	case replyMsg:
		if msg.reply == m.pending {
			m.pending = nil
		}
		switch {
		case msg.err == nil:
			m.notice = ""
		case deckerrors.IsCanceled(msg.err):
			m.notice = "Reply canceled."
		default:
			m.err = msg.err
		}
		m.renderTranscript()
		return m, nil

	case spinner.TickMsg:
		if m.pending == nil {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	cmds = append(cmds, cmd)
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m PlaygroundModel) send() (tea.Model, tea.Cmd) {
	text := m.Input.Value()
	reply, err := m.Session.Send(m.ctx, text)
	if err != nil {
		if deckerrors.IsInvalid(err) {
			return m, nil
		}
		m.notice = "Waiting for the current reply..."
		return m, nil
	}

	m.Input.SetValue("")
	m.pending = reply
	m.notice = ""
	m.err = nil
	m.renderTranscript()
	return m, tea.Batch(m.Spinner.Tick, waitForReply(reply))
}

// waitForReply blocks in a command goroutine until reply settles.
func waitForReply(reply *playground.Reply) tea.Cmd {
	return func() tea.Msg {
		<-reply.Done()
		msg, err := reply.Result()
		return replyMsg{reply: reply, msg: msg, err: err}
	}
}

// Pending returns the reply being waited on, or nil.
func (m PlaygroundModel) Pending() *playground.Reply {
	return m.pending
}

func (m *PlaygroundModel) renderTranscript() {
	var b strings.Builder
	for _, msg := range m.Session.Messages() {
		if msg.Role == playground.RoleUser {
			b.WriteString(userStyle.Render("You"))
		} else {
			b.WriteString(assistantStyle.Render(m.Session.Agent().Name))
		}
		b.WriteString(metadataStyle.Render(" " + msg.Timestamp.Format("15:04")))
		b.WriteString("\n")
		b.WriteString(msg.Content)
		b.WriteString("\n")
		if msg.Tokens > 0 || len(msg.RetrievedDocs) > 0 {
			meta := fmt.Sprintf("%d tokens", msg.Tokens)
			if len(msg.RetrievedDocs) > 0 {
				meta += " • sources: " + strings.Join(msg.RetrievedDocs, ", ")
			}
			b.WriteString(metadataStyle.Render(meta))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	m.Viewport.SetContent(b.String())
	m.Viewport.GotoBottom()
}

// View implements tea.Model.
func (m PlaygroundModel) View() string {
	var b strings.Builder

	b.WriteString("\n  ")
	b.WriteString(headerStyle.Render("Playground: " + m.Session.Agent().Name))
	b.WriteString("\n\n")
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")

	switch {
	case m.pending != nil:
		b.WriteString("  " + m.Spinner.View() + " " + metadataStyle.Render("Agent is typing..."))
	case m.err != nil:
		b.WriteString("  " + errorStyle.Render("Error: "+m.err.Error()))
	case m.notice != "":
		b.WriteString("  " + metadataStyle.Render(m.notice))
	}
	b.WriteString("\n\n  > ")
	b.WriteString(m.Input.View())
	b.WriteString("\n  ")
	b.WriteString(helpStyle.Render(helpLine("[Enter] Send", "[Esc] Cancel reply / quit", "[Ctrl+R] Reset", "[Ctrl+C] Quit")))
	b.WriteString("\n")
	return b.String()
}
