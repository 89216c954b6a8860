package playground

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chazuruo/agentdeck/internal/agents"
	deckerrors "github.com/chazuruo/agentdeck/internal/errors"
	"github.com/chazuruo/agentdeck/internal/logging"
)

// Options configures a Session.
type Options struct {
	// Responder answers user input. Defaults to the canned responder with
	// DefaultDelay.
	Responder Responder
	// NewID generates message ids. Defaults to uuid.NewString.
	NewID func() string
	// Now is the clock used for user and greeting messages.
	Now    func() time.Time
	Logger *slog.Logger
}

// Session is a conversation with one agent. It holds at most one pending
// reply; replies are appended to the transcript when they resolve.
type Session struct {
	agent agents.Agent
	opts  Options
	log   *slog.Logger

	mu       sync.Mutex
	messages []Message
	pending  *Reply
}

// NewSession starts a conversation that opens with the agent's greeting.
func NewSession(agent agents.Agent, opts Options) *Session {
	if opts.Responder == nil {
		opts.Responder = NewCannedResponder(DefaultDelay, "")
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Session{
		agent: agent.Clone(),
		opts:  opts,
		log:   logging.OrDiscard(opts.Logger).With("agent", agent.ID),
	}
	s.messages = []Message{s.greeting()}
	return s
}

// Greeting returns the opening line for agent.
func Greeting(agent agents.Agent) string {
	name := strings.TrimSpace(agent.Name)
	if name == "" {
		return "Hello! How can I help you today?"
	}
	return fmt.Sprintf("Hello! I'm your %s. How can I help you today?", name)
}

func (s *Session) greeting() Message {
	return Message{
		ID:        s.opts.NewID(),
		Role:      RoleAssistant,
		Content:   Greeting(s.agent),
		Timestamp: s.opts.Now(),
	}
}

// Agent returns the agent being tested.
func (s *Session) Agent() agents.Agent { return s.agent.Clone() }

// Messages returns a copy of the transcript.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	for i, m := range s.messages {
		m.RetrievedDocs = slices.Clone(m.RetrievedDocs)
		out[i] = m
	}
	return out
}

// Pending returns the in-flight reply, or nil.
func (s *Session) Pending() *Reply {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Send appends the user's message and starts the assistant's reply.
// Blank input is rejected and leaves the transcript untouched, as does
// sending while another reply is pending.
func (s *Session) Send(ctx context.Context, text string) (*Reply, error) {
	if strings.TrimSpace(text) == "" {
		return nil, deckerrors.Invalidf("message cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		return nil, fmt.Errorf("%w: a reply is already pending", deckerrors.ErrConflict)
	}

	s.messages = append(s.messages, Message{
		ID:        s.opts.NewID(),
		Role:      RoleUser,
		Content:   text,
		Timestamp: s.opts.Now(),
	})
	history := slices.Clone(s.messages)

	replyCtx, cancel := context.WithCancel(ctx)
	reply := newReply(cancel)
	s.pending = reply

	go s.respond(replyCtx, reply, history, text)
	return reply, nil
}

func (s *Session) respond(ctx context.Context, reply *Reply, history []Message, input string) {
	msg, err := s.opts.Responder.Respond(ctx, s.agent, history, input)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == reply {
		s.pending = nil
	}

	switch {
	case err == nil:
		if msg.ID == "" {
			msg.ID = s.opts.NewID()
		}
		if msg.Role == "" {
			msg.Role = RoleAssistant
		}
		if reply.settle(ReplyResolved, msg, nil) {
			s.messages = append(s.messages, msg)
		}
	case errors.Is(err, deckerrors.ErrCanceled), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		reply.settle(ReplyCanceled, Message{}, nil)
	default:
		s.log.Warn("responder failed", "error", err)
		reply.settle(ReplyFailed, Message{}, err)
	}
	reply.cancel()
}

// Cancel abandons the pending reply, if any.
func (s *Session) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelLocked()
}

func (s *Session) cancelLocked() bool {
	if s.pending == nil {
		return false
	}
	canceled := s.pending.Cancel()
	s.pending = nil
	return canceled
}

// Reset cancels any pending reply and restarts the conversation.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	s.messages = []Message{s.greeting()}
}
