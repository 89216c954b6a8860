// Package playground simulates a chat with an agent. Replies come from a
// Responder behind a cancelable pending handle, so the session does not
// care whether the answer is canned or produced by a real model call.
package playground

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/chazuruo/agentdeck/internal/agents"
	deckerrors "github.com/chazuruo/agentdeck/internal/errors"
)

// Role identifies who wrote a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the conversation.
type Message struct {
	ID            string    `json:"id" yaml:"id"`
	Role          Role      `json:"role" yaml:"role"`
	Content       string    `json:"content" yaml:"content"`
	Timestamp     time.Time `json:"timestamp" yaml:"timestamp"`
	Tokens        int       `json:"tokens,omitempty" yaml:"tokens,omitempty"`
	RetrievedDocs []string  `json:"retrieved_docs,omitempty" yaml:"retrieved_docs,omitempty"`
}

// Responder produces the assistant's answer to input. Implementations must
// return promptly with an error wrapping ErrCanceled once ctx is done.
type Responder interface {
	Respond(ctx context.Context, agent agents.Agent, history []Message, input string) (Message, error)
}

// Canned reply defaults.
const (
	DefaultText   = "I understand you're having an issue with your vehicle. Let me check our knowledge base for the most relevant information to help you."
	DefaultTokens = 45
	DefaultDelay  = time.Second
)

// DefaultDocs are the knowledge base hits attached to canned replies.
var DefaultDocs = []string{"vehicle-manual-section-3.pdf", "common-issues-guide.pdf"}

// CannedResponder answers every input with the same text after Delay.
type CannedResponder struct {
	Delay  time.Duration
	Text   string
	Tokens int
	Docs   []string
	Now    func() time.Time
}

// NewCannedResponder returns a responder with the built-in reply. An empty
// text keeps DefaultText.
func NewCannedResponder(delay time.Duration, text string) *CannedResponder {
	if text == "" {
		text = DefaultText
	}
	return &CannedResponder{
		Delay:  delay,
		Text:   text,
		Tokens: DefaultTokens,
		Docs:   slices.Clone(DefaultDocs),
	}
}

// Respond implements Responder.
func (c *CannedResponder) Respond(ctx context.Context, _ agents.Agent, _ []Message, _ string) (Message, error) {
	if c.Delay > 0 {
		timer := time.NewTimer(c.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Message{}, fmt.Errorf("%w: %v", deckerrors.ErrCanceled, ctx.Err())
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return Message{}, fmt.Errorf("%w: %v", deckerrors.ErrCanceled, err)
	}

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return Message{
		Role:          RoleAssistant,
		Content:       c.Text,
		Timestamp:     now(),
		Tokens:        c.Tokens,
		RetrievedDocs: slices.Clone(c.Docs),
	}, nil
}

// ResponderFunc adapts a function to Responder.
type ResponderFunc func(ctx context.Context, agent agents.Agent, history []Message, input string) (Message, error)

// Respond implements Responder.
func (f ResponderFunc) Respond(ctx context.Context, agent agents.Agent, history []Message, input string) (Message, error) {
	return f(ctx, agent, history, input)
}
