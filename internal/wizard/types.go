// Package wizard implements a linear multi-step configuration flow.
//
// A Wizard owns one in-progress configuration value of type C. It starts in
// a template gallery, moves through an ordered list of steps, and ends when
// Finalize hands the accumulated configuration to a Sink. All mutation goes
// through methods so that the index bounds and the monotonic completed set
// hold at all times. A Wizard is not safe for concurrent use.
package wizard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	deckerrors "github.com/chazuruo/agentdeck/internal/errors"
)

// Phase is the coarse position of a wizard in its lifecycle.
type Phase string

const (
	// PhaseGallery is the template selection pre-step.
	PhaseGallery Phase = "gallery"
	// PhaseSteps means the wizard is at one of its steps.
	PhaseSteps Phase = "steps"
	// PhaseFinalized is terminal.
	PhaseFinalized Phase = "finalized"
)

// IsValid reports whether p is a known phase.
func (p Phase) IsValid() bool {
	switch p {
	case PhaseGallery, PhaseSteps, PhaseFinalized:
		return true
	}
	return false
}

// StepStatus is how a step is presented in a progress indicator.
type StepStatus string

const (
	StatusCompleted StepStatus = "completed"
	StatusCurrent   StepStatus = "current"
	StatusPending   StepStatus = "pending"
)

// Policy decides when Finalize is allowed.
type Policy string

const (
	// PolicyLenient finalizes whenever every step's Required check passes.
	PolicyLenient Policy = "lenient"
	// PolicyStrict additionally requires every step to have been visited.
	PolicyStrict Policy = "strict"
)

// ParsePolicy converts a config value into a Policy. Empty means lenient.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyLenient:
		return PolicyLenient, nil
	case PolicyStrict:
		return PolicyStrict, nil
	}
	return "", deckerrors.Invalidf("finalize policy %q", s)
}

// StepDefinition describes one step and the fields it requires.
type StepDefinition[C any] struct {
	ID          string
	Title       string
	Description string

	// Required reports whether the fields this step owns are filled in.
	// A nil Required always passes.
	Required func(C) bool
}

func (s StepDefinition[C]) satisfied(cfg C) bool {
	return s.Required == nil || s.Required(cfg)
}

// Template is a predefined configuration fragment offered in the gallery.
type Template struct {
	ID          string         `yaml:"id" json:"id"`
	Name        string         `yaml:"name" json:"name"`
	Description string         `yaml:"description" json:"description"`
	Category    string         `yaml:"category" json:"category"`
	Fragment    map[string]any `yaml:"fragment" json:"fragment"`
}

// State is the serializable snapshot of a wizard, used for drafts.
type State[C any] struct {
	ID         string    `yaml:"id"`
	Kind       string    `yaml:"kind"`
	Subject    string    `yaml:"subject,omitempty"`
	Phase      Phase     `yaml:"phase"`
	TemplateID string    `yaml:"template_id,omitempty"`
	Current    int       `yaml:"current"`
	Completed  []string  `yaml:"completed"`
	Config     C         `yaml:"config"`
	CreatedAt  time.Time `yaml:"created_at"`
	UpdatedAt  time.Time `yaml:"updated_at"`
}

// Sink receives the finished configuration.
type Sink[C any] interface {
	Finalize(ctx context.Context, cfg C) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc[C any] func(ctx context.Context, cfg C) error

// Finalize calls f.
func (f SinkFunc[C]) Finalize(ctx context.Context, cfg C) error { return f(ctx, cfg) }

// IDGenerator produces unique ids for wizards and list items.
type IDGenerator interface {
	NewID() string
}

// IDFunc adapts a function to IDGenerator.
type IDFunc func() string

// NewID calls f.
func (f IDFunc) NewID() string { return f() }

// UUIDs generates random UUIDs.
type UUIDs struct{}

// NewID returns a new random UUID string.
func (UUIDs) NewID() string { return uuid.NewString() }

// Sequence returns an IDGenerator that yields ids in order and then falls
// back to "id-<n>" once they run out.
func Sequence(ids ...string) IDGenerator {
	i := 0
	return IDFunc(func() string {
		defer func() { i++ }()
		if i < len(ids) {
			return ids[i]
		}
		return fmt.Sprintf("id-%d", i)
	})
}
