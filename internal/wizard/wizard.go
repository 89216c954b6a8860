package wizard

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	deckerrors "github.com/chazuruo/agentdeck/internal/errors"
	"github.com/chazuruo/agentdeck/internal/logging"
)

// Options configures a Wizard.
type Options[C any] struct {
	// Kind labels the flow ("create", "publish") in drafts and logs.
	Kind    string
	// Subject identifies the record an editing flow works on. Drafts only
	// restore into a wizard with the same subject.
	Subject string

	Steps     []StepDefinition[C]
	Templates []Template

	// Defaults returns the documented starting configuration.
	Defaults func() C

	Policy Policy

	// SkipGallery starts the wizard directly at the first step.
	SkipGallery bool

	IDs    IDGenerator
	Now    func() time.Time
	Logger *slog.Logger
}

// Wizard is a linear sequence of steps building one configuration.
type Wizard[C any] struct {
	opts  Options[C]
	state State[C]
	log   *slog.Logger
}

// New creates a wizard in the gallery phase (or at step 0 with SkipGallery)
// holding the default configuration.
func New[C any](opts Options[C]) (*Wizard[C], error) {
	if len(opts.Steps) == 0 {
		return nil, deckerrors.Invalidf("wizard needs at least one step")
	}
	seen := make(map[string]bool, len(opts.Steps))
	for _, s := range opts.Steps {
		if s.ID == "" {
			return nil, deckerrors.Invalidf("step with empty id")
		}
		if seen[s.ID] {
			return nil, deckerrors.Invalidf("duplicate step id %q", s.ID)
		}
		seen[s.ID] = true
	}
	if opts.Defaults == nil {
		return nil, deckerrors.Invalidf("wizard needs a defaults function")
	}
	policy, err := ParsePolicy(string(opts.Policy))
	if err != nil {
		return nil, err
	}
	opts.Policy = policy
	if opts.IDs == nil {
		opts.IDs = UUIDs{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	now := opts.Now()
	w := &Wizard[C]{
		opts: opts,
		log:  logging.OrDiscard(opts.Logger).With("wizard", opts.Kind),
		state: State[C]{
			ID:        opts.IDs.NewID(),
			Kind:      opts.Kind,
			Subject:   opts.Subject,
			Phase:     PhaseGallery,
			Completed: []string{},
			Config:    opts.Defaults(),
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	if opts.SkipGallery {
		w.state.Phase = PhaseSteps
	}
	return w, nil
}

// ID returns the wizard's unique id.
func (w *Wizard[C]) ID() string { return w.state.ID }

// Kind returns the flow label.
func (w *Wizard[C]) Kind() string { return w.state.Kind }

// Subject returns the id of the record being edited, if any.
func (w *Wizard[C]) Subject() string { return w.state.Subject }

// Phase returns the lifecycle phase.
func (w *Wizard[C]) Phase() Phase { return w.state.Phase }

// Policy returns the finalize policy in effect.
func (w *Wizard[C]) Policy() Policy { return w.opts.Policy }

// TemplateID returns the selected template id, "" for "no template".
func (w *Wizard[C]) TemplateID() string { return w.state.TemplateID }

// Steps returns the step definitions.
func (w *Wizard[C]) Steps() []StepDefinition[C] { return slices.Clone(w.opts.Steps) }

// Templates returns the gallery templates.
func (w *Wizard[C]) Templates() []Template { return slices.Clone(w.opts.Templates) }

// Current returns the index of the current step.
func (w *Wizard[C]) Current() int { return w.state.Current }

// CurrentStep returns the definition of the current step.
func (w *Wizard[C]) CurrentStep() StepDefinition[C] { return w.opts.Steps[w.state.Current] }

// Completed returns the ids of the steps advanced past, in order.
func (w *Wizard[C]) Completed() []string { return slices.Clone(w.state.Completed) }

// Config returns a deep copy of the configuration.
func (w *Wizard[C]) Config() C {
	cfg, err := clone(w.state.Config)
	if err != nil {
		return w.state.Config
	}
	return cfg
}

// SelectTemplate replaces the configuration with the defaults plus the
// template's fragment. Customization and step progress made after an
// earlier selection are discarded. Only valid in the gallery.
func (w *Wizard[C]) SelectTemplate(id string) error {
	if w.state.Phase != PhaseGallery {
		return deckerrors.Invalidf("templates can only be selected before configuration starts")
	}
	idx := slices.IndexFunc(w.opts.Templates, func(t Template) bool { return t.ID == id })
	if idx < 0 {
		return fmt.Errorf("template %q: %w", id, deckerrors.ErrNotFound)
	}
	tmpl := w.opts.Templates[idx]

	base, err := toMap(w.opts.Defaults())
	if err != nil {
		return deckerrors.Wrap(err, "select template")
	}
	fragment, err := normalizePatch(tmpl.Fragment)
	if err != nil {
		return err
	}
	if err := checkKinds(base, fragment, ""); err != nil {
		return fmt.Errorf("template %q: %w", id, err)
	}
	mergeInto(base, fragment)
	cfg, err := fromMap[C](base)
	if err != nil {
		return fmt.Errorf("template %q: %w", id, err)
	}

	w.state.Config = cfg
	w.state.TemplateID = tmpl.ID
	w.restart()
	w.touch()
	w.log.Debug("template selected", "template", tmpl.ID)
	return nil
}

// StartFromScratch resets the configuration to its defaults with no
// template provenance and clears step progress. Only valid in the gallery.
func (w *Wizard[C]) StartFromScratch() error {
	if w.state.Phase != PhaseGallery {
		return deckerrors.Invalidf("start from scratch is only available before configuration starts")
	}
	w.state.Config = w.opts.Defaults()
	w.state.TemplateID = ""
	w.restart()
	w.touch()
	w.log.Debug("started from scratch")
	return nil
}

// Begin leaves the gallery for the first step.
func (w *Wizard[C]) Begin() error {
	if w.state.Phase != PhaseGallery {
		return deckerrors.Invalidf("wizard is not in the template gallery")
	}
	w.state.Phase = PhaseSteps
	w.state.Current = 0
	w.touch()
	return nil
}

// ReturnToGallery goes back to template selection. The configuration and
// step progress are kept until a template is selected or the flow restarts
// from scratch.
func (w *Wizard[C]) ReturnToGallery() error {
	if w.state.Phase != PhaseSteps || w.opts.SkipGallery {
		return deckerrors.Invalidf("wizard has no template gallery to return to")
	}
	w.state.Phase = PhaseGallery
	w.touch()
	return nil
}

// Advance moves to the next step, recording the step left behind as
// completed. It is a no-op returning false at the last step or outside the
// steps phase. Required fields are not enforced here; see CanAdvance.
func (w *Wizard[C]) Advance() bool {
	if w.state.Phase != PhaseSteps || w.state.Current >= len(w.opts.Steps)-1 {
		return false
	}
	left := w.opts.Steps[w.state.Current].ID
	if !slices.Contains(w.state.Completed, left) {
		w.state.Completed = append(w.state.Completed, left)
	}
	w.state.Current++
	w.touch()
	w.log.Debug("advanced", "from", left, "to", w.opts.Steps[w.state.Current].ID)
	return true
}

// Retreat moves to the previous step. Completed steps stay completed.
// It is a no-op returning false at the first step.
func (w *Wizard[C]) Retreat() bool {
	if w.state.Phase != PhaseSteps || w.state.Current <= 0 {
		return false
	}
	w.state.Current--
	w.touch()
	return true
}

// GoTo jumps to a step that is already completed or is the current one.
func (w *Wizard[C]) GoTo(stepID string) error {
	if w.state.Phase != PhaseSteps {
		return deckerrors.Invalidf("wizard is not at a step")
	}
	idx := w.stepIndex(stepID)
	if idx < 0 {
		return fmt.Errorf("step %q: %w", stepID, deckerrors.ErrNotFound)
	}
	if idx != w.state.Current && !slices.Contains(w.state.Completed, stepID) {
		return deckerrors.Invalidf("step %q has not been reached yet", stepID)
	}
	w.state.Current = idx
	w.touch()
	return nil
}

// UpdateConfig deep-merges patch into the configuration. Keys absent from
// patch are left alone. Unknown keys or mistyped values fail with
// ErrInvalid and leave the configuration unchanged.
func (w *Wizard[C]) UpdateConfig(patch map[string]any) error {
	if w.state.Phase == PhaseFinalized {
		return deckerrors.Invalidf("wizard is finalized")
	}
	normalized, err := normalizePatch(patch)
	if err != nil {
		return err
	}
	base, err := toMap(w.state.Config)
	if err != nil {
		return deckerrors.Wrap(err, "update config")
	}
	if err := checkKinds(base, normalized, ""); err != nil {
		return err
	}
	mergeInto(base, normalized)
	cfg, err := fromMap[C](base)
	if err != nil {
		return err
	}
	w.state.Config = cfg
	w.touch()
	return nil
}

// Set assigns value at a dotted path such as "capabilities.voice".
func (w *Wizard[C]) Set(path string, value any) error {
	patch, err := pathPatch(path, value)
	if err != nil {
		return err
	}
	return w.UpdateConfig(patch)
}

// CanAdvance reports whether there is a next step and the current step's
// required fields are filled in. Advance does not consult it.
func (w *Wizard[C]) CanAdvance() bool {
	if w.state.Phase != PhaseSteps || w.state.Current >= len(w.opts.Steps)-1 {
		return false
	}
	return w.opts.Steps[w.state.Current].satisfied(w.state.Config)
}

// CanFinalize reports whether Finalize would be accepted under the policy.
func (w *Wizard[C]) CanFinalize() bool {
	return len(w.Missing()) == 0
}

// Missing lists the reasons Finalize would be refused, empty when it would
// be accepted.
func (w *Wizard[C]) Missing() []string {
	var missing []string
	switch w.state.Phase {
	case PhaseFinalized:
		return []string{"wizard is already finalized"}
	case PhaseGallery:
		return []string{"configuration has not started"}
	}

	for _, s := range w.opts.Steps {
		if !s.satisfied(w.state.Config) {
			missing = append(missing, fmt.Sprintf("step %q is incomplete", s.ID))
		}
	}

	if w.opts.Policy == PolicyStrict {
		last := len(w.opts.Steps) - 1
		for _, s := range w.opts.Steps[:last] {
			if !slices.Contains(w.state.Completed, s.ID) {
				missing = append(missing, fmt.Sprintf("step %q has not been visited", s.ID))
			}
		}
		if w.state.Current != last {
			missing = append(missing, fmt.Sprintf("step %q has not been reached", w.opts.Steps[last].ID))
		}
	}
	return missing
}

// Finalize hands a copy of the configuration to sink and makes the wizard
// terminal. If the sink fails, the wizard keeps its state and the error is
// returned.
func (w *Wizard[C]) Finalize(ctx context.Context, sink Sink[C]) error {
	if missing := w.Missing(); len(missing) > 0 {
		return deckerrors.Invalidf("cannot finalize: %s", missing[0])
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", deckerrors.ErrCanceled, err)
	}

	if err := sink.Finalize(ctx, w.Config()); err != nil {
		w.log.Warn("finalize failed", "err", err)
		return err
	}

	current := w.opts.Steps[w.state.Current].ID
	if !slices.Contains(w.state.Completed, current) {
		w.state.Completed = append(w.state.Completed, current)
	}
	w.state.Phase = PhaseFinalized
	w.touch()
	w.log.Info("wizard finalized", "id", w.state.ID, "template", w.state.TemplateID)
	return nil
}

// StepStatus returns the presentation status of step i.
func (w *Wizard[C]) StepStatus(i int) StepStatus {
	if i < 0 || i >= len(w.opts.Steps) {
		return StatusPending
	}
	if w.state.Phase == PhaseSteps && i == w.state.Current {
		return StatusCurrent
	}
	if slices.Contains(w.state.Completed, w.opts.Steps[i].ID) {
		return StatusCompleted
	}
	return StatusPending
}

// Progress returns the number of completed steps and the total.
func (w *Wizard[C]) Progress() (done, total int) {
	return len(w.state.Completed), len(w.opts.Steps)
}

// Snapshot returns a deep copy of the wizard state for persisting.
func (w *Wizard[C]) Snapshot() State[C] {
	s := w.state
	s.Completed = slices.Clone(w.state.Completed)
	s.Config = w.Config()
	return s
}

// Restore replaces the wizard state with s after checking it against the
// step definitions.
func (w *Wizard[C]) Restore(s State[C]) error {
	if !s.Phase.IsValid() {
		return deckerrors.Invalidf("unknown wizard phase %q", s.Phase)
	}
	if s.Current < 0 || s.Current >= len(w.opts.Steps) {
		return deckerrors.Invalidf("step index %d out of range [0, %d)", s.Current, len(w.opts.Steps))
	}
	for _, id := range s.Completed {
		if w.stepIndex(id) < 0 {
			return deckerrors.Invalidf("unknown completed step %q", id)
		}
	}
	if s.Kind != "" && w.opts.Kind != "" && s.Kind != w.opts.Kind {
		return deckerrors.Invalidf("draft is a %q wizard, not %q", s.Kind, w.opts.Kind)
	}
	if s.Subject != w.opts.Subject {
		return deckerrors.Invalidf("draft belongs to %q, not %q", s.Subject, w.opts.Subject)
	}
	cfg, err := clone(s.Config)
	if err != nil {
		return deckerrors.Invalidf("draft config: %v", err)
	}

	s.Completed = slices.Clone(s.Completed)
	if s.Completed == nil {
		s.Completed = []string{}
	}
	s.Config = cfg
	s.Kind = w.opts.Kind
	w.state = s
	return nil
}

func (w *Wizard[C]) stepIndex(id string) int {
	return slices.IndexFunc(w.opts.Steps, func(s StepDefinition[C]) bool { return s.ID == id })
}

// restart forgets step progress made against a configuration that has
// just been replaced.
func (w *Wizard[C]) restart() {
	w.state.Current = 0
	w.state.Completed = []string{}
}

func (w *Wizard[C]) touch() {
	w.state.UpdatedAt = w.opts.Now()
}
