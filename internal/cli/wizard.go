package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/chazuruo/agentdeck/internal/agents"
	"github.com/chazuruo/agentdeck/internal/agents/store"
	deckerrors "github.com/chazuruo/agentdeck/internal/errors"
	"github.com/chazuruo/agentdeck/internal/tui"
	"github.com/chazuruo/agentdeck/internal/wizard"
)

// wizardFlags are shared by create and publish.
type wizardFlags struct {
	Sets   []string
	Resume string
	Finish bool
}

// assignment is one parsed --set key=value.
type assignment struct {
	Path  string
	Value any
	Raw   string
}

// parseAssignments splits key=value pairs. Values are decoded as YAML so
// that numbers, booleans and flow lists ("[a, b]") keep their types.
func parseAssignments(sets []string) ([]assignment, error) {
	out := make([]assignment, 0, len(sets))
	for _, s := range sets {
		path, raw, ok := strings.Cut(s, "=")
		path = strings.TrimSpace(path)
		if !ok || path == "" {
			return nil, deckerrors.Invalidf("--set %q must have the form key=value", s)
		}
		var v any
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
			return nil, deckerrors.Invalidf("--set %s: %v", path, err)
		}
		if v == nil {
			v = raw
		}
		out = append(out, assignment{Path: path, Value: v, Raw: raw})
	}
	return out, nil
}

func applyAssignments[C any](w *wizard.Wizard[C], sets []assignment) error {
	for _, a := range sets {
		err := w.Set(a.Path, a.Value)
		if err != nil && deckerrors.IsInvalid(err) && isScalar(a.Value) {
			// name=123 means the text "123" when the field is a string.
			if w.Set(a.Path, a.Raw) == nil {
				continue
			}
		}
		if err != nil {
			return fmt.Errorf("--set %s: %w", a.Path, err)
		}
	}
	return nil
}

func isScalar(v any) bool {
	switch v.(type) {
	case bool, int, float64:
		return true
	}
	return false
}

// resumeDraft restores w from a saved draft.
func resumeDraft[C any](ctx context.Context, d store.Drafts, w *wizard.Wizard[C], id string) error {
	s, err := store.LoadState[C](ctx, d, id)
	if err != nil {
		return err
	}
	return w.Restore(s)
}

// walkToEnd advances through the remaining steps so that strict policy
// sees every step visited.
func walkToEnd[C any](w *wizard.Wizard[C]) {
	for w.Advance() {
	}
}

func wizardOptions(e *env) (agents.WizardOptions, error) {
	policy, err := wizard.ParsePolicy(e.cfg.Wizard.FinalizePolicy)
	if err != nil {
		return agents.WizardOptions{}, err
	}
	return agents.WizardOptions{
		Policy:   policy,
		Language: e.cfg.Wizard.DefaultLanguage,
		Model:    e.cfg.Wizard.DefaultModel,
		Logger:   e.log,
	}, nil
}

// finishWizard finalizes w, or saves it as a draft when --finish is not
// set or finalization is refused for missing input.
func finishWizard[C any](ctx context.Context, out io.Writer, e *env, w *wizard.Wizard[C], sink wizard.Sink[C], finish bool) (bool, error) {
	if finish {
		walkToEnd(w)
		err := w.Finalize(ctx, sink)
		if err == nil {
			return true, nil
		}
		if !deckerrors.IsInvalid(err) {
			return false, err
		}
		fmt.Fprintf(out, "Cannot finish: %v\n", err)
	}

	if err := store.SaveState(ctx, e.store, w.Snapshot()); err != nil {
		return false, err
	}
	printDraftSaved(out, w)
	return false, nil
}

func printDraftSaved[C any](out io.Writer, w *wizard.Wizard[C]) {
	done, total := w.Progress()
	fmt.Fprintf(out, "Saved draft %s (%d/%d steps done)\n", w.ID(), done, total)
	for _, m := range w.Missing() {
		fmt.Fprintf(out, "  missing: %s\n", m)
	}
	command := w.Kind()
	if w.Subject() != "" {
		command += " " + w.Subject()
	}
	fmt.Fprintf(out, "Resume with: agentdeck %s --resume %s\n", command, w.ID())
}

// formOptions wires the interactive draft save to the store.
func formOptions[C any](e *env, out io.Writer, w *wizard.Wizard[C]) tui.FormOptions {
	return tui.FormOptions{
		Out: out,
		Save: func(ctx context.Context) error {
			return store.SaveState(ctx, e.store, w.Snapshot())
		},
	}
}

// dropDraft removes a resumed draft once its wizard is finalized.
func dropDraft(ctx context.Context, e *env, id string) {
	if id == "" {
		return
	}
	if err := e.store.DeleteDraft(ctx, id); err != nil && !deckerrors.IsNotFound(err) {
		e.log.Warn("failed to delete finished draft", "draft", id, "error", err)
	}
}
