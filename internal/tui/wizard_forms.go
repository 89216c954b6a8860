package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/chazuruo/agentdeck/internal/agents"
	deckerrors "github.com/chazuruo/agentdeck/internal/errors"
	"github.com/chazuruo/agentdeck/internal/wizard"
)

// Outcome is how an interactive wizard session ended.
type Outcome string

const (
	OutcomeFinalized Outcome = "finalized"
	OutcomeSaved     Outcome = "saved"
	OutcomeQuit      Outcome = "quit"
)

// Navigation actions offered after each step form.
const (
	actionNext    = "next"
	actionBack    = "back"
	actionGallery = "gallery"
	actionFinish  = "finish"
	actionSave    = "save"
	actionQuit    = "quit"
)

const scratchID = "scratch"

// FormOptions configures RunCreateWizard and RunPublishWizard.
type FormOptions struct {
	// Save persists the wizard as a draft. When nil, saving is not offered.
	Save func(ctx context.Context) error
	// Out receives progress lines and validation messages.
	Out io.Writer
	// Agents are the candidates offered by the publish wizard.
	Agents []agents.Agent
}

// stepForm builds the form for one step and a function producing the
// config patch from what the user entered.
type stepForm[C any] func(step wizard.StepDefinition[C], cfg C) (*huh.Form, func() (map[string]any, error))

// RunCreateWizard drives w with huh forms until it is finalized into sink,
// saved as a draft or abandoned.
func RunCreateWizard(ctx context.Context, w *agents.CreateWizard, sink wizard.Sink[agents.Config], opts FormOptions) (Outcome, error) {
	return runWizard(ctx, w, sink, opts, createForm)
}

// RunPublishWizard drives a publish wizard the same way.
func RunPublishWizard(ctx context.Context, w *agents.PublishWizard, sink wizard.Sink[agents.PublishConfig], opts FormOptions) (Outcome, error) {
	return runWizard(ctx, w, sink, opts, publishForm(opts.Agents))
}

func runWizard[C any](ctx context.Context, w *wizard.Wizard[C], sink wizard.Sink[C], opts FormOptions, build stepForm[C]) (Outcome, error) {
	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	for {
		if w.Phase() == wizard.PhaseGallery {
			if err := runGallery(ctx, w); err != nil {
				return abortOutcome(err)
			}
		}

		fmt.Fprintln(out, ProgressLine(w))
		step := w.CurrentStep()
		form, patch := build(step, w.Config())
		if err := form.RunWithContext(ctx); err != nil {
			return abortOutcome(err)
		}
		p, err := patch()
		if err == nil && len(p) > 0 {
			err = w.UpdateConfig(p)
		}
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("Error: "+err.Error()))
			continue
		}

		action := actionNext
		if err := huh.NewForm(huh.NewGroup(
			huh.NewSelect[string]().
				Title("What next?").
				Options(Actions(w, opts.Save != nil)...).
				Value(&action),
		)).RunWithContext(ctx); err != nil {
			return abortOutcome(err)
		}

		switch action {
		case actionNext:
			w.Advance()
		case actionBack:
			w.Retreat()
		case actionGallery:
			if err := w.ReturnToGallery(); err != nil {
				return "", err
			}
		case actionSave:
			if err := opts.Save(ctx); err != nil {
				return "", err
			}
			return OutcomeSaved, nil
		case actionFinish:
			err := w.Finalize(ctx, sink)
			if err == nil {
				return OutcomeFinalized, nil
			}
			if !deckerrors.IsInvalid(err) && !deckerrors.IsConflict(err) {
				return "", err
			}
			fmt.Fprintln(out, errorStyle.Render("Cannot finish: "+err.Error()))
		case actionQuit:
			return OutcomeQuit, nil
		}
	}
}

func abortOutcome(err error) (Outcome, error) {
	if errors.Is(err, huh.ErrUserAborted) {
		return OutcomeQuit, nil
	}
	return "", err
}

// runGallery lets the user pick a template or start from scratch, then
// enters the first step.
func runGallery[C any](ctx context.Context, w *wizard.Wizard[C]) error {
	choice := w.TemplateID()
	if choice == "" {
		choice = scratchID
	}
	options := []huh.Option[string]{huh.NewOption("Start from scratch", scratchID)}
	for _, t := range w.Templates() {
		options = append(options, huh.NewOption(fmt.Sprintf("%s: %s", t.Name, t.Description), t.ID))
	}

	if err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Choose a template").
			Options(options...).
			Value(&choice),
	)).RunWithContext(ctx); err != nil {
		return err
	}

	var err error
	if choice == scratchID {
		err = w.StartFromScratch()
	} else {
		err = w.SelectTemplate(choice)
	}
	if err != nil {
		return err
	}
	return w.Begin()
}

// Actions returns the navigation choices available at the wizard's
// current step.
func Actions[C any](w *wizard.Wizard[C], canSave bool) []huh.Option[string] {
	var opts []huh.Option[string]
	last := len(w.Steps()) - 1

	if w.Current() < last {
		label := "Next step"
		if !w.CanAdvance() {
			label = "Next step (required fields missing)"
		}
		opts = append(opts, huh.NewOption(label, actionNext))
	}
	if w.Current() > 0 {
		opts = append(opts, huh.NewOption("Previous step", actionBack))
	} else if len(w.Templates()) > 0 {
		opts = append(opts, huh.NewOption("Back to templates", actionGallery))
	}
	if w.CanFinalize() {
		opts = append(opts, huh.NewOption("Finish", actionFinish))
	}
	if canSave {
		opts = append(opts, huh.NewOption("Save draft and exit", actionSave))
	}
	return append(opts, huh.NewOption("Quit without saving", actionQuit))
}

// ProgressLine renders one marker per step: done, current or pending.
func ProgressLine[C any](w *wizard.Wizard[C]) string {
	parts := make([]string, 0, len(w.Steps()))
	for i, s := range w.Steps() {
		switch w.StepStatus(i) {
		case wizard.StatusCompleted:
			parts = append(parts, normalStyle.Render("✓ "+s.Title))
		case wizard.StatusCurrent:
			parts = append(parts, selectedStyle.Render("● "+s.Title))
		default:
			parts = append(parts, metadataStyle.Render("○ "+s.Title))
		}
	}
	done, total := w.Progress()
	return fmt.Sprintf("%s  %s", strings.Join(parts, "  "), metadataStyle.Render(fmt.Sprintf("(%d/%d)", done, total)))
}

// createValues are the form-bound fields of agents.Config.
type createValues struct {
	Name         string
	Description  string
	Category     string
	Tags         string
	SystemPrompt string
	Language     string
	Tier         string
	Model        string
	Capabilities []string

	ChunkSize int
	TopK      int
	Sources   string

	ToxicityFilter     bool
	LegalMedicalAdvice bool
	PricingInformation bool
	CompanyCompliance  bool
	BlockedPhrases     string
	EscalationTriggers string
	FallbackResponse   string

	ResponseTimeLimit     int
	MaxConversationLength int
	Analytics             bool
}

func loadCreateValues(c agents.Config) createValues {
	return createValues{
		Name:                  c.Name,
		Description:           c.Description,
		Category:              c.Category,
		Tags:                  strings.Join(c.Tags, ", "),
		SystemPrompt:          c.SystemPrompt,
		Language:              c.Language,
		Tier:                  c.Pricing.Tier,
		Model:                 c.Pricing.Model,
		Capabilities:          c.Capabilities.Enabled(),
		ChunkSize:             c.Knowledge.ChunkSize,
		TopK:                  c.Knowledge.TopK,
		Sources:               strings.Join(c.Knowledge.Sources, "\n"),
		ToxicityFilter:        c.Guardrails.ToxicityFilter,
		LegalMedicalAdvice:    c.Guardrails.LegalMedicalAdvice,
		PricingInformation:    c.Guardrails.PricingInformation,
		CompanyCompliance:     c.Guardrails.CompanyCompliance,
		BlockedPhrases:        strings.Join(c.Guardrails.BlockedPhrases, "\n"),
		EscalationTriggers:    strings.Join(c.Guardrails.EscalationTriggers, "\n"),
		FallbackResponse:      c.Guardrails.FallbackResponse,
		ResponseTimeLimit:     c.Settings.ResponseTimeLimit,
		MaxConversationLength: c.Settings.MaxConversationLength,
		Analytics:             c.Analytics.Enabled,
	}
}

// patch returns the config keys edited by step.
func (v createValues) patch(step string) map[string]any {
	switch step {
	case "basic":
		return map[string]any{
			"name":          strings.TrimSpace(v.Name),
			"description":   v.Description,
			"category":      v.Category,
			"tags":          splitList(v.Tags),
			"system_prompt": v.SystemPrompt,
			"language":      v.Language,
			"pricing":       map[string]any{"tier": v.Tier, "model": v.Model},
			"capabilities": map[string]any{
				"voice":       slices.Contains(v.Capabilities, "voice"),
				"calling":     slices.Contains(v.Capabilities, "calling"),
				"vision":      slices.Contains(v.Capabilities, "vision"),
				"file_upload": slices.Contains(v.Capabilities, "file_upload"),
				"api_access":  slices.Contains(v.Capabilities, "api_access"),
			},
		}
	case "knowledge":
		return map[string]any{"knowledge": map[string]any{
			"chunk_size": v.ChunkSize,
			"top_k":      v.TopK,
			"sources":    splitList(v.Sources),
		}}
	case "guardrails":
		return map[string]any{"guardrails": map[string]any{
			"toxicity_filter":      v.ToxicityFilter,
			"legal_medical_advice": v.LegalMedicalAdvice,
			"pricing_information":  v.PricingInformation,
			"company_compliance":   v.CompanyCompliance,
			"blocked_phrases":      splitList(v.BlockedPhrases),
			"escalation_triggers":  splitList(v.EscalationTriggers),
			"fallback_response":    v.FallbackResponse,
		}}
	case "settings":
		return map[string]any{
			"settings": map[string]any{
				"response_time_limit":     v.ResponseTimeLimit,
				"max_conversation_length": v.MaxConversationLength,
			},
			"analytics": map[string]any{"enabled": v.Analytics},
		}
	}
	return nil
}

func createForm(step wizard.StepDefinition[agents.Config], cfg agents.Config) (*huh.Form, func() (map[string]any, error)) {
	v := loadCreateValues(cfg)
	var fields []huh.Field

	switch step.ID {
	case "basic":
		fields = []huh.Field{
			huh.NewInput().Title("Name").Value(&v.Name).Validate(required("name")),
			huh.NewInput().Title("Description").Value(&v.Description),
			huh.NewInput().Title("Category").Value(&v.Category),
			huh.NewInput().Title("Tags").Description("Comma separated").Value(&v.Tags),
			huh.NewText().Title("System prompt").Lines(5).Value(&v.SystemPrompt),
			huh.NewSelect[string]().Title("Language").Options(huh.NewOptions(agents.Languages...)...).Value(&v.Language),
			huh.NewSelect[string]().Title("Pricing tier").
				Options(huh.NewOptions(agents.TierStarter, agents.TierProfessional, agents.TierEnterprise)...).
				Value(&v.Tier),
			huh.NewSelect[string]().Title("Model").Options(modelOptions()...).Value(&v.Model),
			huh.NewMultiSelect[string]().Title("Capabilities").
				Options(huh.NewOptions("voice", "calling", "vision", "file_upload", "api_access")...).
				Value(&v.Capabilities),
		}
	case "knowledge":
		fields = []huh.Field{
			huh.NewSelect[int]().Title("Chunk size").Options(intOptions(agents.ChunkSizes)...).Value(&v.ChunkSize),
			huh.NewSelect[int]().Title("Top-k results").Options(intOptions(agents.TopKValues)...).Value(&v.TopK),
			huh.NewText().Title("Sources").Description("One per line").Value(&v.Sources),
		}
	case "guardrails":
		fields = []huh.Field{
			huh.NewConfirm().Title("Toxicity filter").Value(&v.ToxicityFilter),
			huh.NewConfirm().Title("Block legal and medical advice").Value(&v.LegalMedicalAdvice),
			huh.NewConfirm().Title("Allow pricing information").Value(&v.PricingInformation),
			huh.NewConfirm().Title("Company compliance").Value(&v.CompanyCompliance),
			huh.NewText().Title("Blocked phrases").Description("One per line").Value(&v.BlockedPhrases),
			huh.NewText().Title("Escalation triggers").Description("One per line").Value(&v.EscalationTriggers),
			huh.NewInput().Title("Fallback response").Value(&v.FallbackResponse),
		}
	case "settings":
		fields = []huh.Field{
			huh.NewSelect[int]().Title("Response time limit (seconds)").
				Options(intOptions(agents.ResponseTimeLimits)...).Value(&v.ResponseTimeLimit),
			huh.NewSelect[int]().Title("Max conversation length").
				Options(intOptions(agents.MaxConversationLengths)...).Value(&v.MaxConversationLength),
			huh.NewConfirm().Title("Collect analytics").Value(&v.Analytics),
		}
	}

	form := huh.NewForm(huh.NewGroup(fields...).Title(step.Title).Description(step.Description))
	return form, func() (map[string]any, error) { return v.patch(step.ID), nil }
}

// publishValues are the form-bound fields of agents.PublishConfig.
type publishValues struct {
	AgentID       string
	PricingModel  string
	Price         string
	Currency      string
	BillingCycle  string
	Description   string
	Tags          string
	Documentation string
	Category      string
	Features      string
}

func loadPublishValues(p agents.PublishConfig) publishValues {
	return publishValues{
		AgentID:       p.AgentID,
		PricingModel:  p.Pricing.Model,
		Price:         strconv.FormatFloat(p.Pricing.Price, 'f', -1, 64),
		Currency:      p.Pricing.Currency,
		BillingCycle:  p.Pricing.BillingCycle,
		Description:   p.Metadata.Description,
		Tags:          strings.Join(p.Metadata.Tags, ", "),
		Documentation: p.Metadata.Documentation,
		Category:      p.Metadata.Category,
		Features:      strings.Join(p.Metadata.Features, "\n"),
	}
}

func (v publishValues) patch(step string) (map[string]any, error) {
	switch step {
	case "select-agent":
		return map[string]any{"agent_id": v.AgentID}, nil
	case "pricing":
		price := 0.0
		if strings.TrimSpace(v.Price) != "" {
			p, err := strconv.ParseFloat(strings.TrimSpace(v.Price), 64)
			if err != nil {
				return nil, deckerrors.Invalidf("price %q is not a number", v.Price)
			}
			price = p
		}
		return map[string]any{"pricing": map[string]any{
			"model":         v.PricingModel,
			"price":         price,
			"currency":      v.Currency,
			"billing_cycle": v.BillingCycle,
		}}, nil
	case "metadata":
		return map[string]any{"metadata": map[string]any{
			"description":   v.Description,
			"tags":          splitList(v.Tags),
			"documentation": v.Documentation,
			"category":      v.Category,
			"features":      splitList(v.Features),
		}}, nil
	}
	return nil, nil
}

func publishForm(candidates []agents.Agent) stepForm[agents.PublishConfig] {
	return func(step wizard.StepDefinition[agents.PublishConfig], p agents.PublishConfig) (*huh.Form, func() (map[string]any, error)) {
		v := loadPublishValues(p)
		var fields []huh.Field

		switch step.ID {
		case "select-agent":
			options := make([]huh.Option[string], 0, len(candidates))
			for _, a := range candidates {
				options = append(options, huh.NewOption(fmt.Sprintf("%s (%s)", a.Name, a.ID), a.ID))
			}
			if len(options) == 0 {
				fields = []huh.Field{huh.NewInput().Title("Agent ID").Value(&v.AgentID).Validate(required("agent"))}
			} else {
				fields = []huh.Field{huh.NewSelect[string]().Title("Agent").Options(options...).Value(&v.AgentID)}
			}
		case "pricing":
			fields = []huh.Field{
				huh.NewSelect[string]().Title("Pricing model").Options(huh.NewOptions(agents.PricingModels...)...).Value(&v.PricingModel),
				huh.NewInput().Title("Price").Value(&v.Price),
				huh.NewSelect[string]().Title("Currency").Options(huh.NewOptions(agents.Currencies...)...).Value(&v.Currency),
				huh.NewSelect[string]().Title("Billing cycle").Options(huh.NewOptions(agents.BillingCycles...)...).Value(&v.BillingCycle),
			}
		case "metadata":
			categories := append([]string{""}, agents.MarketplaceCategories...)
			fields = []huh.Field{
				huh.NewText().Title("Description").Value(&v.Description).Validate(required("description")),
				huh.NewInput().Title("Tags").Description("Comma separated").Value(&v.Tags),
				huh.NewText().Title("Documentation").Value(&v.Documentation),
				huh.NewSelect[string]().Title("Category").Options(huh.NewOptions(categories...)...).Value(&v.Category),
				huh.NewText().Title("Features").Description("One per line").Value(&v.Features),
			}
		default:
			fields = []huh.Field{huh.NewNote().Title(step.Title).Description(publishSummary(p))}
		}

		form := huh.NewForm(huh.NewGroup(fields...).Title(step.Title).Description(step.Description))
		return form, func() (map[string]any, error) { return v.patch(step.ID) }
	}
}

func publishSummary(p agents.PublishConfig) string {
	price := "free"
	if p.Pricing.Model != "free" {
		price = fmt.Sprintf("%s %.2f %s", p.Pricing.Model, p.Pricing.Price, p.Pricing.Currency)
		if p.Pricing.Model == "subscription" {
			price += " / " + p.Pricing.BillingCycle
		}
	}
	return fmt.Sprintf("Agent: %s\nPricing: %s\nCategory: %s\n\n%s",
		p.AgentID, price, p.Metadata.Category, p.Metadata.Description)
}

func modelOptions() []huh.Option[string] {
	var opts []huh.Option[string]
	for _, tier := range []string{agents.TierStarter, agents.TierProfessional, agents.TierEnterprise} {
		for _, model := range agents.ModelsByTier[tier] {
			opts = append(opts, huh.NewOption(fmt.Sprintf("%s (%s)", model, tier), model))
		}
	}
	return opts
}

func intOptions(values []int) []huh.Option[int] {
	opts := make([]huh.Option[int], 0, len(values))
	for _, n := range values {
		opts = append(opts, huh.NewOption(strconv.Itoa(n), n))
	}
	return opts
}

func required(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", what)
		}
		return nil
	}
}

// splitList splits comma or newline separated input, dropping blanks.
func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '\n' }) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
