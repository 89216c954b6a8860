package agents

import (
	"log/slog"
	"strings"
	"time"

	"github.com/chazuruo/agentdeck/internal/wizard"
)

// Wizard kinds.
const (
	KindCreate  = "create"
	KindEdit    = "edit"
	KindPublish = "publish"
)

// CreateWizard builds a new agent configuration.
type CreateWizard = wizard.Wizard[Config]

// PublishWizard builds a marketplace listing for an existing agent.
type PublishWizard = wizard.Wizard[PublishConfig]

// WizardOptions configures NewCreateWizard and NewPublishWizard.
type WizardOptions struct {
	Policy wizard.Policy

	// Language and Model override the defaults of new agent configs.
	Language string
	Model    string

	IDs    wizard.IDGenerator
	Now    func() time.Time
	Logger *slog.Logger
}

// CreateSteps returns the create wizard steps: basic setup, knowledge base,
// guardrails and settings. Only the basic step requires input (a name).
func CreateSteps() []wizard.StepDefinition[Config] {
	return []wizard.StepDefinition[Config]{
		{
			ID:          "basic",
			Title:       "Basic Setup",
			Description: "Name, description, prompt, language, pricing and capabilities",
			Required:    func(c Config) bool { return strings.TrimSpace(c.Name) != "" },
		},
		{
			ID:          "knowledge",
			Title:       "Knowledge Base",
			Description: "Retrieval chunk size and top-k",
			Required:    func(c Config) bool { return c.Knowledge.ChunkSize > 0 && c.Knowledge.TopK > 0 },
		},
		{
			ID:          "guardrails",
			Title:       "Guardrails",
			Description: "Blocked phrases, escalation triggers and fallback response",
		},
		{
			ID:          "settings",
			Title:       "Settings",
			Description: "Response time limit, conversation length and analytics",
			Required: func(c Config) bool {
				return c.Settings.ResponseTimeLimit > 0 && c.Settings.MaxConversationLength > 0
			},
		},
	}
}

// PublishSteps returns the marketplace publishing steps.
func PublishSteps() []wizard.StepDefinition[PublishConfig] {
	return []wizard.StepDefinition[PublishConfig]{
		{
			ID:          "select-agent",
			Title:       "Select Agent",
			Description: "Choose which agent to publish to the marketplace",
			Required:    func(p PublishConfig) bool { return p.AgentID != "" },
		},
		{
			ID:          "pricing",
			Title:       "Set Pricing",
			Description: "Define pricing model and subscription tiers",
			Required: func(p PublishConfig) bool {
				return p.Pricing.Model == "free" || p.Pricing.Price > 0
			},
		},
		{
			ID:          "metadata",
			Title:       "Add Metadata",
			Description: "Add descriptions, tags, and documentation",
			Required:    func(p PublishConfig) bool { return strings.TrimSpace(p.Metadata.Description) != "" },
		},
		{
			ID:          "review",
			Title:       "Submit for Review",
			Description: "Submit for quality and compliance review",
		},
		{
			ID:          "live",
			Title:       "Live in Marketplace",
			Description: "Agent goes live and available for purchase",
		},
	}
}

// NewCreateWizard returns a create wizard in the template gallery.
func NewCreateWizard(opts WizardOptions) (*CreateWizard, error) {
	defaults := func() Config {
		cfg := DefaultConfig()
		if opts.Language != "" {
			cfg.Language = opts.Language
		}
		if opts.Model != "" {
			cfg.Pricing.Model = opts.Model
		}
		return cfg
	}
	return wizard.New(wizard.Options[Config]{
		Kind:      KindCreate,
		Steps:     CreateSteps(),
		Templates: Templates(),
		Defaults:  defaults,
		Policy:    opts.Policy,
		IDs:       opts.IDs,
		Now:       opts.Now,
		Logger:    opts.Logger,
	})
}

// EditableConfig returns the configuration an edit of a starts from.
// Records stored without one, such as imported catalog entries, get the
// defaults with the record's own fields filled in.
func EditableConfig(a *Agent) Config {
	if a.Config != nil {
		return a.Config.Clone()
	}
	cfg := DefaultConfig()
	cfg.Name = a.Name
	cfg.Description = a.Description
	cfg.Category = a.Category
	cfg.Tags = append([]string{}, a.Tags...)
	if a.Model != "" {
		cfg.Pricing.Model = a.Model
	}
	return cfg
}

// NewEditWizard returns a wizard over the create steps holding a's current
// configuration. There is no template gallery.
func NewEditWizard(a *Agent, opts WizardOptions) (*CreateWizard, error) {
	snapshot := a.Clone()
	return wizard.New(wizard.Options[Config]{
		Kind:        KindEdit,
		Subject:     a.ID,
		Steps:       CreateSteps(),
		Defaults:    func() Config { return EditableConfig(&snapshot) },
		Policy:      opts.Policy,
		SkipGallery: true,
		IDs:         opts.IDs,
		Now:         opts.Now,
		Logger:      opts.Logger,
	})
}

// NewPublishWizard returns a publish wizard at its first step. A non-empty
// agentID preselects the agent.
func NewPublishWizard(agentID string, opts WizardOptions) (*PublishWizard, error) {
	w, err := wizard.New(wizard.Options[PublishConfig]{
		Kind:        KindPublish,
		Steps:       PublishSteps(),
		Defaults:    DefaultPublishConfig,
		Policy:      opts.Policy,
		SkipGallery: true,
		IDs:         opts.IDs,
		Now:         opts.Now,
		Logger:      opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	if agentID != "" {
		if err := w.Set("agent_id", agentID); err != nil {
			return nil, err
		}
	}
	return w, nil
}
