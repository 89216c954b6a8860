package agents

import (
	"errors"
	"fmt"
	"slices"
)

// Pricing tiers.
const (
	TierStarter      = "starter"
	TierProfessional = "professional"
	TierEnterprise   = "enterprise"
)

// Languages an agent can be configured for.
var Languages = []string{"en", "es", "fr", "de"}

// Models offered per pricing tier.
var ModelsByTier = map[string][]string{
	TierStarter:      {"gpt-3.5", "claude-haiku"},
	TierProfessional: {"gpt-4", "claude-sonnet"},
	TierEnterprise:   {"gpt-4-turbo", "claude-opus"},
}

// IntegrationTypes are the kinds of MCP links an agent can carry.
var IntegrationTypes = []string{"api", "database", "file-system", "calendar", "email", "custom"}

// Choices offered by the knowledge and settings steps.
var (
	ChunkSizes             = []int{300, 500, 1000}
	TopKValues             = []int{3, 5, 10}
	ResponseTimeLimits     = []int{15, 30, 60}
	MaxConversationLengths = []int{25, 50, 100}
)

// DefaultMetrics are the analytics metrics enabled on new agents.
var DefaultMetrics = []string{"conversation_length", "user_satisfaction", "response_time"}

// Config is the configuration built by the create wizard.
type Config struct {
	Name         string        `yaml:"name" json:"name"`
	Description  string        `yaml:"description" json:"description"`
	Category     string        `yaml:"category" json:"category"`
	Tags         []string      `yaml:"tags" json:"tags"`
	SystemPrompt string        `yaml:"system_prompt" json:"system_prompt"`
	Language     string        `yaml:"language" json:"language"`
	Pricing      Pricing       `yaml:"pricing" json:"pricing"`
	Capabilities Capabilities  `yaml:"capabilities" json:"capabilities"`
	Integrations []Integration `yaml:"integrations" json:"integrations"`
	Knowledge    Knowledge     `yaml:"knowledge" json:"knowledge"`
	Guardrails   Guardrails    `yaml:"guardrails" json:"guardrails"`
	Settings     Settings      `yaml:"settings" json:"settings"`
	Analytics    Analytics     `yaml:"analytics" json:"analytics"`
}

// Pricing is the usage plan of an agent.
type Pricing struct {
	Model           string  `yaml:"model" json:"model"`
	Tier            string  `yaml:"tier" json:"tier"`
	PricePerMessage float64 `yaml:"price_per_message" json:"price_per_message"`
	MonthlyLimit    int     `yaml:"monthly_limit" json:"monthly_limit"`
}

// Capabilities toggles optional agent features.
type Capabilities struct {
	Voice      bool `yaml:"voice" json:"voice"`
	Calling    bool `yaml:"calling" json:"calling"`
	Vision     bool `yaml:"vision" json:"vision"`
	FileUpload bool `yaml:"file_upload" json:"file_upload"`
	APIAccess  bool `yaml:"api_access" json:"api_access"`
}

// Enabled returns the names of the enabled capabilities.
func (c Capabilities) Enabled() []string {
	var out []string
	for _, f := range []struct {
		name string
		on   bool
	}{
		{"voice", c.Voice},
		{"calling", c.Calling},
		{"vision", c.Vision},
		{"file_upload", c.FileUpload},
		{"api_access", c.APIAccess},
	} {
		if f.on {
			out = append(out, f.name)
		}
	}
	return out
}

// Integration is an MCP link attached to an agent.
type Integration struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	URL         string `yaml:"url" json:"url"`
	Description string `yaml:"description" json:"description"`
	Type        string `yaml:"type" json:"type"`
}

// Knowledge holds retrieval settings. Document upload is not performed.
type Knowledge struct {
	ChunkSize int      `yaml:"chunk_size" json:"chunk_size"`
	TopK      int      `yaml:"top_k" json:"top_k"`
	Sources   []string `yaml:"sources" json:"sources"`
}

// Guardrails restrict what an agent may say.
type Guardrails struct {
	ToxicityFilter     bool     `yaml:"toxicity_filter" json:"toxicity_filter"`
	LegalMedicalAdvice bool     `yaml:"legal_medical_advice" json:"legal_medical_advice"`
	PricingInformation bool     `yaml:"pricing_information" json:"pricing_information"`
	CompanyCompliance  bool     `yaml:"company_compliance" json:"company_compliance"`
	BlockedPhrases     []string `yaml:"blocked_phrases" json:"blocked_phrases"`
	EscalationTriggers []string `yaml:"escalation_triggers" json:"escalation_triggers"`
	FallbackResponse   string   `yaml:"fallback_response" json:"fallback_response"`
}

// Settings are the runtime limits of an agent.
type Settings struct {
	ResponseTimeLimit     int `yaml:"response_time_limit" json:"response_time_limit"`
	MaxConversationLength int `yaml:"max_conversation_length" json:"max_conversation_length"`
}

// Analytics selects which conversation metrics are collected.
type Analytics struct {
	Enabled bool     `yaml:"enabled" json:"enabled"`
	Metrics []string `yaml:"metrics" json:"metrics"`
}

// DefaultConfig returns the documented starting configuration: every
// capability off, the professional tier on gpt-4, no integrations and
// analytics on with the default metrics.
func DefaultConfig() Config {
	return Config{
		Tags:     []string{},
		Language: "en",
		Pricing: Pricing{
			Model:           "gpt-4",
			Tier:            TierProfessional,
			PricePerMessage: 0.02,
			MonthlyLimit:    10000,
		},
		Integrations: []Integration{},
		Knowledge: Knowledge{
			ChunkSize: 500,
			TopK:      5,
			Sources:   []string{},
		},
		Guardrails: Guardrails{
			ToxicityFilter:     true,
			LegalMedicalAdvice: true,
			PricingInformation: false,
			CompanyCompliance:  true,
			BlockedPhrases:     []string{},
			EscalationTriggers: []string{},
			FallbackResponse:   "I'm sorry, I can't help with that request. Let me connect you with a specialist.",
		},
		Settings: Settings{
			ResponseTimeLimit:     30,
			MaxConversationLength: 50,
		},
		Analytics: Analytics{
			Enabled: true,
			Metrics: slices.Clone(DefaultMetrics),
		},
	}
}

// Validate checks the configuration before it becomes an agent.
func (c *Config) Validate() error {
	if c.Name == "" {
		return errors.New("agent name is required")
	}
	if !slices.Contains(Languages, c.Language) {
		return fmt.Errorf("language %q is not supported", c.Language)
	}
	if _, ok := ModelsByTier[c.Pricing.Tier]; !ok {
		return fmt.Errorf("pricing tier %q is not one of starter, professional, enterprise", c.Pricing.Tier)
	}
	if c.Pricing.Model == "" {
		return errors.New("pricing model is required")
	}
	if c.Pricing.PricePerMessage < 0 {
		return errors.New("price per message cannot be negative")
	}
	if c.Pricing.MonthlyLimit < 0 {
		return errors.New("monthly limit cannot be negative")
	}

	ids := make(map[string]bool, len(c.Integrations))
	for i, in := range c.Integrations {
		if in.ID == "" {
			return fmt.Errorf("integration %d: id is required", i)
		}
		if ids[in.ID] {
			return fmt.Errorf("integration %d: duplicate id %q", i, in.ID)
		}
		ids[in.ID] = true
		if in.Type != "" && !slices.Contains(IntegrationTypes, in.Type) {
			return fmt.Errorf("integration %q: unknown type %q", in.ID, in.Type)
		}
	}

	if !slices.Contains(ChunkSizes, c.Knowledge.ChunkSize) {
		return fmt.Errorf("knowledge chunk size %d is not one of %v", c.Knowledge.ChunkSize, ChunkSizes)
	}
	if !slices.Contains(TopKValues, c.Knowledge.TopK) {
		return fmt.Errorf("knowledge top-k %d is not one of %v", c.Knowledge.TopK, TopKValues)
	}
	if !slices.Contains(ResponseTimeLimits, c.Settings.ResponseTimeLimit) {
		return fmt.Errorf("response time limit %d is not one of %v", c.Settings.ResponseTimeLimit, ResponseTimeLimits)
	}
	if !slices.Contains(MaxConversationLengths, c.Settings.MaxConversationLength) {
		return fmt.Errorf("max conversation length %d is not one of %v", c.Settings.MaxConversationLength, MaxConversationLengths)
	}
	return nil
}
