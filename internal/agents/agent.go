// Package agents defines the agent records managed by agentdeck, the
// configuration built by the create wizard and the marketplace listing
// built by the publish wizard.
package agents

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// SchemaVersion is the current agent schema version.
const SchemaVersion = 1

// Agent statuses.
const (
	StatusActive   = "active"
	StatusTesting  = "testing"
	StatusDisabled = "disabled"
)

// Statuses lists the valid agent statuses.
var Statuses = []string{StatusActive, StatusTesting, StatusDisabled}

// Agent types.
const (
	TypeUser     = "User Agent"
	TypeTemplate = "Public Template"
	TypeShared   = "Shared Agent"
)

// Types lists the valid agent types.
var Types = []string{TypeUser, TypeTemplate, TypeShared}

// Filterable enum fields of an Agent.
const (
	FieldStatus        = "status"
	FieldType          = "type"
	FieldOrganization  = "organization"
	FieldCategory      = "category"
	FieldModel         = "model"
	FieldCreator       = "creator"
	FieldListingStatus = "listing_status"
)

// ExprFields names the top-level variables available to --where
// expressions over agents. The full map, including "type", is always
// available as r.
var ExprFields = []string{
	"id", "name", "description", "creator", "model", "status", "organization",
	"category", "tags", "total_chats", "rating", "downloads", "weekly_growth",
	"featured", "listing_status", "capabilities",
}

// Agent is one managed agent.
type Agent struct {
	SchemaVersion int       `yaml:"schema_version" json:"schema_version"`
	ID            string    `yaml:"id" json:"id"`
	Name          string    `yaml:"name" json:"name"`
	Description   string    `yaml:"description,omitempty" json:"description,omitempty"`
	Creator       string    `yaml:"creator" json:"creator"`
	Type          string    `yaml:"type" json:"type"`
	Model         string    `yaml:"model" json:"model"`
	Status        string    `yaml:"status" json:"status"`
	Organization  string    `yaml:"organization,omitempty" json:"organization,omitempty"`
	Category      string    `yaml:"category,omitempty" json:"category,omitempty"`
	Tags          []string  `yaml:"tags,omitempty" json:"tags,omitempty"`
	TotalChats    int       `yaml:"total_chats" json:"total_chats"`
	Rating        float64   `yaml:"rating,omitempty" json:"rating,omitempty"`
	Downloads     int       `yaml:"downloads,omitempty" json:"downloads,omitempty"`
	WeeklyGrowth  float64   `yaml:"weekly_growth,omitempty" json:"weekly_growth,omitempty"` // percent
	Featured      bool      `yaml:"featured,omitempty" json:"featured,omitempty"`
	LastUsed      time.Time `yaml:"last_used,omitempty" json:"last_used,omitempty"`
	CreatedAt     time.Time `yaml:"created_at" json:"created_at"`
	Config        *Config   `yaml:"config,omitempty" json:"config,omitempty"`
	Listing       *Listing  `yaml:"listing,omitempty" json:"listing,omitempty"`
}

// FieldValue implements filter.Record.
func (a Agent) FieldValue(name string) (string, bool) {
	switch name {
	case FieldStatus:
		return a.Status, true
	case FieldType:
		return a.Type, true
	case FieldOrganization:
		return a.Organization, true
	case FieldCategory:
		return a.Category, true
	case FieldModel:
		return a.Model, true
	case FieldCreator:
		return a.Creator, true
	case FieldListingStatus:
		if a.Listing == nil {
			return "", true
		}
		return a.Listing.Status, true
	case "featured":
		return strconv.FormatBool(a.Featured), true
	}
	return "", false
}

// SearchText implements filter.Record: name, description, creator and tags.
func (a Agent) SearchText() []string {
	text := make([]string, 0, 3+len(a.Tags))
	text = append(text, a.Name, a.Description, a.Creator)
	return append(text, a.Tags...)
}

// ExprFields implements filter.ExprRecord.
func (a Agent) ExprFields() map[string]any {
	listingStatus := ""
	if a.Listing != nil {
		listingStatus = a.Listing.Status
	}
	caps := []string{}
	if a.Config != nil {
		caps = append(caps, a.Config.Capabilities.Enabled()...)
	}
	tags := a.Tags
	if tags == nil {
		tags = []string{}
	}
	return map[string]any{
		"id":             a.ID,
		"name":           a.Name,
		"description":    a.Description,
		"creator":        a.Creator,
		"type":           a.Type,
		"model":          a.Model,
		"status":         a.Status,
		"organization":   a.Organization,
		"category":       a.Category,
		"tags":           tags,
		"total_chats":    a.TotalChats,
		"rating":         a.Rating,
		"downloads":      a.Downloads,
		"weekly_growth":  a.WeeklyGrowth,
		"featured":       a.Featured,
		"listing_status": listingStatus,
		"capabilities":   caps,
	}
}

// Validate validates the agent record.
func (a *Agent) Validate() error {
	if a.ID == "" {
		return errors.New("agent id is required")
	}
	if a.Name == "" {
		return errors.New("agent name is required")
	}
	if !slices.Contains(Statuses, a.Status) {
		return fmt.Errorf("status %q is not one of %v", a.Status, Statuses)
	}
	if !slices.Contains(Types, a.Type) {
		return fmt.Errorf("type %q is not one of %v", a.Type, Types)
	}
	if a.TotalChats < 0 || a.Downloads < 0 {
		return errors.New("counters cannot be negative")
	}
	if a.Rating < 0 || a.Rating > 5 {
		return fmt.Errorf("rating %.1f is outside 0-5", a.Rating)
	}
	if a.Config != nil {
		if err := a.Config.Validate(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	if a.Listing != nil {
		if err := a.Listing.Validate(); err != nil {
			return fmt.Errorf("listing: %w", err)
		}
	}
	return nil
}

// Clone returns a deep copy of the agent.
func (a Agent) Clone() Agent {
	out := a
	out.Tags = slices.Clone(a.Tags)
	if a.Config != nil {
		cfg := a.Config.Clone()
		out.Config = &cfg
	}
	if a.Listing != nil {
		l := a.Listing.Clone()
		out.Listing = &l
	}
	return out
}

// Clone returns a deep copy of the configuration.
func (c Config) Clone() Config {
	out := c
	out.Tags = slices.Clone(c.Tags)
	out.Integrations = slices.Clone(c.Integrations)
	out.Knowledge.Sources = slices.Clone(c.Knowledge.Sources)
	out.Guardrails.BlockedPhrases = slices.Clone(c.Guardrails.BlockedPhrases)
	out.Guardrails.EscalationTriggers = slices.Clone(c.Guardrails.EscalationTriggers)
	out.Analytics.Metrics = slices.Clone(c.Analytics.Metrics)
	return out
}

// UnmarshalAgent unmarshals and validates an agent from YAML bytes.
func UnmarshalAgent(data []byte) (*Agent, error) {
	var a Agent
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal agent: %w", err)
	}
	if a.SchemaVersion == 0 {
		a.SchemaVersion = SchemaVersion
	}
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("agent validation failed: %w", err)
	}
	return &a, nil
}

// MarshalAgent marshals an agent to YAML bytes.
func MarshalAgent(a *Agent) ([]byte, error) {
	data, err := yaml.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal agent: %w", err)
	}
	return data, nil
}
