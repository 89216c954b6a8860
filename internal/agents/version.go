package agents

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// Prompt version statuses.
const (
	VersionCurrent  = "current"
	VersionPrevious = "previous"
	VersionDraft    = "draft"
)

// VersionStatuses lists the valid prompt version statuses.
var VersionStatuses = []string{VersionCurrent, VersionPrevious, VersionDraft}

// PromptVersion is one entry of an agent's prompt history.
type PromptVersion struct {
	ID        string    `yaml:"id" json:"id"`
	AgentID   string    `yaml:"agent_id" json:"agent_id"`
	Author    string    `yaml:"author" json:"author"`
	Message   string    `yaml:"message" json:"message"`
	Branch    string    `yaml:"branch" json:"branch"`
	Status    string    `yaml:"status" json:"status"`
	Prompt    string    `yaml:"prompt,omitempty" json:"prompt,omitempty"`
	Changes   string    `yaml:"changes,omitempty" json:"changes,omitempty"`
	Comments  []Comment `yaml:"comments,omitempty" json:"comments,omitempty"`
	CreatedAt time.Time `yaml:"created_at" json:"created_at"`
}

// Comment is a review note on a prompt version.
type Comment struct {
	ID        string    `yaml:"id" json:"id"`
	Author    string    `yaml:"author" json:"author"`
	Content   string    `yaml:"content" json:"content"`
	CreatedAt time.Time `yaml:"created_at" json:"created_at"`
}

// FieldValue implements filter.Record.
func (v PromptVersion) FieldValue(name string) (string, bool) {
	switch name {
	case "status":
		return v.Status, true
	case "branch":
		return v.Branch, true
	case "author":
		return v.Author, true
	case "agent_id":
		return v.AgentID, true
	}
	return "", false
}

// SearchText implements filter.Record.
func (v PromptVersion) SearchText() []string {
	return []string{v.ID, v.Message, v.Author, v.Changes}
}

// Validate checks the version record.
func (v *PromptVersion) Validate() error {
	if v.ID == "" {
		return errors.New("version id is required")
	}
	if v.AgentID == "" {
		return errors.New("version agent_id is required")
	}
	if !slices.Contains(VersionStatuses, v.Status) {
		return fmt.Errorf("version status %q is not one of %v", v.Status, VersionStatuses)
	}
	return nil
}
