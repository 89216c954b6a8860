package agents

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// Listing statuses, in marketplace order.
const (
	ListingDraft     = "draft"
	ListingReview    = "review"
	ListingPublished = "published"
)

// ListingStatuses lists the valid listing statuses.
var ListingStatuses = []string{ListingDraft, ListingReview, ListingPublished}

// Marketplace pricing choices.
var (
	PricingModels = []string{"subscription", "one-time", "usage", "free"}
	Currencies    = []string{"USD", "EUR", "GBP"}
	BillingCycles = []string{"monthly", "yearly", "weekly"}
)

// MarketplaceCategories are the categories a listing can be filed under.
var MarketplaceCategories = []string{"customer-service", "sales", "technical-support", "scheduling", "analytics"}

// PublishConfig is the configuration built by the publish wizard.
type PublishConfig struct {
	AgentID  string          `yaml:"agent_id" json:"agent_id"`
	Pricing  ListingPricing  `yaml:"pricing" json:"pricing"`
	Metadata ListingMetadata `yaml:"metadata" json:"metadata"`
}

// ListingPricing is how a marketplace listing is charged.
type ListingPricing struct {
	Model        string  `yaml:"model" json:"model"`
	Price        float64 `yaml:"price" json:"price"`
	Currency     string  `yaml:"currency" json:"currency"`
	BillingCycle string  `yaml:"billing_cycle" json:"billing_cycle"`
}

// ListingMetadata describes a listing to marketplace visitors.
type ListingMetadata struct {
	Description   string   `yaml:"description" json:"description"`
	Tags          []string `yaml:"tags" json:"tags"`
	Documentation string   `yaml:"documentation" json:"documentation"`
	Category      string   `yaml:"category" json:"category"`
	Features      []string `yaml:"features" json:"features"`
}

// DefaultPublishConfig returns the starting publish configuration.
func DefaultPublishConfig() PublishConfig {
	return PublishConfig{
		Pricing: ListingPricing{
			Model:        "subscription",
			Price:        29.99,
			Currency:     "USD",
			BillingCycle: "monthly",
		},
		Metadata: ListingMetadata{
			Tags:     []string{},
			Features: []string{},
		},
	}
}

// Validate checks the publish configuration.
func (p *PublishConfig) Validate() error {
	if p.AgentID == "" {
		return errors.New("an agent must be selected")
	}
	l := p.listing()
	return l.Validate()
}

// Listing is an agent's marketplace entry.
type Listing struct {
	Status      string          `yaml:"status" json:"status"`
	Pricing     ListingPricing  `yaml:"pricing" json:"pricing"`
	Metadata    ListingMetadata `yaml:"metadata" json:"metadata"`
	SubmittedAt time.Time       `yaml:"submitted_at,omitempty" json:"submitted_at,omitempty"`
	PublishedAt time.Time       `yaml:"published_at,omitempty" json:"published_at,omitempty"`
}

// NewListing builds a listing in review from a finished publish config.
func NewListing(p PublishConfig, now time.Time) Listing {
	l := p.listing()
	l.Status = ListingReview
	l.SubmittedAt = now
	return l
}

func (p *PublishConfig) listing() Listing {
	return Listing{
		Status:   ListingDraft,
		Pricing:  p.Pricing,
		Metadata: p.Metadata,
	}
}

// Validate checks the listing.
func (l *Listing) Validate() error {
	if !slices.Contains(ListingStatuses, l.Status) {
		return fmt.Errorf("listing status %q is not one of %v", l.Status, ListingStatuses)
	}
	if !slices.Contains(PricingModels, l.Pricing.Model) {
		return fmt.Errorf("pricing model %q is not one of %v", l.Pricing.Model, PricingModels)
	}
	if l.Pricing.Model != "free" {
		if l.Pricing.Price <= 0 {
			return fmt.Errorf("a %s listing needs a positive price", l.Pricing.Model)
		}
		if !slices.Contains(Currencies, l.Pricing.Currency) {
			return fmt.Errorf("currency %q is not one of %v", l.Pricing.Currency, Currencies)
		}
	}
	if l.Pricing.Model == "subscription" && !slices.Contains(BillingCycles, l.Pricing.BillingCycle) {
		return fmt.Errorf("billing cycle %q is not one of %v", l.Pricing.BillingCycle, BillingCycles)
	}
	if l.Metadata.Category != "" && !slices.Contains(MarketplaceCategories, l.Metadata.Category) {
		return fmt.Errorf("category %q is not one of %v", l.Metadata.Category, MarketplaceCategories)
	}
	return nil
}

// Clone returns a deep copy of the listing.
func (l Listing) Clone() Listing {
	out := l
	out.Metadata.Tags = slices.Clone(l.Metadata.Tags)
	out.Metadata.Features = slices.Clone(l.Metadata.Features)
	return out
}
