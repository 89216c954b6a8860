// Package config provides configuration management for agentdeck.
//
// The configuration is stored in TOML format and supports validation
// and default values for all fields.
package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	deckerrors "github.com/chazuruo/agentdeck/internal/errors"
)

// Config is the top-level configuration struct for agentdeck.
type Config struct {
	Store      StoreConfig      `toml:"store"`
	Identity   IdentityConfig   `toml:"identity"`
	Wizard     WizardConfig     `toml:"wizard"`
	Playground PlaygroundConfig `toml:"playground"`
	TUI        TUIConfig        `toml:"tui"`
	Log        LogConfig        `toml:"log"`
}

// StoreConfig selects and configures the agent records backend.
type StoreConfig struct {
	// Backend is the storage backend.
	// Valid values: "filesystem", "redis".
	Backend string `toml:"backend"`

	// Path is the root directory of the filesystem backend.
	Path string `toml:"path"`

	// RedisURL is the connection string of the redis backend.
	RedisURL string `toml:"redis_url"`

	// KeyPrefix namespaces every redis key.
	KeyPrefix string `toml:"key_prefix"`

	// ConnectTimeout bounds the initial redis ping.
	ConnectTimeout Duration `toml:"connect_timeout"`
}

// IdentityConfig describes who is creating and publishing agents.
type IdentityConfig struct {
	// Creator is recorded on agents created through the wizard.
	Creator string `toml:"creator"`

	// Organization is recorded on agents created through the wizard.
	Organization string `toml:"organization"`
}

// WizardConfig contains create/publish wizard settings.
type WizardConfig struct {
	// FinalizePolicy decides when a wizard may be finalized.
	// Valid values: "lenient", "strict".
	FinalizePolicy string `toml:"finalize_policy"`

	// DefaultLanguage seeds the language of new agents.
	DefaultLanguage string `toml:"default_language"`

	// DefaultModel seeds the pricing model of new agents.
	DefaultModel string `toml:"default_model"`
}

// PlaygroundConfig contains settings for the simulated agent playground.
type PlaygroundConfig struct {
	// ResponseDelay is how long the simulated agent "types" before replying.
	ResponseDelay Duration `toml:"response_delay"`

	// DefaultAgent is the agent id opened when none is given.
	DefaultAgent string `toml:"default_agent"`

	// CannedResponse overrides the built-in reply text.
	CannedResponse string `toml:"canned_response"`
}

// TUIConfig contains terminal UI settings.
type TUIConfig struct {
	// Enabled controls whether to use the TUI (when false, falls back to CLI).
	Enabled bool `toml:"enabled"`

	// Theme is the TUI theme name.
	Theme string `toml:"theme"`

	// ShowHelp controls whether to show the help line by default.
	ShowHelp bool `toml:"show_help"`
}

// LogConfig contains structured logging settings.
type LogConfig struct {
	// Level is the minimum level: "debug", "info", "warn", "error".
	Level string `toml:"level"`

	// Format is "text" (colored, human) or "json".
	Format string `toml:"format"`

	// NoColor disables ANSI colors in text output.
	NoColor bool `toml:"no_color"`
}

// Duration is a time.Duration that round-trips through TOML as a string ("1s").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// DefaultConfig returns a Config with all default values set.
func DefaultConfig() *Config {
	homeDir := ""
	if usr, _ := user.Current(); usr != nil {
		homeDir = usr.HomeDir
	}

	return &Config{
		Store: StoreConfig{
			Backend:        "filesystem",
			Path:           filepath.Join(homeDir, ".local", "share", "agentdeck"),
			RedisURL:       "redis://localhost:6379/0",
			KeyPrefix:      "agentdeck",
			ConnectTimeout: Duration{5 * time.Second},
		},
		Identity: IdentityConfig{
			Creator:      defaultCreator(),
			Organization: "",
		},
		Wizard: WizardConfig{
			FinalizePolicy:  "lenient",
			DefaultLanguage: "en",
			DefaultModel:    "gpt-4",
		},
		Playground: PlaygroundConfig{
			ResponseDelay:  Duration{time.Second},
			DefaultAgent:   "",
			CannedResponse: "",
		},
		TUI: TUIConfig{
			Enabled:  true,
			Theme:    "default",
			ShowHelp: true,
		},
		Log: LogConfig{
			Level:   "info",
			Format:  "text",
			NoColor: false,
		},
	}
}

// Validate checks the configuration for valid values.
// Returns a nil error if the config is valid, or an error describing the problem.
func (c *Config) Validate() error {
	validBackends := map[string]bool{
		"filesystem": true,
		"redis":      true,
	}
	if !validBackends[c.Store.Backend] {
		return deckerrors.Invalidf("store.backend must be one of: filesystem, redis; got %q", c.Store.Backend)
	}
	switch c.Store.Backend {
	case "filesystem":
		if c.Store.Path == "" {
			return deckerrors.Invalidf("store.path cannot be empty")
		}
	case "redis":
		if c.Store.RedisURL == "" {
			return deckerrors.Invalidf("store.redis_url cannot be empty when store.backend is redis")
		}
		if c.Store.KeyPrefix == "" {
			return deckerrors.Invalidf("store.key_prefix cannot be empty")
		}
		if strings.ContainsAny(c.Store.KeyPrefix, " \t\n") {
			return deckerrors.Invalidf("store.key_prefix cannot contain whitespace: %q", c.Store.KeyPrefix)
		}
	}
	if c.Store.ConnectTimeout.Duration < 0 {
		return deckerrors.Invalidf("store.connect_timeout must be >= 0; got %s", c.Store.ConnectTimeout)
	}

	if c.Identity.Creator == "" {
		return deckerrors.Invalidf("identity.creator cannot be empty")
	}

	validPolicies := map[string]bool{
		"lenient": true,
		"strict":  true,
	}
	if !validPolicies[c.Wizard.FinalizePolicy] {
		return deckerrors.Invalidf("wizard.finalize_policy must be one of: lenient, strict; got %q", c.Wizard.FinalizePolicy)
	}
	validLanguages := map[string]bool{
		"en": true,
		"es": true,
		"fr": true,
		"de": true,
	}
	if !validLanguages[c.Wizard.DefaultLanguage] {
		return deckerrors.Invalidf("wizard.default_language must be one of: en, es, fr, de; got %q", c.Wizard.DefaultLanguage)
	}
	if c.Wizard.DefaultModel == "" {
		return deckerrors.Invalidf("wizard.default_model cannot be empty")
	}

	if c.Playground.ResponseDelay.Duration < 0 {
		return deckerrors.Invalidf("playground.response_delay must be >= 0; got %s", c.Playground.ResponseDelay)
	}

	if c.TUI.Theme == "" {
		return deckerrors.Invalidf("tui.theme cannot be empty")
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Log.Level] {
		return deckerrors.Invalidf("log.level must be one of: debug, info, warn, error; got %q", c.Log.Level)
	}
	validFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validFormats[c.Log.Format] {
		return deckerrors.Invalidf("log.format must be one of: text, json; got %q", c.Log.Format)
	}

	return nil
}

// defaultCreator returns the current user's login name or a fallback.
func defaultCreator() string {
	if usr, err := user.Current(); err == nil && usr.Username != "" {
		hostname, _ := os.Hostname()
		if hostname != "" {
			return fmt.Sprintf("%s@%s", usr.Username, hostname)
		}
		return usr.Username
	}
	return "agentdeck@localhost"
}
