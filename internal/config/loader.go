// Package config provides configuration management for agentdeck.
//
// This file contains config loading functionality including:
// - XDG config path detection
// - TOML file parsing
// - .env loading and environment variable overrides
// - Validation
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	deckerrors "github.com/chazuruo/agentdeck/internal/errors"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "AGENTDECK_"

// DetectConfigPath searches for a config file using XDG standard paths.
// Returns the first config file found, or empty string if none exists.
//
// Search order:
// 1. $XDG_CONFIG_HOME/agentdeck/config.toml
// 2. ~/.config/agentdeck/config.toml
func DetectConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		configPath := filepath.Join(xdg, "agentdeck", "config.toml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	configPath := filepath.Join(homeDir, ".config", "agentdeck", "config.toml")
	if _, err := os.Stat(configPath); err == nil {
		return configPath
	}

	return ""
}

// DefaultConfigPath is where init writes a new config.
func DefaultConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "agentdeck", "config.toml")
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".agentdeck", "config.toml")
	}
	return filepath.Join(homeDir, ".config", "agentdeck", "config.toml")
}

// Load loads a config from the specified path.
// If the file doesn't exist, returns an error.
// After loading, applies environment variable overrides and validates.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &deckerrors.ConfigError{Path: path, Err: deckerrors.ErrNotFound}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &deckerrors.ConfigError{Path: path, Err: fmt.Errorf("%w: %v", deckerrors.ErrIO, err)}
	}

	cfg := DefaultConfig()

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, &deckerrors.ConfigError{Path: path, Err: fmt.Errorf("%w: parse: %v", deckerrors.ErrInvalid, err)}
	}

	loadDotEnv(filepath.Dir(path))
	applyEnvOverrides(cfg)
	expandPath(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, &deckerrors.ConfigError{Path: path, Err: err}
	}

	return cfg, nil
}

// LoadWithDefaults attempts to load a config from XDG standard paths.
// If no config file is found, returns a validated config with default values.
// If a config file is found but fails to load/validate, returns an error.
func LoadWithDefaults() (*Config, error) {
	configPath := DetectConfigPath()
	if configPath == "" {
		cfg := DefaultConfig()
		loadDotEnv("")
		applyEnvOverrides(cfg)
		expandPath(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, &deckerrors.ConfigError{Err: err}
		}
		return cfg, nil
	}

	return Load(configPath)
}

// LoadFrom loads the config at path, or the detected/default config when
// path is empty.
func LoadFrom(path string) (*Config, error) {
	if path == "" {
		return LoadWithDefaults()
	}
	return Load(path)
}

// loadDotEnv loads a .env file from the working directory and, when given,
// the config directory. Existing environment variables always win.
func loadDotEnv(configDir string) {
	candidates := []string{".env"}
	if configDir != "" {
		candidates = append(candidates, filepath.Join(configDir, ".env"))
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		_ = godotenv.Load(candidate)
	}
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables follow the pattern: AGENTDECK_<SECTION>_<FIELD>
//
// Examples:
// - AGENTDECK_STORE_BACKEND overrides [store].backend
// - AGENTDECK_PLAYGROUND_RESPONSE_DELAY overrides [playground].response_delay
//
// Boolean fields: use "true"/"false" strings
// Duration fields: Go duration strings ("250ms", "2s")
func applyEnvOverrides(c *Config) {
	applyString := func(key string, target *string) {
		if val, ok := os.LookupEnv(EnvPrefix + key); ok && val != "" {
			*target = val
		}
	}

	applyBool := func(key string, target *bool) {
		if val, ok := os.LookupEnv(EnvPrefix + key); ok && val != "" {
			switch strings.ToLower(val) {
			case "true", "1", "yes", "on":
				*target = true
			case "false", "0", "no", "off":
				*target = false
			}
		}
	}

	applyDuration := func(key string, target *Duration) {
		if val, ok := os.LookupEnv(EnvPrefix + key); ok && val != "" {
			if d, err := time.ParseDuration(val); err == nil {
				target.Duration = d
			}
		}
	}

	// Store section
	applyString("STORE_BACKEND", &c.Store.Backend)
	applyString("STORE_PATH", &c.Store.Path)
	applyString("STORE_REDIS_URL", &c.Store.RedisURL)
	applyString("STORE_KEY_PREFIX", &c.Store.KeyPrefix)
	applyDuration("STORE_CONNECT_TIMEOUT", &c.Store.ConnectTimeout)

	// Identity section
	applyString("IDENTITY_CREATOR", &c.Identity.Creator)
	applyString("IDENTITY_ORGANIZATION", &c.Identity.Organization)

	// Wizard section
	applyString("WIZARD_FINALIZE_POLICY", &c.Wizard.FinalizePolicy)
	applyString("WIZARD_DEFAULT_LANGUAGE", &c.Wizard.DefaultLanguage)
	applyString("WIZARD_DEFAULT_MODEL", &c.Wizard.DefaultModel)

	// Playground section
	applyDuration("PLAYGROUND_RESPONSE_DELAY", &c.Playground.ResponseDelay)
	applyString("PLAYGROUND_DEFAULT_AGENT", &c.Playground.DefaultAgent)
	applyString("PLAYGROUND_CANNED_RESPONSE", &c.Playground.CannedResponse)

	// TUI section
	applyBool("TUI_ENABLED", &c.TUI.Enabled)
	applyString("TUI_THEME", &c.TUI.Theme)
	applyBool("TUI_SHOW_HELP", &c.TUI.ShowHelp)

	// Log section
	applyString("LOG_LEVEL", &c.Log.Level)
	applyString("LOG_FORMAT", &c.Log.Format)
	applyBool("LOG_NO_COLOR", &c.Log.NoColor)
}

// expandPath expands ~ to the home directory in the store path.
func expandPath(c *Config) {
	if strings.HasPrefix(c.Store.Path, "~/") || c.Store.Path == "~" {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			c.Store.Path = filepath.Join(homeDir, strings.TrimPrefix(c.Store.Path, "~/"))
		}
	}
}
