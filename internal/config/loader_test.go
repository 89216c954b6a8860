package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	deckerrors "github.com/chazuruo/agentdeck/internal/errors"
)

// TestDetectConfigPath_XDG tests that $XDG_CONFIG_HOME is searched first.
func TestDetectConfigPath_XDG(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	configPath := filepath.Join(xdg, "agentdeck", "config.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(configPath), 0755))
	require.NoError(t, os.WriteFile(configPath, []byte(""), 0644))

	assert.Equal(t, configPath, DetectConfigPath())
}

func TestDefaultConfigPath(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	assert.Equal(t, filepath.Join(xdg, "agentdeck", "config.toml"), DefaultConfigPath())
}

// TestLoad_ValidConfig tests loading a valid config file.
func TestLoad_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	configContent := `
[store]
backend = "redis"
redis_url = "redis://cache:6379/2"
key_prefix = "deck"

[identity]
creator = "ana"
organization = "Acme"

[wizard]
finalize_policy = "strict"

[playground]
response_delay = "250ms"
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, "redis://cache:6379/2", cfg.Store.RedisURL)
	assert.Equal(t, "deck", cfg.Store.KeyPrefix)
	assert.Equal(t, "ana", cfg.Identity.Creator)
	assert.Equal(t, "Acme", cfg.Identity.Organization)
	assert.Equal(t, "strict", cfg.Wizard.FinalizePolicy)
	assert.Equal(t, 250*time.Millisecond, cfg.Playground.ResponseDelay.Duration)

	// Unset keys keep their defaults
	assert.Equal(t, "en", cfg.Wizard.DefaultLanguage)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.True(t, deckerrors.IsNotFound(err))

	ce, ok := deckerrors.AsConfigError(err)
	require.True(t, ok)
	assert.Contains(t, ce.Path, "nope.toml")
}

// TestLoad_InvalidTOML tests that invalid TOML returns error.
func TestLoad_InvalidTOML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("[store\nbackend = \"redis\"\n"), 0644))

	_, err := Load(configPath)
	require.Error(t, err)
	assert.True(t, deckerrors.IsInvalid(err))
	assert.Contains(t, err.Error(), "parse")
}

// TestLoad_ValidationFailed tests that validation failures are returned.
func TestLoad_ValidationFailed(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	configContent := `
[identity]
creator = "ana"

[wizard]
finalize_policy = "sometimes"
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	_, err := Load(configPath)
	require.Error(t, err)
	assert.True(t, deckerrors.IsInvalid(err))
	assert.Contains(t, err.Error(), "wizard.finalize_policy")
}

// TestLoad_EnvOverrides tests that AGENTDECK_* variables win over the file.
func TestLoad_EnvOverrides(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	configContent := `
[identity]
creator = "ana"

[tui]
enabled = true
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	t.Setenv("AGENTDECK_IDENTITY_CREATOR", "bo")
	t.Setenv("AGENTDECK_TUI_ENABLED", "false")
	t.Setenv("AGENTDECK_PLAYGROUND_RESPONSE_DELAY", "10ms")
	t.Setenv("AGENTDECK_LOG_LEVEL", "debug")

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "bo", cfg.Identity.Creator)
	assert.False(t, cfg.TUI.Enabled)
	assert.Equal(t, 10*time.Millisecond, cfg.Playground.ResponseDelay.Duration)
	assert.Equal(t, "debug", cfg.Log.Level)
}

// TestLoad_DotEnv tests that a .env next to the config is honored.
func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("[identity]\ncreator = \"ana\"\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("AGENTDECK_IDENTITY_ORGANIZATION=FromDotEnv\n"), 0644))

	// t.Setenv registers cleanup so the value loaded by godotenv is removed.
	t.Setenv("AGENTDECK_IDENTITY_ORGANIZATION", "")
	require.NoError(t, os.Unsetenv("AGENTDECK_IDENTITY_ORGANIZATION"))

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "FromDotEnv", cfg.Identity.Organization)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	cfg := DefaultConfig()
	cfg.Store.Path = "~/decks"
	expandPath(cfg)
	assert.Equal(t, filepath.Join(home, "decks"), cfg.Store.Path)
}

// TestWrite_RoundTrip tests that a written config loads back unchanged.
func TestWrite_RoundTrip(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := DefaultConfig()
	cfg.Identity.Creator = "ana"
	cfg.Store.Path = "/srv/agentdeck"
	cfg.Playground.ResponseDelay = Duration{2 * time.Second}

	require.NoError(t, Write(configPath, cfg))

	loaded, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, cfg.Identity.Creator, loaded.Identity.Creator)
	assert.Equal(t, cfg.Store.Path, loaded.Store.Path)
	assert.Equal(t, 2*time.Second, loaded.Playground.ResponseDelay.Duration)
}
