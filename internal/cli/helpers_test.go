package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/chazuruo/agentdeck/internal/config"
)

// testConfig writes a filesystem-backed config into a temp dir, points
// --config at it and disables the TUI for the duration of the test.
func testConfig(t *testing.T) (string, *config.Config) {
	t.Helper()
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.Store.Path = filepath.Join(dir, "store")
	cfg.Identity.Creator = "Test User"
	cfg.Identity.Organization = "TestOrg"
	cfg.Playground.ResponseDelay = config.Duration{}
	cfg.Log.Level = "error"

	path := filepath.Join(dir, "config.toml")
	if err := config.Write(path, cfg); err != nil {
		t.Fatalf("config.Write() error = %v", err)
	}
	setGlobals(t, path, true)
	return path, cfg
}

func setGlobals(t *testing.T, path string, noTUI bool) {
	t.Helper()
	globalMu.Lock()
	oldPath, oldNoTUI := ConfigPath, NoTUI
	ConfigPath, NoTUI = path, noTUI
	globalMu.Unlock()
	t.Cleanup(func() {
		globalMu.Lock()
		ConfigPath, NoTUI = oldPath, oldNoTUI
		globalMu.Unlock()
	})
}

// seeded returns a config with the sample catalog loaded.
func seeded(t *testing.T) string {
	t.Helper()
	path, _ := testConfig(t)
	var out bytes.Buffer
	if err := runSeed(context.Background(), &out, &SeedOptions{}); err != nil {
		t.Fatalf("runSeed() error = %v", err)
	}
	return path
}
