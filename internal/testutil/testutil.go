// Package testutil provides helper functions for testing.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/chazuruo/agentdeck/internal/agents"
	"github.com/chazuruo/agentdeck/internal/agents/store"
	"github.com/chazuruo/agentdeck/internal/logging"
)

// WriteFile writes content to name inside a fresh temporary directory and
// returns the path. The directory is removed when the test completes.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// Catalog returns the built-in sample catalog.
func Catalog(t *testing.T) *agents.Catalog {
	t.Helper()

	cat, err := agents.Seed()
	if err != nil {
		t.Fatalf("failed to load sample catalog: %v", err)
	}
	return cat
}

// Agents returns the sample catalog's agents in catalog order.
func Agents(t *testing.T) []agents.Agent {
	t.Helper()
	return Catalog(t).Agents
}

// SeededStore returns a filesystem store in a temporary directory holding
// the sample catalog.
func SeededStore(t *testing.T) store.Store {
	t.Helper()

	st, err := store.NewFileSystemStore(t.TempDir(), logging.Discard())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	ctx := context.Background()
	cat := Catalog(t)
	for i := range cat.Agents {
		if err := st.Save(ctx, &cat.Agents[i], store.SaveOptions{}); err != nil {
			t.Fatalf("failed to save %s: %v", cat.Agents[i].ID, err)
		}
	}
	for _, v := range cat.Versions {
		if err := st.SaveVersion(ctx, v); err != nil {
			t.Fatalf("failed to save version %s/%s: %v", v.AgentID, v.ID, err)
		}
	}
	return st
}
