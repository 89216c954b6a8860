package app

import (
	"context"

	"github.com/chazuruo/agentdeck/internal/agents"
	"github.com/chazuruo/agentdeck/internal/agents/store"
	deckerrors "github.com/chazuruo/agentdeck/internal/errors"
)

// ImportResult counts what ImportCatalog wrote.
type ImportResult struct {
	Agents   int      `json:"agents"`
	Versions int      `json:"versions"`
	Skipped  []string `json:"skipped,omitempty"`
}

// ImportCatalog writes a catalog into st. Agents that already exist are
// skipped, together with their versions, unless force is set.
func ImportCatalog(ctx context.Context, st store.Store, cat *agents.Catalog, force bool) (*ImportResult, error) {
	res := &ImportResult{}
	written := make(map[string]bool, len(cat.Agents))

	for i := range cat.Agents {
		a := cat.Agents[i].Clone()
		err := st.Save(ctx, &a, store.SaveOptions{Force: force})
		if deckerrors.IsAlreadyExists(err) {
			res.Skipped = append(res.Skipped, a.ID)
			continue
		}
		if err != nil {
			return res, err
		}
		written[a.ID] = true
		res.Agents++
	}

	for _, v := range cat.Versions {
		if !written[v.AgentID] {
			continue
		}
		if err := st.SaveVersion(ctx, v); err != nil {
			return res, err
		}
		res.Versions++
	}
	return res, nil
}
