// Package app provides high-level application logic for agentdeck commands.
package app

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/chazuruo/agentdeck/internal/agents"
	"github.com/chazuruo/agentdeck/internal/agents/store"
	deckerrors "github.com/chazuruo/agentdeck/internal/errors"
	"github.com/chazuruo/agentdeck/internal/filter"
)

// Sort keys accepted by ListOptions.SortBy.
const (
	SortCreated   = "created"
	SortName      = "name"
	SortChats     = "chats"
	SortRating    = "rating"
	SortDownloads = "downloads"
)

// SortKeys lists the valid sort keys.
var SortKeys = []string{SortCreated, SortName, SortChats, SortRating, SortDownloads}

// ListOptions contains the options for listing agents.
type ListOptions struct {
	// Criteria narrows the records.
	Criteria filter.Criteria
	// SortBy reorders the filtered records. Empty keeps store order.
	SortBy string
	// Limit caps the number of returned agents. 0 means no limit.
	Limit int
}

// ListResult is a filtered view plus aggregates over the unfiltered base.
type ListResult struct {
	Agents []agents.Agent `json:"agents"`
	Stats  Stats          `json:"stats"`
}

// Stats summarizes a records collection.
type Stats struct {
	Total         int            `json:"total"`
	Filtered      int            `json:"filtered"`
	Active        int            `json:"active"`
	TotalChats    int            `json:"total_chats"`
	AvgRating     float64        `json:"avg_rating"`
	Organizations []string       `json:"organizations"`
	Types         []string       `json:"types"`
	Categories    []string       `json:"categories"`
	ByStatus      map[string]int `json:"by_status"`
}

// ComputeStats aggregates over base; filtered is the size of the view.
func ComputeStats(base []agents.Agent, filtered int) Stats {
	rated := filter.CountWhere(base, func(a agents.Agent) bool { return a.Rating > 0 })
	avg := 0.0
	if rated > 0 {
		avg = filter.SumFloat(base, func(a agents.Agent) float64 { return a.Rating }) / float64(rated)
	}
	return Stats{
		Total:         filter.Count(base),
		Filtered:      filtered,
		Active:        filter.CountWhere(base, func(a agents.Agent) bool { return a.Status == agents.StatusActive }),
		TotalChats:    filter.SumInt(base, func(a agents.Agent) int { return a.TotalChats }),
		AvgRating:     avg,
		Organizations: filter.Distinct(base, agents.FieldOrganization),
		Types:         filter.Distinct(base, agents.FieldType),
		Categories:    filter.Distinct(base, agents.FieldCategory),
		ByStatus:      filter.Tally(base, agents.FieldStatus),
	}
}

// ListAgents fetches every record from src and applies opts.
func ListAgents(ctx context.Context, src store.Source, opts ListOptions) (*ListResult, error) {
	if opts.SortBy != "" && !slices.Contains(SortKeys, opts.SortBy) {
		return nil, deckerrors.Invalidf("sort key %q is not one of %s", opts.SortBy, strings.Join(SortKeys, ", "))
	}
	if opts.Limit < 0 {
		return nil, deckerrors.Invalidf("limit must be >= 0")
	}

	base, err := src.ListRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}

	view := filter.Apply(base, opts.Criteria)
	SortAgents(view, opts.SortBy)
	stats := ComputeStats(base, len(view))
	if opts.Limit > 0 && len(view) > opts.Limit {
		view = view[:opts.Limit]
	}

	return &ListResult{Agents: view, Stats: stats}, nil
}

// SortAgents stably reorders as by key. Numeric keys sort descending.
func SortAgents(as []agents.Agent, key string) {
	var compare func(a, b agents.Agent) int
	switch key {
	case SortName:
		compare = func(a, b agents.Agent) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
	case SortChats:
		compare = func(a, b agents.Agent) int { return cmp.Compare(b.TotalChats, a.TotalChats) }
	case SortRating:
		compare = func(a, b agents.Agent) int { return cmp.Compare(b.Rating, a.Rating) }
	case SortDownloads:
		compare = func(a, b agents.Agent) int { return cmp.Compare(b.Downloads, a.Downloads) }
	case SortCreated:
		compare = func(a, b agents.Agent) int { return a.CreatedAt.Compare(b.CreatedAt) }
	default:
		return
	}
	slices.SortStableFunc(as, compare)
}

// TrendingResult is the marketplace front page.
type TrendingResult struct {
	// Featured is the first featured agent matching the criteria, if any.
	Featured *agents.Agent `json:"featured,omitempty"`
	// Ranked are the remaining matches by downloads, weekly growth breaking ties.
	Ranked []agents.Agent `json:"ranked"`
}

// Trending ranks the matching agents for the marketplace view.
func Trending(ctx context.Context, src store.Source, c filter.Criteria, limit int) (*TrendingResult, error) {
	base, err := src.ListRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	view := filter.Apply(base, c)

	res := &TrendingResult{Ranked: make([]agents.Agent, 0, len(view))}
	for i := range view {
		if res.Featured == nil && view[i].Featured {
			featured := view[i]
			res.Featured = &featured
			continue
		}
		res.Ranked = append(res.Ranked, view[i])
	}

	slices.SortStableFunc(res.Ranked, func(a, b agents.Agent) int {
		if c := cmp.Compare(b.Downloads, a.Downloads); c != 0 {
			return c
		}
		return cmp.Compare(b.WeeklyGrowth, a.WeeklyGrowth)
	})
	if limit > 0 && len(res.Ranked) > limit {
		res.Ranked = res.Ranked[:limit]
	}
	return res, nil
}
