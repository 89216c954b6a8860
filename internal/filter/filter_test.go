package filter

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name   string
	Desc   string
	Status string
	Org    string
	Tags   []string
	Chats  int
}

func (i item) FieldValue(name string) (string, bool) {
	switch name {
	case "name":
		return i.Name, true
	case "status":
		return i.Status, true
	case "organization":
		return i.Org, true
	}
	return "", false
}

func (i item) SearchText() []string {
	return append([]string{i.Name, i.Desc}, i.Tags...)
}

func (i item) ExprFields() map[string]any {
	return map[string]any{
		"name":         i.Name,
		"status":       i.Status,
		"organization": i.Org,
		"tags":         i.Tags,
		"chats":        i.Chats,
	}
}

func names(items []item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func TestApply_SalesSupportScenario(t *testing.T) {
	records := []item{
		{Name: "Sales Bot", Status: "active"},
		{Name: "Support Bot", Status: "disabled"},
	}
	c := Criteria{Query: "bot", Enums: []EnumFilter{{Field: "status", Value: "active"}}}

	got := Apply(records, c)
	assert.Equal(t, []item{{Name: "Sales Bot", Status: "active"}}, got)
}

func TestApply(t *testing.T) {
	records := []item{
		{Name: "Customer Support Pro", Desc: "Handles tickets", Status: "active", Org: "TechCorp", Tags: []string{"support"}},
		{Name: "Code Review Assistant", Desc: "Reviews pull requests", Status: "active", Org: "DevTeam", Tags: []string{"coding"}},
		{Name: "Sales Lead Qualifier", Desc: "Qualifies leads", Status: "testing", Org: "TechCorp", Tags: []string{"sales"}},
		{Name: "Legacy FAQ", Desc: "Old FAQ bot", Status: "disabled", Org: "Acme", Tags: nil},
	}

	tests := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{
			name:     "empty criteria keeps everything",
			criteria: Criteria{},
			want:     []string{"Customer Support Pro", "Code Review Assistant", "Sales Lead Qualifier", "Legacy FAQ"},
		},
		{
			name:     "query is case-insensitive",
			criteria: Criteria{Query: "SUPPORT"},
			want:     []string{"Customer Support Pro"},
		},
		{
			name:     "query matches description",
			criteria: Criteria{Query: "pull req"},
			want:     []string{"Code Review Assistant"},
		},
		{
			name:     "query matches tags",
			criteria: Criteria{Query: "sales"},
			want:     []string{"Sales Lead Qualifier"},
		},
		{
			name:     "enum filter is exact",
			criteria: Criteria{Enums: []EnumFilter{{Field: "organization", Value: "TechCorp"}}},
			want:     []string{"Customer Support Pro", "Sales Lead Qualifier"},
		},
		{
			name:     "enum filter is case-sensitive",
			criteria: Criteria{Enums: []EnumFilter{{Field: "organization", Value: "techcorp"}}},
			want:     []string{},
		},
		{
			name:     "sentinel imposes nothing",
			criteria: Criteria{Enums: []EnumFilter{{Field: "status", Value: All}, {Field: "organization", Value: ""}}},
			want:     []string{"Customer Support Pro", "Code Review Assistant", "Sales Lead Qualifier", "Legacy FAQ"},
		},
		{
			name: "criteria compose with AND",
			criteria: Criteria{
				Query: "a",
				Enums: []EnumFilter{{Field: "status", Value: "active"}, {Field: "organization", Value: "DevTeam"}},
			},
			want: []string{"Code Review Assistant"},
		},
		{
			name:     "unknown field is no match",
			criteria: Criteria{Enums: []EnumFilter{{Field: "region", Value: "eu"}}},
			want:     []string{},
		},
		{
			name:     "no hits",
			criteria: Criteria{Query: "zzz"},
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(Apply(records, tt.criteria)))
		})
	}
}

func TestApply_EmptyInput(t *testing.T) {
	got := Apply([]item(nil), Criteria{Query: "x"})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestApply_DoesNotAliasInput(t *testing.T) {
	records := []item{{Name: "a"}, {Name: "b"}}
	got := Apply(records, Criteria{})
	require.Len(t, got, 2)

	got[0].Name = "changed"
	assert.Equal(t, "a", records[0].Name, "result must be a new slice")
}

func TestApply_DoesNotMutateRecords(t *testing.T) {
	records := []item{{Name: "Sales Bot", Tags: []string{"Sales"}}, {Name: "Other"}}
	before := fmt.Sprintf("%#v", records)

	Apply(records, Criteria{Query: "SALES", Enums: []EnumFilter{{Field: "status", Value: "active"}}})
	assert.Equal(t, before, fmt.Sprintf("%#v", records))
}

// randomItems builds a deterministic pseudo-random population over a small
// vocabulary so that queries and enum values collide often.
func randomItems(rng *rand.Rand, n int) []item {
	words := []string{"sales", "support", "bot", "code", "tutor", "Review", "FAQ", "lead"}
	statuses := []string{"active", "testing", "disabled"}
	orgs := []string{"TechCorp", "DevTeam", "Acme", ""}

	items := make([]item, n)
	for i := range items {
		items[i] = item{
			Name:   fmt.Sprintf("%s %s %d", words[rng.IntN(len(words))], words[rng.IntN(len(words))], i),
			Desc:   words[rng.IntN(len(words))],
			Status: statuses[rng.IntN(len(statuses))],
			Org:    orgs[rng.IntN(len(orgs))],
			Tags:   []string{words[rng.IntN(len(words))]},
			Chats:  rng.IntN(5000),
		}
	}
	return items
}

func randomCriteria(rng *rand.Rand) Criteria {
	queries := []string{"", "", "bot", "SALES", "e", "review", "zz", "1"}
	statuses := []string{All, "", "active", "testing", "disabled", "Active"}
	orgs := []string{All, "TechCorp", "DevTeam", "Acme"}

	c := Criteria{Query: queries[rng.IntN(len(queries))]}
	if rng.IntN(2) == 0 {
		c.Enums = append(c.Enums, EnumFilter{Field: "status", Value: statuses[rng.IntN(len(statuses))]})
	}
	if rng.IntN(2) == 0 {
		c.Enums = append(c.Enums, EnumFilter{Field: "organization", Value: orgs[rng.IntN(len(orgs))]})
	}
	return c
}

// bruteForce recomputes membership independently of Apply.
func bruteForce(records []item, c Criteria) []item {
	out := []item{}
	q := strings.ToLower(c.Query)
	for _, r := range records {
		ok := true
		if q != "" {
			hit := strings.Contains(strings.ToLower(r.Name), q) || strings.Contains(strings.ToLower(r.Desc), q)
			for _, tag := range r.Tags {
				hit = hit || strings.Contains(strings.ToLower(tag), q)
			}
			ok = hit
		}
		for _, e := range c.Enums {
			if e.Value == All || e.Value == "" {
				continue
			}
			switch e.Field {
			case "status":
				ok = ok && r.Status == e.Value
			case "organization":
				ok = ok && r.Org == e.Value
			}
		}
		if ok {
			out = append(out, r)
		}
	}
	return out
}

func isSubsequence(sub, of []item) bool {
	j := 0
	for i := 0; i < len(of) && j < len(sub); i++ {
		if of[i].Name == sub[j].Name {
			j++
		}
	}
	return j == len(sub)
}

func TestApply_Properties(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))

	for round := 0; round < 300; round++ {
		records := randomItems(rng, rng.IntN(40))
		c := randomCriteria(rng)

		got := Apply(records, c)

		// Correctness against brute force
		require.Equal(t, names(bruteForce(records, c)), names(got), "round %d criteria %+v", round, c)

		// Idempotence
		require.Equal(t, got, Apply(got, c), "round %d: filtering twice changed the result", round)

		// Order preservation
		require.True(t, isSubsequence(got, records), "round %d: result is not a subsequence", round)

		// Sentinel neutrality
		neutral := Criteria{Enums: []EnumFilter{{Field: "status", Value: All}, {Field: "organization", Value: All}}}
		all := Apply(records, neutral)
		require.Len(t, all, len(records))
		for i := range records {
			require.Equal(t, records[i].Name, all[i].Name)
		}
	}
}

func TestMatches(t *testing.T) {
	r := item{Name: "Sales Bot", Status: "active"}
	assert.True(t, Matches(r, Criteria{Query: "sales"}))
	assert.False(t, Matches(r, Criteria{Query: "sales"}.With("status", "disabled")))
}

func TestCriteria_With(t *testing.T) {
	c := Criteria{Enums: []EnumFilter{{Field: "status", Value: "active"}, {Field: "organization", Value: "Acme"}}}

	next := c.With("status", "testing")
	assert.Equal(t, "testing", next.Value("status"))
	assert.Equal(t, "Acme", next.Value("organization"))
	assert.Equal(t, "active", c.Value("status"), "With must not modify the receiver")

	added := c.With("type", "User Agent")
	assert.Len(t, added.Enums, 3)
	assert.Equal(t, All, Criteria{}.Value("type"))
}

func TestCriteria_Active(t *testing.T) {
	assert.False(t, Criteria{}.Active())
	assert.False(t, Criteria{Enums: []EnumFilter{{Field: "status", Value: All}}}.Active())
	assert.True(t, Criteria{Query: "x"}.Active())
	assert.True(t, Criteria{}.With("status", "active").Active())
}
