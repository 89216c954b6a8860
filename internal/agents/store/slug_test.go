package store

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Customer Support Assistant", "customer-support-assistant"},
		{"E-Commerce Helper!", "e-commerce-helper"},
		{"  Sales   Bot  ", "sales-bot"},
		{"Fix: Bug #123!", "fix-bug-123"},
		{"Ünïcödé Agent", "n-c-d-agent"},
		{"!!!", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.name); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestSlugify_Truncates(t *testing.T) {
	long := strings.Repeat("word ", 20)
	got := Slugify(long)
	if len(got) > maxSlugLen {
		t.Fatalf("len(Slugify) = %d, want <= %d", len(got), maxSlugLen)
	}
	if strings.HasSuffix(got, "-") {
		t.Errorf("slug %q ends with a hyphen", got)
	}
	if !strings.HasPrefix(got, "word-word") {
		t.Errorf("slug %q lost its prefix", got)
	}
}

func TestGenerateUniqueSlug(t *testing.T) {
	tests := []struct {
		name  string
		title string
		taken []string
		want  string
	}{
		{"free", "Sales Bot", nil, "sales-bot"},
		{"first collision", "Sales Bot", []string{"sales-bot"}, "sales-bot-1"},
		{"several collisions", "Sales Bot", []string{"sales-bot", "sales-bot-1", "sales-bot-2"}, "sales-bot-3"},
		{"empty slug", "???", nil, "agent"},
		{"empty slug taken", "", []string{"agent"}, "agent-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GenerateUniqueSlug(tt.title, tt.taken); got != tt.want {
				t.Errorf("GenerateUniqueSlug(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}
