package store

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// maxSlugLen bounds generated agent ids.
const maxSlugLen = 50

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)
	hyphenRuns   = regexp.MustCompile(`-+`)
)

// Slugify converts an agent name into an id.
//
//	"Customer Support Assistant" -> "customer-support-assistant"
//	"E-Commerce Helper!"         -> "e-commerce-helper"
func Slugify(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	// Unicode-aware lowercasing before stripping to ASCII.
	result := cases.Lower(language.Und).String(name)
	result = nonSlugChars.ReplaceAllString(result, "-")
	result = hyphenRuns.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")

	if len(result) > maxSlugLen {
		cutoff := maxSlugLen
		if idx := strings.LastIndex(result[:cutoff], "-"); idx > 0 {
			cutoff = idx
		}
		result = result[:cutoff]
	}
	return result
}

// GenerateUniqueSlug slugifies name and appends -1, -2, ... until the id
// is not in taken. Names without any slug characters become "agent".
func GenerateUniqueSlug(name string, taken []string) string {
	base := Slugify(name)
	if base == "" {
		base = "agent"
	}
	slug := base
	for i := 1; slices.Contains(taken, slug); i++ {
		slug = fmt.Sprintf("%s-%d", base, i)
	}
	return slug
}
