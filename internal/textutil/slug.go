// Package textutil provides text helpers for publish identifiers and
// display titles.
package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var slugCollapsePattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slug converts a topic into a filesystem- and URL-safe identifier segment.
// Accents are folded, everything non-alphanumeric collapses to a single
// underscore, matching the identifier shape the publisher expects.
func Slug(text string) string {
	folded := foldDiacritics(strings.TrimSpace(text))
	lowered := strings.ToLower(folded)
	slug := slugCollapsePattern.ReplaceAllString(lowered, "_")
	slug = strings.Trim(slug, "_")
	if slug == "" {
		return "topic"
	}
	return slug
}

// TitleCase renders a topic for display headings.
func TitleCase(text string) string {
	return cases.Title(language.Und).String(strings.TrimSpace(text))
}

func foldDiacritics(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return folded
}
