package search

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/docsearch/internal/domain/search/mode"
)

// minTermLen is the shortest term that is highlighted or scored.
const minTermLen = 2

var booleanSeparators = regexp.MustCompile(`[\s+\-()*"]+`)

// Terms extracts the display terms of raw query text: lowercased, trimmed,
// deduplicated in order, shorter than two characters dropped.
func Terms(text string, m mode.Mode) []string {
	var parts []string
	switch m {
	case mode.Boolean:
		parts = booleanSeparators.Split(text, -1)
	case mode.Wildcard:
		parts = strings.Fields(strings.ReplaceAll(text, "*", ""))
	default:
		parts = strings.Fields(text)
	}

	seen := make(map[string]bool, len(parts))
	terms := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.ToLower(strings.TrimSpace(p))
		if utf8.RuneCountInString(t) < minTermLen || seen[t] {
			continue
		}
		seen[t] = true
		terms = append(terms, t)
	}
	return terms
}
