// Package enhancer implements the offline resume enhancement heuristics: bullet
// normalization, keyword coverage scoring against a job description, rule-based
// bullet rewrites and the ATS-style checks that accompany them.
package enhancer

import (
	"regexp"
	"strings"
)

// minKeywordLength is the shortest token kept in a keyword set.
const minKeywordLength = 3

var (
	// bulletMarkerPattern matches a single leading list marker and the whitespace after it.
	bulletMarkerPattern = regexp.MustCompile(`^[-•]\s*`)
	// nonKeywordCharPattern matches every character that can't be part of a keyword.
	// Tokens like "c++", "node.js" and "c#" survive intact.
	nonKeywordCharPattern = regexp.MustCompile(`[^a-z0-9+.#\s]`)
)

// SplitBullets splits resume text into trimmed, non-empty lines in source order,
// removing one leading "-" or "•" marker from each line.
func SplitBullets(text string) []string {
	bullets := make([]string, 0)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		bullets = append(bullets, bulletMarkerPattern.ReplaceAllString(line, ""))
	}
	return bullets
}

// Keywords returns the unique keywords of text in order of first appearance.
// Sentence-ending periods are trimmed so "cache." and "cache" are the same
// keyword, while interior dots ("node.js") are kept.
func Keywords(text string) []string {
	cleaned := nonKeywordCharPattern.ReplaceAllString(strings.ToLower(text), " ")

	seen := make(map[string]struct{})
	keywords := make([]string, 0)
	for _, token := range strings.Fields(cleaned) {
		token = strings.TrimRight(token, ".")
		if len(token) < minKeywordLength {
			continue
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		keywords = append(keywords, token)
	}
	return keywords
}

// KeywordSet returns the keywords of text as a set. An empty text yields an empty set.
func KeywordSet(text string) map[string]struct{} {
	keywords := Keywords(text)
	set := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		set[kw] = struct{}{}
	}
	return set
}
