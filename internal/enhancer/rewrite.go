package enhancer

import (
	"math/rand/v2"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ActionVerbs is the vocabulary a bullet is expected to open with.
var ActionVerbs = []string{
	"Built", "Designed", "Implemented", "Optimized", "Automated", "Developed", "Integrated",
	"Refactored", "Deployed", "Tested", "Analyzed", "Improved", "Accelerated", "Reduced", "Led",
}

const (
	// MetricHint is appended to bullets without a quantifiable result.
	MetricHint = " (add an impact metric: % faster, X users, Y ms, etc.)"
	// ToolsHint is appended to bullets that don't name their tools.
	ToolsHint = " (add tools/tech: React, Node, SQL, Docker, etc.)"
)

var (
	actionVerbPattern = regexp.MustCompile(`(?i)^(` + strings.Join(ActionVerbs, "|") + `)\b`)
	metricPattern     = regexp.MustCompile(`(?i)\b\d+%?|\b\d+\.\d+%?|\b\d+\s*(ms|s|sec|x|users|req|rps|gb|mb)\b`)
	toolsPattern      = regexp.MustCompile(`(?i)\b(using|with)\b`)
)

// HasActionVerb reports whether the bullet opens with one of ActionVerbs.
func HasActionVerb(bullet string) bool {
	return actionVerbPattern.MatchString(bullet)
}

// HasMetric reports whether the bullet contains a number, percentage or
// number with a unit such as "ms", "users" or "rps".
func HasMetric(bullet string) bool {
	return metricPattern.MatchString(bullet)
}

// MentionsTools reports whether the bullet references its tools via "using" or "with".
func MentionsTools(bullet string) bool {
	return toolsPattern.MatchString(bullet)
}

// VerbPicker chooses the verb prepended to a bullet that lacks one.
type VerbPicker func(vocabulary []string) string

// RandomVerb picks a uniformly random verb.
func RandomVerb(vocabulary []string) string {
	return vocabulary[rand.IntN(len(vocabulary))]
}

// FirstVerb always picks the first verb of the vocabulary.
func FirstVerb(vocabulary []string) string {
	return vocabulary[0]
}

// SeededVerbPicker returns a picker whose choices are reproducible for a seed.
// The returned picker is not safe for concurrent use.
func SeededVerbPicker(seed uint64) VerbPicker {
	r := rand.New(rand.NewPCG(seed, seed))
	return func(vocabulary []string) string {
		return vocabulary[r.IntN(len(vocabulary))]
	}
}

// Advisor suggests rewrites for resume bullets.
type Advisor struct {
	PickVerb VerbPicker // nil means RandomVerb
}

// SuggestRewrite returns an improved version of bullet. A missing action verb is
// prepended, and hints are appended for a missing tools mention and a missing
// metric, in that order. A bullet with all three signals is returned unchanged.
func (a Advisor) SuggestRewrite(bullet string) string {
	out := bullet

	if !HasActionVerb(bullet) {
		pick := a.PickVerb
		if pick == nil {
			pick = RandomVerb
		}
		out = pick(ActionVerbs) + " " + lowerFirst(out)
	}
	if !MentionsTools(bullet) {
		out += ToolsHint
	}
	if !HasMetric(bullet) {
		out += MetricHint
	}

	return out
}

// SuggestRewrite is Advisor.SuggestRewrite with a random verb choice.
func SuggestRewrite(bullet string) string {
	return Advisor{}.SuggestRewrite(bullet)
}

// lowerFirst lower-cases the first rune of s.
func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
