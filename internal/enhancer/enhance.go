package enhancer

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"unicode/utf8"
)

// MaxRewrites bounds how many bullets, from the top of the resume, get a rewrite.
const MaxRewrites = 12

const (
	shortResumeChars = 800
	longResumeChars  = 6500
)

// ATS check messages, in the order they are evaluated.
const (
	CheckTooShort       = "Resume text seems short: add more specifics (scope, metrics, tools)."
	CheckTooLong        = "Resume text seems long: consider trimming toward a 1-page target."
	CheckVersionControl = "Consider mentioning version control (Git/GitHub) if you used it."
	CheckTesting        = "Consider adding testing evidence (unit/integration/e2e) if applicable."
)

const (
	noteNoCredential = "No AI credential set (OPENAI_API_KEY or GEMINI_API_KEY); using offline enhancer."
	noteHook         = "AI credential detected, but no AI backend is configured. Set AI_BACKEND to enable one; returning the hook response."
)

var (
	versionControlPattern = regexp.MustCompile(`(?i)\b(git|github)\b`)
	testingPattern        = regexp.MustCompile(`(?i)\b(test|jest|unit|integration|e2e)\b`)
)

// Backend produces a report with an AI model. Implementations must return a
// fully populated report or an error.
type Backend interface {
	Enhance(ctx context.Context, in Input) (*Report, error)
}

// Enhancer composes the heuristics into reports and selects between the
// offline and AI-backed paths. The zero value is an offline-only enhancer
// with random verb choice.
type Enhancer struct {
	// AICredentialPresent reports whether an AI credential is configured.
	AICredentialPresent bool
	// Backend is the AI implementation; nil leaves the AI path as a hook.
	Backend Backend
	Advisor Advisor
	Logger  *slog.Logger
}

// EnhanceOffline runs the heuristic enhancement with a random verb choice.
func EnhanceOffline(in Input) Report {
	return Enhancer{}.EnhanceOffline(in)
}

// EnhanceOffline rewrites the first MaxRewrites bullets, scores keyword
// coverage and runs the ATS checks. It never fails.
func (e Enhancer) EnhanceOffline(in Input) Report {
	report := emptyReport(ModeOffline)

	bullets := SplitBullets(in.ResumeText)
	if len(bullets) > MaxRewrites {
		bullets = bullets[:MaxRewrites]
	}
	for _, b := range bullets {
		report.Rewrites = append(report.Rewrites, Rewrite{
			Original: b,
			Improved: e.Advisor.SuggestRewrite(b),
		})
	}

	kw := ScoreKeywords(in.ResumeText, in.JobDescription)
	report.KeywordScore = kw.Score
	report.MissingKeywords = kw.Missing
	report.ATSChecks = ATSChecks(in.ResumeText)

	return report
}

// ATSChecks returns the advisories that apply to the resume text.
// Length is measured in characters, not bytes.
func ATSChecks(resumeText string) []string {
	checks := make([]string, 0, 4)
	length := utf8.RuneCountInString(resumeText)

	if length < shortResumeChars {
		checks = append(checks, CheckTooShort)
	}
	if length > longResumeChars {
		checks = append(checks, CheckTooLong)
	}
	if !versionControlPattern.MatchString(resumeText) {
		checks = append(checks, CheckVersionControl)
	}
	if !testingPattern.MatchString(resumeText) {
		checks = append(checks, CheckTesting)
	}

	return checks
}

// EnhanceWithAI selects the enhancement path:
//   - no credential: the offline report tagged offline-fallback, with a note
//   - credential but no backend: a hook stub tagged chatgpt-hook, with a note
//   - backend present: the backend's report; if it fails, the offline-fallback report
//
// None of these outcomes is an error.
func (e Enhancer) EnhanceWithAI(ctx context.Context, in Input) Report {
	if !e.AICredentialPresent {
		report := e.EnhanceOffline(in)
		report.Mode = ModeOfflineFallback
		report.Note = noteNoCredential
		return report
	}

	if e.Backend == nil {
		report := emptyReport(ModeHook)
		report.Note = noteHook
		return report
	}

	aiReport, err := e.Backend.Enhance(ctx, in)
	if err != nil || aiReport == nil {
		if err == nil {
			err = fmt.Errorf("backend returned no report")
		}
		e.logger().Warn("AI enhancement failed, falling back to offline", "error", err)
		report := e.EnhanceOffline(in)
		report.Mode = ModeOfflineFallback
		report.Note = fmt.Sprintf("AI backend unavailable (%v); using offline enhancer.", err)
		return report
	}

	report := normalizeReport(*aiReport)
	report.Mode = ModeAI
	return report
}

func (e Enhancer) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// normalizeReport replaces nil lists with empty ones and clamps bounded fields.
func normalizeReport(r Report) Report {
	if r.MissingKeywords == nil {
		r.MissingKeywords = []string{}
	}
	if len(r.MissingKeywords) > MaxMissingKeywords {
		r.MissingKeywords = r.MissingKeywords[:MaxMissingKeywords]
	}
	if r.Rewrites == nil {
		r.Rewrites = []Rewrite{}
	}
	if len(r.Rewrites) > MaxRewrites {
		r.Rewrites = r.Rewrites[:MaxRewrites]
	}
	if r.ATSChecks == nil {
		r.ATSChecks = []string{}
	}
	r.KeywordScore = max(0, min(100, r.KeywordScore))
	return r
}
