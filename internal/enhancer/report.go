package enhancer

// Mode tags how a report was produced.
type Mode string

const (
	// ModeOffline is the heuristic-only path.
	ModeOffline Mode = "offline"
	// ModeOfflineFallback is the heuristic path taken when the AI path can't run.
	ModeOfflineFallback Mode = "offline-fallback"
	// ModeHook marks a configured AI credential with no backend wired in.
	ModeHook Mode = "chatgpt-hook"
	// ModeAI is a report produced by an AI backend.
	ModeAI Mode = "ai"
)

// Input is the request-scoped text an enhancement runs over.
type Input struct {
	ResumeText     string `json:"resumeText"`
	JobDescription string `json:"jobDescription,omitempty"`
}

// Rewrite pairs a bullet with its suggested improvement.
type Rewrite struct {
	Original string `json:"original"`
	Improved string `json:"improved"`
}

// Report is the result of an enhancement.
type Report struct {
	Mode            Mode      `json:"mode"`
	KeywordScore    int       `json:"keywordScore"`
	MissingKeywords []string  `json:"missingKeywords"`
	Rewrites        []Rewrite `json:"rewrites"`
	ATSChecks       []string  `json:"atsChecks"`
	Note            string    `json:"note,omitempty"`
	// ExtractedChars is filled in by callers that extracted the resume from a PDF.
	ExtractedChars int `json:"extractedChars,omitempty"`
}

// emptyReport returns a report whose list fields serialize as [] rather than null.
func emptyReport(mode Mode) Report {
	return Report{
		Mode:            mode,
		MissingKeywords: []string{},
		Rewrites:        []Rewrite{},
		ATSChecks:       []string{},
	}
}
