package enhancer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubBackend is a Backend returning a canned report or error.
type stubBackend struct {
	report *Report
	err    error
	calls  int
}

func (b *stubBackend) Enhance(_ context.Context, _ Input) (*Report, error) {
	b.calls++
	return b.report, b.err
}

func deterministic() Enhancer {
	return Enhancer{Advisor: Advisor{PickVerb: FirstVerb}}
}

func TestEnhanceOffline_EmptyResume(t *testing.T) {
	report := EnhanceOffline(Input{ResumeText: "", JobDescription: "anything"})

	assert.Equal(t, ModeOffline, report.Mode)
	assert.NotNil(t, report.Rewrites)
	assert.Empty(t, report.Rewrites)
	assert.Equal(t, 0, report.KeywordScore)
	assert.Equal(t, []string{"anything"}, report.MissingKeywords)
	assert.Equal(t, []string{CheckTooShort, CheckVersionControl, CheckTesting}, report.ATSChecks)
	assert.Empty(t, report.Note)
}

func TestEnhanceOffline_RewritesBoundedAndOrdered(t *testing.T) {
	lines := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		lines = append(lines, fmt.Sprintf("- item %d", i))
	}

	report := deterministic().EnhanceOffline(Input{ResumeText: strings.Join(lines, "\n")})

	require.Len(t, report.Rewrites, MaxRewrites)
	for i, rw := range report.Rewrites {
		assert.Equal(t, fmt.Sprintf("item %d", i), rw.Original)
		assert.Equal(t, fmt.Sprintf("Built item %d", i)+ToolsHint, rw.Improved)
	}
}

func TestEnhanceOffline_KeywordScore(t *testing.T) {
	report := deterministic().EnhanceOffline(Input{
		ResumeText:     "Built a cache.\nImproved throughput by 40%.",
		JobDescription: "cache throughput distributed systems",
	})

	assert.Equal(t, 50, report.KeywordScore)
	assert.Equal(t, []string{"distributed", "systems"}, report.MissingKeywords)
	require.Len(t, report.Rewrites, 2)
	assert.Equal(t, "Built a cache.", report.Rewrites[0].Original)
}

func TestATSChecks(t *testing.T) {
	filler := strings.Repeat("Designed services for scale. ", 40)

	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "short without signals",
			text:     "Built things",
			expected: []string{CheckTooShort, CheckVersionControl, CheckTesting},
		},
		{
			name:     "short with git and tests",
			text:     "Shipped via GitHub Actions with unit coverage",
			expected: []string{CheckTooShort},
		},
		{
			name:     "adequate length",
			text:     filler + "git e2e",
			expected: []string{},
		},
		{
			name:     "too long",
			text:     strings.Repeat(filler, 6) + " Jest git",
			expected: []string{CheckTooLong},
		},
		{
			name:     "plural tests is not a whole-word match",
			text:     filler + "github tests",
			expected: []string{CheckTesting},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ATSChecks(tt.text))
		})
	}
}

func TestATSChecks_CountsCharactersNotBytes(t *testing.T) {
	// 789 characters but more than 800 bytes.
	text := strings.Repeat("é", 780) + " git test"
	assert.Contains(t, ATSChecks(text), CheckTooShort)
}

func TestEnhanceWithAI_NoCredential(t *testing.T) {
	e := deterministic()
	in := Input{ResumeText: "Built a cache.\nImproved throughput by 40%.", JobDescription: "cache systems"}

	report := e.EnhanceWithAI(context.Background(), in)
	offline := e.EnhanceOffline(in)

	assert.Equal(t, ModeOfflineFallback, report.Mode)
	assert.NotEmpty(t, report.Note)
	assert.Equal(t, offline.KeywordScore, report.KeywordScore)
	assert.Equal(t, offline.MissingKeywords, report.MissingKeywords)
	assert.Equal(t, offline.Rewrites, report.Rewrites)
	assert.Equal(t, offline.ATSChecks, report.ATSChecks)
}

func TestEnhanceWithAI_CredentialWithoutBackend(t *testing.T) {
	e := Enhancer{AICredentialPresent: true}

	report := e.EnhanceWithAI(context.Background(), Input{ResumeText: "Built a cache"})

	assert.Equal(t, ModeHook, report.Mode)
	assert.NotEmpty(t, report.Note)
	assert.Empty(t, report.Rewrites)
	assert.Empty(t, report.ATSChecks)
}

func TestEnhanceWithAI_Backend(t *testing.T) {
	backend := &stubBackend{report: &Report{
		KeywordScore: 140,
		Rewrites:     []Rewrite{{Original: "a", Improved: "b"}},
	}}
	e := Enhancer{AICredentialPresent: true, Backend: backend}

	report := e.EnhanceWithAI(context.Background(), Input{ResumeText: "Built a cache"})

	assert.Equal(t, 1, backend.calls)
	assert.Equal(t, ModeAI, report.Mode)
	assert.Equal(t, 100, report.KeywordScore)
	assert.Equal(t, []Rewrite{{Original: "a", Improved: "b"}}, report.Rewrites)
	assert.NotNil(t, report.MissingKeywords)
	assert.NotNil(t, report.ATSChecks)
}

func TestEnhanceWithAI_BackendFailureFallsBack(t *testing.T) {
	backend := &stubBackend{err: errors.New("quota exceeded")}
	e := Enhancer{AICredentialPresent: true, Backend: backend, Advisor: Advisor{PickVerb: FirstVerb}}

	report := e.EnhanceWithAI(context.Background(), Input{ResumeText: "backend work"})

	assert.Equal(t, ModeOfflineFallback, report.Mode)
	assert.Contains(t, report.Note, "quota exceeded")
	require.Len(t, report.Rewrites, 1)
	assert.Equal(t, "Built backend work"+ToolsHint+MetricHint, report.Rewrites[0].Improved)
}

func TestReport_JSONShape(t *testing.T) {
	data, err := json.Marshal(EnhanceOffline(Input{}))
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &fields))

	assert.JSONEq(t, `"offline"`, string(fields["mode"]))
	assert.JSONEq(t, `0`, string(fields["keywordScore"]))
	assert.JSONEq(t, `[]`, string(fields["missingKeywords"]))
	assert.JSONEq(t, `[]`, string(fields["rewrites"]))
	assert.Contains(t, fields, "atsChecks")
	assert.NotContains(t, fields, "note")
	assert.NotContains(t, fields, "extractedChars")
}
