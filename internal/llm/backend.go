package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/interntrack/internal/enhancer"
	"github.com/jonathan/interntrack/internal/prompts"
	"github.com/jonathan/interntrack/internal/schemas"
)

// ReportBackend is an enhancer.Backend that asks a model for the whole report and
// validates it against the enhancement report schema before returning it.
type ReportBackend struct {
	Client Client
	Tier   ModelTier
}

var _ enhancer.Backend = (*ReportBackend)(nil)

// NewReportBackend returns a backend using the standard tier.
func NewReportBackend(client Client) *ReportBackend {
	return &ReportBackend{Client: client, Tier: TierStandard}
}

// Enhance implements enhancer.Backend.
func (b *ReportBackend) Enhance(ctx context.Context, in enhancer.Input) (*enhancer.Report, error) {
	if b.Client == nil {
		return nil, fmt.Errorf("no LLM client configured")
	}
	tier := b.Tier
	if tier == "" {
		tier = TierStandard
	}

	raw, err := b.Client.GenerateJSON(ctx, BuildEnhancementPrompt(in), tier)
	if err != nil {
		return nil, fmt.Errorf("failed to generate report: %w", err)
	}
	if err := schemas.ValidateEnhancementReport([]byte(raw)); err != nil {
		return nil, fmt.Errorf("model returned an invalid report: %w", err)
	}

	var report enhancer.Report
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &report, nil
}

// BuildEnhancementPrompt constructs the prompt for a resume/job description pair.
// The job description section is omitted when empty.
func BuildEnhancementPrompt(in enhancer.Input) string {
	var sb strings.Builder

	sb.WriteString(prompts.Format(prompts.MustGet(prompts.EnhancementFile, "enhance-resume"), map[string]string{
		"MaxRewrites":        strconv.Itoa(enhancer.MaxRewrites),
		"MaxMissingKeywords": strconv.Itoa(enhancer.MaxMissingKeywords),
	}))
	sb.WriteString(prompts.Format(prompts.MustGet(prompts.EnhancementFile, "resume-section"), map[string]string{
		"ResumeText": in.ResumeText,
	}))
	if strings.TrimSpace(in.JobDescription) != "" {
		sb.WriteString(prompts.Format(prompts.MustGet(prompts.EnhancementFile, "job-description-section"), map[string]string{
			"JobDescription": in.JobDescription,
		}))
	}

	return sb.String()
}
