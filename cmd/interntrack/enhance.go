package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/jonathan/interntrack/internal/enhancer"
	"github.com/jonathan/interntrack/internal/fetch"
	"github.com/jonathan/interntrack/internal/ingestion"
	"github.com/jonathan/interntrack/internal/logging"
	"github.com/jonathan/interntrack/internal/observability"
)

var enhanceCmd = &cobra.Command{
	Use:   "enhance",
	Short: "Score and rewrite a resume against a job description",
	Long: `Run the resume enhancer over a text or PDF resume and print the JSON report.
The job description can be given inline, read from a file or fetched from a posting URL.`,
	RunE: runEnhance,
}

// enhanceOptions are the inputs of one enhance run.
type enhanceOptions struct {
	ResumeFile     string
	JobDescription string
	JobFile        string
	JobURL         string
	UseAI          bool
	// Format is "json" (default) or "text".
	Format string
}

var enhanceOpts enhanceOptions

func init() {
	enhanceCmd.Flags().StringVarP(&enhanceOpts.ResumeFile, "resume", "r", "", "Path to the resume (.pdf or text file)")
	enhanceCmd.Flags().StringVarP(&enhanceOpts.JobDescription, "job-description", "j", "", "Job description text")
	enhanceCmd.Flags().StringVar(&enhanceOpts.JobFile, "job-file", "", "Path to a job description file")
	enhanceCmd.Flags().StringVarP(&enhanceOpts.JobURL, "job-url", "u", "", "Job posting URL to fetch the description from")
	enhanceCmd.Flags().BoolVar(&enhanceOpts.UseAI, "ai", false, "Use the AI path (falls back to offline without a configured backend)")
	enhanceCmd.Flags().StringVarP(&enhanceOpts.Format, "format", "f", "json", "Output format: json or text")

	_ = enhanceCmd.MarkFlagRequired("resume")
	enhanceCmd.MarkFlagsMutuallyExclusive("job-description", "job-file", "job-url")

	rootCmd.AddCommand(enhanceCmd)
}

func runEnhance(cmd *cobra.Command, _ []string) error {
	logger := logging.New("warn")

	e := enhancer.Enhancer{Logger: logger}
	if enhanceOpts.UseAI {
		built, closeBackend, err := buildEnhancer(cmd.Context(), logger)
		if err != nil {
			return err
		}
		defer closeBackend()
		e = built
	}

	return enhance(cmd.Context(), e, fetch.NewCachedFetcher(nil), enhanceOpts, cmd.OutOrStdout())
}

// enhance resolves the inputs of opts, runs the enhancer and writes the report to w.
func enhance(ctx context.Context, e enhancer.Enhancer, fetcher ingestion.PostingFetcher, opts enhanceOptions, w io.Writer) error {
	switch opts.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("unknown output format %q (want json or text)", opts.Format)
	}

	resume, err := ingestion.FromFile(opts.ResumeFile)
	if err != nil {
		return fmt.Errorf("failed to read resume: %w", err)
	}
	if resume.Text == "" {
		return fmt.Errorf("resume %s has no text", opts.ResumeFile)
	}

	jobDescription, err := resolveJobDescription(ctx, fetcher, opts, e.Logger)
	if err != nil {
		return err
	}

	in := enhancer.Input{ResumeText: resume.Text, JobDescription: jobDescription}
	var report enhancer.Report
	if opts.UseAI {
		report = e.EnhanceWithAI(ctx, in)
	} else {
		report = e.EnhanceOffline(in)
	}
	if resume.Metadata.Source == ingestion.SourcePDF {
		report.ExtractedChars = utf8.RuneCountInString(resume.Text)
	}

	if opts.Format == "text" {
		observability.NewPrinter(w).PrintReport(report)
		return nil
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func resolveJobDescription(ctx context.Context, fetcher ingestion.PostingFetcher, opts enhanceOptions, logger *slog.Logger) (string, error) {
	switch {
	case opts.JobFile != "":
		doc, err := ingestion.FromFile(opts.JobFile)
		if err != nil {
			return "", fmt.Errorf("failed to read job description: %w", err)
		}
		return doc.Text, nil
	case opts.JobURL != "":
		doc, err := ingestion.FromURL(ctx, fetcher, opts.JobURL)
		if err != nil {
			return "", fmt.Errorf("failed to fetch job posting: %w", err)
		}
		if logger != nil {
			logger.Info("job posting fetched", "url", opts.JobURL, "platform", doc.Metadata.Platform)
		}
		return doc.Text, nil
	default:
		return opts.JobDescription, nil
	}
}
