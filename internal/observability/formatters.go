// Package observability provides formatted text output for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/interntrack/internal/enhancer"
	"github.com/jonathan/interntrack/internal/tracker"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer writes human-readable boxes for reports and stats.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintReport outputs the keyword score, missing keywords, rewrites and ATS checks
// of an enhancement report.
func (p *Printer) PrintReport(report enhancer.Report) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Mode:           %s\n", report.Mode))
	sb.WriteString(fmt.Sprintf("Keyword score:  %d%%\n", report.KeywordScore))
	if report.ExtractedChars > 0 {
		sb.WriteString(fmt.Sprintf("Extracted:      %d chars\n", report.ExtractedChars))
	}
	if report.Note != "" {
		sb.WriteString(fmt.Sprintf("Note:           %s\n", report.Note))
	}

	if len(report.MissingKeywords) > 0 {
		sb.WriteString("\nMissing keywords:\n")
		count := min(len(report.MissingKeywords), maxItemsToShow*2)
		sb.WriteString(fmt.Sprintf("  %s\n", strings.Join(report.MissingKeywords[:count], ", ")))
		if len(report.MissingKeywords) > count {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(report.MissingKeywords)-count))
		}
	}

	p.printBox("RESUME REPORT", strings.TrimSuffix(sb.String(), "\n"))

	if len(report.Rewrites) > 0 {
		sb.Reset()
		count := min(len(report.Rewrites), maxItemsToShow)
		for i := 0; i < count; i++ {
			rw := report.Rewrites[i]
			sb.WriteString(fmt.Sprintf("- %s\n", truncate(rw.Original, 50)))
			sb.WriteString(fmt.Sprintf("+ %s\n", truncate(rw.Improved, 50)))
			if i < count-1 {
				sb.WriteString("\n")
			}
		}
		if len(report.Rewrites) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("\n... and %d more rewrites", len(report.Rewrites)-maxItemsToShow))
		}
		p.printBox("SUGGESTED REWRITES", strings.TrimSuffix(sb.String(), "\n"))
	}

	if len(report.ATSChecks) > 0 {
		sb.Reset()
		for _, check := range report.ATSChecks {
			sb.WriteString(fmt.Sprintf("⚠ %s\n", check))
		}
		p.printBox("ATS CHECKS", strings.TrimSuffix(sb.String(), "\n"))
	}
}

// PrintStats outputs the per-status breakdown and recent activity of a pipeline.
func (p *Printer) PrintStats(stats tracker.Stats) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Total:         %d\n", stats.Total))
	sb.WriteString(fmt.Sprintf("Last 7 days:   %d\n", stats.Last7))
	sb.WriteString(fmt.Sprintf("Last 30 days:  %d\n\n", stats.Last30))

	for _, s := range tracker.Statuses {
		sb.WriteString(fmt.Sprintf("%-10s %4d  %3d%%\n", s, stats.Counts[s], stats.Percent[s]))
	}

	if len(stats.Newest) > 0 {
		sb.WriteString("\nNewest:\n")
		for _, app := range stats.Newest {
			sb.WriteString(fmt.Sprintf("  • %s\n", truncate(app.Company+" · "+app.Role, 45)))
		}
	}

	p.printBox("APPLICATION STATS", strings.TrimSuffix(sb.String(), "\n"))
}
