// Package ingestion turns uploaded files, local files and job posting URLs into clean text.
package ingestion

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	innerSpacePattern   = regexp.MustCompile(`[ \t\f\v\x{00A0}]+`)
	excessBlankPattern  = regexp.MustCompile(`\n{3,}`)
	ligatureReplacement = strings.NewReplacer("ﬀ", "ff", "ﬁ", "fi", "ﬂ", "fl", "ﬃ", "ffi", "ﬄ", "ffl")
)

// CleanText normalizes line endings and spacing while keeping one item per line,
// so bullets survive for SplitBullets.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = ligatureReplacement.Replace(content)
	content = strings.ToValidUTF8(content, "")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	result := strings.Join(lines, "\n")
	result = excessBlankPattern.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine trims a line and collapses runs of horizontal whitespace to one space.
func cleanLine(line string) string {
	line = strings.TrimSpace(line)
	if line == "" {
		return ""
	}
	return innerSpacePattern.ReplaceAllString(line, " ")
}

// FromText wraps already-available text as a Document.
func FromText(text, name string) *Document {
	cleaned := CleanText(text)
	return &Document{Text: cleaned, Metadata: NewMetadata(cleaned, SourceText, name)}
}

// FromPDF extracts a PDF upload into a Document.
func FromPDF(data []byte, name string) (*Document, error) {
	text, err := ExtractPDFText(data)
	if err != nil {
		return nil, err
	}
	return &Document{Text: text, Metadata: NewMetadata(text, SourcePDF, name)}, nil
}

// FromFile reads a local resume or job description. Files ending in .pdf are
// parsed as PDF; anything else is read as UTF-8 text.
func FromFile(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %w", err)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	name := filepath.Base(path)
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return FromPDF(content, name)
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("file %s is not UTF-8 text", name)
	}
	return FromText(string(content), name), nil
}
