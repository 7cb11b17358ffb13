package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"
)

// Document sources.
const (
	SourceText = "text"
	SourcePDF  = "pdf"
	SourceURL  = "url"
)

// Document is cleaned text together with where it came from.
type Document struct {
	Text     string
	Metadata *Metadata
}

// Metadata describes an ingested document
type Metadata struct {
	Source    string `json:"source"`             // text, pdf or url
	Name      string `json:"name,omitempty"`     // file name or URL
	Platform  string `json:"platform,omitempty"` // Detected job board platform for URLs
	Timestamp string `json:"timestamp"`          // RFC3339 format
	Hash      string `json:"hash"`               // SHA256 hex digest of the cleaned text
	Chars     int    `json:"chars"`              // characters (runes) of cleaned text
}

// NewMetadata creates a new Metadata instance with current timestamp
func NewMetadata(content, source, name string) *Metadata {
	return &Metadata{
		Source:    source,
		Name:      name,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Hash:      computeHash(content),
		Chars:     utf8.RuneCountInString(content),
	}
}

// computeHash computes SHA256 hash of content and returns hex string
func computeHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// ToJSON marshals Metadata to pretty-printed JSON
func (m *Metadata) ToJSON() ([]byte, error) {
	jsonBytes, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata to JSON: %w", err)
	}
	return jsonBytes, nil
}
