package ingestion

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/interntrack/internal/fetch"
)

// ErrFetchFailed wraps every failure to retrieve a job posting.
var ErrFetchFailed = errors.New("job posting fetch failed")

// PostingFetcher retrieves the readable text of a job posting.
// *fetch.CachedFetcher implements it.
type PostingFetcher interface {
	JobPosting(ctx context.Context, urlStr string) (*fetch.Result, error)
}

// FromURL fetches a job posting and returns its cleaned text.
func FromURL(ctx context.Context, fetcher PostingFetcher, urlStr string) (*Document, error) {
	result, err := fetcher.JobPosting(ctx, urlStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	cleaned := CleanText(result.Text)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetchFailed, urlStr, ErrNoText)
	}

	metadata := NewMetadata(cleaned, SourceURL, urlStr)
	metadata.Platform = string(fetch.DetectPlatform(urlStr))
	return &Document{Text: cleaned, Metadata: metadata}, nil
}
