package fetch

import (
	"context"
	"sync"
	"time"
)

// DefaultCacheTTL is how long a fetched job posting is reused.
const DefaultCacheTTL = 30 * time.Minute

// DefaultCacheEntries bounds the number of postings kept in memory.
const DefaultCacheEntries = 256

// CachedFetcher wraps JobPosting with an in-memory cache keyed by URL.
// Only successful fetches are cached. It is safe for concurrent use.
type CachedFetcher struct {
	options    *Options
	cacheTTL   time.Duration
	maxEntries int
	now        func() time.Time
	fetch      func(ctx context.Context, urlStr string, opts *Options) (*Result, error)

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	result    *Result
	expiresAt time.Time
}

// CachedFetcherConfig holds configuration for the cached fetcher.
type CachedFetcherConfig struct {
	CacheTTL   time.Duration
	MaxEntries int
	Options    *Options
}

// DefaultCachedFetcherConfig returns sensible defaults.
func DefaultCachedFetcherConfig() *CachedFetcherConfig {
	return &CachedFetcherConfig{
		CacheTTL:   DefaultCacheTTL,
		MaxEntries: DefaultCacheEntries,
		Options:    DefaultOptions(),
	}
}

// NewCachedFetcher creates a new cached fetcher.
func NewCachedFetcher(config *CachedFetcherConfig) *CachedFetcher {
	if config == nil {
		config = DefaultCachedFetcherConfig()
	}
	if config.Options == nil {
		config.Options = DefaultOptions()
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = DefaultCacheTTL
	}
	if config.MaxEntries <= 0 {
		config.MaxEntries = DefaultCacheEntries
	}
	return &CachedFetcher{
		options:    config.Options,
		cacheTTL:   config.CacheTTL,
		maxEntries: config.MaxEntries,
		now:        time.Now,
		fetch:      JobPosting,
		entries:    make(map[string]cacheEntry),
	}
}

// JobPosting returns the posting text for urlStr, from cache when fresh.
func (f *CachedFetcher) JobPosting(ctx context.Context, urlStr string) (*Result, error) {
	if result, ok := f.lookup(urlStr); ok {
		return result, nil
	}

	result, err := f.fetch(ctx, urlStr, f.options)
	if err != nil {
		return nil, err
	}

	f.store(urlStr, result)
	return result, nil
}

// Invalidate drops a cached posting, forcing a re-fetch on next request.
func (f *CachedFetcher) Invalidate(urlStr string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, urlStr)
}

// Len returns the number of cached postings, including expired ones not yet evicted.
func (f *CachedFetcher) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

func (f *CachedFetcher) lookup(urlStr string) (*Result, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entry, ok := f.entries[urlStr]
	if !ok {
		return nil, false
	}
	if !f.now().Before(entry.expiresAt) {
		delete(f.entries, urlStr)
		return nil, false
	}
	return entry.result, true
}

func (f *CachedFetcher) store(urlStr string, result *Result) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	if len(f.entries) >= f.maxEntries {
		f.evictLocked(now)
	}
	f.entries[urlStr] = cacheEntry{result: result, expiresAt: now.Add(f.cacheTTL)}
}

// evictLocked drops expired entries, then the entry closest to expiry if still full.
func (f *CachedFetcher) evictLocked(now time.Time) {
	var (
		oldestKey string
		oldestAt  time.Time
	)
	for key, entry := range f.entries {
		if !now.Before(entry.expiresAt) {
			delete(f.entries, key)
			continue
		}
		if oldestKey == "" || entry.expiresAt.Before(oldestAt) {
			oldestKey, oldestAt = key, entry.expiresAt
		}
	}
	if len(f.entries) >= f.maxEntries && oldestKey != "" {
		delete(f.entries, oldestKey)
	}
}
