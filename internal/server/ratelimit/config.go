package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig limits one method on a path. A Path ending in "/" covers every path below it.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int           // requests per Window
	Window time.Duration
	Burst  int           // bucket capacity; 0 means Limit
}

// LoadConfig reads the RATE_LIMIT_* environment. Unparsable values fall back to the default.
func LoadConfig() *Config {
	if !envOr("RATE_LIMIT_ENABLED", true, strconv.ParseBool) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    envOr("RATE_LIMIT_DEFAULT_LIMIT", 1000, strconv.Atoi),
		DefaultWindow:   envOr("RATE_LIMIT_DEFAULT_WINDOW", time.Minute, time.ParseDuration),
		CleanupInterval: envOr("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute, time.ParseDuration),
		IdleTTL:         envOr("RATE_LIMIT_IDLE_TTL", time.Hour, time.ParseDuration),
		Whitelist:       parseIPList(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the per-endpoint limits. Reads not listed here use the default limit.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// credential endpoints: slow down guessing
		{Path: "/api/auth/signup", Method: "POST", Limit: 10, Window: time.Hour, Burst: 5},
		{Path: "/api/auth/login", Method: "POST", Limit: 30, Window: 15 * time.Minute, Burst: 10},

		// PDF parsing, URL fetching and AI calls
		{Path: "/api/resume/", Method: "POST", Limit: 60, Window: time.Hour, Burst: 10},

		{Path: "/api/apps", Method: "POST", Limit: 100, Window: time.Minute, Burst: 20},
		{Path: "/api/apps/", Method: "PUT", Limit: 100, Window: time.Minute, Burst: 20},
		{Path: "/api/apps/", Method: "DELETE", Limit: 100, Window: time.Minute, Burst: 20},
	}
}

func envOr[T any](key string, def T, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}

// parseIPList turns "a, b,,c" into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
