package ratelimit

import "strings"

// unlimited is returned for health checks so probes never consume a bucket.
var unlimited = EndpointConfig{}

// MatchEndpoint returns the config for method on path, or nil when none applies.
// An exact path wins; otherwise the longest matching "/"-terminated prefix does.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if method == "GET" && (path == "/health" || path == "/api/health") {
		match := unlimited
		return &match
	}

	var best *EndpointConfig
	for i := range configs {
		c := &configs[i]
		if c.Method != method {
			continue
		}
		if c.Path == path {
			return c
		}
		if strings.HasSuffix(c.Path, "/") && strings.HasPrefix(path, c.Path) &&
			(best == nil || len(c.Path) > len(best.Path)) {
			best = c
		}
	}
	return best
}
