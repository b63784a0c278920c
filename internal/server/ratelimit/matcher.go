package ratelimit

import (
	"strings"
)

// unlimitedPaths are never rate limited: health probes and the stats endpoints
// used to inspect the limiter itself.
var unlimitedPaths = map[string]bool{
	"/health":               true,
	"/api/cache/stats":      true,
	"/api/rate-limit/stats": true,
}

// MatchEndpoint matches a request path and method to an endpoint configuration.
// Returns the matching EndpointConfig or nil if no match is found.
// Path matching supports prefix matching (e.g., "/api/roadmaps/" matches "/api/roadmaps/{id}/progress").
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if method == "GET" && unlimitedPaths[path] {
		return &EndpointConfig{Path: path, Method: method}
	}

	for i := range configs {
		config := &configs[i]
		if config.Path == path && config.Method == method {
			return config
		}
	}

	// Longest prefix wins so nested routes can override broader ones.
	var best *EndpointConfig
	for i := range configs {
		config := &configs[i]
		if config.Method != method || !strings.HasSuffix(config.Path, "/") || !strings.HasPrefix(path, config.Path) {
			continue
		}
		if best == nil || len(config.Path) > len(best.Path) {
			best = config
		}
	}
	return best
}
