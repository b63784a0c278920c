package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Default per-client limits for the roadmap generation endpoints.
const (
	DefaultPerMinute = 10
	DefaultPerHour   = 100
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
// A zero limit leaves that window unbounded; both zero means unlimited.
type EndpointConfig struct {
	Path      string // Endpoint path pattern (supports prefix matching)
	Method    string // HTTP method (GET, POST, etc.)
	PerMinute int
	PerHour   int
}

// LoadConfig builds the limiter configuration. The generation endpoints get
// perMinute/perHour; everything else, and the switches, come from the environment.
func LoadConfig(perMinute, perHour int) *Config {
	enabled := getEnvBool("RATE_LIMIT_ENABLED", true)
	if !enabled {
		return &Config{Enabled: false}
	}

	if perMinute <= 0 {
		perMinute = DefaultPerMinute
	}
	if perHour <= 0 {
		perHour = DefaultPerHour
	}

	return &Config{
		Enabled:          enabled,
		DefaultPerMinute: getEnvInt("RATE_LIMIT_DEFAULT_PER_MINUTE", 120),
		DefaultPerHour:   getEnvInt("RATE_LIMIT_DEFAULT_PER_HOUR", 0),
		CleanupInterval:  getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Whitelist:        parseIPList(getEnvString("RATE_LIMIT_WHITELIST", "")),
		Blacklist:        parseIPList(getEnvString("RATE_LIMIT_BLACKLIST", "")),
		EndpointConfigs:  DefaultEndpointConfigs(perMinute, perHour),
	}
}

// DefaultEndpointConfigs returns the endpoint-specific configurations.
func DefaultEndpointConfigs(perMinute, perHour int) []EndpointConfig {
	return []EndpointConfig{
		// Expensive: every request runs the full pipeline
		{Path: "/api/roadmaps/generate", Method: "POST", PerMinute: perMinute, PerHour: perHour},
		{Path: "/api/roadmaps/generate/stream", Method: "POST", PerMinute: perMinute, PerHour: perHour},

		// Cheap computations and progress writes
		{Path: "/api/compare", Method: "POST", PerMinute: 60},
		{Path: "/api/effort", Method: "POST", PerMinute: 60},
		{Path: "/api/roadmaps/", Method: "PUT", PerMinute: 120},
	}
}

// getEnvString gets an environment variable as a string with a default value.
func getEnvString(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as an integer with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets an environment variable as a boolean with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration gets an environment variable as a duration with a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a map.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
