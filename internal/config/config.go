// Package config provides configuration loading and validation for the CLI and the API server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/career-path/internal/llm"
)

// Default values applied by Defaults and MergeWithDefaults.
const (
	DefaultMaxResumeLength        = 2000
	DefaultMaxSkillGaps           = 5
	DefaultMaxTargetJobs          = 5
	DefaultMaxConcurrentJobCalls  = 5
	DefaultLLMTimeoutSeconds      = 30
	DefaultWorkflowTimeoutSeconds = 120
	DefaultMaxRetries             = 2
	DefaultCacheTTLMinutes        = 60
	DefaultPort                   = 8080
	DefaultRateLimitPerMinute     = 10
	DefaultRateLimitPerHour       = 100
	DefaultLogLevel               = "info"
)

// Config represents the application configuration that can be loaded from a JSON file
// and overlaid with environment variables. Zero values mean "use the default".
type Config struct {
	// Reasoning backend
	Provider       string `json:"provider,omitempty"`        // gemini or openai
	APIKey         string `json:"api_key,omitempty"`         // Provider API key
	BaseURL        string `json:"base_url,omitempty"`        // OpenAI-compatible endpoint override
	DeploymentMode string `json:"deployment_mode,omitempty"` // TESTING, OPTIMIZED or PREMIUM

	// Pipeline limits
	MaxResumeLength       int `json:"max_resume_length,omitempty"`        // Characters of resume sent to the model
	MaxSkillGaps          int `json:"max_skill_gaps,omitempty"`           // Gaps included in the learning path and graph
	MaxTargetJobs         int `json:"max_target_jobs,omitempty"`          // Target jobs accepted per request
	MaxConcurrentJobCalls int `json:"max_concurrent_job_calls,omitempty"` // Parallel job parser calls

	// Timeouts and retries
	LLMTimeoutSeconds      int `json:"llm_timeout_seconds,omitempty"`
	WorkflowTimeoutSeconds int `json:"workflow_timeout_seconds,omitempty"`
	MaxRetries             int `json:"max_retries,omitempty"`

	// Response cache
	CacheTTLMinutes int    `json:"cache_ttl_minutes,omitempty"`
	RedisURL        string `json:"redis_url,omitempty"` // Optional shared cache tier

	// Server
	Port               int      `json:"port,omitempty"`
	AllowedOrigins     []string `json:"allowed_origins,omitempty"`
	RateLimitPerMinute int      `json:"rate_limit_per_minute,omitempty"`
	RateLimitPerHour   int      `json:"rate_limit_per_hour,omitempty"`

	// Behavior
	LogLevel string `json:"log_level,omitempty"` // debug, info, warn or error
	Verbose  bool   `json:"verbose,omitempty"`   // Print detailed stage output
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	return Config{
		Provider:               string(llm.ProviderGemini),
		DeploymentMode:         string(llm.ModeTesting),
		MaxResumeLength:        DefaultMaxResumeLength,
		MaxSkillGaps:           DefaultMaxSkillGaps,
		MaxTargetJobs:          DefaultMaxTargetJobs,
		MaxConcurrentJobCalls:  DefaultMaxConcurrentJobCalls,
		LLMTimeoutSeconds:      DefaultLLMTimeoutSeconds,
		WorkflowTimeoutSeconds: DefaultWorkflowTimeoutSeconds,
		MaxRetries:             DefaultMaxRetries,
		CacheTTLMinutes:        DefaultCacheTTLMinutes,
		Port:                   DefaultPort,
		AllowedOrigins:         []string{"http://localhost:3000", "http://localhost:5173"},
		RateLimitPerMinute:     DefaultRateLimitPerMinute,
		RateLimitPerHour:       DefaultRateLimitPerHour,
		LogLevel:               DefaultLogLevel,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv returns a copy of c with every set environment variable applied on top.
// The API key is read from the provider-specific variable first, then LLM_API_KEY.
func (c Config) FromEnv() Config {
	result := c

	result.Provider = getEnvString("LLM_PROVIDER", result.Provider)
	result.BaseURL = getEnvString("LLM_BASE_URL", result.BaseURL)
	result.DeploymentMode = getEnvString("DEPLOYMENT_MODE", result.DeploymentMode)

	switch strings.ToLower(result.Provider) {
	case string(llm.ProviderOpenAI):
		result.APIKey = getEnvString("OPENAI_API_KEY", result.APIKey)
	default:
		result.APIKey = getEnvString("GEMINI_API_KEY", result.APIKey)
	}
	result.APIKey = getEnvString("LLM_API_KEY", result.APIKey)

	result.MaxResumeLength = getEnvInt("MAX_RESUME_LENGTH", result.MaxResumeLength)
	result.MaxSkillGaps = getEnvInt("MAX_SKILL_GAPS", result.MaxSkillGaps)
	result.MaxTargetJobs = getEnvInt("MAX_TARGET_JOBS", result.MaxTargetJobs)
	result.MaxConcurrentJobCalls = getEnvInt("MAX_CONCURRENT_JOB_CALLS", result.MaxConcurrentJobCalls)
	result.LLMTimeoutSeconds = getEnvInt("LLM_TIMEOUT", result.LLMTimeoutSeconds)
	result.WorkflowTimeoutSeconds = getEnvInt("WORKFLOW_TIMEOUT", result.WorkflowTimeoutSeconds)
	result.MaxRetries = getEnvInt("LLM_MAX_RETRIES", result.MaxRetries)

	result.CacheTTLMinutes = getEnvInt("CACHE_TTL_MINUTES", result.CacheTTLMinutes)
	result.RedisURL = getEnvString("REDIS_URL", result.RedisURL)

	result.Port = getEnvInt("PORT", result.Port)
	if origins := parseList(getEnvString("ALLOWED_ORIGINS", "")); len(origins) > 0 {
		result.AllowedOrigins = origins
	}
	result.RateLimitPerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", result.RateLimitPerMinute)
	result.RateLimitPerHour = getEnvInt("RATE_LIMIT_PER_HOUR", result.RateLimitPerHour)

	result.LogLevel = getEnvString("LOG_LEVEL", result.LogLevel)
	result.Verbose = getEnvBool("VERBOSE", result.Verbose)

	return result
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.Provider != "" {
		switch llm.Provider(strings.ToLower(c.Provider)) {
		case llm.ProviderGemini, llm.ProviderOpenAI:
		default:
			return fmt.Errorf("config error: unsupported provider %q", c.Provider)
		}
	}

	nonNegative := []struct {
		name  string
		value int
	}{
		{"max_resume_length", c.MaxResumeLength},
		{"max_skill_gaps", c.MaxSkillGaps},
		{"max_target_jobs", c.MaxTargetJobs},
		{"max_concurrent_job_calls", c.MaxConcurrentJobCalls},
		{"llm_timeout_seconds", c.LLMTimeoutSeconds},
		{"workflow_timeout_seconds", c.WorkflowTimeoutSeconds},
		{"max_retries", c.MaxRetries},
		{"cache_ttl_minutes", c.CacheTTLMinutes},
		{"rate_limit_per_minute", c.RateLimitPerMinute},
		{"rate_limit_per_hour", c.RateLimitPerHour},
	}
	for _, field := range nonNegative {
		if field.value < 0 {
			return fmt.Errorf("config error: '%s' must be non-negative", field.name)
		}
	}

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}

	if c.LLMTimeoutSeconds > 0 && c.WorkflowTimeoutSeconds > 0 && c.WorkflowTimeoutSeconds < c.LLMTimeoutSeconds {
		return fmt.Errorf("config error: 'workflow_timeout_seconds' must not be shorter than 'llm_timeout_seconds'")
	}

	if c.DeploymentMode != "" {
		if _, ok := llm.ParseDeploymentMode(c.DeploymentMode); !ok {
			return fmt.Errorf("config error: unknown deployment mode %q", c.DeploymentMode)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Provider == "" {
		result.Provider = defaults.Provider
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.BaseURL == "" {
		result.BaseURL = defaults.BaseURL
	}
	if result.DeploymentMode == "" {
		result.DeploymentMode = defaults.DeploymentMode
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if len(result.AllowedOrigins) == 0 {
		result.AllowedOrigins = defaults.AllowedOrigins
	}

	// Int fields: use default if zero
	ints := []struct {
		dst *int
		def int
	}{
		{&result.MaxResumeLength, defaults.MaxResumeLength},
		{&result.MaxSkillGaps, defaults.MaxSkillGaps},
		{&result.MaxTargetJobs, defaults.MaxTargetJobs},
		{&result.MaxConcurrentJobCalls, defaults.MaxConcurrentJobCalls},
		{&result.LLMTimeoutSeconds, defaults.LLMTimeoutSeconds},
		{&result.WorkflowTimeoutSeconds, defaults.WorkflowTimeoutSeconds},
		{&result.MaxRetries, defaults.MaxRetries},
		{&result.CacheTTLMinutes, defaults.CacheTTLMinutes},
		{&result.Port, defaults.Port},
		{&result.RateLimitPerMinute, defaults.RateLimitPerMinute},
		{&result.RateLimitPerHour, defaults.RateLimitPerHour},
	}
	for _, f := range ints {
		if *f.dst == 0 {
			*f.dst = f.def
		}
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// LLMProvider returns the provider as an llm.Provider, defaulting to Gemini.
func (c *Config) LLMProvider() llm.Provider {
	if c.Provider == "" {
		return llm.ProviderGemini
	}
	return llm.Provider(strings.ToLower(c.Provider))
}

// LLMTimeout returns the per-call timeout.
func (c *Config) LLMTimeout() time.Duration {
	return seconds(c.LLMTimeoutSeconds, DefaultLLMTimeoutSeconds)
}

// WorkflowTimeout returns the deadline for a whole roadmap run.
func (c *Config) WorkflowTimeout() time.Duration {
	return seconds(c.WorkflowTimeoutSeconds, DefaultWorkflowTimeoutSeconds)
}

// CacheTTL returns how long cached responses stay valid.
func (c *Config) CacheTTL() time.Duration {
	if c.CacheTTLMinutes <= 0 {
		return DefaultCacheTTLMinutes * time.Minute
	}
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

// Addr returns the listen address for the API server.
func (c *Config) Addr() string {
	port := c.Port
	if port == 0 {
		port = DefaultPort
	}
	return fmt.Sprintf(":%d", port)
}

func seconds(v, def int) time.Duration {
	if v <= 0 {
		v = def
	}
	return time.Duration(v) * time.Second
}
