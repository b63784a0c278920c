package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/career-path/internal/llm"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"provider": "openai",
		"deployment_mode": "OPTIMIZED",
		"max_skill_gaps": 3,
		"allowed_origins": ["https://app.example.com"],
		"redis_url": "redis://localhost:6379/0",
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "OPTIMIZED", cfg.DeploymentMode)
	assert.Equal(t, 3, cfg.MaxSkillGaps)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(`{ invalid json }`), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 2000, cfg.MaxResumeLength)
	assert.Equal(t, 5, cfg.MaxSkillGaps)
	assert.Equal(t, 5, cfg.MaxTargetJobs)
	assert.Equal(t, 30*time.Second, cfg.LLMTimeout())
	assert.Equal(t, 120*time.Second, cfg.WorkflowTimeout())
	assert.Equal(t, time.Hour, cfg.CacheTTL())
	assert.Equal(t, 10, cfg.RateLimitPerMinute)
	assert.Equal(t, 100, cfg.RateLimitPerHour)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, llm.ProviderGemini, cfg.LLMProvider())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "empty config is valid", cfg: Config{}},
		{name: "unsupported provider", cfg: Config{Provider: "claude-local"}, wantErr: "unsupported provider"},
		{name: "provider is case-insensitive", cfg: Config{Provider: "OpenAI"}},
		{name: "negative gaps", cfg: Config{MaxSkillGaps: -1}, wantErr: "max_skill_gaps"},
		{name: "negative rate limit", cfg: Config{RateLimitPerHour: -5}, wantErr: "rate_limit_per_hour"},
		{name: "port out of range", cfg: Config{Port: 70000}, wantErr: "port"},
		{name: "workflow shorter than call", cfg: Config{LLMTimeoutSeconds: 60, WorkflowTimeoutSeconds: 30}, wantErr: "workflow_timeout_seconds"},
		{name: "unknown mode", cfg: Config{DeploymentMode: "TURBO"}, wantErr: "deployment mode"},
		{name: "known mode lower case", cfg: Config{DeploymentMode: "premium"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	partial := Config{
		Provider:     "openai",
		MaxSkillGaps: 3,
	}

	merged := partial.MergeWithDefaults(Defaults())

	// Custom values should be preserved
	assert.Equal(t, "openai", merged.Provider)
	assert.Equal(t, 3, merged.MaxSkillGaps)

	// Default values should fill in empty fields
	assert.Equal(t, 2000, merged.MaxResumeLength)
	assert.Equal(t, "TESTING", merged.DeploymentMode)
	assert.Equal(t, "info", merged.LogLevel)
	assert.NotEmpty(t, merged.AllowedOrigins)
	assert.Equal(t, 8080, merged.Port)
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := Config{Provider: "gemini", Port: 9000}

	merged := cfg.MergeWithDefaults(Config{})

	assert.Equal(t, "gemini", merged.Provider)
	assert.Equal(t, 9000, merged.Port)
	assert.Zero(t, merged.MaxSkillGaps)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("DEPLOYMENT_MODE", "PREMIUM")
	t.Setenv("MAX_SKILL_GAPS", "7")
	t.Setenv("WORKFLOW_TIMEOUT", "not-a-number")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("REDIS_URL", "redis://cache:6379/1")
	t.Setenv("VERBOSE", "true")

	cfg := Defaults().FromEnv()

	assert.Equal(t, llm.ProviderOpenAI, cfg.LLMProvider())
	assert.Equal(t, "sk-test", cfg.APIKey)
	assert.Equal(t, "PREMIUM", cfg.DeploymentMode)
	assert.Equal(t, 7, cfg.MaxSkillGaps)
	assert.Equal(t, DefaultWorkflowTimeoutSeconds, cfg.WorkflowTimeoutSeconds, "unparseable values keep the default")
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, "redis://cache:6379/1", cfg.RedisURL)
	assert.True(t, cfg.Verbose)
}

func TestFromEnv_GenericKeyWins(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("LLM_API_KEY", "generic-key")

	cfg := Config{Provider: "gemini"}.FromEnv()
	assert.Equal(t, "generic-key", cfg.APIKey)
}

func TestFromEnv_KeepsFileValues(t *testing.T) {
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("PORT", "")

	cfg := Config{APIKey: "from-file", Port: 9090}.FromEnv()
	assert.Equal(t, "from-file", cfg.APIKey)
	assert.Equal(t, 9090, cfg.Port)
}
