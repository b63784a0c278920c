package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jonathan/career-path/internal/cache"
	"github.com/jonathan/career-path/internal/config"
	"github.com/jonathan/career-path/internal/llm"
	"github.com/jonathan/career-path/internal/observability"
	"github.com/jonathan/career-path/internal/pipeline"
)

// errMissingAPIKey is returned when no provider credential is configured.
var errMissingAPIKey = errors.New("an API key is required: set GEMINI_API_KEY, OPENAI_API_KEY or LLM_API_KEY")

// loadAppConfig layers the optional config file, the environment and the
// defaults, in that order of precedence from highest to lowest.
func loadAppConfig(path string) (config.Config, error) {
	var cfg config.Config
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	cfg = cfg.FromEnv()
	cfg = cfg.MergeWithDefaults(config.Defaults())
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger(cfg config.Config) *observability.GologLogger {
	level := cfg.LogLevel
	if cfg.Verbose && level != "debug" {
		level = "debug"
	}
	return observability.NewLogger(os.Stderr, level)
}

// backend bundles everything a roadmap run needs from the reasoning service.
type backend struct {
	client llm.Client
	cache  *cache.ResponseCache
	redis  *cache.RedisStore
	runner *pipeline.Runner
}

// Close releases the reasoning client and the shared cache connection.
func (b *backend) Close() {
	if b.redis != nil {
		_ = b.redis.Close()
	}
	if b.client != nil {
		_ = b.client.Close()
	}
}

// newBackend builds client → reasoner → cached reasoner → runner from cfg.
func newBackend(ctx context.Context, cfg config.Config, logger observability.Logger) (*backend, error) {
	if cfg.APIKey == "" {
		return nil, errMissingAPIKey
	}

	llmCfg := llm.DefaultConfigFor(cfg.LLMProvider())
	llmCfg.BaseURL = cfg.BaseURL
	client, err := llm.NewClient(ctx, llmCfg, cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", llmCfg.Provider, err)
	}

	mode, ok := llm.ParseDeploymentMode(cfg.DeploymentMode)
	if !ok {
		logger.Warn("unknown deployment mode %q, using %s", cfg.DeploymentMode, mode)
	}

	retry := llm.DefaultRetryConfig
	retry.MaxRetries = cfg.MaxRetries

	reasoner := llm.NewReasoner(client, llm.ReasonerOptions{
		Mode:    mode,
		Timeout: cfg.LLMTimeout(),
		Retry:   retry,
		Logger:  logger,
	})

	b := &backend{client: client}
	cacheOpts := cache.Options{TTL: cfg.CacheTTL(), Logger: logger}
	if cfg.RedisURL != "" {
		if store := connectRedis(ctx, cfg.RedisURL, logger); store != nil {
			b.redis = store
			cacheOpts.L2 = store
		}
	}
	b.cache = cache.New(cacheOpts)

	runner, err := pipeline.NewRunner(llm.NewCachedReasoner(reasoner, b.cache, pipeline.CheckResponse, logger), pipeline.Options{
		MaxResumeLength:       cfg.MaxResumeLength,
		MaxSkillGaps:          cfg.MaxSkillGaps,
		MaxConcurrentJobCalls: cfg.MaxConcurrentJobCalls,
		Logger:                logger,
	})
	if err != nil {
		b.Close()
		return nil, err
	}
	b.runner = runner

	logger.Info("reasoning backend: provider=%s mode=%s", llmCfg.Provider, mode)
	return b, nil
}

// connectRedis returns a reachable redis store, or nil so the cache stays
// in-process only.
func connectRedis(ctx context.Context, url string, logger observability.Logger) *cache.RedisStore {
	store, err := cache.NewRedisStore(cache.RedisOptions{URL: url})
	if err != nil {
		logger.Warn("shared cache disabled: %v", err)
		return nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		logger.Warn("shared cache disabled, redis unreachable: %v", err)
		_ = store.Close()
		return nil
	}
	logger.Info("shared cache enabled")
	return store
}
