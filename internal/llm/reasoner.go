package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jonathan/career-path/internal/observability"
)

// DefaultCallTimeout bounds one reasoning call, retries included.
const DefaultCallTimeout = 30 * time.Second

// ReasonerOptions configures a Reasoner.
type ReasonerOptions struct {
	Mode    DeploymentMode
	Timeout time.Duration
	Retry   RetryConfig
	Logger  observability.Logger
}

// Reasoner routes each pipeline stage to the model tier its deployment mode
// assigns, under a per-call timeout with bounded retries.
type Reasoner struct {
	client  Client
	mode    DeploymentMode
	timeout time.Duration
	retry   RetryConfig
	logger  observability.Logger
}

// NewReasoner creates a Reasoner over client.
func NewReasoner(client Client, opts ReasonerOptions) *Reasoner {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultCallTimeout
	}
	if opts.Logger == nil {
		opts.Logger = observability.NopLogger()
	}
	if opts.Mode == "" {
		opts.Mode = ModeTesting
	}
	return &Reasoner{
		client:  client,
		mode:    opts.Mode,
		timeout: opts.Timeout,
		retry:   opts.Retry,
		logger:  opts.Logger,
	}
}

// ModelFor returns the model name a stage is routed to.
func (r *Reasoner) ModelFor(stage Stage) string {
	return r.client.GetModel(TierFor(r.mode, stage))
}

// Mode returns the deployment mode in effect.
func (r *Reasoner) Mode() DeploymentMode {
	return r.mode
}

// Invoke sends prompt to the model for stage and returns the raw response text.
// Every failure is returned as *ReasoningCallError.
func (r *Reasoner) Invoke(ctx context.Context, stage Stage, prompt string) (string, error) {
	tier := TierFor(r.mode, stage)
	model := r.client.GetModel(tier)

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	retry := r.retry
	onRetry := r.retry.OnRetry
	retry.OnRetry = func(attempt int, wait time.Duration, err error) {
		r.logger.Warn("stage %s: retry %d in %s after: %v", stage, attempt, wait, err)
		if onRetry != nil {
			onRetry(attempt, wait, err)
		}
	}

	start := time.Now()
	text, err := RetryDo(callCtx, retry, func() (string, error) {
		return r.client.GenerateJSON(callCtx, prompt, tier)
	})
	if err != nil {
		msg := "generation failed"
		if errors.Is(err, context.DeadlineExceeded) {
			msg = "timed out after " + r.timeout.String()
		}
		return "", &ReasoningCallError{Stage: stage, Model: model, Message: msg, Cause: err}
	}
	if strings.TrimSpace(text) == "" {
		return "", &ReasoningCallError{Stage: stage, Model: model, Message: "empty response"}
	}

	r.logger.Debug("stage %s: %s responded in %s (%d bytes)", stage, model, time.Since(start).Round(time.Millisecond), len(text))
	return text, nil
}

// ResponseCache stores model responses keyed by model and prompt.
type ResponseCache interface {
	Get(ctx context.Context, model, prompt string) (string, bool)
	Set(ctx context.Context, model, prompt, response string)
}

// ResponseValidator decides whether a response is fit to be cached.
type ResponseValidator func(stage Stage, text string) error

// CachedReasoner serves repeated prompts from a ResponseCache. A response is
// cached only when the validator accepts it; without one, any response that
// carries an extractable JSON object is cached.
type CachedReasoner struct {
	next     *Reasoner
	cache    ResponseCache
	validate ResponseValidator
	logger   observability.Logger
}

// NewCachedReasoner wraps next with cache.
func NewCachedReasoner(next *Reasoner, cache ResponseCache, validate ResponseValidator, logger observability.Logger) *CachedReasoner {
	if logger == nil {
		logger = observability.NopLogger()
	}
	if validate == nil {
		validate = func(_ Stage, text string) error {
			_, err := ExtractJSON(text)
			return err
		}
	}
	return &CachedReasoner{next: next, cache: cache, validate: validate, logger: logger}
}

// Invoke returns a cached response when present, otherwise calls through.
func (c *CachedReasoner) Invoke(ctx context.Context, stage Stage, prompt string) (string, error) {
	model := c.next.ModelFor(stage)
	if cached, ok := c.cache.Get(ctx, model, prompt); ok {
		c.logger.Debug("stage %s: cache hit", stage)
		return cached, nil
	}

	text, err := c.next.Invoke(ctx, stage, prompt)
	if err != nil {
		return "", err
	}
	if err := c.validate(stage, text); err != nil {
		c.logger.Debug("stage %s: response not cached: %v", stage, err)
		return text, nil
	}
	c.cache.Set(ctx, model, prompt, text)
	return text, nil
}
