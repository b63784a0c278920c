// Package pipeline provides the high-level orchestration for roadmap generation.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jonathan/career-path/internal/llm"
	"github.com/jonathan/career-path/internal/observability"
	"github.com/jonathan/career-path/internal/schemas"
	"github.com/jonathan/career-path/internal/types"
)

// Defaults applied when Options leaves a limit unset.
const (
	DefaultMaxResumeLength       = 2000
	DefaultMaxSkillGaps          = 5
	DefaultMaxConcurrentJobCalls = 5
)

// Reasoner sends a prompt to the reasoning service on behalf of a stage.
// Failures are *llm.ReasoningCallError.
type Reasoner interface {
	Invoke(ctx context.Context, stage llm.Stage, prompt string) (string, error)
}

// Input is the immutable request a run starts from.
type Input struct {
	ResumeText     string
	TargetJobs     []string
	JobDescription string
	SpecialtyFocus string
}

// Options holds the limits and collaborators of a Runner.
type Options struct {
	MaxResumeLength       int
	MaxSkillGaps          int
	MaxConcurrentJobCalls int
	Logger                observability.Logger
}

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Stage    llm.Stage            `json:"stage"`
	Status   types.WorkflowStatus `json:"status"`
	Message  string               `json:"message"`
	Degraded bool                 `json:"degraded"`
	Error    string               `json:"error,omitempty"`
	Duration int64                `json:"duration_ms"`
}

// ProgressCallback is called after every stage
type ProgressCallback func(event ProgressEvent)

// RunOptions holds per-run settings
type RunOptions struct {
	OnProgress ProgressCallback
}

// Update is the partial result a stage hands back to the orchestrator.
// Apply, when set, writes the stage's outputs into the state. A non-nil Err
// marks the stage degraded; Apply still runs so partial results survive.
type Update struct {
	Status types.WorkflowStatus
	Apply  func(state *types.PipelineState)
	Err    error
}

type stageFunc func(ctx context.Context, state *types.PipelineState) Update

// Runner executes the fixed stage sequence. It holds no per-run state and is
// safe for concurrent use.
type Runner struct {
	reasoner Reasoner
	opts     Options
	logger   observability.Logger
	stages   map[llm.Stage]stageFunc
}

// NewRunner creates a Runner over reasoner.
func NewRunner(reasoner Reasoner, opts Options) (*Runner, error) {
	if reasoner == nil {
		return nil, errors.New("pipeline: reasoner is required")
	}
	if err := ValidateOrder(Registry); err != nil {
		return nil, fmt.Errorf("pipeline: invalid stage registry: %w", err)
	}
	if opts.MaxResumeLength <= 0 {
		opts.MaxResumeLength = DefaultMaxResumeLength
	}
	if opts.MaxSkillGaps <= 0 {
		opts.MaxSkillGaps = DefaultMaxSkillGaps
	}
	if opts.MaxConcurrentJobCalls <= 0 {
		opts.MaxConcurrentJobCalls = DefaultMaxConcurrentJobCalls
	}
	if opts.Logger == nil {
		opts.Logger = observability.NopLogger()
	}

	r := &Runner{reasoner: reasoner, opts: opts, logger: opts.Logger}
	r.stages = map[llm.Stage]stageFunc{
		llm.StageResumeAnalyzer:   r.analyzeResume,
		llm.StageJobParser:        r.parseJobs,
		llm.StageGapAnalysis:      r.analyzeGaps,
		llm.StageLearningPath:     r.generateLearningPath,
		llm.StageCriticalReview:   r.reviewCandidate,
		llm.StageRoadmapGenerator: r.generateRoadmap,
	}
	for _, def := range Registry {
		if _, ok := r.stages[def.Name]; !ok {
			return nil, fmt.Errorf("pipeline: no implementation for stage %s", def.Name)
		}
	}
	return r, nil
}

// Run executes every stage in order and returns the final state.
func (r *Runner) Run(ctx context.Context, in Input) *types.PipelineState {
	return r.RunWithOptions(ctx, in, RunOptions{})
}

// RunWithOptions executes every stage in order, reporting progress after each.
// Stage failures never abort the run: the failed stage contributes defaults
// and is listed in DegradedStages.
func (r *Runner) RunWithOptions(ctx context.Context, in Input, opts RunOptions) *types.PipelineState {
	state := types.NewPipelineState(in.ResumeText, in.TargetJobs, in.JobDescription, in.SpecialtyFocus)
	started := time.Now()

	for _, def := range Registry {
		stageStart := time.Now()
		update := r.runStage(ctx, def, state)
		update = r.applyUpdate(def, state, update)

		event := ProgressEvent{
			Stage:    def.Name,
			Status:   update.Status,
			Message:  fmt.Sprintf("%s finished", def.Name),
			Duration: time.Since(stageStart).Milliseconds(),
		}
		if update.Err != nil {
			event.Degraded = true
			event.Error = update.Err.Error()
			event.Message = fmt.Sprintf("%s degraded", def.Name)
		}
		if opts.OnProgress != nil {
			opts.OnProgress(event)
		}
	}

	r.logger.Info("roadmap run finished in %s: fit=%d gaps=%d degraded=%v",
		time.Since(started).Round(time.Millisecond), state.FitScore, len(state.SkillGaps), state.DegradedStages)
	return state
}

// runStage invokes one stage, converting a panic into a degraded update.
func (r *Runner) runStage(ctx context.Context, def StageDefinition, state *types.PipelineState) (update Update) {
	defer func() {
		if rec := recover(); rec != nil {
			update = Update{Status: def.Status, Err: fmt.Errorf("stage %s panicked: %v", def.Name, rec)}
		}
	}()
	if err := ctx.Err(); err != nil && def.External {
		return Update{Status: def.Status, Err: fmt.Errorf("stage %s skipped: %w", def.Name, err)}
	}
	update = r.stages[def.Name](ctx, state)
	if update.Status == "" {
		update.Status = def.Status
	}
	return update
}

// applyUpdate writes update into state and returns it with any error raised
// while applying.
func (r *Runner) applyUpdate(def StageDefinition, state *types.PipelineState, update Update) Update {
	if update.Apply != nil {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					update.Err = errors.Join(update.Err, fmt.Errorf("stage %s: applying result panicked: %v", def.Name, rec))
				}
			}()
			update.Apply(state)
		}()
	}

	state.WorkflowStatus = update.Status
	if update.Err != nil {
		state.Error = update.Err.Error()
		state.DegradedStages = append(state.DegradedStages, string(def.Name))
		r.logger.Warn("stage %s degraded (%s): %v", def.Name, classify(update.Err), update.Err)
		return update
	}
	r.logger.Debug("stage %s complete", def.Name)
	return update
}

// classify names the failure category of a stage error for logs.
func classify(err error) string {
	var extractErr *llm.ExtractionError
	var callErr *llm.ReasoningCallError
	var schemaErr *schemas.ValidationError
	switch {
	case errors.As(err, &callErr):
		return "reasoning call"
	case errors.As(err, &extractErr):
		return "extraction"
	case errors.As(err, &schemaErr):
		return "response schema"
	default:
		return "internal"
	}
}

// callStructured invokes the reasoner for stage, recovers the JSON object from
// the response, validates it against the stage's response schema and decodes
// it into out.
func (r *Runner) callStructured(ctx context.Context, stage llm.Stage, prompt string, out any) error {
	def, ok := Lookup(stage)
	if !ok || def.Schema == "" {
		return fmt.Errorf("stage %s has no response schema", stage)
	}
	text, err := r.reasoner.Invoke(ctx, stage, prompt)
	if err != nil {
		return err
	}
	raw, err := llm.ExtractJSON(text)
	if err != nil {
		return err
	}
	if err := schemas.ValidateResponse(def.Schema, raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", stage, err)
	}
	return nil
}
