package pipeline

import (
	"fmt"

	"github.com/jonathan/career-path/internal/llm"
	"github.com/jonathan/career-path/internal/schemas"
	"github.com/jonathan/career-path/internal/types"
)

// StageDefinition defines metadata for a pipeline stage
type StageDefinition struct {
	Name         llm.Stage
	Status       types.WorkflowStatus // status reported once the stage has run
	Dependencies []llm.Stage
	External     bool   // whether the stage calls the reasoning service
	Schema       string // response schema for External stages
}

// Registry lists every stage in execution order.
var Registry = []StageDefinition{
	{
		Name:     llm.StageResumeAnalyzer,
		Schema:   schemas.ResumeAnalysis,
		Status:   types.StatusResumeAnalyzed,
		External: true,
	},
	{
		Name:     llm.StageJobParser,
		Schema:   schemas.JobRequirements,
		Status:   types.StatusJobsParsed,
		External: true,
	},
	{
		Name:         llm.StageGapAnalysis,
		Status:       types.StatusGapsAnalyzed,
		Dependencies: []llm.Stage{llm.StageResumeAnalyzer, llm.StageJobParser},
	},
	{
		Name:         llm.StageLearningPath,
		Schema:       schemas.LearningPath,
		Status:       types.StatusLearningPathGenerated,
		Dependencies: []llm.Stage{llm.StageGapAnalysis},
		External:     true,
	},
	{
		Name:         llm.StageCriticalReview,
		Schema:       schemas.CriticalReview,
		Status:       types.StatusReviewComplete,
		Dependencies: []llm.Stage{llm.StageResumeAnalyzer, llm.StageGapAnalysis},
		External:     true,
	},
	{
		Name:         llm.StageRoadmapGenerator,
		Status:       types.StatusComplete,
		Dependencies: []llm.Stage{llm.StageGapAnalysis},
	},
}

// DependencyError represents a dependency validation error
type DependencyError struct {
	Stage               llm.Stage
	MissingDependencies []llm.Stage
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("stage %s: missing dependencies: %v", e.Stage, e.MissingDependencies)
}

// Lookup returns the registry definition for a stage.
func Lookup(name llm.Stage) (StageDefinition, bool) {
	for _, def := range Registry {
		if def.Name == name {
			return def, true
		}
	}
	return StageDefinition{}, false
}

// CheckResponse reports whether text is a usable response for stage: it must
// carry a JSON object that satisfies the stage's response schema.
func CheckResponse(stage llm.Stage, text string) error {
	raw, err := llm.ExtractJSON(text)
	if err != nil {
		return err
	}
	def, ok := Lookup(stage)
	if !ok || def.Schema == "" {
		return nil
	}
	return schemas.ValidateResponse(def.Schema, raw)
}

// ValidateOrder checks that every stage appears once and only after all of
// its dependencies.
func ValidateOrder(defs []StageDefinition) error {
	seen := make(map[llm.Stage]bool, len(defs))
	for _, def := range defs {
		if seen[def.Name] {
			return fmt.Errorf("stage %s registered twice", def.Name)
		}
		var missing []llm.Stage
		for _, dep := range def.Dependencies {
			if !seen[dep] {
				missing = append(missing, dep)
			}
		}
		if len(missing) > 0 {
			return &DependencyError{Stage: def.Name, MissingDependencies: missing}
		}
		seen[def.Name] = true
	}
	return nil
}
