package pipeline

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/jonathan/career-path/internal/llm"
	"github.com/jonathan/career-path/internal/prompts"
	"github.com/jonathan/career-path/internal/types"
	"github.com/jonathan/career-path/internal/validation"
)

type criticalReview struct {
	OverallRating   float64  `json:"overallRating"`
	ReadinessLevel  string   `json:"readinessLevel"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	RedFlags        []string `json:"redFlags"`
	ActionableSteps []string `json:"actionableSteps"`
	Summary         string   `json:"summary"`
}

// reviewCandidate asks for a candid readiness assessment. On failure the
// review stays nil.
func (r *Runner) reviewCandidate(ctx context.Context, state *types.PipelineState) Update {
	data := map[string]string{
		"TargetJobs": listOrNone(state.TargetJobs),
		"Skills":     listOrNone(state.CurrentSkills),
		"Experience": formatExperience(state.ExperienceYears),
		"Strengths":  listOrNone(state.Strengths),
		"FitScore":   strconv.Itoa(state.FitScore),
		"GapCount":   strconv.Itoa(len(state.SkillGaps)),
	}
	desc, err := prompts.Render(prompts.RoadmapFile, "critical-review", data)
	if err != nil {
		return Update{Err: err}
	}
	prompt := llm.BuildExtractionPrompt(llm.CriticalReviewSchema(desc), "")

	var result criticalReview
	if err := r.callStructured(ctx, llm.StageCriticalReview, prompt, &result); err != nil {
		return Update{Err: err}
	}

	review := &types.CriticalReview{
		OverallRating:   clampRating(result.OverallRating),
		ReadinessLevel:  validation.SanitizeText(result.ReadinessLevel, 50),
		Strengths:       validation.SanitizeList(result.Strengths, 0),
		Weaknesses:      validation.SanitizeList(result.Weaknesses, 0),
		RedFlags:        validation.SanitizeList(result.RedFlags, 0),
		ActionableSteps: validation.SanitizeList(result.ActionableSteps, 0),
		Summary:         validation.SanitizeText(result.Summary, 0),
	}
	return Update{
		Apply: func(s *types.PipelineState) {
			s.CriticalReview = review
		},
	}
}

// clampRating rounds a model rating into 1..10.
func clampRating(v float64) int {
	if math.IsNaN(v) {
		return 1
	}
	rating := int(math.Round(v))
	if rating < 1 {
		return 1
	}
	if rating > 10 {
		return 10
	}
	return rating
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

func formatExperience(years map[string]int) string {
	if len(years) == 0 {
		return "none stated"
	}
	categories := make([]string, 0, len(years))
	for category := range years {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	parts := make([]string, len(categories))
	for i, category := range categories {
		parts[i] = fmt.Sprintf("%s: %d years", category, years[category])
	}
	return strings.Join(parts, ", ")
}
