package pipeline

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/career-path/internal/llm"
	"github.com/jonathan/career-path/internal/prompts"
	"github.com/jonathan/career-path/internal/skills"
	"github.com/jonathan/career-path/internal/types"
	"github.com/jonathan/career-path/internal/validation"
)

type resumeAnalysis struct {
	Skills     []string       `json:"skills"`
	Experience map[string]any `json:"experience"`
	Strengths  []string       `json:"strengths"`
}

var leadingNumber = regexp.MustCompile(`\d+(\.\d+)?`)

func (r *Runner) analyzeResume(ctx context.Context, state *types.PipelineState) Update {
	resume := truncateRunes(state.ResumeText, r.opts.MaxResumeLength)
	resume = validation.GuardPromptInput(resume, "resume", r.logger)

	desc, err := prompts.Render(prompts.RoadmapFile, "analyze-resume", nil)
	if err != nil {
		return Update{Err: err}
	}
	prompt := llm.BuildExtractionPrompt(llm.ResumeAnalysisSchema(desc), validation.QuoteExternalContent(resume, "resume"))

	var result resumeAnalysis
	if err := r.callStructured(ctx, llm.StageResumeAnalyzer, prompt, &result); err != nil {
		return Update{Err: err}
	}

	current := cleanSkills(result.Skills)
	experience := experienceYears(result.Experience)
	strengths := validation.SanitizeList(result.Strengths, 0)

	return Update{
		Apply: func(s *types.PipelineState) {
			s.CurrentSkills = current
			s.ExperienceYears = experience
			s.Strengths = strengths
		},
	}
}

// cleanSkills sanitizes, deduplicates and drops entries that do not look like
// skill names.
func cleanSkills(raw []string) []string {
	sanitized := make([]string, 0, len(raw))
	for _, skill := range raw {
		sanitized = append(sanitized, validation.SanitizeText(skill, 100))
	}
	out := []string{}
	for _, skill := range skills.Deduplicate(sanitized) {
		if validation.ValidateSkillName(skill) {
			out = append(out, skill)
		}
	}
	return out
}

// experienceYears converts model-reported experience into whole years.
// Values may be numbers or strings such as "5+ years"; anything else is dropped.
func experienceYears(raw map[string]any) map[string]int {
	out := make(map[string]int, len(raw))
	for category, value := range raw {
		category = validation.SanitizeText(category, 100)
		if category == "" {
			continue
		}
		switch v := value.(type) {
		case float64:
			if v >= 0 {
				out[category] = int(math.Round(v))
			}
		case string:
			match := leadingNumber.FindString(v)
			if match == "" {
				continue
			}
			if f, err := strconv.ParseFloat(match, 64); err == nil {
				out[category] = int(math.Round(f))
			}
		}
	}
	return out
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:limit]))
}
