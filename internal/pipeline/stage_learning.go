package pipeline

import (
	"context"
	"strings"

	"github.com/jonathan/career-path/internal/llm"
	"github.com/jonathan/career-path/internal/prompts"
	"github.com/jonathan/career-path/internal/types"
)

type learningPath struct {
	Courses        []types.Course        `json:"courses"`
	Projects       []types.Project       `json:"projects"`
	Certifications []types.Certification `json:"certifications"`
}

// generateLearningPath recommends resources for the top skill gaps. With no
// gaps there is nothing to learn and the reasoning service is not called.
func (r *Runner) generateLearningPath(ctx context.Context, state *types.PipelineState) Update {
	top := topGaps(state.SkillGaps, r.opts.MaxSkillGaps)
	if len(top) == 0 {
		return Update{}
	}

	names := make([]string, len(top))
	for i, gap := range top {
		names[i] = gap.Skill
	}

	desc, err := prompts.Render(prompts.RoadmapFile, "learning-path", map[string]string{"Skills": strings.Join(names, ", ")})
	if err != nil {
		return Update{Err: err}
	}
	prompt := llm.BuildExtractionPrompt(llm.LearningPathSchema(desc), "")

	var result learningPath
	if err := r.callStructured(ctx, llm.StageLearningPath, prompt, &result); err != nil {
		return Update{Err: err}
	}

	courses := result.Courses
	if courses == nil {
		courses = []types.Course{}
	}
	projects := result.Projects
	if projects == nil {
		projects = []types.Project{}
	}
	for i := range projects {
		if projects[i].Skills == nil {
			projects[i].Skills = []string{}
		}
	}
	certifications := result.Certifications
	if certifications == nil {
		certifications = []types.Certification{}
	}

	return Update{
		Apply: func(s *types.PipelineState) {
			s.Courses = courses
			s.Projects = projects
			s.Certifications = certifications
		},
	}
}

func topGaps(gaps []types.GapEntry, n int) []types.GapEntry {
	if n > 0 && len(gaps) > n {
		return gaps[:n]
	}
	return gaps
}
