package pipeline

import (
	"context"

	"github.com/jonathan/career-path/internal/skills"
	"github.com/jonathan/career-path/internal/types"
)

func (r *Runner) analyzeGaps(_ context.Context, state *types.PipelineState) Update {
	analysis := skills.Analyze(state.CurrentSkills, state.TargetJobs, state.RequiredSkills)
	return Update{
		Apply: func(s *types.PipelineState) {
			s.SkillGaps = analysis.Gaps
			s.FitScore = analysis.FitScore
			s.MatchedSkills = analysis.Matched
		},
	}
}
