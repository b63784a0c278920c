package llm

import "strings"

// Stage names a pipeline stage that may call the reasoning service.
type Stage string

// Pipeline stages in execution order.
const (
	StageResumeAnalyzer   Stage = "resume_analyzer"
	StageJobParser        Stage = "job_parser"
	StageGapAnalysis      Stage = "gap_analysis"
	StageLearningPath     Stage = "learning_path"
	StageCriticalReview   Stage = "critical_review"
	StageRoadmapGenerator Stage = "roadmap_generator"
)

// DeploymentMode selects how much model capability each stage gets.
type DeploymentMode string

const (
	// ModeTesting uses the lite tier everywhere.
	ModeTesting DeploymentMode = "TESTING"
	// ModeOptimized spends capability where the reasoning is hardest.
	ModeOptimized DeploymentMode = "OPTIMIZED"
	// ModePremium uses the advanced tier everywhere.
	ModePremium DeploymentMode = "PREMIUM"
)

var stageTiers = map[DeploymentMode]map[Stage]ModelTier{
	ModeTesting: {
		StageResumeAnalyzer:   TierLite,
		StageJobParser:        TierLite,
		StageGapAnalysis:      TierLite,
		StageLearningPath:     TierLite,
		StageCriticalReview:   TierLite,
		StageRoadmapGenerator: TierLite,
	},
	ModeOptimized: {
		StageResumeAnalyzer:   TierLite,
		StageJobParser:        TierLite,
		StageGapAnalysis:      TierStandard,
		StageLearningPath:     TierAdvanced,
		StageCriticalReview:   TierAdvanced,
		StageRoadmapGenerator: TierStandard,
	},
	ModePremium: {
		StageResumeAnalyzer:   TierAdvanced,
		StageJobParser:        TierAdvanced,
		StageGapAnalysis:      TierAdvanced,
		StageLearningPath:     TierAdvanced,
		StageCriticalReview:   TierAdvanced,
		StageRoadmapGenerator: TierAdvanced,
	},
}

// ParseDeploymentMode parses a mode name case-insensitively. An empty or
// unknown name yields ModeTesting and ok=false so the caller can warn.
func ParseDeploymentMode(s string) (mode DeploymentMode, ok bool) {
	mode = DeploymentMode(strings.ToUpper(strings.TrimSpace(s)))
	if _, known := stageTiers[mode]; known {
		return mode, true
	}
	return ModeTesting, s == ""
}

// StageTiers returns a copy of the stage-to-tier table for a mode.
func StageTiers(mode DeploymentMode) map[Stage]ModelTier {
	table, ok := stageTiers[mode]
	if !ok {
		table = stageTiers[ModeTesting]
	}
	out := make(map[Stage]ModelTier, len(table))
	for stage, tier := range table {
		out[stage] = tier
	}
	return out
}

// TierFor returns the model tier a stage runs on under a mode.
func TierFor(mode DeploymentMode, stage Stage) ModelTier {
	table, ok := stageTiers[mode]
	if !ok {
		table = stageTiers[ModeTesting]
	}
	if tier, ok := table[stage]; ok {
		return tier
	}
	return TierStandard
}
