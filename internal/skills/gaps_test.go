package skills

import (
	"testing"

	"github.com/jonathan/career-path/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gapNames(gaps []types.GapEntry) []string {
	names := make([]string, len(gaps))
	for i, g := range gaps {
		names[i] = g.Skill
	}
	return names
}

func TestAnalyze_EndToEndScenario(t *testing.T) {
	result := Analyze(
		[]string{"Python", "AWS"},
		[]string{"DevOps Engineer"},
		map[string][]string{"DevOps Engineer": {"Python", "Kubernetes", "Terraform"}},
	)

	assert.Equal(t, []string{"Kubernetes", "Terraform"}, gapNames(result.Gaps))
	assert.Equal(t, 33, result.FitScore)
	assert.Equal(t, []string{"Python"}, result.Matched)
	for _, gap := range result.Gaps {
		assert.Equal(t, "DevOps Engineer", gap.ForJob)
		assert.Equal(t, types.PriorityHigh, gap.Priority)
		assert.Equal(t, 3, gap.TimeMonths)
		assert.Equal(t, "medium", gap.Difficulty)
	}
}

func TestAnalyze_Boundaries(t *testing.T) {
	t.Run("no current skills", func(t *testing.T) {
		result := Analyze(nil, []string{"Job"}, map[string][]string{"Job": {"X", "Y"}})
		assert.Len(t, result.Gaps, 2)
		assert.Equal(t, 0, result.FitScore)
		assert.Empty(t, result.Matched)
	})

	t.Run("case-insensitive full match", func(t *testing.T) {
		result := Analyze([]string{"x"}, []string{"Job"}, map[string][]string{"Job": {"X"}})
		assert.Empty(t, result.Gaps)
		assert.Equal(t, 100, result.FitScore)
	})

	t.Run("empty inputs", func(t *testing.T) {
		result := Analyze(nil, nil, nil)
		assert.Empty(t, result.Gaps)
		assert.NotNil(t, result.Gaps)
		assert.Equal(t, 0, result.FitScore)
	})

	t.Run("job with no requirements", func(t *testing.T) {
		result := Analyze([]string{"Go"}, []string{"Job"}, map[string][]string{"Job": {}})
		assert.Empty(t, result.Gaps)
		assert.Equal(t, 0, result.FitScore)
	})
}

func TestAnalyze_Idempotent(t *testing.T) {
	current := []string{"Go", "Docker"}
	jobs := []string{"Platform Engineer", "SRE"}
	required := map[string][]string{
		"Platform Engineer": {"Go", "Kubernetes", "Terraform", "AWS", "Helm"},
		"SRE":               {"Python", "kubernetes", "Prometheus"},
	}

	first := Analyze(current, jobs, required)
	second := Analyze(current, jobs, required)

	assert.Equal(t, first, second)
}

func TestAnalyze_GapAttributedToFirstJob(t *testing.T) {
	result := Analyze(
		nil,
		[]string{"SRE", "DevOps"},
		map[string][]string{
			"SRE":    {"Kubernetes"},
			"DevOps": {"k8s", "Ansible"},
		},
	)

	require.Len(t, result.Gaps, 2)
	assert.Equal(t, "Ansible", result.Gaps[0].Skill)
	assert.Equal(t, "DevOps", result.Gaps[0].ForJob)
	assert.Equal(t, "Kubernetes", result.Gaps[1].Skill)
	assert.Equal(t, "SRE", result.Gaps[1].ForJob)
}

func TestAnalyze_FanOutPriority(t *testing.T) {
	result := Analyze(
		nil,
		[]string{"Small", "Large"},
		map[string][]string{
			"Small": {"Zig", "Elixir"},
			"Large": {"Scala", "Haskell", "OCaml", "Erlang"},
		},
	)

	assert.Equal(t, []string{"Elixir", "Zig", "Erlang", "Haskell", "OCaml", "Scala"}, gapNames(result.Gaps))
	assert.Equal(t, types.PriorityHigh, result.Gaps[0].Priority)
	assert.Equal(t, types.PriorityHigh, result.Gaps[1].Priority)
	for _, gap := range result.Gaps[2:] {
		assert.Equal(t, types.PriorityMedium, gap.Priority)
	}
}

func TestAnalyze_ExtraJobsVisitedSorted(t *testing.T) {
	result := Analyze(nil, []string{"B"}, map[string][]string{
		"C": {"Rust"},
		"A": {"rust", "Go"},
		"B": {"Go"},
	})

	require.Len(t, result.Gaps, 2)
	assert.Equal(t, "Go", result.Gaps[0].Skill)
	assert.Equal(t, "B", result.Gaps[0].ForJob)
	assert.Equal(t, "rust", result.Gaps[1].Skill)
	assert.Equal(t, "A", result.Gaps[1].ForJob)
}

func TestAnalyze_FitScoreUsesUnionAcrossJobs(t *testing.T) {
	result := Analyze(
		[]string{"Python"},
		[]string{"A", "B"},
		map[string][]string{
			"A": {"Python", "AWS"},
			"B": {"python", "GCP"},
		},
	)
	assert.Equal(t, 33, result.FitScore)
	assert.Equal(t, []string{"Python"}, result.Matched)
}

func TestEstimateLearningTime(t *testing.T) {
	tests := []struct {
		skill  string
		months int
	}{
		{skill: "AWS", months: 4},
		{skill: "Azure DevOps", months: 4},
		{skill: "Google Cloud Run", months: 4},
		{skill: "Kubernetes", months: 3},
		{skill: "Docker Compose", months: 3},
		{skill: "Terraform", months: 3},
		{skill: "Python", months: 6},
		{skill: "Java", months: 6},
		{skill: "JavaScript", months: 6},
		{skill: "Rust", months: 3},
	}

	for _, tt := range tests {
		t.Run(tt.skill, func(t *testing.T) {
			assert.Equal(t, tt.months, EstimateLearningTime(tt.skill))
		})
	}
}

func TestDifficultyFor(t *testing.T) {
	assert.Equal(t, "easy", DifficultyFor(1))
	assert.Equal(t, "easy", DifficultyFor(2))
	assert.Equal(t, "medium", DifficultyFor(3))
	assert.Equal(t, "medium", DifficultyFor(4))
	assert.Equal(t, "hard", DifficultyFor(6))
}

func TestFitScore_RoundsHalfAwayFromZero(t *testing.T) {
	assert.Equal(t, 0, FitScore(0, 0))
	assert.Equal(t, 33, FitScore(1, 3))
	assert.Equal(t, 67, FitScore(2, 3))
	assert.Equal(t, 13, FitScore(1, 8)) // 12.5
	assert.Equal(t, 100, FitScore(4, 4))
}
