package skills

import (
	"math"
	"sort"
	"strings"

	"github.com/jonathan/career-path/internal/types"
)

// EqualDifficulty is the verdict when both paths have the same number of gaps.
const EqualDifficulty = "Equal difficulty"

const maxLearnFirst = 5

// effortByDifficulty is the hours and calendar weeks to learn one skill.
var effortByDifficulty = map[string]struct{ hours, weeks int }{
	"easy":   {hours: 20, weeks: 2},
	"medium": {hours: 60, weeks: 6},
	"hard":   {hours: 120, weeks: 12},
}

// CompareCareerPaths compares two target skill sets against the same current skills.
// Skills are compared lowercased and trimmed.
func CompareCareerPaths(current, path1, path2 []string, path1Name, path2Name string) types.CareerPathComparison {
	if path1Name == "" {
		path1Name = "Path 1"
	}
	if path2Name == "" {
		path2Name = "Path 2"
	}

	have := lowerSet(current)
	p1 := lowerSet(path1)
	p2 := lowerSet(path2)

	gaps1 := difference(p1, have)
	gaps2 := difference(p2, have)
	common := intersection(gaps1, gaps2)

	easier := path2Name
	switch {
	case len(gaps1) == len(gaps2):
		easier = EqualDifficulty
	case len(gaps1) < len(gaps2):
		easier = path1Name
	}

	learnFirst := sortedKeys(common)
	if len(learnFirst) > maxLearnFirst {
		learnFirst = learnFirst[:maxLearnFirst]
	}

	return types.CareerPathComparison{
		Paths: map[string]types.PathComparison{
			path1Name: pathSummary(p1, have, gaps1, gaps2),
			path2Name: pathSummary(p2, have, gaps2, gaps1),
		},
		CommonGaps: sortedKeys(common),
		Recommendation: types.ComparisonRecommendation{
			EasierPath:       easier,
			GapDifference:    absInt(len(gaps1) - len(gaps2)),
			ShouldLearnFirst: learnFirst,
		},
	}
}

func pathSummary(path, have, gaps, otherGaps map[string]struct{}) types.PathComparison {
	overlap := intersection(path, have)
	readiness := 0.0
	if len(path) > 0 {
		readiness = round1(float64(len(overlap)) / float64(len(path)) * 100)
	}
	return types.PathComparison{
		TotalSkills:         len(path),
		CurrentSkills:       len(overlap),
		MissingSkills:       len(gaps),
		ReadinessPercentage: readiness,
		Gaps:                sortedKeys(gaps),
		UniqueGaps:          sortedKeys(difference(gaps, otherGaps)),
	}
}

// CalculateLearningEffort estimates total hours and the longest calendar span
// for learning every gap. difficulty maps lowercase skill names to easy, medium
// or hard; unknown or missing entries count as medium.
func CalculateLearningEffort(gaps []string, difficulty map[string]string) types.LearningEffort {
	lowered := make(map[string]string, len(difficulty))
	for skill, level := range difficulty {
		lowered[strings.ToLower(strings.TrimSpace(skill))] = strings.ToLower(level)
	}

	breakdown := map[string]int{"easy": 0, "medium": 0, "hard": 0}
	hours, weeks := 0, 0
	for _, skill := range gaps {
		level := lowered[strings.ToLower(strings.TrimSpace(skill))]
		effort, ok := effortByDifficulty[level]
		if !ok {
			level = "medium"
			effort = effortByDifficulty[level]
		}
		hours += effort.hours
		weeks = max(weeks, effort.weeks)
		breakdown[level]++
	}

	average := 0.0
	if len(gaps) > 0 {
		average = round1(float64(hours) / float64(len(gaps)))
	}

	return types.LearningEffort{
		TotalSkills:          len(gaps),
		EstimatedHours:       hours,
		EstimatedWeeks:       weeks,
		DifficultyBreakdown:  breakdown,
		AverageHoursPerSkill: average,
	}
}

func lowerSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		if key := strings.ToLower(strings.TrimSpace(item)); key != "" {
			set[key] = struct{}{}
		}
	}
	return set
}

func difference(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for k := range a {
		if _, ok := b[k]; !ok {
			out[k] = struct{}{}
		}
	}
	return out
}

func intersection(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for k := range a {
		if _, ok := b[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
