package skills

import (
	"math"
	"sort"
	"strings"

	"github.com/jonathan/career-path/internal/types"
)

const (
	// highPriorityMaxMissing is the largest per-job gap count whose gaps are all high priority.
	highPriorityMaxMissing = 3

	defaultLearningMonths = 3
)

// Keyword buckets for learning time, checked in order; first match wins.
var learningTimeBuckets = []struct {
	tokens []string
	months int
}{
	{tokens: []string{"aws", "azure", "gcp", "cloud"}, months: 4},
	{tokens: []string{"kubernetes", "docker", "terraform"}, months: 3},
	{tokens: []string{"python", "javascript", "java"}, months: 6},
}

// Analysis is the result of comparing current skills with target job requirements.
type Analysis struct {
	Gaps     []types.GapEntry
	FitScore int
	Matched  []string
}

// Analyze computes skill gaps, fit score and matched skills.
//
// Jobs are visited in the order given; jobs present in requiredByJob but not in
// jobs are visited afterwards in sorted order. A missing skill is reported once,
// attributed to the first job that requires it. Every gap from a job with at
// most three missing skills is high priority, otherwise medium. Gaps are
// ordered high first, then by skill name case-insensitively.
//
// FitScore is the rounded percentage of distinct required skills (across all
// jobs) that the candidate already has, or 0 when nothing is required.
func Analyze(current []string, jobs []string, requiredByJob map[string][]string) Analysis {
	currentDisplay := make(map[string]string, len(current))
	for _, skill := range Deduplicate(current) {
		currentDisplay[CanonicalKey(skill)] = skill
	}

	union := make(map[string]struct{})
	matchedKeys := make(map[string]struct{})
	gapKeys := make(map[string]struct{})
	matched := []string{}
	gaps := []types.GapEntry{}

	for _, job := range jobOrder(jobs, requiredByJob) {
		for key := range KeySet(requiredByJob[job]) {
			union[key] = struct{}{}
		}

		var missing []string
		for _, skill := range Deduplicate(requiredByJob[job]) {
			key := CanonicalKey(skill)
			if display, ok := currentDisplay[key]; ok {
				if _, seen := matchedKeys[key]; !seen {
					matchedKeys[key] = struct{}{}
					matched = append(matched, display)
				}
				continue
			}
			missing = append(missing, skill)
		}

		priority := PriorityFor(len(missing))
		for _, skill := range missing {
			key := CanonicalKey(skill)
			if _, seen := gapKeys[key]; seen {
				continue
			}
			gapKeys[key] = struct{}{}

			months := EstimateLearningTime(skill)
			gaps = append(gaps, types.GapEntry{
				Skill:      skill,
				ForJob:     job,
				Priority:   priority,
				Difficulty: DifficultyFor(months),
				TimeMonths: months,
			})
		}
	}

	SortGaps(gaps)

	return Analysis{
		Gaps:     gaps,
		FitScore: FitScore(len(matchedKeys), len(union)),
		Matched:  matched,
	}
}

// jobOrder returns jobs (deduplicated, in order) followed by any extra keys of
// requiredByJob in sorted order.
func jobOrder(jobs []string, requiredByJob map[string][]string) []string {
	order := make([]string, 0, len(requiredByJob))
	seen := make(map[string]struct{}, len(requiredByJob))
	for _, job := range jobs {
		if _, dup := seen[job]; dup {
			continue
		}
		if _, ok := requiredByJob[job]; !ok {
			continue
		}
		seen[job] = struct{}{}
		order = append(order, job)
	}

	var extra []string
	for job := range requiredByJob {
		if _, ok := seen[job]; !ok {
			extra = append(extra, job)
		}
	}
	sort.Strings(extra)
	return append(order, extra...)
}

// PriorityFor returns the priority of every gap from a job with missingCount gaps.
func PriorityFor(missingCount int) types.Priority {
	if missingCount <= highPriorityMaxMissing {
		return types.PriorityHigh
	}
	return types.PriorityMedium
}

// EstimateLearningTime estimates months to learn a skill from keywords in its name.
func EstimateLearningTime(skill string) int {
	lower := strings.ToLower(skill)
	for _, bucket := range learningTimeBuckets {
		for _, token := range bucket.tokens {
			if strings.Contains(lower, token) {
				return bucket.months
			}
		}
	}
	return defaultLearningMonths
}

// DifficultyFor maps a learning time estimate to easy, medium or hard.
func DifficultyFor(months int) string {
	switch {
	case months >= 6:
		return "hard"
	case months <= 2:
		return "easy"
	default:
		return "medium"
	}
}

// SortGaps orders gaps high priority first, then by skill name
// case-insensitively, with the raw name as a tiebreak.
func SortGaps(gaps []types.GapEntry) {
	sort.SliceStable(gaps, func(i, j int) bool {
		hi, hj := gaps[i].Priority == types.PriorityHigh, gaps[j].Priority == types.PriorityHigh
		if hi != hj {
			return hi
		}
		li, lj := strings.ToLower(gaps[i].Skill), strings.ToLower(gaps[j].Skill)
		if li != lj {
			return li < lj
		}
		return gaps[i].Skill < gaps[j].Skill
	})
}

// FitScore returns round(100*matched/total), rounding halves away from zero.
func FitScore(matched, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(matched) / float64(total)))
}
