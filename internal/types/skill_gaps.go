package types

// Priority ranks how urgently a missing skill should be learned.
type Priority string

// Priority levels.
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// GapEntry is a required skill that is absent from the candidate's current skills.
type GapEntry struct {
	Skill      string   `json:"skill"`
	ForJob     string   `json:"for_job"`
	Priority   Priority `json:"priority"`
	Difficulty string   `json:"difficulty"` // easy, medium, hard
	TimeMonths int      `json:"time_months"`
}

// PathComparison summarizes one career path inside a comparison.
type PathComparison struct {
	TotalSkills         int      `json:"total_skills"`
	CurrentSkills       int      `json:"current_skills"`
	MissingSkills       int      `json:"missing_skills"`
	ReadinessPercentage float64  `json:"readiness_percentage"`
	Gaps                []string `json:"gaps"`
	UniqueGaps          []string `json:"unique_gaps"`
}

// ComparisonRecommendation is the verdict of a two-path comparison.
type ComparisonRecommendation struct {
	EasierPath       string   `json:"easier_path"`
	GapDifference    int      `json:"gap_difference"`
	ShouldLearnFirst []string `json:"should_learn_first"`
}

// CareerPathComparison compares two target paths against the same current skills.
type CareerPathComparison struct {
	Paths          map[string]PathComparison `json:"paths"`
	CommonGaps     []string                  `json:"common_gaps"`
	Recommendation ComparisonRecommendation  `json:"recommendation"`
}

// LearningEffort estimates the total effort for a set of skill gaps.
type LearningEffort struct {
	TotalSkills          int            `json:"total_skills"`
	EstimatedHours       int            `json:"estimated_hours"`
	EstimatedWeeks       int            `json:"estimated_weeks"`
	DifficultyBreakdown  map[string]int `json:"difficulty_breakdown"`
	AverageHoursPerSkill float64        `json:"average_hours_per_skill"`
}
