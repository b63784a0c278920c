package types

import "time"

// SkillStatus is the learning status of one roadmap skill.
type SkillStatus string

// Skill statuses.
const (
	SkillNotStarted SkillStatus = "not_started"
	SkillInProgress SkillStatus = "in_progress"
	SkillCompleted  SkillStatus = "completed"
)

// SkillProgress tracks one skill on a roadmap.
type SkillProgress struct {
	Skill       string      `json:"skill"`
	Status      SkillStatus `json:"status"`
	StartedAt   *time.Time  `json:"started_at,omitempty"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
	Notes       string      `json:"notes"`
}

// RoadmapProgress tracks every skill of one generated roadmap.
type RoadmapProgress struct {
	RoadmapID string                    `json:"roadmap_id"`
	UserID    string                    `json:"user_id"`
	Skills    map[string]*SkillProgress `json:"skills"`
	CreatedAt time.Time                 `json:"created_at"`
	UpdatedAt time.Time                 `json:"updated_at"`
}

// ProgressStatistics counts skills per status.
type ProgressStatistics struct {
	NotStarted int `json:"not_started"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
}
