// Package progress tracks how far a user has come on each skill of a generated roadmap.
// State is held in memory for the life of the process.
package progress

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/career-path/internal/types"
)

// ErrRoadmapNotFound is returned for an unknown roadmap id.
var ErrRoadmapNotFound = errors.New("roadmap not found")

// ErrSkillNotFound is returned for a skill that is not on the roadmap.
var ErrSkillNotFound = errors.New("skill not found on roadmap")

// NewRoadmapID returns a fresh roadmap identifier.
func NewRoadmapID() string {
	return uuid.NewString()
}

// Tracker is safe for concurrent use. Returned values are copies.
type Tracker struct {
	mu       sync.RWMutex
	roadmaps map[string]*types.RoadmapProgress
	now      func() time.Time
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		roadmaps: make(map[string]*types.RoadmapProgress),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create starts tracking skills for roadmapID, replacing any earlier entry.
// Every skill starts as not_started; duplicate names are tracked once.
func (t *Tracker) Create(roadmapID, userID string, skills []string) *types.RoadmapProgress {
	now := t.now()
	p := &types.RoadmapProgress{
		RoadmapID: roadmapID,
		UserID:    userID,
		Skills:    make(map[string]*types.SkillProgress, len(skills)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, skill := range skills {
		if _, exists := p.Skills[skill]; exists || strings.TrimSpace(skill) == "" {
			continue
		}
		p.Skills[skill] = &types.SkillProgress{Skill: skill, Status: types.SkillNotStarted}
	}

	t.mu.Lock()
	t.roadmaps[roadmapID] = p
	t.mu.Unlock()

	return cloneProgress(p)
}

// Get returns the progress for roadmapID.
func (t *Tracker) Get(roadmapID string) (*types.RoadmapProgress, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	p, ok := t.roadmaps[roadmapID]
	if !ok {
		return nil, false
	}
	return cloneProgress(p), true
}

// UpdateSkillStatus sets a skill's status and notes. The start time is recorded
// the first time a skill enters in_progress, the completion time the first time
// it becomes completed. Skill names match case-insensitively.
func (t *Tracker) UpdateSkillStatus(roadmapID, skill string, status types.SkillStatus, notes string) (*types.SkillProgress, error) {
	switch status {
	case types.SkillNotStarted, types.SkillInProgress, types.SkillCompleted:
	default:
		return nil, fmt.Errorf("invalid skill status %q", status)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.roadmaps[roadmapID]
	if !ok {
		return nil, ErrRoadmapNotFound
	}
	sp := findSkill(p, skill)
	if sp == nil {
		return nil, ErrSkillNotFound
	}

	now := t.now()
	sp.Status = status
	sp.Notes = notes
	switch status {
	case types.SkillInProgress:
		if sp.StartedAt == nil {
			sp.StartedAt = &now
		}
	case types.SkillCompleted:
		if sp.CompletedAt == nil {
			sp.CompletedAt = &now
		}
	}
	p.UpdatedAt = now

	c := *sp
	return &c, nil
}

// CompletionPercentage returns the share of completed skills, 0..100.
func (t *Tracker) CompletionPercentage(roadmapID string) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	p, ok := t.roadmaps[roadmapID]
	if !ok || len(p.Skills) == 0 {
		return 0
	}
	completed := 0
	for _, sp := range p.Skills {
		if sp.Status == types.SkillCompleted {
			completed++
		}
	}
	return float64(completed) / float64(len(p.Skills)) * 100
}

// Statistics counts skills per status. Unknown roadmaps count as empty.
func (t *Tracker) Statistics(roadmapID string) types.ProgressStatistics {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var stats types.ProgressStatistics
	p, ok := t.roadmaps[roadmapID]
	if !ok {
		return stats
	}
	for _, sp := range p.Skills {
		switch sp.Status {
		case types.SkillNotStarted:
			stats.NotStarted++
		case types.SkillInProgress:
			stats.InProgress++
		case types.SkillCompleted:
			stats.Completed++
		}
	}
	return stats
}

func findSkill(p *types.RoadmapProgress, skill string) *types.SkillProgress {
	if sp, ok := p.Skills[skill]; ok {
		return sp
	}
	for name, sp := range p.Skills {
		if strings.EqualFold(name, skill) {
			return sp
		}
	}
	return nil
}

func cloneProgress(p *types.RoadmapProgress) *types.RoadmapProgress {
	c := *p
	c.Skills = make(map[string]*types.SkillProgress, len(p.Skills))
	for name, sp := range p.Skills {
		s := *sp
		c.Skills[name] = &s
	}
	return &c
}
