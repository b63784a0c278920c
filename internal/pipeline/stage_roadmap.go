package pipeline

import (
	"context"
	"fmt"

	"github.com/jonathan/career-path/internal/types"
)

// Node types on the roadmap canvas.
const (
	NodeTypeMilestone = "milestone"
	NodeTypeSkill     = "skill"
)

var priorityColors = map[types.Priority]string{
	types.PriorityHigh:   "#ef4444",
	types.PriorityMedium: "#f59e0b",
	types.PriorityLow:    "#10b981",
}

var defaultMilestones = []types.Milestone{
	{Name: "Complete foundational courses", TargetDate: "3 months"},
	{Name: "Build portfolio projects", TargetDate: "6 months"},
	{Name: "Obtain certifications", TargetDate: "9 months"},
}

func (r *Runner) generateRoadmap(_ context.Context, state *types.PipelineState) Update {
	nodes, edges := BuildGraph(state.CurrentSkills, state.SkillGaps, state.TargetJobs, r.opts.MaxSkillGaps)
	milestones := make([]types.Milestone, len(defaultMilestones))
	copy(milestones, defaultMilestones)

	return Update{
		Apply: func(s *types.PipelineState) {
			s.Nodes = nodes
			s.Edges = edges
			s.Milestones = milestones
		},
	}
}

// BuildGraph lays out the roadmap: a current-state node, one node per top gap
// on a horizontal row, and a target node when there is a target job. Ids derive
// from position only, so identical input yields identical output.
func BuildGraph(current []string, gaps []types.GapEntry, targetJobs []string, maxGaps int) ([]types.GraphNode, []types.GraphEdge) {
	top := topGaps(gaps, maxGaps)

	currentSkills := make([]string, len(current))
	copy(currentSkills, current)

	nodes := []types.GraphNode{{
		ID:       "current",
		Type:     NodeTypeMilestone,
		Data:     map[string]any{"label": "Current State", "skills": currentSkills},
		Position: types.Position{X: 100, Y: 100},
	}}
	edges := []types.GraphEdge{}

	skillIDs := make([]string, len(top))
	for i, gap := range top {
		id := fmt.Sprintf("skill-%d", i)
		skillIDs[i] = id
		nodes = append(nodes, types.GraphNode{
			ID:   id,
			Type: NodeTypeSkill,
			Data: map[string]any{
				"label":    gap.Skill,
				"priority": string(gap.Priority),
				"time":     gap.TimeMonths,
				"color":    priorityColor(gap.Priority),
			},
			Position: types.Position{X: 100 + 150*i, Y: 200},
		})
		edges = append(edges, types.GraphEdge{ID: "e-current-" + id, Source: "current", Target: id})
	}

	if len(targetJobs) > 0 {
		nodes = append(nodes, types.GraphNode{
			ID:       "target",
			Type:     NodeTypeMilestone,
			Data:     map[string]any{"label": targetJobs[0], "achieved": false},
			Position: types.Position{X: 400, Y: 400},
		})
		for _, id := range skillIDs {
			edges = append(edges, types.GraphEdge{ID: "e-" + id + "-target", Source: id, Target: "target"})
		}
	}

	return nodes, edges
}

func priorityColor(p types.Priority) string {
	if color, ok := priorityColors[p]; ok {
		return color
	}
	return priorityColors[types.PriorityMedium]
}
