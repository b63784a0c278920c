package observability

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jonathan/career-path/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 64
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out   io.Writer
	box   lipgloss.Style
	title lipgloss.Style
	high  lipgloss.Style
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	r := lipgloss.NewRenderer(out)
	return &Printer{
		out: out,
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1).
			Width(boxWidth),
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		high:  r.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

// printBox prints a bordered box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	body := p.title.Render(title) + "\n\n" + strings.TrimSuffix(content, "\n")
	fmt.Fprintln(p.out, p.box.Render(body))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// writeList writes up to limit bullet items and a "... and N more" trailer.
func writeList(sb *strings.Builder, items []string, limit int) {
	count := min(len(items), limit)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", truncate(items[i], 50)))
	}
	if len(items) > limit {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-limit))
	}
}

// PrintResumeAnalysis outputs the skills and strengths extracted from the resume.
func (p *Printer) PrintResumeAnalysis(state *types.PipelineState) {
	if state == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Skills found: %d\n", len(state.CurrentSkills)))
	writeList(&sb, state.CurrentSkills, maxItemsToShow*2)

	if len(state.ExperienceYears) > 0 {
		sb.WriteString("\nExperience:\n")
		for _, category := range sortedKeys(state.ExperienceYears) {
			sb.WriteString(fmt.Sprintf("  %-20s %d yrs\n", truncate(category, 20), state.ExperienceYears[category]))
		}
	}

	if len(state.Strengths) > 0 {
		sb.WriteString("\nStrengths:\n")
		writeList(&sb, state.Strengths, 3)
	}

	p.printBox("RESUME ANALYSIS", sb.String())
}

// PrintRequiredSkills outputs the requirements parsed for every target job.
func (p *Printer) PrintRequiredSkills(state *types.PipelineState) {
	if state == nil || len(state.RequiredSkills) == 0 {
		return
	}

	var sb strings.Builder
	for i, job := range state.TargetJobs {
		sb.WriteString(fmt.Sprintf("%s\n", job))
		writeList(&sb, state.RequiredSkills[job], maxItemsToShow)
		if nice := state.NiceToHaveSkills[job]; len(nice) > 0 {
			sb.WriteString(fmt.Sprintf("  nice to have: %s\n", truncate(strings.Join(nice, ", "), 40)))
		}
		if i < len(state.TargetJobs)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("JOB REQUIREMENTS", sb.String())
}

// PrintSkillGaps outputs the prioritized skill gaps and the fit score.
func (p *Printer) PrintSkillGaps(state *types.PipelineState) {
	if state == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Fit score: %d%%\n", state.FitScore))
	sb.WriteString(fmt.Sprintf("Matched:   %s\n\n", truncate(strings.Join(state.MatchedSkills, ", "), 45)))

	if len(state.SkillGaps) == 0 {
		sb.WriteString("No skill gaps found\n")
	}
	count := min(len(state.SkillGaps), maxItemsToShow)
	for i := 0; i < count; i++ {
		gap := state.SkillGaps[i]
		priority := string(gap.Priority)
		if gap.Priority == types.PriorityHigh {
			priority = p.high.Render(priority)
		}
		sb.WriteString(fmt.Sprintf("• %s [%s] %s, ~%d months\n", truncate(gap.Skill, 30), priority, gap.Difficulty, gap.TimeMonths))
	}
	if len(state.SkillGaps) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more gaps\n", len(state.SkillGaps)-maxItemsToShow))
	}

	p.printBox("SKILL GAPS", sb.String())
}

// PrintLearningPath outputs the recommended courses, projects and certifications.
func (p *Printer) PrintLearningPath(state *types.PipelineState) {
	if state == nil {
		return
	}
	if len(state.Courses)+len(state.Projects)+len(state.Certifications) == 0 {
		return
	}

	var sb strings.Builder
	if len(state.Courses) > 0 {
		sb.WriteString("Courses:\n")
		names := make([]string, 0, len(state.Courses))
		for _, c := range state.Courses {
			names = append(names, fmt.Sprintf("%s (%s)", c.Name, c.Provider))
		}
		writeList(&sb, names, maxItemsToShow)
	}
	if len(state.Projects) > 0 {
		sb.WriteString("Projects:\n")
		names := make([]string, 0, len(state.Projects))
		for _, pr := range state.Projects {
			names = append(names, pr.Name)
		}
		writeList(&sb, names, 3)
	}
	if len(state.Certifications) > 0 {
		sb.WriteString("Certifications:\n")
		names := make([]string, 0, len(state.Certifications))
		for _, c := range state.Certifications {
			names = append(names, c.Name)
		}
		writeList(&sb, names, 3)
	}

	p.printBox("LEARNING PATH", sb.String())
}

// PrintCriticalReview outputs the reviewer's assessment.
func (p *Printer) PrintCriticalReview(review *types.CriticalReview) {
	if review == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Rating:    %d/10\n", review.OverallRating))
	sb.WriteString(fmt.Sprintf("Readiness: %s\n", review.ReadinessLevel))
	if review.Summary != "" {
		sb.WriteString(fmt.Sprintf("\n%s\n", review.Summary))
	}
	if len(review.ActionableSteps) > 0 {
		sb.WriteString("\nNext steps:\n")
		writeList(&sb, review.ActionableSteps, 3)
	}
	if len(review.RedFlags) > 0 {
		sb.WriteString("\nRed flags:\n")
		writeList(&sb, review.RedFlags, 3)
	}

	p.printBox("CRITICAL REVIEW", sb.String())
}

// PrintRoadmap outputs the roadmap graph as an ordered path with milestones.
func (p *Printer) PrintRoadmap(state *types.PipelineState) {
	if state == nil || len(state.Nodes) == 0 {
		return
	}

	var sb strings.Builder
	for _, node := range state.Nodes {
		label, _ := node.Data["label"].(string)
		sb.WriteString(fmt.Sprintf("[%s] %s\n", node.Type, truncate(label, 45)))
	}
	if len(state.Milestones) > 0 {
		sb.WriteString("\nMilestones:\n")
		for _, m := range state.Milestones {
			sb.WriteString(fmt.Sprintf("  %-10s %s\n", m.TargetDate, m.Name))
		}
	}
	if state.Degraded() {
		sb.WriteString(fmt.Sprintf("\n⚠ degraded stages: %s\n", strings.Join(state.DegradedStages, ", ")))
	}

	p.printBox("ROADMAP", sb.String())
}

// PrintRun outputs every section of a completed run.
func (p *Printer) PrintRun(state *types.PipelineState) {
	p.PrintResumeAnalysis(state)
	p.PrintRequiredSkills(state)
	p.PrintSkillGaps(state)
	p.PrintLearningPath(state)
	if state != nil {
		p.PrintCriticalReview(state.CriticalReview)
	}
	p.PrintRoadmap(state)
}

// PrintComparison outputs a two-path comparison.
func (p *Printer) PrintComparison(cmp *types.CareerPathComparison) {
	if cmp == nil {
		return
	}

	var sb strings.Builder
	for _, name := range sortedPathNames(cmp.Paths) {
		path := cmp.Paths[name]
		sb.WriteString(fmt.Sprintf("%s: %.1f%% ready, %d missing\n", name, path.ReadinessPercentage, path.MissingSkills))
	}
	sb.WriteString(fmt.Sprintf("\nEasier path: %s\n", cmp.Recommendation.EasierPath))
	if len(cmp.Recommendation.ShouldLearnFirst) > 0 {
		sb.WriteString(fmt.Sprintf("Learn first: %s\n", strings.Join(cmp.Recommendation.ShouldLearnFirst, ", ")))
	}

	p.printBox("CAREER PATH COMPARISON", sb.String())
}

func sortedKeys(m map[string]int) []string {
	return slices.Sorted(maps.Keys(m))
}

func sortedPathNames(m map[string]types.PathComparison) []string {
	return slices.Sorted(maps.Keys(m))
}
