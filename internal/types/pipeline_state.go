// Package types provides type definitions for structured data used throughout the career-path system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// WorkflowStatus is the status a pipeline run reports after each stage.
type WorkflowStatus string

// Workflow statuses in the order the pipeline advances through them.
const (
	StatusStarted               WorkflowStatus = "started"
	StatusResumeAnalyzed        WorkflowStatus = "resume_analyzed"
	StatusJobsParsed            WorkflowStatus = "jobs_parsed"
	StatusGapsAnalyzed          WorkflowStatus = "gaps_analyzed"
	StatusLearningPathGenerated WorkflowStatus = "learning_path_generated"
	StatusReviewComplete        WorkflowStatus = "review_complete"
	StatusComplete              WorkflowStatus = "complete"
)

// PipelineState is threaded through every stage of a roadmap run.
// Inputs are set once at creation; each stage fills in its own outputs and
// never clears what an earlier stage produced.
type PipelineState struct {
	// Inputs
	ResumeText     string   `json:"resume_text"`
	TargetJobs     []string `json:"target_jobs"`
	JobDescription string   `json:"job_description,omitempty"`
	SpecialtyFocus string   `json:"specialty_focus,omitempty"`

	// Resume analysis
	CurrentSkills   []string       `json:"current_skills"`
	ExperienceYears map[string]int `json:"experience_years"`
	Strengths       []string       `json:"strengths"`

	// Job parsing, keyed by job title
	RequiredSkills   map[string][]string `json:"required_skills"`
	NiceToHaveSkills map[string][]string `json:"nice_to_have_skills"`

	// Gap analysis
	SkillGaps     []GapEntry `json:"skill_gaps"`
	FitScore      int        `json:"fit_score"`
	MatchedSkills []string   `json:"matched_skills"`

	// Learning path
	Courses        []Course        `json:"courses"`
	Projects       []Project       `json:"projects"`
	Certifications []Certification `json:"certifications"`

	// Critical review
	CriticalReview *CriticalReview `json:"critical_review"`

	// Roadmap
	Nodes      []GraphNode `json:"nodes"`
	Edges      []GraphEdge `json:"edges"`
	Milestones []Milestone `json:"milestones"`

	// Metadata
	WorkflowStatus WorkflowStatus `json:"workflow_status"`
	Error          string         `json:"error,omitempty"`
	DegradedStages []string       `json:"degraded_stages,omitempty"`
}

// NewPipelineState creates a fresh state for one run with every collection
// initialized, so a degraded run still serializes empty arrays instead of null.
func NewPipelineState(resumeText string, targetJobs []string, jobDescription, specialtyFocus string) *PipelineState {
	jobs := make([]string, len(targetJobs))
	copy(jobs, targetJobs)

	return &PipelineState{
		ResumeText:       resumeText,
		TargetJobs:       jobs,
		JobDescription:   jobDescription,
		SpecialtyFocus:   specialtyFocus,
		CurrentSkills:    []string{},
		ExperienceYears:  map[string]int{},
		Strengths:        []string{},
		RequiredSkills:   map[string][]string{},
		NiceToHaveSkills: map[string][]string{},
		SkillGaps:        []GapEntry{},
		MatchedSkills:    []string{},
		Courses:          []Course{},
		Projects:         []Project{},
		Certifications:   []Certification{},
		Nodes:            []GraphNode{},
		Edges:            []GraphEdge{},
		Milestones:       []Milestone{},
		WorkflowStatus:   StatusStarted,
	}
}

// Degraded reports whether any stage fell back to defaults.
func (s *PipelineState) Degraded() bool {
	return len(s.DegradedStages) > 0
}
