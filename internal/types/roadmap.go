package types

// Position is a node's layout coordinate on the roadmap canvas.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// GraphNode is a roadmap node. Data carries display-only fields (label, priority, color).
type GraphNode struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Data     map[string]any `json:"data"`
	Position Position       `json:"position"`
}

// GraphEdge connects two roadmap nodes by id.
type GraphEdge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// Milestone is a checkpoint on the learning timeline.
type Milestone struct {
	Name       string `json:"name"`
	TargetDate string `json:"target_date"`
}

// Course is a recommended online course.
type Course struct {
	Name     string `json:"name"`
	Provider string `json:"provider"`
	URL      string `json:"url"`
	Duration string `json:"duration"`
}

// Project is a recommended hands-on project.
type Project struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Skills      []string `json:"skills"`
}

// Certification is a recommended certification.
type Certification struct {
	Name     string `json:"name"`
	Provider string `json:"provider"`
	URL      string `json:"url"`
}

// CriticalReview is the reviewer's candid assessment of the candidate's readiness.
// JSON keys are camelCase to match the web client.
type CriticalReview struct {
	OverallRating   int      `json:"overallRating"` // 1-10
	ReadinessLevel  string   `json:"readinessLevel"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	RedFlags        []string `json:"redFlags"`
	ActionableSteps []string `json:"actionableSteps"`
	Summary         string   `json:"summary"`
}
