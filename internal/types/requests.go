package types

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError reports malformed caller input at the pipeline boundary.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// RoadmapRequest is the request body for roadmap generation.
type RoadmapRequest struct {
	ResumeText     string   `json:"resume_text" validate:"required,min=50,max=10000"`
	TargetJobs     []string `json:"target_jobs" validate:"required,min=1,max=5,dive,required,max=200"`
	JobDescription string   `json:"job_description,omitempty" validate:"omitempty,max=20000"`
	JobURL         string   `json:"job_url,omitempty" validate:"omitempty,url"`
	SpecialtyInfo  string   `json:"specialty_info,omitempty" validate:"omitempty,max=500"`
	UserID         string   `json:"user_id,omitempty" validate:"omitempty,max=100"`
}

// Validate validates the RoadmapRequest and trims job titles in place.
func (r *RoadmapRequest) Validate() error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return err
	}

	for i, job := range r.TargetJobs {
		trimmed := strings.TrimSpace(job)
		if trimmed == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("target_jobs[%d]", i),
				Message: "job titles cannot be empty",
			}
		}
		r.TargetJobs[i] = trimmed
	}

	if strings.TrimSpace(r.ResumeText) == "" {
		return &ValidationError{Field: "resume_text", Message: "resume text cannot be empty"}
	}
	if r.UserID == "" {
		r.UserID = "default"
	}
	return nil
}

// CompareRequest is the request body for comparing two career paths.
type CompareRequest struct {
	CurrentSkills []string `json:"current_skills" validate:"dive,required"`
	Path1Skills   []string `json:"path1_skills" validate:"required,min=1,dive,required"`
	Path2Skills   []string `json:"path2_skills" validate:"required,min=1,dive,required"`
	Path1Name     string   `json:"path1_name,omitempty" validate:"omitempty,max=200"`
	Path2Name     string   `json:"path2_name,omitempty" validate:"omitempty,max=200"`
}

// Validate validates the CompareRequest and fills default path names.
func (r *CompareRequest) Validate() error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return err
	}
	if r.Path1Name == "" {
		r.Path1Name = "Path 1"
	}
	if r.Path2Name == "" {
		r.Path2Name = "Path 2"
	}
	if r.Path1Name == r.Path2Name {
		return &ValidationError{Field: "path2_name", Message: "path names must differ"}
	}
	return nil
}

// EffortRequest is the request body for learning effort estimation.
type EffortRequest struct {
	SkillGaps     []string          `json:"skill_gaps" validate:"dive,required"`
	DifficultyMap map[string]string `json:"difficulty_map,omitempty" validate:"omitempty,dive,keys,required,endkeys,oneof=easy medium hard"`
}

// Validate validates the EffortRequest using the validator.
func (r *EffortRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// ProgressUpdateRequest updates the status of one skill on a roadmap.
type ProgressUpdateRequest struct {
	Status SkillStatus `json:"status" validate:"required,oneof=not_started in_progress completed"`
	Notes  string      `json:"notes,omitempty" validate:"max=2000"`
}

// Validate validates the ProgressUpdateRequest using the validator.
func (r *ProgressUpdateRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
