//nolint:revive // types is a standard Go package name pattern
package types

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validResume = strings.Repeat("Backend engineer with Python and AWS. ", 3)

func TestRoadmapRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		request RoadmapRequest
		wantErr bool
	}{
		{
			name:    "valid request",
			request: RoadmapRequest{ResumeText: validResume, TargetJobs: []string{"DevOps Engineer"}},
		},
		{
			name:    "resume too short",
			request: RoadmapRequest{ResumeText: "too short", TargetJobs: []string{"DevOps Engineer"}},
			wantErr: true,
		},
		{
			name:    "resume too long",
			request: RoadmapRequest{ResumeText: strings.Repeat("a", 10001), TargetJobs: []string{"DevOps Engineer"}},
			wantErr: true,
		},
		{
			name:    "no target jobs",
			request: RoadmapRequest{ResumeText: validResume},
			wantErr: true,
		},
		{
			name: "too many target jobs",
			request: RoadmapRequest{
				ResumeText: validResume,
				TargetJobs: []string{"a1", "a2", "a3", "a4", "a5", "a6"},
			},
			wantErr: true,
		},
		{
			name:    "empty job title",
			request: RoadmapRequest{ResumeText: validResume, TargetJobs: []string{""}},
			wantErr: true,
		},
		{
			name:    "whitespace job title",
			request: RoadmapRequest{ResumeText: validResume, TargetJobs: []string{"   "}},
			wantErr: true,
		},
		{
			name: "invalid job url",
			request: RoadmapRequest{
				ResumeText: validResume,
				TargetJobs: []string{"SRE"},
				JobURL:     "not a url",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRoadmapRequest_ValidateTrimsAndDefaults(t *testing.T) {
	req := RoadmapRequest{ResumeText: validResume, TargetJobs: []string{"  Cloud Engineer "}}
	require.NoError(t, req.Validate())
	assert.Equal(t, []string{"Cloud Engineer"}, req.TargetJobs)
	assert.Equal(t, "default", req.UserID)
}

func TestRoadmapRequest_WhitespaceJobIsTypedError(t *testing.T) {
	req := RoadmapRequest{ResumeText: validResume, TargetJobs: []string{"SRE", " \t"}}
	err := req.Validate()

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "target_jobs[1]", verr.Field)
	assert.Contains(t, verr.Error(), "cannot be empty")
}

func TestRoadmapRequest_ValidatorErrors(t *testing.T) {
	req := RoadmapRequest{ResumeText: "short", TargetJobs: []string{"SRE"}}
	err := req.Validate()

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "ResumeText", verrs[0].Field())
	assert.Equal(t, "min", verrs[0].Tag())
}

func TestCompareRequest_Validate(t *testing.T) {
	t.Run("defaults path names", func(t *testing.T) {
		req := CompareRequest{
			CurrentSkills: []string{"python"},
			Path1Skills:   []string{"python", "aws"},
			Path2Skills:   []string{"python", "azure"},
		}
		require.NoError(t, req.Validate())
		assert.Equal(t, "Path 1", req.Path1Name)
		assert.Equal(t, "Path 2", req.Path2Name)
	})

	t.Run("empty path skills rejected", func(t *testing.T) {
		req := CompareRequest{Path1Skills: []string{"go"}}
		assert.Error(t, req.Validate())
	})

	t.Run("identical names rejected", func(t *testing.T) {
		req := CompareRequest{
			Path1Skills: []string{"go"},
			Path2Skills: []string{"rust"},
			Path1Name:   "Backend",
			Path2Name:   "Backend",
		}
		var verr *ValidationError
		require.True(t, errors.As(req.Validate(), &verr))
		assert.Equal(t, "path2_name", verr.Field)
	})
}

func TestEffortRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		request EffortRequest
		wantErr bool
	}{
		{name: "empty gaps allowed", request: EffortRequest{}},
		{
			name: "valid difficulty map",
			request: EffortRequest{
				SkillGaps:     []string{"aws", "docker"},
				DifficultyMap: map[string]string{"aws": "hard", "docker": "easy"},
			},
		},
		{
			name: "unknown difficulty",
			request: EffortRequest{
				SkillGaps:     []string{"aws"},
				DifficultyMap: map[string]string{"aws": "extreme"},
			},
			wantErr: true,
		},
		{
			name:    "blank gap",
			request: EffortRequest{SkillGaps: []string{""}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProgressUpdateRequest_Validate(t *testing.T) {
	assert.NoError(t, (&ProgressUpdateRequest{Status: SkillInProgress}).Validate())
	assert.NoError(t, (&ProgressUpdateRequest{Status: SkillCompleted, Notes: "done"}).Validate())
	assert.Error(t, (&ProgressUpdateRequest{Status: "paused"}).Validate())
	assert.Error(t, (&ProgressUpdateRequest{}).Validate())
}

func TestNewPipelineState(t *testing.T) {
	jobs := []string{"DevOps Engineer"}
	state := NewPipelineState("resume", jobs, "", "")
	jobs[0] = "mutated"

	assert.Equal(t, []string{"DevOps Engineer"}, state.TargetJobs)
	assert.Equal(t, StatusStarted, state.WorkflowStatus)
	assert.NotNil(t, state.CurrentSkills)
	assert.NotNil(t, state.RequiredSkills)
	assert.NotNil(t, state.SkillGaps)
	assert.NotNil(t, state.Nodes)
	assert.Nil(t, state.CriticalReview)
	assert.False(t, state.Degraded())

	state.DegradedStages = append(state.DegradedStages, "learning_path")
	assert.True(t, state.Degraded())
}
