package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNames_AllStageSchemasEmbedded(t *testing.T) {
	assert.Equal(t, []string{CriticalReview, JobRequirements, LearningPath, ResumeAnalysis}, Names())
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		schema  string
		payload string
		wantErr bool
	}{
		{
			name:    "resume analysis valid",
			schema:  ResumeAnalysis,
			payload: `{"skills": ["Python"], "experience": {"backend": 4, "cloud": "2"}, "strengths": []}`,
		},
		{
			name:    "resume analysis missing strengths",
			schema:  ResumeAnalysis,
			payload: `{"skills": ["Python"], "experience": {}}`,
			wantErr: true,
		},
		{
			name:    "resume analysis skills wrong type",
			schema:  ResumeAnalysis,
			payload: `{"skills": "Python", "experience": {}, "strengths": []}`,
			wantErr: true,
		},
		{
			name:    "job requirements valid",
			schema:  JobRequirements,
			payload: `{"required": ["AWS"], "nice_to_have": []}`,
		},
		{
			name:    "job requirements missing nice_to_have",
			schema:  JobRequirements,
			payload: `{"required": ["AWS"]}`,
			wantErr: true,
		},
		{
			name:   "learning path valid",
			schema: LearningPath,
			payload: `{"courses": [{"name": "AWS SA", "provider": "Coursera", "url": "https://x", "duration": "4 weeks"}],
				"projects": [{"name": "Deploy", "description": "d", "skills": ["AWS"]}],
				"certifications": []}`,
		},
		{
			name:    "learning path course without name",
			schema:  LearningPath,
			payload: `{"courses": [{"provider": "Coursera"}], "projects": [], "certifications": []}`,
			wantErr: true,
		},
		{
			name:   "critical review valid without red flags",
			schema: CriticalReview,
			payload: `{"overallRating": 6, "readinessLevel": "Nearly Ready", "strengths": [], "weaknesses": [],
				"actionableSteps": ["Learn AWS"], "summary": "Close."}`,
		},
		{
			name:    "critical review rating as string",
			schema:  CriticalReview,
			payload: `{"overallRating": "six", "readinessLevel": "x", "strengths": [], "weaknesses": [], "actionableSteps": [], "summary": ""}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateResponse(tt.schema, []byte(tt.payload))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, tt.schema, validationErr.Schema)
			assert.NotEmpty(t, validationErr.Errors)
		})
	}
}

func TestValidateResponse_UnknownSchema(t *testing.T) {
	err := ValidateResponse("nope", []byte(`{}`))

	var loadErr *SchemaLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Contains(t, loadErr.Error(), "responses/nope.json")
}

func TestValidateResponse_MalformedPayload(t *testing.T) {
	err := ValidateResponse(JobRequirements, []byte(`{ invalid json }`))

	var validationErr *ValidationError
	assert.True(t, errors.As(err, &validationErr))
}

func TestValidateJSONString_Valid(t *testing.T) {
	schemaContent := `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["name"],
		"properties": {
			"name": {"type": "string"}
		}
	}`

	assert.NoError(t, ValidateJSONString(schemaContent, `{"name": "test"}`))
}

func TestValidateJSONString_Invalid(t *testing.T) {
	schemaContent := `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["name"],
		"properties": {
			"name": {"type": "string"}
		}
	}`

	err := ValidateJSONString(schemaContent, `{"age": 30}`)
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Greater(t, len(validationErr.Errors), 0)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Schema: JobRequirements,
		Errors: []FieldError{
			{Field: "required", Message: "is required"},
			{Field: "nice_to_have", Message: "must be an array"},
		},
	}

	errorMsg := err.Error()
	assert.Contains(t, errorMsg, "job_requirements validation failed")
	assert.Contains(t, errorMsg, "required")
	assert.Contains(t, errorMsg, "nice_to_have")
}
