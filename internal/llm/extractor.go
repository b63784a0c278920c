package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema describes the JSON object a stage expects back from the model.
// Description is the stage instruction preamble; Fields render the output contract.
type ExtractionSchema struct {
	Name        string
	Description string
	Fields      []SchemaField
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint shown to the model, e.g. ["string"]
	Description string
	Required    bool
}

// BuildExtractionPrompt constructs the LLM prompt from schema and input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	sb.WriteString(strings.TrimSpace(schema.Description))
	sb.WriteString("\n\n")

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "\"string\""
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n")
	sb.WriteString("- Use empty arrays instead of omitting a field.\n\n")

	if inputText != "" {
		sb.WriteString("Input:\n\"\"\"\n")
		sb.WriteString(inputText)
		sb.WriteString("\n\"\"\"\n")
	}

	return sb.String()
}

// ResumeAnalysisSchema is the output contract for resume analysis.
func ResumeAnalysisSchema(description string) ExtractionSchema {
	return ExtractionSchema{
		Name:        "ResumeAnalysis",
		Description: description,
		Fields: []SchemaField{
			{Name: "skills", Type: `["string"]`, Description: "Technical skills: languages, frameworks, tools, cloud services", Required: true},
			{Name: "experience", Type: `{"category": years}`, Description: "Whole years of experience per skill category", Required: true},
			{Name: "strengths", Type: `["string"]`, Description: "Key strengths and achievements", Required: true},
		},
	}
}

// JobRequirementsSchema is the output contract for one target job.
func JobRequirementsSchema(description string) ExtractionSchema {
	return ExtractionSchema{
		Name:        "JobRequirements",
		Description: description,
		Fields: []SchemaField{
			{Name: "required", Type: `["string"]`, Description: "Required technical skills", Required: true},
			{Name: "nice_to_have", Type: `["string"]`, Description: "Nice-to-have skills", Required: true},
		},
	}
}

// LearningPathSchema is the output contract for learning recommendations.
func LearningPathSchema(description string) ExtractionSchema {
	return ExtractionSchema{
		Name:        "LearningPath",
		Description: description,
		Fields: []SchemaField{
			{Name: "courses", Type: `[{"name": "...", "provider": "...", "url": "...", "duration": "..."}]`, Required: true},
			{Name: "projects", Type: `[{"name": "...", "description": "...", "skills": ["..."]}]`, Required: true},
			{Name: "certifications", Type: `[{"name": "...", "provider": "...", "url": "..."}]`, Required: true},
		},
	}
}

// CriticalReviewSchema is the output contract for the critical review.
func CriticalReviewSchema(description string) ExtractionSchema {
	return ExtractionSchema{
		Name:        "CriticalReview",
		Description: description,
		Fields: []SchemaField{
			{Name: "overallRating", Type: "integer", Description: "1 to 10", Required: true},
			{Name: "readinessLevel", Type: `"string"`, Description: "Not Ready, Nearly Ready, or Ready", Required: true},
			{Name: "strengths", Type: `["string"]`, Required: true},
			{Name: "weaknesses", Type: `["string"]`, Required: true},
			{Name: "redFlags", Type: `["string"]`},
			{Name: "actionableSteps", Type: `["string"]`, Required: true},
			{Name: "summary", Type: `"string"`, Required: true},
		},
	}
}
