package skills

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalKey(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "Python", expected: "python"},
		{input: "  python  ", expected: "python"},
		{input: "Python3", expected: "python"},
		{input: "JS", expected: "javascript"},
		{input: "JavaScript", expected: "javascript"},
		{input: "K8s", expected: "kubernetes"},
		{input: "Node.js", expected: "nodejs"},
		{input: "nodejs", expected: "nodejs"},
		{input: "Golang", expected: "go"},
		{input: "Amazon   Web  Services", expected: "aws"},
		{input: "Postgres", expected: "postgresql"},
		{input: "Machine Learning", expected: "ml"},
		{input: "Rust", expected: "rust"},
		{input: "   ", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, CanonicalKey(tt.input))
		})
	}
}

func TestDeduplicate(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "case collisions keep first spelling",
			input:    []string{"Python", "python", "PYTHON", "AWS"},
			expected: []string{"Python", "AWS"},
		},
		{
			name:     "synonyms collapse",
			input:    []string{"k8s", "Kubernetes", "JS", "JavaScript"},
			expected: []string{"k8s", "JS"},
		},
		{
			name:     "whitespace trimmed and blanks dropped",
			input:    []string{"  Docker ", "", "   ", "docker"},
			expected: []string{"Docker"},
		},
		{
			name:     "order preserved",
			input:    []string{"Terraform", "Go", "AWS"},
			expected: []string{"Terraform", "Go", "AWS"},
		},
		{
			name:     "nil input",
			input:    nil,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Deduplicate(tt.input))
		})
	}
}

func TestDeduplicate_NoKeyCollisions(t *testing.T) {
	input := []string{"React", "react.js", "ReactJS", "Vue", "vue.js", "TS", "typescript", "Go", "golang", "go lang"}
	out := Deduplicate(input)

	seen := map[string]bool{}
	for _, skill := range out {
		key := CanonicalKey(skill)
		assert.False(t, seen[key], "duplicate key %q", key)
		seen[key] = true
	}
	assert.Equal(t, []string{"React", "Vue", "TS", "Go"}, out)
}

func TestKeySet(t *testing.T) {
	set := KeySet([]string{"Python", "python3", " ", "AWS"})
	assert.Len(t, set, 2)
	assert.Contains(t, set, "python")
	assert.Contains(t, set, "aws")
}
