// Package skills compares skill sets: canonical skill identity, gap analysis
// against target jobs, fit scoring, and path comparison.
package skills

import (
	"strings"
)

// skillSynonyms collapses common spellings of one technology onto one key.
// Keys and values are lowercase with single spaces.
var skillSynonyms = map[string]string{
	"js":                      "javascript",
	"ecmascript":              "javascript",
	"ts":                      "typescript",
	"python3":                 "python",
	"python 3":                "python",
	"py":                      "python",
	"golang":                  "go",
	"go lang":                 "go",
	"node":                    "nodejs",
	"node.js":                 "nodejs",
	"node js":                 "nodejs",
	"react.js":                "react",
	"reactjs":                 "react",
	"react js":                "react",
	"vue.js":                  "vue",
	"vuejs":                   "vue",
	"angularjs":               "angular",
	"angular.js":              "angular",
	"next.js":                 "nextjs",
	"k8s":                     "kubernetes",
	"postgres":                "postgresql",
	"psql":                    "postgresql",
	"mongo":                   "mongodb",
	"amazon web services":     "aws",
	"google cloud":            "gcp",
	"google cloud platform":   "gcp",
	"microsoft azure":         "azure",
	"c sharp":                 "c#",
	"csharp":                  "c#",
	"cpp":                     "c++",
	"ci/cd":                   "cicd",
	"ci cd":                   "cicd",
	"machine learning":        "ml",
	"artificial intelligence": "ai",
	"tf":                      "terraform",
}

// CanonicalKey maps a skill name to its comparison key: lowercase, trimmed,
// inner whitespace collapsed, and known synonyms folded together.
// The key is for equality checks only, never for display.
func CanonicalKey(skill string) string {
	key := strings.ToLower(strings.Join(strings.Fields(skill), " "))
	if canonical, ok := skillSynonyms[key]; ok {
		return canonical
	}
	return key
}

// Deduplicate removes skills whose canonical keys collide, keeping the first
// occurrence's (trimmed) spelling and the original order. Blank entries are dropped.
func Deduplicate(skills []string) []string {
	result := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))

	for _, skill := range skills {
		key := CanonicalKey(skill)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, strings.TrimSpace(skill))
	}

	return result
}

// KeySet returns the set of canonical keys for skills.
func KeySet(skills []string) map[string]struct{} {
	set := make(map[string]struct{}, len(skills))
	for _, skill := range skills {
		if key := CanonicalKey(skill); key != "" {
			set[key] = struct{}{}
		}
	}
	return set
}
