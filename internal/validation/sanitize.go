package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Resume length bounds accepted at the API boundary.
const (
	MinResumeLength = 50
	MaxResumeLength = 10000
)

var (
	skillNamePattern = regexp.MustCompile(`^[\p{L}\p{N}\s\-.+#/()&']+$`)
	jobTitlePattern  = regexp.MustCompile(`^[\p{L}\p{N}\s\-.,/()&+#':]+$`)
	keywordPattern   = regexp.MustCompile(`\b[a-zA-Z0-9+#]+\b`)
)

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
}

// SanitizeText removes NUL bytes, collapses runs of whitespace to single spaces
// and truncates to maxLength characters when maxLength > 0.
func SanitizeText(text string, maxLength int) string {
	if text == "" {
		return ""
	}
	text = strings.ReplaceAll(text, "\x00", "")
	text = strings.Join(strings.Fields(text), " ")
	if maxLength > 0 && utf8.RuneCountInString(text) > maxLength {
		text = string([]rune(text)[:maxLength])
	}
	return strings.TrimSpace(text)
}

// ValidateSkillName reports whether skill looks like a skill name: 1 to 100
// characters of letters, digits, spaces and - . + # / ( ) & '. Single letters
// such as "C" and "R" are languages.
func ValidateSkillName(skill string) bool {
	n := utf8.RuneCountInString(skill)
	if n < 1 || n > 100 {
		return false
	}
	return skillNamePattern.MatchString(skill)
}

// ValidateJobTitle reports whether title looks like a job title:
// 2 to 200 characters of letters, digits, spaces and common punctuation.
func ValidateJobTitle(title string) bool {
	n := utf8.RuneCountInString(title)
	if n < 2 || n > 200 {
		return false
	}
	return jobTitlePattern.MatchString(title)
}

// ValidateTargetJobs checks every title with ValidateJobTitle.
func ValidateTargetJobs(titles []string) error {
	for i, title := range titles {
		if !ValidateJobTitle(strings.TrimSpace(title)) {
			return &Error{
				Field:   fmt.Sprintf("target_jobs[%d]", i),
				Message: fmt.Sprintf("Invalid job title: %q", title),
			}
		}
	}
	return nil
}

// SanitizeList sanitizes every item, drops blanks and case-insensitive
// duplicates (first wins), and keeps at most maxItems when maxItems > 0.
func SanitizeList(items []string, maxItems int) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		clean := SanitizeText(item, 0)
		if clean == "" {
			continue
		}
		lower := strings.ToLower(clean)
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}
		out = append(out, clean)
	}
	if maxItems > 0 && len(out) > maxItems {
		out = out[:maxItems]
	}
	return out
}

// ExtractKeywords returns distinct words (case-insensitive, first spelling wins)
// of at least minLength characters that are not stop words, capped at maxKeywords.
func ExtractKeywords(text string, minLength, maxKeywords int) []string {
	if text == "" {
		return []string{}
	}

	seen := make(map[string]struct{})
	keywords := []string{}
	for _, word := range keywordPattern.FindAllString(text, -1) {
		if len(word) < minLength {
			continue
		}
		lower := strings.ToLower(word)
		if _, stop := stopWords[lower]; stop {
			continue
		}
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}
		keywords = append(keywords, word)
		if maxKeywords > 0 && len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}

// ValidateResumeText checks that the trimmed resume is between minLength and
// maxLength characters.
func ValidateResumeText(text string, minLength, maxLength int) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return &Error{Field: "resume_text", Message: "Resume text cannot be empty"}
	}
	n := utf8.RuneCountInString(text)
	if n < minLength {
		return &Error{Field: "resume_text", Message: fmt.Sprintf("Resume text must be at least %d characters", minLength)}
	}
	if maxLength > 0 && n > maxLength {
		return &Error{Field: "resume_text", Message: fmt.Sprintf("Resume text must not exceed %d characters", maxLength)}
	}
	return nil
}
