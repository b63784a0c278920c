// Package ingestion turns resumes and job postings from files and URLs into
// plain text the roadmap pipeline can read.
package ingestion

import (
	"regexp"
	"strings"
)

var (
	innerSpaceRe  = regexp.MustCompile(`[ \t\f\v]+`)
	blankRunRe    = regexp.MustCompile(`\n{3,}`)
	bulletMarkers = []string{"- ", "* ", "• ", "· "}
)

// CleanText normalizes line endings and whitespace while keeping the line
// structure of headings and bullet lists.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.ReplaceAll(content, "\x00", "")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	result := blankRunRe.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine collapses runs of spaces inside a line. Bullets keep their indentation
// so nested lists survive; everything else is left-trimmed.
func cleanLine(line string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return ""
	}
	collapsed := innerSpaceRe.ReplaceAllString(trimmed, " ")

	if isBulletLine(trimmed) {
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		return strings.Repeat(" ", indent) + collapsed
	}
	return collapsed
}

func isBulletLine(trimmed string) bool {
	for _, marker := range bulletMarkers {
		if strings.HasPrefix(trimmed, marker) {
			return true
		}
	}
	return false
}
