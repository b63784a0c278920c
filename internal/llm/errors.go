package llm

import (
	"fmt"
	"unicode/utf8"
)

// maxPrefixLen bounds how much of an unparseable response is kept for logs.
const maxPrefixLen = 200

// ExtractionError is returned when no JSON object can be recovered from a response.
type ExtractionError struct {
	Message string
	Prefix  string // at most 200 characters of the offending text
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction error: %s (text: %q)", e.Message, e.Prefix)
}

// ReasoningCallError is returned when the reasoning service call itself fails:
// transport errors, quota, timeouts, empty responses.
type ReasoningCallError struct {
	Stage   Stage
	Model   string
	Message string
	Cause   error
}

func (e *ReasoningCallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("reasoning call failed for %s (%s): %s: %v", e.Stage, e.Model, e.Message, e.Cause)
	}
	return fmt.Sprintf("reasoning call failed for %s (%s): %s", e.Stage, e.Model, e.Message)
}

func (e *ReasoningCallError) Unwrap() error {
	return e.Cause
}

// truncatePrefix returns at most maxPrefixLen characters of s without
// splitting a multi-byte rune.
func truncatePrefix(s string) string {
	if utf8.RuneCountInString(s) <= maxPrefixLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxPrefixLen])
}
