// Package validation sanitizes and checks caller-supplied text before it reaches
// the pipeline or a prompt.
package validation

import "fmt"

// Error represents a general validation error
type Error struct {
	Field   string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	prefix := "validation error"
	if e.Field != "" {
		prefix = fmt.Sprintf("validation error in %s", e.Field)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
