package verticle

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrStartFailed = errors.New("verticle start failed")
	ErrStopFailed  = errors.New("verticle stop failed")
)

// Violation is one invalid option field.
type Violation struct {
	Field  string
	Reason string
}

// ValidationError reports every invalid field of an options struct, not just
// the first one found. It is always returned before any runtime interaction.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.Field + " " + v.Reason
	}
	return "invalid options: " + strings.Join(parts, "; ")
}

// Add records a violation.
func (e *ValidationError) Add(field, reason string) {
	e.Violations = append(e.Violations, Violation{Field: field, Reason: reason})
}

func (e *ValidationError) Addf(field, format string, args ...any) {
	e.Add(field, fmt.Sprintf(format, args...))
}

// OrNil returns the error if any violation was recorded, else nil.
// Returning the typed nil pointer directly would yield a non-nil error
// interface, hence this helper.
func (e *ValidationError) OrNil() error {
	if len(e.Violations) == 0 {
		return nil
	}
	return e
}
