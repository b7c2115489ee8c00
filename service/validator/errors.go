package validator

import (
	"fmt"
	"strings"
)

// FieldError describes a single structural violation.
type FieldError struct {
	Path     string `json:"path"`
	Message  string `json:"message"`
	Expected string `json:"expected,omitempty"`
	Received string `json:"received,omitempty"`
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Severity grades a semantic issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue describes a single semantic inconsistency.
type Issue struct {
	Severity Severity `json:"severity"`
	Path     string   `json:"path"`
	Message  string   `json:"message"`
}

// StepValidationError is the typed error raised by the asserting validators.
// Its message carries up to the first three offending paths plus a count of
// the remainder, which keeps log lines bounded however broken the envelope.
type StepValidationError struct {
	Envelope   string
	Violations []FieldError
}

func (e *StepValidationError) Error() string {
	const maxShown = 3
	paths := make([]string, 0, maxShown)
	for i, violation := range e.Violations {
		if i == maxShown {
			break
		}
		paths = append(paths, violation.Path)
	}
	msg := fmt.Sprintf("invalid %s: %s", e.Envelope, strings.Join(paths, ", "))
	if rest := len(e.Violations) - maxShown; rest > 0 {
		msg += fmt.Sprintf(" and %d more", rest)
	}
	return msg
}

// NewStepValidationError builds a StepValidationError for the named envelope.
func NewStepValidationError(envelope string, violations []FieldError) *StepValidationError {
	return &StepValidationError{Envelope: envelope, Violations: violations}
}
