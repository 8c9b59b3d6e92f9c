package schema

import (
	"fmt"
	"strings"
)

// Issue is one validation failure. Path[0] names the top-level field; an
// empty path marks a general issue not attributable to a field.
type Issue struct {
	Path    []string `json:"path"`
	Message string   `json:"message"`
}

// FieldIssue returns an issue attributed to field.
func FieldIssue(field, message string) Issue {
	return Issue{Path: []string{field}, Message: message}
}

// RootIssue returns an issue with no field attribution.
func RootIssue(message string) Issue {
	return Issue{Message: message}
}

// Field returns the top-level field name, or "" for a root issue.
func (i Issue) Field() string {
	if len(i.Path) == 0 {
		return ""
	}
	return i.Path[0]
}

// ValidationError reports a submission that failed its schema. It is
// returned instead of a store error when no store call was made.
type ValidationError struct {
	Issues      []Issue
	FieldErrors map[string]string
}

// NewValidationError reduces issues into field errors.
func NewValidationError(issues []Issue) *ValidationError {
	return &ValidationError{
		Issues:      issues,
		FieldErrors: Reduce(issues),
	}
}

func (e *ValidationError) Error() string {
	if len(e.FieldErrors) == 0 {
		return fmt.Sprintf("validation failed: %d issues", len(e.Issues))
	}
	fields := make([]string, 0, len(e.FieldErrors))
	for _, i := range e.Issues {
		if f := i.Field(); f != "" && !contains(fields, f) {
			fields = append(fields, f)
		}
	}
	return "validation failed: " + strings.Join(fields, ", ")
}

// RootMessages returns the messages of issues without a field path.
func (e *ValidationError) RootMessages() []string {
	var out []string
	for _, i := range e.Issues {
		if i.Field() == "" {
			out = append(out, i.Message)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
