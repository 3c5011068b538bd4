package client

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/congvan/types"
)

// APIError is a non-2xx response from the backend
type APIError struct {
	StatusCode int
	Message    string
	Fields     types.FieldErrors
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
}

// ValidationError is the in-band rejection of a create or update body: a
// 200 response whose message is the validation sentinel
type ValidationError struct {
	Fields types.FieldErrors
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields.Fields() {
		parts = append(parts, f+": "+e.Fields[f])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// FieldErrors returns the per-field messages of the response, if any
func (e *APIError) FieldErrors() types.FieldErrors { return e.Fields }

// FieldErrors returns the per-field messages
func (e *ValidationError) FieldErrors() types.FieldErrors { return e.Fields }
