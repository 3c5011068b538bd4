package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/arthur-debert/congvan/client"
	"github.com/arthur-debert/congvan/types"
)

// CLIError represents a user-friendly CLI error with context and suggestions
type CLIError struct {
	Operation   string   // The operation that failed (e.g., "list", "finish")
	Cause       string   // The underlying cause (e.g., "document not found")
	Details     string   // Additional technical details
	Suggestions []string // Helpful suggestions for the user
	Underlying  error    // Original error for debugging
}

// Error implements the error interface
func (e *CLIError) Error() string {
	var msg strings.Builder

	if e.Operation != "" {
		msg.WriteString(fmt.Sprintf("Failed to %s", e.Operation))
	} else {
		msg.WriteString("Operation failed")
	}

	if e.Cause != "" {
		msg.WriteString(fmt.Sprintf(": %s", e.Cause))
	}

	if e.Details != "" {
		msg.WriteString(fmt.Sprintf(" (%s)", e.Details))
	}

	if len(e.Suggestions) > 0 {
		msg.WriteString("\n\nSuggestions:")
		for i, suggestion := range e.Suggestions {
			msg.WriteString(fmt.Sprintf("\n  %d. %s", i+1, suggestion))
		}
	}

	return msg.String()
}

// Unwrap returns the underlying error for error chain compatibility
func (e *CLIError) Unwrap() error {
	return e.Underlying
}

// NewValidationError reports per-field problems of a form body
func NewValidationError(operation string, fields types.FieldErrors, underlying error) *CLIError {
	parts := make([]string, 0, len(fields))
	for _, f := range fields.Fields() {
		parts = append(parts, fmt.Sprintf("%s: %s", f, fields[f]))
	}
	return &CLIError{
		Operation:   operation,
		Cause:       "invalid input",
		Details:     strings.Join(parts, "; "),
		Suggestions: []string{"Dates use the DD/MM/YYYY format", CommonSuggestions.RunHelp},
		Underlying:  underlying,
	}
}

// NewNotFoundError creates an error for a document missing from a register
func NewNotFoundError(operation string, t types.DocumentType, id string) *CLIError {
	return &CLIError{
		Operation:   operation,
		Cause:       fmt.Sprintf("document %q not found in the %s register", id, t),
		Suggestions: []string{CommonSuggestions.CheckID, CommonSuggestions.CheckType},
		Underlying:  types.ErrNotFound,
	}
}

// NewConfigError creates an error for configuration issues
func NewConfigError(operation string, underlying error) *CLIError {
	return &CLIError{
		Operation:   operation,
		Cause:       "configuration error",
		Details:     underlying.Error(),
		Suggestions: []string{CommonSuggestions.CheckConfig, CommonSuggestions.CheckFlags},
		Underlying:  underlying,
	}
}

// NewTypeError creates an error for an unknown register name
func NewTypeError(operation, typeName string) *CLIError {
	names := make([]string, len(types.DocumentTypes))
	for i, t := range types.DocumentTypes {
		names[i] = string(t)
	}
	return &CLIError{
		Operation: operation,
		Cause:     fmt.Sprintf("invalid document type: %q", typeName),
		Suggestions: []string{
			"Use --type to choose a register",
			fmt.Sprintf("Available types: %s", strings.Join(names, ", ")),
		},
		Underlying: types.ErrUnknownDocumentType,
	}
}

// NewBackendError creates an error for a failed backend call
func NewBackendError(operation string, underlying error, suggestions ...string) *CLIError {
	cause := "backend request failed"
	details := ""

	if underlying != nil {
		details = underlying.Error()

		var apiErr *client.APIError
		switch {
		case errors.Is(underlying, context.DeadlineExceeded):
			cause = "backend did not answer in time"
			suggestions = append(suggestions, "Increase --timeout")
		case errors.Is(underlying, context.Canceled):
			cause = "interrupted"
		case errors.As(underlying, &apiErr):
			switch {
			case apiErr.StatusCode == http.StatusNotFound:
				cause = "resource not found"
			case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
				cause = "access denied by backend"
			case apiErr.StatusCode >= 500:
				cause = "backend error"
			}
		case strings.Contains(strings.ToLower(details), "connection refused"):
			cause = "backend unreachable"
			suggestions = append(suggestions, CommonSuggestions.CheckAPI)
		}
	}

	return &CLIError{
		Operation:   operation,
		Cause:       cause,
		Details:     details,
		Suggestions: suggestions,
		Underlying:  underlying,
	}
}

// WrapError wraps an existing error with CLI-friendly context
func WrapError(operation string, err error, suggestions ...string) error {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		if cliErr.Operation == "" {
			cliErr.Operation = operation
		}
		return cliErr
	}

	if fields := types.FieldErrorsOf(err); fields != nil {
		return NewValidationError(operation, fields, err)
	}
	if errors.Is(err, types.ErrUnknownDocumentType) {
		return &CLIError{Operation: operation, Cause: err.Error(), Underlying: err,
			Suggestions: []string{CommonSuggestions.CheckType}}
	}

	return NewBackendError(operation, err, suggestions...)
}

// Common error messages and suggestions
var (
	CommonSuggestions = struct {
		CheckAPI    string
		CheckType   string
		CheckID     string
		CheckConfig string
		CheckFlags  string
		RunHelp     string
		CheckPerms  string
	}{
		CheckAPI:    "Verify --api-url points to a running backend",
		CheckType:   "Verify --type matches the document's register",
		CheckID:     "Verify the document id or number exists (try 'list' first)",
		CheckConfig: "Check your configuration file or CONGVAN_* environment variables",
		CheckFlags:  "Check command line flags and their values",
		RunHelp:     "Run command with --help for usage information",
		CheckPerms:  "Check file permissions and directory access",
	}
)
