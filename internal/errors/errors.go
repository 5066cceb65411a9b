package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Backlog document errors (DOC-001 to DOC-099)
	ErrCodeDocNotFound    ErrorCode = "DOC-001"
	ErrCodeDocInvalid     ErrorCode = "DOC-002"
	ErrCodeDocWriteFailed ErrorCode = "DOC-003"
	ErrCodeDocUnsupported ErrorCode = "DOC-004"

	// Task errors (TASK-001 to TASK-099)
	ErrCodeTaskMalformed ErrorCode = "TASK-001"
	ErrCodeTaskDuplicate ErrorCode = "TASK-002"
	ErrCodeTaskNotFound  ErrorCode = "TASK-003"

	// Embedding errors (EMBED-001 to EMBED-099)
	ErrCodeEmbedUnavailable ErrorCode = "EMBED-001"
	ErrCodeEmbedCache       ErrorCode = "EMBED-002"
	ErrCodeEmbedConfig      ErrorCode = "EMBED-003"

	// Graph errors (GRAPH-001 to GRAPH-099)
	ErrCodeGraphUnsortable  ErrorCode = "GRAPH-001"
	ErrCodeGraphUtilsFailed ErrorCode = "GRAPH-002"

	// Concurrency errors (LOCK-001 to LOCK-099)
	ErrCodeLockBusy ErrorCode = "LOCK-001"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigInvalid ErrorCode = "CONFIG-001"

	// Insertion errors (INSERT-001 to INSERT-099)
	ErrCodeInsertInvalid ErrorCode = "INSERT-001"
)

// Error represents an enhanced error with code, suggestions, and documentation
type Error struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new Error wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *Error) WithSuggestions(suggestions ...string) *Error {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *Error) WithDocs(url string) *Error {
	e.DocsURL = url
	return e
}

// CodeOf returns the code of the first coded error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ""
}

// HasCode reports whether err's chain carries the given code.
func HasCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// Common error constructors for frequently used errors

// NewDocNotFoundError creates a backlog document not found error
func NewDocNotFoundError(path string) *Error {
	return New(ErrCodeDocNotFound, fmt.Sprintf("backlog document not found: %s", path)).
		WithSuggestion("Check the --doc path or document.path in your config").
		WithSuggestion("Run 'taskweave config view' to see the resolved document path")
}

// NewDocInvalidError creates a document parse error
func NewDocInvalidError(path string, cause error) *Error {
	return Wrap(ErrCodeDocInvalid, fmt.Sprintf("failed to parse backlog document: %s", path), cause).
		WithSuggestion("Check the file syntax (JSON for .json, YAML for .yaml/.yml)").
		WithSuggestion("Ensure 'tasks' is a list of task objects")
}

// NewDocWriteError creates a document write error
func NewDocWriteError(path string, cause error) *Error {
	return Wrap(ErrCodeDocWriteFailed, fmt.Sprintf("failed to write backlog document: %s", path), cause).
		WithSuggestion("Verify you have write permissions for the document directory")
}

// NewMalformedTaskError creates an error describing a skipped task
func NewMalformedTaskError(position int, reason string) *Error {
	return New(ErrCodeTaskMalformed, fmt.Sprintf("task at position %d skipped: %s", position, reason))
}

// NewDuplicateTaskError creates an error describing a skipped duplicate task
func NewDuplicateTaskError(id string, position int) *Error {
	return New(ErrCodeTaskDuplicate, fmt.Sprintf("task %s at position %d duplicates an earlier id and was skipped", id, position))
}

// NewTaskNotFoundError creates an error for an unknown task id
func NewTaskNotFoundError(id, path string) *Error {
	return New(ErrCodeTaskNotFound, fmt.Sprintf("task %s not found in %s", id, path)).
		WithSuggestion("Run 'taskweave clusters' to list task ids")
}

// NewEmbedUnavailableError creates a degradable embedding provider error
func NewEmbedUnavailableError(provider string, cause error) *Error {
	return Wrap(ErrCodeEmbedUnavailable, fmt.Sprintf("embedding provider %q unavailable, using file overlap only", provider), cause).
		WithSuggestion("Check the embedding endpoint is reachable").
		WithSuggestion("Use --no-embed to skip semantic similarity explicitly")
}

// NewUnsortableGraphError creates an error for a cluster graph that cannot be ordered
func NewUnsortableGraphError(remainingCycles int) *Error {
	return New(ErrCodeGraphUnsortable, fmt.Sprintf("cluster graph still has %d cycle(s) after cycle breaking, keeping pre-sort order", remainingCycles))
}

// NewLockBusyError creates a lock contention error
func NewLockBusyError(path string) *Error {
	return New(ErrCodeLockBusy, fmt.Sprintf("another run holds the lock for %s", path)).
		WithSuggestion("Wait for the running reorganize to finish and retry")
}

// NewConfigInvalidError creates a configuration validation error
func NewConfigInvalidError(details string) *Error {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", details)).
		WithSuggestion("Run 'taskweave config view' to inspect the resolved configuration")
}

// NewInsertInvalidError creates an error for a task that cannot be inserted
func NewInsertInvalidError(details string) *Error {
	return New(ErrCodeInsertInvalid, fmt.Sprintf("cannot insert task: %s", details))
}
