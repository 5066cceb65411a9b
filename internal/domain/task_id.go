package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// TaskID identifies a backlog task. Tasks are located and compared by
// TaskID only, never by content.
type TaskID string

// maxTaskIDLength is the maximum allowed length for a task ID
const maxTaskIDLength = 100

// NewTaskID creates a new TaskID value object with validation
func NewTaskID(value string) (TaskID, error) {
	id := TaskID(strings.TrimSpace(value))
	if err := id.Validate(); err != nil {
		return "", err
	}
	return id, nil
}

// Validate checks if the task ID is valid
func (t TaskID) Validate() error {
	s := string(t)

	if s == "" {
		return fmt.Errorf("task ID cannot be empty")
	}

	if len(s) > maxTaskIDLength {
		return fmt.Errorf("task ID %q exceeds maximum length of %d characters", s, maxTaskIDLength)
	}

	if strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return fmt.Errorf("task ID %q cannot contain whitespace", s)
	}

	return nil
}

// Prefix returns the part of the ID before the first hyphen, or the whole
// ID when it has no hyphen ("SEC-001" -> "SEC").
func (t TaskID) Prefix() string {
	s := string(t)
	if i := strings.IndexByte(s, '-'); i >= 0 {
		return s[:i]
	}
	return s
}

// String returns the string representation
func (t TaskID) String() string {
	return string(t)
}

// Equals checks if this task ID equals another
func (t TaskID) Equals(other TaskID) bool {
	return t == other
}
