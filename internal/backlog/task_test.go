package backlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskweave/internal/errors"
)

func TestSanitize(t *testing.T) {
	tasks := []Task{
		{ID: "SEC-001", Title: "Sanitize input"},
		{ID: "", Title: "No id"},
		{ID: " API-001 ", Title: "Rate limit"},
		{ID: "SEC-001", Title: "Duplicate"},
		{ID: "UI-001", Title: "Sanitize input"},
	}

	kept, warnings := Sanitize(tasks)

	require.Len(t, kept, 3)
	assert.Equal(t, "SEC-001", kept[0].ID)
	assert.Equal(t, "API-001", kept[1].ID, "ids are trimmed")
	assert.Equal(t, "UI-001", kept[2].ID, "same content with a different id stays")
	assert.Equal(t, "Sanitize input", kept[0].Title)

	require.Len(t, warnings, 2)
	assert.Equal(t, errors.ErrCodeTaskMalformed, warnings[0].Code)
	assert.Equal(t, errors.ErrCodeTaskDuplicate, warnings[1].Code)
}

func TestSanitizeKeepsIDsWithSpaces(t *testing.T) {
	kept, warnings := Sanitize([]Task{{ID: "Task 1"}, {ID: "SEC-001"}, {ID: "   "}})

	require.Len(t, kept, 2)
	assert.Equal(t, "Task 1", kept[0].ID)
	require.Len(t, warnings, 1)
	assert.Equal(t, errors.ErrCodeTaskMalformed, warnings[0].Code)
}

func TestSanitizeDoesNotMutateInput(t *testing.T) {
	tasks := []Task{{ID: "  DB-001  "}}
	_, _ = Sanitize(tasks)
	assert.Equal(t, "  DB-001  ", tasks[0].ID)
}

func TestDependencies(t *testing.T) {
	tasks := []Task{
		{ID: "API-001", DependsOn: []string{"DB-001", "DB-001", "API-001"}},
		{ID: "DB-001"},
		{ID: "UI-001", DependsOn: []string{"GHOST-9"}},
	}
	external := DependencyMap{
		"API-001": {"SEC-001", "DB-001"},
		"NOPE-1":  {"DB-001"},
	}

	deps := Dependencies(tasks, external)

	assert.Equal(t, []string{"DB-001", "SEC-001"}, deps["API-001"])
	assert.Equal(t, []string{"GHOST-9"}, deps["UI-001"], "unknown ids are kept for the orderer to ignore")
	assert.NotContains(t, deps, "DB-001")
	assert.NotContains(t, deps, "NOPE-1")
}

func TestTaskHelpers(t *testing.T) {
	task := Task{ID: "CORE-12", Title: "Build", Description: "the thing"}
	assert.Equal(t, "CORE", task.Prefix())
	assert.Equal(t, "Build the thing", task.Text())
}
