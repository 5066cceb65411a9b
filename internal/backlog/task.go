package backlog

import (
	"strings"

	"github.com/felixgeelhaar/taskweave/internal/domain"
	"github.com/felixgeelhaar/taskweave/internal/errors"
)

// Task is a unit of backlog work. Tasks are identified by ID only; two
// tasks with identical content but different IDs stay distinct.
type Task struct {
	ID                  string   `json:"id" yaml:"id"`
	Title               string   `json:"title,omitempty" yaml:"title,omitempty"`
	Description         string   `json:"description,omitempty" yaml:"description,omitempty"`
	Category            string   `json:"category,omitempty" yaml:"category,omitempty"`
	FilesLikelyModified []string `json:"files_likely_modified,omitempty" yaml:"files_likely_modified,omitempty"`
	AcceptanceCriteria  []string `json:"acceptance_criteria,omitempty" yaml:"acceptance_criteria,omitempty"`
	DependsOn           []string `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
}

// TaskID returns the task's identifier as a value object.
func (t Task) TaskID() domain.TaskID {
	return domain.TaskID(t.ID)
}

// Prefix returns the ID segment before the first hyphen.
func (t Task) Prefix() string {
	return t.TaskID().Prefix()
}

// Text returns the title and description joined by a space.
func (t Task) Text() string {
	return t.Title + " " + t.Description
}

// DependencyMap maps a task ID to the IDs it depends on.
// IDs on either side may be unknown to the current task set.
type DependencyMap map[string][]string

// Sanitize drops tasks that cannot take part in a run: tasks without an ID
// and later tasks repeating an earlier ID. Any other ID is kept as written,
// spaces included. The returned errors are warnings; the remaining tasks
// keep their document order.
func Sanitize(tasks []Task) ([]Task, []*errors.Error) {
	var (
		kept     = make([]Task, 0, len(tasks))
		warnings []*errors.Error
		seen     = make(map[string]struct{}, len(tasks))
	)

	for i, t := range tasks {
		t.ID = strings.TrimSpace(t.ID)
		if t.ID == "" {
			warnings = append(warnings, errors.NewMalformedTaskError(i, "missing id"))
			continue
		}
		if _, dup := seen[t.ID]; dup {
			warnings = append(warnings, errors.NewDuplicateTaskError(t.ID, i))
			continue
		}
		seen[t.ID] = struct{}{}
		kept = append(kept, t)
	}

	return kept, warnings
}

// Dependencies builds the task-level dependency map from each task's
// depends_on list merged with an externally supplied map. Duplicate edges
// collapse; self-dependencies are dropped.
func Dependencies(tasks []Task, external DependencyMap) DependencyMap {
	deps := make(DependencyMap)
	seen := make(map[[2]string]struct{})

	add := func(from, to string) {
		from, to = strings.TrimSpace(from), strings.TrimSpace(to)
		if from == "" || to == "" || from == to {
			return
		}
		key := [2]string{from, to}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		deps[from] = append(deps[from], to)
	}

	for _, t := range tasks {
		for _, d := range t.DependsOn {
			add(t.ID, d)
		}
	}
	for _, t := range tasks {
		for _, d := range external[t.ID] {
			add(t.ID, d)
		}
	}
	return deps
}
