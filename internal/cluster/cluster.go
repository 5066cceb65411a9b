// Package cluster groups related tasks so they are worked on together.
package cluster

import (
	"fmt"
	"sort"

	"github.com/felixgeelhaar/taskweave/internal/backlog"
)

// scoreEpsilon absorbs float rounding when comparing scores to thresholds,
// so 0.6 * 1/3 counts as reaching a 0.2 threshold.
const scoreEpsilon = 1e-9

// Cluster is an ordered group of tasks. Order matters: priority insertions
// go to the front.
type Cluster struct {
	Name  string         `json:"name" yaml:"name"`
	Tasks []backlog.Task `json:"tasks" yaml:"tasks"`
}

// Len returns the number of tasks.
func (c Cluster) Len() int {
	return len(c.Tasks)
}

// IDs returns the member task ids in order.
func (c Cluster) IDs() []string {
	ids := make([]string, len(c.Tasks))
	for i, t := range c.Tasks {
		ids[i] = t.ID
	}
	return ids
}

// Contains reports whether a task id is a member.
func (c Cluster) Contains(id string) bool {
	for _, t := range c.Tasks {
		if t.ID == id {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no task slice with c.
func (c Cluster) Clone() Cluster {
	return Cluster{Name: c.Name, Tasks: append([]backlog.Task(nil), c.Tasks...)}
}

// Sizes returns the size of every cluster in order.
func Sizes(clusters []Cluster) []int {
	out := make([]int, len(clusters))
	for i, c := range clusters {
		out[i] = c.Len()
	}
	return out
}

// SortBySize orders clusters by size, largest first, keeping the relative
// order of equal-sized clusters.
func SortBySize(clusters []Cluster) {
	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].Len() > clusters[j].Len()
	})
}

// IndexOf returns the position of the cluster holding a task id, or -1.
func IndexOf(clusters []Cluster, id string) int {
	for i, c := range clusters {
		if c.Contains(id) {
			return i
		}
	}
	return -1
}

// CheckPartition verifies that clusters hold every task exactly once,
// nothing else, and that no cluster is empty.
func CheckPartition(tasks []backlog.Task, clusters []Cluster) error {
	want := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		want[t.ID] = true
	}

	seen := make(map[string]bool, len(tasks))
	for i, c := range clusters {
		if c.Len() == 0 {
			return fmt.Errorf("cluster %d is empty", i)
		}
		for _, t := range c.Tasks {
			if !want[t.ID] {
				return fmt.Errorf("cluster %d holds unknown task %s", i, t.ID)
			}
			if seen[t.ID] {
				return fmt.Errorf("task %s appears in more than one place", t.ID)
			}
			seen[t.ID] = true
		}
	}

	if len(seen) != len(want) {
		for _, t := range tasks {
			if !seen[t.ID] {
				return fmt.Errorf("task %s is not in any cluster", t.ID)
			}
		}
	}
	return nil
}
