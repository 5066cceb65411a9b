package engine

import (
	"time"

	"github.com/felixgeelhaar/taskweave/internal/cluster"
	"github.com/felixgeelhaar/taskweave/internal/errors"
	"github.com/felixgeelhaar/taskweave/internal/patch"
)

// ClusterSummary describes one cluster in final order.
type ClusterSummary struct {
	Name    string   `json:"name" yaml:"name"`
	Size    int      `json:"size" yaml:"size"`
	Phase   string   `json:"phase" yaml:"phase"`
	TaskIDs []string `json:"task_ids" yaml:"task_ids"`
}

// Warning is a degradable problem absorbed during a run.
type Warning struct {
	Code    string `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
}

// BrokenEdge is a cluster dependency removed to break a cycle.
type BrokenEdge struct {
	From   string `json:"from" yaml:"from"`
	To     string `json:"to" yaml:"to"`
	Weight int    `json:"weight" yaml:"weight"`
}

// InsertSummary describes where an inserted task landed.
type InsertSummary struct {
	TaskID    string  `json:"task_id" yaml:"task_id"`
	Placement string  `json:"placement" yaml:"placement"`
	Cluster   string  `json:"cluster" yaml:"cluster"`
	Position  int     `json:"position" yaml:"position"`
	Score     float64 `json:"score" yaml:"score"`
	Split     bool    `json:"split" yaml:"split"`
}

// Report is the outcome of one pipeline run.
type Report struct {
	RunID     string `json:"run_id" yaml:"run_id"`
	Operation string `json:"operation" yaml:"operation"`

	TaskCount    int `json:"task_count" yaml:"task_count"`
	SkippedTasks int `json:"skipped_tasks" yaml:"skipped_tasks"`

	Clusters []ClusterSummary `json:"clusters" yaml:"clusters"`

	CyclesDetected int          `json:"cycles_detected" yaml:"cycles_detected"`
	BrokenEdges    []BrokenEdge `json:"broken_edges,omitempty" yaml:"broken_edges,omitempty"`
	OrderFallback  bool         `json:"order_fallback" yaml:"order_fallback"`
	Semantic       bool         `json:"semantic" yaml:"semantic"`

	Warnings []Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	Insert *InsertSummary `json:"insert,omitempty" yaml:"insert,omitempty"`

	OldPriorityList []string `json:"old_priority_list" yaml:"old_priority_list"`
	NewPriorityList []string `json:"new_priority_list" yaml:"new_priority_list"`

	Applied   bool          `json:"applied" yaml:"applied"`
	Elapsed   time.Duration `json:"-" yaml:"-"`
	ElapsedMS int64         `json:"elapsed_ms" yaml:"elapsed_ms"`
}

// ClusterSizes returns the size of each cluster in final order.
func (r *Report) ClusterSizes() []int {
	sizes := make([]int, len(r.Clusters))
	for i, c := range r.Clusters {
		sizes[i] = c.Size
	}
	return sizes
}

// Diff compares the previous and new priority lists.
func (r *Report) Diff() *patch.Patch {
	return patch.NewDiffGenerator().Generate(patch.DefaultName, r.OldPriorityList, r.NewPriorityList)
}

// Changed reports whether the run altered the priority list.
func (r *Report) Changed() bool {
	return !r.Diff().IsEmpty()
}

func (r *Report) addWarning(err *errors.Error) {
	r.Warnings = append(r.Warnings, Warning{Code: string(err.Code), Message: err.Message})
}

func (r *Report) setElapsed(d time.Duration) {
	r.Elapsed = d
	r.ElapsedMS = d.Milliseconds()
}

func summarize(clusters []cluster.Cluster, phases []string) []ClusterSummary {
	out := make([]ClusterSummary, len(clusters))
	for i, c := range clusters {
		out[i] = ClusterSummary{
			Name:    c.Name,
			Size:    c.Len(),
			TaskIDs: c.IDs(),
		}
		if i < len(phases) {
			out[i].Phase = phases[i]
		}
	}
	return out
}
