package cluster

import (
	"github.com/felixgeelhaar/taskweave/internal/backlog"
	"github.com/felixgeelhaar/taskweave/internal/similarity"
)

// Insertion defaults.
const (
	DefaultInsertThreshold = 0.15
	DefaultMaxClusters     = 20
	DefaultMaxClusterSize  = 15
)

// Placement describes where an inserted task went.
type Placement string

// Placements
const (
	PlacementExisting Placement = "existing"
	PlacementNew      Placement = "new"
)

// InsertResult is the outcome of one insertion.
type InsertResult struct {
	// Clusters is the updated cluster list.
	Clusters []Cluster
	// Placement says whether the task joined a cluster or started one.
	Placement Placement
	// Index is the position of the cluster holding the task in Clusters.
	Index int
	// Score is the best average similarity to an existing cluster, or 0.
	Score float64
	// Split reports whether an oversized cluster was split.
	Split bool
}

// Inserter places single tasks into an existing cluster list.
type Inserter struct {
	// Threshold below which the task starts its own cluster, as long as
	// there are fewer than MaxClusters clusters.
	Threshold   float64
	MaxClusters int
	// MaxSize is the largest cluster kept whole after an insertion.
	MaxSize int
}

// NewInserter creates an inserter with the default limits.
func NewInserter() Inserter {
	return Inserter{
		Threshold:   DefaultInsertThreshold,
		MaxClusters: DefaultMaxClusters,
		MaxSize:     DefaultMaxClusterSize,
	}
}

// Insert places task into clusters. The input slice is not modified.
//
// The task joins the cluster with the highest average similarity to it,
// at the front when priorityOverride is set. If that similarity is below
// Threshold and the cluster cap allows, it starts a new cluster instead.
// Afterwards at most one cluster larger than MaxSize is split at its
// midpoint; the second half is appended and the list re-sorted by size.
func (in Inserter) Insert(task backlog.Task, clusters []Cluster, scorer similarity.Func, priorityOverride bool) InsertResult {
	out := make([]Cluster, len(clusters), len(clusters)+2)
	for i, c := range clusters {
		out[i] = c.Clone()
	}

	best, bestScore := -1, -1.0
	for i, c := range out {
		if c.Len() == 0 {
			continue
		}
		sum := 0.0
		for _, member := range c.Tasks {
			sum += scorer.Score(task, member)
		}
		if avg := sum / float64(c.Len()); avg > bestScore {
			best, bestScore = i, avg
		}
	}

	res := InsertResult{Placement: PlacementExisting}
	if best >= 0 {
		res.Score = bestScore
	}

	lowScore := best < 0 || bestScore < in.Threshold-scoreEpsilon
	if best < 0 || (lowScore && len(out) < in.MaxClusters) {
		out = append(out, Cluster{Tasks: []backlog.Task{task}})
		res.Placement = PlacementNew
	} else if priorityOverride {
		out[best].Tasks = append([]backlog.Task{task}, out[best].Tasks...)
	} else {
		out[best].Tasks = append(out[best].Tasks, task)
	}

	if in.MaxSize > 0 {
		for i, c := range out {
			if c.Len() <= in.MaxSize {
				continue
			}
			mid := c.Len() / 2
			head := append([]backlog.Task(nil), c.Tasks[:mid]...)
			tail := append([]backlog.Task(nil), c.Tasks[mid:]...)
			out[i].Tasks = head
			out = append(out, Cluster{Tasks: tail})
			res.Split = true
			break
		}
	}
	if res.Split {
		SortBySize(out)
	}

	res.Clusters = out
	res.Index = IndexOf(out, task.ID)
	return res
}
