// Package order sequences clusters so prerequisites come first, then
// regroups them by build phase.
package order

import (
	"fmt"

	"github.com/felixgeelhaar/taskweave/internal/backlog"
	"github.com/felixgeelhaar/taskweave/internal/classify"
	"github.com/felixgeelhaar/taskweave/internal/cluster"
	"github.com/felixgeelhaar/taskweave/internal/domain"
	"github.com/felixgeelhaar/taskweave/internal/errors"
	"github.com/felixgeelhaar/taskweave/internal/graph"
)

// GraphUtils are the graph primitives the orderer relies on.
type GraphUtils interface {
	DetectCycles(g graph.Graph) [][]int
	TopologicalSort(g graph.Graph) ([]int, bool)
}

// DefaultGraphUtils delegates to package graph.
type DefaultGraphUtils struct{}

// DetectCycles implements GraphUtils.
func (DefaultGraphUtils) DetectCycles(g graph.Graph) [][]int {
	return graph.DetectCycles(g)
}

// TopologicalSort implements GraphUtils.
func (DefaultGraphUtils) TopologicalSort(g graph.Graph) ([]int, bool) {
	return graph.TopologicalSort(g)
}

// Result is the outcome of ordering a cluster list.
type Result struct {
	// Clusters in final order.
	Clusters []cluster.Cluster
	// Order maps final positions to input cluster indices.
	Order []int
	// Phases holds the phase of each cluster in final order.
	Phases []domain.Phase
	// Cycles lists every cycle detected, across all breaking passes.
	Cycles [][]int
	// Broken lists the edges removed to break cycles.
	Broken []Edge
	// Fallback is set when the pre-sort order was kept.
	Fallback bool
	// Warnings holds degradable errors (GRAPH-001, GRAPH-002).
	Warnings []*errors.Error
}

// Orderer computes the final cluster order.
type Orderer struct {
	utils      GraphUtils
	classifier classify.Classifier
	maxPasses  int
}

// Option configures an Orderer.
type Option func(*Orderer)

// WithGraphUtils replaces the graph primitives.
func WithGraphUtils(u GraphUtils) Option {
	return func(o *Orderer) {
		o.utils = u
	}
}

// WithClassifier replaces the phase classifier. Tags must be phase names.
func WithClassifier(c classify.Classifier) Option {
	return func(o *Orderer) {
		o.classifier = c
	}
}

// WithMaxBreakPasses caps cycle-breaking passes. 0 repeats until the graph
// is acyclic; every pass removes at least one edge so this terminates.
func WithMaxBreakPasses(n int) Option {
	return func(o *Orderer) {
		o.maxPasses = n
	}
}

// New creates an Orderer.
func New(opts ...Option) *Orderer {
	o := &Orderer{
		utils:      DefaultGraphUtils{},
		classifier: classify.NewPhaseClassifier(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Order sequences clusters using task-level deps:
//
//  1. project deps onto a cluster graph
//  2. detect cycles and remove the weakest edge of each, repeating until
//     acyclic or the pass limit is hit
//  3. topologically sort, keeping the input order if that fails
//  4. stable-partition into foundational, business-logic, other and
//     ui-polish clusters
//
// Graph utility failures never abort ordering; they are returned as warnings.
func (o *Orderer) Order(clusters []cluster.Cluster, deps backlog.DependencyMap) Result {
	var res Result

	cg := BuildClusterGraph(clusters, deps)
	sorted, ok := o.sort(cg, &res)
	if !ok {
		res.Fallback = true
		sorted = make([]int, len(clusters))
		for i := range sorted {
			sorted[i] = i
		}
	}

	phases := make([]domain.Phase, len(clusters))
	for i, c := range clusters {
		phases[i] = o.phaseOf(c)
	}
	for _, phase := range domain.Phases() {
		for _, i := range sorted {
			if phases[i] == phase {
				res.Order = append(res.Order, i)
				res.Clusters = append(res.Clusters, clusters[i])
				res.Phases = append(res.Phases, phase)
			}
		}
	}
	return res
}

func (o *Orderer) sort(cg ClusterGraph, res *Result) (order []int, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			res.Warnings = append(res.Warnings, errors.New(errors.ErrCodeGraphUtilsFailed,
				fmt.Sprintf("graph utilities failed, keeping pre-sort order: %v", r)))
			order, ok = nil, false
		}
	}()

	limit := o.maxPasses
	if limit <= 0 {
		limit = cg.Graph.EdgeCount() + 1
	}

	for pass := 0; pass < limit; pass++ {
		cycles := o.utils.DetectCycles(cg.Graph)
		if len(cycles) == 0 {
			break
		}
		res.Cycles = append(res.Cycles, cycles...)
		broken := BreakCycles(cg, cycles)
		if len(broken) == 0 {
			break
		}
		res.Broken = append(res.Broken, broken...)
	}

	order, ok = o.utils.TopologicalSort(cg.Graph)
	if ok && !isPermutation(order, len(cg.Graph)) {
		res.Warnings = append(res.Warnings, errors.New(errors.ErrCodeGraphUtilsFailed,
			fmt.Sprintf("topological sort returned an invalid order %v, keeping pre-sort order", order)))
		return nil, false
	}
	if !ok {
		remaining := len(o.utils.DetectCycles(cg.Graph))
		res.Warnings = append(res.Warnings, errors.NewUnsortableGraphError(remaining))
		return nil, false
	}
	return order, true
}

// phaseOf returns the earliest-priority phase any member task matches:
// foundational beats ui-polish, which beats business-logic.
func (o *Orderer) phaseOf(c cluster.Cluster) domain.Phase {
	found := make(map[string]bool)
	for _, t := range c.Tasks {
		for _, tag := range o.classifier.Tags(t.Category + " " + t.Title) {
			found[tag] = true
		}
	}

	for _, p := range []domain.Phase{domain.PhaseFoundational, domain.PhaseUIPolish, domain.PhaseBusiness} {
		if found[p.String()] {
			return p
		}
	}
	return domain.PhaseOther
}

func isPermutation(order []int, n int) bool {
	if len(order) != n {
		return false
	}
	seen := make([]bool, n)
	for _, i := range order {
		if i < 0 || i >= n || seen[i] {
			return false
		}
		seen[i] = true
	}
	return true
}
