package order

import (
	"github.com/felixgeelhaar/taskweave/internal/backlog"
	"github.com/felixgeelhaar/taskweave/internal/cluster"
	"github.com/felixgeelhaar/taskweave/internal/graph"
)

// Edge is a cluster-level dependency: From depends on To.
type Edge struct {
	From int `json:"from" yaml:"from"`
	To   int `json:"to" yaml:"to"`
	// Weight is the number of task-level dependencies crossing the edge.
	Weight int `json:"weight" yaml:"weight"`
}

// ClusterGraph is the cluster dependency graph plus the task-level edge
// count behind every cluster edge.
type ClusterGraph struct {
	Graph   graph.Graph
	Weights map[[2]int]int
}

// Weight returns the number of task dependencies behind from -> to.
func (cg ClusterGraph) Weight(from, to int) int {
	return cg.Weights[[2]int{from, to}]
}

// BuildClusterGraph projects task dependencies onto clusters. Every cluster
// index is a node. Dependencies on ids outside the clusters and dependencies
// within one cluster are ignored.
func BuildClusterGraph(clusters []cluster.Cluster, deps backlog.DependencyMap) ClusterGraph {
	lookup := make(map[string]int)
	for i, c := range clusters {
		for _, t := range c.Tasks {
			lookup[t.ID] = i
		}
	}

	cg := ClusterGraph{Graph: graph.New(), Weights: make(map[[2]int]int)}
	for i, c := range clusters {
		cg.Graph.AddNode(i)
		for _, t := range c.Tasks {
			for _, dep := range deps[t.ID] {
				j, ok := lookup[dep]
				if !ok || j == i {
					continue
				}
				cg.Graph.AddEdge(i, j)
				cg.Weights[[2]int{i, j}]++
			}
		}
	}
	return cg
}

// BreakCycles removes the weakest remaining edge of every cycle, where an
// edge's strength is its task-level weight. Consecutive pairs include the
// closing edge from the last node back to the first. Ties go to the edge
// seen first. Cycles already broken by an earlier removal are skipped.
func BreakCycles(cg ClusterGraph, cycles [][]int) []Edge {
	var broken []Edge
	for _, cycle := range cycles {
		weakest := Edge{From: -1}
		for k := range cycle {
			from, to := cycle[k], cycle[(k+1)%len(cycle)]
			if from == to || !cg.Graph.HasEdge(from, to) {
				continue
			}
			w := cg.Weight(from, to)
			if weakest.From < 0 || w < weakest.Weight {
				weakest = Edge{From: from, To: to, Weight: w}
			}
		}
		if weakest.From < 0 {
			continue
		}
		cg.Graph.RemoveEdge(weakest.From, weakest.To)
		broken = append(broken, weakest)
	}
	return broken
}
