// Package graph provides the dependency graph primitives used for ordering:
// cycle detection and topological sort over integer nodes.
package graph

import "sort"

// Graph maps a node to the set of nodes it depends on.
type Graph map[int]map[int]struct{}

// New creates an empty graph.
func New() Graph {
	return make(Graph)
}

// AddNode ensures n is present, with no dependencies if it is new.
func (g Graph) AddNode(n int) {
	if _, ok := g[n]; !ok {
		g[n] = make(map[int]struct{})
	}
}

// AddEdge records that from depends on to. Self-edges are ignored.
func (g Graph) AddEdge(from, to int) {
	g.AddNode(from)
	g.AddNode(to)
	if from != to {
		g[from][to] = struct{}{}
	}
}

// RemoveEdge deletes the edge from -> to if present.
func (g Graph) RemoveEdge(from, to int) bool {
	deps, ok := g[from]
	if !ok {
		return false
	}
	if _, ok := deps[to]; !ok {
		return false
	}
	delete(deps, to)
	return true
}

// HasEdge reports whether from depends on to.
func (g Graph) HasEdge(from, to int) bool {
	_, ok := g[from][to]
	return ok
}

// Nodes returns every node in ascending order, including nodes that only
// appear as dependencies.
func (g Graph) Nodes() []int {
	seen := make(map[int]struct{}, len(g))
	for n, deps := range g {
		seen[n] = struct{}{}
		for d := range deps {
			seen[d] = struct{}{}
		}
	}
	out := make([]int, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Deps returns the dependencies of n in ascending order.
func (g Graph) Deps(n int) []int {
	out := make([]int, 0, len(g[n]))
	for d := range g[n] {
		out = append(out, d)
	}
	sort.Ints(out)
	return out
}

// EdgeCount returns the number of edges.
func (g Graph) EdgeCount() int {
	n := 0
	for _, deps := range g {
		n += len(deps)
	}
	return n
}

// Clone returns a deep copy.
func (g Graph) Clone() Graph {
	out := make(Graph, len(g))
	for n, deps := range g {
		cp := make(map[int]struct{}, len(deps))
		for d := range deps {
			cp[d] = struct{}{}
		}
		out[n] = cp
	}
	return out
}
