package graph

import "sort"

// TopologicalSort orders nodes so every node comes after all of its
// dependencies. Among nodes that are ready at the same time the lowest
// comes first. It returns false when the graph has a cycle.
func TopologicalSort(g Graph) ([]int, bool) {
	nodes := g.Nodes()

	pending := make(map[int]int, len(nodes))
	dependents := make(map[int][]int, len(nodes))
	for _, n := range nodes {
		pending[n] = len(g[n])
		for d := range g[n] {
			dependents[d] = append(dependents[d], n)
		}
	}

	var ready []int
	for _, n := range nodes {
		if pending[n] == 0 {
			ready = append(ready, n)
		}
	}

	order := make([]int, 0, len(nodes))
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)

		for _, m := range dependents[n] {
			pending[m]--
			if pending[m] == 0 {
				i := sort.SearchInts(ready, m)
				ready = append(ready, 0)
				copy(ready[i+1:], ready[i:])
				ready[i] = m
			}
		}
	}

	if len(order) != len(nodes) {
		return nil, false
	}
	return order, true
}
