package graph

// DetectCycles walks the graph depth-first, visiting nodes and dependencies
// in ascending order, and reports one cycle per back edge found. A cycle
// [a, b, c] means a depends on b, b on c, and c on a.
// It returns nil for an acyclic graph.
func DetectCycles(g Graph) [][]int {
	const (
		unvisited = iota
		onStack
		done
	)

	state := make(map[int]int)
	var stack []int
	var cycles [][]int

	var visit func(n int)
	visit = func(n int) {
		state[n] = onStack
		stack = append(stack, n)

		for _, d := range g.Deps(n) {
			switch state[d] {
			case unvisited:
				visit(d)
			case onStack:
				start := len(stack) - 1
				for stack[start] != d {
					start--
				}
				cycle := make([]int, len(stack)-start)
				copy(cycle, stack[start:])
				cycles = append(cycles, cycle)
			}
		}

		stack = stack[:len(stack)-1]
		state[n] = done
	}

	for _, n := range g.Nodes() {
		if state[n] == unvisited {
			visit(n)
		}
	}
	return cycles
}

// HasCycle reports whether the graph contains any cycle.
func HasCycle(g Graph) bool {
	return len(DetectCycles(g)) > 0
}
