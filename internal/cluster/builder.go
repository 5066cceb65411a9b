package cluster

import (
	"github.com/felixgeelhaar/taskweave/internal/backlog"
	"github.com/felixgeelhaar/taskweave/internal/similarity"
)

// DefaultSimilarityThreshold is the minimum average-linkage score for a merge.
const DefaultSimilarityThreshold = 0.3

// Build runs average-linkage agglomerative clustering over tasks.
//
// Every task starts alone. The pair of clusters with the highest mean
// pairwise score is merged until that score falls below threshold. Among
// equal scores the pair with the lowest positions wins. The result is
// sorted by size, largest first. Task ids must be unique.
func Build(tasks []backlog.Task, scorer similarity.Func, threshold float64) []Cluster {
	return BuildFromMatrix(tasks, similarity.NewMatrix(tasks, scorer), threshold)
}

// BuildFromMatrix is Build over precomputed scores. m must have been built
// from tasks.
func BuildFromMatrix(tasks []backlog.Task, m *similarity.Matrix, threshold float64) []Cluster {
	n := len(tasks)
	if n == 0 {
		return nil
	}

	// members[k] holds task positions; link[a][b] is the sum of pairwise
	// scores between clusters a and b.
	members := make([][]int, n)
	link := make([][]float64, n)
	for i := range tasks {
		members[i] = []int{i}
		link[i] = make([]float64, n)
		for j := range tasks {
			link[i][j] = m.At(i, j)
		}
	}

	for len(members) > 1 {
		bi, bj := -1, -1
		best := -1.0
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				avg := link[i][j] / float64(len(members[i])*len(members[j]))
				if avg > best {
					best, bi, bj = avg, i, j
				}
			}
		}

		if best < threshold-scoreEpsilon {
			break
		}

		members[bi] = append(members[bi], members[bj]...)
		for k := range link {
			link[bi][k] += link[bj][k]
			link[k][bi] = link[bi][k]
		}

		members = append(members[:bj], members[bj+1:]...)
		link = append(link[:bj], link[bj+1:]...)
		for k := range link {
			link[k] = append(link[k][:bj], link[k][bj+1:]...)
		}
	}

	clusters := make([]Cluster, len(members))
	for k, idx := range members {
		c := Cluster{Tasks: make([]backlog.Task, len(idx))}
		for p, i := range idx {
			c.Tasks[p] = tasks[i]
		}
		clusters[k] = c
	}
	SortBySize(clusters)
	return clusters
}
