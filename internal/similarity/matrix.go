package similarity

import "github.com/felixgeelhaar/taskweave/internal/backlog"

// Func scores a pair of tasks.
type Func interface {
	Score(a, b backlog.Task) float64
}

// Matrix holds precomputed pairwise scores. Tasks are addressed by their
// position in the input slice, resolved through an id -> index map.
type Matrix struct {
	index  map[string]int
	scores [][]float64
}

// NewMatrix scores every pair of tasks once. Task ids must be unique.
func NewMatrix(tasks []backlog.Task, f Func) *Matrix {
	n := len(tasks)
	m := &Matrix{
		index:  make(map[string]int, n),
		scores: make([][]float64, n),
	}
	for i, t := range tasks {
		m.index[t.ID] = i
		m.scores[i] = make([]float64, n)
		m.scores[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			s := f.Score(tasks[i], tasks[j])
			m.scores[i][j] = s
			m.scores[j][i] = s
		}
	}
	return m
}

// Len returns the number of tasks.
func (m *Matrix) Len() int {
	return len(m.scores)
}

// Index returns the position of a task id.
func (m *Matrix) Index(id string) (int, bool) {
	i, ok := m.index[id]
	return i, ok
}

// At returns the score between positions i and j.
func (m *Matrix) At(i, j int) float64 {
	return m.scores[i][j]
}

// Between returns the score between two task ids, or 0 if either is unknown.
func (m *Matrix) Between(a, b string) float64 {
	i, ok := m.index[a]
	if !ok {
		return 0
	}
	j, ok := m.index[b]
	if !ok {
		return 0
	}
	return m.scores[i][j]
}
