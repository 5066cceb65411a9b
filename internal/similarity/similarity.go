// Package similarity scores how related two tasks are from shared file
// hints and embedding similarity.
package similarity

import (
	"math"

	"github.com/felixgeelhaar/taskweave/internal/backlog"
	"github.com/felixgeelhaar/taskweave/internal/embed"
	"github.com/felixgeelhaar/taskweave/internal/hints"
)

// Default channel weights.
const (
	DefaultFileWeight     = 0.6
	DefaultSemanticWeight = 0.4
)

// HintSource returns the file hints of a task.
type HintSource interface {
	Get(task backlog.Task) hints.Set
}

// Scorer combines file overlap and cosine similarity:
//
//	score(a, b) = FileWeight*jaccard(hints) + SemanticWeight*cosine(vectors)
//
// Scores are symmetric and clamped to [0, 1].
type Scorer struct {
	FileWeight     float64
	SemanticWeight float64

	hints   HintSource
	vectors embed.Vectors
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithWeights sets the file and semantic weights.
func WithWeights(file, semantic float64) Option {
	return func(s *Scorer) {
		s.FileWeight = file
		s.SemanticWeight = semantic
	}
}

// NewScorer creates a scorer. vectors may be nil, in which case the
// semantic term is always 0.
func NewScorer(h HintSource, vectors embed.Vectors, opts ...Option) *Scorer {
	s := &Scorer{
		FileWeight:     DefaultFileWeight,
		SemanticWeight: DefaultSemanticWeight,
		hints:          h,
		vectors:        vectors,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score returns the hybrid similarity of a and b.
func (s *Scorer) Score(a, b backlog.Task) float64 {
	score := s.FileWeight*s.FileOverlap(a, b) + s.SemanticWeight*s.Semantic(a, b)
	return clamp01(score)
}

// FileOverlap is the Jaccard index of the two tasks' hint sets.
func (s *Scorer) FileOverlap(a, b backlog.Task) float64 {
	return hints.Jaccard(s.hints.Get(a), s.hints.Get(b))
}

// Semantic is the clamped cosine similarity of the two tasks' vectors,
// or 0 when either vector is missing.
func (s *Scorer) Semantic(a, b backlog.Task) float64 {
	if s.vectors == nil {
		return 0
	}
	return clamp01(Cosine(s.vectors[a.ID], s.vectors[b.ID]))
}

// Cosine returns the cosine similarity of a and b in [-1, 1]. It is 0 when
// either vector is empty, the lengths differ, or either norm is 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	c := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return math.Max(-1, math.Min(1, c))
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
