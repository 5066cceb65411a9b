// Package embed supplies semantic embedding vectors for tasks.
//
// The engine depends only on Provider. Noop gives no semantic signal,
// Client talks to an OpenAI-compatible /v1/embeddings endpoint, and
// CachedProvider keeps vectors in SQLite between runs.
package embed

import (
	"context"
	"strings"

	"github.com/felixgeelhaar/taskweave/internal/backlog"
)

// Vectors maps a task id to its embedding. Missing ids mean
// "no semantic signal" for that task.
type Vectors map[string][]float32

// Provider computes embeddings for a batch of tasks. It may omit tasks.
// A provider that fails part way may return the vectors it has together
// with the error; callers should use them.
type Provider interface {
	Embed(ctx context.Context, tasks []backlog.Task) (Vectors, error)
}

// Noop is a Provider that never returns vectors.
type Noop struct{}

// Embed implements Provider.
func (Noop) Embed(context.Context, []backlog.Task) (Vectors, error) {
	return Vectors{}, nil
}

// TaskText is the text embedded for a task.
func TaskText(t backlog.Task) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{t.Title, t.Description, t.Category} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n")
}
