package health

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/taskweave/internal/backlog"
)

// DocumentChecker verifies the backlog document loads.
type DocumentChecker struct {
	repo backlog.Repository
	path string
}

// NewDocumentChecker checks the document at path through repo.
func NewDocumentChecker(repo backlog.Repository, path string) *DocumentChecker {
	return &DocumentChecker{repo: repo, path: path}
}

// Name implements Checker.
func (c *DocumentChecker) Name() string {
	return "backlog-document"
}

// Check implements Checker.
func (c *DocumentChecker) Check(context.Context) *Result {
	doc, err := c.repo.Load(c.path)
	if err != nil {
		return Unhealthy(fmt.Sprintf("cannot load %s", c.path)).WithDetail("error", err.Error())
	}
	return Healthy("document readable").
		WithDetail("path", c.path).
		WithDetail("tasks", len(doc.Tasks))
}

// Pinger is an embedding backend that can be probed with raw text.
type Pinger interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbedChecker probes the embedding provider with one short input. A
// failing provider is degraded rather than unhealthy because clustering
// falls back to file overlap.
type EmbedChecker struct {
	name   string
	pinger Pinger
}

// NewEmbedChecker creates a checker for the provider called name.
func NewEmbedChecker(name string, p Pinger) *EmbedChecker {
	return &EmbedChecker{name: name, pinger: p}
}

// Name implements Checker.
func (c *EmbedChecker) Name() string {
	return "embedding-provider"
}

// Check implements Checker.
func (c *EmbedChecker) Check(ctx context.Context) *Result {
	vecs, err := c.pinger.EmbedTexts(ctx, []string{"health check"})
	if err != nil {
		return Degraded("embedding provider unavailable, file overlap only").
			WithDetail("provider", c.name).
			WithDetail("error", err.Error())
	}
	res := Healthy("embedding provider reachable").WithDetail("provider", c.name)
	if len(vecs) == 1 {
		res.WithDetail("dimensions", len(vecs[0]))
	}
	return res
}
