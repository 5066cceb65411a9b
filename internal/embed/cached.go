package embed

import (
	"context"

	"github.com/felixgeelhaar/taskweave/internal/backlog"
)

// CachedProvider serves vectors from a Cache and sends only misses upstream.
type CachedProvider struct {
	upstream Provider
	cache    *Cache
	model    string
	observe  func(hits, misses int)
}

// CachedOption configures a CachedProvider.
type CachedOption func(*CachedProvider)

// WithCacheObserver registers a callback receiving hit and miss counts per batch.
func WithCacheObserver(fn func(hits, misses int)) CachedOption {
	return func(p *CachedProvider) {
		p.observe = fn
	}
}

// NewCachedProvider wraps upstream. model namespaces the cache keys and
// should change whenever upstream would produce different vectors.
func NewCachedProvider(upstream Provider, cache *Cache, model string, opts ...CachedOption) *CachedProvider {
	p := &CachedProvider{upstream: upstream, cache: cache, model: model}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Embed implements Provider. Cache read and write failures degrade to
// calling upstream. When upstream fails the cached vectors are still
// returned, along with the upstream error.
func (p *CachedProvider) Embed(ctx context.Context, tasks []backlog.Task) (Vectors, error) {
	out := make(Vectors, len(tasks))
	var misses []backlog.Task

	for _, t := range tasks {
		text := TaskText(t)
		if text == "" {
			continue
		}
		v, ok, err := p.cache.Get(ctx, p.model, text)
		if err == nil && ok {
			out[t.ID] = v
			continue
		}
		misses = append(misses, t)
	}

	if p.observe != nil {
		p.observe(len(out), len(misses))
	}
	if len(misses) == 0 {
		return out, nil
	}

	fresh, err := p.upstream.Embed(ctx, misses)
	if err != nil {
		return out, err
	}
	for _, t := range misses {
		v, ok := fresh[t.ID]
		if !ok || len(v) == 0 {
			continue
		}
		out[t.ID] = v
		_ = p.cache.Put(ctx, p.model, TaskText(t), v)
	}
	return out, nil
}
