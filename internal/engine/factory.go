package engine

import (
	"github.com/felixgeelhaar/taskweave/internal/cluster"
	"github.com/felixgeelhaar/taskweave/internal/config"
	"github.com/felixgeelhaar/taskweave/internal/embed"
	"github.com/felixgeelhaar/taskweave/internal/errors"
	"github.com/felixgeelhaar/taskweave/internal/order"
	"github.com/felixgeelhaar/taskweave/internal/priority"
)

// FromConfig builds an Engine from cfg. extra options are applied after
// the configured ones, so they win. When cfg names an embedding provider
// and no provider was injected, an HTTP client is created, wrapped in the
// SQLite cache when embed.cache_path is set. A cache that cannot be opened
// is logged and skipped.
func FromConfig(cfg *config.Config, extra ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := []Option{
		WithThreshold(cfg.Cluster.SimilarityThreshold),
		WithWeights(cfg.Cluster.FileWeight, cfg.Cluster.SemanticWeight),
		WithInserter(cluster.Inserter{
			Threshold:   cfg.Insert.Threshold,
			MaxClusters: cfg.Insert.MaxClusters,
			MaxSize:     cfg.Insert.MaxClusterSize,
		}),
		WithOrderer(order.New(order.WithMaxBreakPasses(cfg.Order.MaxBreakPasses))),
		WithSerializer(priority.NewSerializer(
			priority.WithSections(cfg.Sections),
			priority.WithHeaderFormat(cfg.Priority.HeaderFormat),
		)),
	}
	e := New(append(opts, extra...)...)

	if _, injected := e.provider.(embed.Noop); !injected {
		return e, nil
	}

	ec, err := cfg.EmbedProvider()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeEmbedConfig, "invalid embedding configuration", err)
	}
	if ec == nil {
		return e, nil
	}

	client, err := embed.NewClient(ec)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeEmbedConfig, "failed to create embedding client", err)
	}

	var provider embed.Provider = client
	if cfg.Embed.CachePath != "" {
		cache, err := embed.OpenCache(cfg.Embed.CachePath)
		if err != nil {
			e.logger.WithError(errors.Wrap(errors.ErrCodeEmbedCache, "embedding cache unavailable, continuing without it", err)).
				Warn("degraded step", "path", cfg.Embed.CachePath)
		} else {
			provider = embed.NewCachedProvider(client, cache, client.Model(), embed.WithCacheObserver(e.metrics.ObserveCache))
			e.closers = append(e.closers, cache.Close)
		}
	}

	e.provider = provider
	e.providerName = ec.Name()
	return e, nil
}
