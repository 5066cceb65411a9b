// Package engine runs the backlog pipeline: sanitize, hint extraction,
// embedding, clustering, ordering, naming and priority list serialization.
//
// An Engine holds its collaborators explicitly; nothing in the pipeline
// reaches for process-wide state.
package engine

import (
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/felixgeelhaar/taskweave/internal/backlog"
	"github.com/felixgeelhaar/taskweave/internal/cluster"
	"github.com/felixgeelhaar/taskweave/internal/embed"
	"github.com/felixgeelhaar/taskweave/internal/hints"
	"github.com/felixgeelhaar/taskweave/internal/log"
	"github.com/felixgeelhaar/taskweave/internal/metrics"
	"github.com/felixgeelhaar/taskweave/internal/order"
	"github.com/felixgeelhaar/taskweave/internal/priority"
	"github.com/felixgeelhaar/taskweave/internal/similarity"
)

// Operation names used in reports, logs and metrics.
const (
	OpReorganize = "reorganize"
	OpPreview    = "preview"
	OpInsert     = "insert"
)

// Engine runs the pipeline against backlog documents.
type Engine struct {
	logger       *log.Logger
	provider     embed.Provider
	providerName string
	extractor    *hints.Extractor
	orderer      *order.Orderer
	serializer   *priority.Serializer
	inserter     cluster.Inserter
	repo         backlog.Repository

	threshold      float64
	fileWeight     float64
	semanticWeight float64

	metrics *metrics.Metrics
	tracer  trace.TracerProvider

	now      func() time.Time
	newRunID func() string
	closers  []func() error
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithProvider sets the embedding provider. name labels it in warnings
// and metrics.
func WithProvider(p embed.Provider, name string) Option {
	return func(e *Engine) {
		if p != nil {
			e.provider = p
			e.providerName = name
		}
	}
}

// WithExtractor replaces the file hint extractor.
func WithExtractor(x *hints.Extractor) Option {
	return func(e *Engine) {
		if x != nil {
			e.extractor = x
		}
	}
}

// WithOrderer replaces the dependency orderer.
func WithOrderer(o *order.Orderer) Option {
	return func(e *Engine) {
		if o != nil {
			e.orderer = o
		}
	}
}

// WithSerializer replaces the priority list serializer.
func WithSerializer(s *priority.Serializer) Option {
	return func(e *Engine) {
		if s != nil {
			e.serializer = s
		}
	}
}

// WithInserter replaces the insertion limits.
func WithInserter(in cluster.Inserter) Option {
	return func(e *Engine) {
		e.inserter = in
	}
}

// WithRepository replaces the document repository used by the file operations.
func WithRepository(r backlog.Repository) Option {
	return func(e *Engine) {
		if r != nil {
			e.repo = r
		}
	}
}

// WithThreshold sets the clustering similarity threshold.
func WithThreshold(t float64) Option {
	return func(e *Engine) {
		e.threshold = t
	}
}

// WithWeights sets the file and semantic similarity weights.
func WithWeights(file, semantic float64) Option {
	return func(e *Engine) {
		e.fileWeight = file
		e.semanticWeight = semantic
	}
}

// WithMetrics records run metrics. Nil disables metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithTracerProvider emits stage spans through tp.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Engine) {
		if tp != nil {
			e.tracer = tp
		}
	}
}

// WithClock replaces time.Now, for elapsed-time reporting.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithRunIDs replaces the run id generator.
func WithRunIDs(fn func() string) Option {
	return func(e *Engine) {
		if fn != nil {
			e.newRunID = fn
		}
	}
}

// WithCloser registers a function run by Close.
func WithCloser(fn func() error) Option {
	return func(e *Engine) {
		if fn != nil {
			e.closers = append(e.closers, fn)
		}
	}
}

// New creates an Engine. Without options it clusters on file overlap only.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:         log.Discard(),
		provider:       embed.Noop{},
		providerName:   "none",
		extractor:      hints.NewExtractor(),
		orderer:        order.New(),
		serializer:     priority.NewSerializer(),
		inserter:       cluster.NewInserter(),
		repo:           backlog.NewFileRepository(),
		threshold:      cluster.DefaultSimilarityThreshold,
		fileWeight:     similarity.DefaultFileWeight,
		semanticWeight: similarity.DefaultSemanticWeight,
		tracer:         noop.NewTracerProvider(),
		now:            time.Now,
		newRunID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Close releases resources held by the engine, such as the embedding cache.
func (e *Engine) Close() error {
	var first error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	e.closers = nil
	return first
}
