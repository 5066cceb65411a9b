package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/taskweave/internal/backlog"
	"github.com/felixgeelhaar/taskweave/internal/cluster"
	"github.com/felixgeelhaar/taskweave/internal/embed"
	"github.com/felixgeelhaar/taskweave/internal/errors"
	"github.com/felixgeelhaar/taskweave/internal/hints"
	"github.com/felixgeelhaar/taskweave/internal/log"
	"github.com/felixgeelhaar/taskweave/internal/metrics"
	"github.com/felixgeelhaar/taskweave/internal/order"
	"github.com/felixgeelhaar/taskweave/internal/similarity"
	"github.com/felixgeelhaar/taskweave/internal/telemetry"
)

// run carries the state of one invocation.
type run struct {
	logger *log.Logger
	report *Report
	start  time.Time
}

func (e *Engine) begin(op string, doc *backlog.Document) *run {
	id := e.newRunID()
	r := &run{
		logger: e.logger.WithRun(id).With("operation", op),
		report: &Report{
			RunID:           id,
			Operation:       op,
			OldPriorityList: append([]string{}, doc.PriorityList...),
			NewPriorityList: []string{},
			Clusters:        []ClusterSummary{},
		},
		start: e.now(),
	}
	r.logger.Debug("run started", "tasks", len(doc.Tasks))
	return r
}

func (e *Engine) end(r *run, err error) (*Report, error) {
	r.report.setElapsed(e.now().Sub(r.start))
	e.metrics.ObserveRun(r.report.Operation, err, r.report.Elapsed, r.report.TaskCount, r.report.ClusterSizes())

	if err != nil {
		e.metrics.ObserveError(string(errors.CodeOf(err)), "engine")
		r.logger.LogError(err)
		return nil, err
	}

	r.logger.Info("run complete",
		"tasks", r.report.TaskCount,
		"clusters", len(r.report.Clusters),
		"cycles", r.report.CyclesDetected,
		"warnings", len(r.report.Warnings),
		"elapsed_ms", r.report.ElapsedMS,
	)
	return r.report, nil
}

// warn records a degradable problem on the report, the log and the span.
func (r *run) warn(span trace.Span, err *errors.Error) {
	r.report.addWarning(err)
	r.logger.WithError(err).Warn("degraded step")
	telemetry.RecordWarning(span, string(err.Code), err.Message)
}

// Reorganize reclusters every task in doc, orders the clusters and
// replaces the document's priority list. Only the priority list changes.
func (e *Engine) Reorganize(ctx context.Context, doc *backlog.Document) (*Report, error) {
	r := e.begin(OpReorganize, doc)
	list, err := e.recluster(ctx, r, doc)
	if err == nil {
		doc.SetPriorityList(list)
		r.report.Applied = true
	}
	return e.end(r, err)
}

// Preview computes what Reorganize would write without touching doc.
func (e *Engine) Preview(ctx context.Context, doc *backlog.Document) (*Report, error) {
	r := e.begin(OpPreview, doc)
	_, err := e.recluster(ctx, r, doc)
	return e.end(r, err)
}

// Insert places one new task into the clusters rebuilt from doc, reorders
// them and appends the task to the document's task list. The task must
// have a valid id not already present in doc.
func (e *Engine) Insert(ctx context.Context, doc *backlog.Document, task backlog.Task, priorityOverride bool) (*Report, error) {
	r := e.begin(OpInsert, doc)

	task.ID = strings.TrimSpace(task.ID)
	if err := task.TaskID().Validate(); err != nil {
		return e.end(r, errors.NewInsertInvalidError(err.Error()))
	}
	if doc.Has(task.ID) {
		return e.end(r, errors.NewInsertInvalidError(fmt.Sprintf("task %s already exists", task.ID)))
	}

	tasks, scorer, err := e.prepare(ctx, r, doc, &task)
	if err != nil {
		return e.end(r, err)
	}
	clusters := e.build(ctx, tasks, scorer)

	_, span := telemetry.StartStageSpan(ctx, e.tracer, telemetry.StageInsert)
	ir := e.inserter.Insert(task, clusters, scorer, priorityOverride)
	span.SetAttributes(
		attribute.String("placement", string(ir.Placement)),
		attribute.Bool("split", ir.Split),
	)
	span.End()
	e.metrics.ObserveInsert(string(ir.Placement), ir.Split)

	all := append(append([]backlog.Task(nil), tasks...), task)
	r.report.TaskCount = len(all)

	list, err := e.finish(ctx, r, all, ir.Clusters, backlog.Dependencies(all, doc.Dependencies))
	if err != nil {
		return e.end(r, err)
	}

	summary := &InsertSummary{
		TaskID:    task.ID,
		Placement: string(ir.Placement),
		Score:     ir.Score,
		Split:     ir.Split,
		Position:  -1,
	}
	for i, c := range r.report.Clusters {
		for _, id := range c.TaskIDs {
			if id == task.ID {
				summary.Cluster, summary.Position = c.Name, i
			}
		}
	}
	r.report.Insert = summary

	doc.AppendTask(task)
	doc.SetPriorityList(list)
	r.report.Applied = true
	r.logger.Info("task inserted", "task_id", task.ID, "placement", summary.Placement, "cluster", summary.Cluster)
	return e.end(r, nil)
}

func (e *Engine) recluster(ctx context.Context, r *run, doc *backlog.Document) ([]string, error) {
	tasks, scorer, err := e.prepare(ctx, r, doc, nil)
	if err != nil {
		return nil, err
	}
	r.report.TaskCount = len(tasks)

	clusters := e.build(ctx, tasks, scorer)
	return e.finish(ctx, r, tasks, clusters, backlog.Dependencies(tasks, doc.Dependencies))
}

// prepare sanitizes the document's tasks, extracts hints and fetches
// embeddings. extra, when set, is embedded along with the document tasks
// but not returned among them.
func (e *Engine) prepare(ctx context.Context, r *run, doc *backlog.Document, extra *backlog.Task) ([]backlog.Task, *similarity.Scorer, error) {
	_, span := telemetry.StartStageSpan(ctx, e.tracer, telemetry.StageSanitize)
	tasks, warnings := backlog.Sanitize(doc.Tasks)
	for _, w := range warnings {
		r.warn(span, w)
		e.metrics.ObserveSkipped(string(w.Code))
	}
	r.report.SkippedTasks = len(warnings)
	span.End()

	_, span = telemetry.StartStageSpan(ctx, e.tracer, telemetry.StageHints)
	cache := hints.NewCache(e.extractor)
	cache.Warm(tasks)
	embedded := tasks
	if extra != nil {
		cache.Get(*extra)
		embedded = append(append([]backlog.Task(nil), tasks...), *extra)
	}
	span.SetAttributes(attribute.Int("tasks", cache.Len()))
	span.End()

	vectors, err := e.embed(ctx, r, embedded)
	if err != nil {
		return nil, nil, err
	}

	scorer := similarity.NewScorer(cache, vectors, similarity.WithWeights(e.fileWeight, e.semanticWeight))
	return tasks, scorer, nil
}

// embed fetches vectors from the provider. On provider failure any partial
// vectors are kept and the rest of the tasks use file-only similarity;
// only cancellation of ctx aborts the run.
func (e *Engine) embed(ctx context.Context, r *run, tasks []backlog.Task) (embed.Vectors, error) {
	ctx, span := telemetry.StartStageSpan(ctx, e.tracer, telemetry.StageEmbed)
	defer span.End()

	if _, ok := e.provider.(embed.Noop); ok || len(tasks) == 0 {
		return nil, nil
	}

	start := e.now()
	vectors, err := e.provider.Embed(ctx, tasks)
	e.metrics.ObserveEmbed(e.providerName, err, e.now().Sub(start))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			telemetry.RecordError(span, ctxErr)
			return nil, ctxErr
		}
		r.warn(span, errors.NewEmbedUnavailableError(e.providerName, err))
		e.metrics.ObserveFallback(metrics.FallbackEmbedding)
	}

	r.report.Semantic = len(vectors) > 0
	span.SetAttributes(attribute.Int("vectors", len(vectors)))
	return vectors, nil
}

func (e *Engine) build(ctx context.Context, tasks []backlog.Task, scorer *similarity.Scorer) []cluster.Cluster {
	_, span := telemetry.StartStageSpan(ctx, e.tracer, telemetry.StageCluster)
	defer span.End()

	m := similarity.NewMatrix(tasks, scorer)
	clusters := cluster.BuildFromMatrix(tasks, m, e.threshold)
	span.SetAttributes(
		attribute.Int("tasks", len(tasks)),
		attribute.Int("clusters", len(clusters)),
		attribute.Float64("threshold", e.threshold),
	)
	return clusters
}

// finish orders and names clusters, fills the report and returns the new
// priority list.
func (e *Engine) finish(ctx context.Context, r *run, tasks []backlog.Task, clusters []cluster.Cluster, deps backlog.DependencyMap) ([]string, error) {
	_, span := telemetry.StartStageSpan(ctx, e.tracer, telemetry.StageOrder)
	res := e.orderer.Order(clusters, deps)
	for _, w := range res.Warnings {
		r.warn(span, w)
		switch w.Code {
		case errors.ErrCodeGraphUnsortable:
			e.metrics.ObserveFallback(metrics.FallbackUnsortable)
		case errors.ErrCodeGraphUtilsFailed:
			e.metrics.ObserveFallback(metrics.FallbackGraphUtils)
		}
	}
	e.metrics.ObserveOrdering(len(res.Cycles), len(res.Broken))
	telemetry.RecordCounts(span, map[string]int64{
		"cycles": int64(len(res.Cycles)),
		"broken": int64(len(res.Broken)),
	})
	span.End()

	_, span = telemetry.StartStageSpan(ctx, e.tracer, telemetry.StageName)
	named := cluster.Name(res.Clusters)
	span.End()

	if err := cluster.CheckPartition(tasks, named); err != nil {
		return nil, fmt.Errorf("cluster partition check failed: %w", err)
	}

	_, span = telemetry.StartStageSpan(ctx, e.tracer, telemetry.StageSerialize)
	list := e.serializer.Serialize(named)
	span.SetAttributes(attribute.Int("lines", len(list)))
	span.End()

	phases := make([]string, len(res.Phases))
	for i, p := range res.Phases {
		phases[i] = p.String()
	}
	r.report.Clusters = summarize(named, phases)
	r.report.CyclesDetected = len(res.Cycles)
	r.report.OrderFallback = res.Fallback
	r.report.BrokenEdges = brokenEdges(res.Order, named, res.Broken)
	r.report.NewPriorityList = list
	return list, nil
}

// brokenEdges labels removed edges, given by input cluster index, with
// the names of the clusters in final order.
func brokenEdges(positions []int, named []cluster.Cluster, broken []order.Edge) []BrokenEdge {
	if len(broken) == 0 {
		return nil
	}
	names := make(map[int]string, len(positions))
	for pos, idx := range positions {
		names[idx] = named[pos].Name
	}
	out := make([]BrokenEdge, len(broken))
	for i, b := range broken {
		out[i] = BrokenEdge{From: names[b.From], To: names[b.To], Weight: b.Weight}
	}
	return out
}
