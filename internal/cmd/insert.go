package cmd

import (
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/felixgeelhaar/taskweave/internal/backlog"
	"github.com/felixgeelhaar/taskweave/internal/engine"
	"github.com/felixgeelhaar/taskweave/internal/telemetry"
)

func newInsertCmd(a *app) *cobra.Command {
	var (
		task     backlog.Task
		priority bool
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "insert",
		Short: "Add a task next to related work",
		Long: `Add a task to the backlog document. The task joins the cluster it is most
similar to, or starts a new one, and the priority list is rewritten.

Examples:
  taskweave insert --id SEC-004 --title "Rotate session keys" --files auth.py,security.py
  taskweave insert --id UI-010 --title "Fix contrast" --category UI --priority`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, span := telemetry.StartCommandSpan(cmd.Context(), a.telemetry.TracerProvider(), "insert")
			defer span.End()

			eng, err := a.engine()
			if err != nil {
				telemetry.RecordError(span, err)
				return err
			}
			defer func() { _ = eng.Close() }()

			report, err := eng.InsertFile(ctx, a.cfg.Document.Path, task, priority, engine.FileOptions{
				Lock:   a.cfg.Document.Lock,
				DryRun: dryRun,
			})
			if err != nil {
				telemetry.RecordError(span, err)
				return err
			}
			telemetry.RecordSuccess(span,
				attribute.String("task_id", report.Insert.TaskID),
				attribute.String("placement", report.Insert.Placement),
			)

			return a.render(cmd.OutOrStdout(), report, reportView{
				report:   report,
				doc:      a.cfg.Document.Path,
				showDiff: dryRun,
			})
		},
	}

	f := cmd.Flags()
	f.String("doc", "", "backlog document (default from config: document.path)")
	f.Float64("threshold", 0, "clustering similarity threshold in [0,1] (default from config)")
	f.StringVar(&task.ID, "id", "", "task id, e.g. SEC-004 (required)")
	f.StringVar(&task.Title, "title", "", "task title (required)")
	f.StringVar(&task.Description, "description", "", "task description")
	f.StringVar(&task.Category, "category", "", "task category")
	f.StringSliceVar(&task.FilesLikelyModified, "files", nil, "files the task likely modifies")
	f.StringArrayVar(&task.AcceptanceCriteria, "criteria", nil, "acceptance criterion (repeatable)")
	f.StringSliceVar(&task.DependsOn, "depends-on", nil, "ids this task depends on")
	f.BoolVar(&priority, "priority", false, "place the task at the front of its cluster")
	f.BoolVar(&dryRun, "dry-run", false, "show the result without writing")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}
