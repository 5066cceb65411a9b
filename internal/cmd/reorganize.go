package cmd

import (
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/felixgeelhaar/taskweave/internal/engine"
	"github.com/felixgeelhaar/taskweave/internal/telemetry"
)

func newReorganizeCmd(a *app) *cobra.Command {
	var (
		dryRun  bool
		noEmbed bool
		list    bool
	)

	cmd := &cobra.Command{
		Use:   "reorganize",
		Short: "Recluster all tasks and rewrite the priority list",
		Long: `Recluster every task of the backlog document, order the clusters by
dependencies and build phase, and rewrite the priority list.

The document is locked for the duration of the run. With --dry-run the new
list and its diff are printed and nothing is written.

Examples:
  taskweave reorganize --doc backlog.json
  taskweave reorganize --dry-run --threshold 0.25
  taskweave reorganize --no-embed -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if noEmbed {
				a.cfg.Embed.Provider = ""
			}

			ctx, span := telemetry.StartCommandSpan(cmd.Context(), a.telemetry.TracerProvider(), "reorganize")
			defer span.End()

			eng, err := a.engine()
			if err != nil {
				telemetry.RecordError(span, err)
				return err
			}
			defer func() { _ = eng.Close() }()

			report, err := eng.ReorganizeFile(ctx, a.cfg.Document.Path, engine.FileOptions{
				Lock:   a.cfg.Document.Lock,
				DryRun: dryRun,
			})
			if err != nil {
				telemetry.RecordError(span, err)
				return err
			}
			telemetry.RecordSuccess(span,
				attribute.Int("tasks", report.TaskCount),
				attribute.Int("clusters", len(report.Clusters)),
			)

			return a.render(cmd.OutOrStdout(), report, reportView{
				report:   report,
				doc:      a.cfg.Document.Path,
				showDiff: dryRun,
				showList: list,
			})
		},
	}

	cmd.Flags().String("doc", "", "backlog document (default from config: document.path)")
	cmd.Flags().Float64("threshold", 0, "clustering similarity threshold in [0,1] (default from config)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the new priority list diff without writing")
	cmd.Flags().BoolVar(&noEmbed, "no-embed", false, "use file overlap only, skipping the embedding provider")
	cmd.Flags().BoolVar(&list, "list", false, "print the full new priority list")
	return cmd
}

func newClustersCmd(a *app) *cobra.Command {
	var noEmbed bool

	cmd := &cobra.Command{
		Use:   "clusters",
		Short: "Show clusters and their order without writing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if noEmbed {
				a.cfg.Embed.Provider = ""
			}

			ctx, span := telemetry.StartCommandSpan(cmd.Context(), a.telemetry.TracerProvider(), "clusters")
			defer span.End()

			eng, err := a.engine()
			if err != nil {
				telemetry.RecordError(span, err)
				return err
			}
			defer func() { _ = eng.Close() }()

			report, err := eng.PreviewFile(ctx, a.cfg.Document.Path)
			if err != nil {
				telemetry.RecordError(span, err)
				return err
			}
			telemetry.RecordSuccess(span)
			return a.render(cmd.OutOrStdout(), report.Clusters, clustersView{report: report})
		},
	}

	cmd.Flags().String("doc", "", "backlog document (default from config: document.path)")
	cmd.Flags().Float64("threshold", 0, "clustering similarity threshold in [0,1] (default from config)")
	cmd.Flags().BoolVar(&noEmbed, "no-embed", false, "use file overlap only")
	return cmd
}
