package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskweave/internal/backlog"
	"github.com/felixgeelhaar/taskweave/internal/embed"
	"github.com/felixgeelhaar/taskweave/internal/health"
	"github.com/felixgeelhaar/taskweave/internal/mcpserver"
	"github.com/felixgeelhaar/taskweave/internal/metrics"
	"github.com/felixgeelhaar/taskweave/internal/server"
	"github.com/felixgeelhaar/taskweave/internal/version"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		metricsAddr     string
		shutdownTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve backlog tools over MCP stdio",
		Long: `Run an MCP server on stdin/stdout exposing backlog_reorganize,
backlog_preview and backlog_insert_task. Logs go to stderr.

With --metrics-addr an HTTP listener also serves Prometheus metrics at
/metrics and health probes at /health/live and /health/ready.

Examples:
  taskweave serve --doc backlog.json
  taskweave serve --metrics-addr 127.0.0.1:9464`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{runtimeMetrics: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, m := metrics.NewProcessRegistry()
			a.metrics = m

			eng, err := a.engine()
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			info := version.GetInfo()
			mcp := mcpserver.New(eng, mcpserver.Config{
				DocPath:    a.cfg.Document.Path,
				Lock:       a.cfg.Document.Lock,
				AdminToken: a.cfg.MCP.AdminToken,
				Version:    info.Version,
			}, a.logger)

			if metricsAddr != "" {
				probes := health.NewProbeManager(info.Version,
					health.NewDocumentChecker(backlog.NewFileRepository(), a.cfg.Document.Path))
				if ec, err := a.cfg.EmbedProvider(); err == nil && ec != nil {
					if client, err := embed.NewClient(ec); err == nil {
						probes.AddChecker(health.NewEmbedChecker(ec.Name(), client))
					}
				}

				srv := server.New(probes, metrics.HandlerFor(reg), a.logger, server.Config{
					Address:         metricsAddr,
					ShutdownTimeout: shutdownTimeout,
				})
				go func() {
					if err := srv.Start(); err != nil {
						a.logger.WithError(err).Error("metrics server stopped")
					}
				}()
				defer func() {
					ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
					defer cancel()
					if err := srv.Shutdown(ctx); err != nil {
						a.logger.WithError(err).Warn("metrics server shutdown")
					}
				}()
			}

			a.logger.Info("mcp server starting", "document", a.cfg.Document.Path, "metrics_addr", metricsAddr)
			return mcpserver.Serve(mcp)
		},
	}

	cmd.Flags().String("doc", "", "backlog document (default from config: document.path)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address for /metrics and health probes (disabled when empty)")
	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 10*time.Second, "time allowed for draining HTTP connections")
	return cmd
}
