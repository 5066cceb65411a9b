package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/felixgeelhaar/taskweave/internal/config"
	"github.com/felixgeelhaar/taskweave/internal/engine"
	"github.com/felixgeelhaar/taskweave/internal/log"
	"github.com/felixgeelhaar/taskweave/internal/metrics"
	"github.com/felixgeelhaar/taskweave/internal/telemetry"
	"github.com/felixgeelhaar/taskweave/internal/ux"
	"github.com/felixgeelhaar/taskweave/internal/version"
)

// Command annotations read by setup.
const (
	// skipSetup marks commands that run without loading configuration.
	skipSetup = "taskweave/skip-setup"
	// runtimeMetrics marks long-running commands that always collect Go
	// runtime metrics.
	runtimeMetrics = "taskweave/runtime-metrics"
)

type rootFlags struct {
	configFile string
	logLevel   string
	logFormat  string
	noColor    bool
	format     string
}

// flagKeys maps command flags onto configuration keys, so a flag set on
// the command line overrides the file and the environment.
var flagKeys = map[string]string{
	"doc":        "document.path",
	"threshold":  "cluster.similarity_threshold",
	"log-level":  "log.level",
	"log-format": "log.format",
}

// app is the state shared by one command tree.
type app struct {
	flags     rootFlags
	v         *viper.Viper
	cfg       *config.Config
	logger    *log.Logger
	telemetry *telemetry.Provider
	metrics   *metrics.Metrics
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[skipSetup] == "true" {
		return nil
	}

	v, err := config.NewViper(a.flags.configFile)
	if err != nil {
		return err
	}
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok && f.Changed && bindErr == nil {
			bindErr = v.BindPFlag(key, f)
		}
	})
	if bindErr != nil {
		return fmt.Errorf("failed to bind flags: %w", bindErr)
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	a.v, a.cfg = v, cfg

	info := version.GetInfo()
	a.logger = log.New(log.Config{
		Level:          log.ParseLevel(cfg.Log.Level),
		Format:         log.ParseFormat(cfg.Log.Format),
		Output:         log.NewOutput(cmd.ErrOrStderr()),
		ServiceName:    "taskweave",
		ServiceVersion: info.Version,
	})

	tcfg := telemetry.DefaultConfig()
	tcfg.ServiceVersion = info.Version
	tcfg.Enabled = cfg.Telemetry.Enabled
	tcfg.Endpoint = cfg.Telemetry.Endpoint
	tcfg.SampleRate = cfg.Telemetry.SampleRate
	tcfg.RuntimeMetrics = cfg.Telemetry.RuntimeMetrics || cmd.Annotations[runtimeMetrics] == "true"
	provider, err := telemetry.NewProvider(cmd.Context(), tcfg)
	if err != nil {
		a.logger.WithError(err).Warn("tracing disabled")
		provider = telemetry.NewNoopProvider()
	}
	provider.Install()
	a.telemetry = provider

	a.logger.Debug("configuration loaded",
		"config_file", v.ConfigFileUsed(),
		"document", cfg.Document.Path,
		"embed_provider", cfg.Embed.Provider,
	)
	return nil
}

func (a *app) teardown(ctx context.Context) error {
	if a.telemetry == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := a.telemetry.Shutdown(ctx); err != nil {
		a.logger.WithError(err).Warn("failed to flush traces")
	}
	return nil
}

// engine builds an engine from the loaded configuration.
func (a *app) engine(extra ...engine.Option) (*engine.Engine, error) {
	opts := []engine.Option{
		engine.WithLogger(a.logger),
		engine.WithTracerProvider(a.telemetry.TracerProvider()),
		engine.WithMetrics(a.metrics),
	}
	return engine.FromConfig(a.cfg, append(opts, extra...)...)
}

// render writes data in the selected format. Text output uses view.
func (a *app) render(w io.Writer, data any, view ux.TextRenderer) error {
	f, err := ux.NewFormatter(a.flags.format, &ux.FormatterOptions{Writer: w, NoColor: a.flags.noColor})
	if err != nil {
		return err
	}
	if _, ok := f.(*ux.TextFormatter); ok && view != nil {
		return f.Format(view)
	}
	return f.Format(data)
}
