// Package cmd implements the taskweave command line.
package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the command tree. Each call returns an independent
// tree, so tests can run commands side by side.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "taskweave",
		Short: "Cluster and dependency-order a task backlog",
		Long: `taskweave groups the tasks of a backlog document into clusters of related
work, orders the clusters so prerequisites come first, and rewrites the
document's priority list. Only the priority list is changed.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.teardown(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.flags.configFile, "config", "", "config file (default is $HOME/.taskweave/config.yaml)")
	flags.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&a.flags.logFormat, "log-format", "", "log format: text or json")
	flags.BoolVar(&a.flags.noColor, "no-color", false, "disable colored output")
	flags.StringVarP(&a.flags.format, "format", "o", "text", "output format: text, json, yaml")

	root.AddCommand(
		newReorganizeCmd(a),
		newInsertCmd(a),
		newClustersCmd(a),
		newHintsCmd(a),
		newConfigCmd(a),
		newServeCmd(a),
		newVersionCmd(a),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx.
func ExecuteContext(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
