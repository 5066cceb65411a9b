package cmd

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskweave/internal/ux"
	"github.com/felixgeelhaar/taskweave/internal/version"
)

func newVersionCmd(a *app) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipSetup: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.GetInfo()
			return a.render(cmd.OutOrStdout(), info, versionView{info: info, verbose: verbose})
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show commit, build date and platform")
	return cmd
}

type versionView struct {
	info    version.Info
	verbose bool
}

func (v versionView) RenderText(ux.Styles) string {
	if v.verbose {
		return v.info.String() + "\n"
	}
	return "taskweave " + v.info.Short() + "\n"
}
