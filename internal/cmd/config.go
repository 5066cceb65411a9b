package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/taskweave/internal/config"
	"github.com/felixgeelhaar/taskweave/internal/ux"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect taskweave configuration",
		Long: `Inspect the resolved taskweave configuration.

Settings are read, lowest precedence first, from built-in defaults,
~/.taskweave/config.yaml (or --config), TASKWEAVE_* environment variables
(TASKWEAVE_DOCUMENT_PATH, TASKWEAVE_EMBED_PROVIDER, ...) and command flags.`,
	}

	view := &cobra.Command{
		Use:   "view",
		Short: "Display the resolved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			masked := maskSecrets(a.cfg)
			return a.render(cmd.OutOrStdout(), masked, configView{cfg: masked, file: a.v.ConfigFileUsed()})
		},
	}

	path := &cobra.Command{
		Use:         "path",
		Short:       "Show the configuration file path",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipSetup: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := a.flags.configFile
			if p == "" {
				p = config.ConfigFile()
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), p)
			return err
		},
	}

	cmd.AddCommand(view, path)
	return cmd
}

func maskSecrets(cfg *config.Config) *config.Config {
	masked := *cfg
	if masked.Embed.APIKey != "" {
		masked.Embed.APIKey = "********"
	}
	if masked.MCP.AdminToken != "" {
		masked.MCP.AdminToken = "********"
	}
	return &masked
}

// configView renders configuration as YAML.
type configView struct {
	cfg  *config.Config
	file string
}

func (v configView) RenderText(s ux.Styles) string {
	data, err := yaml.Marshal(v.cfg)
	if err != nil {
		return fmt.Sprintf("failed to render configuration: %v\n", err)
	}

	source := v.file
	if source == "" {
		source = "defaults (no config file)"
	}
	return s.Label.Render("# source: "+source) + "\n" + string(data)
}
