package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskweave/internal/backlog"
	"github.com/felixgeelhaar/taskweave/internal/errors"
	"github.com/felixgeelhaar/taskweave/internal/hints"
)

func newHintsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hints <task-id>",
		Short: "Show the files a task is expected to touch",
		Long: `Show the file hints extracted for one task: listed files, files and
modules mentioned in its text, and files implied by its category and id
prefix. File hints drive the file-overlap part of task similarity.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := backlog.NewFileRepository().Load(a.cfg.Document.Path)
			if err != nil {
				return err
			}

			id := strings.TrimSpace(args[0])
			for _, t := range doc.Tasks {
				if strings.TrimSpace(t.ID) == id {
					files := hints.NewExtractor().Extract(t).Sorted()
					return a.render(cmd.OutOrStdout(), hintsResult{TaskID: id, Files: files}, hintsResult{TaskID: id, Files: files})
				}
			}
			return errors.NewTaskNotFoundError(id, a.cfg.Document.Path)
		},
	}
	cmd.Flags().String("doc", "", "backlog document (default from config: document.path)")
	return cmd
}
