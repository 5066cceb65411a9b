package cmd

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/taskweave/internal/engine"
	"github.com/felixgeelhaar/taskweave/internal/patch"
	"github.com/felixgeelhaar/taskweave/internal/ux"
)

// reportView renders an engine report for the terminal.
type reportView struct {
	report   *engine.Report
	doc      string
	showDiff bool
	showList bool
}

func (v reportView) RenderText(s ux.Styles) string {
	r := v.report
	var b strings.Builder

	title := map[string]string{
		engine.OpReorganize: "Reorganized",
		engine.OpPreview:    "Preview of",
		engine.OpInsert:     "Inserted into",
	}[r.Operation]
	if r.Operation == engine.OpReorganize && !r.Applied {
		title = "Dry run of"
	}
	if r.Operation == engine.OpInsert && !r.Applied {
		title = "Dry run insert into"
	}
	fmt.Fprintf(&b, "%s\n\n", s.Title.Render(title+" "+v.doc))

	if r.Insert != nil {
		line := fmt.Sprintf("%s -> %s (%s, score %.2f)", r.Insert.TaskID, r.Insert.Cluster, r.Insert.Placement, r.Insert.Score)
		if r.Insert.Split {
			line += ", oversized cluster split"
		}
		fmt.Fprintf(&b, "  %s %s\n", s.Label.Render("Task       "), s.Success.Render(line))
	}

	tasks := s.Count.Render(fmt.Sprint(r.TaskCount))
	if r.SkippedTasks > 0 {
		tasks += s.Warning.Render(fmt.Sprintf(" (%d skipped)", r.SkippedTasks))
	}
	fmt.Fprintf(&b, "  %s %s\n", s.Label.Render("Tasks      "), tasks)
	fmt.Fprintf(&b, "  %s %s\n", s.Label.Render("Clusters   "), s.Count.Render(fmt.Sprint(len(r.Clusters))))

	cycles := fmt.Sprintf("%d detected, %d edge(s) broken", r.CyclesDetected, len(r.BrokenEdges))
	if r.OrderFallback {
		cycles += ", kept pre-sort order"
	}
	fmt.Fprintf(&b, "  %s %s\n", s.Label.Render("Cycles     "), cycles)

	similarity := "files only"
	if r.Semantic {
		similarity = "files + embeddings"
	}
	fmt.Fprintf(&b, "  %s %s\n", s.Label.Render("Similarity "), similarity)
	fmt.Fprintf(&b, "  %s %dms\n", s.Label.Render("Elapsed    "), r.ElapsedMS)

	if len(r.Clusters) > 0 {
		fmt.Fprintf(&b, "\n%s\n", s.Header.Render("Clusters"))
		for i, c := range r.Clusters {
			fmt.Fprintf(&b, "  %2d. %-28s %s %s\n", i+1, c.Name, s.Count.Render(fmt.Sprintf("%3d", c.Size)), s.Label.Render(c.Phase))
		}
	}

	for _, e := range r.BrokenEdges {
		fmt.Fprintf(&b, "  %s %s -> %s (weight %d)\n", s.Warning.Render("broke"), e.From, e.To, e.Weight)
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintf(&b, "\n%s\n", s.Header.Render("Warnings"))
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "  %s %s\n", s.Warning.Render("["+w.Code+"]"), w.Message)
		}
	}

	diff := r.Diff()
	fmt.Fprintln(&b)
	switch {
	case diff.IsEmpty():
		fmt.Fprintln(&b, s.Success.Render("Priority list unchanged"))
	case r.Applied:
		fmt.Fprintln(&b, s.Success.Render(fmt.Sprintf("Priority list updated (+%d -%d)", diff.Insertions, diff.Deletions)))
	default:
		fmt.Fprintln(&b, s.Warning.Render(fmt.Sprintf("Priority list not written (+%d -%d)", diff.Insertions, diff.Deletions)))
	}

	if v.showDiff && !diff.IsEmpty() {
		b.WriteString(renderDiff(diff, s))
	}
	if v.showList {
		fmt.Fprintf(&b, "\n%s\n", s.Header.Render("Priority list"))
		for _, line := range r.NewPriorityList {
			fmt.Fprintf(&b, "  %s\n", line)
		}
	}
	return b.String()
}

func renderDiff(p *patch.Patch, s ux.Styles) string {
	var b strings.Builder
	for _, l := range p.Lines {
		switch l.Op {
		case patch.OpInsert:
			fmt.Fprintf(&b, "%s\n", s.Insert.Render("+ "+l.Text))
		case patch.OpDelete:
			fmt.Fprintf(&b, "%s\n", s.Delete.Render("- "+l.Text))
		default:
			fmt.Fprintf(&b, "  %s\n", l.Text)
		}
	}
	return b.String()
}

// clustersView lists every cluster with its tasks.
type clustersView struct {
	report *engine.Report
}

func (v clustersView) RenderText(s ux.Styles) string {
	var b strings.Builder
	if len(v.report.Clusters) == 0 {
		return s.Warning.Render("No tasks to cluster") + "\n"
	}
	for i, c := range v.report.Clusters {
		fmt.Fprintf(&b, "%s %s\n", s.Header.Render(fmt.Sprintf("%d. %s", i+1, c.Name)), s.Label.Render("("+c.Phase+")"))
		for _, id := range c.TaskIDs {
			fmt.Fprintf(&b, "   %s\n", id)
		}
	}
	return b.String()
}

// hintsResult is the output of `taskweave hints`.
type hintsResult struct {
	TaskID string   `json:"task_id" yaml:"task_id"`
	Files  []string `json:"files" yaml:"files"`
}

func (h hintsResult) RenderText(s ux.Styles) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", s.Title.Render("File hints for "+h.TaskID))
	if len(h.Files) == 0 {
		fmt.Fprintf(&b, "  %s\n", s.Label.Render("(none)"))
	}
	for _, f := range h.Files {
		fmt.Fprintf(&b, "  %s\n", f)
	}
	return b.String()
}
