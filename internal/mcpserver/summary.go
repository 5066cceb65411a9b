package mcpserver

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/taskweave/internal/engine"
)

// Summary renders a report as plain text for tool results.
func Summary(r *engine.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s complete (run %s)\n", r.Operation, r.RunID)
	if r.Insert != nil {
		fmt.Fprintf(&b, "Inserted %s: %s cluster %q at position %d (score %.2f)",
			r.Insert.TaskID, r.Insert.Placement, r.Insert.Cluster, r.Insert.Position+1, r.Insert.Score)
		if r.Insert.Split {
			b.WriteString(", oversized cluster split")
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Tasks: %d", r.TaskCount)
	if r.SkippedTasks > 0 {
		fmt.Fprintf(&b, " (%d skipped)", r.SkippedTasks)
	}
	fmt.Fprintf(&b, "\nClusters: %d\n", len(r.Clusters))
	for i, c := range r.Clusters {
		fmt.Fprintf(&b, "  %d. %s [%s] %d task(s)\n", i+1, c.Name, c.Phase, c.Size)
	}

	fmt.Fprintf(&b, "Cycles: %d detected, %d edge(s) broken", r.CyclesDetected, len(r.BrokenEdges))
	if r.OrderFallback {
		b.WriteString(", dependency order unavailable")
	}
	b.WriteString("\n")
	if r.Semantic {
		b.WriteString("Similarity: files + embeddings\n")
	} else {
		b.WriteString("Similarity: files only\n")
	}
	fmt.Fprintf(&b, "Elapsed: %dms\n", r.ElapsedMS)

	switch {
	case !r.Applied:
		b.WriteString("Priority list: not written\n")
	case r.Changed():
		b.WriteString("Priority list: updated\n")
	default:
		b.WriteString("Priority list: unchanged\n")
	}

	if len(r.Warnings) > 0 {
		b.WriteString("Warnings:\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "  - [%s] %s\n", w.Code, w.Message)
		}
	}
	return b.String()
}
