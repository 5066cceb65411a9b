package patch

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultName labels diffs of the priority list.
const DefaultName = "priority_list"

// DiffGenerator generates line diffs between string lists
type DiffGenerator struct {
	dmp *diffmatchpatch.DiffMatchPatch
}

// NewDiffGenerator creates a new diff generator
func NewDiffGenerator() *DiffGenerator {
	return &DiffGenerator{
		dmp: diffmatchpatch.New(),
	}
}

// Generate diffs two lists line by line. Lines are compared whole, so an
// entry that moves shows up as one deletion and one insertion.
func (g *DiffGenerator) Generate(name string, oldLines, newLines []string) *Patch {
	if name == "" {
		name = DefaultName
	}
	p := &Patch{Name: name, Lines: []Line{}}

	oldText, newText := joinLines(oldLines), joinLines(newLines)
	chars1, chars2, lineArray := g.dmp.DiffLinesToChars(oldText, newText)
	diffs := g.dmp.DiffMain(chars1, chars2, false)
	diffs = g.dmp.DiffCharsToLines(diffs, lineArray)

	for _, d := range diffs {
		op := OpEqual
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = OpInsert
		case diffmatchpatch.DiffDelete:
			op = OpDelete
		}
		for _, text := range splitLines(d.Text) {
			p.Lines = append(p.Lines, Line{Op: op, Text: text})
		}
	}

	p.CalculateStats()
	return p
}

// Unified renders the patch with ---/+++ headers and one prefixed line per
// entry. Unchanged lines are kept so the whole list is visible.
func (p *Patch) Unified() string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "--- a/%s\n", p.Name)
	fmt.Fprintf(&buf, "+++ b/%s\n", p.Name)
	fmt.Fprintf(&buf, "@@ -%d +%d @@\n", p.Unchanged+p.Deletions, p.Unchanged+p.Insertions)

	for _, l := range p.Lines {
		switch l.Op {
		case OpInsert:
			buf.WriteString("+")
		case OpDelete:
			buf.WriteString("-")
		default:
			buf.WriteString(" ")
		}
		buf.WriteString(l.Text)
		buf.WriteString("\n")
	}

	return buf.String()
}

// joinLines terminates every line so the last entry compares like the rest.
func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
