package cluster

import (
	"fmt"
	"strings"
)

// Name labels each cluster by its most common category, then by its most
// common id prefix ("SEC Tasks"), then by position ("Cluster 3"). Ties go
// to the value seen first. clusters is modified in place and returned.
func Name(clusters []Cluster) []Cluster {
	for i := range clusters {
		clusters[i].Name = nameFor(clusters[i], i+1)
	}
	return clusters
}

func nameFor(c Cluster, position int) string {
	categories := newTally()
	prefixes := newTally()
	for _, t := range c.Tasks {
		categories.add(strings.TrimSpace(t.Category))
		prefixes.add(t.Prefix())
	}

	if top, ok := categories.top(); ok {
		return top
	}
	if top, ok := prefixes.top(); ok {
		return top + " Tasks"
	}
	return fmt.Sprintf("Cluster %d", position)
}

// tally counts values, remembering first-seen order for tie-breaks.
type tally struct {
	order  []string
	counts map[string]int
}

func newTally() *tally {
	return &tally{counts: make(map[string]int)}
}

func (t *tally) add(v string) {
	if v == "" {
		return
	}
	if _, ok := t.counts[v]; !ok {
		t.order = append(t.order, v)
	}
	t.counts[v]++
}

func (t *tally) top() (string, bool) {
	best, bestN := "", 0
	for _, v := range t.order {
		if n := t.counts[v]; n > bestN {
			best, bestN = v, n
		}
	}
	return best, bestN > 0
}
