// Package patch computes line diffs between the previous and the new
// priority list so a run can be previewed before it is written.
package patch

import (
	"encoding/json"
)

// Op is the kind of a diff line.
type Op string

const (
	OpEqual  Op = "equal"
	OpInsert Op = "insert"
	OpDelete Op = "delete"
)

// Line is a single priority list line with its change status.
type Line struct {
	Op   Op     `json:"op" yaml:"op"`
	Text string `json:"text" yaml:"text"`
}

// Patch describes the change from one priority list to another.
type Patch struct {
	Name  string `json:"name" yaml:"name"`
	Lines []Line `json:"lines" yaml:"lines"`

	// Statistics
	Insertions int `json:"insertions" yaml:"insertions"`
	Deletions  int `json:"deletions" yaml:"deletions"`
	Unchanged  int `json:"unchanged" yaml:"unchanged"`
}

// ToJSON converts patch to JSON
func (p *Patch) ToJSON() ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// FromJSON parses a patch from JSON
func FromJSON(data []byte) (*Patch, error) {
	var p Patch
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// IsEmpty returns true if the patch contains no changes
func (p *Patch) IsEmpty() bool {
	return p.Insertions == 0 && p.Deletions == 0
}

// CalculateStats updates the patch statistics from its lines
func (p *Patch) CalculateStats() {
	p.Insertions, p.Deletions, p.Unchanged = 0, 0, 0
	for _, l := range p.Lines {
		switch l.Op {
		case OpInsert:
			p.Insertions++
		case OpDelete:
			p.Deletions++
		default:
			p.Unchanged++
		}
	}
}
