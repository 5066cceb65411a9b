package domain

import "fmt"

// Phase is the coarse build stage a cluster belongs to when ordering work.
type Phase string

// Phases in processing order.
const (
	PhaseFoundational Phase = "foundational"
	PhaseBusiness     Phase = "business-logic"
	PhaseOther        Phase = "other"
	PhaseUIPolish     Phase = "ui-polish"
)

// Phases returns every phase in processing order.
func Phases() []Phase {
	return []Phase{PhaseFoundational, PhaseBusiness, PhaseOther, PhaseUIPolish}
}

// NewPhase creates a new Phase value object with validation
func NewPhase(value string) (Phase, error) {
	p := Phase(value)
	if err := p.Validate(); err != nil {
		return "", err
	}
	return p, nil
}

// Validate checks if the phase is valid
func (p Phase) Validate() error {
	if p.Rank() < 0 {
		return fmt.Errorf("invalid phase %q: must be foundational, business-logic, other, or ui-polish", string(p))
	}
	return nil
}

// String returns the string representation
func (p Phase) String() string {
	return string(p)
}

// Rank returns the position of the phase in processing order, or -1 for an unknown phase.
func (p Phase) Rank() int {
	switch p {
	case PhaseFoundational:
		return 0
	case PhaseBusiness:
		return 1
	case PhaseOther:
		return 2
	case PhaseUIPolish:
		return 3
	default:
		return -1
	}
}

// IsBefore reports whether clusters in this phase are processed before clusters in other.
func (p Phase) IsBefore(other Phase) bool {
	return p.Rank() < other.Rank()
}
