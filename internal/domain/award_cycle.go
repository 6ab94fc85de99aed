package domain

import "fmt"

// Phase is a stage of a yearly award cycle. Phases only move forward.
type Phase string

const (
	PhasePending    Phase = "pending"
	PhaseNomination Phase = "nomination"
	PhaseVoting     Phase = "voting"
	PhaseResults    Phase = "results"
)

var phaseOrder = []Phase{PhasePending, PhaseNomination, PhaseVoting, PhaseResults}

// Index returns the position of the phase in the cycle, or -1 for unknown values
func (p Phase) Index() int {
	for i, candidate := range phaseOrder {
		if candidate == p {
			return i
		}
	}
	return -1
}

// PhaseNames lists every phase name in cycle order
func PhaseNames() []string {
	names := make([]string, len(phaseOrder))
	for i, p := range phaseOrder {
		names[i] = string(p)
	}
	return names
}

func (p Phase) Valid() bool {
	return p.Index() >= 0
}

// ParsePhase converts a stored phase name
func ParsePhase(s string) (Phase, error) {
	p := Phase(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown phase %q", s)
	}
	return p, nil
}

// AwardCycle is the per-year container for categories and nominations
type AwardCycle struct {
	Year  int   `json:"year"`
	Phase Phase `json:"phase"`
}

// HasStarted reports whether the cycle has reached phase (or gone past it)
func (c AwardCycle) HasStarted(phase Phase) bool {
	return c.Phase.Index() >= phase.Index()
}

// IsIn reports whether the cycle is exactly in phase
func (c AwardCycle) IsIn(phase Phase) bool {
	return c.Phase == phase
}
