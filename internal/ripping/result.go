package ripping

import "rippa/internal/disc"

// Outcome classifies what a rip dispatch did.
type Outcome int

const (
	// OutcomeNoDisc means the drive is empty; nothing to do this poll.
	OutcomeNoDisc Outcome = iota
	// OutcomeSkipped means the disc is already ripped, staged, or being
	// ripped; no extraction ran.
	OutcomeSkipped
	// OutcomeRipped means extraction completed and the raw result was
	// staged.
	OutcomeRipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoDisc:
		return "no_disc"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeRipped:
		return "ripped"
	default:
		return "unknown"
	}
}

// Result reports the outcome of one rip dispatch.
type Result struct {
	Outcome  Outcome
	Kind     disc.Kind
	Identity string
}
