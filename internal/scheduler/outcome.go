package scheduler

import (
	"errors"
	"fmt"
)

// Outcome is the learner's self-reported recall quality for one review event.
type Outcome int

const (
	// Again means the learner failed to recall the card.
	Again Outcome = iota + 1
	// Good means the learner recalled the card with effort.
	Good
	// Easy means the learner recalled the card effortlessly.
	Easy
)

// ErrInvalidOutcome is returned when an outcome is outside {Again, Good, Easy}.
var ErrInvalidOutcome = errors.New("invalid review outcome")

// Valid reports whether o is one of the three defined outcomes.
func (o Outcome) Valid() bool {
	return o >= Again && o <= Easy
}

func (o Outcome) String() string {
	switch o {
	case Again:
		return "again"
	case Good:
		return "good"
	case Easy:
		return "easy"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// ParseOutcome converts the wire form used by the tool surface.
func ParseOutcome(s string) (Outcome, error) {
	switch s {
	case "again":
		return Again, nil
	case "good":
		return Good, nil
	case "easy":
		return Easy, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidOutcome, s)
	}
}
