package interact

import (
	"fmt"

	"github.com/fpang/lapse-classify/internal/classify"
)

// StateKind is a step in handling one candidate.
type StateKind int

const (
	AwaitingConfirmation StateKind = iota
	AwaitingManualChoice
	Resolved
	Skipped
)

func (k StateKind) String() string {
	switch k {
	case AwaitingConfirmation:
		return "awaiting_confirmation"
	case AwaitingManualChoice:
		return "awaiting_manual_choice"
	case Resolved:
		return "resolved"
	case Skipped:
		return "skipped"
	default:
		return fmt.Sprintf("StateKind(%d)", int(k))
	}
}

// State is the interaction state of one candidate. Category is set for
// AwaitingConfirmation and Resolved; Reason for Skipped.
type State struct {
	Kind     StateKind
	Category classify.Category
	Reason   string
}

// entryState maps a classification outcome to the first interactive state.
// Failed outcomes never reach the user.
func entryState(o classify.Outcome) State {
	switch o.Kind {
	case classify.OutcomeLabel:
		return State{Kind: AwaitingConfirmation, Category: o.Category}
	case classify.OutcomeUnrecognized:
		return State{Kind: AwaitingManualChoice}
	default:
		return State{Kind: Skipped, Reason: o.Reason()}
	}
}

// Summary counts how candidates ended.
type Summary struct {
	Renamed int
	Skipped int
	Failed  int
}

// Total returns the number of candidates handled.
func (s Summary) Total() int {
	return s.Renamed + s.Skipped + s.Failed
}
