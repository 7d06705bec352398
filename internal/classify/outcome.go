package classify

import "fmt"

// OutcomeKind distinguishes the three possible classification outcomes.
type OutcomeKind int

const (
	// OutcomeLabel means the model answered with one of the known phrases.
	OutcomeLabel OutcomeKind = iota
	// OutcomeUnrecognized means the model answered with anything else.
	OutcomeUnrecognized
	// OutcomeFailed means the image could not be prepared or the call failed.
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeLabel:
		return "label"
	case OutcomeUnrecognized:
		return "unrecognized"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Outcome is the normalized result of classifying one image.
type Outcome struct {
	Kind     OutcomeKind
	Category Category // set for OutcomeLabel
	Text     string   // raw model text for OutcomeUnrecognized
	Err      error    // cause for OutcomeFailed
}

// Label returns a recognized outcome.
func Label(c Category) Outcome {
	return Outcome{Kind: OutcomeLabel, Category: c}
}

// Unrecognized returns an outcome carrying the raw model text.
func Unrecognized(text string) Outcome {
	return Outcome{Kind: OutcomeUnrecognized, Text: text}
}

// Failed returns a processing-failure outcome.
func Failed(err error) Outcome {
	return Outcome{Kind: OutcomeFailed, Err: err}
}

// Normalize converts free model text into an Outcome.
func Normalize(text string) Outcome {
	if c, ok := CategoryForPhrase(text); ok {
		return Label(c)
	}
	return Unrecognized(text)
}

// Reason describes a failed outcome.
func (o Outcome) Reason() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeLabel:
		return "label(" + string(o.Category) + ")"
	case OutcomeUnrecognized:
		return fmt.Sprintf("unrecognized(%q)", o.Text)
	default:
		return "failed(" + o.Reason() + ")"
	}
}
