package alarm

import "fmt"

// OutcomeKind enumerates report outcomes.
type OutcomeKind int

const (
	// Sent means the report request completed with a zero status.
	Sent OutcomeKind = iota
	// LinkOpenFailed means the data link could not be opened; nothing was sent.
	LinkOpenFailed
	// SendFailed means the link opened but the request failed.
	SendFailed
)

// String implements fmt.Stringer.
func (k OutcomeKind) String() string {
	switch k {
	case Sent:
		return "sent"
	case LinkOpenFailed:
		return "link_open_failed"
	case SendFailed:
		return "send_failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// ReportOutcome is the result of one report attempt. It is logged and discarded.
type ReportOutcome struct {
	// Kind is the outcome.
	Kind OutcomeKind
	// Code is the collaborator status for failures.
	Code int
}

// Succeeded reports whether the report was sent.
func (o ReportOutcome) Succeeded() bool {
	return o.Kind == Sent
}

// String implements fmt.Stringer.
func (o ReportOutcome) String() string {
	if o.Kind == Sent {
		return o.Kind.String()
	}

	return fmt.Sprintf("%s(%d)", o.Kind, o.Code)
}
