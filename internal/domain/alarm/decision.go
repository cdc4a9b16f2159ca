package alarm

import (
	"fmt"

	"github.com/oshokin/alarm-trigger/internal/platform"
)

// NotRecognized is the result code stored when a recognition attempt fails.
const NotRecognized byte = 255

// ReasonNoVoiceMatch explains a suppressed burst.
const ReasonNoVoiceMatch = "no matching voice sample"

// VoiceSample is the outcome of the most recent recognition attempt.
type VoiceSample struct {
	// At is the clock reading of the refresh that produced the sample.
	At platform.Millis
	// ResultCode is the recognized index, or NotRecognized.
	ResultCode byte
	// Valid is false until a recognition attempt succeeds, and after any failed one.
	Valid bool
}

// Result returns the result code and whether it came from a successful attempt.
func (s VoiceSample) Result() (byte, bool) {
	return s.ResultCode, s.Valid
}

// Voice is the voice-recognition state the decision reads.
type Voice struct {
	// Sample is the latest recognition sample.
	Sample VoiceSample
	// Ready reports whether the recognizer loaded its reference sound at startup.
	Ready bool
}

// Rules are the fixed thresholds of the decision.
type Rules struct {
	// Threshold is the minimum drained pulse count for RF to be active.
	Threshold uint32
	// MatchIndex is the result code that corroborates an alarm.
	MatchIndex byte
}

// DecisionKind enumerates the decision outcomes.
type DecisionKind int

const (
	// BelowThreshold means the burst was too small to consider.
	BelowThreshold DecisionKind = iota
	// Suppressed means the burst lacked voice corroboration.
	Suppressed
	// Triggered means the alarm must be reported.
	Triggered
)

// String implements fmt.Stringer.
func (k DecisionKind) String() string {
	switch k {
	case BelowThreshold:
		return "below_threshold"
	case Suppressed:
		return "suppressed"
	case Triggered:
		return "triggered"
	default:
		return fmt.Sprintf("decision(%d)", int(k))
	}
}

// Decision is produced and consumed within one scheduler tick.
type Decision struct {
	// Kind is the outcome.
	Kind DecisionKind
	// Reason is set for Suppressed decisions.
	Reason string
}

// String implements fmt.Stringer.
func (d Decision) String() string {
	if d.Reason == "" {
		return d.Kind.String()
	}

	return d.Kind.String() + ": " + d.Reason
}

// Decide classifies a drained pulse count against the voice state.
func Decide(count uint32, voice Voice, rules Rules) Decision {
	if count < rules.Threshold {
		return Decision{Kind: BelowThreshold}
	}

	code, valid := voice.Sample.Result()
	if !voice.Ready || !valid || code != rules.MatchIndex {
		return Decision{Kind: Suppressed, Reason: ReasonNoVoiceMatch}
	}

	return Decision{Kind: Triggered}
}
