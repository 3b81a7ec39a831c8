package domain

// TurnOutcome classifies how a question-and-streamed-answer exchange ended.
// There is deliberately no "retrying" outcome: replaying a carried question
// is entirely the caller's responsibility.
type TurnOutcome int

const (
	TurnCompleted TurnOutcome = iota
	TurnAuthRequired
	TurnSessionExpired
	TurnErrored
)

// String returns a human-readable label for the outcome.
func (o TurnOutcome) String() string {
	switch o {
	case TurnCompleted:
		return "completed"
	case TurnAuthRequired:
		return "auth-required"
	case TurnSessionExpired:
		return "session-expired"
	case TurnErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// TurnResult is the terminal state of one streamed turn.
//
// Content is the final sentinel-stripped display text (TurnCompleted), or the
// "Error: ..." message the transcript keeps (TurnErrored). Question carries
// the original question for replay after the caller re-authenticates
// (TurnAuthRequired, TurnSessionExpired).
type TurnResult struct {
	Outcome  TurnOutcome
	Content  string
	Memory   *MemoryEvent
	Question string
	Err      error
}
