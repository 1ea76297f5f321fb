package dispatch

// Outcome tags how a dispatch concluded.
type Outcome string

const (
	// OutcomeSuccess means the first attempt produced the reply.
	OutcomeSuccess Outcome = "success"
	// OutcomeRetried means the reply came from the second attempt after
	// a session recreation.
	OutcomeRetried Outcome = "retried"
	// OutcomeFailed means both the attempt (and the retry, if any)
	// failed; Text carries a human-readable error message.
	OutcomeFailed Outcome = "failed"
)

// Result is what a dispatch hands back to the transport layer. Text is
// always populated — failures are rendered as natural language, never
// propagated as errors.
type Result struct {
	Text     string
	Outcome  Outcome
	Attempts int
	// SessionID is the session the final attempt ran under, when one
	// was resolved.
	SessionID string
}

func (r Result) Failed() bool {
	return r.Outcome == OutcomeFailed
}
