package dispatch

import (
	"github.com/hikawa/kotori/pkg/agent"
)

const (
	// noFinalResponse is returned when a run's event stream ends
	// without a terminal event.
	noFinalResponse = "Agent did not produce a final response."

	// noEscalationDetail stands in when an escalation carries no
	// explanation of its own.
	noEscalationDetail = "No specific message."
)

// Extract consumes an event stream lazily and derives the single final
// reply text. It stops at the first terminal event without draining the
// rest — the stream may be unbounded — and always closes the stream so
// the producing run is torn down.
//
// A terminal text event yields the concatenation of its non-empty parts;
// a terminal escalation yields a formatted escalation message. A stream
// that ends with no terminal event yields a fixed fallback. Producer
// failures come back as the error.
func Extract(stream *agent.Stream) (string, error) {
	defer stream.Close()

	for {
		ev, ok := stream.Next()
		if !ok {
			break
		}
		if !ev.IsFinal() {
			continue
		}

		if ev.Escalate {
			msg := ev.ErrorMessage
			if msg == "" {
				msg = noEscalationDetail
			}
			return "Agent escalated: " + msg, nil
		}
		if ev.HasContent() {
			return ev.Text(), nil
		}
		return noFinalResponse, nil
	}

	if err := stream.Err(); err != nil {
		return "", err
	}
	return noFinalResponse, nil
}
