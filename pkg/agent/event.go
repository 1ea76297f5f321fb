package agent

import (
	"strings"
	"time"
)

// Event is one step of an agent run: an intermediate progress note, the
// final answer, or an escalation when the agent gives up.
type Event struct {
	// Author names the agent that produced the event.
	Author string

	// Parts holds the textual content. Empty parts are permitted and
	// skipped during extraction.
	Parts []string

	// Final marks the run's terminal event. At most one per run.
	Final bool

	// Escalate marks a terminal event where the agent could not answer;
	// ErrorMessage explains why when the agent provided a reason.
	Escalate     bool
	ErrorMessage string

	Timestamp time.Time
}

// NewTextEvent builds a text event from the given parts.
func NewTextEvent(author string, final bool, parts ...string) Event {
	return Event{
		Author:    author,
		Parts:     parts,
		Final:     final,
		Timestamp: time.Now(),
	}
}

// NewEscalationEvent builds a terminal escalation event.
func NewEscalationEvent(author, message string) Event {
	return Event{
		Author:       author,
		Final:        true,
		Escalate:     true,
		ErrorMessage: message,
		Timestamp:    time.Now(),
	}
}

// IsFinal reports whether the event terminates its run.
func (e Event) IsFinal() bool {
	return e.Final
}

// HasContent reports whether any part carries text.
func (e Event) HasContent() bool {
	for _, p := range e.Parts {
		if p != "" {
			return true
		}
	}
	return false
}

// Text concatenates the event's non-empty parts in order.
func (e Event) Text() string {
	var b strings.Builder
	for _, p := range e.Parts {
		b.WriteString(p)
	}
	return b.String()
}
