package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hikawa/kotori/pkg/agent"
)

func streamOf(events ...agent.Event) *agent.Stream {
	stream, ctx := agent.NewStream(context.Background())
	go func() {
		defer stream.Finish()
		for _, ev := range events {
			if !stream.Emit(ctx, ev) {
				return
			}
		}
	}()
	return stream
}

func TestExtract_FinalText(t *testing.T) {
	stream := streamOf(
		agent.NewTextEvent("a", false, "thinking..."),
		agent.NewTextEvent("a", true, "The answer."),
	)

	text, err := Extract(stream)
	require.NoError(t, err)
	assert.Equal(t, "The answer.", text)
}

func TestExtract_ConcatenatesParts(t *testing.T) {
	stream := streamOf(agent.NewTextEvent("a", true, "The ", "", "answer", ".", ""))

	text, err := Extract(stream)
	require.NoError(t, err)
	assert.Equal(t, "The answer.", text)
}

func TestExtract_Escalation(t *testing.T) {
	stream := streamOf(agent.NewEscalationEvent("a", "Escalation message here"))

	text, err := Extract(stream)
	require.NoError(t, err)
	assert.Equal(t, "Agent escalated: Escalation message here", text)
}

func TestExtract_EscalationWithoutDetail(t *testing.T) {
	stream := streamOf(agent.NewEscalationEvent("a", ""))

	text, err := Extract(stream)
	require.NoError(t, err)
	assert.Equal(t, "Agent escalated: No specific message.", text)
}

func TestExtract_NoTerminalEvent(t *testing.T) {
	stream := streamOf(
		agent.NewTextEvent("a", false, "working"),
		agent.NewTextEvent("a", false, "still working"),
	)

	text, err := Extract(stream)
	require.NoError(t, err)
	assert.Equal(t, "Agent did not produce a final response.", text)
}

func TestExtract_FinalEventWithoutContent(t *testing.T) {
	stream := streamOf(agent.NewTextEvent("a", true, "", ""))

	text, err := Extract(stream)
	require.NoError(t, err)
	assert.Equal(t, "Agent did not produce a final response.", text)
}

func TestExtract_ProducerFailure(t *testing.T) {
	stream, _ := agent.NewStream(context.Background())
	failure := errors.New("model unavailable")
	go stream.Fail(failure)

	_, err := Extract(stream)
	assert.ErrorIs(t, err, failure)
}

func TestExtract_StopsAtFirstFinalEvent(t *testing.T) {
	stream, ctx := agent.NewStream(context.Background())

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		defer stream.Finish()
		if !stream.Emit(ctx, agent.NewTextEvent("a", true, "first final")) {
			return
		}
		// An unbounded tail the extractor must never drain.
		for stream.Emit(ctx, agent.NewTextEvent("a", false, "tick")) {
		}
	}()

	text, err := Extract(stream)
	require.NoError(t, err)
	assert.Equal(t, "first final", text)

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("extractor did not tear the producer down")
	}
}
