package daemon

import (
	"context"
	"time"

	"github.com/hikawa/kotori/internal/line"
	"github.com/hikawa/kotori/internal/store"
	"github.com/hikawa/kotori/internal/tracing"
	"github.com/hikawa/kotori/pkg/dispatch"
)

// HandleTextEvent is the webhook handler: one dispatch, one reply. The
// dispatch result is always text, so the reply path never sees errors
// from the agent stack.
func (d *Daemon) HandleTextEvent(ctx context.Context, ev line.TextEvent) {
	logger := tracing.LoggerFromContext(ctx, d.logger)
	logger.Info().Str("text", ev.Text).Msg("received message")

	start := time.Now()
	result := d.coordinator.Dispatch(ctx, ev.UserID, ev.Text)
	d.observe(result, time.Since(start))

	logger.Info().
		Str("outcome", string(result.Outcome)).
		Int("attempts", result.Attempts).
		Msg("dispatch finished")

	if d.transcripts != nil {
		if err := d.transcripts.Append(ctx, store.Record{
			UserID:    ev.UserID,
			SessionID: result.SessionID,
			Prompt:    ev.Text,
			Reply:     result.Text,
			Outcome:   string(result.Outcome),
			Attempts:  result.Attempts,
		}); err != nil {
			d.metrics.TranscriptWriteErrors.Inc()
			logger.Warn().Err(err).Msg("transcript write failed")
		}
	}

	if err := d.lineClient.Reply(ctx, ev.ReplyToken, result.Text); err != nil {
		d.metrics.ReplyFailuresTotal.Inc()
		logger.Warn().Err(err).Msg("reply delivery failed")
		return
	}
	d.metrics.RepliesSentTotal.Inc()
}

func (d *Daemon) observe(result dispatch.Result, elapsed time.Duration) {
	outcome := string(result.Outcome)
	d.metrics.DispatchTotal.WithLabelValues(outcome).Inc()
	d.metrics.DispatchDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
	if result.Attempts > 1 {
		d.metrics.DispatchRetries.Inc()
	}
	// Mint and drop counters are fed by registry hooks; only the gauge
	// is sampled here.
	d.metrics.SessionsActive.Set(float64(d.registry.Len()))
}
