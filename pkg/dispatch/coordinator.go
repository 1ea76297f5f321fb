// Package dispatch orchestrates one inbound utterance end to end:
// capability selection, session resolution, agent execution, response
// extraction, and the one-shot retry on session invalidation.
package dispatch

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hikawa/kotori/pkg/agent"
	"github.com/hikawa/kotori/pkg/routing"
	"github.com/hikawa/kotori/pkg/session"
)

// Coordinator wires the session registry, the capability router and the
// response extractor into a single Dispatch call.
//
// The retry budget is a hard contract: at most two agent executions per
// dispatch, and exactly two only when the first fails with a
// session-not-found error. A second session failure, or any other
// failure during the retry, terminates with an error text.
type Coordinator struct {
	registry *session.Registry
	router   *routing.Router
	logger   zerolog.Logger
}

// NewCoordinator creates a dispatch coordinator.
func NewCoordinator(registry *session.Registry, router *routing.Router, logger zerolog.Logger) *Coordinator {
	return &Coordinator{
		registry: registry,
		router:   router,
		logger:   logger.With().Str("module", "dispatch").Logger(),
	}
}

// Dispatch handles one utterance for one user and always returns a
// textual result; internal failures become apologetic natural-language
// messages rather than errors.
func (c *Coordinator) Dispatch(ctx context.Context, userID, text string) (result Result) {
	// The transport layer must never see a panic from the agent stack.
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().Str("user_id", userID).Interface("panic", r).Msg("dispatch panicked")
			result = Result{
				Text:     fmt.Sprintf("Sorry, an unexpected error occurred: %v", r),
				Outcome:  OutcomeFailed,
				Attempts: result.Attempts,
			}
		}
	}()

	text = routing.RewritePaperLink(text)
	capability := c.router.Select(text)
	if capability == nil {
		c.logger.Error().Str("user_id", userID).Msg("no capability available")
		return Result{Text: "Sorry, no agent is available to handle your request.", Outcome: OutcomeFailed}
	}

	sessionID, err := c.registry.ResolveOrCreate(ctx, userID)
	if err != nil {
		c.logger.Error().Err(err).Str("user_id", userID).Msg("session resolution failed")
		return Result{Text: fmt.Sprintf("Sorry, I encountered an error: %v", err), Outcome: OutcomeFailed}
	}

	reply, err := c.attempt(ctx, capability, userID, sessionID, text)
	if err == nil {
		return Result{Text: reply, Outcome: OutcomeSuccess, Attempts: 1, SessionID: sessionID}
	}

	if !agent.IsSessionNotFound(err) {
		c.logger.Warn().Err(err).Str("user_id", userID).Str("session_id", sessionID).Msg("agent execution failed")
		return Result{Text: fmt.Sprintf("Sorry, I encountered an error: %v", err), Outcome: OutcomeFailed, Attempts: 1, SessionID: sessionID}
	}

	// The backend no longer recognizes the session: discard it, mint a
	// fresh one, and retry exactly once.
	c.logger.Info().Err(err).Str("user_id", userID).Str("session_id", sessionID).Msg("session rejected by backend; recreating and retrying")
	c.registry.Invalidate(userID)

	freshID, err := c.registry.ResolveOrCreate(ctx, userID)
	if err != nil {
		c.logger.Error().Err(err).Str("user_id", userID).Msg("session recreation failed")
		return Result{Text: fmt.Sprintf("Sorry, I encountered an error after a session issue: %v", err), Outcome: OutcomeFailed, Attempts: 1}
	}

	reply, err = c.attempt(ctx, capability, userID, freshID, text)
	if err != nil {
		c.logger.Warn().Err(err).Str("user_id", userID).Str("session_id", freshID).Msg("retry failed")
		return Result{Text: fmt.Sprintf("Sorry, I encountered an error after a session issue: %v", err), Outcome: OutcomeFailed, Attempts: 2, SessionID: freshID}
	}
	return Result{Text: reply, Outcome: OutcomeRetried, Attempts: 2, SessionID: freshID}
}

// attempt performs one agent execution and extracts the reply.
func (c *Coordinator) attempt(ctx context.Context, capability *agent.Capability, userID, sessionID, text string) (string, error) {
	stream, err := capability.Execute(ctx, userID, sessionID, text)
	if err != nil {
		return "", err
	}
	return Extract(stream)
}
