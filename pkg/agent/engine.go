package agent

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hikawa/kotori/pkg/tools"
)

const defaultMaxToolIterations = 8

// ModelEngine drives a model provider in a tool loop and emits execution
// events on a lazily consumed stream. It only accepts runs for session
// identities it has been told about via CreateSession; anything else
// fails with a session-not-found error.
type ModelEngine struct {
	provider LLMProvider
	registry *tools.Registry
	logger   zerolog.Logger

	model             string
	temperature       float64
	maxTokens         int
	maxToolIterations int

	mu       sync.RWMutex
	sessions map[string]*conversation
}

type conversation struct {
	userID  string
	history []Message
	created time.Time
}

// EngineConfig configures a ModelEngine.
type EngineConfig struct {
	Provider          LLMProvider
	Registry          *tools.Registry
	Model             string
	Temperature       float64
	MaxTokens         int
	MaxToolIterations int
	Logger            zerolog.Logger
}

// NewModelEngine creates an engine around a provider and tool registry.
func NewModelEngine(cfg EngineConfig) *ModelEngine {
	maxIter := cfg.MaxToolIterations
	if maxIter <= 0 {
		maxIter = defaultMaxToolIterations
	}
	return &ModelEngine{
		provider:          cfg.Provider,
		registry:          cfg.Registry,
		logger:            cfg.Logger.With().Str("module", "engine").Logger(),
		model:             cfg.Model,
		temperature:       cfg.Temperature,
		maxTokens:         cfg.MaxTokens,
		maxToolIterations: maxIter,
		sessions:          make(map[string]*conversation),
	}
}

// CreateSession registers a session identity with the engine. Creating
// an identity that already exists resets its history.
func (e *ModelEngine) CreateSession(ctx context.Context, userID, sessionID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sessions[sessionID] = &conversation{userID: userID, created: time.Now()}
	e.logger.Info().Str("user_id", userID).Str("session_id", sessionID).Msg("session created")
	return nil
}

// DropSession removes a session identity; later runs against it fail
// with session-not-found.
func (e *ModelEngine) DropSession(sessionID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.sessions, sessionID)
}

// Run executes one utterance against a registered session. The returned
// stream is produced lazily; closing it cancels the run.
func (e *ModelEngine) Run(ctx context.Context, req RunRequest) (*Stream, error) {
	e.mu.RLock()
	conv, ok := e.sessions[req.SessionID]
	e.mu.RUnlock()
	if !ok {
		return nil, &SessionError{SessionID: req.SessionID}
	}

	stream, runCtx := NewStream(ctx)
	go e.produce(runCtx, stream, req, conv)
	return stream, nil
}

func (e *ModelEngine) produce(ctx context.Context, stream *Stream, req RunRequest, conv *conversation) {
	defer stream.Finish()

	e.mu.RLock()
	messages := append([]Message(nil), conv.history...)
	e.mu.RUnlock()
	messages = append(messages, Message{Role: "user", Content: req.Message})

	decls := e.registry.Declarations(req.Tools...)

	for i := 0; i < e.maxToolIterations; i++ {
		resp, err := e.provider.Call(ctx, LLMRequest{
			Model:        e.model,
			Messages:     messages,
			Tools:        decls,
			Temperature:  e.temperature,
			MaxTokens:    e.maxTokens,
			SystemPrompt: req.Instruction,
		})
		if err != nil {
			e.logger.Warn().Err(err).Str("agent", req.Agent).Str("session_id", req.SessionID).Msg("model call failed")
			stream.Fail(err)
			return
		}

		if len(resp.ToolCalls) == 0 {
			messages = append(messages, Message{Role: "assistant", Content: resp.Content})
			e.saveHistory(req.SessionID, messages)
			stream.Emit(ctx, NewTextEvent(req.Agent, true, resp.Content))
			return
		}

		messages = append(messages, Message{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		for _, tc := range resp.ToolCalls {
			if !stream.Emit(ctx, NewTextEvent(req.Agent, false, "calling "+tc.Name)) {
				return
			}
			result := e.registry.Execute(ctx, tc.Name, tc.Parameters)
			payload, err := json.Marshal(result)
			if err != nil {
				payload = []byte(`{"status":"error","message":"unserializable tool result"}`)
			}
			messages = append(messages, Message{
				Role:       "tool",
				Content:    string(payload),
				ToolCallID: tc.ID,
			})
		}
	}

	// The model kept requesting tools past the budget; escalate instead
	// of looping forever.
	e.saveHistory(req.SessionID, messages)
	stream.Emit(ctx, NewEscalationEvent(req.Agent, "maximum tool iterations reached without a final answer"))
}

func (e *ModelEngine) saveHistory(sessionID string, messages []Message) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if conv, ok := e.sessions[sessionID]; ok {
		conv.history = messages
	}
}
