package agent

import "context"

// Engine executes agent runs. The production implementation is
// ModelEngine; tests substitute scripted fakes.
type Engine interface {
	Run(ctx context.Context, req RunRequest) (*Stream, error)
}

// RunRequest carries everything an engine needs for one run.
type RunRequest struct {
	Agent       string
	Instruction string
	Tools       []string
	UserID      string
	SessionID   string
	Message     string
}

// Capability is a named reasoning unit: an instruction, the tools it
// may call, and the engine that runs it.
type Capability struct {
	Name        string
	Description string
	Instruction string
	Tools       []string

	engine Engine
}

// NewCapability binds a capability definition to an engine.
func NewCapability(engine Engine, name, description, instruction string, toolNames []string) *Capability {
	return &Capability{
		Name:        name,
		Description: description,
		Instruction: instruction,
		Tools:       toolNames,
		engine:      engine,
	}
}

// Execute starts one run of the capability for the given session.
func (c *Capability) Execute(ctx context.Context, userID, sessionID, message string) (*Stream, error) {
	return c.engine.Run(ctx, RunRequest{
		Agent:       c.Name,
		Instruction: c.Instruction,
		Tools:       c.Tools,
		UserID:      userID,
		SessionID:   sessionID,
		Message:     message,
	})
}
