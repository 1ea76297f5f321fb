package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/xeipuuv/gojsonschema"
)

// Declaration describes a tool to the model: its name, what it does, and
// the JSON schema of its arguments.
type Declaration struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// Func is the signature of a tool adapter. Adapters are pure
// request-to-result functions; they capture their own failures in the
// returned Result instead of raising.
type Func func(ctx context.Context, args map[string]any) Result

// Tool pairs a declaration with its implementation.
type Tool struct {
	Declaration
	Call Func
}

// Registry holds the tool set available to agent capabilities. Tool-call
// arguments are validated against the declared schema before the adapter
// runs, so adapters can trust required fields exist.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	logger zerolog.Logger
}

// NewRegistry creates an empty tool registry.
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		tools:  make(map[string]Tool),
		logger: logger.With().Str("module", "tools").Logger(),
	}
}

// Register adds tools to the registry, replacing any previous tool with
// the same name.
func (r *Registry) Register(ts ...Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range ts {
		r.tools[t.Name] = t
	}
}

// Declarations returns the declarations for the named tools. Unknown
// names are skipped. With no names it returns every registered tool,
// sorted for deterministic prompt construction.
func (r *Registry) Declarations(names ...string) []Declaration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(names) == 0 {
		names = make([]string, 0, len(r.tools))
		for name := range r.tools {
			names = append(names, name)
		}
		sort.Strings(names)
	}

	decls := make([]Declaration, 0, len(names))
	for _, name := range names {
		if t, ok := r.tools[name]; ok {
			decls = append(decls, t.Declaration)
		}
	}
	return decls
}

// Execute validates args against the tool's schema and runs the adapter.
// Unknown tools and schema violations come back as validation errors, not
// Go errors, so the model can correct itself conversationally.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) Result {
	r.mu.RLock()
	t, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return ValidationErrorf("unknown tool: %s", name)
	}

	if err := r.validateArgs(t.Declaration, args); err != nil {
		r.logger.Debug().Str("tool", name).Err(err).Msg("tool arguments rejected")
		return ValidationErrorf("invalid arguments for %s: %v", name, err)
	}

	return t.Call(ctx, args)
}

func (r *Registry) validateArgs(decl Declaration, args map[string]any) error {
	if decl.InputSchema == nil {
		return nil
	}
	if args == nil {
		args = map[string]any{}
	}

	schemaJSON, err := json.Marshal(decl.InputSchema)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	argsJSON, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("marshal arguments: %w", err)
	}

	res, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewBytesLoader(argsJSON),
	)
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return nil
}
