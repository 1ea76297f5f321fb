package tools

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoTool() Tool {
	return Tool{
		Declaration: Declaration{
			Name:        "echo",
			Description: "echoes its input",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"text":  map[string]any{"type": "string"},
					"count": map[string]any{"type": "integer"},
				},
				"required": []string{"text"},
			},
		},
		Call: func(ctx context.Context, args map[string]any) Result {
			return OKMessage("%s", StringArg(args, "text"))
		},
	}
}

func TestRegistry_Execute(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	r.Register(echoTool())

	res := r.Execute(context.Background(), "echo", map[string]any{"text": "hi"})
	require.False(t, res.IsError())
	assert.Equal(t, "hi", res.Message)
}

func TestRegistry_Execute_UnknownTool(t *testing.T) {
	r := NewRegistry(zerolog.Nop())

	res := r.Execute(context.Background(), "nope", nil)
	require.True(t, res.IsError())
	assert.Equal(t, ErrorKindValidation, res.Kind)
	assert.Contains(t, res.Message, "unknown tool")
}

func TestRegistry_Execute_SchemaValidation(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	r.Register(echoTool())

	tests := []struct {
		name    string
		args    map[string]any
		wantErr bool
	}{
		{"valid", map[string]any{"text": "hi"}, false},
		{"valid with optional", map[string]any{"text": "hi", "count": float64(3)}, false},
		{"missing required", map[string]any{}, true},
		{"nil args", nil, true},
		{"wrong type", map[string]any{"text": 42}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := r.Execute(context.Background(), "echo", tt.args)
			if tt.wantErr {
				assert.True(t, res.IsError())
				assert.Equal(t, ErrorKindValidation, res.Kind)
			} else {
				assert.False(t, res.IsError())
			}
		})
	}
}

func TestRegistry_Declarations(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	r.Register(
		Tool{Declaration: Declaration{Name: "beta"}},
		Tool{Declaration: Declaration{Name: "alpha"}},
	)

	all := r.Declarations()
	require.Len(t, all, 2)
	assert.Equal(t, "alpha", all[0].Name)
	assert.Equal(t, "beta", all[1].Name)

	some := r.Declarations("beta", "missing")
	require.Len(t, some, 1)
	assert.Equal(t, "beta", some[0].Name)
}

func TestRegistry_Register_Replaces(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	r.Register(Tool{
		Declaration: Declaration{Name: "t"},
		Call:        func(ctx context.Context, args map[string]any) Result { return OKMessage("old") },
	})
	r.Register(Tool{
		Declaration: Declaration{Name: "t"},
		Call:        func(ctx context.Context, args map[string]any) Result { return OKMessage("new") },
	})

	res := r.Execute(context.Background(), "t", nil)
	assert.Equal(t, "new", res.Message)
}
