package agent

import (
	"context"
	"errors"
	"fmt"
)

var ErrUnknownTool = errors.New("unknown tool")

// ToolFunc executes a tool call locally and returns its structured result.
type ToolFunc func(ctx context.Context, args map[string]any) (any, error)

// Tools is a set of functions offered to the model. The orchestrator, not
// the model, executes them.
type Tools struct {
	defs  []ToolDefinition
	funcs map[string]ToolFunc
}

func NewTools() *Tools {
	return &Tools{funcs: make(map[string]ToolFunc)}
}

// Register adds a tool; a later registration with the same name replaces it.
func (t *Tools) Register(def ToolDefinition, fn ToolFunc) *Tools {
	if _, ok := t.funcs[def.Name]; !ok {
		t.defs = append(t.defs, def)
	} else {
		for i := range t.defs {
			if t.defs[i].Name == def.Name {
				t.defs[i] = def
			}
		}
	}
	t.funcs[def.Name] = fn
	return t
}

func (t *Tools) Definitions() []ToolDefinition {
	return append([]ToolDefinition(nil), t.defs...)
}

func (t *Tools) Execute(ctx context.Context, call ToolCall) (any, error) {
	fn, ok := t.funcs[call.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, call.Name)
	}
	return fn(ctx, call.Args)
}
