package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTools(t *testing.T) {
	tools := NewTools().
		Register(ToolDefinition{Name: "echo", Description: "v1"}, func(_ context.Context, args map[string]any) (any, error) {
			return args["q"], nil
		}).
		Register(ToolDefinition{Name: "echo", Description: "v2"}, func(_ context.Context, args map[string]any) (any, error) {
			return "replaced", nil
		})

	defs := tools.Definitions()
	require.Len(t, defs, 1)
	assert.Equal(t, "v2", defs[0].Description)

	out, err := tools.Execute(context.Background(), ToolCall{Name: "echo", Args: map[string]any{"q": "x"}})
	require.NoError(t, err)
	assert.Equal(t, "replaced", out)

	_, err = tools.Execute(context.Background(), ToolCall{Name: "nope"})
	assert.ErrorIs(t, err, ErrUnknownTool)
}
