package agent

import (
	"context"
	"errors"

	"anemo-backend/internal/schema"
)

// ErrUnavailable marks failures to obtain any answer from the model:
// transport errors, non-2xx statuses, blocked prompts and empty candidates.
var ErrUnavailable = errors.New("model unavailable")

// Client sends one self-contained prompt to the hosted model.
type Client interface {
	Generate(ctx context.Context, req *Request) (*Response, error)
}

// Media is an inline binary attachment, e.g. an uploaded photo.
type Media struct {
	MimeType string
	Data     string // base64
}

// ToolDefinition declares a function the model may ask us to call.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  schema.Definition
}

// ToolCall is a function invocation requested by the model.
type ToolCall struct {
	Name string
	Args map[string]any
}

type Request struct {
	// Flow names the calling flow; used for logging only.
	Flow   string
	Prompt string
	Media  []Media
	Tools  []ToolDefinition
	// Output, when set, asks the model for JSON matching this schema.
	Output schema.Definition
}

type Response struct {
	Text      string
	ToolCalls []ToolCall
}

// Decode validates the textual output against out's declared shape.
func (r *Response) Decode(out any) error {
	return schema.Decode(r.Text, out)
}

// ToolCall returns the first requested call of the named tool.
func (r *Response) ToolCall(name string) (ToolCall, bool) {
	for _, call := range r.ToolCalls {
		if call.Name == name {
			return call, true
		}
	}
	return ToolCall{}, false
}
