package clinic

import (
	"context"
	"fmt"
	"strings"

	"anemo-backend/internal/agent"
	"anemo-backend/internal/prompt"
	"anemo-backend/internal/schema"

	"github.com/rs/zerolog"
)

type Service interface {
	// Lookup asks the model, which is expected to call the search tool.
	Lookup(ctx context.Context, req SearchRequest) (SearchResult, error)
	// Search queries the directory directly without the model.
	Search(req SearchRequest) SearchResult
}

type service struct {
	ai        agent.Client
	directory *Directory
	tools     *agent.Tools
}

func NewService(ai agent.Client, directory *Directory) Service {
	s := &service{ai: ai, directory: directory}
	s.tools = agent.NewTools().Register(agent.ToolDefinition{
		Name:        ToolName,
		Description: "Searches for healthcare providers (hospitals, clinics, doctors) based on a location query.",
		Parameters:  searchRequestSchema,
	}, s.searchTool)
	return s
}

func (s *service) Search(req SearchRequest) SearchResult {
	return SearchResult{Results: s.directory.Search(req.Query)}
}

func (s *service) searchTool(_ context.Context, args map[string]any) (any, error) {
	var req SearchRequest
	if err := schema.DecodeMap(args, &req); err != nil {
		return nil, fmt.Errorf("search tool arguments: %w", err)
	}
	return s.Search(req), nil
}

func (s *service) Lookup(ctx context.Context, req SearchRequest) (SearchResult, error) {
	logger := zerolog.Ctx(ctx)

	text, err := prompt.Render(prompt.ClinicLookup, prompt.ClinicData{Tool: ToolName, Query: req.Query})
	if err != nil {
		return SearchResult{}, err
	}

	resp, err := s.ai.Generate(ctx, &agent.Request{
		Flow:   "clinic_lookup",
		Prompt: text,
		Tools:  s.tools.Definitions(),
		Output: searchResultSchema,
	})
	if err != nil {
		return SearchResult{}, fmt.Errorf("clinic lookup: %w", err)
	}

	// The tool output is authoritative; any prose the model produced alongside is dropped.
	if call, ok := resp.ToolCall(ToolName); ok {
		if q, _ := call.Args["query"].(string); strings.TrimSpace(q) == "" {
			call.Args = map[string]any{"query": req.Query}
		}
		out, err := s.tools.Execute(ctx, call)
		if err != nil {
			return SearchResult{}, fmt.Errorf("clinic lookup: %w", err)
		}
		return out.(SearchResult), nil
	}

	var direct SearchResult
	if err := resp.Decode(&direct); err == nil {
		return direct, nil
	}
	logger.Info().Str("flow", "clinic_lookup").Msg("model returned neither a tool call nor a valid answer")
	return SearchResult{Results: []ClinicRecord{}}, nil
}
