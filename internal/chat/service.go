package chat

import (
	"context"
	"fmt"
	"strings"

	"anemo-backend/internal/agent"
	"anemo-backend/internal/prompt"
	"anemo-backend/internal/schema"
)

type Service interface {
	Answer(ctx context.Context, req QuestionRequest) (Answer, error)
}

type service struct {
	ai agent.Client
}

func NewService(ai agent.Client) Service {
	return &service{ai: ai}
}

func (s *service) Answer(ctx context.Context, req QuestionRequest) (Answer, error) {
	req.Question = strings.TrimSpace(req.Question)
	if err := schema.Request(&req); err != nil {
		return Answer{}, err
	}

	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = DefaultLanguage
	}

	text, err := prompt.Render(prompt.ChatAnswer, prompt.ChatData{
		Assistant: AssistantName,
		Language:  language,
		Question:  req.Question,
	})
	if err != nil {
		return Answer{}, err
	}

	resp, err := s.ai.Generate(ctx, &agent.Request{
		Flow:   "chat_answer",
		Prompt: text,
		Output: answerSchema,
	})
	if err != nil {
		return Answer{}, fmt.Errorf("answer question: %w", err)
	}

	var out Answer
	if err := resp.Decode(&out); err != nil {
		return Answer{}, fmt.Errorf("answer question: %w", err)
	}
	return out, nil
}
