package chat

import "anemo-backend/internal/schema"

const (
	AssistantName   = "ChatbotAI"
	DefaultLanguage = "English"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one entry of the client-held chat transcript.
type ChatMessage struct {
	Role    Role   `json:"role" validate:"oneof=user assistant"`
	Content string `json:"content"`
}

// QuestionRequest asks a single question. History is accepted for client
// convenience but only the latest question is sent to the model.
type QuestionRequest struct {
	Question string        `json:"question" validate:"required"`
	Language string        `json:"language,omitempty"`
	History  []ChatMessage `json:"history,omitempty" validate:"omitempty,dive"`
}

type Answer struct {
	Answer string `json:"answer" validate:"required"`
}

var answerSchema = schema.Object(map[string]schema.Definition{
	"answer": schema.String("The answer to the question about anemia."),
}, "answer")
