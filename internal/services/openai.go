package services

import (
	"context"

	"github.com/sashabaranov/go-openai"

	"chat-relay/internal/models"
)

// OpenAIService talks to the OpenAI chat completions API, or to any
// OpenAI-compatible endpoint when a base URL is given.
type OpenAIService struct {
	client *openai.Client
	model  string
	store  bool
}

func NewOpenAIService(apiKey, baseURL, model string, store bool) *OpenAIService {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAIService{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		store:  store,
	}
}

// Complete issues a single chat completion and returns the first choice's
// content unmodified. Upstream errors are returned unwrapped.
func (s *OpenAIService) Complete(ctx context.Context, messages []models.ChatMessage) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:    s.model,
		Store:    s.store,
		Messages: toOpenAIMessages(messages),
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}

func toOpenAIMessages(messages []models.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case models.RoleSystem:
			role = openai.ChatMessageRoleSystem
		case models.RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return out
}
