package services

import (
	"context"
	"errors"
	"fmt"

	"chat-relay/internal/config"
	"chat-relay/internal/models"
)

// ErrNoChoices is returned when the upstream API answers without any
// candidate reply.
var ErrNoChoices = errors.New("no choices in completion response")

// Completer sends a role-tagged conversation to a completion API and returns
// the text of the first choice.
type Completer interface {
	Complete(ctx context.Context, messages []models.ChatMessage) (string, error)
}

// NewCompleter builds the provider named by cfg.Provider. The returned close
// function releases the underlying client and is never nil.
func NewCompleter(ctx context.Context, cfg *config.Config) (Completer, func(), error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIService(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.OpenAIStore), func() {}, nil
	case config.ProviderGemini:
		svc, err := NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, func() {}, err
		}
		return svc, svc.Close, nil
	default:
		return nil, func() {}, fmt.Errorf("unknown completion provider %q", cfg.Provider)
	}
}

// BuildConversation returns the turns sent upstream for one chat request: an
// optional system turn followed by the user's message.
func BuildConversation(systemPrompt, message string) []models.ChatMessage {
	messages := make([]models.ChatMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, models.ChatMessage{Role: models.RoleSystem, Content: systemPrompt})
	}
	return append(messages, models.ChatMessage{Role: models.RoleUser, Content: message})
}
