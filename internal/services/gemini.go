package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"chat-relay/internal/models"
)

type GeminiService struct {
	client    *genai.Client
	modelName string
}

func NewGeminiService(ctx context.Context, apiKey, modelName string) (*GeminiService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiService{
		client:    client,
		modelName: modelName,
	}, nil
}

func (s *GeminiService) Close() {
	s.client.Close()
}

// Complete replays the conversation as a Gemini chat session. Each call takes
// its own model handle; SystemInstruction is per conversation.
func (s *GeminiService) Complete(ctx context.Context, messages []models.ChatMessage) (string, error) {
	system, history, last, err := toGeminiContents(messages)
	if err != nil {
		return "", err
	}

	model := s.client.GenerativeModel(s.modelName)
	model.SystemInstruction = system

	cs := model.StartChat()
	cs.History = history

	resp, err := cs.SendMessage(ctx, last.Parts...)
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != genai.FinishReasonStop {
		log.Printf("WARNING: Gemini stopped due to %s", resp.Candidates[0].FinishReason)
	}

	return firstCandidateText(resp)
}

// toGeminiContents splits a conversation into the system instruction, the
// prior turns and the final user turn that is sent.
func toGeminiContents(messages []models.ChatMessage) (*genai.Content, []*genai.Content, *genai.Content, error) {
	var systemParts []genai.Part
	var turns []*genai.Content

	for _, m := range messages {
		switch m.Role {
		case models.RoleSystem:
			systemParts = append(systemParts, genai.Text(m.Content))
		case models.RoleAssistant:
			turns = append(turns, &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(m.Content)}})
		default:
			turns = append(turns, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(m.Content)}})
		}
	}

	if len(turns) == 0 || turns[len(turns)-1].Role != "user" {
		return nil, nil, nil, errors.New("conversation must end with a user turn")
	}

	var system *genai.Content
	if len(systemParts) > 0 {
		system = &genai.Content{Parts: systemParts}
	}

	return system, turns[:len(turns)-1], turns[len(turns)-1], nil
}

// firstCandidateText joins the text parts of the first candidate.
func firstCandidateText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrNoChoices
	}

	cand := resp.Candidates[0]
	if cand.Content == nil {
		return "", nil
	}

	var text strings.Builder
	for _, part := range cand.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	return text.String(), nil
}
