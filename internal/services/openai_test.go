package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"

	"chat-relay/internal/models"
)

func newOpenAIStub(t *testing.T, status int, body string, got *openai.ChatCompletionRequest) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("unexpected Authorization header %q", auth)
		}
		if got != nil {
			if err := json.NewDecoder(r.Body).Decode(got); err != nil {
				t.Errorf("failed to decode upstream request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIService_Complete_ReturnsFirstChoice(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := newOpenAIStub(t, http.StatusOK, `{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"model": "gpt-4o",
		"choices": [
			{"index": 0, "message": {"role": "assistant", "content": "Hi there"}, "finish_reason": "stop"},
			{"index": 1, "message": {"role": "assistant", "content": "ignored"}, "finish_reason": "stop"}
		]
	}`, &got)

	svc := NewOpenAIService("sk-test", srv.URL+"/v1", "gpt-4o", true)

	reply, err := svc.Complete(context.Background(), BuildConversation(ContractPersona, "Hello"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if reply != "Hi there" {
		t.Fatalf("expected reply %q, got %q", "Hi there", reply)
	}

	if got.Model != "gpt-4o" {
		t.Errorf("expected model gpt-4o, got %q", got.Model)
	}
	if !got.Store {
		t.Errorf("expected store flag to be forwarded")
	}
	if len(got.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got.Messages))
	}
	if got.Messages[0].Role != openai.ChatMessageRoleSystem || got.Messages[0].Content != ContractPersona {
		t.Errorf("unexpected system turn: %+v", got.Messages[0])
	}
	if got.Messages[1].Role != openai.ChatMessageRoleUser || got.Messages[1].Content != "Hello" {
		t.Errorf("unexpected user turn: %+v", got.Messages[1])
	}
}

func TestOpenAIService_Complete_NoChoices(t *testing.T) {
	srv := newOpenAIStub(t, http.StatusOK, `{"id": "chatcmpl-2", "choices": []}`, nil)
	svc := NewOpenAIService("sk-test", srv.URL+"/v1", "gpt-4o", false)

	_, err := svc.Complete(context.Background(), BuildConversation("", "Hello"))
	if !errors.Is(err, ErrNoChoices) {
		t.Fatalf("expected ErrNoChoices, got %v", err)
	}
}

func TestOpenAIService_Complete_UpstreamError(t *testing.T) {
	srv := newOpenAIStub(t, http.StatusTooManyRequests,
		`{"error": {"message": "rate limit exceeded", "type": "requests", "code": "rate_limit_exceeded"}}`, nil)
	svc := NewOpenAIService("sk-test", srv.URL+"/v1", "gpt-4o", true)

	_, err := svc.Complete(context.Background(), BuildConversation("", "Hello"))
	if err == nil {
		t.Fatal("expected an error from a 429 response")
	}

	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *openai.APIError, got %T: %v", err, err)
	}
	if apiErr.HTTPStatusCode != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", apiErr.HTTPStatusCode)
	}
	if apiErr.Message != "rate limit exceeded" {
		t.Errorf("expected upstream message to be preserved, got %q", apiErr.Message)
	}
}

func TestToOpenAIMessages_MapsRoles(t *testing.T) {
	in := []models.ChatMessage{
		{Role: models.RoleSystem, Content: "s"},
		{Role: models.RoleUser, Content: "u"},
		{Role: models.RoleAssistant, Content: "a"},
	}

	out := toOpenAIMessages(in)
	want := []string{openai.ChatMessageRoleSystem, openai.ChatMessageRoleUser, openai.ChatMessageRoleAssistant}
	for i, m := range out {
		if m.Role != want[i] || m.Content != in[i].Content {
			t.Errorf("message %d: expected %s/%q, got %s/%q", i, want[i], in[i].Content, m.Role, m.Content)
		}
	}
}
