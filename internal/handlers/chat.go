package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"chat-relay/internal/config"
	"chat-relay/internal/middleware"
	"chat-relay/internal/models"
	"chat-relay/internal/services"
)

type ChatHandler struct {
	completer      services.Completer
	systemPrompt   string
	responseFormat string
}

func NewChatHandler(completer services.Completer, systemPrompt, responseFormat string) *ChatHandler {
	return &ChatHandler{
		completer:      completer,
		systemPrompt:   systemPrompt,
		responseFormat: responseFormat,
	}
}

// Chat forwards the caller's message to the completion API and relays the
// first choice back. Only a missing message is a 400; every other failure is a
// 500 carrying the underlying error text.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	req, err := decodeChatRequest(r.Body)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp(err.Error()))
		return
	}

	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("Message is required"))
		return
	}

	conversation := services.BuildConversation(h.systemPrompt, req.Message)

	reply, err := h.completer.Complete(r.Context(), conversation)
	if err != nil {
		log.Printf("chat: completion failed (request_id=%s): %v", middleware.GetRequestID(r.Context()), err)
		writeJSON(w, http.StatusInternalServerError, errorResp(errorText(err)))
		return
	}

	if h.responseFormat == config.FormatText {
		writeJSON(w, http.StatusOK, reply)
		return
	}
	writeJSON(w, http.StatusOK, models.ChatResponse{Reply: reply})
}

// decodeChatRequest accepts exactly one JSON object and nothing after it.
func decodeChatRequest(body io.Reader) (*models.ChatRequest, error) {
	dec := json.NewDecoder(body)

	var req *models.ChatRequest
	if err := dec.Decode(&req); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, errors.New("request body must be a JSON object")
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			err = errors.New("request body must contain a single JSON object")
		}
		return nil, err
	}
	return req, nil
}
