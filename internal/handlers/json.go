package handlers

import (
	"encoding/json"
	"net/http"

	"chat-relay/internal/models"
)

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(message string) models.ErrorResponse {
	return models.ErrorResponse{Error: message}
}

// errorText never yields an empty description.
func errorText(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return http.StatusText(http.StatusInternalServerError)
}
