package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sinema-chat/sinema/src/upstream"
)

// ChatResponse is the success payload of a POST.
type ChatResponse struct {
	Reply  string     `json:"reply"`
	Memory MemoryMeta `json:"memory"`
}

// MemoryMeta is the lightweight record metadata returned with each reply.
type MemoryMeta struct {
	LastProject        string `json:"lastProject"`
	ConversationLength int    `json:"conversationLength"`
	UserID             string `json:"userId"`
}

// errorBody is the error response envelope. Detail is only populated in
// development mode.
type errorBody struct {
	Error   string       `json:"error"`
	Detail  string       `json:"detail,omitempty"`
	Example *ChatRequest `json:"example,omitempty"`
	Allowed []string     `json:"allowed,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusForUpstreamError maps an upstream failure onto the response status
// and user-facing message. Storage failures never reach this path.
func statusForUpstreamError(err error) (int, string) {
	if errors.Is(err, upstream.ErrNoAPIKey) {
		return http.StatusInternalServerError, "server configuration error: upstream API key is not set"
	}
	if errors.Is(err, upstream.ErrTimeout) {
		return http.StatusRequestTimeout, "the movie brain took too long to answer, try again"
	}

	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.IsAuthError():
			return http.StatusUnauthorized, "upstream rejected our credentials, check the configured API key"
		case apiErr.IsRateLimit():
			return http.StatusTooManyRequests, "upstream rate limit reached, slow down and retry"
		case apiErr.IsTimeout():
			return http.StatusRequestTimeout, "the movie brain took too long to answer, try again"
		}
	}

	return http.StatusInternalServerError, "server error while talking to the movie brain"
}
