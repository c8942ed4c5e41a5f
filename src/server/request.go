package server

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DefaultUserID is used when the caller does not supply a user id.
const DefaultUserID = "default"

// ChatRequest is the strict shape of an inbound POST body. The loosely typed
// payload is coerced into it at the boundary before any core logic runs.
type ChatRequest struct {
	Prompt  string `json:"prompt" validate:"required"`
	UserID  string `json:"userId" validate:"omitempty,max=64,excludesall=0x2F0x5C"`
	Project string `json:"project" validate:"omitempty,max=128"`
}

// exampleRequest is included in 400 responses so callers can self-correct.
var exampleRequest = ChatRequest{
	Prompt: "What should I watch tonight?",
	UserID: "wanjiku",
}

var requestValidate = validator.New()

// decodeChatRequest parses and validates the request body. It trims the
// prompt and fills the default user id; any failure is a client input error.
func decodeChatRequest(body io.Reader) (*ChatRequest, error) {
	var req ChatRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}

	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		return nil, fmt.Errorf("prompt is required and must be a non-empty string")
	}
	if req.UserID == "" {
		req.UserID = DefaultUserID
	}

	if err := requestValidate.Struct(&req); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			return nil, fmt.Errorf("invalid field %q", verrs[0].Field())
		}
		return nil, err
	}
	return &req, nil
}
