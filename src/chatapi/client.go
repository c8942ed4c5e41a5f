package chatapi

import "context"

// ChatClient is the outbound chat completion capability. Implemented by the
// upstream HTTP client; test doubles implement it to observe or fail calls.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error)
}

// ReplyText extracts the generated text of the first choice, or "" when the
// response carries no choices.
func ReplyText(resp *ChatCompletionResponse) string {
	if resp == nil || len(resp.Choices) == 0 {
		return ""
	}
	return resp.Choices[0].Message.Content
}
