// Package llm wraps the chat completion providers used to narrate weekly
// reports.
package llm

import "context"

// Message is one chat turn; Role is "system", "user" or "assistant".
type Message struct {
	Role    string
	Content string
}

// Response carries the completion text and the provider's token usage.
type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

type Client interface {
	Generate(ctx context.Context, messages []Message) (Response, error)
}
