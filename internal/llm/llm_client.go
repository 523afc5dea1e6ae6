package llm

import (
	"context"
	"errors"
)

var ErrEmptyResponse = errors.New("llm returned no content")

// LLMClient defines the interface for interacting with LLM services
type LLMClient interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Request is one chat completion.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	// JSON asks the model for a single JSON object.
	JSON        bool
	Temperature float64
	MaxTokens   int
}
