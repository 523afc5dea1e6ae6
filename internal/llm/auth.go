package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ModelsURL derives the models endpoint from a chat completions URL.
func ModelsURL(chatURL string) string {
	if chatURL == "" {
		chatURL = DefaultOpenAIURL
	}
	return strings.TrimSuffix(chatURL, "/chat/completions") + "/models"
}

// Authenticate verifies the API key by listing models.
func Authenticate(ctx context.Context, apiKey, chatURL string) error {
	if apiKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is not set")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ModelsURL(chatURL), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach OpenAI: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("authentication failed: received status code %d", resp.StatusCode)
	}
	return nil
}
