// Package llm abstracts the language-model backends used by the planning
// and synthesis stages. Clients are constructed per request from
// caller-supplied credentials and closed when the run ends.
package llm

import (
	"context"
	"fmt"
	"strings"
)

// Client is the surface the agents need: one-shot generation for planning
// and chunked generation for report synthesis.
type Client interface {
	// Generate returns the full text for a prompt.
	Generate(ctx context.Context, prompt string) (string, error)
	// GenerateStream returns a finite, ordered, non-restartable stream of
	// text chunks for a prompt.
	GenerateStream(ctx context.Context, prompt string) (Stream, error)
	// Close releases the underlying connection. Safe to call once.
	Close() error
}

// Stream yields report text chunk by chunk. Next returns io.EOF when the
// stream is exhausted; any other error ends the stream permanently.
type Stream interface {
	Next() (string, error)
}

// New constructs a Client for the named provider. Model and API key come
// from the request, never from process state.
func New(ctx context.Context, provider, apiKey, model string) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "google", "gemini":
		if strings.TrimSpace(apiKey) == "" {
			return nil, fmt.Errorf("provider %q requires gemini_api_key", provider)
		}
		return NewGemini(ctx, apiKey, model)
	case "mock":
		return &Mock{}, nil
	default:
		return nil, fmt.Errorf("unsupported provider: %q", provider)
	}
}
