// Package search adapts external web-search backends. Adapters are thin
// pass-throughs: no retry, no caching. Failures are returned to the caller,
// which records them as data rather than aborting the run.
package search

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/example/deep-research/internal/models"
)

// Provider executes one query and returns at most maxResults records.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, maxResults int) ([]models.SearchResult, error)
}

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 15 * time.Second}
}

// New constructs the provider named by the request. The Tavily key is
// per-request; DuckDuckGo needs no credentials.
func New(provider, tavilyAPIKey string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "tavily":
		if strings.TrimSpace(tavilyAPIKey) == "" {
			return nil, fmt.Errorf("search provider %q requires tavily_api_key", provider)
		}
		return NewTavily(tavilyAPIKey), nil
	case "duckduckgo":
		return NewDuckDuckGo(), nil
	case "mock":
		return &Mock{}, nil
	default:
		return nil, fmt.Errorf("unsupported search provider: %q", provider)
	}
}
