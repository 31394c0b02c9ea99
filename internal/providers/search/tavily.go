package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/example/deep-research/internal/models"
)

const tavilyEndpoint = "https://api.tavily.com/search"

// Tavily calls the Tavily search API.
type Tavily struct {
	APIKey string
	// BaseURL overrides the production endpoint. Tests point it at a
	// local server.
	BaseURL string
	client  *http.Client
}

func NewTavily(apiKey string) *Tavily {
	return &Tavily{APIKey: apiKey, client: defaultHTTPClient()}
}

// NewTavilyWithClient uses the supplied HTTP client, e.g. to override the
// default timeout.
func NewTavilyWithClient(apiKey string, client *http.Client) *Tavily {
	return &Tavily{APIKey: apiKey, client: client}
}

func (t *Tavily) Name() string { return "tavily" }

func (t *Tavily) Search(ctx context.Context, query string, maxResults int) ([]models.SearchResult, error) {
	body := map[string]any{
		"api_key":     t.APIKey,
		"query":       query,
		"max_results": maxResults,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	endpoint := tavilyEndpoint
	if t.BaseURL != "" {
		endpoint = t.BaseURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily http %d", resp.StatusCode)
	}

	var decoded struct {
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}

	results := make([]models.SearchResult, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		results = append(results, models.SearchResult{Title: r.Title, Content: r.Content, URL: r.URL})
		if len(results) >= maxResults {
			break
		}
	}
	return results, nil
}
