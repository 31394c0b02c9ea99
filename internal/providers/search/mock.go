package search

import (
	"context"

	"github.com/example/deep-research/internal/models"
)

// Mock returns canned results. Used by tests and keyless development.
type Mock struct {
	Results []models.SearchResult
	Err     error
}

func (m *Mock) Name() string { return "mock" }

func (m *Mock) Search(ctx context.Context, query string, maxResults int) ([]models.SearchResult, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Results != nil {
		if len(m.Results) > maxResults {
			return m.Results[:maxResults], nil
		}
		return m.Results, nil
	}
	return []models.SearchResult{{
		Title:   "Mock result for " + query,
		Content: "Placeholder content returned by the mock search provider.",
	}}, nil
}
