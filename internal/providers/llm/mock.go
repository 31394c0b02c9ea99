package llm

import (
	"context"
	"io"
	"strings"
)

// Mock is used when no real provider is configured (provider "mock").
// It returns a canned plan for planning prompts and canned chunks otherwise.
type Mock struct{}

func (m *Mock) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.Contains(prompt, "research plan") {
		return `{"plan":"Mock plan","subtasks":[` +
			`{"subtask":"Mock subtask 1","search_query":"mock query 1"},` +
			`{"subtask":"Mock subtask 2","search_query":"mock query 2"}]}`, nil
	}
	return "mock response", nil
}

func (m *Mock) GenerateStream(ctx context.Context, prompt string) (Stream, error) {
	return NewStaticStream("# Mock Report\n", "Generated without a model backend.\n"), nil
}

func (m *Mock) Close() error { return nil }

// StaticStream replays a fixed chunk sequence. Useful for tests and the
// mock provider.
type StaticStream struct {
	chunks []string
	pos    int
	// Err, when set, is returned after the chunks are exhausted instead
	// of io.EOF.
	Err error
}

func NewStaticStream(chunks ...string) *StaticStream {
	return &StaticStream{chunks: chunks}
}

func (s *StaticStream) Next() (string, error) {
	if s.pos >= len(s.chunks) {
		if s.Err != nil {
			return "", s.Err
		}
		return "", io.EOF
	}
	c := s.chunks[s.pos]
	s.pos++
	return c, nil
}
