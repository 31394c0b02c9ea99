package llm

import (
	"context"
	"io"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Gemini talks to the Google Generative Language API. One instance serves
// one research run; the caller owns Close.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &Gemini{client: c, model: c.GenerativeModel(model)}, nil
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	return firstText(resp), nil
}

func (g *Gemini) GenerateStream(ctx context.Context, prompt string) (Stream, error) {
	it := g.model.GenerateContentStream(ctx, genai.Text(prompt))
	return &geminiStream{it: it}, nil
}

func (g *Gemini) Close() error { return g.client.Close() }

type geminiStream struct {
	it *genai.GenerateContentResponseIterator
}

func (s *geminiStream) Next() (string, error) {
	resp, err := s.it.Next()
	if err == iterator.Done {
		return "", io.EOF
	}
	if err != nil {
		return "", err
	}
	return firstText(resp), nil
}

func firstText(r *genai.GenerateContentResponse) string {
	if r == nil {
		return ""
	}
	for _, c := range r.Candidates {
		if c.Content == nil {
			continue
		}
		for _, part := range c.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}
