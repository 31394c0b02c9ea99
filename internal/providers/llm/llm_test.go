package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestIsResourceExhausted(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"googleapi 429", &googleapi.Error{Code: http.StatusTooManyRequests}, true},
		{"googleapi 500", &googleapi.Error{Code: http.StatusInternalServerError}, false},
		{"grpc resource exhausted", status.Error(codes.ResourceExhausted, "quota"), true},
		{"grpc unavailable", status.Error(codes.Unavailable, "down"), false},
		{"wrapped googleapi 429", fmt.Errorf("call failed: %w", &googleapi.Error{Code: 429}), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsResourceExhausted(tt.err))
		})
	}
}

func TestNewProviderSelection(t *testing.T) {
	ctx := context.Background()

	_, err := New(ctx, "google", "", "gemini-1.5-flash")
	require.ErrorContains(t, err, "gemini_api_key")

	c, err := New(ctx, "mock", "", "")
	require.NoError(t, err)
	require.NoError(t, c.Close())

	_, err = New(ctx, "openai", "key", "gpt")
	require.ErrorContains(t, err, "unsupported provider")
}

func TestStaticStream(t *testing.T) {
	s := NewStaticStream("a", "b")

	c, err := s.Next()
	require.NoError(t, err)
	require.Equal(t, "a", c)
	c, err = s.Next()
	require.NoError(t, err)
	require.Equal(t, "b", c)
	_, err = s.Next()
	require.Equal(t, io.EOF, err)
}

func TestStaticStreamTerminalError(t *testing.T) {
	boom := errors.New("torn down")
	s := NewStaticStream("a")
	s.Err = boom

	_, err := s.Next()
	require.NoError(t, err)
	_, err = s.Next()
	require.ErrorIs(t, err, boom)
}

func TestMockPlanningResponse(t *testing.T) {
	m := &Mock{}
	out, err := m.Generate(context.Background(), "Return a structured research plan for the topic ...")
	require.NoError(t, err)
	require.Contains(t, out, `"subtasks"`)
}
