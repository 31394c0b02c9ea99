package agents

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/example/deep-research/internal/models"
	"github.com/example/deep-research/internal/providers/llm"
	"github.com/example/deep-research/internal/retry"
)

// fakeClient scripts the model's responses per call.
type fakeClient struct {
	generate func(call int, prompt string) (string, error)
	stream   func(prompt string) (llm.Stream, error)
	calls    int
}

func (f *fakeClient) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	return f.generate(f.calls, prompt)
}

func (f *fakeClient) GenerateStream(ctx context.Context, prompt string) (llm.Stream, error) {
	if f.stream == nil {
		return llm.NewStaticStream(), nil
	}
	return f.stream(prompt)
}

func (f *fakeClient) Close() error { return nil }

func quotaErr() error {
	return &googleapi.Error{Code: http.StatusTooManyRequests, Message: "quota exceeded"}
}

func zeroDelayRetry() retry.Policy {
	return retry.Policy{MaxAttempts: 3, Delay: 0}
}

const validPlanJSON = `{
  "plan": "Investigate the topic",
  "subtasks": [
    {"subtask": "History", "search_query": "topic history"},
    {"subtask": "State of the art", "search_query": "topic 2026 review"}
  ]
}`

func TestGenerateParsesValidPlan(t *testing.T) {
	client := &fakeClient{generate: func(int, string) (string, error) { return validPlanJSON, nil }}
	p := &Planner{Client: client, Retry: zeroDelayRetry()}

	plan, err := p.Generate(context.Background(), "topic")
	require.NoError(t, err)
	require.Equal(t, "Investigate the topic", plan.Plan)
	require.Len(t, plan.SubTasks, 2)
	require.Equal(t, "topic history", plan.SubTasks[0].SearchQuery)
	require.True(t, plan.Valid())
}

func TestGenerateAcceptsFencedJSON(t *testing.T) {
	client := &fakeClient{generate: func(int, string) (string, error) {
		return "```json\n" + validPlanJSON + "\n```", nil
	}}
	p := &Planner{Client: client, Retry: zeroDelayRetry()}

	plan, err := p.Generate(context.Background(), "topic")
	require.NoError(t, err)
	require.Len(t, plan.SubTasks, 2)
}

func TestGenerateFallsBackOnBadOutput(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "I cannot produce JSON, sorry."},
		{"truncated json", `{"plan": "p", "subtasks": [{"subtask":`},
		{"empty subtasks", `{"plan": "p", "subtasks": []}`},
		{"missing search_query", `{"plan": "p", "subtasks": [{"subtask": "only a description"}]}`},
		{"empty search_query", `{"plan": "p", "subtasks": [{"subtask": "d", "search_query": ""}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{generate: func(int, string) (string, error) { return tt.raw, nil }}
			p := &Planner{Client: client, Retry: zeroDelayRetry()}

			plan, err := p.Generate(context.Background(), "quantum sensing")
			require.NoError(t, err)
			require.Equal(t, models.FallbackPlan("quantum sensing"), plan)
		})
	}
}

func TestGenerateRetriesQuotaThenSucceeds(t *testing.T) {
	client := &fakeClient{generate: func(call int, _ string) (string, error) {
		if call < 3 {
			return "", quotaErr()
		}
		return validPlanJSON, nil
	}}
	p := &Planner{Client: client, Retry: zeroDelayRetry()}

	plan, err := p.Generate(context.Background(), "topic")
	require.NoError(t, err)
	require.Equal(t, 3, client.calls)
	require.Len(t, plan.SubTasks, 2)
}

func TestGenerateQuotaExhaustionIsFatal(t *testing.T) {
	client := &fakeClient{generate: func(int, string) (string, error) { return "", quotaErr() }}
	p := &Planner{Client: client, Retry: zeroDelayRetry()}

	_, err := p.Generate(context.Background(), "topic")
	require.Error(t, err)
	require.Equal(t, 3, client.calls)
	require.True(t, llm.IsResourceExhausted(err))
}

func TestGenerateOtherErrorsNotRetried(t *testing.T) {
	boom := errors.New("invalid api key")
	client := &fakeClient{generate: func(int, string) (string, error) { return "", boom }}
	p := &Planner{Client: client, Retry: zeroDelayRetry()}

	_, err := p.Generate(context.Background(), "topic")
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, client.calls)
}

func TestPlanPromptPinsContract(t *testing.T) {
	prompt := planPrompt("solar sails")
	require.Contains(t, prompt, `"solar sails"`)
	require.Contains(t, prompt, "valid JSON only")
	require.Contains(t, prompt, "at least two subtasks")
	require.Contains(t, prompt, `"search_query"`)
}

func TestExtractJSONObject(t *testing.T) {
	got := extractJSONObject(`Here is your plan: {"plan":"p","subtasks":[{"subtask":"d","search_query":"q"}]} hope it helps`)
	require.Equal(t, `{"plan":"p","subtasks":[{"subtask":"d","search_query":"q"}]}`, got)

	require.Empty(t, extractJSONObject("no braces here"))
	require.Empty(t, extractJSONObject("{unbalanced"))
}
