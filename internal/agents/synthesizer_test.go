package agents

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/deep-research/internal/models"
	"github.com/example/deep-research/internal/providers/llm"
)

func testOutcomes() []models.SubTaskOutcome {
	return []models.SubTaskOutcome{
		{
			SubTask: models.SubTask{Description: "History", SearchQuery: "topic history"},
			Results: []models.SearchResult{
				{Title: "A", Content: "alpha", URL: "https://a.example"},
				{Title: "B", Content: "beta"},
			},
		},
		{
			SubTask: models.SubTask{Description: "Future", SearchQuery: "topic future"},
			Results: []models.SearchResult{},
		},
	}
}

func TestOutcomeSummaryFormatsResults(t *testing.T) {
	summary := outcomeSummary(testOutcomes())

	require.Contains(t, summary, "Subtask: History")
	require.Contains(t, summary, "Search Query: topic history")
	require.Contains(t, summary, "- A: alpha [URL: https://a.example]")
	// Absent URL renders the presentation-time sentinel.
	require.Contains(t, summary, "- B: beta [URL: Not Available]")
	// Failed sub-task keeps its description but reports no results.
	require.Contains(t, summary, "Subtask: Future")
	require.Contains(t, summary, "No results found.")
}

func TestReportPromptEmbedsPlanAndStructure(t *testing.T) {
	plan := &models.ResearchPlan{
		Plan:     "Two angles",
		SubTasks: []models.SubTask{{Description: "History", SearchQuery: "topic history"}},
	}
	prompt := reportPrompt("fusion power", plan, testOutcomes())

	require.Contains(t, prompt, "research report on fusion power")
	require.Contains(t, prompt, `"plan": "Two angles"`)
	require.Contains(t, prompt, "## Research Plan")
	require.Contains(t, prompt, "## Search Results")
	for _, section := range []string{"Abstract", "Introduction", "Research Findings", "Discussion", "Conclusion", "References"} {
		require.Contains(t, prompt, section)
	}
}

func TestSynthesizeStreamsAllChunks(t *testing.T) {
	chunks := []string{"# Report\n", "First part. ", "Second part.", "\nDone."}
	client := &fakeClient{
		generate: func(int, string) (string, error) { return "", nil },
		stream: func(string) (llm.Stream, error) {
			return llm.NewStaticStream(chunks...), nil
		},
	}
	s := &Synthesizer{Client: client}

	stream := s.Synthesize(context.Background(), "t", models.FallbackPlan("t"), nil)
	var got []string
	for {
		c, err := stream.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, c)
	}
	// Concatenation in emission order is the complete report.
	require.Equal(t, strings.Join(chunks, ""), strings.Join(got, ""))
	require.Equal(t, chunks, got)
}

func TestSynthesizeSurfacesMidStreamFailure(t *testing.T) {
	boom := errors.New("stream torn down")
	client := &fakeClient{
		generate: func(int, string) (string, error) { return "", nil },
		stream: func(string) (llm.Stream, error) {
			st := llm.NewStaticStream("partial ")
			st.Err = boom
			return st, nil
		},
	}
	s := &Synthesizer{Client: client}

	stream := s.Synthesize(context.Background(), "t", models.FallbackPlan("t"), nil)
	c, err := stream.Next()
	require.NoError(t, err)
	require.Equal(t, "partial ", c)

	_, err = stream.Next()
	require.ErrorIs(t, err, boom)
}

func TestSynthesizeSurfacesConstructionFailure(t *testing.T) {
	boom := quotaErr()
	client := &fakeClient{
		generate: func(int, string) (string, error) { return "", nil },
		stream:   func(string) (llm.Stream, error) { return nil, boom },
	}
	s := &Synthesizer{Client: client}

	stream := s.Synthesize(context.Background(), "t", models.FallbackPlan("t"), nil)
	_, err := stream.Next()
	require.Error(t, err)
	require.True(t, llm.IsResourceExhausted(err))
}
