package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/example/deep-research/internal/models"
	"github.com/example/deep-research/internal/providers/llm"
)

// URLNotAvailable is the presentation-time sentinel for results without a
// URL.
const URLNotAvailable = "Not Available"

// Synthesizer asks the task model to write the report from the plan and
// the aggregated search outcomes, streaming it chunk by chunk.
type Synthesizer struct {
	Client llm.Client
}

// Synthesize starts report generation and returns the chunk stream. The
// stream is finite, ordered, and not restartable. Errors, including stream
// construction errors, surface through ChunkStream.Next so the caller can
// turn them into a terminal failure frame without retracting streamed text.
func (s *Synthesizer) Synthesize(ctx context.Context, topic string, plan *models.ResearchPlan, outcomes []models.SubTaskOutcome) *ChunkStream {
	stream, err := s.Client.GenerateStream(ctx, reportPrompt(topic, plan, outcomes))
	return &ChunkStream{stream: stream, err: err}
}

// ChunkStream yields report chunks. Next returns io.EOF after the final
// chunk; any other error is a terminal synthesis failure (classify with
// llm.IsResourceExhausted).
type ChunkStream struct {
	stream llm.Stream
	err    error
}

func (c *ChunkStream) Next() (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return c.stream.Next()
}

func reportPrompt(topic string, plan *models.ResearchPlan, outcomes []models.SubTaskOutcome) string {
	planJSON, _ := json.MarshalIndent(plan, "", "  ")
	return fmt.Sprintf(`Generate a detailed research report on %s in markdown format using the following data:
## Research Plan
%s
## Search Results
%s

Structure the report as follows:
- **Abstract**: Summary (100-150 words)
- **Introduction**: Background & objective (150-200 words)
- **Research Findings**: Each subtask as a section with synthesis (200-300 words each)
- **Discussion**: Trends, comparison, limitations (200-250 words)
- **Conclusion**: Key insights & future directions (150-200 words)
- **References**: Numbered list [Title, URL: <url>]`, topic, planJSON, outcomeSummary(outcomes))
}

// outcomeSummary renders the per-sub-task narrative embedded in the report
// prompt. Empty result sets become a literal "No results found." line.
func outcomeSummary(outcomes []models.SubTaskOutcome) string {
	blocks := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		var b strings.Builder
		fmt.Fprintf(&b, "Subtask: %s\n", o.SubTask.Description)
		fmt.Fprintf(&b, "Search Query: %s\n", o.SubTask.SearchQuery)
		b.WriteString("Results:\n")
		if len(o.Results) == 0 {
			b.WriteString("No results found.")
		} else {
			lines := make([]string, 0, len(o.Results))
			for _, r := range o.Results {
				url := r.URL
				if url == "" {
					url = URLNotAvailable
				}
				lines = append(lines, fmt.Sprintf("- %s: %s [URL: %s]", r.Title, r.Content, url))
			}
			b.WriteString(strings.Join(lines, "\n"))
		}
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n")
}
