package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/example/deep-research/internal/models"
	"github.com/example/deep-research/internal/providers/llm"
	"github.com/example/deep-research/internal/retry"
)

// Planner asks the thinking model to decompose a topic into a research
// plan. Malformed or invalid model output degrades to the fallback plan;
// quota errors are retried per the configured policy before becoming fatal.
type Planner struct {
	Client llm.Client
	Retry  retry.Policy
	Logger *zap.Logger
}

// Generate produces a plan for topic. The returned plan always satisfies
// the validity invariant (>=1 sub-task, non-empty search queries). An error
// is returned only for non-degradable model failures, which end the run.
func (p *Planner) Generate(ctx context.Context, topic string) (*models.ResearchPlan, error) {
	pol := p.Retry
	if pol.Retryable == nil {
		pol.Retryable = llm.IsResourceExhausted
	}

	var raw string
	err := pol.Do(ctx, func() error {
		var genErr error
		raw, genErr = p.Client.Generate(ctx, planPrompt(topic))
		return genErr
	})
	if err != nil {
		return nil, fmt.Errorf("plan generation: %w", err)
	}

	plan := parsePlan(raw)
	if !plan.Valid() {
		p.logger().Debug("plan output invalid, substituting fallback",
			zap.String("topic", topic), zap.Int("raw_len", len(raw)))
		return models.FallbackPlan(topic), nil
	}
	return plan, nil
}

func (p *Planner) logger() *zap.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return zap.NewNop()
}

func planPrompt(topic string) string {
	return fmt.Sprintf(`Return a structured research plan for the topic: %q as valid JSON only, with no additional text, markdown, or code fences. Example:
{
  "plan": "Overall research plan description",
  "subtasks": [
    {
      "subtask": "Description of subtask 1",
      "search_query": "Specific search query for subtask 1"
    },
    {
      "subtask": "Description of subtask 2",
      "search_query": "Specific search query for subtask 2"
    }
  ]
}
Ensure at least two subtasks, each with a non-empty search_query relevant to the topic.`, topic)
}

// parsePlan decodes the model's raw output. It tolerates code fences and
// surrounding prose; anything unparseable yields an invalid (empty) plan so
// the caller substitutes the fallback.
func parsePlan(raw string) *models.ResearchPlan {
	text := normalizeJSONText(raw)
	var plan models.ResearchPlan
	if err := json.Unmarshal([]byte(text), &plan); err != nil {
		if obj := extractJSONObject(text); obj != "" {
			if err2 := json.Unmarshal([]byte(obj), &plan); err2 != nil {
				return &models.ResearchPlan{}
			}
			return &plan
		}
		return &models.ResearchPlan{}
	}
	return &plan
}

func normalizeJSONText(s string) string {
	t := strings.TrimSpace(s)
	if strings.HasPrefix(t, "```") {
		t = strings.TrimPrefix(t, "```")
		if idx := strings.IndexByte(t, '\n'); idx != -1 {
			t = t[idx+1:]
		}
		if j := strings.LastIndex(t, "```"); j != -1 {
			t = t[:j]
		}
		t = strings.TrimSpace(t)
	}
	return t
}

// extractJSONObject returns the first balanced top-level {...} in s. Brace
// counting ignores string contents, which is good enough for model output
// that merely wraps JSON in prose.
func extractJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return ""
	}
	depth := 0
	inString := false
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '"':
			if i == 0 || s[i-1] != '\\' {
				inString = !inString
			}
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
	}
	return ""
}
