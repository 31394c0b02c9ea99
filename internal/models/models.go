package models

// Status tracks a pipeline run through its stages.
type Status string

const (
	StatusPlanning     Status = "PLANNING"
	StatusSearching    Status = "SEARCHING"
	StatusSynthesizing Status = "SYNTHESIZING"
	StatusDone         Status = "DONE"
	StatusFailed       Status = "FAILED"
)

// ResearchRequest is the inbound wire schema for one research run.
// Credentials are supplied per request; nothing outlives the run.
type ResearchRequest struct {
	Query          string `json:"query"`
	Provider       string `json:"provider,omitempty"`
	ThinkingModel  string `json:"thinking_model,omitempty"`
	TaskModel      string `json:"task_model,omitempty"`
	SearchProvider string `json:"search_provider,omitempty"`
	MaxResults     int    `json:"max_results,omitempty"`
	GeminiAPIKey   string `json:"gemini_api_key,omitempty"`
	TavilyAPIKey   string `json:"tavily_api_key,omitempty"`
}

// SubTask is one decomposed unit of a research plan. The JSON field names
// are part of the planning model's output contract.
type SubTask struct {
	Description string `json:"subtask"`
	SearchQuery string `json:"search_query"`
}

// ResearchPlan is the planning stage output: a summary plus ordered sub-tasks.
type ResearchPlan struct {
	Plan     string    `json:"plan"`
	SubTasks []SubTask `json:"subtasks"`
}

// Valid reports whether the plan satisfies the post-generation invariant:
// at least one sub-task, every sub-task with a non-empty search query.
func (p *ResearchPlan) Valid() bool {
	if p == nil || len(p.SubTasks) == 0 {
		return false
	}
	for _, st := range p.SubTasks {
		if st.SearchQuery == "" {
			return false
		}
	}
	return true
}

// FallbackPlan is substituted wholesale when plan generation returns
// malformed or invalid output. Its single sub-task searches the topic itself.
func FallbackPlan(topic string) *ResearchPlan {
	return &ResearchPlan{
		Plan: "Default plan for " + topic,
		SubTasks: []SubTask{
			{Description: "Default subtask", SearchQuery: topic},
		},
	}
}

// SearchResult is one record returned by a search provider. URL may be
// empty; the sentinel "Not Available" is applied at presentation time only.
type SearchResult struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url,omitempty"`
}

// SubTaskOutcome pairs a sub-task with its results. A failed search is
// represented as an empty result slice, never a missing outcome.
type SubTaskOutcome struct {
	SubTask SubTask        `json:"subtask"`
	Results []SearchResult `json:"results"`
}
