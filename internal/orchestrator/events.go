package orchestrator

import "github.com/example/deep-research/internal/models"

// EventType tags the variants of the pipeline's outbound event stream.
type EventType string

const (
	// EventPlan carries the settled plan (real or fallback).
	EventPlan EventType = "plan"
	// EventPlanFailed reports a fatal planning failure; the run ends with
	// no plan-derived events.
	EventPlanFailed EventType = "plan_failed"
	// EventSearchResults carries one sub-task's results.
	EventSearchResults EventType = "search_results"
	// EventSearchError reports one sub-task's search failure; the run
	// continues.
	EventSearchError EventType = "search_error"
	// EventReportChunk carries one fragment of the streamed report.
	EventReportChunk EventType = "report_chunk"
	// EventReportFailed terminates the report stream. Text already
	// streamed stands.
	EventReportFailed EventType = "report_failed"
)

// Event is the unit crossing the pipeline boundary. Exactly the fields for
// its type are set.
type Event struct {
	Type    EventType
	Plan    *models.ResearchPlan
	SubTask models.SubTask
	Results []models.SearchResult
	Chunk   string
	Err     string
	// Quota distinguishes rate-limit report failures from other ones.
	Quota bool
}
