package api

import (
	"encoding/json"
	"fmt"

	"github.com/example/deep-research/internal/orchestrator"
)

// encodeFrame renders one pipeline event as the text payload of one SSE
// frame. The literal prefixes are part of the wire contract consumed by
// existing clients; do not reword them.
func encodeFrame(ev orchestrator.Event) string {
	switch ev.Type {
	case orchestrator.EventPlan:
		return "Planning: " + prettyJSON(ev.Plan)
	case orchestrator.EventPlanFailed:
		return "Error generating plan: " + ev.Err
	case orchestrator.EventSearchResults:
		return fmt.Sprintf("Search Results for '%s': %s", ev.SubTask.SearchQuery, prettyJSON(ev.Results))
	case orchestrator.EventSearchError:
		return fmt.Sprintf("Error searching '%s': %s", ev.SubTask.SearchQuery, ev.Err)
	case orchestrator.EventReportChunk:
		return ev.Chunk
	case orchestrator.EventReportFailed:
		if ev.Quota {
			return "Quota exceeded: " + ev.Err
		}
		return "Error generating report: " + ev.Err
	default:
		return ""
	}
}

func prettyJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
