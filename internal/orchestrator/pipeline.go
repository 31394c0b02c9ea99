// Package orchestrator sequences the three research stages and emits a
// single ordered event stream per run.
package orchestrator

import (
	"context"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/deep-research/internal/agents"
	"github.com/example/deep-research/internal/models"
	"github.com/example/deep-research/internal/providers/llm"
	"github.com/example/deep-research/internal/providers/search"
)

// Pipeline runs one research request: Planning, then Searching, then
// Synthesizing. All collaborators are request-scoped; a Pipeline is used
// for exactly one run and shares no state with other runs.
type Pipeline struct {
	Planner     *agents.Planner
	Synthesizer *agents.Synthesizer
	Search      search.Provider
	MaxResults  int
	// StreamDelay is the pause after each emitted event, protecting the
	// consuming transport rather than the computation.
	StreamDelay time.Duration
	Logger      *zap.Logger

	mu    sync.Mutex
	state models.Status
}

// State returns the pipeline's current stage. After the event channel
// closes it is the final state of the run.
func (p *Pipeline) State() models.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Pipeline) setState(s models.Status) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// Run executes the pipeline and returns the event channel. Events arrive
// in strict stage order: the plan, then one event per sub-task in plan
// order, then report chunks in generation order. The channel closes when
// the run completes, fails, or ctx is cancelled. Cancellation stops all
// further outbound calls and emissions.
func (p *Pipeline) Run(ctx context.Context, topic string) <-chan Event {
	out := make(chan Event)
	go func() {
		defer close(out)
		p.run(ctx, topic, out)
	}()
	return out
}

func (p *Pipeline) run(ctx context.Context, topic string, out chan<- Event) {
	log := p.logger()

	p.setState(models.StatusPlanning)
	plan, err := p.Planner.Generate(ctx, topic)
	if err != nil {
		log.Error("planning failed", zap.String("topic", topic), zap.Error(err))
		p.setState(models.StatusFailed)
		p.emit(ctx, out, Event{Type: EventPlanFailed, Err: err.Error()})
		return
	}
	log.Info("plan ready", zap.String("topic", topic), zap.Int("subtasks", len(plan.SubTasks)))
	if !p.emit(ctx, out, Event{Type: EventPlan, Plan: plan}) {
		return
	}

	p.setState(models.StatusSearching)
	outcomes := make([]models.SubTaskOutcome, 0, len(plan.SubTasks))
	for _, st := range plan.SubTasks {
		if ctx.Err() != nil {
			return
		}
		results, err := p.Search.Search(ctx, st.SearchQuery, p.MaxResults)
		if err != nil {
			// A failed search is data, not a fatal fault: record an
			// empty outcome and keep going.
			log.Warn("search failed", zap.String("query", st.SearchQuery), zap.Error(err))
			outcomes = append(outcomes, models.SubTaskOutcome{SubTask: st, Results: []models.SearchResult{}})
			if !p.emit(ctx, out, Event{Type: EventSearchError, SubTask: st, Err: err.Error()}) {
				return
			}
			continue
		}
		outcomes = append(outcomes, models.SubTaskOutcome{SubTask: st, Results: results})
		if !p.emit(ctx, out, Event{Type: EventSearchResults, SubTask: st, Results: results}) {
			return
		}
	}

	p.setState(models.StatusSynthesizing)
	stream := p.Synthesizer.Synthesize(ctx, topic, plan, outcomes)
	for {
		chunk, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			quota := llm.IsResourceExhausted(err)
			log.Error("report generation failed", zap.Bool("quota", quota), zap.Error(err))
			p.setState(models.StatusFailed)
			p.emit(ctx, out, Event{Type: EventReportFailed, Err: err.Error(), Quota: quota})
			return
		}
		if !p.emit(ctx, out, Event{Type: EventReportChunk, Chunk: chunk}) {
			return
		}
	}

	p.setState(models.StatusDone)
	log.Info("pipeline done", zap.String("topic", topic))
}

// emit delivers ev and then applies the inter-emission pause. It returns
// false when ctx ends first, which aborts the run.
func (p *Pipeline) emit(ctx context.Context, out chan<- Event, ev Event) bool {
	select {
	case out <- ev:
	case <-ctx.Done():
		return false
	}
	if p.StreamDelay > 0 {
		select {
		case <-time.After(p.StreamDelay):
		case <-ctx.Done():
			return false
		}
	}
	return true
}

func (p *Pipeline) logger() *zap.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return zap.NewNop()
}
