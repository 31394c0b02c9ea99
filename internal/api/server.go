// Package api exposes the research pipeline over HTTP with a
// text/event-stream response.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/deep-research/internal/agents"
	"github.com/example/deep-research/internal/config"
	"github.com/example/deep-research/internal/models"
	"github.com/example/deep-research/internal/orchestrator"
	"github.com/example/deep-research/internal/providers/llm"
	"github.com/example/deep-research/internal/providers/search"
	"github.com/example/deep-research/internal/retry"
)

const maxResultsCeiling = 10

// Server holds process-wide configuration. All model and search handles
// are built per request from caller-supplied credentials.
type Server struct {
	cfg *config.Config
	log *zap.Logger

	// newLLM and newSearch are swapped by tests to inject fakes.
	newLLM    func(ctx context.Context, provider, apiKey, model string) (llm.Client, error)
	newSearch func(provider, tavilyAPIKey string) (search.Provider, error)
}

func NewServer(cfg *config.Config, log *zap.Logger) *Server {
	return &Server{
		cfg:       cfg,
		log:       log,
		newLLM:    llm.New,
		newSearch: search.New,
	}
}

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/api/sse", s.handleResearch)
}

// handleResearch runs one research pipeline and streams its events as SSE
// frames, one frame per event, in strict stage order.
func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req models.ResearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}
	s.applyDefaults(&req)

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	// The request context ends on client disconnect; the timeout caps the
	// whole stream. Either way the pipeline stops issuing further work.
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Server.RequestTimeout)
	defer cancel()

	thinking, err := s.newLLM(ctx, req.Provider, req.GeminiAPIKey, req.ThinkingModel)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer thinking.Close()

	task := thinking
	if req.TaskModel != req.ThinkingModel {
		task, err = s.newLLM(ctx, req.Provider, req.GeminiAPIKey, req.TaskModel)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer task.Close()
	}

	provider, err := s.newSearch(req.SearchProvider, req.TavilyAPIKey)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	requestID := uuid.NewString()
	log := s.log.With(zap.String("request_id", requestID), zap.String("topic", req.Query))

	pipe := &orchestrator.Pipeline{
		Planner: &agents.Planner{
			Client: thinking,
			Retry: retry.Policy{
				MaxAttempts: s.cfg.Planner.MaxAttempts,
				Delay:       s.cfg.Planner.RetryDelay,
			},
			Logger: log,
		},
		Synthesizer: &agents.Synthesizer{Client: task},
		Search:      provider,
		MaxResults:  req.MaxResults,
		StreamDelay: s.cfg.Pipeline.StreamDelay,
		Logger:      log,
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	start := time.Now()
	log.Info("research started",
		zap.String("provider", req.Provider),
		zap.String("search_provider", req.SearchProvider))

	for ev := range pipe.Run(ctx, req.Query) {
		fmt.Fprintf(w, "data: %s\n\n", encodeFrame(ev))
		flusher.Flush()
	}

	log.Info("research finished",
		zap.String("state", string(pipe.State())),
		zap.Duration("elapsed", time.Since(start)))
}

func (s *Server) applyDefaults(req *models.ResearchRequest) {
	d := s.cfg.Defaults
	if req.Provider == "" {
		req.Provider = d.Provider
	}
	if req.ThinkingModel == "" {
		req.ThinkingModel = d.ThinkingModel
	}
	if req.TaskModel == "" {
		req.TaskModel = d.TaskModel
	}
	if req.SearchProvider == "" {
		req.SearchProvider = d.SearchProvider
	}
	if req.MaxResults <= 0 {
		req.MaxResults = s.cfg.Search.MaxResults
	}
	if req.MaxResults > maxResultsCeiling {
		req.MaxResults = maxResultsCeiling
	}
}

// CORS is a permissive middleware for browser clients.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
