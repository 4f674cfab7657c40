// Package httpadapter exposes the query engine over HTTP. All responses are
// JSON; traffic control (rate limit and backpressure) sits in front of every
// route, observability middleware in front of that.
package httpadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/campusworks/admissions-assistant/internal/core/domain"
	"github.com/campusworks/admissions-assistant/internal/core/ports"
	"github.com/campusworks/admissions-assistant/internal/observability/metrics"
)

type Config struct {
	Service        string
	RateLimitRPS   float64
	RateLimitBurst int
	MaxInFlight    int
	QueueWait      time.Duration
}

// ReloadFunc refreshes the knowledge base; the string is a reason recorded
// in the logs.
type ReloadFunc func(context.Context, string) error

type Router struct {
	engine  ports.QueryEngine
	reload  ReloadFunc
	metrics *metrics.AssistantMetrics
	logger  *slog.Logger
	cfg     Config
}

func NewRouter(engine ports.QueryEngine, reload ReloadFunc, m *metrics.AssistantMetrics, logger *slog.Logger, cfg Config) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Service == "" {
		cfg.Service = "admissions-assistant"
	}
	return &Router{
		engine:  engine,
		reload:  reload,
		metrics: m,
		logger:  logger,
		cfg:     cfg,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/query", rt.query)
	mux.HandleFunc("/v1/sessions/", rt.clearSession)
	mux.HandleFunc("/v1/stats", rt.stats)
	mux.HandleFunc("/v1/knowledge/reload", rt.reloadKnowledge)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.cfg.MaxInFlight > 0 {
		handler = backpressureMiddleware(handler, rt.cfg.MaxInFlight, rt.cfg.QueueWait)
	}
	if rt.cfg.RateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.cfg.RateLimitRPS, rt.cfg.RateLimitBurst)
	}
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.cfg.Service, handler)
	}
	handler = accessLogMiddleware(rt.logger, handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) query(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req domain.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	result, err := rt.engine.Query(r.Context(), req)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordQuery(
			rt.cfg.Service,
			string(result.Performance.SearchType),
			result.Performance.GenerationMethod,
			result.Performance.CacheHit,
			result.Performance.Error,
			result.Performance.ResultCount,
			result.Confidence,
			time.Duration(result.Performance.TotalTimeMs*float64(time.Millisecond)),
		)
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) clearSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	sessionID := strings.TrimPrefix(r.URL.Path, "/v1/sessions/")
	if sessionID == "" || strings.Contains(sessionID, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "session id is required"})
		return
	}

	rt.engine.ClearMemory(sessionID)
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, rt.engine.Stats())
}

// reloadKnowledge acknowledges immediately and rebuilds in the background;
// a rebuild can take a while against a slow embedding backend and the
// caller only needs to know the request was accepted.
func (rt *Router) reloadKnowledge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if rt.reload == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "knowledge reload is not configured"})
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Reason == "" {
		req.Reason = "manual reload"
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if err := rt.reload(ctx, req.Reason); err != nil {
			rt.logger.Error("knowledge reload failed", "reason", req.Reason, "error", err)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "reload scheduled"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
