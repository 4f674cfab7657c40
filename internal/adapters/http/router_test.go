package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"encoding/json"

	"github.com/campusworks/admissions-assistant/internal/core/domain"
)

type engineFake struct {
	result  *domain.QueryResult
	err     error
	cleared []string
	stats   domain.EngineStats
}

func (f *engineFake) Initialize(context.Context) error { return nil }

func (f *engineFake) LoadKnowledgeBase(context.Context, []domain.DepartmentRecord, []domain.GuideText) error {
	return nil
}

func (f *engineFake) Query(_ context.Context, req domain.QueryRequest) (*domain.QueryResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *engineFake) ClearMemory(sessionID string) { f.cleared = append(f.cleared, sessionID) }

func (f *engineFake) Stats() domain.EngineStats { return f.stats }

func newTestRouter(engine *engineFake, reload ReloadFunc, cfg Config) http.Handler {
	return NewRouter(engine, reload, nil, slog.New(slog.DiscardHandler), cfg).Handler()
}

func TestQueryEndpoint(t *testing.T) {
	engine := &engineFake{result: &domain.QueryResult{
		Query:      "dentistry fees",
		Response:   "Tuition fees:\n• Dentistry: 10,000,000 IQD",
		Confidence: 0.8,
		Performance: domain.Performance{
			GenerationMethod: domain.GenerationFallback,
			SearchType:       domain.SearchHybrid,
			ResultCount:      3,
		},
	}}
	handler := newTestRouter(engine, nil, Config{})

	req := httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader(`{"text":"dentistry fees"}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", res.Code, res.Body.String())
	}
	if res.Header().Get(requestIDHeader) == "" {
		t.Errorf("request id header missing")
	}

	var result domain.QueryResult
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.Contains(result.Response, "10,000,000 IQD") {
		t.Errorf("response = %q", result.Response)
	}
	if result.Performance.SearchType != domain.SearchHybrid {
		t.Errorf("search type = %q", result.Performance.SearchType)
	}
}

func TestQueryEndpointErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", domain.WrapError(domain.ErrInvalidInput, "query", domain.ErrInvalidInput), http.StatusBadRequest},
		{"not initialized", domain.ErrNotInitialized, http.StatusServiceUnavailable},
		{"no knowledge", domain.ErrNoKnowledge, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := newTestRouter(&engineFake{err: tc.err}, nil, Config{})
			req := httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader(`{"text":"q"}`))
			res := httptest.NewRecorder()
			handler.ServeHTTP(res, req)
			if res.Code != tc.want {
				t.Fatalf("status = %d, want %d", res.Code, tc.want)
			}
		})
	}
}

func TestQueryEndpointRejectsBadJSON(t *testing.T) {
	handler := newTestRouter(&engineFake{}, nil, Config{})
	req := httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader(`{"text":`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", res.Code)
	}
}

func TestClearSessionEndpoint(t *testing.T) {
	engine := &engineFake{}
	handler := newTestRouter(engine, nil, Config{})

	req := httptest.NewRequest(http.MethodDelete, "/v1/sessions/abc-123", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", res.Code)
	}
	if len(engine.cleared) != 1 || engine.cleared[0] != "abc-123" {
		t.Errorf("cleared = %v", engine.cleared)
	}

	req = httptest.NewRequest(http.MethodDelete, "/v1/sessions/", nil)
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusBadRequest {
		t.Errorf("blank session id status = %d, want 400", res.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	engine := &engineFake{stats: domain.EngineStats{TotalQueries: 7, DocumentCount: 6}}
	handler := newTestRouter(engine, nil, Config{})

	req := httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("status = %d", res.Code)
	}

	var stats domain.EngineStats
	if err := json.NewDecoder(res.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.TotalQueries != 7 || stats.DocumentCount != 6 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestReloadEndpointSchedulesReload(t *testing.T) {
	reloaded := make(chan string, 1)
	handler := newTestRouter(&engineFake{}, func(_ context.Context, reason string) error {
		reloaded <- reason
		return nil
	}, Config{})

	req := httptest.NewRequest(http.MethodPost, "/v1/knowledge/reload", strings.NewReader(`{"reason":"records updated"}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", res.Code)
	}

	select {
	case reason := <-reloaded:
		if reason != "records updated" {
			t.Errorf("reason = %q", reason)
		}
	case <-time.After(time.Second):
		t.Fatalf("reload callback never invoked")
	}
}

func TestReloadEndpointWithoutReloader(t *testing.T) {
	handler := newTestRouter(&engineFake{}, nil, Config{})
	req := httptest.NewRequest(http.MethodPost, "/v1/knowledge/reload", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusNotImplemented {
		t.Fatalf("status = %d, want 501", res.Code)
	}
}

func TestHealthz(t *testing.T) {
	handler := newTestRouter(&engineFake{}, nil, Config{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("status = %d", res.Code)
	}
}
