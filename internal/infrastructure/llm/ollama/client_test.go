package ollama

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/campusworks/admissions-assistant/internal/core/domain"
	"github.com/campusworks/admissions-assistant/internal/infrastructure/resilience"
)

func testExecutor() *resilience.Executor {
	return resilience.NewExecutor(resilience.Policy{
		Attempts:   3,
		Backoff:    time.Millisecond,
		BackoffCap: time.Millisecond,
		Breaker:    false,
	}, slog.New(slog.DiscardHandler))
}

func TestCompleteSendsSystemPrompt(t *testing.T) {
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"response":" The grade is 79.5%. "}`))
	}))
	defer server.Close()

	completer := NewCompleter(New(server.URL, "gen-model", "embed-model", testExecutor()))
	answer, err := completer.Complete(context.Background(), "you are the assistant", "student question")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if answer != "The grade is 79.5%." {
		t.Errorf("answer = %q, want trimmed response", answer)
	}
	if payload["system"] != "you are the assistant" || payload["prompt"] != "student question" {
		t.Errorf("payload = %v", payload)
	}
	if payload["model"] != "gen-model" || payload["stream"] != false {
		t.Errorf("payload = %v", payload)
	}
}

func TestEmbedBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"embeddings":[[0.1,0.2],[0.3,0.4]]}`))
	}))
	defer server.Close()

	embedder := NewEmbedder(New(server.URL, "gen-model", "embed-model", testExecutor()))
	vectors, err := embedder.Embed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vectors) != 2 || len(vectors[0]) != 2 {
		t.Errorf("vectors = %v", vectors)
	}
}

func TestEmbedRetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "model loading", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"embeddings":[[1]]}`))
	}))
	defer server.Close()

	embedder := NewEmbedder(New(server.URL, "gen-model", "embed-model", testExecutor()))
	if _, err := embedder.EmbedQuery(context.Background(), "hello"); err != nil {
		t.Fatalf("EmbedQuery: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestEmbedExhaustedRetriesMarkedTemporary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	embedder := NewEmbedder(New(server.URL, "gen-model", "embed-model", testExecutor()))
	_, err := embedder.Embed(context.Background(), []string{"hello"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Errorf("error not marked temporary: %v", err)
	}
	if !strings.Contains(err.Error(), "model unavailable") {
		t.Errorf("response body missing from error: %v", err)
	}
}

func TestCompleteDoesNotRetryBadRequest(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "unknown model", http.StatusNotFound)
	}))
	defer server.Close()

	completer := NewCompleter(New(server.URL, "gen-model", "embed-model", testExecutor()))
	_, err := completer.Complete(context.Background(), "system", "user")
	if err == nil {
		t.Fatalf("expected error")
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		t.Errorf("non-retryable error marked temporary: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want no retries", calls.Load())
	}
}
