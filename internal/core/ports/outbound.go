package ports

import (
	"context"

	"github.com/campusworks/admissions-assistant/internal/core/domain"
)

// EmbeddingProvider builds dense vectors for document and query text.
type EmbeddingProvider interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// CompletionProvider generates the final answer text from prompts.
type CompletionProvider interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// SemanticSearcher is the dense retrieval index.
type SemanticSearcher interface {
	Load(ctx context.Context, docs []domain.Document) error
	Search(ctx context.Context, query string, k int) ([]domain.SearchResult, error)
}

// KeywordSearcher is the lexical retrieval index.
type KeywordSearcher interface {
	Load(docs []domain.Document)
	Search(ctx context.Context, query string, k int) ([]domain.SearchResult, error)
}

// SessionMemory is the per-session conversation store: bounded exchange
// history with relevance recall plus a short-TTL response cache.
type SessionMemory interface {
	AddExchange(sessionID, userText, assistantText string, retrieved []domain.SearchResult)
	RelevantHistory(sessionID, query string, maxExchanges int) []domain.Exchange
	CachedResponse(sessionID, query string) (domain.CachedResponse, bool)
	Clear(sessionID string)
	Stats(sessionID string) domain.MemoryStats
	SessionCount() int
}

// RecordSource lists admissions source records from wherever the registrar
// keeps them.
type RecordSource interface {
	ListRecords(ctx context.Context) ([]domain.DepartmentRecord, error)
}

// ReloadQueue carries knowledge-base reload notifications between the
// registrar tooling and running assistants.
type ReloadQueue interface {
	PublishReloadRequested(ctx context.Context, reason string) error
	SubscribeReload(ctx context.Context, handler func(context.Context, string) error) error
	Close()
}
