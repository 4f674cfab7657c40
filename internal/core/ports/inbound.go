package ports

import (
	"context"

	"github.com/campusworks/admissions-assistant/internal/core/domain"
)

// QueryEngine is the inbound contract consumed by the chat and voice
// controllers that own transport and audio plumbing.
type QueryEngine interface {
	// Initialize verifies the embedding backend is reachable. Idempotent.
	Initialize(ctx context.Context) error

	// LoadKnowledgeBase builds the document store and both indices from
	// structured records plus optional free-form guide texts. May be called
	// again to rebuild; in-flight queries finish on the previous snapshot.
	LoadKnowledgeBase(ctx context.Context, records []domain.DepartmentRecord, guides []domain.GuideText) error

	Query(ctx context.Context, req domain.QueryRequest) (*domain.QueryResult, error)
	ClearMemory(sessionID string)
	Stats() domain.EngineStats
}
