// Package semantic is the in-memory dense index: one embedding per document,
// parallel by position, searched by full-scan cosine similarity. Document
// counts stay in the hundreds, so a brute-force scan beats the operational
// cost of an approximate index.
package semantic

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/campusworks/admissions-assistant/internal/core/domain"
	"github.com/campusworks/admissions-assistant/internal/core/ports"
)

const (
	defaultBatchSize = 16
	defaultDimension = 384
	defaultTopK      = 5
)

type Index struct {
	embedder  ports.EmbeddingProvider
	logger    *slog.Logger
	batchSize int
	dimension int

	mu      sync.RWMutex
	docs    []domain.Document
	vectors [][]float32
}

func New(embedder ports.EmbeddingProvider, logger *slog.Logger, batchSize, dimension int) *Index {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if dimension <= 0 {
		dimension = defaultDimension
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Index{
		embedder:  embedder,
		logger:    logger,
		batchSize: batchSize,
		dimension: dimension,
	}
}

// Load embeds every document in batches and swaps the index contents in one
// step. A document whose embedding cannot be produced gets a zero vector so
// positions stay aligned with the document store; the batch never aborts.
func (ix *Index) Load(ctx context.Context, docs []domain.Document) error {
	vectors := make([][]float32, 0, len(docs))

	for start := 0; start < len(docs); start += ix.batchSize {
		end := start + ix.batchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[start:end]

		texts := make([]string, len(batch))
		for i, doc := range batch {
			texts[i] = doc.Content
		}

		embedded, err := ix.embedder.Embed(ctx, texts)
		if err != nil || len(embedded) != len(batch) {
			if err != nil {
				ix.logger.Warn("batch embedding failed, retrying per document", "from", start, "to", end, "error", err)
			}
			embedded = ix.embedPerDocument(ctx, batch)
		}

		for i, vector := range embedded {
			if len(vector) == 0 {
				ix.logger.Warn("zero-vector substitution", "document_id", batch[i].ID)
				vector = make([]float32, ix.dimension)
			} else {
				ix.dimension = len(vector)
			}
			vectors = append(vectors, vector)
		}
	}

	ix.mu.Lock()
	ix.docs = append([]domain.Document(nil), docs...)
	ix.vectors = vectors
	ix.mu.Unlock()

	ix.logger.Info("semantic index loaded", "documents", len(docs), "dimension", ix.dimension)
	return nil
}

func (ix *Index) embedPerDocument(ctx context.Context, batch []domain.Document) [][]float32 {
	out := make([][]float32, len(batch))
	for i, doc := range batch {
		vector, err := ix.embedder.EmbedQuery(ctx, doc.Content)
		if err != nil {
			ix.logger.Warn("document embedding failed", "document_id", doc.ID, "error", err)
			continue
		}
		out[i] = vector
	}
	return out
}

// Search embeds the query and ranks every document by cosine similarity,
// floored at zero. It returns up to 2k candidates so the reranker has
// headroom beyond the requested result count.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]domain.SearchResult, error) {
	if k <= 0 {
		k = defaultTopK
	}

	ix.mu.RLock()
	docs := ix.docs
	vectors := ix.vectors
	ix.mu.RUnlock()

	if len(docs) == 0 {
		return nil, nil
	}

	queryVector, err := ix.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(docs))
	for i, vector := range vectors {
		score := cosine(queryVector, vector)
		if score < 0 {
			score = 0
		}
		results = append(results, domain.SearchResult{
			Document:   docs[i],
			Score:      score,
			SearchType: domain.SearchSemantic,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Document.ID < results[j].Document.ID
	})

	if len(results) > 2*k {
		results = results[:2*k]
	}
	return results, nil
}

// Len reports the number of indexed documents.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docs)
}

// Vector exposes the stored embedding at position i for alignment checks.
func (ix *Index) Vector(i int) []float32 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if i < 0 || i >= len(ix.vectors) {
		return nil
	}
	return ix.vectors[i]
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
