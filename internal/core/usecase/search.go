package usecase

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/campusworks/admissions-assistant/internal/core/domain"
	"github.com/campusworks/admissions-assistant/internal/core/ports"
)

const (
	defaultSemanticWeight = 0.7
	defaultKeywordWeight  = 0.3
	defaultTopK           = 5
)

// Retriever dispatches a query to the semantic index, the keyword index, or
// both, fuses hybrid results, and applies the reranker. Semantic similarity
// is the primary signal; keyword matching corrects for exact terminology
// (department names, grade and fee figures) that embeddings miss.
type Retriever struct {
	semantic       ports.SemanticSearcher
	keyword        ports.KeywordSearcher
	semanticWeight float64
	keywordWeight  float64
	rerankEnabled  bool
	logger         *slog.Logger
}

func NewRetriever(semantic ports.SemanticSearcher, keyword ports.KeywordSearcher, semanticWeight, keywordWeight float64, rerankEnabled bool, logger *slog.Logger) *Retriever {
	if semanticWeight <= 0 || keywordWeight < 0 || semanticWeight+keywordWeight <= 0 {
		semanticWeight = defaultSemanticWeight
		keywordWeight = defaultKeywordWeight
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		semantic:       semantic,
		keyword:        keyword,
		semanticWeight: semanticWeight,
		keywordWeight:  keywordWeight,
		rerankEnabled:  rerankEnabled,
		logger:         logger,
	}
}

// Search runs the retrieval mode and returns at most k results. A failing
// sub-search contributes an empty set instead of aborting the query.
func (r *Retriever) Search(ctx context.Context, query string, mode domain.SearchType, k int) []domain.SearchResult {
	if k <= 0 {
		k = defaultTopK
	}

	switch mode {
	case domain.SearchSemantic:
		candidates := r.searchSemantic(ctx, query, k)
		if r.rerankEnabled {
			candidates = rerankCandidates(query, candidates, k)
		}
		return trimResults(candidates, k)
	case domain.SearchKeyword:
		return trimResults(r.searchKeyword(ctx, query, k), k)
	default:
		return r.searchHybrid(ctx, query, k)
	}
}

// searchHybrid issues both sub-searches concurrently; the indices are
// read-only after load, so unsynchronized concurrent reads are safe.
func (r *Retriever) searchHybrid(ctx context.Context, query string, k int) []domain.SearchResult {
	var (
		wg              sync.WaitGroup
		semanticResults []domain.SearchResult
		keywordResults  []domain.SearchResult
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		semanticResults = r.searchSemantic(ctx, query, k)
	}()
	go func() {
		defer wg.Done()
		keywordResults = r.searchKeyword(ctx, query, k)
	}()
	wg.Wait()

	fused := fuseWeighted(semanticResults, keywordResults, r.semanticWeight, r.keywordWeight)
	if r.rerankEnabled {
		fused = rerankCandidates(query, fused, k)
	}
	return trimResults(fused, k)
}

func (r *Retriever) searchSemantic(ctx context.Context, query string, k int) []domain.SearchResult {
	results, err := r.semantic.Search(ctx, query, k)
	if err != nil {
		r.logger.Warn("semantic search failed", "error", err)
		return nil
	}
	return results
}

func (r *Retriever) searchKeyword(ctx context.Context, query string, k int) []domain.SearchResult {
	results, err := r.keyword.Search(ctx, query, 2*k)
	if err != nil {
		r.logger.Warn("keyword search failed", "error", err)
		return nil
	}
	return results
}

// fuseWeighted normalizes each result set against its own maximum score,
// weights the normalized scores, and merges by document ID. A document in
// both sets gets the sum of both contributions, so fused scores stay within
// [0, semanticWeight+keywordWeight].
func fuseWeighted(semantic, keyword []domain.SearchResult, semanticWeight, keywordWeight float64) []domain.SearchResult {
	acc := make(map[string]domain.SearchResult, len(semantic)+len(keyword))

	add := func(results []domain.SearchResult, weight float64) {
		max := maxScore(results)
		if max <= 0 {
			return
		}
		for _, result := range results {
			normalized := result.Score / max
			if normalized < 0 {
				normalized = 0
			}
			contribution := normalized * weight

			merged, ok := acc[result.Document.ID]
			if !ok {
				merged = result
				merged.Score = 0
			}
			merged.Score += contribution
			merged.SearchType = domain.SearchHybrid
			acc[result.Document.ID] = merged
		}
	}

	add(semantic, semanticWeight)
	add(keyword, keywordWeight)

	out := make([]domain.SearchResult, 0, len(acc))
	for _, result := range acc {
		out = append(out, result)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Document.ID < out[j].Document.ID
	})
	return out
}

func maxScore(results []domain.SearchResult) float64 {
	max := 0.0
	for _, result := range results {
		if result.Score > max {
			max = result.Score
		}
	}
	return max
}

func trimResults(results []domain.SearchResult, k int) []domain.SearchResult {
	if k <= 0 || len(results) <= k {
		return results
	}
	return results[:k]
}
