package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/campusworks/admissions-assistant/internal/core/domain"
	"github.com/campusworks/admissions-assistant/internal/core/ports"
)

const (
	defaultSessionID = "default"
	historyRecallMax = 3
	rewriteExchanges = 2
	rewriteKeywords  = 2
	initializeProbe  = "admissions assistant readiness probe"
)

// Limits are the orchestrator's tunables; zero values fall back to the
// defaults in the constructor.
type Limits struct {
	TopK           int
	SemanticWeight float64
	KeywordWeight  float64
	RerankEnabled  bool
}

// QueryEngine sequences one query end to end: memory-driven rewrite,
// retrieval, cached-or-generated response, memory update, stats. It owns no
// global state; everything is injected at construction.
type QueryEngine struct {
	embedder  ports.EmbeddingProvider
	semantic  ports.SemanticSearcher
	keyword   ports.KeywordSearcher
	retriever *Retriever
	memory    ports.SessionMemory
	generator *Generator
	limits    Limits
	logger    *slog.Logger

	mu            sync.RWMutex
	initialized   bool
	documentCount int

	statsMu      sync.Mutex
	totalQueries int64
	avgQueryMs   float64
	cacheHits    int64
	llmCalls     int64
}

func NewQueryEngine(
	embedder ports.EmbeddingProvider,
	semantic ports.SemanticSearcher,
	keyword ports.KeywordSearcher,
	memory ports.SessionMemory,
	generator *Generator,
	limits Limits,
	logger *slog.Logger,
) *QueryEngine {
	if limits.TopK <= 0 {
		limits.TopK = defaultTopK
	}
	if limits.SemanticWeight <= 0 {
		limits.SemanticWeight = defaultSemanticWeight
		limits.KeywordWeight = defaultKeywordWeight
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryEngine{
		embedder:  embedder,
		semantic:  semantic,
		keyword:   keyword,
		retriever: NewRetriever(semantic, keyword, limits.SemanticWeight, limits.KeywordWeight, limits.RerankEnabled, logger),
		memory:    memory,
		generator: generator,
		limits:    limits,
		logger:    logger,
	}
}

// Initialize verifies the embedding backend with a probe call. Idempotent:
// a second call on an initialized engine is a no-op.
func (e *QueryEngine) Initialize(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.initialized {
		return nil
	}

	if _, err := e.embedder.EmbedQuery(ctx, initializeProbe); err != nil {
		return domain.WrapError(domain.ErrNotInitialized, "initialize embedding backend", err)
	}
	e.initialized = true
	e.logger.Info("query engine initialized")
	return nil
}

// LoadKnowledgeBase builds the documents and both indices. Rebuilds swap
// index contents atomically; in-flight queries finish on the old snapshot.
func (e *QueryEngine) LoadKnowledgeBase(ctx context.Context, records []domain.DepartmentRecord, guides []domain.GuideText) error {
	e.mu.RLock()
	initialized := e.initialized
	e.mu.RUnlock()
	if !initialized {
		return domain.ErrNotInitialized
	}

	docs := BuildDocuments(records)
	docs = append(docs, BuildGuideDocuments(guides)...)

	if err := e.semantic.Load(ctx, docs); err != nil {
		return fmt.Errorf("load semantic index: %w", err)
	}
	e.keyword.Load(docs)

	e.mu.Lock()
	e.documentCount = len(docs)
	e.mu.Unlock()

	e.logger.Info("knowledge base loaded", "records", len(records), "guides", len(guides), "documents", len(docs))
	return nil
}

// Query answers one user query. Validation failures return typed errors the
// caller can route around; anything after validation degrades to an apology
// response instead of propagating.
func (e *QueryEngine) Query(ctx context.Context, req domain.QueryRequest) (*domain.QueryResult, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "query", fmt.Errorf("query text is required"))
	}

	e.mu.RLock()
	initialized := e.initialized
	documentCount := e.documentCount
	e.mu.RUnlock()
	if !initialized {
		return nil, domain.ErrNotInitialized
	}

	lang := req.Language
	if lang != domain.LanguageArabic {
		lang = domain.LanguageEnglish
	}
	mode := req.Mode
	if mode != domain.SearchSemantic && mode != domain.SearchKeyword {
		mode = domain.SearchHybrid
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = defaultSessionID
	}
	kind := domain.PromptStandard
	if req.Voice {
		kind = domain.PromptVoice
	}

	start := time.Now()
	result := e.answer(ctx, text, sessionID, mode, lang, kind, documentCount)
	elapsed := time.Since(start)

	result.Performance.TotalTimeMs = float64(elapsed.Microseconds()) / 1000.0
	result.Performance.SearchType = mode
	result.MemoryStats = e.memory.Stats(sessionID)
	e.recordQuery(elapsed, result.Performance.CacheHit, result.Performance.GenerationMethod)

	return result, nil
}

// answer runs steps 2-6 of the query pipeline behind a recovery boundary:
// no panic or internal failure escapes past it.
func (e *QueryEngine) answer(ctx context.Context, text, sessionID string, mode domain.SearchType, lang domain.Language, kind domain.PromptKind, documentCount int) (result *domain.QueryResult) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("query pipeline panic", "panic", r)
			result = &domain.QueryResult{
				Query:    text,
				Response: apologyMessage(lang),
				Err:      fmt.Sprint(r),
				Performance: domain.Performance{
					GenerationMethod: domain.GenerationFallback,
					Error:            true,
				},
			}
		}
	}()

	rewritten := e.rewriteQuery(sessionID, text)

	var results []domain.SearchResult
	if documentCount > 0 {
		results = e.retriever.Search(ctx, rewritten, mode, e.limits.TopK)
	}

	response, method := e.respond(ctx, sessionID, text, rewritten, results, lang, kind)
	confidence := confidenceScore(text, results)
	e.memory.AddExchange(sessionID, text, response, results)

	return &domain.QueryResult{
		Query:      rewritten,
		Response:   response,
		Confidence: confidence,
		Results:    results,
		Performance: domain.Performance{
			GenerationMethod: method,
			ResultCount:      len(results),
			CacheHit:         method == domain.GenerationCache,
		},
	}
}

// respond consults the per-session response cache before generating.
func (e *QueryEngine) respond(ctx context.Context, sessionID, text, rewritten string, results []domain.SearchResult, lang domain.Language, kind domain.PromptKind) (string, string) {
	if cached, ok := e.memory.CachedResponse(sessionID, text); ok {
		return cached.Response, domain.GenerationCache
	}
	return e.generator.Generate(ctx, rewritten, results, lang, kind)
}

// rewriteQuery appends topical keywords from recent relevant exchanges so
// elliptical follow-ups ("what about pharmacy?") retrieve against the
// conversation's subject.
func (e *QueryEngine) rewriteQuery(sessionID, text string) string {
	history := e.memory.RelevantHistory(sessionID, text, historyRecallMax)
	if len(history) == 0 {
		return text
	}
	if len(history) > rewriteExchanges {
		history = history[:rewriteExchanges]
	}

	existing := make(map[string]struct{})
	for _, token := range strings.Fields(strings.ToLower(text)) {
		existing[token] = struct{}{}
	}

	extras := make([]string, 0, rewriteExchanges*rewriteKeywords)
	for _, exchange := range history {
		keywords := exchange.Keywords
		if len(keywords) > rewriteKeywords {
			keywords = keywords[:rewriteKeywords]
		}
		for _, word := range keywords {
			if _, ok := existing[word]; ok {
				continue
			}
			existing[word] = struct{}{}
			extras = append(extras, word)
		}
	}

	if len(extras) == 0 {
		return text
	}
	return text + " " + strings.Join(extras, " ")
}

func (e *QueryEngine) ClearMemory(sessionID string) {
	if sessionID == "" {
		sessionID = defaultSessionID
	}
	e.memory.Clear(sessionID)
}

func (e *QueryEngine) Stats() domain.EngineStats {
	e.mu.RLock()
	documentCount := e.documentCount
	e.mu.RUnlock()

	e.statsMu.Lock()
	defer e.statsMu.Unlock()
	return domain.EngineStats{
		TotalQueries:   e.totalQueries,
		AvgQueryTimeMs: e.avgQueryMs,
		CacheHits:      e.cacheHits,
		LLMCalls:       e.llmCalls,
		DocumentCount:  documentCount,
		SessionCount:   e.memory.SessionCount(),
	}
}

// recordQuery maintains the incremental running mean of query latency.
func (e *QueryEngine) recordQuery(elapsed time.Duration, cacheHit bool, method string) {
	ms := float64(elapsed.Microseconds()) / 1000.0

	e.statsMu.Lock()
	defer e.statsMu.Unlock()
	e.totalQueries++
	e.avgQueryMs += (ms - e.avgQueryMs) / float64(e.totalQueries)
	if cacheHit {
		e.cacheHits++
	}
	if method == domain.GenerationLLM {
		e.llmCalls++
	}
}
