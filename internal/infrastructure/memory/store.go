// Package memory is the per-session conversation store: a bounded FIFO
// exchange history with topical (relevance-based, not chronological) recall
// and a short-TTL response cache. One store instance is constructed per
// process and injected into the orchestrator.
package memory

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/campusworks/admissions-assistant/internal/core/domain"
	"github.com/campusworks/admissions-assistant/internal/core/textproc"
)

const (
	defaultMaxHistory  = 20
	defaultCacheTTL    = 30 * time.Minute
	defaultIdleTTL     = 24 * time.Hour
	snapshotMaxRunes   = 150
	exchangeKeywords   = 10
	cacheKeyKeywords   = 5
	relevanceThreshold = 0.1
)

type session struct {
	exchanges  []domain.Exchange
	cache      map[string]domain.CachedResponse
	lastActive time.Time
}

type Store struct {
	maxHistory int
	cacheTTL   time.Duration
	idleTTL    time.Duration
	logger     *slog.Logger
	now        func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

func New(maxHistory int, cacheTTL, idleTTL time.Duration, logger *slog.Logger) *Store {
	if maxHistory <= 0 {
		maxHistory = defaultMaxHistory
	}
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	if idleTTL <= 0 {
		idleTTL = defaultIdleTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		maxHistory: maxHistory,
		cacheTTL:   cacheTTL,
		idleTTL:    idleTTL,
		logger:     logger,
		now:        time.Now,
		sessions:   make(map[string]*session),
	}
}

// AddExchange appends one turn, evicting the oldest exchange beyond the
// history bound, and upserts a cache entry keyed by the normalized query.
// Retrieved document contents are truncated for storage economy.
func (s *Store) AddExchange(sessionID, userText, assistantText string, retrieved []domain.SearchResult) {
	snapshot := make([]string, 0, len(retrieved))
	for _, result := range retrieved {
		snapshot = append(snapshot, truncateRunes(result.Document.Content, snapshotMaxRunes))
	}

	keywords := textproc.ExtractKeywords(userText, exchangeKeywords)
	words := make([]string, len(keywords))
	for i, kw := range keywords {
		words[i] = kw.Word
	}

	now := s.now()
	exchange := domain.Exchange{
		Timestamp:       now,
		UserText:        userText,
		AssistantText:   assistantText,
		ContextSnapshot: snapshot,
		TokenEstimate:   (len(userText) + len(assistantText)) / 4,
		Keywords:        words,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(sessionID, now)
	sess.exchanges = append(sess.exchanges, exchange)
	if len(sess.exchanges) > s.maxHistory {
		sess.exchanges = sess.exchanges[len(sess.exchanges)-s.maxHistory:]
	}
	sess.cache[cacheKey(userText)] = domain.CachedResponse{
		Response:  assistantText,
		Context:   snapshot,
		Timestamp: now,
	}
}

// RelevantHistory returns up to maxExchanges stored exchanges ranked by
// keyword overlap with the query. Exchanges below the relevance threshold
// are dropped entirely, so an unrelated follow-up recalls nothing.
func (s *Store) RelevantHistory(sessionID, query string, maxExchanges int) []domain.Exchange {
	if maxExchanges <= 0 {
		return nil
	}
	queryTokens := textproc.TokenSet(query)

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	sess.lastActive = s.now()

	type scored struct {
		exchange  domain.Exchange
		relevance float64
	}
	candidates := make([]scored, 0, len(sess.exchanges))
	for _, exchange := range sess.exchanges {
		set := make(map[string]struct{}, len(exchange.Keywords))
		for _, word := range exchange.Keywords {
			set[word] = struct{}{}
		}
		relevance := textproc.Jaccard(set, queryTokens)
		if relevance < relevanceThreshold {
			continue
		}
		candidates = append(candidates, scored{exchange: exchange, relevance: relevance})
	}

	// Stable sort keeps recency order among equally relevant exchanges.
	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0 && candidates[j].relevance > candidates[j-1].relevance; j-- {
			candidates[j], candidates[j-1] = candidates[j-1], candidates[j]
		}
	}

	if len(candidates) > maxExchanges {
		candidates = candidates[:maxExchanges]
	}
	out := make([]domain.Exchange, len(candidates))
	for i, c := range candidates {
		out[i] = c.exchange
	}
	return out
}

// CachedResponse returns a fresh cache entry for the query, if any. Stale
// entries are treated as misses and left to be overwritten or swept with
// the session.
func (s *Store) CachedResponse(sessionID, query string) (domain.CachedResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return domain.CachedResponse{}, false
	}
	entry, ok := sess.cache[cacheKey(query)]
	if !ok {
		return domain.CachedResponse{}, false
	}
	if s.now().Sub(entry.Timestamp) >= s.cacheTTL {
		return domain.CachedResponse{}, false
	}
	sess.lastActive = s.now()
	return entry, true
}

func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

func (s *Store) Stats(sessionID string) domain.MemoryStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return domain.MemoryStats{}
	}
	return domain.MemoryStats{
		Exchanges:       len(sess.exchanges),
		CachedResponses: len(sess.cache),
	}
}

func (s *Store) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// StartJanitor sweeps idle sessions until ctx is done. The exchange bound
// limits each session's size but not the session map itself; dropping
// sessions idle past the TTL keeps long-running processes bounded.
func (s *Store) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

func (s *Store) sweep() {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	removed := 0
	for id, sess := range s.sessions {
		if sess.lastActive.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	remaining := len(s.sessions)
	s.mu.Unlock()

	if removed > 0 {
		s.logger.Info("idle sessions swept", "removed", removed, "remaining", remaining)
	}
}

func (s *Store) session(sessionID string, now time.Time) *session {
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &session{cache: make(map[string]domain.CachedResponse)}
		s.sessions[sessionID] = sess
	}
	sess.lastActive = now
	return sess
}

func cacheKey(query string) string {
	keywords := textproc.ExtractKeywords(query, cacheKeyKeywords)
	words := make([]string, len(keywords))
	for i, kw := range keywords {
		words[i] = kw.Word
	}
	return strings.Join(words, "_")
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
