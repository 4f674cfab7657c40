package usecase

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"testing"

	"github.com/campusworks/admissions-assistant/internal/core/domain"
)

type semanticStub struct {
	results []domain.SearchResult
	err     error
}

func (s *semanticStub) Load(context.Context, []domain.Document) error { return nil }

func (s *semanticStub) Search(context.Context, string, int) ([]domain.SearchResult, error) {
	return s.results, s.err
}

type keywordStub struct {
	results []domain.SearchResult
	err     error
}

func (s *keywordStub) Load([]domain.Document) {}

func (s *keywordStub) Search(context.Context, string, int) ([]domain.SearchResult, error) {
	return s.results, s.err
}

func scoredResult(id string, score float64, searchType domain.SearchType) domain.SearchResult {
	return domain.SearchResult{
		Document:   domain.Document{ID: id, Content: id},
		Score:      score,
		SearchType: searchType,
	}
}

func newTestRetriever(semantic *semanticStub, keyword *keywordStub, rerank bool) *Retriever {
	return NewRetriever(semantic, keyword, 0.7, 0.3, rerank, slog.New(slog.DiscardHandler))
}

func TestHybridFusionMergesByDocument(t *testing.T) {
	semantic := &semanticStub{results: []domain.SearchResult{
		scoredResult("a", 0.9, domain.SearchSemantic),
		scoredResult("b", 0.5, domain.SearchSemantic),
	}}
	keyword := &keywordStub{results: []domain.SearchResult{
		scoredResult("b", 2.0, domain.SearchKeyword),
		scoredResult("c", 1.0, domain.SearchKeyword),
	}}

	results := newTestRetriever(semantic, keyword, false).Search(context.Background(), "q", domain.SearchHybrid, 5)
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	if results[0].Document.ID != "a" || results[1].Document.ID != "b" || results[2].Document.ID != "c" {
		t.Fatalf("order = %v", resultIDs(results))
	}
	// a: 0.9/0.9*0.7, b: 0.5/0.9*0.7 + 2.0/2.0*0.3, c: 1.0/2.0*0.3.
	wantB := 0.5/0.9*0.7 + 0.3
	if math.Abs(results[1].Score-wantB) > 1e-9 {
		t.Errorf("merged score for b = %v, want %v", results[1].Score, wantB)
	}
	for _, result := range results {
		if result.SearchType != domain.SearchHybrid {
			t.Errorf("result %s search type = %q", result.Document.ID, result.SearchType)
		}
		if result.Score < 0 || result.Score > 1 {
			t.Errorf("result %s score %v outside [0, 1]", result.Document.ID, result.Score)
		}
	}
}

func TestHybridSurvivesFailingSubSearch(t *testing.T) {
	semantic := &semanticStub{err: errors.New("embedding backend down")}
	keyword := &keywordStub{results: []domain.SearchResult{
		scoredResult("b", 2.0, domain.SearchKeyword),
		scoredResult("c", 1.0, domain.SearchKeyword),
	}}

	results := newTestRetriever(semantic, keyword, false).Search(context.Background(), "q", domain.SearchHybrid, 5)
	if len(results) != 2 {
		t.Fatalf("got %d results, want the keyword side alone", len(results))
	}
	if results[0].Document.ID != "b" || math.Abs(results[0].Score-0.3) > 1e-9 {
		t.Errorf("top result = %s score %v, want b at 0.3", results[0].Document.ID, results[0].Score)
	}
}

func TestHybridBothSidesFailing(t *testing.T) {
	semantic := &semanticStub{err: errors.New("down")}
	keyword := &keywordStub{err: errors.New("down")}

	results := newTestRetriever(semantic, keyword, false).Search(context.Background(), "q", domain.SearchHybrid, 5)
	if len(results) != 0 {
		t.Fatalf("got %d results, want none", len(results))
	}
}

func TestSearchModeDispatch(t *testing.T) {
	semantic := &semanticStub{results: []domain.SearchResult{
		scoredResult("s1", 0.9, domain.SearchSemantic),
		scoredResult("s2", 0.8, domain.SearchSemantic),
		scoredResult("s3", 0.7, domain.SearchSemantic),
	}}
	keyword := &keywordStub{results: []domain.SearchResult{
		scoredResult("k1", 3.0, domain.SearchKeyword),
	}}
	retriever := newTestRetriever(semantic, keyword, false)

	got := retriever.Search(context.Background(), "q", domain.SearchSemantic, 2)
	if len(got) != 2 || got[0].Document.ID != "s1" {
		t.Errorf("semantic mode = %v", resultIDs(got))
	}

	got = retriever.Search(context.Background(), "q", domain.SearchKeyword, 2)
	if len(got) != 1 || got[0].Document.ID != "k1" {
		t.Errorf("keyword mode = %v", resultIDs(got))
	}
}

func resultIDs(results []domain.SearchResult) []string {
	out := make([]string, len(results))
	for i, result := range results {
		out[i] = result.Document.ID
	}
	return out
}
