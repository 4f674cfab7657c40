package semantic

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/campusworks/admissions-assistant/internal/core/domain"
)

type embedderFake struct {
	vectors   map[string][]float32
	batchErr  error
	queryErrs map[string]error
}

func (f *embedderFake) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = f.vectors[text]
	}
	return out, nil
}

func (f *embedderFake) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	if err := f.queryErrs[text]; err != nil {
		return nil, err
	}
	return f.vectors[text], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testDocs() []domain.Document {
	return []domain.Document{
		{ID: "dept_dentistry", Content: "dentistry"},
		{ID: "dept_pharmacy", Content: "pharmacy"},
		{ID: "dept_biology", Content: "biology"},
	}
}

func TestLoadKeepsVectorsAlignedWithDocuments(t *testing.T) {
	embedder := &embedderFake{vectors: map[string][]float32{
		"dentistry": {1, 0},
		"pharmacy":  {0, 1},
		"biology":   {1, 1},
	}}
	ix := New(embedder, testLogger(), 2, 2)

	if err := ix.Load(context.Background(), testDocs()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if ix.Len() != 3 {
		t.Fatalf("expected 3 documents, got %d", ix.Len())
	}
	if v := ix.Vector(1); v[0] != 0 || v[1] != 1 {
		t.Fatalf("vector 1 not aligned with pharmacy: %v", v)
	}
}

func TestLoadSubstitutesZeroVectorOnPerDocumentFailure(t *testing.T) {
	embedder := &embedderFake{
		batchErr: errors.New("batch unavailable"),
		vectors: map[string][]float32{
			"dentistry": {1, 0},
			"biology":   {1, 1},
		},
		queryErrs: map[string]error{"pharmacy": errors.New("embed down")},
	}
	ix := New(embedder, testLogger(), 16, 2)

	if err := ix.Load(context.Background(), testDocs()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if ix.Len() != 3 {
		t.Fatalf("alignment broken: expected 3 vectors, got %d", ix.Len())
	}
	zero := ix.Vector(1)
	if len(zero) != 2 || zero[0] != 0 || zero[1] != 0 {
		t.Fatalf("expected zero-vector placeholder, got %v", zero)
	}
}

func TestSearchRanksByCosineAndFloorsNegatives(t *testing.T) {
	embedder := &embedderFake{vectors: map[string][]float32{
		"dentistry": {1, 0},
		"pharmacy":  {-1, 0},
		"biology":   {1, 1},
		"teeth":     {1, 0},
	}}
	ix := New(embedder, testLogger(), 16, 2)
	if err := ix.Load(context.Background(), testDocs()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	results, err := ix.Search(context.Background(), "teeth", 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if results[0].Document.ID != "dept_dentistry" {
		t.Fatalf("expected dentistry first, got %s", results[0].Document.ID)
	}
	for _, r := range results {
		if r.Score < 0 {
			t.Fatalf("negative similarity must be floored: %f", r.Score)
		}
		if r.SearchType != domain.SearchSemantic {
			t.Fatalf("expected semantic search type, got %s", r.SearchType)
		}
	}
}

func TestSearchReturnsTwiceKCandidates(t *testing.T) {
	embedder := &embedderFake{vectors: map[string][]float32{
		"dentistry": {1, 0}, "pharmacy": {0.5, 0.5}, "biology": {0, 1}, "q": {1, 1},
	}}
	ix := New(embedder, testLogger(), 16, 2)
	if err := ix.Load(context.Background(), testDocs()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	results, err := ix.Search(context.Background(), "q", 1)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2k candidates for k=1, got %d", len(results))
	}
}

func TestSearchEmptyIndex(t *testing.T) {
	ix := New(&embedderFake{}, testLogger(), 16, 2)
	results, err := ix.Search(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}
