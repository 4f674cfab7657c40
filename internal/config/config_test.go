package config

import (
	"testing"
	"time"
)

func TestLoadSearchDefaults(t *testing.T) {
	t.Setenv("SEARCH_TOP_K", "")
	t.Setenv("SEARCH_SEMANTIC_WEIGHT", "")
	t.Setenv("SEARCH_KEYWORD_WEIGHT", "")
	t.Setenv("SEARCH_RERANK_ENABLED", "")
	t.Setenv("MEMORY_CACHE_TTL", "")

	cfg := Load()
	if cfg.SearchTopK != 5 {
		t.Fatalf("expected default top k 5, got %d", cfg.SearchTopK)
	}
	if cfg.SemanticWeight != 0.7 || cfg.KeywordWeight != 0.3 {
		t.Fatalf("expected default weights 0.7/0.3, got %v/%v", cfg.SemanticWeight, cfg.KeywordWeight)
	}
	if !cfg.RerankEnabled {
		t.Fatalf("expected rerank enabled by default")
	}
	if cfg.MemoryCacheTTL != 30*time.Minute {
		t.Fatalf("expected default cache ttl 30m, got %v", cfg.MemoryCacheTTL)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("KNOWLEDGE_SOURCE", "postgres")
	t.Setenv("SEARCH_TOP_K", "8")
	t.Setenv("SEARCH_SEMANTIC_WEIGHT", "0.6")
	t.Setenv("MEMORY_CACHE_TTL", "45m")
	t.Setenv("GENERATION_ENABLED", "false")
	t.Setenv("API_RATE_LIMIT_RPS", "25")

	cfg := Load()
	if cfg.KnowledgeSource != "postgres" {
		t.Fatalf("expected source override, got %q", cfg.KnowledgeSource)
	}
	if cfg.SearchTopK != 8 {
		t.Fatalf("expected top k 8, got %d", cfg.SearchTopK)
	}
	if cfg.SemanticWeight != 0.6 {
		t.Fatalf("expected semantic weight 0.6, got %v", cfg.SemanticWeight)
	}
	if cfg.MemoryCacheTTL != 45*time.Minute {
		t.Fatalf("expected cache ttl 45m, got %v", cfg.MemoryCacheTTL)
	}
	if cfg.GenerationEnabled {
		t.Fatalf("expected generation disabled")
	}
	if cfg.RateLimitRPS != 25 {
		t.Fatalf("expected rate limit 25, got %v", cfg.RateLimitRPS)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("SEARCH_TOP_K", "many")
	t.Setenv("MEMORY_CACHE_TTL", "soon")

	cfg := Load()
	if cfg.SearchTopK != 5 {
		t.Fatalf("malformed int should fall back, got %d", cfg.SearchTopK)
	}
	if cfg.MemoryCacheTTL != 30*time.Minute {
		t.Fatalf("malformed duration should fall back, got %v", cfg.MemoryCacheTTL)
	}
}
