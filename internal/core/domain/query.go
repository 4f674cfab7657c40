package domain

// Language selects the response language. Prompt and fallback text exist as
// full parallel variants per language, nothing is machine-translated.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageArabic  Language = "ar"
)

// PromptKind selects the prompt template family. Voice interactions get a
// shorter, more conversational prompt; the flag comes from the caller, the
// engine never sniffs it from content.
type PromptKind int

const (
	PromptStandard PromptKind = iota
	PromptVoice
)

// Generation method markers reported in query performance metadata.
const (
	GenerationLLM      = "llm"
	GenerationFallback = "fallback"
	GenerationCache    = "cache"
)

// QueryRequest is one user query against the engine.
type QueryRequest struct {
	Text      string     `json:"text"`
	SessionID string     `json:"session_id"`
	Mode      SearchType `json:"mode,omitempty"`
	Language  Language   `json:"language,omitempty"`
	Voice     bool       `json:"voice,omitempty"`
}

// Performance describes how a single query was served.
type Performance struct {
	TotalTimeMs      float64    `json:"total_time_ms"`
	GenerationMethod string     `json:"generation_method"`
	ResultCount      int        `json:"result_count"`
	SearchType       SearchType `json:"search_type"`
	CacheHit         bool       `json:"cache_hit"`
	Error            bool       `json:"error"`
}

// QueryResult is the engine's answer to one query. Query carries the
// possibly rewritten query text that retrieval actually ran.
type QueryResult struct {
	Query       string         `json:"query"`
	Response    string         `json:"response"`
	Confidence  float64        `json:"confidence"`
	Results     []SearchResult `json:"results"`
	Performance Performance    `json:"performance"`
	MemoryStats MemoryStats    `json:"memory_stats"`
	Err         string         `json:"error,omitempty"`
}

// EngineStats are process-wide running counters.
type EngineStats struct {
	TotalQueries   int64   `json:"total_queries"`
	AvgQueryTimeMs float64 `json:"avg_query_time_ms"`
	CacheHits      int64   `json:"cache_hits"`
	LLMCalls       int64   `json:"llm_calls"`
	DocumentCount  int     `json:"documents_count"`
	SessionCount   int     `json:"session_count"`
}
