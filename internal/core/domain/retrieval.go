package domain

// SearchType identifies which retrieval path produced a result.
type SearchType string

const (
	SearchSemantic SearchType = "semantic"
	SearchKeyword  SearchType = "keyword"
	SearchHybrid   SearchType = "hybrid"
)

// SearchResult is a scored candidate document. Scores are non-negative and
// higher means more relevant; after fusion or reranking they are bounded to
// [0, 1]-ish composite values, before that they are raw index scores.
type SearchResult struct {
	Document      Document           `json:"document"`
	Score         float64            `json:"score"`
	SearchType    SearchType         `json:"search_type"`
	RerankSignals map[string]float64 `json:"rerank_signals,omitempty"`
}
