package domain

import "time"

// Exchange is one stored question/answer turn of a session. ContextSnapshot
// keeps truncated copies of the retrieved document contents, not the full
// documents.
type Exchange struct {
	Timestamp       time.Time `json:"timestamp"`
	UserText        string    `json:"user_text"`
	AssistantText   string    `json:"assistant_text"`
	ContextSnapshot []string  `json:"context_snapshot,omitempty"`
	TokenEstimate   int       `json:"token_estimate"`
	Keywords        []string  `json:"keywords,omitempty"`
}

// CachedResponse is a short-lived per-session response cache entry.
type CachedResponse struct {
	Response  string    `json:"response"`
	Context   []string  `json:"context,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// MemoryStats summarizes one session's memory state.
type MemoryStats struct {
	Exchanges       int `json:"exchanges"`
	CachedResponses int `json:"cached_responses"`
}
