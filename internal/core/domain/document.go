package domain

// DocumentType classifies knowledge-base documents by the kind of source
// field they were synthesized from.
type DocumentType string

const (
	TypeDepartment DocumentType = "department"
	TypeAdmission  DocumentType = "admission"
	TypeFee        DocumentType = "fee"
)

// Keyword is a frequency-ranked term extracted from document or query text.
type Keyword struct {
	Word  string  `json:"word"`
	Score float64 `json:"score"`
}

// Document is one retrievable unit of the knowledge base. Content is built
// once from a source record and never mutated afterwards; IDs are unique
// within a loaded knowledge base.
type Document struct {
	ID        string            `json:"id"`
	Content   string            `json:"content"`
	Type      DocumentType      `json:"type"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Keywords  []Keyword         `json:"keywords,omitempty"`
	Chunks    []string          `json:"chunks,omitempty"`
	WordCount int               `json:"word_count"`
}

// GuideText is supplementary free-form admission material (for example an
// extracted admission-guide PDF) indexed alongside the structured records.
type GuideText struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}
