// Package keyword is the lexical index: TF-IDF over enriched document text
// (content + extracted keywords + department name + type) with a boost for
// exact department/type matches. It corrects the semantic index where users
// quote terminology verbatim: department names, grades, fee figures.
package keyword

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/campusworks/admissions-assistant/internal/core/domain"
	"github.com/campusworks/admissions-assistant/internal/core/textproc"
)

const (
	metadataBoost = 1.5
	defaultTopK   = 5
)

type indexedDoc struct {
	doc        domain.Document
	termFreq   map[string]int
	boostTerms map[string]struct{}
}

type Index struct {
	mu      sync.RWMutex
	docs    []indexedDoc
	docFreq map[string]int
}

func New() *Index {
	return &Index{docFreq: make(map[string]int)}
}

// Load rebuilds the index from scratch and swaps it in one step.
func (ix *Index) Load(docs []domain.Document) {
	indexed := make([]indexedDoc, 0, len(docs))
	docFreq := make(map[string]int)

	for _, doc := range docs {
		tokens := textproc.Tokenize(enrichedText(doc))
		termFreq := make(map[string]int, len(tokens))
		for _, token := range tokens {
			termFreq[token]++
		}
		for term := range termFreq {
			docFreq[term]++
		}

		indexed = append(indexed, indexedDoc{
			doc:        doc,
			termFreq:   termFreq,
			boostTerms: boostTerms(doc),
		})
	}

	ix.mu.Lock()
	ix.docs = indexed
	ix.docFreq = docFreq
	ix.mu.Unlock()
}

// Search sums per-term TF-IDF contributions across documents, multiplying a
// term's contribution by 1.5 when it exactly matches the document's
// department name or type. Documents scoring zero are dropped.
func (ix *Index) Search(_ context.Context, query string, k int) ([]domain.SearchResult, error) {
	if k <= 0 {
		k = defaultTopK
	}
	terms := textproc.Tokenize(query)
	if len(terms) == 0 {
		return nil, nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	total := float64(len(ix.docs))
	results := make([]domain.SearchResult, 0, len(ix.docs))
	for _, entry := range ix.docs {
		score := 0.0
		for _, term := range terms {
			tf := float64(entry.termFreq[term])
			if tf == 0 {
				continue
			}
			idf := math.Log(1 + total/float64(1+ix.docFreq[term]))
			contribution := tf * idf
			if _, boosted := entry.boostTerms[term]; boosted {
				contribution *= metadataBoost
			}
			score += contribution
		}
		if score <= 0 {
			continue
		}
		results = append(results, domain.SearchResult{
			Document:   entry.doc,
			Score:      score,
			SearchType: domain.SearchKeyword,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Document.ID < results[j].Document.ID
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Len reports the number of indexed documents.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docs)
}

func enrichedText(doc domain.Document) string {
	var b strings.Builder
	b.WriteString(doc.Content)
	for _, kw := range doc.Keywords {
		b.WriteByte(' ')
		b.WriteString(kw.Word)
	}
	if dept := doc.Metadata["department"]; dept != "" {
		b.WriteByte(' ')
		b.WriteString(dept)
	}
	b.WriteByte(' ')
	b.WriteString(string(doc.Type))
	return b.String()
}

func boostTerms(doc domain.Document) map[string]struct{} {
	out := make(map[string]struct{}, 4)
	for _, token := range textproc.Tokenize(doc.Metadata["department"]) {
		out[token] = struct{}{}
	}
	for _, token := range textproc.Tokenize(doc.Metadata["department_localized"]) {
		out[token] = struct{}{}
	}
	for _, token := range textproc.Tokenize(string(doc.Type)) {
		out[token] = struct{}{}
	}
	return out
}
