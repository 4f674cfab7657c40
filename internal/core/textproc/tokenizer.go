// Package textproc holds the leaf text utilities shared by indexing,
// reranking, and memory recall: tokenization, keyword extraction, and
// sentence-aware chunking.
package textproc

import (
	"sort"
	"strings"
	"unicode"

	"github.com/campusworks/admissions-assistant/internal/core/domain"
)

const minTokenLen = 3

// Tokenize lower-cases text, splits on anything that is not a letter or
// digit, and drops tokens shorter than three runes. Queries arrive in
// English and Arabic, so the letter test is full Unicode rather than ASCII.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}

	tokens := make([]string, 0, 16)
	var b strings.Builder
	flush := func() {
		if b.Len() == 0 {
			return
		}
		token := b.String()
		b.Reset()
		if len([]rune(token)) >= minTokenLen {
			tokens = append(tokens, token)
		}
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		flush()
	}
	flush()
	return tokens
}

// TokenSet returns the distinct tokens of text.
func TokenSet(text string) map[string]struct{} {
	tokens := Tokenize(text)
	out := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		out[token] = struct{}{}
	}
	return out
}

// ExtractKeywords returns the topK highest-frequency tokens of text, ties
// broken by first encounter order. Score is the raw term frequency.
func ExtractKeywords(text string, topK int) []domain.Keyword {
	tokens := Tokenize(text)
	if len(tokens) == 0 || topK <= 0 {
		return nil
	}

	freq := make(map[string]int, len(tokens))
	order := make(map[string]int, len(tokens))
	for i, token := range tokens {
		if _, seen := freq[token]; !seen {
			order[token] = i
		}
		freq[token]++
	}

	keywords := make([]domain.Keyword, 0, len(freq))
	for word, count := range freq {
		keywords = append(keywords, domain.Keyword{Word: word, Score: float64(count)})
	}
	sort.SliceStable(keywords, func(i, j int) bool {
		if keywords[i].Score != keywords[j].Score {
			return keywords[i].Score > keywords[j].Score
		}
		return order[keywords[i].Word] < order[keywords[j].Word]
	})

	if len(keywords) > topK {
		keywords = keywords[:topK]
	}
	return keywords
}

// Jaccard is the set overlap of two token sets, 0 when either is empty.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for token := range a {
		if _, ok := b[token]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
