package usecase

import (
	"math"
	"sort"
	"strings"

	"github.com/campusworks/admissions-assistant/internal/core/domain"
	"github.com/campusworks/admissions-assistant/internal/core/textproc"
)

const (
	rerankWeightOriginal = 0.50
	rerankWeightOverlap  = 0.20
	rerankWeightPosition = 0.15
	rerankWeightType     = 0.10
	rerankWeightLength   = 0.05

	idealDocumentLength = 200
)

var feeVocabulary = []string{
	"fee", "fees", "cost", "costs", "tuition", "price", "pay", "payment",
	"قسط", "اقساط", "أقساط", "القسط", "الاقساط", "الأقساط", "سعر", "تكلفة",
}

var admissionVocabulary = []string{
	"admission", "admissions", "requirement", "requirements", "grade",
	"grades", "apply", "application", "minimum", "accept", "accepted",
	"قبول", "القبول", "معدل", "المعدل", "تقديم", "التقديم", "شروط",
}

var departmentVocabulary = []string{
	"department", "departments", "college", "study", "studies", "major",
	"قسم", "القسم", "الأقسام", "كلية", "الكلية", "دراسة", "تخصص",
}

// rerankCandidates rescores an oversized candidate set with a deterministic
// multi-signal composite and truncates to k:
//
//	0.50 original score + 0.20 keyword overlap + 0.15 position boost
//	+ 0.10 type boost + 0.05 length decay
//
// The per-signal values are kept on each result for observability.
func rerankCandidates(query string, candidates []domain.SearchResult, k int) []domain.SearchResult {
	if len(candidates) == 0 {
		return candidates
	}
	if k <= 0 {
		k = len(candidates)
	}

	queryTokens := textproc.Tokenize(query)
	querySet := make(map[string]struct{}, len(queryTokens))
	for _, token := range queryTokens {
		querySet[token] = struct{}{}
	}

	out := make([]domain.SearchResult, len(candidates))
	copy(out, candidates)

	for i := range out {
		content := strings.ToLower(out[i].Document.Content)
		overlap := textproc.Jaccard(querySet, textproc.TokenSet(content))
		position := positionBoost(queryTokens, content)
		typeAffinity := typeBoost(querySet, out[i].Document.Type)
		length := lengthDecay(len(content))

		signals := map[string]float64{
			"original":        out[i].Score,
			"keyword_overlap": overlap,
			"position_boost":  position,
			"type_boost":      typeAffinity,
			"length_penalty":  length,
		}

		out[i].Score = rerankWeightOriginal*out[i].Score +
			rerankWeightOverlap*overlap +
			rerankWeightPosition*position +
			rerankWeightType*typeAffinity +
			rerankWeightLength*length
		out[i].RerankSignals = signals
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Document.ID < out[j].Document.ID
	})

	return trimResults(out, k)
}

// positionBoost rewards query terms that appear early in the document,
// averaged over all query terms; terms absent from the document contribute
// nothing.
func positionBoost(queryTokens []string, content string) float64 {
	if len(queryTokens) == 0 || content == "" {
		return 0
	}
	total := 0.0
	for _, token := range queryTokens {
		idx := strings.Index(content, token)
		if idx < 0 {
			continue
		}
		total += 1 - float64(idx)/float64(len(content))
	}
	return total / float64(len(queryTokens))
}

// typeBoost matches query vocabulary against document-type semantics: fee
// and admission wording earn the full boost for their types, generic
// department wording a smaller one.
func typeBoost(querySet map[string]struct{}, docType domain.DocumentType) float64 {
	switch docType {
	case domain.TypeFee:
		if containsAny(querySet, feeVocabulary) {
			return 0.3
		}
	case domain.TypeAdmission:
		if containsAny(querySet, admissionVocabulary) {
			return 0.3
		}
	case domain.TypeDepartment:
		if containsAny(querySet, departmentVocabulary) {
			return 0.2
		}
	}
	return 0
}

// lengthDecay decays away from the ideal document length on both sides.
func lengthDecay(length int) float64 {
	return math.Exp(-math.Abs(float64(length-idealDocumentLength)) / idealDocumentLength)
}

func containsAny(set map[string]struct{}, vocabulary []string) bool {
	for _, word := range vocabulary {
		if _, ok := set[word]; ok {
			return true
		}
	}
	return false
}
