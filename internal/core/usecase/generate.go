package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/campusworks/admissions-assistant/internal/core/domain"
	"github.com/campusworks/admissions-assistant/internal/core/ports"
	"github.com/campusworks/admissions-assistant/internal/core/textproc"
)

var (
	gradePattern = regexp.MustCompile(`\d+(?:\.\d+)?\s*%`)
	feePattern   = regexp.MustCompile(`(?i)\d[\d,.]*\s*(?:iqd|دينار)`)
)

// Generator produces the final answer. Providers are tried in order: the
// completion backend (when enabled), then the deterministic template
// formatter, then the fixed no-information message. Nothing past this point
// surfaces an error to the caller.
type Generator struct {
	completions ports.CompletionProvider
	enabled     bool
	logger      *slog.Logger
}

func NewGenerator(completions ports.CompletionProvider, enabled bool, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		completions: completions,
		enabled:     enabled && completions != nil,
		logger:      logger,
	}
}

// Generate returns the response text and the generation method marker.
func (g *Generator) Generate(ctx context.Context, query string, results []domain.SearchResult, lang domain.Language, kind domain.PromptKind) (string, string) {
	if len(results) == 0 {
		return noInformationMessage(lang), domain.GenerationFallback
	}

	if g.enabled {
		answer, err := g.completions.Complete(ctx, systemPrompt(kind, lang), userPrompt(query, results, lang))
		if err == nil && strings.TrimSpace(answer) != "" {
			return strings.TrimSpace(answer), domain.GenerationLLM
		}
		if err != nil {
			g.logger.Warn("completion backend failed, using template fallback", "error", err)
		}
	}

	return templateResponse(query, results, lang), domain.GenerationFallback
}

type queryIntent int

const (
	intentGeneric queryIntent = iota
	intentAdmission
	intentFee
	intentComparison
)

func detectIntent(query string) queryIntent {
	set := textproc.TokenSet(query)
	comparison := []string{
		"compare", "comparison", "versus", "better", "difference",
		"قارن", "مقارنة", "أفضل", "افضل", "الفرق",
	}
	if containsAny(set, comparison) {
		return intentComparison
	}
	if containsAny(set, feeVocabulary) {
		return intentFee
	}
	if containsAny(set, admissionVocabulary) {
		return intentAdmission
	}
	return intentGeneric
}

// templateResponse assembles a deterministic bulleted answer from up to the
// top three documents, extracting grade and fee figures by pattern.
func templateResponse(query string, results []domain.SearchResult, lang domain.Language) string {
	intent := detectIntent(query)
	top := results
	if len(top) > 3 {
		top = top[:3]
	}

	var b strings.Builder
	b.WriteString(templateHeading(intent, lang))
	for _, result := range top {
		b.WriteString("\n• ")
		b.WriteString(templateLine(result.Document, intent, lang))
	}
	return b.String()
}

func templateHeading(intent queryIntent, lang domain.Language) string {
	if lang == domain.LanguageArabic {
		switch intent {
		case intentFee:
			return "الأقساط الدراسية:"
		case intentAdmission:
			return "شروط القبول:"
		case intentComparison:
			return "مقارنة بين الأقسام:"
		default:
			return "إليك ما وجدته:"
		}
	}
	switch intent {
	case intentFee:
		return "Tuition fees:"
	case intentAdmission:
		return "Admission requirements:"
	case intentComparison:
		return "Comparison:"
	default:
		return "Here is what I found:"
	}
}

func templateLine(doc domain.Document, intent queryIntent, lang domain.Language) string {
	name := doc.Metadata["department"]
	if lang == domain.LanguageArabic && doc.Metadata["department_localized"] != "" {
		name = doc.Metadata["department_localized"]
	}

	var figures []string
	switch intent {
	case intentFee:
		figures = feePattern.FindAllString(doc.Content, 2)
	case intentAdmission:
		figures = gradePattern.FindAllString(doc.Content, 2)
	default:
		figures = append(gradePattern.FindAllString(doc.Content, 1), feePattern.FindAllString(doc.Content, 1)...)
	}

	if name != "" && len(figures) > 0 {
		return fmt.Sprintf("%s: %s", name, strings.Join(figures, ", "))
	}
	if name != "" {
		return fmt.Sprintf("%s: %s", name, truncateSentence(doc.Content))
	}
	return truncateSentence(doc.Content)
}

func truncateSentence(content string) string {
	if idx := strings.IndexAny(content, ".!?"); idx > 0 {
		return content[:idx+1]
	}
	return content
}

// confidenceScore rewards a strong top result, consistently scored results,
// and longer (more specific) queries; always within [0, 1], zero when
// nothing was retrieved.
func confidenceScore(query string, results []domain.SearchResult) float64 {
	if len(results) == 0 {
		return 0
	}

	top := results[0].Score
	sum := 0.0
	for _, result := range results {
		sum += result.Score
	}
	avg := sum / float64(len(results))

	score := clamp01(top*2) * clamp01(avg*5) * clamp01(float64(len(query))/20)
	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
