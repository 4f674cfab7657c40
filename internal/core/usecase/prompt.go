package usecase

import (
	"fmt"
	"strings"

	"github.com/campusworks/admissions-assistant/internal/core/domain"
)

// Prompt templates exist as full parallel variants per language and prompt
// kind; nothing is translated at runtime. The voice variants are shorter and
// ask for speakable answers without lists or markup.

const systemPromptStandardEN = `You are the admissions assistant of the university. Answer the student's question using only the retrieved context below. Quote grades, fees, and shift details exactly as they appear in the context. If the context does not contain the answer, say so plainly.`

const systemPromptVoiceEN = `You are the admissions assistant speaking with a student over voice. Answer in one or two short conversational sentences using only the retrieved context. No lists, no markup. If the context does not contain the answer, say so.`

const systemPromptStandardAR = `أنت مساعد القبول في الجامعة. أجب عن سؤال الطالب باستخدام السياق المسترجع أدناه فقط. انقل المعدلات والأقساط وتفاصيل الدوام كما وردت في السياق حرفياً. إذا لم يحتوِ السياق على الإجابة فوضح ذلك بصراحة.`

const systemPromptVoiceAR = `أنت مساعد القبول تتحدث مع طالب صوتياً. أجب بجملة أو جملتين قصيرتين بأسلوب محادثة باستخدام السياق المسترجع فقط، دون قوائم أو تنسيق. إذا لم يحتوِ السياق على الإجابة فوضح ذلك.`

const noInformationEN = "I could not find information about that in the admissions knowledge base. Please ask about departments, admission requirements, or tuition fees."

const noInformationAR = "لم أجد معلومات حول ذلك في قاعدة بيانات القبول. يرجى السؤال عن الأقسام أو شروط القبول أو الأقساط الدراسية."

const apologyEN = "Sorry, something went wrong while answering your question. Please try again."

const apologyAR = "عذراً، حدث خطأ أثناء الإجابة على سؤالك. يرجى المحاولة مرة أخرى."

func systemPrompt(kind domain.PromptKind, lang domain.Language) string {
	if lang == domain.LanguageArabic {
		if kind == domain.PromptVoice {
			return systemPromptVoiceAR
		}
		return systemPromptStandardAR
	}
	if kind == domain.PromptVoice {
		return systemPromptVoiceEN
	}
	return systemPromptStandardEN
}

// userPrompt embeds the numbered retrieved context and the literal query.
// Relevant history shapes the query upstream (rewrite) and is deliberately
// not injected here.
func userPrompt(query string, results []domain.SearchResult, lang domain.Language) string {
	var context strings.Builder
	for i, result := range results {
		fmt.Fprintf(&context, "[%d] (%s) %s\n", i+1, result.Document.Type, result.Document.Content)
	}

	if lang == domain.LanguageArabic {
		return fmt.Sprintf("السياق المسترجع:\n%s\nسؤال الطالب: %s", context.String(), query)
	}
	return fmt.Sprintf("Retrieved context:\n%s\nStudent question: %s", context.String(), query)
}

func noInformationMessage(lang domain.Language) string {
	if lang == domain.LanguageArabic {
		return noInformationAR
	}
	return noInformationEN
}

func apologyMessage(lang domain.Language) string {
	if lang == domain.LanguageArabic {
		return apologyAR
	}
	return apologyEN
}
