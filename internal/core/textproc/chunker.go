package textproc

import "strings"

// ChunkText splits text into sentences, greedily packs them into chunks of
// at most maxLength characters, then prepends the last overlap/2 words of
// the previous chunk to every chunk after the first so retrieval keeps
// context across chunk boundaries. A single sentence longer than maxLength
// stays whole in its own chunk.
func ChunkText(text string, maxLength, overlap int) []string {
	if maxLength <= 0 {
		maxLength = 500
	}
	if overlap < 0 {
		overlap = 0
	}

	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	raw := make([]string, 0, len(sentences))
	var current strings.Builder
	for _, sentence := range sentences {
		if current.Len() > 0 && current.Len()+1+len(sentence) > maxLength {
			raw = append(raw, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(sentence)
	}
	if current.Len() > 0 {
		raw = append(raw, current.String())
	}

	if overlap == 0 || len(raw) < 2 {
		return raw
	}

	out := make([]string, len(raw))
	out[0] = raw[0]
	carry := overlap / 2
	for i := 1; i < len(raw); i++ {
		words := strings.Fields(raw[i-1])
		if len(words) > carry {
			words = words[len(words)-carry:]
		}
		out[i] = strings.TrimSpace(strings.Join(words, " ") + " " + raw[i])
	}
	return out
}

func splitSentences(text string) []string {
	out := make([]string, 0, 8)
	var b strings.Builder
	flush := func() {
		sentence := strings.TrimSpace(b.String())
		b.Reset()
		if sentence != "" {
			out = append(out, sentence)
		}
	}

	for _, r := range text {
		b.WriteRune(r)
		switch r {
		case '.', '!', '?':
			flush()
		}
	}
	flush()
	return out
}
