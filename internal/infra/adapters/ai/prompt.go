package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"telegram-vocab-reader/internal/domain"
	"telegram-vocab-reader/internal/domain/model"
	"telegram-vocab-reader/internal/domain/ports/adapter"
	"telegram-vocab-reader/internal/vocab"
)

// MaxPromptWords caps how many vocabulary words are sent to the model.
const MaxPromptWords = 30

const c2Instruction = `Write a sophisticated, academically rigorous text that offers:
- critical analysis and nuanced argument
- theoretical or philosophical depth
- several perspectives, including counterarguments
- insight beyond a surface-level explanation
Do not write an introductory overview; assume the reader already knows the topic.`

// BuildPrompt returns the system and user messages for req.
func BuildPrompt(req adapter.GenerationRequest) []adapter.Message {
	lang := vocab.LanguageName(req.Language)
	policy := req.Level.Policy()

	complexity := fmt.Sprintf("Write an engaging text appropriate for CEFR level %s.", req.Level)
	if req.Level == model.LevelC2 {
		complexity = c2Instruction
	}

	words := req.Words
	if len(words) > MaxPromptWords {
		words = words[:MaxPromptWords]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Write a %d-word text in %s about: %s\n\n", policy.WordCount, lang, req.Topic)
	b.WriteString(complexity)
	b.WriteString("\n\nVocabulary to work in naturally (use as many as fit, natural writing comes first):\n")
	b.WriteString(strings.Join(words, ", "))
	b.WriteString(`

Rules:
1. Content quality matters more than the number of vocabulary words used.
2. Words may change tense or form, and phrases may be adapted (e.g. "get things on track" -> "got their life on track").
3. Keep the text coherent and on topic.
4. Reply with JSON only, exactly in this shape:
{"text": "the full text", "words_used": ["word1", "word2"]}`)

	return []adapter.Message{
		{Role: "system", Content: fmt.Sprintf("You are an expert %s content writer. Reply with valid JSON only.", lang)},
		{Role: "user", Content: b.String()},
	}
}

type reply struct {
	Text      string   `json:"text"`
	WordsUsed []string `json:"words_used"`
}

// ParseReply decodes the model output. It accepts a bare JSON object or the
// outermost {...} block inside surrounding prose or code fences.
func ParseReply(raw string) (text string, wordsUsed []string, err error) {
	raw = strings.TrimSpace(raw)
	var r reply
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}")
		if start < 0 || end <= start {
			return "", nil, fmt.Errorf("%w: no JSON object in reply", domain.ErrMalformedReply)
		}
		if err := json.Unmarshal([]byte(raw[start:end+1]), &r); err != nil {
			return "", nil, fmt.Errorf("%w: %v", domain.ErrMalformedReply, err)
		}
	}
	r.Text = strings.TrimSpace(r.Text)
	if r.Text == "" {
		return "", nil, domain.ErrEmptyGeneration
	}
	used := r.WordsUsed[:0]
	for _, w := range r.WordsUsed {
		if w = strings.TrimSpace(w); w != "" {
			used = append(used, w)
		}
	}
	return r.Text, used, nil
}
