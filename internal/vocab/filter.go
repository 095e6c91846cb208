package vocab

import (
	"strings"
	"unicode/utf8"
)

var functionWords = map[string]map[string]struct{}{
	LangEnglish: set("a", "an", "the", "in", "on", "at", "to", "for", "of", "with", "by", "from",
		"have", "has", "had", "be", "is", "are", "was", "were", "been", "being",
		"do", "does", "did", "will", "would", "should", "could", "can", "may",
		"might", "must", "shall"),
	LangSpanish: set("el", "la", "los", "las", "un", "una", "de", "en", "a", "por", "para",
		"con", "sin", "ser", "estar", "haber", "tener", "hacer", "poder", "deber"),
	LangChinese: set("的", "了", "在", "是", "我", "有", "和", "人", "这", "中", "大", "为", "上", "个", "国"),
}

func set(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// IsFunctionWord reports whether w is a common word excluded from vocabulary.
func IsFunctionWord(w, lang string) bool {
	_, ok := functionWords[lang][strings.ToLower(strings.TrimSpace(w))]
	return ok
}

// Filter drops function words, very short tokens (except in Chinese) and
// case-insensitive duplicates. Original spelling and order are kept.
func Filter(words []string, lang string) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		key := strings.ToLower(w)
		if key == "" {
			continue
		}
		if lang != LangChinese && utf8.RuneCountInString(key) <= 2 {
			continue
		}
		if IsFunctionWord(key, lang) {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, w)
	}
	return out
}
