package vocab

import (
	"strings"

	"github.com/abadojack/whatlanggo"
)

// Supported languages, as short codes.
const (
	LangEnglish = "en"
	LangSpanish = "es"
	LangChinese = "zh"
)

var detectOptions = whatlanggo.Options{
	Whitelist: map[whatlanggo.Lang]bool{
		whatlanggo.Eng: true,
		whatlanggo.Spa: true,
		whatlanggo.Cmn: true,
	},
}

// DetectLanguage guesses the list language from its first ten words.
// Anything undetectable or unsupported falls back to English.
func DetectLanguage(words []string) string {
	sample := words
	if len(sample) > 10 {
		sample = sample[:10]
	}
	text := strings.TrimSpace(strings.Join(sample, " "))
	if text == "" {
		return LangEnglish
	}
	switch whatlanggo.DetectWithOptions(text, detectOptions).Lang {
	case whatlanggo.Spa:
		return LangSpanish
	case whatlanggo.Cmn:
		return LangChinese
	default:
		return LangEnglish
	}
}

// LanguageName is the English name used in prompts.
func LanguageName(code string) string {
	switch code {
	case LangSpanish:
		return "Spanish"
	case LangChinese:
		return "Chinese"
	default:
		return "English"
	}
}
