package tts

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxRequestBytes keeps each synthesis request under the 5000-byte input limit.
const MaxRequestBytes = 4800

var tagRe = regexp.MustCompile(`<[^<]+?>`)

// StripTags removes markup so it is not read aloud.
func StripTags(s string) string {
	return strings.TrimSpace(tagRe.ReplaceAllString(s, ""))
}

// SplitChunks cuts text into pieces of at most max bytes, preferring sentence
// ends, then whitespace. Runes are never split.
func SplitChunks(text string, max int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if max <= 0 || len(text) <= max {
		return []string{text}
	}

	var chunks []string
	var cur strings.Builder
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			chunks = append(chunks, s)
		}
		cur.Reset()
	}
	for _, sent := range sentences(text) {
		if len(sent) > max {
			flush()
			chunks = append(chunks, hardSplit(sent, max)...)
			continue
		}
		if cur.Len()+len(sent) > max {
			flush()
		}
		cur.WriteString(sent)
	}
	flush()
	return chunks
}

// sentences splits after . ! ? and their CJK forms, keeping the delimiter and
// any following spaces with the sentence.
func sentences(text string) []string {
	var out []string
	start := 0
	for i, r := range text {
		if !strings.ContainsRune(".!?。！？\n", r) {
			continue
		}
		end := i + utf8.RuneLen(r)
		for end < len(text) {
			next, size := utf8.DecodeRuneInString(text[end:])
			if !unicode.IsSpace(next) {
				break
			}
			end += size
		}
		if end > start {
			out = append(out, text[start:end])
			start = end
		}
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}

func hardSplit(s string, max int) []string {
	var out []string
	for len(s) > max {
		cut := strings.LastIndexFunc(s[:max], unicode.IsSpace)
		if cut <= 0 {
			cut = max
			for cut > 0 && !utf8.RuneStart(s[cut]) {
				cut--
			}
		}
		out = append(out, strings.TrimSpace(s[:cut]))
		s = strings.TrimSpace(s[cut:])
	}
	if s != "" {
		out = append(out, s)
	}
	return out
}
