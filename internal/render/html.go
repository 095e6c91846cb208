// Package render builds the HTML reading document with highlighted vocabulary.
package render

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// HighlightClass is the CSS class carried by every highlighted word.
const HighlightClass = "vocab"

var page = template.Must(template.New("text").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
body{font-family:Georgia,serif;line-height:1.8;max-width:800px;margin:40px auto;padding:20px;background-color:#f5f5f5;}
.content{background-color:white;padding:40px;border-radius:8px;box-shadow:0 2px 4px rgba(0,0,0,0.1);}
b.vocab{color:#2563eb;font-weight:600;}
p{margin-bottom:1.5em;}
</style>
</head>
<body>
<div class="content">
{{range .Paragraphs}}<p>{{.}}</p>
{{end}}</div>
</body>
</html>
`))

type span struct{ start, end int }

type matcher struct {
	word string
	re   *regexp.Regexp
	cjk  bool
}

// RenderHTML escapes text, wraps vocabulary occurrences and returns the page
// together with the vocabulary entries that were actually highlighted.
//
// Matching is case-insensitive. A Latin-script entry must start at a word
// boundary and absorbs trailing letters, so "travel" marks "travelling".
// Entries containing Han characters match anywhere. Longer entries win.
func RenderHTML(title, text string, vocab []string) (string, []string) {
	matchers := buildMatchers(vocab)
	hit := make(map[string]bool, len(matchers))

	var paragraphs []template.HTML
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		paragraphs = append(paragraphs, template.HTML(highlight(line, matchers, hit)))
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, struct {
		Title      string
		Paragraphs []template.HTML
	}{Title: title, Paragraphs: paragraphs}); err != nil {
		// The template is static; failure here means a programming error.
		panic(fmt.Sprintf("render: %v", err))
	}

	var highlighted []string
	for _, w := range uniqueWords(vocab) {
		if hit[strings.ToLower(w)] {
			highlighted = append(highlighted, w)
		}
	}
	return buf.String(), highlighted
}

func buildMatchers(vocab []string) []matcher {
	words := uniqueWords(vocab)
	sort.SliceStable(words, func(i, j int) bool {
		return utf8.RuneCountInString(words[i]) > utf8.RuneCountInString(words[j])
	})
	out := make([]matcher, 0, len(words))
	for _, w := range words {
		cjk := hasHan(w)
		expr := `(?i)` + regexp.QuoteMeta(w)
		if !cjk {
			expr += `[\p{L}\p{M}\p{N}]*`
		}
		out = append(out, matcher{word: w, re: regexp.MustCompile(expr), cjk: cjk})
	}
	return out
}

func highlight(line string, matchers []matcher, hit map[string]bool) string {
	var taken []span
	for _, m := range matchers {
		for _, loc := range m.re.FindAllStringIndex(line, -1) {
			s := span{loc[0], loc[1]}
			if !m.cjk && !wordStart(line, s.start) {
				continue
			}
			if overlaps(taken, s) {
				continue
			}
			taken = append(taken, s)
			hit[strings.ToLower(m.word)] = true
		}
	}
	sort.Slice(taken, func(i, j int) bool { return taken[i].start < taken[j].start })

	var b strings.Builder
	prev := 0
	for _, s := range taken {
		b.WriteString(html.EscapeString(line[prev:s.start]))
		b.WriteString(`<b class="` + HighlightClass + `">`)
		b.WriteString(html.EscapeString(line[s.start:s.end]))
		b.WriteString(`</b>`)
		prev = s.end
	}
	b.WriteString(html.EscapeString(line[prev:]))
	return b.String()
}

func wordStart(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !(unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r))
}

func overlaps(taken []span, s span) bool {
	for _, t := range taken {
		if s.start < t.end && t.start < s.end {
			return true
		}
	}
	return false
}

func hasHan(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

func uniqueWords(vocab []string) []string {
	seen := make(map[string]struct{}, len(vocab))
	out := make([]string, 0, len(vocab))
	for _, w := range vocab {
		w = strings.TrimSpace(w)
		k := strings.ToLower(w)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, w)
	}
	return out
}

// CountMarkers returns how many highlight tags an HTML document carries.
func CountMarkers(doc string) int {
	return strings.Count(doc, `<b class="`+HighlightClass+`">`)
}
