// Package vocab turns uploaded word lists into a filtered vocabulary.
package vocab

import (
	"fmt"
	"strings"

	"telegram-vocab-reader/internal/domain"
)

// PreviewSize is how many words the confirmation preview shows.
const PreviewSize = 10

// ParseColumn extracts the 1-based column from tab-delimited text.
// Blank and '#' comment lines are skipped, as are rows too short for the column.
func ParseColumn(text string, column int) ([]string, error) {
	if column < 1 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidColumn, column)
	}
	var words []string
	for _, line := range splitLines(text) {
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) < column {
			continue
		}
		if w := strings.TrimSpace(parts[column-1]); w != "" {
			words = append(words, w)
		}
	}
	return words, nil
}

// ParseAnkiExport returns the first column of an Anki text export,
// skipping headers, deck names and media links.
func ParseAnkiExport(text string) []string {
	var words []string
	for _, line := range splitLines(text) {
		if line == "" || strings.HasPrefix(line, "#") || strings.Contains(line, "Anki") || strings.Contains(line, "http") {
			continue
		}
		parts := strings.Split(line, "\t")
		if w := strings.TrimSpace(parts[0]); w != "" {
			words = append(words, w)
		}
	}
	return words
}

// ParseLines treats every non-empty line as one word or phrase.
func ParseLines(text string) []string {
	var words []string
	for _, line := range splitLines(text) {
		if line != "" {
			words = append(words, line)
		}
	}
	return words
}

// Columns returns the widest tab-delimited row in text.
func Columns(text string) int {
	max := 0
	for _, line := range splitLines(text) {
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if n := strings.Count(line, "\t") + 1; n > max {
			max = n
		}
	}
	return max
}

// Preview joins the first PreviewSize words, with an ellipsis when there are more.
func Preview(words []string) string {
	if len(words) <= PreviewSize {
		return strings.Join(words, ", ")
	}
	return strings.Join(words[:PreviewSize], ", ") + "..."
}

func splitLines(text string) []string {
	text = strings.TrimPrefix(text, "\ufeff")
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		out = append(out, strings.TrimSpace(strings.TrimRight(l, "\r")))
	}
	return out
}
