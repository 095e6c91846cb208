//go:build !integration

package i18n

import (
	"testing"
	"testing/fstest"
)

func TestTranslator(t *testing.T) {
	fsys := fstest.MapFS{
		"locales/test.yaml": {Data: []byte("greeting: hello\nwords_found: \"Found %d words: %s\"\n")},
	}
	translator, err := NewTranslator(fsys, "test")
	if err != nil {
		t.Fatalf("NewTranslator failed: %v", err)
	}

	t.Run("should translate a simple key", func(t *testing.T) {
		if got := translator.T("greeting"); got != "hello" {
			t.Errorf("wanted 'hello', got '%s'", got)
		}
	})

	t.Run("should return key if not found", func(t *testing.T) {
		if got := translator.T("nonexistent_key"); got != "nonexistent_key" {
			t.Errorf("wanted 'nonexistent_key', got '%s'", got)
		}
	})

	t.Run("should format arguments correctly", func(t *testing.T) {
		got := translator.T("words_found", 2, "travel, passport")
		want := "Found 2 words: travel, passport"
		if got != want {
			t.Errorf("wanted '%s', got '%s'", want, got)
		}
	})
}

func TestEmbeddedEnglishCatalogue(t *testing.T) {
	tr, err := NewTranslator(LocalesFS, "en")
	if err != nil {
		t.Fatalf("NewTranslator(en): %v", err)
	}
	for _, key := range []string{"welcome", "ask_column", "preview_file", "preview_paste", "ask_level",
		"unknown_level", "ask_topic", "still_working", "generation_retry", "done", "cancelled",
		"creating", "generating_audio", "used_words", "audio_caption", "audio_failed", "queue_full"} {
		if !tr.Has(key) {
			t.Errorf("missing key %q", key)
		}
	}
	if got := tr.T("audio_caption", 85); got != "🎧 Audio at 85% speed" {
		t.Errorf("audio caption: %q", got)
	}
	if got := tr.T("used_words", 2, "travel\npassport"); got != "✅ Used 2 vocabulary words:\ntravel\npassport" {
		t.Errorf("used words: %q", got)
	}
}

func TestMissingLocale(t *testing.T) {
	if _, err := NewTranslator(fstest.MapFS{}, "xx"); err == nil {
		t.Fatal("expected error for missing locale")
	}
}
