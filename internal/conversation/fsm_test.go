package conversation

import (
	"testing"
	"time"

	"telegram-vocab-reader/internal/domain/model"
)

func init() {
	fixed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	Clock = func() time.Time { return fixed }
	NewID = func() string { return "01HTESTGENERATION" }
}

const deck = "itinerary\tмаршрут\npassport\tпаспорт\n# comment\nluggage\tбагаж\nboarding\tпосадка\n"

func replyKey(t *testing.T, actions []Action) string {
	t.Helper()
	for _, a := range actions {
		if r, ok := a.(Reply); ok {
			return r.Key
		}
	}
	t.Fatalf("no reply in %#v", actions)
	return ""
}

func hasAction[T Action](actions []Action) bool {
	for _, a := range actions {
		if _, ok := a.(T); ok {
			return true
		}
	}
	return false
}

func TestFullFlowFromDocument(t *testing.T) {
	s := model.NewSession(42)

	s, acts := Transition(s, Document{Content: deck})
	if s.State != model.StateAwaitingColumn || replyKey(t, acts) != MsgAskColumn {
		t.Fatalf("after document: %s %v", s.State, acts)
	}

	s, acts = Transition(s, Text{Text: "1"})
	if s.State != model.StateAwaitingConfirmation {
		t.Fatalf("after column: %s", s.State)
	}
	if len(s.Words) != 4 || s.Words[0] != "itinerary" {
		t.Fatalf("words: %v", s.Words)
	}
	r := acts[0].(Reply)
	if r.Key != MsgPreviewFile || r.Args[0] != 4 {
		t.Fatalf("preview reply: %#v", r)
	}

	s, acts = Transition(s, Text{Text: "Yes"})
	if s.State != model.StateAwaitingLevel {
		t.Fatalf("after confirm: %s", s.State)
	}
	if kb := acts[0].(Reply).Keyboard; len(kb) != 2 || kb[0][0] != "C2" || kb[1][2] != "A1" {
		t.Fatalf("keyboard: %v", kb)
	}

	s, _ = Transition(s, Text{Text: "b1"})
	if s.State != model.StateAwaitingTopic || s.Level != model.LevelB1 {
		t.Fatalf("after level: %s %s", s.State, s.Level)
	}

	s, acts = Transition(s, Text{Text: "travel"})
	if s.State != model.StateGenerating || s.Topic != "travel" {
		t.Fatalf("after topic: %s %q", s.State, s.Topic)
	}
	g, ok := acts[0].(Generate)
	if !ok || g.GenerationID != "01HTESTGENERATION" || s.GenerationID != g.GenerationID {
		t.Fatalf("generate action: %#v", acts)
	}

	s, acts = Transition(s, GenerationFinished{GenerationID: g.GenerationID})
	if s.State != model.StateDone || !hasAction[Clear](acts) {
		t.Fatalf("after finish: %s %v", s.State, acts)
	}
}

func TestPastedListGoesStraightToConfirmation(t *testing.T) {
	s, acts := Transition(model.NewSession(1), Text{Text: "itinerary\npassport\nof\nluggage"})
	if s.State != model.StateAwaitingConfirmation {
		t.Fatalf("state: %s", s.State)
	}
	if replyKey(t, acts) != MsgPreviewPaste {
		t.Fatalf("reply: %v", acts)
	}
	for _, w := range s.Words {
		if w == "of" {
			t.Fatalf("short word kept: %v", s.Words)
		}
	}
}

func TestPastedDeckKeepsFrontColumn(t *testing.T) {
	s, _ := Transition(model.NewSession(1), Text{Text: "#separator:tab\nitinerary\tplan of travel\nluggage\tbags"})
	if s.State != model.StateAwaitingConfirmation {
		t.Fatalf("state: %s", s.State)
	}
	if len(s.Words) != 2 || s.Words[0] != "itinerary" || s.Words[1] != "luggage" {
		t.Fatalf("words: %v", s.Words)
	}
}

func TestSingleLineAsksForList(t *testing.T) {
	s, acts := Transition(model.NewSession(1), Text{Text: "hello"})
	if s.State != model.StateAwaitingInput || replyKey(t, acts) != MsgSendList {
		t.Fatalf("got %s %v", s.State, acts)
	}
}

func TestFunctionWordsOnlyNeverAdvance(t *testing.T) {
	s, acts := Transition(model.NewSession(1), Text{Text: "ab\nto\nof"})
	if s.State != model.StateAwaitingInput || replyKey(t, acts) != MsgNoVocabulary {
		t.Fatalf("got %s %v", s.State, acts)
	}
}

func TestColumnErrorsKeepState(t *testing.T) {
	s, _ := Transition(model.NewSession(1), Document{Content: deck})

	cases := []struct {
		in   string
		want string
	}{
		{"abc", MsgColumnNotNumber},
		{"0", MsgColumnNotNumber},
		{"-2", MsgColumnNotNumber},
		{"5", MsgColumnEmpty},
	}
	for _, tc := range cases {
		next, acts := Transition(s, Text{Text: tc.in})
		if next.State != model.StateAwaitingColumn {
			t.Fatalf("%q: state %s", tc.in, next.State)
		}
		if got := replyKey(t, acts); got != tc.want {
			t.Fatalf("%q: reply %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestEmptyDocumentAsksForAnotherList(t *testing.T) {
	for _, content := range []string{"", "\n\n", "# deck: travel\n# notetype: Basic\n"} {
		s, acts := Transition(model.NewSession(1), Document{Content: content})
		if s.State != model.StateAwaitingInput || s.RawText != "" {
			t.Fatalf("%q: state %s raw %q", content, s.State, s.RawText)
		}
		if got := replyKey(t, acts); got != MsgNoVocabulary {
			t.Fatalf("%q: reply %s", content, got)
		}
	}
}

func TestRejectedPreviewStartsOver(t *testing.T) {
	s, _ := Transition(model.NewSession(1), Text{Text: "itinerary\npassport"})
	s, acts := Transition(s, Text{Text: "no"})
	if s.State != model.StateAwaitingInput || len(s.Words) != 0 {
		t.Fatalf("got %s %v", s.State, s.Words)
	}
	if !hasAction[Clear](acts) || replyKey(t, acts) != MsgStartOver {
		t.Fatalf("actions: %v", acts)
	}
}

func TestConfirmationWords(t *testing.T) {
	for _, w := range []string{"yes", "Y", "да", "Sí", "si"} {
		s, _ := Transition(model.NewSession(1), Text{Text: "itinerary\npassport"})
		s, _ = Transition(s, Text{Text: w})
		if s.State != model.StateAwaitingLevel {
			t.Fatalf("%q did not confirm: %s", w, s.State)
		}
	}
}

func TestMalformedLevelStaysAndResendsKeyboard(t *testing.T) {
	s := model.NewSession(1)
	s.State = model.StateAwaitingLevel
	s.Words = []string{"itinerary"}

	for _, in := range []string{"D1", "", "C 1", "level B1"} {
		next, acts := Transition(s, Text{Text: in})
		if next.State != model.StateAwaitingLevel || next.Level != "" {
			t.Fatalf("%q advanced to %s", in, next.State)
		}
		r := acts[0].(Reply)
		if r.Key != MsgUnknownLevel || len(r.Keyboard) != 2 {
			t.Fatalf("%q reply: %#v", in, r)
		}
	}
}

func TestEmptyTopicRejected(t *testing.T) {
	s := model.NewSession(1)
	s.State = model.StateAwaitingTopic
	s.Level = model.LevelA1
	next, acts := Transition(s, Text{Text: "   "})
	if next.State != model.StateAwaitingTopic || hasAction[Generate](acts) {
		t.Fatalf("got %s %v", next.State, acts)
	}
}

func generating() model.Session {
	s := model.NewSession(7)
	s.State = model.StateGenerating
	s.Level = model.LevelC2
	s.Topic = "history"
	s.Words = []string{"sovereignty"}
	s.GenerationID = "gen-1"
	return s
}

func TestGeneratingIgnoresInput(t *testing.T) {
	s := generating()
	for _, ev := range []Event{Text{Text: "hurry"}, Document{Content: deck}, Start{}} {
		next, acts := Transition(s, ev)
		if next.State != model.StateGenerating || replyKey(t, acts) != MsgStillWorking {
			t.Fatalf("%T: %s %v", ev, next.State, acts)
		}
	}
}

func TestStaleGenerationEventsIgnored(t *testing.T) {
	s := generating()
	for _, ev := range []Event{GenerationFinished{GenerationID: "old"}, GenerationFailed{GenerationID: "old"}} {
		next, acts := Transition(s, ev)
		if next.State != model.StateGenerating || len(acts) != 0 {
			t.Fatalf("%T: %s %v", ev, next.State, acts)
		}
	}

	idle := model.NewSession(7)
	next, acts := Transition(idle, GenerationFinished{GenerationID: "gen-1"})
	if next.State != model.StateAwaitingInput || len(acts) != 0 {
		t.Fatalf("finished on idle session: %s %v", next.State, acts)
	}
}

func TestGenerationFailureReturnsToTopic(t *testing.T) {
	next, acts := Transition(generating(), GenerationFailed{GenerationID: "gen-1"})
	if next.State != model.StateAwaitingTopic {
		t.Fatalf("state: %s", next.State)
	}
	if next.Level != model.LevelC2 || len(next.Words) != 1 || next.GenerationID != "" {
		t.Fatalf("session not kept for retry: %+v", next)
	}
	if replyKey(t, acts) != MsgGenerationRetry {
		t.Fatalf("reply: %v", acts)
	}
}

func TestCancelClearsAnywhere(t *testing.T) {
	for _, st := range []model.State{model.StateAwaitingColumn, model.StateAwaitingLevel, model.StateGenerating} {
		s := model.NewSession(3)
		s.State = st
		s.Words = []string{"x"}
		next, acts := Transition(s, Cancel{})
		if next.State != model.StateAwaitingInput || len(next.Words) != 0 || !hasAction[Clear](acts) {
			t.Fatalf("%s: %+v %v", st, next, acts)
		}
	}
}

func TestTransitionStampsUpdatedAt(t *testing.T) {
	s := model.NewSession(1)
	s.UpdatedAt = time.Time{}
	next, _ := Transition(s, Start{})
	if !next.UpdatedAt.Equal(Clock()) {
		t.Fatalf("updated at %v", next.UpdatedAt)
	}
}
