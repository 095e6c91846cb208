// Package conversation models the chat flow as a pure state machine:
// Transition(session, event) returns the next session and the actions to run.
package conversation

import (
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"telegram-vocab-reader/internal/domain/model"
	"telegram-vocab-reader/internal/vocab"
)

// Message keys, resolved by the i18n catalogue.
const (
	MsgWelcome         = "welcome"
	MsgAskColumn       = "ask_column"
	MsgColumnNotNumber = "column_not_number"
	MsgColumnEmpty     = "column_empty"
	MsgPreviewFile     = "preview_file"
	MsgPreviewPaste    = "preview_paste"
	MsgStartOver       = "start_over"
	MsgAskLevel        = "ask_level"
	MsgUnknownLevel    = "unknown_level"
	MsgAskTopic        = "ask_topic"
	MsgEmptyTopic      = "empty_topic"
	MsgStillWorking    = "still_working"
	MsgGenerationRetry = "generation_retry"
	MsgDone            = "done"
	MsgCancelled       = "cancelled"
	MsgSendList        = "send_list"
	MsgNoVocabulary    = "no_vocabulary"
)

var confirmWords = map[string]struct{}{
	"yes": {}, "y": {}, "да": {}, "sí": {}, "si": {},
}

// Clock and NewID are swapped in tests.
var (
	Clock = time.Now
	NewID = func() string { return ulid.Make().String() }
)

// LevelKeyboard is the two-row reply keyboard for level selection.
func LevelKeyboard() [][]string {
	levels := model.AllLevels()
	rows := [][]string{{}, {}}
	for i, l := range levels {
		rows[i/3] = append(rows[i/3], l.String())
	}
	return rows
}

// Transition computes the next session and actions. It never performs I/O.
func Transition(s model.Session, ev Event) (model.Session, []Action) {
	next, actions := transition(s, ev)
	next.UpdatedAt = Clock()
	return next, actions
}

func transition(s model.Session, ev Event) (model.Session, []Action) {
	switch e := ev.(type) {
	case Cancel:
		return reset(s), []Action{Clear{}, Reply{Key: MsgCancelled, RemoveKeyboard: true}}
	case Start:
		if s.State == model.StateGenerating {
			return s, []Action{Reply{Key: MsgStillWorking}}
		}
		return reset(s), []Action{Clear{}, Reply{Key: MsgWelcome, RemoveKeyboard: true}}
	case Document:
		if s.State == model.StateGenerating {
			return s, []Action{Reply{Key: MsgStillWorking}}
		}
		cols := vocab.Columns(e.Content)
		if cols == 0 {
			return s, []Action{Reply{Key: MsgNoVocabulary}}
		}
		n := reset(s)
		n.RawText = e.Content
		n.State = model.StateAwaitingColumn
		return n, []Action{Reply{Key: MsgAskColumn, Args: []any{cols}, RemoveKeyboard: true}}
	case GenerationFinished:
		if s.State != model.StateGenerating || s.GenerationID != e.GenerationID {
			return s, nil
		}
		n := s
		n.State = model.StateDone
		return n, []Action{Clear{}, Reply{Key: MsgDone}}
	case GenerationFailed:
		if s.State != model.StateGenerating || s.GenerationID != e.GenerationID {
			return s, nil
		}
		n := s
		n.State = model.StateAwaitingTopic
		n.Topic = ""
		n.GenerationID = ""
		return n, []Action{Reply{Key: MsgGenerationRetry}}
	case Text:
		return onText(s, strings.TrimSpace(e.Text))
	}
	return s, nil
}

func onText(s model.Session, text string) (model.Session, []Action) {
	switch s.State {
	case model.StateAwaitingColumn:
		col, err := strconv.Atoi(text)
		if err != nil {
			return s, []Action{Reply{Key: MsgColumnNotNumber}}
		}
		raw, err := vocab.ParseColumn(s.RawText, col)
		if err != nil {
			return s, []Action{Reply{Key: MsgColumnNotNumber}}
		}
		if len(raw) == 0 {
			return s, []Action{Reply{Key: MsgColumnEmpty}}
		}
		lang := vocab.DetectLanguage(raw)
		words := vocab.Filter(raw, lang)
		if len(words) == 0 {
			return s, []Action{Reply{Key: MsgColumnEmpty}}
		}
		n := s
		n.Column = col
		n.Language = lang
		n.Words = words
		n.State = model.StateAwaitingConfirmation
		return n, []Action{Reply{Key: MsgPreviewFile, Args: []any{len(words), vocab.Preview(words)}}}

	case model.StateAwaitingConfirmation:
		if _, ok := confirmWords[strings.ToLower(text)]; ok {
			n := s
			n.State = model.StateAwaitingLevel
			return n, []Action{Reply{Key: MsgAskLevel, Keyboard: LevelKeyboard()}}
		}
		return reset(s), []Action{Clear{}, Reply{Key: MsgStartOver, RemoveKeyboard: true}}

	case model.StateAwaitingLevel:
		lvl, err := model.ParseLevel(text)
		if err != nil {
			return s, []Action{Reply{Key: MsgUnknownLevel, Keyboard: LevelKeyboard()}}
		}
		n := s
		n.Level = lvl
		n.State = model.StateAwaitingTopic
		return n, []Action{Reply{Key: MsgAskTopic, Args: []any{lvl.String()}, RemoveKeyboard: true}}

	case model.StateAwaitingTopic:
		if text == "" {
			return s, []Action{Reply{Key: MsgEmptyTopic}}
		}
		n := s
		n.Topic = text
		n.GenerationID = NewID()
		n.State = model.StateGenerating
		return n, []Action{Generate{GenerationID: n.GenerationID}}

	case model.StateGenerating:
		return s, []Action{Reply{Key: MsgStillWorking}}
	}

	// awaiting_input, done, or a fresh session: only a pasted list moves forward.
	if !strings.Contains(text, "\n") {
		return s, []Action{Reply{Key: MsgSendList}}
	}
	raw := vocab.ParseLines(text)
	if strings.Contains(text, "\t") {
		// A pasted deck export: keep the front of each card.
		raw = vocab.ParseAnkiExport(text)
	}
	lang := vocab.DetectLanguage(raw)
	words := vocab.Filter(raw, lang)
	if len(words) == 0 {
		return s, []Action{Reply{Key: MsgNoVocabulary}}
	}
	n := reset(s)
	n.Words = words
	n.Language = lang
	n.State = model.StateAwaitingConfirmation
	return n, []Action{Reply{Key: MsgPreviewPaste, Args: []any{len(words), vocab.Preview(words)}}}
}

func reset(s model.Session) model.Session {
	n := model.NewSession(s.ChatID)
	n.CreatedAt = Clock()
	return n
}
