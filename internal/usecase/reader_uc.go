// File: internal/usecase/reader_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"telegram-vocab-reader/internal/conversation"
	"telegram-vocab-reader/internal/domain"
	"telegram-vocab-reader/internal/domain/model"
	"telegram-vocab-reader/internal/domain/ports/adapter"
	"telegram-vocab-reader/internal/domain/ports/repository"
	"telegram-vocab-reader/internal/infra/logging"
	"telegram-vocab-reader/internal/infra/metrics"
	"telegram-vocab-reader/internal/infra/storage"
	"telegram-vocab-reader/internal/infra/worker"
	"telegram-vocab-reader/internal/render"
)

// Compile-time check
var _ ReaderUseCase = (*readerUC)(nil)

// ReaderUseCase drives one chat through the vocabulary-to-reading flow.
type ReaderUseCase interface {
	HandleEvent(ctx context.Context, chatID int64, ev conversation.Event) error
}

// Translator resolves message keys.
type Translator interface {
	T(key string, args ...interface{}) string
}

// JobQueue runs generation jobs in the background.
type JobQueue interface {
	Submit(task worker.Task) error
}

// Output file names shown to the user.
const (
	DocumentName = "text.html"
	AudioName    = "audio.mp3"

	captionLimit = 1024
)

type ReaderConfig struct {
	GenerationTimeout time.Duration
	NarrationTimeout  time.Duration
	SessionTTL        time.Duration
	LockTTL           time.Duration
}

type readerUC struct {
	sessions  repository.SessionStore
	locker    repository.Locker
	records   repository.GenerationRepository
	generator adapter.TextGenerator
	narrator  adapter.Narrator
	messenger adapter.Messenger
	archive   adapter.ArtifactStore
	jobs      JobQueue
	t         Translator
	cfg       ReaderConfig
	log       *zerolog.Logger
	now       func() time.Time
}

type ReaderDeps struct {
	Sessions  repository.SessionStore
	Locker    repository.Locker
	Records   repository.GenerationRepository
	Generator adapter.TextGenerator
	Narrator  adapter.Narrator
	Messenger adapter.Messenger
	Archive   adapter.ArtifactStore // optional
	Jobs      JobQueue
	T         Translator
}

func NewReaderUseCase(d ReaderDeps, cfg ReaderConfig, logger *zerolog.Logger) *readerUC {
	if cfg.GenerationTimeout <= 0 {
		cfg.GenerationTimeout = 90 * time.Second
	}
	if cfg.NarrationTimeout <= 0 {
		cfg.NarrationTimeout = 120 * time.Second
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &readerUC{
		sessions:  d.Sessions,
		locker:    d.Locker,
		records:   d.Records,
		generator: d.Generator,
		narrator:  d.Narrator,
		messenger: d.Messenger,
		archive:   d.Archive,
		jobs:      d.Jobs,
		t:         d.T,
		cfg:       cfg,
		log:       logger,
		now:       time.Now,
	}
}

func lockKey(chatID int64) string { return fmt.Sprintf("lock:chat:%d", chatID) }

// HandleEvent runs one event through the state machine under the chat lock,
// persists the result, then performs the resulting actions.
func (uc *readerUC) HandleEvent(ctx context.Context, chatID int64, ev conversation.Event) error {
	ctx = logging.WithChatID(ctx, chatID)
	log := logging.With(ctx, uc.log)
	defer logging.TraceDuration(log, "ReaderUC.HandleEvent")()

	err := uc.handle(ctx, chatID, ev)
	if errors.Is(err, domain.ErrSessionBusy) {
		return uc.messenger.SendText(ctx, chatID, uc.t.T("busy"))
	}
	return err
}

// handle is HandleEvent without the busy reply; ErrSessionBusy is returned as is.
func (uc *readerUC) handle(ctx context.Context, chatID int64, ev conversation.Event) error {
	next, actions, err := uc.step(ctx, chatID, ev)
	if err != nil {
		return err
	}
	return uc.execute(ctx, next, actions)
}

// step loads, transitions and stores the session while holding the chat lock.
func (uc *readerUC) step(ctx context.Context, chatID int64, ev conversation.Event) (model.Session, []conversation.Action, error) {
	token, err := uc.locker.TryLock(ctx, lockKey(chatID), uc.cfg.LockTTL)
	if err != nil {
		return model.Session{}, nil, err
	}
	defer func() {
		if err := uc.locker.Unlock(context.WithoutCancel(ctx), lockKey(chatID), token); err != nil {
			uc.log.Warn().Err(err).Int64("chat_id", chatID).Msg("unlock failed")
		}
	}()

	cur, err := uc.load(ctx, chatID)
	if err != nil {
		return model.Session{}, nil, err
	}
	if cur.Stalled(uc.now(), uc.jobDeadline()) && !isJobResult(ev) {
		logging.With(ctx, uc.log).Warn().Str("generation_id", cur.GenerationID).Msg("generation job lost, releasing session")
		metrics.IncGenerationJob("stalled")
		var recovered []conversation.Action
		cur, recovered = conversation.Transition(cur, conversation.GenerationFailed{GenerationID: cur.GenerationID})
		if _, ok := ev.(conversation.Text); ok {
			// The text was sent while waiting; ask for the topic again instead.
			if err := uc.sessions.SaveSession(ctx, &cur); err != nil {
				return model.Session{}, nil, fmt.Errorf("store session: %w", err)
			}
			return cur, recovered, nil
		}
	}

	next, actions := conversation.Transition(cur, ev)
	metrics.IncTransition(string(cur.State), string(next.State))

	if hasClear(actions) {
		err = uc.sessions.ClearSession(ctx, chatID)
	} else {
		err = uc.sessions.SaveSession(ctx, &next)
	}
	if err != nil {
		return model.Session{}, nil, fmt.Errorf("store session: %w", err)
	}
	return next, actions, nil
}

func (uc *readerUC) load(ctx context.Context, chatID int64) (model.Session, error) {
	s, err := uc.sessions.GetSession(ctx, chatID)
	if errors.Is(err, domain.ErrNotFound) {
		return model.NewSession(chatID), nil
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("load session: %w", err)
	}
	if s.State != model.StateGenerating && s.Expired(uc.now(), uc.cfg.SessionTTL) {
		return model.NewSession(chatID), nil
	}
	return *s, nil
}

func (uc *readerUC) jobDeadline() time.Duration {
	return model.JobDeadline(uc.cfg.GenerationTimeout, uc.cfg.NarrationTimeout)
}

func isJobResult(ev conversation.Event) bool {
	switch ev.(type) {
	case conversation.GenerationFinished, conversation.GenerationFailed:
		return true
	}
	return false
}

func hasClear(actions []conversation.Action) bool {
	for _, a := range actions {
		if _, ok := a.(conversation.Clear); ok {
			return true
		}
	}
	return false
}

func (uc *readerUC) execute(ctx context.Context, s model.Session, actions []conversation.Action) error {
	var errs []error
	for _, a := range actions {
		switch act := a.(type) {
		case conversation.Reply:
			errs = append(errs, uc.reply(ctx, s.ChatID, act))
		case conversation.Generate:
			errs = append(errs, uc.submit(ctx, s, act.GenerationID))
		case conversation.Clear:
			// already applied in step
		}
	}
	return errors.Join(errs...)
}

func (uc *readerUC) reply(ctx context.Context, chatID int64, r conversation.Reply) error {
	text := uc.t.T(r.Key, r.Args...)
	switch {
	case len(r.Keyboard) > 0:
		return uc.messenger.SendKeyboard(ctx, chatID, text, r.Keyboard)
	case r.RemoveKeyboard:
		return uc.messenger.SendKeyboard(ctx, chatID, text, nil)
	default:
		return uc.messenger.SendText(ctx, chatID, text)
	}
}

func (uc *readerUC) submit(ctx context.Context, s model.Session, genID string) error {
	jobCtx := logging.WithGenerationID(logging.WithChatID(context.WithoutCancel(ctx), s.ChatID), genID)
	err := uc.jobs.Submit(func(workerCtx context.Context) error {
		ctx, cancel := mergeCancel(jobCtx, workerCtx)
		defer cancel()
		return uc.runGeneration(ctx, s)
	})
	if err == nil {
		return nil
	}
	logging.With(ctx, uc.log).Warn().Err(err).Str("generation_id", genID).Msg("generation job rejected")
	// Put the session back on the topic step without the generic failure reply.
	if _, _, serr := uc.step(ctx, s.ChatID, conversation.GenerationFailed{GenerationID: genID}); serr != nil {
		err = errors.Join(err, serr)
	}
	if errors.Is(err, domain.ErrQueueFull) {
		return uc.messenger.SendText(ctx, s.ChatID, uc.t.T("queue_full"))
	}
	return err
}

// mergeCancel keeps the values of valCtx and stops when stop is done.
func mergeCancel(valCtx, stop context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(valCtx)
	unregister := context.AfterFunc(stop, cancel)
	return ctx, func() {
		unregister()
		cancel()
	}
}

// runGeneration is the background job: generate, render, deliver, narrate, record,
// then report back to the state machine.
func (uc *readerUC) runGeneration(ctx context.Context, s model.Session) error {
	log := logging.With(ctx, uc.log)
	defer logging.TraceDuration(log, "ReaderUC.runGeneration")()
	start := uc.now()
	rec := &model.GenerationRecord{
		ID:        s.GenerationID,
		ChatID:    s.ChatID,
		Level:     s.Level,
		Language:  s.Language,
		Topic:     s.Topic,
		VocabSize: len(s.Words),
		Provider:  uc.generator.Name(),
		CreatedAt: start,
	}

	if err := uc.messenger.SendText(ctx, s.ChatID, uc.t.T("creating")); err != nil {
		log.Warn().Err(err).Msg("ack not delivered")
	}

	doc, err := uc.generate(ctx, s, rec)
	if err == nil {
		current, cerr := uc.stillCurrent(ctx, s)
		if cerr != nil {
			err = fmt.Errorf("check session: %w", cerr)
		} else if !current {
			log.Info().Msg("session moved on, dropping generated text")
			rec.Status = model.GenerationCancelled
			uc.save(ctx, rec, start)
			return nil
		}
	}
	if err == nil {
		caption := uc.t.T("used_words", len(doc.Highlighted), strings.Join(doc.Highlighted, ", "))
		err = uc.messenger.SendDocument(ctx, s.ChatID, DocumentName, []byte(doc.HTML), truncateRunes(caption, captionLimit))
		if err != nil {
			err = fmt.Errorf("send document: %w", err)
		}
	}
	if err != nil {
		log.Error().Err(err).Msg("generation failed")
		rec.Status = model.GenerationFailed
		rec.Error = err.Error()
		uc.save(ctx, rec, start)
		metrics.IncGenerationJob("failed")
		if ferr := uc.feed(ctx, s.ChatID, conversation.GenerationFailed{GenerationID: s.GenerationID}); ferr != nil {
			return errors.Join(err, ferr)
		}
		return err
	}

	audio := uc.narrate(ctx, s, doc)
	rec.HasAudio = audio != nil
	uc.archiveArtifacts(ctx, s, doc, audio)

	rec.Status = model.GenerationSucceeded
	rec.WordsUsed = len(doc.Highlighted)
	uc.save(ctx, rec, start)
	metrics.IncGenerationJob("succeeded")
	metrics.ObserveWordsUsed(s.Level.String(), rec.WordsUsed)
	log.Info().Str("level", s.Level.String()).Int("words_used", rec.WordsUsed).Bool("audio", rec.HasAudio).Msg("passage delivered")

	return uc.feed(ctx, s.ChatID, conversation.GenerationFinished{GenerationID: s.GenerationID})
}

func (uc *readerUC) generate(ctx context.Context, s model.Session, rec *model.GenerationRecord) (*model.GeneratedText, error) {
	if len(s.Words) == 0 {
		return nil, domain.ErrEmptyVocabulary
	}
	gctx, cancel := context.WithTimeout(ctx, uc.cfg.GenerationTimeout)
	defer cancel()
	res, err := uc.generator.Generate(gctx, adapter.GenerationRequest{
		Words:    s.Words,
		Level:    s.Level,
		Topic:    s.Topic,
		Language: s.Language,
	})
	if err != nil {
		return nil, err
	}
	if res.Provider != "" {
		rec.Provider = res.Provider
	}

	// Highlight what the model reports plus the confirmed list, so a missing
	// words_used field never leaves the page unmarked.
	candidates := append(append([]string(nil), res.WordsUsed...), s.Words...)
	title := fmt.Sprintf("%s · %s", s.Topic, s.Level)
	html, highlighted := render.RenderHTML(title, res.Text, candidates)
	return &model.GeneratedText{
		Text:        res.Text,
		WordsUsed:   res.WordsUsed,
		HTML:        html,
		Highlighted: highlighted,
	}, nil
}

// narrate returns nil when the level has no audio or narration failed.
// Failures are reported to the user but never undo the delivered document.
func (uc *readerUC) narrate(ctx context.Context, s model.Session, doc *model.GeneratedText) *model.AudioArtifact {
	policy := s.Level.Policy()
	if !policy.IncludeAudio {
		metrics.IncNarrationSkipped("level")
		return nil
	}
	log := logging.With(ctx, uc.log)
	if err := uc.messenger.SendText(ctx, s.ChatID, uc.t.T("generating_audio")); err != nil {
		log.Warn().Err(err).Msg("audio notice not delivered")
	}

	nctx, cancel := context.WithTimeout(ctx, uc.cfg.NarrationTimeout)
	defer cancel()
	art, err := uc.narrator.Narrate(nctx, adapter.NarrationRequest{
		Text:         doc.Text,
		Language:     s.Language,
		SpeedPercent: policy.SpeedPercent,
	})
	if err == nil {
		err = uc.messenger.SendAudio(ctx, s.ChatID, AudioName, art.Data, uc.t.T("audio_caption", art.SpeedPercent))
	}
	if err != nil {
		log.Warn().Err(err).Str("narrator", uc.narrator.Name()).Msg("narration failed")
		metrics.IncNarrationSkipped("error")
		_ = uc.messenger.SendText(ctx, s.ChatID, uc.t.T("audio_failed"))
		return nil
	}
	return art
}

func (uc *readerUC) archiveArtifacts(ctx context.Context, s model.Session, doc *model.GeneratedText, audio *model.AudioArtifact) {
	if uc.archive == nil {
		return
	}
	log := logging.With(ctx, uc.log)
	at := uc.now()
	key := func(file string) string { return storage.ArtifactKey(s.ChatID, s.GenerationID, at, file) }
	if _, err := uc.archive.Put(ctx, key(DocumentName), []byte(doc.HTML), "text/html; charset=utf-8"); err != nil {
		log.Warn().Err(err).Msg("archive html failed")
	}
	if audio != nil {
		if _, err := uc.archive.Put(ctx, key(AudioName), audio.Data, "audio/mpeg"); err != nil {
			log.Warn().Err(err).Msg("archive audio failed")
		}
	}
}

// stillCurrent reports whether the session is still waiting for this generation.
// A missing session means it was cancelled or cleared.
func (uc *readerUC) stillCurrent(ctx context.Context, s model.Session) (bool, error) {
	cur, err := uc.sessions.GetSession(ctx, s.ChatID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return cur.State == model.StateGenerating && cur.GenerationID == s.GenerationID, nil
}

func (uc *readerUC) save(ctx context.Context, rec *model.GenerationRecord, start time.Time) {
	if uc.records == nil {
		return
	}
	rec.Latency = uc.now().Sub(start)
	if err := uc.records.Save(context.WithoutCancel(ctx), nil, rec); err != nil {
		logging.With(ctx, uc.log).Warn().Err(err).Msg("save generation record failed")
	}
}

// feed reports a job outcome to the state machine, waiting out short lock contention.
func (uc *readerUC) feed(ctx context.Context, chatID int64, ev conversation.Event) error {
	ctx = context.WithoutCancel(ctx)
	var err error
	for attempt := 0; attempt < 10; attempt++ {
		err = uc.handle(ctx, chatID, ev)
		if !errors.Is(err, domain.ErrSessionBusy) {
			return err
		}
		time.Sleep(200 * time.Millisecond)
	}
	return err
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}
