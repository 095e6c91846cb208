// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"

	"telegram-vocab-reader/internal/config"
	"telegram-vocab-reader/internal/domain/model"
	"telegram-vocab-reader/internal/domain/ports/adapter"
	"telegram-vocab-reader/internal/domain/ports/repository"
	aiAdapters "telegram-vocab-reader/internal/infra/adapters/ai"
	tele "telegram-vocab-reader/internal/infra/adapters/telegram"
	ttsAdapters "telegram-vocab-reader/internal/infra/adapters/tts"
	"telegram-vocab-reader/internal/infra/api"
	pg "telegram-vocab-reader/internal/infra/db/postgres"
	"telegram-vocab-reader/internal/infra/i18n"
	"telegram-vocab-reader/internal/infra/logging"
	"telegram-vocab-reader/internal/infra/memory"
	"telegram-vocab-reader/internal/infra/metrics"
	red "telegram-vocab-reader/internal/infra/redis"
	"telegram-vocab-reader/internal/infra/scheduler"
	"telegram-vocab-reader/internal/infra/storage"
	"telegram-vocab-reader/internal/infra/worker"
	"telegram-vocab-reader/internal/usecase"
)

// Set with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("config")
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	translator, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		logger.Fatal().Err(err).Msg("i18n")
	}

	checks := map[string]api.HealthCheck{}

	// ---- Session state, locks, rate limits ----
	var (
		sessions    repository.SessionStore
		locker      repository.Locker
		rateLimiter tele.RateLimiter
		sweeper     *scheduler.Scheduler
	)
	switch cfg.Session.Store {
	case "redis":
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		sessions = red.NewSessionRepo(redisClient, cfg.Session.TTL)
		locker = red.NewLocker(redisClient)
		rateLimiter = red.NewRateLimiter(redisClient)
		checks["redis"] = redisClient.Ping
	default:
		memStore := memory.NewSessionStore()
		memStore.SetJobDeadline(model.JobDeadline(cfg.AI.Timeout, cfg.TTS.Timeout))
		sessions = memStore
		locker = memory.NewLocker()
		rateLimiter = memory.NewRateLimiter()
		sweeper = scheduler.NewScheduler(cfg.Session.SweepInterval, scheduler.NewSessionSweeper(memStore, cfg.Session.TTL), logger)
	}

	// ---- Generation records ----
	var records repository.GenerationRepository
	if cfg.Database.URL != "" {
		pool, err := pg.Connect(ctx, cfg.Database.URL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres")
		}
		defer pool.Close()
		if err := pg.Migrate(ctx, pool); err != nil {
			logger.Fatal().Err(err).Msg("postgres migrate")
		}
		records = pg.NewGenerationRepo(pool)
		checks["postgres"] = pingPool(pool)
	} else {
		records = memory.NewGenerationRepo(1000)
	}

	// ---- Artifact archive ----
	var archive adapter.ArtifactStore = storage.NoopStore{}
	if cfg.Storage.Endpoint != "" {
		store, err := storage.NewMinioStore(ctx, cfg.Storage)
		if err != nil {
			logger.Fatal().Err(err).Msg("minio")
		}
		archive = store
	}

	// ---- Providers ----
	generator, err := buildGenerator(ctx, cfg.AI, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("ai provider")
	}
	narrator, closeNarrator, err := buildNarrator(ctx, cfg.TTS, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("tts provider")
	}
	defer closeNarrator()

	// ---- Telegram ----
	var (
		messenger adapter.Messenger
		bot       *tele.RealTelegramBotAdapter
	)
	if cfg.Bot.Token != "" {
		bot, err = tele.NewRealTelegramBotAdapter(&cfg.Bot, translator, rateLimiter, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram")
		}
		messenger = bot
	} else {
		logger.Warn().Msg("no bot token; messages are logged only")
		messenger = tele.NewNoopBotAdapter(logger)
	}

	// ---- Use cases ----
	jobs := worker.NewPool(cfg.Bot.GenerationWorkers, logger)
	jobs.Start(ctx)

	readerUC := usecase.NewReaderUseCase(usecase.ReaderDeps{
		Sessions:  sessions,
		Locker:    locker,
		Records:   records,
		Generator: generator,
		Narrator:  narrator,
		Messenger: messenger,
		Archive:   archive,
		Jobs:      jobs,
		T:         translator,
	}, usecase.ReaderConfig{
		GenerationTimeout: cfg.AI.Timeout,
		NarrationTimeout:  cfg.TTS.Timeout,
		SessionTTL:        cfg.Session.TTL,
	}, logger)
	statsUC := usecase.NewStatsUseCase(records, logger)

	if bot != nil {
		bot.SetHandler(readerUC)
		go func() {
			if err := bot.StartPolling(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("telegram polling stopped")
			}
		}()
	}

	// ---- Admin HTTP ----
	var admin *api.Server
	if cfg.Admin.Port > 0 {
		admin = api.NewServer(cfg.Admin, statsUC, checks, logger)
		go func() {
			if err := admin.Start(); err != nil {
				logger.Error().Err(err).Msg("admin http server")
			}
		}()
	}

	if sweeper != nil {
		sweeper.Start(ctx)
	}

	logger.Info().
		Str("version", version).
		Str("ai", generator.Name()).
		Str("tts", narrator.Name()).
		Str("sessions", cfg.Session.Store).
		Msg("vocab reader started")

	// ---- Graceful shutdown ----
	<-ctx.Done()
	logger.Info().Msg("shutdown requested")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 15*time.Second)
	defer stop()
	if bot != nil {
		bot.StopPolling()
	}
	if sweeper != nil {
		sweeper.Stop()
	}
	if admin != nil {
		if err := admin.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("admin shutdown")
		}
	}
	jobs.Stop()
}

// buildGenerator picks the primary provider, adds the optional fallback and
// wraps the chain in a breaker and a concurrency limit.
func buildGenerator(ctx context.Context, cfg config.AIConfig, logger *zerolog.Logger) (adapter.TextGenerator, error) {
	one := func(name string) (adapter.TextGenerator, error) {
		switch name {
		case "deepseek":
			return aiAdapters.NewDeepSeekGenerator(cfg.DeepSeekKey, cfg.DeepSeekBaseURL, cfg.DeepSeekModel, cfg.Temperature)
		case "gemini":
			return aiAdapters.NewGeminiGenerator(ctx, cfg.GeminiKey, cfg.GeminiModel, cfg.Temperature)
		default:
			return aiAdapters.NewNoopGenerator(logger), nil
		}
	}

	primary, err := one(cfg.Provider)
	if err != nil {
		return nil, err
	}
	var gen adapter.TextGenerator = aiAdapters.NewBreakerGenerator(primary, cfg.BreakerFailures, 30*time.Second, logger)
	if cfg.Fallback != "" && cfg.Fallback != cfg.Provider {
		fb, err := one(cfg.Fallback)
		if err != nil {
			return nil, err
		}
		gen = aiAdapters.NewMultiGenerator(logger, gen, aiAdapters.NewBreakerGenerator(fb, cfg.BreakerFailures, 30*time.Second, logger))
	}
	return aiAdapters.NewLimitedGenerator(gen, cfg.ConcurrentLimit), nil
}

func buildNarrator(ctx context.Context, cfg config.TTSConfig, logger *zerolog.Logger) (adapter.Narrator, func(), error) {
	switch cfg.Provider {
	case "google":
		n, err := ttsAdapters.NewGoogleNarrator(ctx, cfg.GoogleCredsPath, logger)
		if err != nil {
			return nil, nil, err
		}
		return n, func() { _ = n.Close() }, nil
	case "openai":
		n, err := ttsAdapters.NewOpenAINarrator(cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAIVoice)
		if err != nil {
			return nil, nil, err
		}
		return n, func() {}, nil
	default:
		return ttsAdapters.NewNoopNarrator(logger), func() {}, nil
	}
}

func pingPool(pool *pgxpool.Pool) api.HealthCheck {
	return func(ctx context.Context) error { return pool.Ping(ctx) }
}
