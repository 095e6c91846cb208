// File: internal/config/config.go
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token             string `yaml:"token"`
	Workers           int    `yaml:"workers"`            // polling workers
	GenerationWorkers int    `yaml:"generation_workers"` // passage jobs running at once
	RateLimit         int    `yaml:"rate_limit"`         // messages per chat per minute, 0 disables
	MaxFileBytes      int64  `yaml:"max_file_bytes"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AdminConfig struct {
	Port      int           `yaml:"port"` // 0 disables the admin server
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"` // empty keeps generation records in memory
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type SessionConfig struct {
	Store         string        `yaml:"store"` // memory|redis
	TTL           time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

type AIConfig struct {
	Provider        string        `yaml:"provider"` // deepseek|gemini|noop
	Fallback        string        `yaml:"fallback"` // optional second provider
	DeepSeekKey     string        `yaml:"deepseek_key"`
	DeepSeekBaseURL string        `yaml:"deepseek_base_url"`
	DeepSeekModel   string        `yaml:"deepseek_model"`
	GeminiKey       string        `yaml:"gemini_key"`
	GeminiModel     string        `yaml:"gemini_model"`
	Temperature     float64       `yaml:"temperature"`
	Timeout         time.Duration `yaml:"timeout"`
	ConcurrentLimit int           `yaml:"concurrent_limit"` // max concurrent AI calls
	BreakerFailures int           `yaml:"breaker_failures"` // consecutive failures before the breaker opens
}

type TTSConfig struct {
	Provider        string        `yaml:"provider"` // google|openai|noop
	GoogleCredsPath string        `yaml:"google_creds_path"`
	OpenAIKey       string        `yaml:"openai_key"`
	OpenAIModel     string        `yaml:"openai_model"`
	OpenAIVoice     string        `yaml:"openai_voice"`
	Timeout         time.Duration `yaml:"timeout"`
}

type StorageConfig struct {
	Endpoint  string `yaml:"endpoint"` // empty disables archiving
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type Config struct {
	Bot      BotConfig      `yaml:"bot"`
	Log      LogConfig      `yaml:"log"`
	Admin    AdminConfig    `yaml:"admin"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Session  SessionConfig  `yaml:"session"`
	AI       AIConfig       `yaml:"ai"`
	TTS      TTSConfig      `yaml:"tts"`
	Storage  StorageConfig  `yaml:"storage"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig() (*Config, error) {
	var configPath string = ""
	var dev bool
	flag.StringVar(&configPath, "config", "config.yaml", "path to config yaml")
	flag.BoolVar(&dev, "dev", false, "development mode")
	flag.Parse()

	_ = godotenv.Load() // .env is optional
	return Load(configPath, dev)
}

// Load reads the YAML file at path, applies environment overrides and defaults,
// then validates. A missing file is fine when the environment carries the secrets.
func Load(path string, dev bool) (*Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg, dev)
	if err := validate(&cfg, dev); err != nil {
		return nil, err
	}
	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&cfg.Bot.Token, "TELEGRAM_TOKEN")
	set(&cfg.AI.DeepSeekKey, "DEEPSEEK_API_KEY")
	set(&cfg.AI.GeminiKey, "GEMINI_API_KEY")
	set(&cfg.TTS.GoogleCredsPath, "GOOGLE_CREDS_PATH")
	set(&cfg.TTS.OpenAIKey, "OPENAI_API_KEY")
	set(&cfg.Database.URL, "DATABASE_URL")
	set(&cfg.Redis.URL, "REDIS_URL")
	set(&cfg.Admin.JWTSecret, "ADMIN_JWT_SECRET")
}

func applyDefaults(cfg *Config, dev bool) {
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Bot.GenerationWorkers <= 0 {
		cfg.Bot.GenerationWorkers = 4
	}
	if cfg.Bot.MaxFileBytes <= 0 {
		cfg.Bot.MaxFileBytes = 5 << 20
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Admin.TokenTTL <= 0 {
		cfg.Admin.TokenTTL = 24 * time.Hour
	}
	if cfg.Session.Store == "" {
		cfg.Session.Store = "memory"
	}
	cfg.Session.TTL = normalizeTTL(cfg.Session.TTL)
	if cfg.Session.SweepInterval <= 0 {
		cfg.Session.SweepInterval = time.Minute
	}

	if cfg.AI.Provider == "" {
		if dev {
			cfg.AI.Provider = "noop"
		} else {
			cfg.AI.Provider = "deepseek"
		}
	}
	if cfg.AI.DeepSeekBaseURL == "" {
		cfg.AI.DeepSeekBaseURL = "https://api.deepseek.com"
	}
	if cfg.AI.DeepSeekModel == "" {
		cfg.AI.DeepSeekModel = "deepseek-chat"
	}
	if cfg.AI.GeminiModel == "" {
		cfg.AI.GeminiModel = "gemini-2.5-flash"
	}
	if cfg.AI.Temperature <= 0 {
		cfg.AI.Temperature = 0.7
	}
	if cfg.AI.Timeout <= 0 {
		cfg.AI.Timeout = 90 * time.Second
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 16
	}
	if cfg.AI.BreakerFailures <= 0 {
		cfg.AI.BreakerFailures = 5
	}

	if cfg.TTS.Provider == "" {
		if dev {
			cfg.TTS.Provider = "noop"
		} else {
			cfg.TTS.Provider = "google"
		}
	}
	if cfg.TTS.OpenAIModel == "" {
		cfg.TTS.OpenAIModel = "tts-1"
	}
	if cfg.TTS.OpenAIVoice == "" {
		cfg.TTS.OpenAIVoice = "alloy"
	}
	if cfg.TTS.Timeout <= 0 {
		cfg.TTS.Timeout = 120 * time.Second
	}
	if cfg.Storage.Bucket == "" {
		cfg.Storage.Bucket = "vocab-reader"
	}
}

// Minimal validation: fail fast on secrets the selected providers need.
func validate(cfg *Config, dev bool) error {
	if cfg.Bot.Token == "" && !dev {
		return errors.New("bot.token is required (or TELEGRAM_TOKEN)")
	}
	for _, p := range []string{cfg.AI.Provider, cfg.AI.Fallback} {
		switch p {
		case "", "noop":
		case "deepseek":
			if cfg.AI.DeepSeekKey == "" {
				return errors.New("ai.deepseek_key is required (or DEEPSEEK_API_KEY)")
			}
		case "gemini":
			if cfg.AI.GeminiKey == "" {
				return errors.New("ai.gemini_key is required (or GEMINI_API_KEY)")
			}
		default:
			return fmt.Errorf("unknown ai provider %q", p)
		}
	}
	switch cfg.TTS.Provider {
	case "noop":
	case "google":
		if cfg.TTS.GoogleCredsPath == "" {
			return errors.New("tts.google_creds_path is required (or GOOGLE_CREDS_PATH)")
		}
	case "openai":
		if cfg.TTS.OpenAIKey == "" {
			return errors.New("tts.openai_key is required (or OPENAI_API_KEY)")
		}
	default:
		return fmt.Errorf("unknown tts provider %q", cfg.TTS.Provider)
	}
	switch cfg.Session.Store {
	case "memory":
	case "redis":
		if cfg.Redis.URL == "" {
			return errors.New("redis.url is required when session.store is redis")
		}
	default:
		return fmt.Errorf("unknown session store %q", cfg.Session.Store)
	}
	if cfg.Admin.Port > 0 && cfg.Admin.JWTSecret == "" {
		return errors.New("admin.jwt_secret is required when the admin server is enabled")
	}
	return nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return 30 * time.Minute
	}
	return d
}
