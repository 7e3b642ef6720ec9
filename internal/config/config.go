package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Auth       AuthConfig
	LLM        LLMConfig
	Summarizer SummarizerConfig
	Tiers      TierConfig
	Cache      CacheConfig
	Worker     WorkerConfig
	RateLimit  RateLimitConfig
}

type ServerConfig struct {
	Host        string
	Port        int
	CORSOrigins []string
}

type DatabaseConfig struct {
	URL             string
	MaxConns        int
	MinConns        int
	ConnectAttempts int
	MigrationsPath  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret     string
	PremiumTokens []string
}

type LLMConfig struct {
	OpenAIKey         string
	OpenAIBaseURL     string
	AnthropicKey      string
	OllamaURL         string
	DefaultProvider   string
	DefaultModel      string
	FallbackProvider  string
	MaxRetries        int
	RetryBackoff      time.Duration
	EmbeddingProvider string
	EmbeddingModel    string
}

type SummarizerConfig struct {
	ChunkSize         int
	MinInputChars     int
	ChunkMaxLen       int
	ChunkMinLen       int
	FallbackSentences int
	FallbackFactor    int
	Locale            string
	CallTimeout       time.Duration
	BreakerFailures   int
	BreakerCooldown   time.Duration
}

type TierConfig struct {
	FreeMaxLen    int
	PremiumMaxLen int
	MinLen        int
}

type CacheConfig struct {
	SummaryTTL time.Duration
	JobTTL     time.Duration
}

type WorkerConfig struct {
	Concurrency int
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

func Load() (*Config, error) {
	var errs []string
	ints := func(key string, fallback int) int {
		v, err := getEnvInt(key, fallback)
		if err != nil {
			errs = append(errs, fmt.Sprintf("invalid %s: %v", key, err))
		}
		return v
	}
	durations := func(key string, fallback time.Duration) time.Duration {
		v, err := getEnvDuration(key, fallback)
		if err != nil {
			errs = append(errs, fmt.Sprintf("invalid %s: %v", key, err))
		}
		return v
	}

	rps, err := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "10"), 64)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid RATE_LIMIT_RPS: %v", err))
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			Port:        ints("SERVER_PORT", 8080),
			CORSOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        ints("DB_MAX_CONNS", 10),
			MinConns:        ints("DB_MIN_CONNS", 2),
			ConnectAttempts: ints("DB_CONNECT_ATTEMPTS", 5),
			MigrationsPath:  getEnv("MIGRATIONS_PATH", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       ints("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", ""),
			PremiumTokens: getEnvList("PREMIUM_TOKENS"),
		},
		LLM: LLMConfig{
			OpenAIKey:         getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", ""),
			AnthropicKey:      getEnv("ANTHROPIC_API_KEY", ""),
			OllamaURL:         getEnv("OLLAMA_URL", ""),
			DefaultProvider:   getEnv("LLM_DEFAULT_PROVIDER", "openai"),
			DefaultModel:      getEnv("LLM_DEFAULT_MODEL", "gpt-4o-mini"),
			FallbackProvider:  getEnv("LLM_FALLBACK_PROVIDER", ""),
			MaxRetries:        ints("LLM_MAX_RETRIES", 2),
			RetryBackoff:      durations("LLM_RETRY_BACKOFF", 500*time.Millisecond),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "openai"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", ""),
		},
		Summarizer: SummarizerConfig{
			ChunkSize:         ints("SUMMARY_CHUNK_SIZE", 1000),
			MinInputChars:     ints("SUMMARY_MIN_INPUT_CHARS", 50),
			ChunkMaxLen:       ints("SUMMARY_CHUNK_MAX_LEN", 120),
			ChunkMinLen:       ints("SUMMARY_CHUNK_MIN_LEN", 30),
			FallbackSentences: ints("SUMMARY_FALLBACK_SENTENCES", 2),
			FallbackFactor:    ints("SUMMARY_FALLBACK_FACTOR", 2),
			Locale:            getEnv("SUMMARY_LOCALE", "en"),
			CallTimeout:       durations("SUMMARY_CALL_TIMEOUT", 60*time.Second),
			BreakerFailures:   ints("SUMMARY_BREAKER_FAILURES", 5),
			BreakerCooldown:   durations("SUMMARY_BREAKER_COOLDOWN", 30*time.Second),
		},
		Tiers: TierConfig{
			FreeMaxLen:    ints("FREE_SUMMARY_MAX_LEN", 180),
			PremiumMaxLen: ints("PREMIUM_SUMMARY_MAX_LEN", 400),
			MinLen:        ints("SUMMARY_MIN_LEN", 40),
		},
		Cache: CacheConfig{
			SummaryTTL: durations("SUMMARY_CACHE_TTL", 24*time.Hour),
			JobTTL:     durations("JOB_STATUS_TTL", 72*time.Hour),
		},
		Worker: WorkerConfig{
			Concurrency: ints("WORKER_CONCURRENCY", 4),
		},
		RateLimit: RateLimitConfig{
			RPS:   rps,
			Burst: ints("RATE_LIMIT_BURST", 20),
		},
	}

	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{"*"}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("load config: %s", strings.Join(errs, "; "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var problems []string
	if c.Tiers.MinLen >= c.Tiers.FreeMaxLen {
		problems = append(problems, "SUMMARY_MIN_LEN must be below FREE_SUMMARY_MAX_LEN")
	}
	if c.Tiers.PremiumMaxLen < c.Tiers.FreeMaxLen {
		problems = append(problems, "PREMIUM_SUMMARY_MAX_LEN must not be below FREE_SUMMARY_MAX_LEN")
	}
	if c.Summarizer.ChunkMinLen >= c.Summarizer.ChunkMaxLen {
		problems = append(problems, "SUMMARY_CHUNK_MIN_LEN must be below SUMMARY_CHUNK_MAX_LEN")
	}
	if c.Summarizer.ChunkSize <= 0 {
		problems = append(problems, "SUMMARY_CHUNK_SIZE must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return time.ParseDuration(v)
}

// getEnvList splits a comma-separated variable, dropping blanks.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
