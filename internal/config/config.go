package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds the process configuration read from the environment
type Config struct {
	Port string

	MongoURI      string
	MongoDatabase string

	RedisAddr     string // empty selects the in-process sweep lock
	RedisPassword string
	RedisDB       int

	ApifyToken         string // empty disables social sync
	ApifyActor         string
	SocialResultsLimit int

	SyncInterval     time.Duration // zero disables the scheduler
	SyncRunOnStart   bool
	SyncConcurrency  int
	BrandSyncTimeout time.Duration

	PageSize        int
	PageDelay       time.Duration
	PageTimeout     time.Duration
	ValidateTimeout time.Duration
	UserAgent       string
}

// Load reads .env when present, then the environment. Malformed values fall
// back to their defaults with a warning.
func Load(logger zerolog.Logger) *Config {
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg(".env file not found, using environment")
	}

	e := env{logger: logger}
	return &Config{
		Port: e.getString("PORT", "8080"),

		MongoURI:      e.getString("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase: e.getString("MONGODB_DATABASE", "storefront_ingest"),

		RedisAddr:     e.getString("REDIS_ADDR", ""),
		RedisPassword: e.getString("REDIS_PASSWORD", ""),
		RedisDB:       e.getInt("REDIS_DB", 0),

		ApifyToken:         e.getString("APIFY_API_TOKEN", ""),
		ApifyActor:         e.getString("APIFY_ACTOR", "apify~instagram-scraper"),
		SocialResultsLimit: e.getInt("SOCIAL_RESULTS_LIMIT", 10),

		SyncInterval:     e.getDuration("SYNC_INTERVAL", 24*time.Hour),
		SyncRunOnStart:   e.getBool("SYNC_RUN_ON_START", false),
		SyncConcurrency:  e.getInt("SYNC_CONCURRENCY", 1),
		BrandSyncTimeout: e.getDuration("BRAND_SYNC_TIMEOUT", 0),

		PageSize:        e.getInt("PAGE_SIZE", 250),
		PageDelay:       e.getDuration("PAGE_DELAY", 150*time.Millisecond),
		PageTimeout:     e.getDuration("PAGE_TIMEOUT", 10*time.Second),
		ValidateTimeout: e.getDuration("VALIDATE_TIMEOUT", 5*time.Second),
		UserAgent:       e.getString("USER_AGENT", "storefront-ingest/1.0"),
	}
}

type env struct {
	logger zerolog.Logger
}

func (e env) getString(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func (e env) getInt(key string, fallback int) int {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		e.logger.Warn().Str("key", key).Str("value", raw).Msg("Invalid integer, using default")
		return fallback
	}
	return v
}

func (e env) getBool(key string, fallback bool) bool {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		e.logger.Warn().Str("key", key).Str("value", raw).Msg("Invalid boolean, using default")
		return fallback
	}
	return v
}

// getDuration accepts Go durations ("90s", "24h") and "0"
func (e env) getDuration(key string, fallback time.Duration) time.Duration {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		e.logger.Warn().Str("key", key).Str("value", raw).Msg("Invalid duration, using default")
		return fallback
	}
	return v
}
