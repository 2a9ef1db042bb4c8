package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort int
	AppEnv     string
	LogLevel   string

	DatabasePath  string
	StorageDriver string // sqlite, redis or memory
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret        string
	SessionTTL       time.Duration
	SessionSweepSpec string // cron spec for purging expired sessions

	AllowedOrigins []string

	SynthesisProvider string // gemini, openai or empty for none
	SynthesisModel    string
	SynthesisTimeout  time.Duration
	GoogleAPIKey      string
	GroqAPIKey        string
	OpenAIBaseURL     string
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load loads configuration from a .env file (if present) and environment
// variables, falling back to defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, err
	}
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, err
	}
	sessionTTL, err := time.ParseDuration(getEnv("SESSION_TTL", "24h"))
	if err != nil {
		return nil, err
	}
	synthesisTimeout, err := time.ParseDuration(getEnv("SYNTHESIS_TIMEOUT", "30s"))
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort:        port,
		AppEnv:            getEnv("APP_ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		DatabasePath:      getEnv("DATABASE_PATH", "./stratum.db"),
		StorageDriver:     getEnv("STORAGE_DRIVER", "sqlite"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           redisDB,
		JWTSecret:         getEnv("JWT_SECRET", ""),
		SessionTTL:        sessionTTL,
		SessionSweepSpec:  getEnv("SESSION_SWEEP_SPEC", "@every 10m"),
		AllowedOrigins:    splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		SynthesisProvider: strings.ToLower(getEnv("SYNTHESIS_PROVIDER", "gemini")),
		SynthesisModel:    getEnv("SYNTHESIS_MODEL", ""),
		SynthesisTimeout:  synthesisTimeout,
		GoogleAPIKey:      getEnv("GOOGLE_API_KEY", ""),
		GroqAPIKey:        getEnv("GROQ_API_KEY", ""),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", "https://api.groq.com/openai/v1"),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
