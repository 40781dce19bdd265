package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	ServerPort string
	GinMode    string
	LogLevel   string
	LogFormat  string

	DataDir   string
	StaticDir string

	// AdminPassword is used only when AdminPasswordHash is empty; it is
	// hashed once at startup so both paths compare through bcrypt.
	AdminPassword     string
	AdminPasswordHash string
	SessionSecret     string
	AdminSessionTTL   time.Duration
	BcryptCost        int
	CookieSecure      bool

	ExamDuration   time.Duration
	MaxWarnings    int
	WebcamRequired bool
	QuestionLimit  int
	ReviewEnabled  bool

	SubmitRatePerMinute int
	LoginRatePerMinute  int

	// Optional backing services. Empty URLs disable the feature.
	RedisURL    string
	DatabaseURL string
	MaxDBConns  int32

	// ExamServerURL is where the terminal exam runner sends its requests.
	ExamServerURL string

	// AllowedOrigins controls HTTP CORS and WebSocket origin validation.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // Ignore error — .env is optional

	return &Config{
		ServerPort:          getEnv("SERVER_PORT", getEnv("PORT", "3000")),
		GinMode:             getEnv("GIN_MODE", "debug"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "pretty"),
		DataDir:             getEnv("DATA_DIR", "./data"),
		StaticDir:           getEnv("STATIC_DIR", "./public"),
		AdminPassword:       getEnv("ADMIN_PASSWORD", "admin123"),
		AdminPasswordHash:   getEnv("ADMIN_PASSWORD_HASH", ""),
		SessionSecret:       getEnv("SESSION_SECRET", "change-this-to-a-secure-random-string"),
		AdminSessionTTL:     getEnvDuration("ADMIN_SESSION_TTL", 12*time.Hour),
		BcryptCost:          getEnvInt("BCRYPT_COST", 10),
		CookieSecure:        getEnvBool("COOKIE_SECURE", false),
		ExamDuration:        time.Duration(getEnvInt("EXAM_DURATION_MINUTES", 15)) * time.Minute,
		MaxWarnings:         getEnvInt("MAX_WARNINGS", 3),
		WebcamRequired:      getEnvBool("WEBCAM_REQUIRED", false),
		QuestionLimit:       getEnvInt("QUESTION_LIMIT", 0),
		ReviewEnabled:       getEnvBool("REVIEW_ENABLED", false),
		SubmitRatePerMinute: getEnvInt("SUBMIT_RATE_PER_MINUTE", 30),
		LoginRatePerMinute:  getEnvInt("LOGIN_RATE_PER_MINUTE", 10),
		RedisURL:            getEnv("REDIS_URL", ""),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		MaxDBConns:          int32(getEnvInt("MAX_DB_CONNS", 4)),
		ExamServerURL:       getEnv("EXAM_SERVER_URL", "http://localhost:3000"),
		AllowedOrigins:      parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// getEnvDuration accepts Go duration strings ("90m", "12h").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
