package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort     string
	DatabaseType   string
	DatabasePath   string
	DatabaseURL    string
	MigrationsPath string

	// Widget session tokens
	TokenSecret   string
	TokenDuration time.Duration

	// Admin API key (bcrypt hash)
	APIKeyHash string

	// Generated card audio, empty disables text-to-speech
	AudioDir string

	// Completion report emails (SES)
	ReportsEnabled  bool
	AWSRegion       string
	ReportFromEmail string
	ReportFromName  string

	// Statement forwarding to a learning record store
	LRSEndpoint            string
	LRSTokenURL            string
	LRSClientID            string
	LRSClientSecret        string
	StatementSigningSecret string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first if present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:     getEnv("PORT", "8080"),
		DatabaseType:   getEnv("DB_TYPE", "sqlite"),
		DatabasePath:   getEnv("DB_PATH", "./flashdeck.db"),
		DatabaseURL:    getEnv("DB_URL", ""),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),

		TokenSecret:   getEnv("TOKEN_SECRET", ""),
		TokenDuration: getDuration("TOKEN_DURATION", 24*time.Hour),

		APIKeyHash: getEnv("API_KEY_HASH", ""),

		AudioDir: getEnv("AUDIO_DIR", ""),

		ReportsEnabled:  getEnv("REPORTS_ENABLED", "false") == "true",
		AWSRegion:       getEnv("AWS_REGION", "eu-west-2"),
		ReportFromEmail: getEnv("REPORT_FROM_EMAIL", ""),
		ReportFromName:  getEnv("REPORT_FROM_NAME", "FlashDeck"),

		LRSEndpoint:            getEnv("LRS_ENDPOINT", ""),
		LRSTokenURL:            getEnv("LRS_TOKEN_URL", ""),
		LRSClientID:            getEnv("LRS_CLIENT_ID", ""),
		LRSClientSecret:        getEnv("LRS_CLIENT_SECRET", ""),
		StatementSigningSecret: getEnv("STATEMENT_SIGNING_SECRET", ""),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration reads a duration environment variable or returns a default
func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
