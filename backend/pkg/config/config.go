package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	apperrors "github.com/X1NY1NG/VRGame/backend/pkg/errors"
)

// Config holds all application configuration
type Config struct {
	// App
	Port string
	Env  string

	// Firestore
	FirestoreProjectID string

	// AI
	OpenAIAPIKey string
	ModelID      string

	// Pipeline tuning
	CorefTimeout      time.Duration // Budget for the optional LLM coreference rewrite
	ExtractionRetries int           // Extra attempts for the extraction call (0 = fail fast)
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		FirestoreProjectID: getEnv("FIRESTORE_PROJECT_ID", ""),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		ModelID:            getEnv("MODEL_ID", "gpt-4o-mini"),
		CorefTimeout:       time.Duration(getEnvInt("COREF_TIMEOUT_MS", 3000)) * time.Millisecond,
		ExtractionRetries:  getEnvInt("EXTRACTION_RETRIES", 0),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.FirestoreProjectID == "" {
		return apperrors.NewConfigError("FIRESTORE_PROJECT_ID is required")
	}
	if c.OpenAIAPIKey == "" {
		return apperrors.NewConfigError("OPENAI_API_KEY is required")
	}
	if c.ModelID == "" {
		return apperrors.NewConfigError("MODEL_ID is required")
	}
	if c.CorefTimeout <= 0 {
		return apperrors.NewConfigError("COREF_TIMEOUT_MS must be positive")
	}
	if c.ExtractionRetries < 0 {
		return apperrors.NewConfigError("EXTRACTION_RETRIES must not be negative")
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if result, err := strconv.Atoi(value); err == nil {
			return result
		}
	}
	return defaultValue
}
