package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"eventbrite-extractor/internal/status"
)

const (
	// DefaultPlaceID is New York City in the search API's place
	// vocabulary. Passing "none" on the CLI searches worldwide.
	DefaultPlaceID = "85977539"

	defaultBaseURL = "https://www.eventbriteapi.com/v3"
)

type Config struct {
	// Eventbrite API
	APIKey  string `validate:"required"`
	BaseURL string `validate:"required,url"`

	// Search defaults
	PlaceID  string
	PageSize int `validate:"gte=1,lte=50"`
	MaxPages int `validate:"gte=1"`

	// HTTP behavior
	RequestTimeout time.Duration `validate:"gt=0"`
	MaxRetries     int           `validate:"gte=0"`
	InitialBackoff time.Duration `validate:"gt=0"`
	MaxBackoff     time.Duration `validate:"gt=0"`

	// Logging
	Environment string
	LogLevel    string
}

// LoadConfig reads the optional env files, then the process
// environment, and validates the result. A missing API key is the one
// setup mistake users hit constantly, so it gets its own error.
func LoadConfig(envFiles ...string) (*Config, error) {
	// Missing .env files are fine; real deployments set the
	// environment directly.
	_ = godotenv.Load(envFiles...)

	cfg := &Config{
		APIKey:  getEnv("EVENTBRITE_API_KEY", ""),
		BaseURL: getEnv("EVENTBRITE_BASE_URL", defaultBaseURL),

		PlaceID:  getEnv("EVENTBRITE_PLACE_ID", DefaultPlaceID),
		PageSize: getEnvAsInt("EVENTBRITE_PAGE_SIZE", 20),
		MaxPages: getEnvAsInt("EVENTBRITE_MAX_PAGES", 3),

		RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", "30s"),
		MaxRetries:     getEnvAsInt("MAX_RETRIES", 3),
		InitialBackoff: getEnvAsDuration("INITIAL_BACKOFF", "1s"),
		MaxBackoff:     getEnvAsDuration("MAX_BACKOFF", "30s"),

		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("loadConfig: %w (copy .env.example to .env and add your key)", status.ErrMissingAPIKey)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("loadConfig: invalid configuration: %w", err)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
