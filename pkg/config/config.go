package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Strategy names
const (
	StrategyContentFirst = "content_first"
	StrategyAIFirst      = "ai_first"
)

// Save backends
const (
	SaveBackendFirestore = "firestore"
	SaveBackendHTTP      = "http"
)

type Config struct {
	// Service
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // development, staging, production
	Strategy    string `env:"ITINERARY_STRATEGY" envDefault:"content_first"`

	// Google Cloud
	ProjectID       string `env:"GOOGLE_CLOUD_PROJECT"`
	Region          string `env:"GOOGLE_CLOUD_REGION" envDefault:"us-central1"`
	CredentialsFile string `env:"GOOGLE_APPLICATION_CREDENTIALS"`

	// Gateway
	GatewayBaseURL       string        `env:"GATEWAY_BASE_URL"`
	GatewayServicePrefix string        `env:"GATEWAY_SERVICE_PREFIX" envDefault:"itinerary-"`
	GatewayTimeout       time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"45s"`
	AITimeout            time.Duration `env:"AI_TIMEOUT" envDefault:"5m"`

	// Persistence and progress
	SaveBackend         string `env:"SAVE_BACKEND" envDefault:"http"` // firestore, http
	FirestoreCollection string `env:"FIRESTORE_COLLECTION" envDefault:"itineraries"`
	ProgressTopic       string `env:"PROGRESS_TOPIC"`

	// Retry
	RetryMaxAttempts int           `env:"RETRY_MAX_ATTEMPTS" envDefault:"3"`
	RetryBaseDelay   time.Duration `env:"RETRY_BASE_DELAY" envDefault:"1s"`
	RetryMaxDelay    time.Duration `env:"RETRY_MAX_DELAY" envDefault:"10s"`
	RetryMultiplier  float64       `env:"RETRY_MULTIPLIER" envDefault:"2"`
	RetryJitter      time.Duration `env:"RETRY_JITTER" envDefault:"500ms"`

	// Logging
	LoggerLevel      string `env:"LOGGER_LEVEL" envDefault:"INFO"`
	LoggerFormat     string `env:"LOGGER_FORMAT" envDefault:"text"` // json, text
	LoggerOutputPath string `env:"LOGGER_OUTPUT_PATH" envDefault:"stdout"`
}

// Load reads an optional .env file and parses the environment
func Load() (*Config, error) {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}
	cfg.Strategy = strings.ToLower(strings.TrimSpace(cfg.Strategy))
	cfg.SaveBackend = strings.ToLower(strings.TrimSpace(cfg.SaveBackend))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects inconsistent settings
func (c *Config) Validate() error {
	switch c.Strategy {
	case StrategyContentFirst, StrategyAIFirst:
	default:
		return fmt.Errorf("ITINERARY_STRATEGY must be %q or %q, got %q", StrategyContentFirst, StrategyAIFirst, c.Strategy)
	}

	switch c.SaveBackend {
	case SaveBackendHTTP:
	case SaveBackendFirestore:
		if c.ProjectID == "" {
			return fmt.Errorf("GOOGLE_CLOUD_PROJECT is required when SAVE_BACKEND=firestore")
		}
	default:
		return fmt.Errorf("SAVE_BACKEND must be %q or %q, got %q", SaveBackendFirestore, SaveBackendHTTP, c.SaveBackend)
	}

	if c.GatewayBaseURL == "" && c.ProjectID == "" {
		return fmt.Errorf("either GATEWAY_BASE_URL or GOOGLE_CLOUD_PROJECT is required")
	}
	if c.ProgressTopic != "" && c.ProjectID == "" {
		return fmt.Errorf("GOOGLE_CLOUD_PROJECT is required when PROGRESS_TOPIC is set")
	}

	if c.RetryMaxAttempts < 1 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be at least 1")
	}
	if c.RetryMultiplier < 1 {
		return fmt.Errorf("RETRY_MULTIPLIER must be at least 1")
	}
	if c.RetryBaseDelay < 0 || c.RetryMaxDelay < 0 || c.RetryJitter < 0 {
		return fmt.Errorf("retry delays must not be negative")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// UsesCloudRun reports whether endpoints are resolved from Cloud Run services
func (c *Config) UsesCloudRun() bool {
	return c.GatewayBaseURL == ""
}
