package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds process-level configuration for the hook service.
// Provider credentials and tunables live in the settings document, which is
// reloaded on every request (see LoadSettings).
type Config struct {
	// Server configuration
	Port             string `envconfig:"PORT" default:"8080"`
	HTTPReadTimeout  int    `envconfig:"HTTP_READ_TIMEOUT" default:"60"`   // seconds
	HTTPWriteTimeout int    `envconfig:"HTTP_WRITE_TIMEOUT" default:"300"` // seconds, must outlive the polling budget
	ShutdownTimeout  int    `envconfig:"SHUTDOWN_TIMEOUT" default:"30"`    // seconds
	MaxUploadBytes   int64  `envconfig:"MAX_UPLOAD_BYTES" default:"104857600"`

	// Path of the per-request settings document (.json or .toml)
	SettingsPath string `envconfig:"SETTINGS_PATH" default:"settings.json"`

	// Gemini model used for hook generation
	GeminiModel string `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`

	// FPT.AI TTS submission endpoint
	FPTEndpoint string `envconfig:"FPT_TTS_ENDPOINT" default:"https://api.fpt.ai/hmi/tts/v5"`

	// Observability configuration
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`       // Log level: debug, info, warn, error
	LogPretty      bool   `envconfig:"LOG_PRETTY" default:"false"`     // Pretty print logs (for development)
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"` // Enable Prometheus metrics
}

// Load reads configuration from environment variables
// It first attempts to load from .env file if it exists, then from environment
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.SettingsPath == "" {
		return nil, fmt.Errorf("SETTINGS_PATH must not be empty")
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", cfg.MaxUploadBytes)
	}

	return &cfg, nil
}

func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.HTTPReadTimeout) * time.Second
}

func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.HTTPWriteTimeout) * time.Second
}

func (c *Config) ShutdownGrace() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Second
}
