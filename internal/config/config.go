package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port              string        `mapstructure:"PORT"`
	DatabaseURL       string        `mapstructure:"DATABASE_URL"`
	MigrationsPath    string        `mapstructure:"MIGRATIONS_PATH"`
	GeminiAPIKey      string        `mapstructure:"GEMINI_API_KEY"`
	GeminiModel       string        `mapstructure:"GEMINI_MODEL"`
	GeminiBaseURL     string        `mapstructure:"GEMINI_BASE_URL"`
	ModelTimeout      time.Duration `mapstructure:"MODEL_TIMEOUT"`
	InterviewMaxTurns int           `mapstructure:"INTERVIEW_MAX_TURNS"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	LogPretty         bool          `mapstructure:"LOG_PRETTY"`
	ShutdownTimeout   time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

var keys = []string{
	"PORT",
	"DATABASE_URL",
	"MIGRATIONS_PATH",
	"GEMINI_API_KEY",
	"GEMINI_MODEL",
	"GEMINI_BASE_URL",
	"MODEL_TIMEOUT",
	"INTERVIEW_MAX_TURNS",
	"LOG_LEVEL",
	"LOG_PRETTY",
	"SHUTDOWN_TIMEOUT",
}

// Load reads the environment, after merging an optional .env file from the
// working directory. Variables already set in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("MODEL_TIMEOUT", "60s")
	v.SetDefault("INTERVIEW_MAX_TURNS", 12)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")

	// Unmarshal only sees env vars that are bound.
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT must not be empty")
	}
	if c.ModelTimeout <= 0 {
		return fmt.Errorf("MODEL_TIMEOUT must be positive, got %s", c.ModelTimeout)
	}
	if c.InterviewMaxTurns <= 0 {
		return fmt.Errorf("INTERVIEW_MAX_TURNS must be positive, got %d", c.InterviewMaxTurns)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout)
	}
	return nil
}

// HasDatabase reports whether report history is backed by Postgres.
func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}
