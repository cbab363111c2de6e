// Package config loads the process configuration from environment variables
// once at startup. The resulting Config value is immutable; nothing in the
// service mutates configuration at runtime.
package config

import (
	"fmt"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	// Port is the HTTP listen port.
	// Environment variable: EXPENSEFLOW_PORT
	Port string `koanf:"EXPENSEFLOW_PORT"`

	// DBPath is the path of the bbolt database file.
	// Environment variable: EXPENSEFLOW_DB_PATH
	DBPath string `koanf:"EXPENSEFLOW_DB_PATH"`

	// GeminiModel is the Gemini model used for extraction and transcription.
	// Environment variable: EXPENSEFLOW_GEMINI_MODEL
	GeminiModel string `koanf:"EXPENSEFLOW_GEMINI_MODEL"`

	// FallbackOnly disables the model-backed engine entirely; every message is
	// handled by the deterministic parser.
	// Environment variable: EXPENSEFLOW_FALLBACK_ONLY
	FallbackOnly bool `koanf:"EXPENSEFLOW_FALLBACK_ONLY"`

	// Transcriber selects the audio transcription backend: "mock" or "gemini".
	// Environment variable: EXPENSEFLOW_TRANSCRIBER
	Transcriber string `koanf:"EXPENSEFLOW_TRANSCRIBER"`

	// AdminUser and AdminPassword gate the admin API. When AdminPassword is
	// empty the panel runs open.
	// Environment variables: EXPENSEFLOW_ADMIN_USER, EXPENSEFLOW_ADMIN_PASSWORD
	AdminUser     string `koanf:"EXPENSEFLOW_ADMIN_USER"`
	AdminPassword string `koanf:"EXPENSEFLOW_ADMIN_PASSWORD"`

	// LogLevel is the zerolog level name.
	// Environment variable: EXPENSEFLOW_LOG_LEVEL
	LogLevel string `koanf:"EXPENSEFLOW_LOG_LEVEL"`

	// QueueSize is the webhook job queue buffer size.
	// Environment variable: EXPENSEFLOW_QUEUE_SIZE
	QueueSize int `koanf:"EXPENSEFLOW_QUEUE_SIZE"`

	// Workers is the number of concurrent message workers.
	// Environment variable: EXPENSEFLOW_WORKERS
	Workers int `koanf:"EXPENSEFLOW_WORKERS"`
}

// Load reads the configuration from the environment and applies defaults.
func Load() (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", nil), nil); err != nil {
		return nil, fmt.Errorf("config.Load: loading environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return nil, fmt.Errorf("config.Load: unmarshal: %w", err)
	}

	if cfg.Port == "" {
		cfg.Port = "8000"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "data/expenseflow.db"
	}
	if cfg.Transcriber == "" {
		cfg.Transcriber = "mock"
	}
	if cfg.AdminUser == "" {
		cfg.AdminUser = "admin"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}

	return &cfg, nil
}
