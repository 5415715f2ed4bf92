// Package config loads configuration for the assistant, server, and worker
// binaries. Environment variables are the source of truth; an optional YAML
// file named by ASSISTANT_CONFIG supplies defaults underneath them.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	StoreDriver      string `yaml:"store_driver"`
	StorePath        string `yaml:"store_path"`
	DatabaseURL      string `yaml:"database_url"`
	ServerPort       string `yaml:"server_port"`
	APIKey           string `yaml:"api_key"`
	BackendURL       string `yaml:"backend_url"`
	BackendAPIKey    string `yaml:"backend_api_key"`
	OpenAIKey        string `yaml:"openai_api_key"`
	AIModel          string `yaml:"ai_model"`
	AIBaseURL        string `yaml:"ai_base_url"`
	RedisURL         string `yaml:"redis_url"`
	RabbitMQURL      string `yaml:"rabbitmq_url"`
	RabbitMQPrefetch int    `yaml:"rabbitmq_prefetch"`
	SeedDemoData     bool   `yaml:"seed_demo_data"`
	DebugMode        bool   `yaml:"debug_mode"`
	ServerDebugMode  bool   `yaml:"server_debug_mode"`
	WorkerDebugMode  bool   `yaml:"worker_debug_mode"`
	OTELEnabled      bool   `yaml:"otel_enabled"`
	OTELEndpoint     string `yaml:"otel_endpoint"`
}

// Load loads configuration: YAML file first (when ASSISTANT_CONFIG is set),
// environment variables on top.
func Load() (*Config, error) {
	cfg := &Config{
		StoreDriver:      "sqlite",
		StorePath:        defaultStorePath(),
		ServerPort:       "8080",
		RedisURL:         "redis://localhost:6379/0",
		RabbitMQPrefetch: 1,
		SeedDemoData:     true,
	}

	if path := os.Getenv("ASSISTANT_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.StoreDriver = getEnv("STORE_DRIVER", cfg.StoreDriver)
	cfg.StorePath = getEnv("STORE_PATH", cfg.StorePath)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.ServerPort = getEnv("SERVER_PORT", cfg.ServerPort)
	cfg.APIKey = getEnv("API_KEY", cfg.APIKey)
	cfg.BackendURL = getEnv("BACKEND_URL", cfg.BackendURL)
	cfg.BackendAPIKey = getEnv("BACKEND_API_KEY", cfg.BackendAPIKey)
	cfg.OpenAIKey = getEnv("OPENAI_API_KEY", cfg.OpenAIKey)
	cfg.AIModel = getEnv("AI_MODEL", cfg.AIModel)
	cfg.AIBaseURL = getEnv("AI_BASE_URL", cfg.AIBaseURL)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.RabbitMQURL = getEnv("RABBITMQ_URL", cfg.RabbitMQURL)
	cfg.RabbitMQPrefetch = getEnvInt("RABBITMQ_PREFETCH", cfg.RabbitMQPrefetch)
	cfg.SeedDemoData = getEnvBool("SEED_DEMO_DATA", cfg.SeedDemoData)
	cfg.DebugMode = getEnvBool("DEBUG_MODE", cfg.DebugMode)
	cfg.ServerDebugMode = getEnvBool("SERVER_DEBUG_MODE", cfg.ServerDebugMode)
	cfg.WorkerDebugMode = getEnvBool("WORKER_DEBUG_MODE", cfg.WorkerDebugMode)
	cfg.OTELEnabled = getEnvBool("OTEL_ENABLED", cfg.OTELEnabled)
	cfg.OTELEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTELEndpoint)

	if cfg.StoreDriver != "sqlite" && cfg.StoreDriver != "postgres" {
		return nil, fmt.Errorf("unknown STORE_DRIVER %q (want sqlite or postgres)", cfg.StoreDriver)
	}
	if cfg.StoreDriver == "postgres" && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=postgres")
	}

	return cfg, nil
}

// LoadServer loads configuration for the backend server, which additionally
// requires an API key for request authentication.
func LoadServer() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API_KEY is required")
	}
	return cfg, nil
}

// LoadWorker loads configuration for the mirror worker, which requires a
// RabbitMQ broker and backend credentials to push to.
func LoadWorker() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if cfg.RabbitMQURL == "" {
		return nil, fmt.Errorf("RABBITMQ_URL is required for the mirror worker")
	}
	if cfg.BackendURL == "" {
		return nil, fmt.Errorf("BACKEND_URL is required for the mirror worker")
	}
	return cfg, nil
}

// DSN returns the database connection string for the configured driver.
func (c *Config) DSN() string {
	if c.StoreDriver == "postgres" {
		return c.DatabaseURL
	}
	return c.StorePath
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "assistant.db"
	}
	return home + "/.assistant/assistant.db"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
