package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the storefront.
// Following 12-factor app principles, all config is loaded from environment
// variables; a local .env file is read first if present.
type Config struct {
	Backend  BackendConfig
	Server   ServerConfig
	Storage  StorageConfig
	Cart     CartConfig
	LogLevel string
}

// BackendConfig describes the remote catalog/auth service.
type BackendConfig struct {
	BaseURL string
	Timeout int // seconds, per request
}

// ServerConfig describes the local storefront HTTP server.
type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
}

// StorageConfig describes the persisted key-value store.
type StorageConfig struct {
	Path string
}

// CartConfig holds cart ledger settings.
type CartConfig struct {
	MaxQuantity int // per-line quantity cap
}

// Load reads configuration from a .env file (if present) and the environment.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		Backend: BackendConfig{
			BaseURL: getEnv("BACKEND_BASE_URL", "http://localhost:3000/api"),
			Timeout: getEnvAsInt("BACKEND_TIMEOUT", 10),
		},
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "127.0.0.1"),
			ReadTimeout:     getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout:    getEnvAsInt("WRITE_TIMEOUT", 15),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 30),
		},
		Storage: StorageConfig{
			Path: getEnv("STORAGE_PATH", "storefront.json"),
		},
		Cart: CartConfig{
			MaxQuantity: getEnvAsInt("CART_MAX_QUANTITY", 10),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("BACKEND_BASE_URL is required")
	}
	if u, err := url.Parse(c.Backend.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("BACKEND_BASE_URL must be an absolute URL: %q", c.Backend.BaseURL)
	}

	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Storage.Path == "" {
		return fmt.Errorf("STORAGE_PATH is required")
	}

	if c.Cart.MaxQuantity < 1 {
		return fmt.Errorf("CART_MAX_QUANTITY must be at least 1, got %d", c.Cart.MaxQuantity)
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
