package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration for the application. It is constructed
// explicitly at startup and passed to the services that need it; there are no
// ambient singletons.
type Config struct {
	// Server configuration
	ServerHost string
	ServerPort string

	// Inbound static credential for API callers. Empty disables the check
	// (local development).
	APIKey string

	// Azure OpenAI configuration
	OpenAIEndpoint   string
	OpenAIDeployment string
	OpenAIAPIVersion string
	OpenAIKey        string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// S3 image storage, optional. Empty bucket disables image persistence.
	S3Bucket  string
	AWSRegion string
}

// LoadConfig creates a Config from environment variables. Secrets accept a
// *_FILE fallback pointing at a mounted secret file.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerHost:       getEnv("SERVER_HOST", "0.0.0.0"),
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		APIKey:           os.Getenv("API_KEY"),
		OpenAIEndpoint:   strings.TrimRight(os.Getenv("AZURE_OPENAI_ENDPOINT"), "/"),
		OpenAIDeployment: getEnv("AZURE_OPENAI_DEPLOYMENT", "gpt-4o-mini"),
		OpenAIAPIVersion: getEnv("AZURE_OPENAI_API_VERSION", "2024-08-01-preview"),
		RedisHost:        getEnv("REDIS_HOST", "localhost"),
		RedisPort:        getEnv("REDIS_PORT", "6379"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisURL:         os.Getenv("REDIS_URL"),
		S3Bucket:         os.Getenv("S3_BUCKET_NAME"),
		AWSRegion:        os.Getenv("AWS_REGION"),
	}

	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		db, err := strconv.Atoi(dbStr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB value %q: %w", dbStr, err)
		}
		cfg.RedisDB = db
	}

	key, err := loadSecret("AZURE_OPENAI_KEY")
	if err != nil {
		return nil, err
	}
	cfg.OpenAIKey = key

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// ValidateConfig rejects configurations that cannot reach the model endpoint.
func ValidateConfig(cfg *Config) error {
	if cfg.OpenAIEndpoint == "" {
		return fmt.Errorf("AZURE_OPENAI_ENDPOINT must be set")
	}
	if cfg.OpenAIDeployment == "" {
		return fmt.Errorf("AZURE_OPENAI_DEPLOYMENT must be set")
	}
	if cfg.OpenAIKey == "" {
		return fmt.Errorf("AZURE_OPENAI_KEY or AZURE_OPENAI_KEY_FILE must be set")
	}
	if cfg.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT must not be empty")
	}
	return nil
}

// loadSecret reads name from the environment, falling back to the file named
// by name_FILE.
func loadSecret(name string) (string, error) {
	if value := os.Getenv(name); value != "" {
		return value, nil
	}

	file := os.Getenv(name + "_FILE")
	if file == "" {
		return "", nil
	}
	content, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file for %s: %w", name, err)
	}
	return strings.TrimSpace(string(content)), nil
}

func getEnv(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}
