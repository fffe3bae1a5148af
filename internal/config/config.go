// Package config loads the application configuration from environment
// variables and an optional .env file.
package config

import (
	"fmt"
	"log/slog"

	"github.com/spf13/viper"
)

// Config holds the application's configuration values.
type Config struct {
	ServerPort           string
	LogLevel             string
	LogFormat            string
	OllamaHost           string
	ModelName            string
	Temperature          float64
	MaxTokens            int
	MaxConcurrentReviews int
	AllowedOrigin        string
}

// LoadConfig reads configuration from environment variables and a .env
// file, sets defaults, and validates the result. Only this package
// knows about Viper; everything else receives plain values.
func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")
	viper.SetDefault("OLLAMA_HOST", "http://localhost:11434")
	viper.SetDefault("OLLAMA_MODEL", "llama2:latest")
	viper.SetDefault("OLLAMA_TEMPERATURE", 0.3)
	viper.SetDefault("MAX_TOKENS", 512)
	viper.SetDefault("MAX_CONCURRENT_REVIEWS", 5)
	viper.SetDefault("ALLOWED_ORIGIN", "http://localhost:3000")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Debug("no .env file loaded", "error", err)
		}
	}

	cfg := &Config{
		ServerPort:           viper.GetString("SERVER_PORT"),
		LogLevel:             viper.GetString("LOG_LEVEL"),
		LogFormat:            viper.GetString("LOG_FORMAT"),
		OllamaHost:           viper.GetString("OLLAMA_HOST"),
		ModelName:            viper.GetString("OLLAMA_MODEL"),
		Temperature:          viper.GetFloat64("OLLAMA_TEMPERATURE"),
		MaxTokens:            viper.GetInt("MAX_TOKENS"),
		MaxConcurrentReviews: viper.GetInt("MAX_CONCURRENT_REVIEWS"),
		AllowedOrigin:        viper.GetString("ALLOWED_ORIGIN"),
	}

	if cfg.OllamaHost == "" {
		return nil, fmt.Errorf("OLLAMA_HOST must not be empty")
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("OLLAMA_MODEL must not be empty")
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		return nil, fmt.Errorf("OLLAMA_TEMPERATURE must be between 0 and 2, got %v", cfg.Temperature)
	}
	if cfg.MaxTokens <= 0 {
		return nil, fmt.Errorf("MAX_TOKENS must be positive, got %d", cfg.MaxTokens)
	}
	if cfg.MaxConcurrentReviews <= 0 {
		return nil, fmt.Errorf("MAX_CONCURRENT_REVIEWS must be positive, got %d", cfg.MaxConcurrentReviews)
	}

	return cfg, nil
}
