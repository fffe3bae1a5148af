// Package app initializes and orchestrates the main components of the
// application: configuration, model client, review pipeline, and HTTP
// server.
package app

import (
	"fmt"
	"log/slog"

	"github.com/sevigo/review-agent/internal/config"
	"github.com/sevigo/review-agent/internal/llm"
	"github.com/sevigo/review-agent/internal/review"
	"github.com/sevigo/review-agent/internal/server"
)

// App holds the main application components.
type App struct {
	cfg    *config.Config
	server *server.Server
	logger *slog.Logger
}

// NewApp sets up the application with all its dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	logger.Info("initializing review agent",
		"ollama_host", cfg.OllamaHost,
		"model", cfg.ModelName,
		"temperature", cfg.Temperature,
		"max_concurrent_reviews", cfg.MaxConcurrentReviews,
	)

	client := llm.NewOllamaClient(cfg.OllamaHost, cfg.ModelName, cfg.Temperature, logger,
		llm.WithMaxTokens(cfg.MaxTokens),
	)

	prompts, err := llm.NewPromptManager()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize prompt manager: %w", err)
	}

	pipeline := review.NewPipeline(client, prompts, logger)
	httpServer := server.NewServer(cfg, pipeline, logger)

	return &App{
		cfg:    cfg,
		server: httpServer,
		logger: logger,
	}, nil
}

// Start runs the HTTP server.
func (a *App) Start() error {
	a.logger.Info("starting review agent", "server_port", a.cfg.ServerPort)
	return a.server.Start()
}

// Stop shuts down the application cleanly. In-flight reviews get the
// server's drain window to finish.
func (a *App) Stop() error {
	a.logger.Info("shutting down review agent")

	if err := a.server.Stop(); err != nil {
		a.logger.Error("error during HTTP server shutdown", "error", err)
		return err
	}

	a.logger.Info("review agent stopped successfully")
	return nil
}
