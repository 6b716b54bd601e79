package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alkime/monshin/internal/auth"
	"github.com/alkime/monshin/internal/config"
	"github.com/alkime/monshin/internal/content"
	"github.com/alkime/monshin/internal/logger"
	"github.com/alkime/monshin/internal/server"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup structured logging
	lg := logger.SetupLogger(cfg)

	lg.Info("Starting monshin server",
		"env", cfg.Env,
		"port", cfg.Port,
		"llm_provider", cfg.LLMProvider,
	)

	if err := run(cfg, lg); err != nil {
		lg.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, lg *slog.Logger) error {
	writer, err := newWriter(cfg)
	if err != nil {
		return err
	}

	if cfg.OpenAIAPIKey == "" {
		return errors.New("OPENAI_API_KEY is required for transcription")
	}

	store, err := auth.NewStore(auth.DemoCredentials)
	if err != nil {
		return fmt.Errorf("failed to build credential store: %w", err)
	}

	srv, err := server.New(cfg, lg, server.Deps{
		Transcriber: content.NewTranscriber(cfg.OpenAIAPIKey),
		Writer:      writer,
		Credentials: store,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Run(ctx, srv)
}

// newWriter picks the chat model backend for summaries and diagnosis hints.
func newWriter(cfg *config.Config) (*content.Writer, error) {
	switch cfg.LLMProvider {
	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, errors.New("ANTHROPIC_API_KEY is required when LLM_PROVIDER=anthropic")
		}

		return content.NewWriter(content.NewAnthropicCompleter(cfg.AnthropicAPIKey)), nil

	default:
		if cfg.OpenAIAPIKey == "" {
			return nil, errors.New("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}

		return content.NewWriter(content.NewOpenAICompleter(cfg.OpenAIAPIKey)), nil
	}
}
