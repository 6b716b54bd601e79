package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alkime/monshin/internal/client"
	"github.com/alkime/monshin/internal/content"
	"github.com/alkime/monshin/internal/intake"
	"github.com/alkime/monshin/internal/keyring"
)

const healthTimeout = 3 * time.Second

// PipelineFlags choose where transcription and text generation run.
type PipelineFlags struct {
	ServerURL   string `name:"server-url" env:"MONSHIN_SERVER_URL" default:"http://localhost:8080" help:"Base URL of the monshin server"`
	Pipeline    string `enum:"server,local" default:"server" help:"Run the AI pipeline through the server or in-process (server, local)"`
	LLMProvider string `name:"llm-provider" env:"LLM_PROVIDER" enum:"openai,anthropic" default:"openai" help:"Chat model backend for --pipeline=local"`
}

// build returns the pipeline the flags describe. For the server pipeline a
// failed health check is logged but not fatal; the server may come up later.
func (f PipelineFlags) build(ctx context.Context, logger *slog.Logger) (intake.Pipeline, error) {
	if f.Pipeline == "local" {
		return f.buildLocal()
	}

	c, err := client.New(f.ServerURL, client.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	hctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	if err := c.Health(hctx); err != nil {
		logger.Warn("server health check failed", "url", f.ServerURL, "error", err)
	}

	return c, nil
}

func (f PipelineFlags) buildLocal() (intake.Pipeline, error) {
	openAIKey, err := keyring.Lookup(keyring.OpenAI)
	if err != nil {
		return nil, fmt.Errorf("missing OpenAI API key: set OPENAI_API_KEY or run 'intake config set-key openai <key>': %w", err)
	}

	completer := content.Completer(content.NewOpenAICompleter(openAIKey))

	if f.LLMProvider == "anthropic" {
		anthropicKey, err := keyring.Lookup(keyring.Anthropic)
		if err != nil {
			return nil, fmt.Errorf("missing Anthropic API key: set ANTHROPIC_API_KEY or run 'intake config set-key anthropic <key>': %w", err)
		}

		completer = content.NewAnthropicCompleter(anthropicKey)
	}

	return client.NewLocal(content.NewTranscriber(openAIKey), content.NewWriter(completer)), nil
}
