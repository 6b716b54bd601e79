package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAICompleter runs completions through OpenAI chat completions.
type OpenAICompleter struct {
	apiKey string
	model  openai.ChatModel
	opts   []option.RequestOption
}

// NewOpenAICompleter creates a chat completion backend.
func NewOpenAICompleter(apiKey string, opts ...option.RequestOption) *OpenAICompleter {
	return &OpenAICompleter{
		apiKey: apiKey,
		model:  openai.ChatModelGPT3_5Turbo,
		opts:   opts,
	}
}

// Complete implements Completer.
func (c *OpenAICompleter) Complete(ctx context.Context, req Completion) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("API key required: set OPENAI_API_KEY")
	}

	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(c.apiKey)}, c.opts...)...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.User),
		},
		MaxTokens:   openai.Int(req.MaxTokens),
		Temperature: openai.Float(req.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("failed to complete via OpenAI API: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("empty response from OpenAI API")
	}

	return resp.Choices[0].Message.Content, nil
}
