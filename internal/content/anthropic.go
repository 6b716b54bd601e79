package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicCompleter runs completions through the Anthropic Messages API.
type AnthropicCompleter struct {
	apiKey string
	model  anthropic.Model
	opts   []option.RequestOption
}

// NewAnthropicCompleter creates a Messages API backend.
func NewAnthropicCompleter(apiKey string, opts ...option.RequestOption) *AnthropicCompleter {
	return &AnthropicCompleter{
		apiKey: apiKey,
		model:  anthropic.ModelClaudeSonnet4_5_20250929,
		opts:   opts,
	}
}

// Complete implements Completer.
func (c *AnthropicCompleter) Complete(ctx context.Context, req Completion) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("API key required: set ANTHROPIC_API_KEY")
	}

	client := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(c.apiKey)}, c.opts...)...)

	params := anthropic.MessageNewParams{
		Model:       c.model,
		MaxTokens:   req.MaxTokens,
		Temperature: anthropic.Float(req.Temperature),
		System: []anthropic.TextBlockParam{
			{Text: req.System},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.User)),
		},
	}

	resp, err := client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to complete via Anthropic API: %w", err)
	}

	// Extract text from response
	if len(resp.Content) == 0 {
		return "", errors.New("empty response from Anthropic API")
	}

	textBlock, ok := resp.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return "", errors.New("unexpected response type from Anthropic API")
	}

	return textBlock.Text, nil
}
