package content

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	// TranscriptionLanguage pins Whisper to Japanese speech.
	TranscriptionLanguage = "ja"
	// TranscriptionTemperature keeps decoding close to greedy.
	TranscriptionTemperature = 0.2
)

// Transcriber handles Whisper API transcription requests.
type Transcriber struct {
	apiKey string
	opts   []option.RequestOption
}

// NewTranscriber creates a new transcription client. Extra request options
// are appended after the API key (base URL overrides, retries).
func NewTranscriber(apiKey string, opts ...option.RequestOption) *Transcriber {
	return &Transcriber{
		apiKey: apiKey,
		opts:   opts,
	}
}

// Transcribe sends one audio object to Whisper and returns its text.
func (t *Transcriber) Transcribe(ctx context.Context, audio io.Reader, filename, contentType string) (string, error) {
	// Validate API key
	if t.apiKey == "" {
		return "", errors.New("API key required: set OPENAI_API_KEY")
	}

	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(t.apiKey)}, t.opts...)...)

	params := openai.AudioTranscriptionNewParams{
		File:           openai.File(audio, filename, contentType),
		Model:          openai.AudioModelWhisper1,
		Language:       openai.String(TranscriptionLanguage),
		ResponseFormat: openai.AudioResponseFormatJSON,
		Temperature:    openai.Float(TranscriptionTemperature),
	}

	resp, err := client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to create transcription via Whisper API: %w", err)
	}

	return resp.Text, nil
}
