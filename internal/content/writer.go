package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	summaryMaxTokens   = 400
	diagnosisMaxTokens = 600
	writerTemperature  = 0.3
)

// Completion is one system+user prompt exchange.
type Completion struct {
	System      string
	User        string
	MaxTokens   int64
	Temperature float64
}

// Completer runs a single completion against an LLM backend.
type Completer interface {
	Complete(ctx context.Context, c Completion) (string, error)
}

// Writer produces the clinician-facing texts: the intake summary and the
// diagnosis hint.
type Writer struct {
	completer Completer
}

// NewWriter creates a Writer on top of the given backend.
func NewWriter(completer Completer) *Writer {
	return &Writer{completer: completer}
}

// Summarize condenses a patient's transcript into the 症状/期間/程度/関連情報 template.
func (w *Writer) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", errors.New("text is required")
	}

	summary, err := w.completer.Complete(ctx, Completion{
		System:      SummarySystemPrompt,
		User:        SummaryUserPrompt(text),
		MaxTokens:   summaryMaxTokens,
		Temperature: writerTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to summarize: %w", err)
	}

	return summary, nil
}

// Diagnose proposes a hedged differential-diagnosis hint for a physician.
func (w *Writer) Diagnose(ctx context.Context, symptoms string) (string, error) {
	if strings.TrimSpace(symptoms) == "" {
		return "", errors.New("symptoms are required")
	}

	diagnosis, err := w.completer.Complete(ctx, Completion{
		System:      DiagnosisSystemPrompt,
		User:        DiagnosisUserPrompt(symptoms),
		MaxTokens:   diagnosisMaxTokens,
		Temperature: writerTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate diagnosis: %w", err)
	}

	return EnsureDisclaimer(diagnosis), nil
}
