package client

import (
	"bytes"
	"context"
	"io"

	"github.com/alkime/monshin/internal/api"
	"github.com/alkime/monshin/internal/apperr"
	"github.com/alkime/monshin/internal/capture"
)

// Transcriber matches content.Transcriber.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, filename, contentType string) (string, error)
}

// Writer matches content.Writer.
type Writer interface {
	Summarize(ctx context.Context, text string) (string, error)
	Diagnose(ctx context.Context, symptoms string) (string, error)
}

// Local runs the pipeline in-process, calling the providers directly.
// Failures are classified the way the server would classify them.
type Local struct {
	transcriber Transcriber
	writer      Writer
}

func NewLocal(t Transcriber, w Writer) *Local {
	return &Local{transcriber: t, writer: w}
}

func (l *Local) Transcribe(ctx context.Context, a capture.Audio) (string, error) {
	if err := capture.CheckSize(a.Size()); err != nil {
		return "", apperr.Wrap(apperr.KindValidation, api.ErrAudioTooLarge, err)
	}

	text, err := l.transcriber.Transcribe(ctx, bytes.NewReader(a.Data), a.Name, a.MediaType)
	if err != nil {
		return "", apperr.Collaborator("Failed to transcribe audio", err)
	}

	return text, nil
}

func (l *Local) Summarize(ctx context.Context, text string) (string, error) {
	summary, err := l.writer.Summarize(ctx, text)
	if err != nil {
		return "", apperr.Collaborator("Failed to summarize text", err)
	}

	return summary, nil
}

func (l *Local) Diagnose(ctx context.Context, symptoms string) (string, error) {
	diagnosis, err := l.writer.Diagnose(ctx, symptoms)
	if err != nil {
		return "", apperr.Collaborator("Failed to generate diagnosis", err)
	}

	return diagnosis, nil
}
