package intake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alkime/monshin/internal/apperr"
	"github.com/alkime/monshin/internal/capture"
)

// Pipeline is the AI collaborator as seen from the intake flow.
type Pipeline interface {
	Transcribe(ctx context.Context, a capture.Audio) (string, error)
	Summarize(ctx context.Context, text string) (string, error)
	Diagnose(ctx context.Context, symptoms string) (string, error)
}

// Capturer bundles the adapters. A nil adapter behaves like a microphone
// that cannot be acquired.
type Capturer struct {
	Recognizer capture.Recognizer
	Recorder   capture.AudioRecorder
}

var errNoAdapter = errors.New("no capture adapter for input method")

// Executor runs effects and reports their outcome as events.
type Executor struct {
	pipeline Pipeline
	capturer Capturer
	logger   *slog.Logger

	relays sync.WaitGroup
}

func NewExecutor(pipeline Pipeline, capturer Capturer, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{pipeline: pipeline, capturer: capturer, logger: logger}
}

// Execute runs one effect, posting result events. Capture effects return
// once the adapter has started or stopped; a live recognizer's events are
// relayed from a separate goroutine until its stream closes.
//
//nolint:cyclop // one case per effect
func (x *Executor) Execute(ctx context.Context, eff Effect, post func(Event)) {
	epoch := eff.EpochOf()

	switch eff := eff.(type) {
	case StartCapture:
		x.startCapture(ctx, eff, post)

	case StopCapture:
		x.stopCapture(eff, post)

	case Transcribe:
		text, err := x.pipeline.Transcribe(ctx, eff.Audio)
		if err != nil {
			x.logger.Error("transcription failed", "error", err, "bytes", eff.Audio.Size())
			post(TranscribeFailed{Epoch: epoch, Err: err})
			return
		}
		post(TranscribeDone{Epoch: epoch, Text: text})

	case Summarize:
		summary, err := x.pipeline.Summarize(ctx, eff.Text)
		if err != nil {
			x.logger.Error("summarization failed", "error", err, "automatic", eff.Automatic)
			post(SummarizeFailed{Epoch: epoch, Err: err})
			return
		}
		post(SummarizeDone{Epoch: epoch, Summary: summary, Automatic: eff.Automatic})

	case Diagnose:
		diagnosis, err := x.pipeline.Diagnose(ctx, eff.Symptoms)
		if err != nil {
			x.logger.Error("diagnosis failed", "error", err)
			post(DiagnoseFailed{Epoch: epoch, Err: err})
			return
		}
		post(DiagnoseDone{Epoch: epoch, Diagnosis: diagnosis})

	default:
		x.logger.Warn("unknown effect", "effect", fmt.Sprintf("%T", eff))
	}
}

func (x *Executor) startCapture(ctx context.Context, eff StartCapture, post func(Event)) {
	switch eff.Method {
	case MethodSpeech:
		if x.capturer.Recognizer == nil {
			post(CaptureFailed{Epoch: eff.Epoch, Err: apperr.Wrap(apperr.KindDevice, "recognizer unavailable", errNoAdapter)})
			return
		}

		events, err := x.capturer.Recognizer.Start(ctx)
		if err != nil {
			x.logger.Error("failed to start recognizer", "error", err)
			post(CaptureFailed{Epoch: eff.Epoch, Err: err})
			return
		}

		post(CaptureStarted{Epoch: eff.Epoch})
		x.relays.Go(func() {
			for ev := range events {
				post(CaptureEvent{Epoch: eff.Epoch, Event: ev})
			}
		})

	case MethodUpload:
		if x.capturer.Recorder == nil {
			post(CaptureFailed{Epoch: eff.Epoch, Err: apperr.Wrap(apperr.KindDevice, "recorder unavailable", errNoAdapter)})
			return
		}

		if err := x.capturer.Recorder.Start(ctx); err != nil {
			x.logger.Error("failed to start recorder", "error", err)
			post(CaptureFailed{Epoch: eff.Epoch, Err: err})
			return
		}

		post(CaptureStarted{Epoch: eff.Epoch})

	default:
		post(CaptureFailed{Epoch: eff.Epoch, Err: fmt.Errorf("%w: %s", errNoAdapter, eff.Method)})
	}
}

// Wait blocks until every relayed recognizer stream has closed.
func (x *Executor) Wait() { x.relays.Wait() }

func (x *Executor) stopCapture(eff StopCapture, post func(Event)) {
	switch eff.Method {
	case MethodSpeech:
		if x.capturer.Recognizer != nil {
			// the relay started by StartCapture delivers the closing events.
			x.capturer.Recognizer.Stop()
		}

	case MethodUpload:
		if x.capturer.Recorder == nil {
			return
		}

		a, err := x.capturer.Recorder.Stop()
		if err != nil {
			x.logger.Error("failed to stop recorder", "error", err)
			post(CaptureFailed{Epoch: eff.Epoch, Err: err})
			return
		}
		post(AudioReady{Epoch: eff.Epoch, Audio: a})

	default:
	}
}
