package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alkime/monshin/internal/apperr"
	"github.com/alkime/monshin/internal/audio"
)

var (
	ErrAlreadyCapturing = errors.New("capture already in progress")
	ErrNotCapturing     = errors.New("no capture in progress")
)

// RecordedName and RecordedMediaType label microphone recordings.
const (
	RecordedName      = "audio.mp3"
	RecordedMediaType = "audio/mpeg"
)

// Recorder streams microphone PCM through the MP3 encoder into memory.
// It satisfies uictl.CappedDial[int64] so a UI can show progress toward
// MaxAudioBytes.
type Recorder struct {
	dev    audio.Device
	config audio.EncoderConfig

	mu      sync.Mutex
	encoder *audio.StreamingEncoder
	buf     *bytes.Buffer
	cancel  context.CancelFunc
}

// NewRecorder records from dev. Zero config fields take encoder defaults.
func NewRecorder(dev audio.Device, config audio.EncoderConfig) *Recorder {
	return &Recorder{
		dev:    dev,
		config: config.WithDefaults(),
	}
}

// Start acquires the microphone. The device is released before returning
// when anything fails.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.encoder != nil {
		return ErrAlreadyCapturing
	}

	dataC, err := r.dev.Capture(ctx)
	if err != nil {
		r.dev.Release()
		return apperr.Wrap(apperr.KindDevice, "microphone unavailable", err)
	}

	buf := new(bytes.Buffer)

	encoder, err := audio.NewStreamingEncoder(r.config, dataC, buf)
	if err != nil {
		r.dev.Release()
		return fmt.Errorf("failed to create MP3 encoder: %w", err)
	}

	// The encoder outlives the caller's request; Stop ends it by releasing
	// the device, which closes its input.
	encCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	if err := encoder.Start(encCtx); err != nil {
		cancel()
		r.dev.Release()
		return fmt.Errorf("failed to start MP3 encoder: %w", err)
	}

	r.encoder, r.buf, r.cancel = encoder, buf, cancel
	slog.Info("recording started")

	return nil
}

// Stop releases the microphone, waits for the encoder to drain, and returns
// the assembled recording.
func (r *Recorder) Stop() (Audio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.encoder == nil {
		return Audio{}, ErrNotCapturing
	}

	r.dev.Release()

	err := r.encoder.Wait()
	r.cancel()

	data := r.buf.Bytes()
	r.encoder, r.buf, r.cancel = nil, nil, nil

	if err != nil {
		return Audio{}, fmt.Errorf("failed to encode recording: %w", err)
	}

	slog.Info("recording stopped", "bytes", len(data))

	if len(data) == 0 {
		return Audio{}, ErrEmptyAudio
	}

	if err := CheckSize(int64(len(data))); err != nil {
		return Audio{}, err
	}

	return Audio{Name: RecordedName, MediaType: RecordedMediaType, Data: data}, nil
}

// Read returns the encoded bytes so far, zero when idle.
func (r *Recorder) Read() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.encoder == nil {
		return 0
	}

	return r.encoder.BytesWritten()
}

// Cap returns the encoded bytes so far and the upload limit.
func (r *Recorder) Cap() (num, max int64) {
	return r.Read(), MaxAudioBytes
}
