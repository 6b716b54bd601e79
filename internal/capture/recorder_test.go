package capture_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alkime/monshin/internal/apperr"
	"github.com/alkime/monshin/internal/audio"
	"github.com/alkime/monshin/internal/capture"
	"github.com/alkime/monshin/pkg/uictl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ uictl.CappedDial[int64] = (*capture.Recorder)(nil)

func TestRecorder_AssemblesMP3AndReleasesDevice(t *testing.T) {
	t.Parallel()

	dev := &fakeDevice{}
	rec := capture.NewRecorder(dev, audio.EncoderConfig{})

	require.NoError(t, rec.Start(context.Background()))
	require.ErrorIs(t, rec.Start(context.Background()), capture.ErrAlreadyCapturing)

	dev.push(sine(0.5))
	dev.push(sine(0.5))

	got, err := rec.Stop()
	require.NoError(t, err)

	assert.Equal(t, capture.RecordedName, got.Name)
	assert.Equal(t, capture.RecordedMediaType, got.MediaType)
	assert.NotEmpty(t, got.Data)
	assert.Equal(t, 1, dev.releaseCount())
	assert.False(t, dev.IsStarted())

	n, limit := rec.Cap()
	assert.Zero(t, n)
	assert.Equal(t, int64(capture.MaxAudioBytes), limit)
}

func TestRecorder_DeviceFailureIsReleased(t *testing.T) {
	t.Parallel()

	dev := &fakeDevice{captureErr: errors.New("busy")}
	rec := capture.NewRecorder(dev, audio.EncoderConfig{})

	err := rec.Start(context.Background())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindDevice))
	assert.Equal(t, 1, dev.releaseCount())

	_, err = rec.Stop()
	require.ErrorIs(t, err, capture.ErrNotCapturing)
}

func TestRecorder_EmptyRecording(t *testing.T) {
	t.Parallel()

	dev := &fakeDevice{}
	rec := capture.NewRecorder(dev, audio.EncoderConfig{})

	require.NoError(t, rec.Start(context.Background()))

	_, err := rec.Stop()
	require.ErrorIs(t, err, capture.ErrEmptyAudio)
	assert.Equal(t, 1, dev.releaseCount())
}
