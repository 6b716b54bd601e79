package capture_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alkime/monshin/internal/capture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecognizer(dev *fakeDevice, tr *fakeTranscriber) *capture.WindowedRecognizer {
	return capture.NewWindowedRecognizer(dev, tr, capture.RecognizerConfig{
		Interval: time.Hour,
		Window:   time.Second,
	})
}

func TestWindowedRecognizer_CommitsWindowsThenEnds(t *testing.T) {
	t.Parallel()

	dev := &fakeDevice{}
	tr := &fakeTranscriber{answers: []string{"頭が痛い", "です"}}
	rec := newRecognizer(dev, tr)

	events, err := rec.Start(context.Background())
	require.NoError(t, err)

	dev.push(sine(1.0))

	select {
	case ev := <-events:
		assert.Equal(t, capture.Final("頭が痛い"), ev)
	case <-time.After(5 * time.Second):
		t.Fatal("no final event for a full window")
	}

	dev.push(sine(0.3))
	rec.Stop()

	rest := collect(events)
	assert.Equal(t, []capture.Event{capture.Final("です"), capture.Ended()}, rest)
	assert.GreaterOrEqual(t, dev.releaseCount(), 1)
	assert.Equal(t, 2, tr.callCount())
}

func TestWindowedRecognizer_NoSpeech(t *testing.T) {
	t.Parallel()

	dev := &fakeDevice{}
	rec := newRecognizer(dev, &fakeTranscriber{})

	events, err := rec.Start(context.Background())
	require.NoError(t, err)

	rec.Stop()

	got := collect(events)
	require.Len(t, got, 2)
	assert.Equal(t, capture.EventError, got[0].Kind)
	assert.Equal(t, capture.CodeNoSpeech, got[0].Code)
	assert.Equal(t, capture.EventEnded, got[1].Kind)
}

func TestWindowedRecognizer_DeviceUnavailable(t *testing.T) {
	t.Parallel()

	dev := &fakeDevice{captureErr: errors.New("permission denied")}
	rec := newRecognizer(dev, &fakeTranscriber{})

	events, err := rec.Start(context.Background())
	require.NoError(t, err)

	got := collect(events)
	require.Len(t, got, 2)
	assert.Equal(t, capture.CodeNotAllowed, got[0].Code)
	assert.Equal(t, capture.EventEnded, got[1].Kind)
	assert.Equal(t, 1, dev.releaseCount())
}

func TestWindowedRecognizer_TranscriberFailure(t *testing.T) {
	t.Parallel()

	dev := &fakeDevice{}
	rec := newRecognizer(dev, &fakeTranscriber{err: errors.New("upstream 500")})

	events, err := rec.Start(context.Background())
	require.NoError(t, err)

	dev.push(sine(1.0))

	got := collect(events)
	require.Len(t, got, 2)
	assert.Equal(t, capture.CodeOther, got[0].Code)
	assert.EqualError(t, got[0].Err, "upstream 500")
	assert.Equal(t, capture.EventEnded, got[1].Kind)
	assert.GreaterOrEqual(t, dev.releaseCount(), 1)
}

func TestWindowedRecognizer_RejectsSecondStart(t *testing.T) {
	t.Parallel()

	dev := &fakeDevice{}
	rec := newRecognizer(dev, &fakeTranscriber{})

	events, err := rec.Start(context.Background())
	require.NoError(t, err)

	_, err = rec.Start(context.Background())
	require.ErrorIs(t, err, capture.ErrAlreadyCapturing)

	rec.Stop()
	collect(events)
}

func kinds(events []capture.Event, kind capture.EventKind) []capture.Event {
	var out []capture.Event
	for _, ev := range events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}

	return out
}

func TestWindowedRecognizer_KeepsReadingDuringSlowPasses(t *testing.T) {
	t.Parallel()

	// 100 packets of 10ms each, 1s of audio in total.
	dev := newStreamingDevice(320, 10*time.Millisecond, 100)
	tr := &fakeTranscriber{answers: strings.Split(strings.Repeat("x", 32), ""), delay: 300 * time.Millisecond}
	rec := capture.NewWindowedRecognizer(dev, tr, capture.RecognizerConfig{
		Interval: 100 * time.Millisecond,
		Window:   400 * time.Millisecond,
	})

	events, err := rec.Start(context.Background())
	require.NoError(t, err)

	got := make(chan []capture.Event, 1)
	go func() { got <- collect(events) }()

	select {
	case <-dev.done:
	case <-time.After(5 * time.Second):
		t.Fatal("device never finished streaming")
	}

	rec.Stop()

	all := <-got
	sent, dropped := dev.stats()
	assert.Equal(t, 100, sent)
	assert.Zero(t, dropped, "packets lost while a pass was in flight")

	// two full windows and the remainder on stop
	assert.Len(t, kinds(all, capture.EventFinal), 3)
	assert.Equal(t, capture.Ended(), all[len(all)-1])
}

func TestWindowedRecognizer_PartialBeforeFinal(t *testing.T) {
	t.Parallel()

	dev := &fakeDevice{}
	tr := &fakeTranscriber{answers: []string{"頭", "頭が痛い"}}
	rec := capture.NewWindowedRecognizer(dev, tr, capture.RecognizerConfig{
		Interval: 20 * time.Millisecond,
		Window:   10 * time.Second,
	})

	events, err := rec.Start(context.Background())
	require.NoError(t, err)

	dev.push(sine(0.6))

	select {
	case ev := <-events:
		assert.Equal(t, capture.Partial("頭"), ev)
	case <-time.After(5 * time.Second):
		t.Fatal("no provisional text")
	}

	// an unchanged window is not transcribed again
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, tr.callCount())

	rec.Stop()

	assert.Equal(t, []capture.Event{capture.Final("頭が痛い"), capture.Ended()}, collect(events))
	assert.Equal(t, 2, tr.callCount())
}

func TestWindowedRecognizer_ShortAudioSkipsPartial(t *testing.T) {
	t.Parallel()

	dev := &fakeDevice{}
	tr := &fakeTranscriber{answers: []string{"はい"}}
	rec := capture.NewWindowedRecognizer(dev, tr, capture.RecognizerConfig{
		Interval: 20 * time.Millisecond,
		Window:   10 * time.Second,
	})

	events, err := rec.Start(context.Background())
	require.NoError(t, err)

	dev.push(sine(0.3))
	time.Sleep(150 * time.Millisecond)
	assert.Zero(t, tr.callCount())

	rec.Stop()

	assert.Equal(t, []capture.Event{capture.Final("はい"), capture.Ended()}, collect(events))
}

func TestWindowedRecognizer_PartialFailureEnds(t *testing.T) {
	t.Parallel()

	dev := &fakeDevice{}
	rec := capture.NewWindowedRecognizer(dev, &fakeTranscriber{err: errors.New("rate limited")}, capture.RecognizerConfig{
		Interval: 20 * time.Millisecond,
		Window:   10 * time.Second,
	})

	events, err := rec.Start(context.Background())
	require.NoError(t, err)

	dev.push(sine(0.6))

	got := collect(events)
	require.Len(t, got, 2)
	assert.Equal(t, capture.EventError, got[0].Kind)
	assert.Equal(t, capture.CodeOther, got[0].Code)
	assert.EqualError(t, got[0].Err, "rate limited")
	assert.Equal(t, capture.EventEnded, got[1].Kind)
	assert.GreaterOrEqual(t, dev.releaseCount(), 1)
}
