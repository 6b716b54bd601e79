package capture_test

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/alkime/monshin/internal/audio"
	"github.com/alkime/monshin/internal/capture"
)

// fakeDevice hands out a buffered packet channel the test feeds directly.
type fakeDevice struct {
	captureErr error

	mu       sync.Mutex
	dataC    chan audio.DataPacket
	releases int
}

func (d *fakeDevice) EnumerateDevices(context.Context) ([]audio.Info, error) {
	return []audio.Info{{Name: "fake", IsDefault: true}}, nil
}

func (d *fakeDevice) Capture(context.Context) (<-chan audio.DataPacket, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.captureErr != nil {
		return nil, d.captureErr
	}

	d.dataC = make(chan audio.DataPacket, 64)

	return d.dataC, nil
}

func (d *fakeDevice) IsStarted() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.dataC != nil
}

func (d *fakeDevice) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.releases++
	if d.dataC != nil {
		close(d.dataC)
		d.dataC = nil
	}
}

func (d *fakeDevice) push(p audio.DataPacket) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.dataC <- p
}

func (d *fakeDevice) releaseCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.releases
}

// streamingDevice emits packets from its own goroutine without blocking,
// the way the malgo callback does, and counts what the reader missed.
type streamingDevice struct {
	packet audio.DataPacket
	every  time.Duration
	count  int

	mu      sync.Mutex
	dataC   chan audio.DataPacket
	sent    int
	dropped int
	done    chan struct{}
}

func newStreamingDevice(packetBytes int, every time.Duration, count int) *streamingDevice {
	return &streamingDevice{
		packet: sine(float64(packetBytes/2) / audio.DefaultSampleRate),
		every:  every,
		count:  count,
		done:   make(chan struct{}),
	}
}

func (d *streamingDevice) EnumerateDevices(context.Context) ([]audio.Info, error) {
	return []audio.Info{{Name: "stream", IsDefault: true}}, nil
}

func (d *streamingDevice) Capture(context.Context) (<-chan audio.DataPacket, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.dataC = make(chan audio.DataPacket, 64)

	go d.emit()

	return d.dataC, nil
}

func (d *streamingDevice) emit() {
	defer close(d.done)

	ticker := time.NewTicker(d.every)
	defer ticker.Stop()

	for range d.count {
		<-ticker.C

		d.mu.Lock()
		if d.dataC == nil {
			d.mu.Unlock()
			return
		}

		select {
		case d.dataC <- d.packet:
			d.sent++
		default:
			d.dropped++
		}
		d.mu.Unlock()
	}
}

func (d *streamingDevice) IsStarted() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.dataC != nil
}

func (d *streamingDevice) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.dataC != nil {
		close(d.dataC)
		d.dataC = nil
	}
}

func (d *streamingDevice) stats() (sent, dropped int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.sent, d.dropped
}

// fakeTranscriber replays answers in order, then returns "".
type fakeTranscriber struct {
	answers []string
	err     error
	delay   time.Duration

	mu    sync.Mutex
	calls int
	sizes []int
}

func (f *fakeTranscriber) Transcribe(_ context.Context, a capture.Audio) (string, error) {
	time.Sleep(f.delay)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	f.sizes = append(f.sizes, len(a.Data))

	if f.err != nil {
		return "", f.err
	}

	if len(a.Data) == 0 {
		return "", errors.New("empty audio")
	}

	if f.calls <= len(f.answers) {
		return f.answers[f.calls-1], nil
	}

	return "", nil
}

func (f *fakeTranscriber) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls
}

// sine returns d seconds of 440Hz mono S16LE at 16kHz.
func sine(seconds float64) []byte {
	n := int(seconds * audio.DefaultSampleRate)
	pcm := make([]byte, n*2)

	for i := range n {
		v := int16(8000 * math.Sin(2*math.Pi*440*float64(i)/audio.DefaultSampleRate))
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(v))
	}

	return pcm
}

func collect(events <-chan capture.Event) []capture.Event {
	var out []capture.Event
	for ev := range events {
		out = append(out, ev)
	}

	return out
}
