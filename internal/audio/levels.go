package audio

import (
	"context"
	"encoding/binary"
	"sync"
)

// DefaultLevelWindow is about 50ms of samples at DefaultSampleRate.
const DefaultLevelWindow = 800

// LevelTap wraps a Device and keeps the most recent samples it delivered.
// It satisfies uictl.Levels[int16] for the waveform view.
type LevelTap struct {
	Device

	window int

	mu      sync.Mutex
	samples []int16
}

// NewLevelTap taps dev, keeping up to window samples.
func NewLevelTap(dev Device, window int) *LevelTap {
	if window <= 0 {
		window = DefaultLevelWindow
	}

	return &LevelTap{Device: dev, window: window}
}

// Capture forwards every packet of the wrapped device unchanged. The
// returned channel closes after the wrapped one does.
func (t *LevelTap) Capture(ctx context.Context) (<-chan DataPacket, error) {
	in, err := t.Device.Capture(ctx)
	if err != nil {
		return nil, err
	}

	t.reset()

	out := make(chan DataPacket, cap(in))

	go func() {
		defer close(out)
		defer t.reset()

		for p := range in {
			t.record(p)
			out <- p
		}
	}()

	return out, nil
}

// Read returns a copy of the recent samples, oldest first.
func (t *LevelTap) Read() []int16 {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]int16(nil), t.samples...)
}

func (t *LevelTap) record(p DataPacket) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := 0; i+1 < len(p); i += 2 {
		t.samples = append(t.samples, int16(binary.LittleEndian.Uint16(p[i:])))
	}

	if over := len(t.samples) - t.window; over > 0 {
		t.samples = append(t.samples[:0], t.samples[over:]...)
	}
}

func (t *LevelTap) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.samples = nil
}
