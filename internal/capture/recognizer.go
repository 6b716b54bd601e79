package capture

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/alkime/monshin/internal/audio"
	"github.com/alkime/monshin/pkg/channels"
)

const (
	DefaultInterval = 3 * time.Second
	DefaultWindow   = 15 * time.Second

	// minimum audio worth a provisional pass.
	minPartialAudio = 500 * time.Millisecond
	sendTimeout     = 5 * time.Second
)

// Transcriber turns one audio object into text.
type Transcriber interface {
	Transcribe(ctx context.Context, a Audio) (string, error)
}

// RecognizerConfig tunes the windowing of WindowedRecognizer.
type RecognizerConfig struct {
	// Interval between provisional passes over the open window.
	Interval time.Duration
	// Window is the audio length committed as one final segment.
	Window time.Duration
	// SampleRate of the mono S16LE PCM the device delivers.
	SampleRate int
}

func (c RecognizerConfig) WithDefaults() RecognizerConfig {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}

	if c.Window <= 0 {
		c.Window = DefaultWindow
	}

	if c.SampleRate <= 0 {
		c.SampleRate = audio.DefaultSampleRate
	}

	return c
}

func (c RecognizerConfig) bytesFor(d time.Duration) int {
	return int(d.Seconds()*float64(c.SampleRate)) * 2
}

// WindowedRecognizer emulates a streaming recognizer on top of a batch
// transcriber: the open window is re-transcribed every Interval as a
// Partial and committed as a Final once it reaches Window, or on stop.
type WindowedRecognizer struct {
	dev         audio.Device
	transcriber Transcriber
	config      RecognizerConfig

	mu    sync.Mutex
	stopC chan struct{}
	once  *sync.Once
}

func NewWindowedRecognizer(dev audio.Device, t Transcriber, config RecognizerConfig) *WindowedRecognizer {
	return &WindowedRecognizer{
		dev:         dev,
		transcriber: t,
		config:      config.WithDefaults(),
	}
}

// Start acquires the microphone and begins recognition. A device that cannot
// be acquired is reported in-band as a not-allowed failure.
func (r *WindowedRecognizer) Start(ctx context.Context) (<-chan Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopC != nil {
		return nil, ErrAlreadyCapturing
	}

	events := make(chan Event, 16)

	dataC, err := r.dev.Capture(ctx)
	if err != nil {
		r.dev.Release()
		slog.Warn("recognizer could not acquire microphone", "error", err)

		events <- Failure(CodeNotAllowed, err)
		events <- Ended()
		close(events)

		return events, nil
	}

	stopC := make(chan struct{})
	r.stopC, r.once = stopC, new(sync.Once)

	go r.run(ctx, dataC, stopC, events)

	return events, nil
}

// Stop ends the session. The final window is committed before Ended.
func (r *WindowedRecognizer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopC == nil {
		return
	}

	stopC := r.stopC
	r.once.Do(func() { close(stopC) })
}

type session struct {
	r       *WindowedRecognizer
	ctx     context.Context
	events  chan<- Event
	results chan pass

	window   []byte
	sealed   [][]byte
	lastPass int

	// gen counts sealed windows; a partial from an older window is stale.
	gen       int
	inflight  bool
	wantTick  bool
	draining  bool
	committed bool
}

// pass is the outcome of one transcription run over a window.
type pass struct {
	final bool
	gen   int
	text  string
	err   error
}

// run drains the device on every iteration. Transcription happens on a
// worker goroutine, one pass at a time, so slow passes never stall capture.
//
//nolint:funlen,cyclop // select loop
func (r *WindowedRecognizer) run(ctx context.Context, dataC <-chan audio.DataPacket, stopC <-chan struct{}, events chan Event) {
	defer func() {
		r.mu.Lock()
		r.stopC, r.once = nil, nil
		r.mu.Unlock()
		close(events)
	}()
	defer r.dev.Release()

	s := &session{r: r, ctx: ctx, events: events, results: make(chan pass, 1)}
	windowBytes := r.config.bytesFor(r.config.Window)

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case packet, ok := <-dataC:
			if !ok {
				// stopped, or the device went away underneath us
				dataC, s.draining = nil, true
				s.seal()
			} else {
				s.window = append(s.window, packet...)
				if len(s.window) >= windowBytes {
					s.seal()
				}
			}

		case <-ticker.C:
			s.wantTick = !s.draining

		case res := <-s.results:
			s.inflight = false
			if res.err != nil {
				s.fail(res.err)
				return
			}

			s.deliver(res)

		case <-stopC:
			stopC = nil
			r.dev.Release()

		case <-ctx.Done():
			s.send(Ended())
			return
		}

		s.next()

		if s.draining && !s.inflight && len(s.sealed) == 0 {
			s.finish()
			return
		}
	}
}

// seal closes the open window as a final segment.
func (s *session) seal() {
	if len(s.window) == 0 {
		return
	}

	s.sealed = append(s.sealed, s.window)
	s.window, s.lastPass = nil, 0
	s.gen++
}

// next starts a pass when the worker is idle. Sealed windows go first, in
// order; a provisional pass runs only when a tick asked for one.
func (s *session) next() {
	if s.inflight {
		return
	}

	if len(s.sealed) > 0 {
		pcm := s.sealed[0]
		s.sealed = s.sealed[1:]
		s.start(pcm, true)

		return
	}

	if !s.wantTick {
		return
	}

	s.wantTick = false

	minBytes := s.r.config.bytesFor(minPartialAudio)
	if len(s.window) < minBytes || len(s.window) == s.lastPass {
		return
	}

	s.lastPass = len(s.window)
	s.start(slices.Clone(s.window), false)
}

func (s *session) start(pcm []byte, final bool) {
	s.inflight = true
	gen := s.gen

	go func() {
		text, err := s.transcribe(pcm)
		s.results <- pass{final: final, gen: gen, text: text, err: err}
	}()
}

func (s *session) transcribe(pcm []byte) (string, error) {
	encoded, err := audio.EncodeMP3(pcm, s.r.config.SampleRate)
	if err != nil {
		return "", err
	}

	text, err := s.r.transcriber.Transcribe(s.ctx, Audio{
		Name:      RecordedName,
		MediaType: RecordedMediaType,
		Data:      encoded,
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(text), nil
}

func (s *session) deliver(res pass) {
	if res.text == "" {
		return
	}

	if res.final {
		s.committed = true
		s.send(Final(res.text))

		return
	}

	if res.gen != s.gen || s.draining {
		return
	}

	// provisional text is best effort; a lagging reader loses it.
	_ = channels.SendNonBlock(s.events, Partial(res.text))
}

func (s *session) finish() {
	if !s.committed {
		s.send(Failure(CodeNoSpeech, errors.New("no speech recognised")))
	}

	s.send(Ended())
}

func (s *session) fail(err error) {
	slog.Error("live recognition failed", "error", err)
	s.send(Failure(CodeOther, err))
	s.send(Ended())
}

func (s *session) send(ev Event) {
	if err := channels.SendWithTimeout(s.events, ev, sendTimeout); err != nil {
		slog.Warn("dropped recognizer event", "kind", ev.Kind, "error", err)
	}
}
