package intake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alkime/monshin/pkg/channels"
)

var ErrSessionClosed = errors.New("session closed")

const (
	eventQueueSize   = 64
	captureQueueSize = 8
)

// Session is the single consumer of intake events. Dispatch may be called
// from any goroutine; Run applies events one at a time, in arrival order,
// and starts the resulting effects. Capture effects share one lane so a
// stop never overtakes the start it belongs to.
type Session struct {
	exec   *Executor
	logger *slog.Logger

	events   chan Event
	updates  chan State
	captures chan Effect
	done     chan struct{}

	mu    sync.RWMutex
	state State

	effects sync.WaitGroup
}

func NewSession(initial State, exec *Executor, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}

	return &Session{
		exec:    exec,
		logger:  logger,
		events:   make(chan Event, eventQueueSize),
		updates:  make(chan State, 1),
		captures: make(chan Effect, captureQueueSize),
		done:     make(chan struct{}),
		state:    initial,
	}
}

// Dispatch queues an event. It blocks only while the queue is full and
// fails once Run has returned.
func (s *Session) Dispatch(ev Event) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}

	select {
	case s.events <- ev:
		return nil
	case <-s.done:
		return ErrSessionClosed
	}
}

// State returns the latest state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state
}

// Updates delivers the latest state after each applied event. Only the
// newest state is kept when the reader falls behind.
func (s *Session) Updates() <-chan State { return s.updates }

// Run consumes events until ctx is done, then waits for running effects.
func (s *Session) Run(ctx context.Context) error {
	s.effects.Go(func() {
		for eff := range s.captures {
			s.exec.Execute(ctx, eff, s.post)
		}
	})

	defer func() {
		close(s.done)
		close(s.captures)
		s.effects.Wait()
		s.exec.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-s.events:
			s.apply(ctx, ev)
		}
	}
}

func (s *Session) apply(ctx context.Context, ev Event) {
	s.mu.Lock()
	prev := s.state
	next, effects := Reduce(prev, ev)
	s.state = next
	s.mu.Unlock()

	if next.UI.Step != prev.UI.Step {
		s.logger.Info("step changed", "from", prev.UI.Step, "to", next.UI.Step)
	}

	if err := channels.Replace(s.updates, next); err != nil {
		s.logger.Warn("failed to publish state", "error", err)
	}

	for _, eff := range effects {
		s.logger.Debug("running effect", "effect", fmt.Sprintf("%T", eff), "epoch", eff.EpochOf())

		switch eff.(type) {
		case StartCapture, StopCapture:
			s.captures <- eff
		default:
			s.effects.Go(func() {
				s.exec.Execute(ctx, eff, s.post)
			})
		}
	}
}

// post is how effects report back. It never blocks past shutdown.
func (s *Session) post(ev Event) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}
