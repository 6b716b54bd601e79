// Package capture holds the two interchangeable ways of acquiring spoken
// input: a live recognizer that streams text, and a recorder (microphone or
// file) that yields one audio object for transcription.
package capture

import (
	"context"
	"fmt"
)

// EventKind tags a recognizer event.
type EventKind int

const (
	// EventPartial carries provisional text that may still be revised.
	EventPartial EventKind = iota
	// EventFinal carries a committed segment.
	EventFinal
	// EventError reports a recognition failure. An Ended event follows.
	EventError
	// EventEnded is always the last event of a capture session.
	EventEnded
)

func (k EventKind) String() string {
	switch k {
	case EventPartial:
		return "partial"
	case EventFinal:
		return "final"
	case EventError:
		return "error"
	case EventEnded:
		return "ended"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// ErrorCode distinguishes recognition failures the user can act on.
type ErrorCode string

const (
	CodeNotAllowed ErrorCode = "not-allowed"
	CodeNoSpeech   ErrorCode = "no-speech"
	CodeOther      ErrorCode = "other"
)

// Event is one message from a live recognizer.
type Event struct {
	Kind EventKind
	Text string
	Code ErrorCode
	Err  error
}

func Partial(text string) Event { return Event{Kind: EventPartial, Text: text} }
func Final(text string) Event   { return Event{Kind: EventFinal, Text: text} }
func Ended() Event              { return Event{Kind: EventEnded} }

func Failure(code ErrorCode, err error) Event {
	return Event{Kind: EventError, Code: code, Err: err}
}

// Recognizer is the live recognition adapter. Start returns a receive-only
// stream that is closed after the EventEnded it always delivers.
type Recognizer interface {
	Start(ctx context.Context) (<-chan Event, error)
	Stop()
}

// AudioRecorder is the microphone entry point of the recording adapter.
type AudioRecorder interface {
	Start(ctx context.Context) error
	Stop() (Audio, error)
}
