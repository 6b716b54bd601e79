package intake

import "github.com/alkime/monshin/internal/capture"

// Effect is work Reduce asks the executor to perform. Every effect carries
// the epoch its result must match.
type Effect interface {
	EpochOf() uint64
}

type (
	StartCapture struct {
		Epoch  uint64
		Method InputMethod
	}
	StopCapture struct {
		Epoch  uint64
		Method InputMethod
	}
	Transcribe struct {
		Epoch uint64
		Audio capture.Audio
	}
	Summarize struct {
		Epoch     uint64
		Text      string
		Automatic bool
	}
	Diagnose struct {
		Epoch    uint64
		Symptoms string
	}
)

func (e StartCapture) EpochOf() uint64 { return e.Epoch }
func (e StopCapture) EpochOf() uint64  { return e.Epoch }
func (e Transcribe) EpochOf() uint64   { return e.Epoch }
func (e Summarize) EpochOf() uint64    { return e.Epoch }
func (e Diagnose) EpochOf() uint64     { return e.Epoch }
