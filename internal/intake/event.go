package intake

import "github.com/alkime/monshin/internal/capture"

// Event is an input to Reduce.
type Event interface {
	isEvent()
}

// PatientField names a step-1 form field.
type PatientField int

const (
	FieldVisitType PatientField = iota
	FieldLastName
	FieldFirstName
	FieldGender
)

type (
	SetPatientField struct {
		Field PatientField
		Value string
	}

	// TransitionRequest asks to move to an adjacent step.
	TransitionRequest struct{ To Step }

	// ToggleCapture starts or stops the adapter of the current method.
	ToggleCapture struct{}

	CaptureStarted struct{ Epoch uint64 }

	// CaptureEvent relays one recognizer event.
	CaptureEvent struct {
		Epoch uint64
		Event capture.Event
	}

	// CaptureFailed reports that an adapter could not start or finish.
	CaptureFailed struct {
		Epoch uint64
		Err   error
	}

	// AudioReady carries a finished microphone recording.
	AudioReady struct {
		Epoch uint64
		Audio capture.Audio
	}

	// FileSelected carries the outcome of opening a user-picked file.
	FileSelected struct {
		Audio capture.Audio
		Err   error
	}

	TranscribeDone struct {
		Epoch uint64
		Text  string
	}
	TranscribeFailed struct {
		Epoch uint64
		Err   error
	}

	SummarizeDone struct {
		Epoch     uint64
		Summary   string
		Automatic bool
	}
	SummarizeFailed struct {
		Epoch uint64
		Err   error
	}

	// EditText is the user typing into the editable text.
	EditText struct{ Text string }

	// RequestSummary is the user asking for a (re-)summary.
	RequestSummary struct{}

	RequestDiagnosis struct{}

	DiagnoseDone struct {
		Epoch     uint64
		Diagnosis string
	}
	DiagnoseFailed struct {
		Epoch uint64
		Err   error
	}

	Reset struct{}
)

func (SetPatientField) isEvent()   {}
func (TransitionRequest) isEvent() {}
func (ToggleCapture) isEvent()     {}
func (CaptureStarted) isEvent()    {}
func (CaptureEvent) isEvent()      {}
func (CaptureFailed) isEvent()     {}
func (AudioReady) isEvent()        {}
func (FileSelected) isEvent()      {}
func (TranscribeDone) isEvent()    {}
func (TranscribeFailed) isEvent()  {}
func (SummarizeDone) isEvent()     {}
func (SummarizeFailed) isEvent()   {}
func (EditText) isEvent()          {}
func (RequestSummary) isEvent()    {}
func (RequestDiagnosis) isEvent()  {}
func (DiagnoseDone) isEvent()      {}
func (DiagnoseFailed) isEvent()    {}
func (Reset) isEvent()             {}
