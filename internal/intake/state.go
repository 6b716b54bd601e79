// Package intake is the five-step patient intake flow as a pure reducer over
// an immutable State, plus the executor and session that drive it.
package intake

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Step is a screen of the intake flow.
type Step int

const (
	StepPatientInfo Step = iota + 1
	StepVoiceInput
	StepConfirm
	StepSubmitted
	StepClinician
)

func (s Step) String() string {
	switch s {
	case StepPatientInfo:
		return "patient-info"
	case StepVoiceInput:
		return "voice-input"
	case StepConfirm:
		return "confirm"
	case StepSubmitted:
		return "submitted"
	case StepClinician:
		return "clinician"
	default:
		return fmt.Sprintf("Step(%d)", int(s))
	}
}

type VisitType string

const (
	VisitFirst  VisitType = "first"
	VisitReturn VisitType = "return"
	VisitForgot VisitType = "forgot"
)

// VisitTypes lists the choices in display order.
var VisitTypes = []VisitType{VisitFirst, VisitReturn, VisitForgot}

func (v VisitType) Label() string {
	switch v {
	case VisitFirst:
		return "初診"
	case VisitReturn:
		return "再診"
	case VisitForgot:
		return "診察券番号忘れ"
	default:
		return ""
	}
}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

var Genders = []Gender{GenderMale, GenderFemale}

func (g Gender) Label() string {
	switch g {
	case GenderMale:
		return "男性"
	case GenderFemale:
		return "女性"
	default:
		return ""
	}
}

// InputMethod is how step 2 acquires the patient's account of symptoms.
type InputMethod string

const (
	MethodSpeech InputMethod = "speech"
	MethodUpload InputMethod = "upload"
	MethodManual InputMethod = "manual"
)

// CaptureState tracks the live adapter. Anything but CaptureIdle counts as
// capturing.
type CaptureState int

const (
	CaptureIdle CaptureState = iota
	CaptureStarting
	CaptureListening
	CaptureStopping
)

func (c CaptureState) String() string {
	switch c {
	case CaptureIdle:
		return "idle"
	case CaptureStarting:
		return "starting"
	case CaptureListening:
		return "listening"
	case CaptureStopping:
		return "stopping"
	default:
		return fmt.Sprintf("CaptureState(%d)", int(c))
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// PatientInfo is filled in on step 1.
type PatientInfo struct {
	VisitType VisitType `validate:"required,oneof=first return forgot"`
	LastName  string    `validate:"required"`
	FirstName string    `validate:"required"`
	Gender    Gender    `validate:"required,oneof=male female"`
}

// Complete reports whether every field is set to a valid value.
func (p PatientInfo) Complete() bool {
	return validate.Struct(p) == nil
}

// Review is the content the later steps read.
type Review struct {
	Summary      string
	EditableText string
	Diagnosis    string
	// EditedByUser is set once the user types into EditableText.
	EditedByUser bool
}

// UI is the transient presentation state.
type UI struct {
	Step    Step
	Loading bool
	// Error is cleared by every transition and every successful action.
	Error string
	// Notice is the detector's advisory. It survives transitions.
	Notice  string
	Method  InputMethod
	Capture CaptureState
}

// State is one intake session. Treat it as a value: Reduce never mutates
// its input.
type State struct {
	Patient    PatientInfo
	Transcript Transcript
	Review     Review
	UI         UI

	detection Detection
	epoch     uint64
}

// Initial is the state at start-up and after a reset.
func Initial(d Detection) State {
	return State{
		UI: UI{
			Step:   StepPatientInfo,
			Notice: d.Notice,
			Method: d.Method,
		},
		detection: d,
	}
}

// Detection returns the start-up classification this session was built on.
func (s State) Detection() Detection { return s.detection }

// Epoch identifies the current capture or request generation. Results
// tagged with an older epoch are stale and ignored.
func (s State) Epoch() uint64 { return s.epoch }

// Capturing reports whether a capture adapter is live.
func (s State) Capturing() bool { return s.UI.Capture != CaptureIdle }

// Transcription is the display transcript including provisional text.
func (s State) Transcription() string { return s.Transcript.Display() }
