package intake

import (
	"errors"

	"github.com/alkime/monshin/internal/apperr"
	"github.com/alkime/monshin/internal/capture"
	"github.com/alkime/monshin/pkg/collections"
)

// Reduce applies one event to s and returns the next state together with
// the effects to run. It is pure: no I/O, no clock, no mutation of s.
// Events that are not allowed in the current state return s unchanged.
//
//nolint:cyclop,funlen // one case per event type
func Reduce(s State, ev Event) (State, []Effect) {
	switch ev := ev.(type) {
	case SetPatientField:
		return setPatientField(s, ev), nil

	case TransitionRequest:
		return transition(s, ev.To)

	case ToggleCapture:
		return toggleCapture(s)

	case CaptureStarted:
		if ev.Epoch != s.epoch || s.UI.Capture != CaptureStarting {
			return s, nil
		}
		s.UI.Capture = CaptureListening
		return s, nil

	case CaptureEvent:
		if ev.Epoch != s.epoch {
			return s, nil
		}
		return captureEvent(s, ev.Event)

	case CaptureFailed:
		if ev.Epoch != s.epoch {
			return s, nil
		}
		s.UI.Capture = CaptureIdle
		switch {
		case apperr.Is(ev.Err, apperr.KindDevice):
			s.UI.Method = MethodManual
			s.UI.Error = MsgDeviceFallback
		case errors.Is(ev.Err, capture.ErrAudioTooLarge):
			s.UI.Error = MsgAudioTooLarge
		case errors.Is(ev.Err, capture.ErrEmptyAudio):
			s.UI.Error = MsgNoSpeech
		default:
			s.UI.Error = MsgTranscribeFailed
		}
		return s, nil

	case AudioReady:
		if ev.Epoch != s.epoch {
			return s, nil
		}
		s.UI.Capture = CaptureIdle
		return submitAudio(s, ev.Audio)

	case FileSelected:
		if s.UI.Loading || s.Capturing() || s.UI.Step != StepVoiceInput {
			return s, nil
		}
		if ev.Err != nil {
			s.UI.Error = fileErrorMessage(ev.Err)
			return s, nil
		}
		return submitAudio(s, ev.Audio)

	case TranscribeDone:
		if ev.Epoch != s.epoch {
			return s, nil
		}
		s.UI.Loading = false
		s.Transcript = Uploaded(ev.Text)
		if Blank(ev.Text) {
			s.UI.Error = MsgNoSpeech
			return s, nil
		}
		return summarize(s, s.Transcript.Authoritative(), true)

	case TranscribeFailed:
		if ev.Epoch != s.epoch {
			return s, nil
		}
		s.UI.Loading = false
		s.UI.Error = transcribeErrorMessage(ev.Err)
		return s, nil

	case SummarizeDone:
		if ev.Epoch != s.epoch {
			return s, nil
		}
		s.UI.Loading = false
		s.UI.Error = ""
		s.Review.Summary = ev.Summary
		switch {
		case !ev.Automatic:
			s.Review.EditableText = ev.Summary
			s.Review.EditedByUser = false
		case !s.Review.EditedByUser:
			s.Review.EditableText = ev.Summary
		}
		return s, nil

	case SummarizeFailed:
		if ev.Epoch != s.epoch {
			return s, nil
		}
		s.UI.Loading = false
		s.UI.Error = MsgSummarizeFailed
		return s, nil

	case EditText:
		s.Review.EditableText = ev.Text
		s.Review.EditedByUser = true
		return s, nil

	case RequestSummary:
		if s.UI.Loading || s.Capturing() {
			return s, nil
		}
		text, ok := collections.FirstMatch(notBlank, s.Transcript.Authoritative(), s.Review.EditableText)
		if !ok {
			return s, nil
		}
		return summarize(s, text, false)

	case RequestDiagnosis:
		if s.UI.Loading || s.UI.Step != StepClinician {
			return s, nil
		}
		symptoms, ok := collections.FirstMatch(notBlank, s.Review.EditableText, s.Review.Summary, s.Transcription())
		if !ok {
			return s, nil
		}
		s.UI.Loading = true
		return s, []Effect{Diagnose{Epoch: s.epoch, Symptoms: symptoms}}

	case DiagnoseDone:
		if ev.Epoch != s.epoch {
			return s, nil
		}
		s.UI.Loading = false
		s.UI.Error = ""
		s.Review.Diagnosis = ev.Diagnosis
		return s, nil

	case DiagnoseFailed:
		if ev.Epoch != s.epoch {
			return s, nil
		}
		s.UI.Loading = false
		s.UI.Error = MsgDiagnoseFailed
		return s, nil

	case Reset:
		return reset(s)
	}

	return s, nil
}

func notBlank(s string) bool { return !Blank(s) }

func setPatientField(s State, ev SetPatientField) State {
	switch ev.Field {
	case FieldVisitType:
		s.Patient.VisitType = VisitType(ev.Value)
	case FieldLastName:
		s.Patient.LastName = ev.Value
	case FieldFirstName:
		s.Patient.FirstName = ev.Value
	case FieldGender:
		s.Patient.Gender = Gender(ev.Value)
	}

	return s
}

// CanAdvance reports whether the forward guard of the current step holds.
func CanAdvance(s State) bool {
	switch s.UI.Step {
	case StepPatientInfo:
		return s.Patient.Complete()
	case StepVoiceInput:
		_, ok := collections.FirstMatch(notBlank, s.Review.EditableText, s.Review.Summary, s.Transcription())
		return ok
	case StepConfirm, StepSubmitted:
		return true
	default:
		return false
	}
}

// CanGoBack reports whether the current step allows going back.
func CanGoBack(s State) bool {
	return s.UI.Step == StepVoiceInput || s.UI.Step == StepConfirm
}

// transition moves one step. Going back is allowed while capturing: the
// adapter is stopped and the epoch advanced so its late results are dropped.
func transition(s State, to Step) (State, []Effect) {
	var effects []Effect

	switch {
	case to == s.UI.Step+1 && CanAdvance(s) && !s.Capturing():
	case to == s.UI.Step-1 && CanGoBack(s):
		if s.Capturing() {
			effects = append(effects, StopCapture{Epoch: s.epoch, Method: s.UI.Method})
			s.epoch++
			s.UI.Capture = CaptureIdle
			s.Transcript = s.Transcript.Settle()
		}
	default:
		return s, nil
	}

	s.UI.Step = to
	s.UI.Error = ""

	return s, effects
}

func toggleCapture(s State) (State, []Effect) {
	if s.UI.Loading || s.UI.Step != StepVoiceInput || s.UI.Method == MethodManual {
		return s, nil
	}

	switch s.UI.Capture {
	case CaptureIdle:
		s.epoch++
		s.UI.Capture = CaptureStarting
		s.UI.Error = ""
		s.Transcript = Transcript{}
		return s, []Effect{StartCapture{Epoch: s.epoch, Method: s.UI.Method}}

	case CaptureStarting, CaptureListening:
		s.UI.Capture = CaptureStopping
		return s, []Effect{StopCapture{Epoch: s.epoch, Method: s.UI.Method}}

	default:
		return s, nil
	}
}

func captureEvent(s State, ev capture.Event) (State, []Effect) {
	switch ev.Kind {
	case capture.EventPartial, capture.EventFinal:
		s.Transcript = s.Transcript.Apply(ev)
		return s, nil

	case capture.EventError:
		s.UI.Capture = CaptureIdle
		s.UI.Error = recognitionMessage(ev.Code)
		return s, nil

	case capture.EventEnded:
		s.UI.Capture = CaptureIdle
		s.Transcript = s.Transcript.Settle()
		text := s.Transcript.Authoritative()
		if Blank(text) || s.UI.Loading {
			return s, nil
		}
		return summarize(s, text, true)
	}

	return s, nil
}

func summarize(s State, text string, automatic bool) (State, []Effect) {
	s.UI.Loading = true
	return s, []Effect{Summarize{Epoch: s.epoch, Text: text, Automatic: automatic}}
}

func submitAudio(s State, a capture.Audio) (State, []Effect) {
	if err := capture.CheckSize(a.Size()); err != nil {
		s.UI.Error = MsgAudioTooLarge
		return s, nil
	}

	s.UI.Loading = true
	s.UI.Error = ""

	return s, []Effect{Transcribe{Epoch: s.epoch, Audio: a}}
}

func reset(s State) (State, []Effect) {
	var effects []Effect
	if s.Capturing() {
		effects = append(effects, StopCapture{Epoch: s.epoch, Method: s.UI.Method})
	}

	next := Initial(s.detection)
	next.epoch = s.epoch + 1

	return next, effects
}

func recognitionMessage(code capture.ErrorCode) string {
	switch code {
	case capture.CodeNotAllowed:
		return MsgNotAllowed
	case capture.CodeNoSpeech:
		return MsgNoSpeech
	default:
		return MsgRecognition
	}
}

func fileErrorMessage(err error) string {
	if errors.Is(err, capture.ErrAudioTooLarge) {
		return MsgAudioTooLarge
	}

	return MsgNotAudio
}

func transcribeErrorMessage(err error) string {
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindCollaborator:
		return MsgTranscribeFailed
	default:
		return MsgUploadFailed
	}
}
