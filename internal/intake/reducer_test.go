package intake_test

import (
	"errors"
	"testing"

	"github.com/alkime/monshin/internal/apperr"
	"github.com/alkime/monshin/internal/capture"
	"github.com/alkime/monshin/internal/intake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apply(s intake.State, evs ...intake.Event) intake.State {
	for _, ev := range evs {
		s, _ = intake.Reduce(s, ev)
	}

	return s
}

func patientEvents() []intake.Event {
	return []intake.Event{
		intake.SetPatientField{Field: intake.FieldVisitType, Value: string(intake.VisitFirst)},
		intake.SetPatientField{Field: intake.FieldLastName, Value: "山田"},
		intake.SetPatientField{Field: intake.FieldFirstName, Value: "花子"},
		intake.SetPatientField{Field: intake.FieldGender, Value: string(intake.GenderFemale)},
	}
}

func atVoiceInput(t *testing.T, method intake.InputMethod) intake.State {
	t.Helper()

	s := apply(intake.Initial(intake.Detection{Method: method}), patientEvents()...)
	s = apply(s, intake.TransitionRequest{To: intake.StepVoiceInput})
	require.Equal(t, intake.StepVoiceInput, s.UI.Step)

	return s
}

func TestReduce_PatientInfoGuard(t *testing.T) {
	t.Parallel()

	fields := patientEvents()

	// every subset of the four fields; only the full set may advance.
	for mask := range 1 << len(fields) {
		s := intake.Initial(intake.Detection{Method: intake.MethodSpeech})
		for i, ev := range fields {
			if mask&(1<<i) != 0 {
				s = apply(s, ev)
			}
		}

		s = apply(s, intake.TransitionRequest{To: intake.StepVoiceInput})

		want := intake.StepPatientInfo
		if mask == 1<<len(fields)-1 {
			want = intake.StepVoiceInput
		}
		assert.Equal(t, want, s.UI.Step, "mask %04b", mask)
	}
}

func TestReduce_PatientInfoRejectsUnknownEnum(t *testing.T) {
	t.Parallel()

	s := apply(intake.Initial(intake.Detection{}), patientEvents()...)
	s = apply(s,
		intake.SetPatientField{Field: intake.FieldGender, Value: "other"},
		intake.TransitionRequest{To: intake.StepVoiceInput},
	)

	assert.Equal(t, intake.StepPatientInfo, s.UI.Step)
}

func TestReduce_VoiceInputGuard(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		evs  []intake.Event
		want intake.Step
	}{
		{"nothing entered", nil, intake.StepVoiceInput},
		{"whitespace only", []intake.Event{intake.EditText{Text: " 　\n"}}, intake.StepVoiceInput},
		{"typed text", []intake.Event{intake.EditText{Text: "咳が出る"}}, intake.StepConfirm},
		{"summary only", []intake.Event{intake.SummarizeDone{Summary: "症状: 咳"}}, intake.StepConfirm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := apply(atVoiceInput(t, intake.MethodSpeech), tt.evs...)
			s = apply(s, intake.TransitionRequest{To: intake.StepConfirm})
			assert.Equal(t, tt.want, s.UI.Step)
		})
	}
}

func TestReduce_LinearNavigation(t *testing.T) {
	t.Parallel()

	s := atVoiceInput(t, intake.MethodManual)
	s = apply(s, intake.EditText{Text: "喉が痛い"})

	// no skipping
	assert.Equal(t, intake.StepVoiceInput, apply(s, intake.TransitionRequest{To: intake.StepSubmitted}).UI.Step)

	back := apply(s, intake.TransitionRequest{To: intake.StepPatientInfo})
	assert.Equal(t, intake.StepPatientInfo, back.UI.Step)
	assert.Equal(t, "喉が痛い", back.Review.EditableText)
	assert.Equal(t, "山田", back.Patient.LastName)

	s = apply(s, intake.TransitionRequest{To: intake.StepConfirm})
	require.Equal(t, intake.StepConfirm, s.UI.Step)
	assert.Equal(t, intake.StepVoiceInput, apply(s, intake.TransitionRequest{To: intake.StepVoiceInput}).UI.Step)

	s = apply(s, intake.TransitionRequest{To: intake.StepSubmitted})
	require.Equal(t, intake.StepSubmitted, s.UI.Step)
	assert.Equal(t, intake.StepSubmitted, apply(s, intake.TransitionRequest{To: intake.StepConfirm}).UI.Step)

	s = apply(s, intake.TransitionRequest{To: intake.StepClinician})
	require.Equal(t, intake.StepClinician, s.UI.Step)
	assert.Equal(t, intake.StepClinician, apply(s, intake.TransitionRequest{To: intake.StepSubmitted}).UI.Step)
	assert.Equal(t, intake.StepClinician, apply(s, intake.TransitionRequest{To: 6}).UI.Step)
}

func TestReduce_TransitionClearsOnlyError(t *testing.T) {
	t.Parallel()

	s := atVoiceInput(t, intake.MethodUpload)
	s = apply(s,
		intake.EditText{Text: "めまい"},
		intake.FileSelected{Err: capture.ErrNotAudio},
	)
	require.Equal(t, intake.MsgNotAudio, s.UI.Error)

	next := apply(s, intake.TransitionRequest{To: intake.StepPatientInfo})

	want := s
	want.UI.Step = intake.StepPatientInfo
	want.UI.Error = ""
	assert.Equal(t, want, next)
}

func TestReduce_LiveRecognitionFlow(t *testing.T) {
	t.Parallel()

	s := atVoiceInput(t, intake.MethodSpeech)

	s, effects := intake.Reduce(s, intake.ToggleCapture{})
	require.Equal(t, []intake.Effect{intake.StartCapture{Epoch: 1, Method: intake.MethodSpeech}}, effects)
	assert.Equal(t, intake.CaptureStarting, s.UI.Capture)

	epoch := s.Epoch()
	s = apply(s,
		intake.CaptureStarted{Epoch: epoch},
		intake.CaptureEvent{Epoch: epoch, Event: capture.Final("a")},
		intake.CaptureEvent{Epoch: epoch, Event: capture.Final("b")},
		intake.CaptureEvent{Epoch: epoch, Event: capture.Partial("c")},
	)
	assert.Equal(t, intake.CaptureListening, s.UI.Capture)
	assert.Equal(t, "abc", s.Transcription())
	assert.Equal(t, "ab", s.Transcript.Authoritative())

	// going forward waits for the capture to end
	assert.Equal(t, intake.StepVoiceInput, apply(s, intake.TransitionRequest{To: intake.StepConfirm}).UI.Step)

	s, effects = intake.Reduce(s, intake.ToggleCapture{})
	require.Equal(t, []intake.Effect{intake.StopCapture{Epoch: epoch, Method: intake.MethodSpeech}}, effects)

	s, effects = intake.Reduce(s, intake.CaptureEvent{Epoch: epoch, Event: capture.Ended()})
	require.Equal(t, []intake.Effect{intake.Summarize{Epoch: epoch, Text: "ab", Automatic: true}}, effects)
	assert.True(t, s.UI.Loading)
	assert.False(t, s.Capturing())

	s = apply(s, intake.SummarizeDone{Epoch: epoch, Summary: "症状: ab", Automatic: true})
	assert.False(t, s.UI.Loading)
	assert.Equal(t, "症状: ab", s.Review.Summary)
	assert.Equal(t, "症状: ab", s.Review.EditableText)
}

func TestReduce_BackWhileCapturingStopsAdapter(t *testing.T) {
	t.Parallel()

	for _, method := range []intake.InputMethod{intake.MethodSpeech, intake.MethodUpload} {
		t.Run(string(method), func(t *testing.T) {
			t.Parallel()

			s := apply(atVoiceInput(t, method), intake.ToggleCapture{})
			old := s.Epoch()
			s = apply(s,
				intake.CaptureStarted{Epoch: old},
				intake.CaptureEvent{Epoch: old, Event: capture.Final("咳が")},
				intake.CaptureEvent{Epoch: old, Event: capture.Partial("出る")},
			)
			require.Equal(t, intake.CaptureListening, s.UI.Capture)

			back, effects := intake.Reduce(s, intake.TransitionRequest{To: intake.StepPatientInfo})
			require.Equal(t, []intake.Effect{intake.StopCapture{Epoch: old, Method: method}}, effects)
			assert.Equal(t, intake.StepPatientInfo, back.UI.Step)
			assert.False(t, back.Capturing())
			assert.Greater(t, back.Epoch(), old)
			assert.Equal(t, "山田", back.Patient.LastName)

			stale := apply(back,
				intake.CaptureEvent{Epoch: old, Event: capture.Final("late")},
				intake.CaptureEvent{Epoch: old, Event: capture.Ended()},
				intake.AudioReady{Epoch: old, Audio: capture.Audio{Data: []byte("x")}},
			)
			assert.Equal(t, back, stale)
		})
	}
}

func TestReduce_BlankCaptureSkipsSummary(t *testing.T) {
	t.Parallel()

	s := atVoiceInput(t, intake.MethodSpeech)
	s = apply(s, intake.ToggleCapture{})

	s, effects := intake.Reduce(s, intake.CaptureEvent{Epoch: s.Epoch(), Event: capture.Final("　 ")})
	require.Empty(t, effects)

	s, effects = intake.Reduce(s, intake.CaptureEvent{Epoch: s.Epoch(), Event: capture.Ended()})
	assert.Empty(t, effects)
	assert.False(t, s.UI.Loading)
}

func TestReduce_RecognitionErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code capture.ErrorCode
		want string
	}{
		{capture.CodeNotAllowed, intake.MsgNotAllowed},
		{capture.CodeNoSpeech, intake.MsgNoSpeech},
		{capture.CodeOther, intake.MsgRecognition},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			t.Parallel()

			s := apply(atVoiceInput(t, intake.MethodSpeech), intake.ToggleCapture{})
			s = apply(s, intake.CaptureEvent{Epoch: s.Epoch(), Event: capture.Failure(tt.code, errors.New("x"))})

			assert.Equal(t, tt.want, s.UI.Error)
			assert.False(t, s.Capturing())
			assert.Equal(t, intake.MethodSpeech, s.UI.Method)
		})
	}
}

func TestReduce_EditedTextSurvivesAutomaticSummary(t *testing.T) {
	t.Parallel()

	s := atVoiceInput(t, intake.MethodSpeech)
	s = apply(s, intake.SummarizeDone{Summary: "first", Automatic: true})
	require.Equal(t, "first", s.Review.EditableText)

	s = apply(s, intake.EditText{Text: "患者が修正した内容"})
	s = apply(s, intake.SummarizeDone{Summary: "second", Automatic: true})
	assert.Equal(t, "second", s.Review.Summary)
	assert.Equal(t, "患者が修正した内容", s.Review.EditableText)
	assert.True(t, s.Review.EditedByUser)

	// an explicit request is the user's choice to replace their edit
	s, effects := intake.Reduce(s, intake.RequestSummary{})
	require.Equal(t, []intake.Effect{intake.Summarize{Text: "患者が修正した内容"}}, effects)

	s = apply(s, intake.SummarizeDone{Summary: "third"})
	assert.Equal(t, "third", s.Review.EditableText)
	assert.False(t, s.Review.EditedByUser)
}

func TestReduce_RequestSummaryPrefersTranscript(t *testing.T) {
	t.Parallel()

	s := atVoiceInput(t, intake.MethodUpload)
	s = apply(s, intake.TranscribeDone{Text: "昨日から熱がある"})
	s = apply(s, intake.SummarizeFailed{Err: errors.New("boom")})
	require.Equal(t, intake.MsgSummarizeFailed, s.UI.Error)

	_, effects := intake.Reduce(s, intake.RequestSummary{})
	assert.Equal(t, []intake.Effect{intake.Summarize{Text: "昨日から熱がある"}}, effects)

	blank := atVoiceInput(t, intake.MethodManual)
	_, effects = intake.Reduce(blank, intake.RequestSummary{})
	assert.Empty(t, effects)
}

func TestReduce_LoadingBlocksCaptureAndFiles(t *testing.T) {
	t.Parallel()

	s := atVoiceInput(t, intake.MethodUpload)
	s = apply(s, intake.FileSelected{Audio: capture.Audio{Name: "a.mp3", Data: []byte("x")}})
	require.True(t, s.UI.Loading)

	next, effects := intake.Reduce(s, intake.ToggleCapture{})
	assert.Equal(t, s, next)
	assert.Empty(t, effects)

	next, effects = intake.Reduce(s, intake.FileSelected{Audio: capture.Audio{Data: []byte("y")}})
	assert.Equal(t, s, next)
	assert.Empty(t, effects)
}

func TestReduce_FileIgnoredWhileRecording(t *testing.T) {
	t.Parallel()

	s := apply(atVoiceInput(t, intake.MethodUpload), intake.ToggleCapture{})
	require.True(t, s.Capturing())

	next, effects := intake.Reduce(s, intake.FileSelected{Audio: capture.Audio{Data: []byte("y")}})
	assert.Equal(t, s, next)
	assert.Empty(t, effects)
}

func TestReduce_AudioSizeBoundary(t *testing.T) {
	t.Parallel()

	s := atVoiceInput(t, intake.MethodUpload)

	exact := capture.Audio{Name: "a.wav", MediaType: "audio/wav", Data: make([]byte, 25*1024*1024)}
	_, effects := intake.Reduce(s, intake.FileSelected{Audio: exact})
	require.Len(t, effects, 1)
	assert.IsType(t, intake.Transcribe{}, effects[0])

	over := capture.Audio{Name: "a.wav", MediaType: "audio/wav", Data: make([]byte, 25*1024*1024+1)}
	next, effects := intake.Reduce(s, intake.FileSelected{Audio: over})
	assert.Empty(t, effects)
	assert.False(t, next.UI.Loading)
	assert.Equal(t, intake.MsgAudioTooLarge, next.UI.Error)
}

func TestReduce_RecordingFlow(t *testing.T) {
	t.Parallel()

	s := atVoiceInput(t, intake.MethodUpload)
	s, effects := intake.Reduce(s, intake.ToggleCapture{})
	require.Equal(t, []intake.Effect{intake.StartCapture{Epoch: 1, Method: intake.MethodUpload}}, effects)

	s = apply(s, intake.CaptureStarted{Epoch: 1})
	s, effects = intake.Reduce(s, intake.ToggleCapture{})
	require.Equal(t, []intake.Effect{intake.StopCapture{Epoch: 1, Method: intake.MethodUpload}}, effects)

	rec := capture.Audio{Name: capture.RecordedName, MediaType: capture.RecordedMediaType, Data: []byte{1, 2, 3}}
	s, effects = intake.Reduce(s, intake.AudioReady{Epoch: 1, Audio: rec})
	require.Equal(t, []intake.Effect{intake.Transcribe{Epoch: 1, Audio: rec}}, effects)
	assert.False(t, s.Capturing())

	s, effects = intake.Reduce(s, intake.TranscribeDone{Epoch: 1, Text: "お腹が痛い"})
	require.Equal(t, []intake.Effect{intake.Summarize{Epoch: 1, Text: "お腹が痛い", Automatic: true}}, effects)
	assert.Equal(t, "お腹が痛い", s.Transcription())
	assert.Equal(t, "お腹が痛い", s.Transcript.Authoritative())
	assert.True(t, s.UI.Loading)
}

func TestReduce_TranscribeFailureMessages(t *testing.T) {
	t.Parallel()

	s := apply(atVoiceInput(t, intake.MethodUpload), intake.FileSelected{Audio: capture.Audio{Data: []byte("x")}})

	collab := apply(s, intake.TranscribeFailed{Err: apperr.Collaborator("Whisper failed", errors.New("500"))})
	assert.Equal(t, intake.MsgTranscribeFailed, collab.UI.Error)
	assert.False(t, collab.UI.Loading)

	transport := apply(s, intake.TranscribeFailed{Err: errors.New("connection refused")})
	assert.Equal(t, intake.MsgUploadFailed, transport.UI.Error)
}

func TestReduce_DeviceFailureFallsBackToManual(t *testing.T) {
	t.Parallel()

	s := apply(atVoiceInput(t, intake.MethodUpload), intake.ToggleCapture{})
	s = apply(s, intake.CaptureFailed{Epoch: s.Epoch(), Err: apperr.Wrap(apperr.KindDevice, "mic", errors.New("busy"))})

	assert.Equal(t, intake.MethodManual, s.UI.Method)
	assert.Equal(t, intake.MsgDeviceFallback, s.UI.Error)
	assert.False(t, s.Capturing())

	_, effects := intake.Reduce(s, intake.ToggleCapture{})
	assert.Empty(t, effects)

	// reset restores the detected method
	assert.Equal(t, intake.MethodUpload, apply(s, intake.Reset{}).UI.Method)
}

func TestReduce_Diagnosis(t *testing.T) {
	t.Parallel()

	s := atVoiceInput(t, intake.MethodUpload)
	s = apply(s,
		intake.TranscribeDone{Text: "38度の発熱と頭痛"},
		intake.SummarizeDone{Summary: "症状: 発熱、頭痛", Automatic: true},
		intake.TransitionRequest{To: intake.StepConfirm},
		intake.TransitionRequest{To: intake.StepSubmitted},
	)

	// only on the clinician view
	_, effects := intake.Reduce(s, intake.RequestDiagnosis{})
	require.Empty(t, effects)

	s = apply(s, intake.TransitionRequest{To: intake.StepClinician})
	s, effects = intake.Reduce(s, intake.RequestDiagnosis{})
	require.Equal(t, []intake.Effect{intake.Diagnose{Symptoms: "症状: 発熱、頭痛"}}, effects)
	assert.True(t, s.UI.Loading)

	s = apply(s, intake.DiagnoseDone{Diagnosis: "インフルエンザの可能性"})
	assert.Equal(t, "インフルエンザの可能性", s.Review.Diagnosis)
	assert.False(t, s.UI.Loading)

	s = apply(s, intake.RequestDiagnosis{}, intake.DiagnoseFailed{Err: errors.New("x")})
	assert.Equal(t, intake.MsgDiagnoseFailed, s.UI.Error)
	assert.Equal(t, "インフルエンザの可能性", s.Review.Diagnosis)
}

func TestReduce_ResetClearsEverything(t *testing.T) {
	t.Parallel()

	det := intake.Detection{Method: intake.MethodUpload, Notice: intake.NoticeGenericUpload, Platform: "test"}
	fresh := intake.Initial(det)

	s := apply(fresh, patientEvents()...)
	s = apply(s,
		intake.TransitionRequest{To: intake.StepVoiceInput},
		intake.TranscribeDone{Text: "咳"},
		intake.SummarizeDone{Summary: "症状: 咳"},
		intake.EditText{Text: "咳と痰"},
		intake.TransitionRequest{To: intake.StepConfirm},
		intake.TransitionRequest{To: intake.StepSubmitted},
		intake.TransitionRequest{To: intake.StepClinician},
		intake.DiagnoseDone{Diagnosis: "気管支炎の可能性"},
		intake.FileSelected{Err: errors.New("x")},
	)
	require.Equal(t, intake.StepClinician, s.UI.Step)

	reset, effects := intake.Reduce(s, intake.Reset{})
	assert.Empty(t, effects)
	assert.Equal(t, intake.StepPatientInfo, reset.UI.Step)
	assert.Equal(t, fresh.Patient, reset.Patient)
	assert.Equal(t, fresh.Transcript, reset.Transcript)
	assert.Equal(t, fresh.Review, reset.Review)
	assert.Equal(t, fresh.UI, reset.UI)
	assert.Equal(t, det, reset.Detection())
	assert.Greater(t, reset.Epoch(), s.Epoch())
}

func TestReduce_ResetStopsCaptureAndDropsStaleResults(t *testing.T) {
	t.Parallel()

	s := apply(atVoiceInput(t, intake.MethodSpeech), intake.ToggleCapture{})
	old := s.Epoch()

	s, effects := intake.Reduce(s, intake.Reset{})
	require.Equal(t, []intake.Effect{intake.StopCapture{Epoch: old, Method: intake.MethodSpeech}}, effects)

	stale := apply(s,
		intake.CaptureEvent{Epoch: old, Event: capture.Final("late")},
		intake.SummarizeDone{Epoch: old, Summary: "late"},
		intake.AudioReady{Epoch: old, Audio: capture.Audio{Data: []byte("x")}},
	)
	assert.Equal(t, s, stale)
}
