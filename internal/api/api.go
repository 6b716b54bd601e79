// Package api defines the JSON bodies exchanged between the intake client
// and the server.
package api

const (
	PathTranscribe   = "/api/transcribe"
	PathSummarize    = "/api/summarize"
	PathDiagnose     = "/api/diagnose"
	PathCapabilities = "/api/capabilities"
	PathHealth       = "/health"

	// FormFieldAudio is the multipart field carrying the recording.
	FormFieldAudio = "audio"
)

// Error messages returned with a 400.
const (
	ErrAudioRequired = "Audio file is required"
	ErrAudioTooLarge = "Audio file too large (max 25MB)"
	ErrAudioType     = "Audio file must be an audio media type"
	ErrTextRequired  = "Text is required"
	ErrSymptoms      = "Symptoms are required"
)

type TranscribeResponse struct {
	Success    bool   `json:"success"`
	Transcript string `json:"transcript,omitempty"`
	Error      string `json:"error,omitempty"`
}

type SummarizeRequest struct {
	Text string `json:"text"`
}

type SummarizeResponse struct {
	Success bool   `json:"success"`
	Summary string `json:"summary,omitempty"`
	Error   string `json:"error,omitempty"`
}

type DiagnoseRequest struct {
	Symptoms string `json:"symptoms"`
}

type DiagnoseResponse struct {
	Success   bool   `json:"success"`
	Diagnosis string `json:"diagnosis,omitempty"`
	Error     string `json:"error,omitempty"`
}

type CapabilitiesResponse struct {
	Success     bool   `json:"success"`
	InputMethod string `json:"inputMethod"`
	Advisory    string `json:"advisory,omitempty"`
	Platform    string `json:"platform"`
}

// ErrorResponse is the failure shape shared by every endpoint.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
