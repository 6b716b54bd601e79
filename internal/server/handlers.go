package server

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/alkime/monshin/internal/api"
	"github.com/alkime/monshin/internal/apperr"
	"github.com/alkime/monshin/internal/capability"
	"github.com/alkime/monshin/internal/capture"
	"github.com/alkime/monshin/internal/intake"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

// room for multipart headers and boundaries around a maximal file.
const maxTranscribeBody = capture.MaxAudioBytes + 1<<20

// fail logs err and writes the {success:false} body for its kind.
func (s *Server) fail(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := kind.HTTPStatus()

	attrs := []any{"request_id", c.GetString(ctxRequestID), "path", c.Request.URL.Path, "kind", kind, "error", err}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", attrs...)
	} else {
		s.logger.Warn("request rejected", attrs...)
	}

	c.AbortWithStatusJSON(status, api.ErrorResponse{
		Success: false,
		Error:   apperr.Message(err, "Internal server error"),
	})
}

func (s *Server) handleTranscribe(c *gin.Context) {
	if c.Request.ContentLength > maxTranscribeBody {
		s.fail(c, apperr.Validation(api.ErrAudioTooLarge))
		return
	}

	fh, err := c.FormFile(api.FormFieldAudio)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			s.fail(c, apperr.Validation(api.ErrAudioTooLarge))
			return
		}
		s.fail(c, apperr.Wrap(apperr.KindValidation, api.ErrAudioRequired, err))
		return
	}

	if err := capture.CheckSize(fh.Size); err != nil {
		s.fail(c, apperr.Wrap(apperr.KindValidation, api.ErrAudioTooLarge, err))
		return
	}

	f, err := fh.Open()
	if err != nil {
		s.fail(c, apperr.Wrap(apperr.KindInternal, "Failed to read audio file", err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		s.fail(c, apperr.Wrap(apperr.KindInternal, "Failed to read audio file", err))
		return
	}

	if len(data) == 0 {
		s.fail(c, apperr.Validation(api.ErrAudioRequired))
		return
	}

	mediaType, ok := audioMediaType(data, fh.Header.Get("Content-Type"))
	if !ok {
		s.fail(c, apperr.Validation(api.ErrAudioType))
		return
	}

	text, err := s.deps.Transcriber.Transcribe(c.Request.Context(), bytes.NewReader(data), fh.Filename, mediaType)
	if err != nil {
		s.fail(c, apperr.Collaborator("Failed to transcribe audio", err))
		return
	}

	s.logger.Info("transcribed audio",
		"request_id", c.GetString(ctxRequestID),
		"bytes", len(data),
		"media_type", mediaType,
	)

	c.JSON(http.StatusOK, api.TranscribeResponse{Success: true, Transcript: text})
}

// audioMediaType trusts the sniffed type when the sniffer recognises the
// content, and the declared type only when it does not.
func audioMediaType(data []byte, declared string) (string, bool) {
	sniffed := mimetype.Detect(data)
	for m := sniffed; m != nil; m = m.Parent() {
		if capture.IsAudioMediaType(m.String()) {
			return m.String(), true
		}
	}

	if sniffed.Is("application/octet-stream") && capture.IsAudioMediaType(declared) {
		return declared, true
	}

	return "", false
}

func (s *Server) handleSummarize(c *gin.Context) {
	var req api.SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil || intake.Blank(req.Text) {
		s.fail(c, apperr.Wrap(apperr.KindValidation, api.ErrTextRequired, err))
		return
	}

	summary, err := s.deps.Writer.Summarize(c.Request.Context(), req.Text)
	if err != nil {
		s.fail(c, apperr.Collaborator("Failed to summarize text", err))
		return
	}

	c.JSON(http.StatusOK, api.SummarizeResponse{Success: true, Summary: summary})
}

func (s *Server) handleDiagnose(c *gin.Context) {
	var req api.DiagnoseRequest
	if err := c.ShouldBindJSON(&req); err != nil || intake.Blank(req.Symptoms) {
		s.fail(c, apperr.Wrap(apperr.KindValidation, api.ErrSymptoms, err))
		return
	}

	diagnosis, err := s.deps.Writer.Diagnose(c.Request.Context(), req.Symptoms)
	if err != nil {
		s.fail(c, apperr.Collaborator("Failed to generate diagnosis", err))
		return
	}

	c.JSON(http.StatusOK, api.DiagnoseResponse{Success: true, Diagnosis: diagnosis})
}

func (s *Server) handleCapabilities(c *gin.Context) {
	d := intake.Detect(capability.NewUserAgent(c.Request.UserAgent()))

	c.JSON(http.StatusOK, api.CapabilitiesResponse{
		Success:     true,
		InputMethod: string(d.Method),
		Advisory:    d.Notice,
		Platform:    d.Platform,
	})
}
