// Package client implements intake.Pipeline against the server's HTTP API,
// and in-process against the AI providers.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/alkime/monshin/internal/api"
	"github.com/alkime/monshin/internal/apperr"
	"github.com/alkime/monshin/internal/capture"
	"github.com/google/uuid"
)

// maximum response body read from the server.
const maxResponseBytes = 1 << 20

// Client calls the monshin server.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *slog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", baseURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server URL %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL: u,
		// Collaborator calls have no deadline of their own; this only
		// stops a dead connection from hanging the flow forever.
		http:   &http.Client{Timeout: 5 * time.Minute},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Transcribe uploads one audio object. Oversized audio is rejected here,
// before any request is made.
func (c *Client) Transcribe(ctx context.Context, a capture.Audio) (string, error) {
	if err := capture.CheckSize(a.Size()); err != nil {
		return "", apperr.Wrap(apperr.KindValidation, api.ErrAudioTooLarge, err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, api.FormFieldAudio, a.Name))
	header.Set("Content-Type", a.MediaType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}

	if _, err := part.Write(a.Data); err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}

	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}

	var resp api.TranscribeResponse
	if err := c.do(ctx, api.PathTranscribe, mw.FormDataContentType(), &body, &resp, &resp.Success, &resp.Error); err != nil {
		return "", err
	}

	return resp.Transcript, nil
}

func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	var resp api.SummarizeResponse
	if err := c.postJSON(ctx, api.PathSummarize, api.SummarizeRequest{Text: text}, &resp, &resp.Success, &resp.Error); err != nil {
		return "", err
	}

	return resp.Summary, nil
}

func (c *Client) Diagnose(ctx context.Context, symptoms string) (string, error) {
	var resp api.DiagnoseResponse
	if err := c.postJSON(ctx, api.PathDiagnose, api.DiagnoseRequest{Symptoms: symptoms}, &resp, &resp.Success, &resp.Error); err != nil {
		return "", err
	}

	return resp.Diagnosis, nil
}

// Health reports whether the server answers its health check.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(api.PathHealth), nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("server unreachable: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("server unhealthy: %s", res.Status)
	}

	return nil
}

func (c *Client) url(path string) string {
	return c.baseURL.JoinPath(path).String()
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any, success *bool, msg *string) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	return c.do(ctx, path, "application/json", bytes.NewReader(payload), out, success, msg)
}

// do posts body and decodes the reply into out. A reply with success=false
// becomes a classified error carrying the server's message.
func (c *Client) do(ctx context.Context, path, contentType string, body io.Reader, out any, success *bool, msg *string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer res.Body.Close()

	c.logger.Debug("api call", "path", path, "status", res.StatusCode,
		"request_id", requestID, "duration", time.Since(start))

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", path, err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unexpected %s response (%s): %w", path, res.Status, err)
	}

	if *success {
		return nil
	}

	message := *msg
	if message == "" {
		message = res.Status
	}

	cause := fmt.Errorf("%s returned %s", path, res.Status)
	switch {
	case res.StatusCode == http.StatusUnauthorized:
		return apperr.Wrap(apperr.KindAuth, message, cause)
	case res.StatusCode >= 400 && res.StatusCode < 500:
		return apperr.Wrap(apperr.KindValidation, message, cause)
	default:
		return apperr.Collaborator(message, cause)
	}
}

