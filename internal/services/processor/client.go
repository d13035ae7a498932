package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"strings"
	"time"

	"vidup/internal/media"
	"vidup/internal/services"
)

const (
	defaultUploadEndpoint = "/api/upload"
	defaultStatusEndpoint = "/api/status"
	defaultResultEndpoint = "/api/result"
	defaultRequestTimeout = 30 * time.Second
	defaultUploadTimeout  = 10 * time.Minute
	defaultUserAgent      = "vidup"

	uploadField      = "video"
	errorBodyLimit   = 4 << 10
	defaultUploadErr = "Upload failed"
)

// Config captures the endpoints and credentials of the processing service.
type Config struct {
	BaseURL        string
	UploadEndpoint string
	StatusEndpoint string
	ResultEndpoint string
	APIToken       string
	RequestID      string
	UserAgent      string
	RequestTimeout time.Duration
	UploadTimeout  time.Duration
}

// HTTPDoer is the subset of *http.Client used by the client.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client issues upload, status and result requests.
type Client struct {
	cfg    Config
	http   HTTPDoer
	upload HTTPDoer
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for every request.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.http = doer
			c.upload = doer
		}
	}
}

// NewClient constructs a client for cfg.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.UploadEndpoint = endpointOrDefault(cfg.UploadEndpoint, defaultUploadEndpoint)
	cfg.StatusEndpoint = endpointOrDefault(cfg.StatusEndpoint, defaultStatusEndpoint)
	cfg.ResultEndpoint = endpointOrDefault(cfg.ResultEndpoint, defaultResultEndpoint)
	cfg.APIToken = strings.TrimSpace(cfg.APIToken)
	if strings.TrimSpace(cfg.UserAgent) == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.UploadTimeout <= 0 {
		cfg.UploadTimeout = defaultUploadTimeout
	}
	client := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.RequestTimeout},
		upload: &http.Client{Timeout: cfg.UploadTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

func endpointOrDefault(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	if !strings.HasPrefix(value, "/") {
		value = "/" + value
	}
	return value
}

// BaseURL returns the normalized service root.
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

// Upload streams file to the upload endpoint as multipart field "video".
func (c *Client) Upload(ctx context.Context, file *media.File) (UploadResponse, error) {
	const op = "upload"
	var empty UploadResponse
	if file == nil || strings.TrimSpace(file.Path) == "" {
		return empty, services.Wrap(services.ErrValidation, op, "select a video file first", nil)
	}
	src, err := os.Open(file.Path)
	if err != nil {
		return empty, services.Wrapf(services.ErrValidation, op, err, "cannot read %s", file.Name)
	}

	pr, pw := io.Pipe()
	defer pr.Close()
	writer := multipart.NewWriter(pw)
	go func() {
		defer src.Close()
		pw.CloseWithError(writeMultipart(writer, file, src))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+c.cfg.UploadEndpoint, pr)
	if err != nil {
		_ = pr.CloseWithError(err)
		return empty, services.Wrap(services.ErrTransport, op, defaultUploadErr, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.decorate(ctx, req, "application/json")

	resp, err := c.upload.Do(req)
	if err != nil {
		_ = pr.CloseWithError(err)
		return empty, services.Wrap(services.ErrTransport, op, defaultUploadErr, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return empty, services.Wrap(services.ErrTransport, op, defaultUploadErr, err)
	}
	var payload uploadPayload
	decodeErr := json.Unmarshal(body, &payload)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := defaultUploadErr
		if decodeErr == nil && strings.TrimSpace(payload.Message) != "" {
			msg = strings.TrimSpace(payload.Message)
		}
		return empty, services.Wrap(services.ErrTransport, op, msg, httpError(resp.StatusCode, body))
	}
	if decodeErr != nil {
		return empty, services.Wrap(services.ErrProtocol, op, defaultUploadErr, fmt.Errorf("decode response: %w", decodeErr))
	}
	if payload.Success == nil {
		return empty, services.Wrap(services.ErrProtocol, op, defaultUploadErr, errors.New("response missing success"))
	}
	if !*payload.Success {
		msg := strings.TrimSpace(payload.Message)
		if msg == "" {
			msg = defaultUploadErr
		}
		return empty, services.Wrap(services.ErrServerFailure, op, msg, nil)
	}
	taskID := strings.TrimSpace(payload.TaskID)
	if taskID == "" {
		return empty, services.Wrap(services.ErrProtocol, op, defaultUploadErr, errors.New("response missing taskId"))
	}
	return UploadResponse{TaskID: taskID, Message: strings.TrimSpace(payload.Message)}, nil
}

func writeMultipart(writer *multipart.Writer, file *media.File, src io.Reader) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, uploadField, file.Name))
	contentType := file.MIMEType
	if contentType == "" {
		contentType = media.DefaultMIMEType
	}
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, src); err != nil {
		return err
	}
	return writer.Close()
}

// Status queries the processing state of taskID.
func (c *Client) Status(ctx context.Context, taskID string) (StatusResponse, error) {
	const op = "status"
	var empty StatusResponse
	body, err := c.get(ctx, op, c.cfg.StatusEndpoint, taskID, "application/json")
	if err != nil {
		return empty, err
	}
	var payload statusPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return empty, services.Wrap(services.ErrProtocol, op, "status response unreadable", fmt.Errorf("decode response: %w", err))
	}
	if payload.Status == nil || strings.TrimSpace(*payload.Status) == "" {
		return empty, services.Wrap(services.ErrProtocol, op, "status response unreadable", errors.New("response missing status"))
	}
	return StatusResponse{
		Status:  ParseStatus(*payload.Status),
		Raw:     *payload.Status,
		Message: strings.TrimSpace(payload.Message),
	}, nil
}

// Result downloads the processed video for taskID.
func (c *Client) Result(ctx context.Context, taskID string) ([]byte, error) {
	return c.get(ctx, "result", c.cfg.ResultEndpoint, taskID, "video/mp4, application/octet-stream")
}

func (c *Client) get(ctx context.Context, op, endpoint, taskID, accept string) ([]byte, error) {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return nil, services.Wrap(services.ErrValidation, op, "task id required", nil)
	}
	target := c.cfg.BaseURL + endpoint + "?id=" + url.QueryEscape(taskID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, op, "", err)
	}
	c.decorate(ctx, req, accept)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, op, "", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return nil, services.Wrap(services.ErrTransport, op, "", httpError(resp.StatusCode, snippet))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, op, "", fmt.Errorf("read body: %w", err))
	}
	return body, nil
}

func (c *Client) decorate(ctx context.Context, req *http.Request, accept string) {
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	requestID := c.cfg.RequestID
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		requestID = rid
	}
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}
	if c.cfg.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	}
}

// HTTPStatusError reports a non-2xx response.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("http %d", e.StatusCode)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, body)
}

func httpError(code int, body []byte) error {
	if len(body) > errorBodyLimit {
		body = body[:errorBodyLimit]
	}
	return &HTTPStatusError{StatusCode: code, Body: string(body)}
}
