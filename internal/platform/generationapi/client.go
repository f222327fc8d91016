// Package generationapi is the HTTP client of the generation backend: the
// upload-generate endpoint and the account endpoints that issue its tokens.
package generationapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/phrazzld/memoria/internal/domain"
	"github.com/phrazzld/memoria/internal/generation"
	"github.com/phrazzld/memoria/internal/platform/logger"
	"github.com/phrazzld/memoria/internal/store"
)

// GeneratePath is the endpoint path, relative to the API base.
const GeneratePath = "/upload-generate"

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 10 << 20

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the fallback logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// Client implements generation.Client by posting the document as multipart
// form data and the options as request headers.
type Client struct {
	base     string
	endpoint string
	http     *http.Client
	logger   *slog.Logger
}

var _ generation.Client = (*Client)(nil)

// NewClient creates a client for the service at apiBase. timeout bounds each
// request, including reading the response.
func NewClient(apiBase string, timeout time.Duration, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(apiBase, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: invalid api base %q", generation.ErrInvalidConfig, apiBase)
	}

	c := &Client{
		base:     base.String(),
		endpoint: base.String() + GeneratePath,
		http:     &http.Client{Timeout: timeout},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(slog.String("component", "generation_client"))
	return c, nil
}

// Generate implements generation.Client. Unsupported documents are rejected
// before any request is made. Drafts with an empty question or answer are
// dropped; a response with none left is a generation failure.
func (c *Client) Generate(
	ctx context.Context,
	sess domain.Session,
	doc generation.Document,
	opts generation.Options,
) ([]domain.CardDraft, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	if err := generation.ValidateDocument(doc); err != nil {
		return nil, err
	}
	if !sess.Authenticated() || sess.Token == "" {
		return nil, store.ErrUnauthenticated
	}

	body, contentType, err := multipartBody(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to build request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+sess.Token)
	opts.SetHeaders(req.Header)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("generation request failed",
			slog.String("error", err.Error()),
			slog.String("filename", filepath.Base(doc.Filename)))
		return nil, fmt.Errorf("%w: %w", generation.ErrUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", generation.ErrUnreachable, err)
	}

	log.Debug("generation response received",
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		return nil, &generation.FailedError{
			StatusCode: resp.StatusCode,
			Message:    errorDetail(resp.StatusCode, raw),
		}
	}

	var out generation.Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %w", generation.ErrInvalidResponse, err)
	}

	drafts, err := generation.ValidDrafts(out.Flashcards)
	if err != nil {
		log.Warn("generation returned no usable flashcards",
			slog.Int("received", len(out.Flashcards)))
		return nil, err
	}
	return drafts, nil
}

func multipartBody(doc generation.Document) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filepath.Base(doc.Filename))
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(doc.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// errorDetail extracts {"detail": ...} from a failure body, falling back to
// the raw text and then to the status text.
func errorDetail(status int, raw []byte) string {
	var er generation.ErrorResponse
	if err := json.Unmarshal(raw, &er); err == nil && strings.TrimSpace(er.Detail) != "" {
		return er.Detail
	}
	if text := strings.TrimSpace(string(raw)); text != "" && len(text) <= 512 {
		return text
	}
	return http.StatusText(status)
}
