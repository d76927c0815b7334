package checker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"editflow.app/server/common/logger"
	"editflow.app/server/internal/editor"
)

const maxErrorBody = 512

type HTTPConfig struct {
	BaseURL  string
	Timeout  time.Duration
	RetryMax int
}

// HTTPChecker calls the correction service over its JSON API:
//
//	POST /check        {"text": "..."} -> [{"error", "correction", "position"}]
//	POST /shakesperize {"text": "..."} -> {"text": "..."}
type HTTPChecker struct {
	baseURL string
	client  *retryablehttp.Client
}

func NewHTTPChecker(cfg HTTPConfig) (*HTTPChecker, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("checker base url is required")
	}

	client := retryablehttp.NewClient()
	client.RetryMax = max(cfg.RetryMax, 0)
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.Logger = slog.Default()
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if cfg.Timeout > 0 {
		client.HTTPClient.Timeout = cfg.Timeout
	}

	return &HTTPChecker{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  client,
	}, nil
}

type textPayload struct {
	Text *string `json:"text"`
}

type wireSpan struct {
	Error      *string `json:"error"`
	Correction *string `json:"correction"`
	Position   *int    `json:"position"`
}

func (c *HTTPChecker) Check(ctx context.Context, text string) ([]editor.ErrorSpan, error) {
	var raw []wireSpan
	if err := c.post(ctx, "/check", text, &raw); err != nil {
		return nil, err
	}

	spans := make([]editor.ErrorSpan, 0, len(raw))
	for i, w := range raw {
		if w.Error == nil || w.Correction == nil || *w.Error == "" {
			return nil, fmt.Errorf("%w: span %d is missing error or correction", editor.ErrInvalidSpan, i)
		}
		spans = append(spans, editor.ErrorSpan{
			Error:      *w.Error,
			Correction: *w.Correction,
			Position:   w.Position,
		})
	}

	slog.DebugContext(ctx, "correction service returned spans", "count", len(spans))
	return spans, nil
}

func (c *HTTPChecker) Transform(ctx context.Context, text string) (string, error) {
	var out textPayload
	if err := c.post(ctx, "/shakesperize", text, &out); err != nil {
		return "", err
	}
	if out.Text == nil {
		return "", fmt.Errorf("%w: style service response has no text", ErrUpstream)
	}
	return *out.Text, nil
}

func (c *HTTPChecker) post(ctx context.Context, path, text string, out any) error {
	body, err := json.Marshal(textPayload{Text: &text})
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: POST %s: %w", ErrUpstream, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		slog.WarnContext(ctx, "upstream service rejected request",
			"path", path,
			"status", resp.StatusCode,
			"body", logger.Truncate(string(bytes.TrimSpace(snippet)), 200))
		return fmt.Errorf("%w: POST %s returned %d", ErrUpstream, path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding %s response: %w", ErrUpstream, path, err)
	}
	return nil
}
