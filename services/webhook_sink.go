package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrSinkNotConfigured is returned by Deliver and Forward when no webhook URL
// is set.
var ErrSinkNotConfigured = errors.New("webhook sink not configured")

// UpstreamError reports a non-2xx answer from the automation endpoint.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("webhook endpoint responded %d", e.StatusCode)
}

// WebhookSink posts events as JSON to the automation platform's inbound
// webhook (GoHighLevel).
type WebhookSink struct {
	url    string
	client *http.Client
	now    func() time.Time
}

func NewWebhookSink(url string, client *http.Client) *WebhookSink {
	if client == nil {
		client = &http.Client{Timeout: defaultSinkTimeout}
	}
	return &WebhookSink{url: url, client: client, now: time.Now}
}

func (w *WebhookSink) Name() string { return "ghl_webhook" }

func (w *WebhookSink) Configured() bool { return w.url != "" }

func (w *WebhookSink) Deliver(ctx context.Context, ev Event) error {
	if !w.Configured() {
		return ErrSinkNotConfigured
	}
	_, err := w.post(ctx, ev)
	return err
}

// Forward relays an arbitrary payload once and reports the upstream status.
// Unlike Deliver it runs on the caller's goroutine so the result can be
// returned to the client.
func (w *WebhookSink) Forward(ctx context.Context, payload map[string]any) (int, error) {
	if !w.Configured() {
		return 0, ErrSinkNotConfigured
	}
	body := make(map[string]any, len(payload)+2)
	for k, v := range payload {
		body[k] = v
	}
	body["source"] = eventSource
	body["forwarded_at"] = w.now().UTC().Format(time.RFC3339)

	ctx, cancel := context.WithTimeout(ctx, defaultSinkTimeout)
	defer cancel()
	return w.post(ctx, body)
}

func (w *WebhookSink) post(ctx context.Context, v any) (int, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(b))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", notifierUserAgent)

	resp, err := w.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return resp.StatusCode, &UpstreamError{StatusCode: resp.StatusCode, Body: string(snippet)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}
