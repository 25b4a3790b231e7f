// Package notify delivers task results to caller-supplied webhook URLs.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	apperrors "github.com/kobo-labs/budget-agent/internal/errors"
)

const defaultTimeout = 10 * time.Second

// Webhook posts JSON payloads with optional bearer authentication. One
// attempt per delivery: no retries.
type Webhook struct {
	client *http.Client
	log    *slog.Logger
}

// NewWebhook constructs a Webhook with the given request timeout.
func NewWebhook(timeout time.Duration, log *slog.Logger) *Webhook {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if log == nil {
		log = slog.Default()
	}

	return &Webhook{
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// Deliver POSTs the payload to url as JSON. When token is non-empty it is
// sent as a bearer Authorization header. A non-2xx response is an error.
func (w *Webhook) Deliver(ctx context.Context, url, token string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return apperrors.NewExternalAPIError("webhook", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook responded with status %d", resp.StatusCode)
	}

	return nil
}
