// Package handlers contains asynq task handlers.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/kobo-labs/budget-agent/internal/jobs"
	"github.com/kobo-labs/budget-agent/pkg/metrics"
)

// Deliverer abstracts the webhook HTTP client.
type Deliverer interface {
	Deliver(ctx context.Context, url, token string, payload any) error
}

// WebhookDeliveryHandler pushes task results to their callback URLs. Delivery
// failures are logged and swallowed: the primary response was already
// finalized when the task was enqueued.
type WebhookDeliveryHandler struct {
	notifier Deliverer
	log      *slog.Logger
}

// NewWebhookDeliveryHandler constructs the handler.
func NewWebhookDeliveryHandler(notifier Deliverer, log *slog.Logger) *WebhookDeliveryHandler {
	if log == nil {
		log = slog.Default()
	}

	return &WebhookDeliveryHandler{notifier: notifier, log: log}
}

// ProcessTask implements asynq.Handler.
func (h *WebhookDeliveryHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload jobs.WebhookDeliveryPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.log.ErrorContext(ctx, "webhook delivery: failed to decode payload",
			slog.String("task_type", t.Type()),
			slog.String("error", err.Error()),
		)
		return err
	}

	if err := h.notifier.Deliver(ctx, payload.URL, payload.Token, payload.Result); err != nil {
		h.log.ErrorContext(ctx, "webhook delivery failed",
			slog.String("url", payload.URL),
			slog.String("error", err.Error()),
		)
		metrics.RecordWebhookDelivery("error")
		// Single-shot delivery: swallow the error so asynq does not archive
		// the task as failed work to redo.
		return nil
	}

	h.log.InfoContext(ctx, "webhook delivered", slog.String("url", payload.URL))
	metrics.RecordWebhookDelivery("ok")

	return nil
}
