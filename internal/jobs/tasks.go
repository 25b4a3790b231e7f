package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"github.com/kobo-labs/budget-agent/internal/a2a"
)

const (
	TaskTypeWebhookDeliver = "webhook:deliver"
)

const (
	QueueDefault = "default"
)

// deliveryTimeout bounds one webhook delivery task end to end.
const deliveryTimeout = 30 * time.Second

// WebhookDeliveryPayload carries everything a delivery task needs.
type WebhookDeliveryPayload struct {
	URL    string          `json:"url"`
	Token  string          `json:"token,omitempty"`
	Result *a2a.TaskResult `json:"result"`
}

// NewWebhookDeliveryTask builds a single-shot webhook delivery task. Delivery
// is fire-and-forget: no retries, failures are logged by the handler.
func NewWebhookDeliveryTask(url, token string, result *a2a.TaskResult) (*asynq.Task, error) {
	payload, err := json.Marshal(WebhookDeliveryPayload{URL: url, Token: token, Result: result})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskTypeWebhookDeliver,
		payload,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(0),
		asynq.Timeout(deliveryTimeout),
	), nil
}
