// Package agent orchestrates one conversational turn of the budget assistant.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kobo-labs/budget-agent/internal/a2a"
	"github.com/kobo-labs/budget-agent/internal/domain"
	"github.com/kobo-labs/budget-agent/internal/i18n"
	"github.com/kobo-labs/budget-agent/internal/identity"
	"github.com/kobo-labs/budget-agent/internal/jobs"
	"github.com/kobo-labs/budget-agent/internal/ledger"
	"github.com/kobo-labs/budget-agent/internal/parser"
	"github.com/kobo-labs/budget-agent/pkg/metrics"
)

// ErrEmptyBatch rejects requests carrying no messages.
var ErrEmptyBatch = errors.New("message batch is empty")

// Agent is the stateless conversation handler. All state lives in the
// identity and ledger stores; every invocation is independent.
type Agent struct {
	identity *identity.Resolver
	ledger   *ledger.Service
	queue    jobs.Manager
	tr       i18n.Translator
	log      *slog.Logger
}

// New constructs an Agent. queue may be nil, in which case push notification
// configs are ignored.
func New(resolver *identity.Resolver, ledgerSvc *ledger.Service, queue jobs.Manager, tr i18n.Translator, log *slog.Logger) *Agent {
	if log == nil {
		log = slog.Default()
	}

	return &Agent{
		identity: resolver,
		ledger:   ledgerSvc,
		queue:    queue,
		tr:       tr,
		log:      log,
	}
}

// ProcessMessages handles one normalized batch: resolve identity, parse the
// active turn, mutate or query the ledger and build the result envelope. When
// the batch carries a push notification config, delivery is enqueued as a
// detached task after the result is finalized.
func (a *Agent) ProcessMessages(ctx context.Context, batch *a2a.Batch) (*a2a.TaskResult, error) {
	if batch == nil || len(batch.Messages) == 0 {
		return nil, ErrEmptyBatch
	}

	contextID := batch.ContextID
	if contextID == "" {
		contextID = uuid.NewString()
	}
	taskID := batch.TaskID
	if taskID == "" {
		taskID = uuid.NewString()
	}

	// The last message is the active user turn; earlier history is only
	// echoed back in the response.
	active := batch.Messages[len(batch.Messages)-1]

	userID, err := a.identity.Resolve(ctx, active.Metadata, contextID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	cmd := parser.Parse(active.Text())

	replyText, err := a.respond(ctx, userID, cmd)
	if err != nil {
		metrics.RecordIntent(string(cmd.Intent), "error", time.Since(start))
		return nil, err
	}
	metrics.RecordIntent(string(cmd.Intent), "ok", time.Since(start))

	a.log.Info("processed turn",
		slog.String("user_id", userID),
		slog.String("context_id", contextID),
		slog.String("intent", string(cmd.Intent)),
	)

	reply := a2a.Message{
		Kind:      a2a.KindMessage,
		Role:      a2a.RoleAgent,
		MessageID: uuid.NewString(),
		TaskID:    taskID,
		Parts:     []a2a.Part{{Kind: "text", Text: strings.TrimSpace(replyText)}},
	}

	history := append(append([]a2a.Message(nil), batch.Messages...), reply)

	result := &a2a.TaskResult{
		ID:        taskID,
		ContextID: contextID,
		Status:    a2a.TaskStatus{State: a2a.StateCompleted, Message: &reply},
		Artifacts: []a2a.Artifact{},
		History:   history,
		Kind:      a2a.KindTask,
	}

	a.notify(ctx, batch.Configuration, result)

	return result, nil
}

// respond branches on the parsed intent and produces the reply text.
func (a *Agent) respond(ctx context.Context, userID string, cmd parser.Command) (string, error) {
	switch cmd.Intent {
	case parser.IntentAddExpense:
		return a.record(ctx, userID, domain.KindExpense, cmd.Amount, "replies.expense_added", "replies.expense_no_amount")
	case parser.IntentAddIncome:
		return a.record(ctx, userID, domain.KindIncome, cmd.Amount, "replies.income_added", "replies.income_no_amount")
	case parser.IntentShowSummary:
		return a.summarize(ctx, userID)
	default:
		return a.tr.T("replies.help"), nil
	}
}

// record appends one transaction. A missing or non-positive amount never
// reaches the store; the user is asked to retry instead.
func (a *Agent) record(ctx context.Context, userID string, kind domain.TransactionKind, amount decimal.Decimal, okKey, noAmountKey string) (string, error) {
	if !amount.IsPositive() {
		return a.tr.T(noAmountKey), nil
	}

	if err := a.ledger.Append(ctx, userID, kind, amount); err != nil {
		if errors.Is(err, ledger.ErrInvalidAmount) {
			return a.tr.T(noAmountKey), nil
		}
		return "", err
	}

	return fmt.Sprintf(a.tr.T(okKey), amount), nil
}

// summarize renders the trailing-week report. Displayed totals are truncated
// to whole units; stored amounts keep full precision.
func (a *Agent) summarize(ctx context.Context, userID string) (string, error) {
	summary, err := a.ledger.WeeklySummary(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNoRecentTransactions) {
			return a.tr.T("replies.summary_empty"), nil
		}
		return "", err
	}

	return fmt.Sprintf(
		a.tr.T("replies.summary"),
		summary.Income.Truncate(0),
		summary.Expense.Truncate(0),
		summary.Balance.Truncate(0),
	), nil
}

// notify enqueues webhook delivery as a detached task. Enqueue failures are
// logged, never escalated: the primary response is already finalized.
func (a *Agent) notify(ctx context.Context, cfg *a2a.Configuration, result *a2a.TaskResult) {
	if a.queue == nil || cfg == nil || cfg.PushNotificationConfig == nil || cfg.PushNotificationConfig.URL == "" {
		return
	}

	push := cfg.PushNotificationConfig
	task, err := jobs.NewWebhookDeliveryTask(push.URL, push.Authentication.BearerToken(), result)
	if err != nil {
		a.log.Error("failed to build webhook delivery task", slog.String("url", push.URL), slog.Any("error", err))
		return
	}

	if _, err := a.queue.Enqueue(ctx, task); err != nil {
		a.log.Error("failed to enqueue webhook delivery", slog.String("url", push.URL), slog.Any("error", err))
	}
}
