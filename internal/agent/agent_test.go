package agent

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kobo-labs/budget-agent/internal/a2a"
	"github.com/kobo-labs/budget-agent/internal/domain"
	"github.com/kobo-labs/budget-agent/internal/i18n"
	"github.com/kobo-labs/budget-agent/internal/identity"
	"github.com/kobo-labs/budget-agent/internal/jobs"
	"github.com/kobo-labs/budget-agent/internal/ledger"
	"github.com/kobo-labs/budget-agent/internal/repository"
	appredis "github.com/kobo-labs/budget-agent/pkg/redis"
)

type fakeQueue struct {
	tasks []*asynq.Task
}

func (f *fakeQueue) Enqueue(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func (f *fakeQueue) Close() error { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testEnv struct {
	agent      *Agent
	queue      *fakeQueue
	ledgerRepo *repository.LedgerRepository
	identities *repository.IdentityRepository
}

func setupAgent(t *testing.T) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	client := &appredis.Client{Client: rdb}

	log := testLogger()
	ledgerRepo := repository.NewLedgerRepository(client, time.Hour, log)
	identityRepo := repository.NewIdentityRepository(client, time.Hour, log)
	resolver := identity.NewResolver(identityRepo, log)
	ledgerSvc := ledger.NewService(ledgerRepo, log)

	manager, err := i18n.Load("en")
	require.NoError(t, err)

	queue := &fakeQueue{}
	budgetAgent := New(resolver, ledgerSvc, queue, manager.Translator("en"), log)

	return &testEnv{
		agent:      budgetAgent,
		queue:      queue,
		ledgerRepo: ledgerRepo,
		identities: identityRepo,
	}
}

func userMessage(text, contextID string) a2a.Message {
	return a2a.Message{
		Kind:      a2a.KindMessage,
		Role:      a2a.RoleUser,
		ContextID: contextID,
		Parts:     []a2a.Part{{Kind: "text", Text: text}},
	}
}

func singleBatch(text, contextID string) *a2a.Batch {
	return &a2a.Batch{
		Messages:  []a2a.Message{userMessage(text, contextID)},
		ContextID: contextID,
	}
}

func (e *testEnv) userLedger(t *testing.T, contextID string) *domain.UserLedger {
	t.Helper()

	userID, err := e.identities.UserForContext(context.Background(), contextID)
	require.NoError(t, err)

	userLedger, err := e.ledgerRepo.Load(context.Background(), userID)
	require.NoError(t, err)
	return userLedger
}

func TestAgent_AddExpense(t *testing.T) {
	env := setupAgent(t)

	result, err := env.agent.ProcessMessages(context.Background(), singleBatch("Add expense 1500 for rent", "ctx-1"))

	require.NoError(t, err)
	assert.Equal(t, "ctx-1", result.ContextID)
	assert.Equal(t, a2a.StateCompleted, result.Status.State)
	assert.Equal(t, a2a.KindTask, result.Kind)
	assert.NotNil(t, result.Artifacts)
	assert.Empty(t, result.Artifacts)
	require.NotNil(t, result.Status.Message)
	assert.Equal(t, a2a.RoleAgent, result.Status.Message.Role)
	assert.Contains(t, result.Status.Message.Text(), "Added expense of ₦1500")

	userLedger := env.userLedger(t, "ctx-1")
	require.Len(t, userLedger.Transactions, 1)
	assert.Equal(t, domain.KindExpense, userLedger.Transactions[0].Kind)
	assert.Equal(t, "1500", userLedger.Transactions[0].Amount.String())
}

func TestAgent_AddIncomeWithDecimalAmount(t *testing.T) {
	env := setupAgent(t)

	result, err := env.agent.ProcessMessages(context.Background(), singleBatch("Add income 2,000.50 salary", "ctx-1"))

	require.NoError(t, err)
	assert.Contains(t, result.Status.Message.Text(), "Added income of ₦2000.5")

	userLedger := env.userLedger(t, "ctx-1")
	require.Len(t, userLedger.Transactions, 1)
	assert.Equal(t, domain.KindIncome, userLedger.Transactions[0].Kind)
	assert.Equal(t, "2000.5", userLedger.Transactions[0].Amount.String())
}

func TestAgent_UnknownCommandReturnsHelp(t *testing.T) {
	env := setupAgent(t)

	result, err := env.agent.ProcessMessages(context.Background(), singleBatch("blah blah", "ctx-1"))

	require.NoError(t, err)
	reply := result.Status.Message.Text()
	assert.Contains(t, reply, "Add expense 500 groceries")
	assert.Contains(t, reply, "Show summary")

	userLedger := env.userLedger(t, "ctx-1")
	assert.Empty(t, userLedger.Transactions)
}

func TestAgent_MissingAmountDoesNotMutateLedger(t *testing.T) {
	env := setupAgent(t)

	result, err := env.agent.ProcessMessages(context.Background(), singleBatch("Add expense abc", "ctx-1"))

	require.NoError(t, err)
	assert.Contains(t, result.Status.Message.Text(), "Could not detect amount")

	userLedger := env.userLedger(t, "ctx-1")
	assert.Empty(t, userLedger.Transactions)
}

func TestAgent_SummaryEmptyWeek(t *testing.T) {
	env := setupAgent(t)

	result, err := env.agent.ProcessMessages(context.Background(), singleBatch("show summary", "ctx-1"))

	require.NoError(t, err)
	assert.Equal(t, "No transactions recorded this week yet.", result.Status.Message.Text())
}

func TestAgent_SummaryAfterActivity(t *testing.T) {
	env := setupAgent(t)
	ctx := context.Background()

	_, err := env.agent.ProcessMessages(ctx, singleBatch("Add income 2,000.50 salary", "ctx-1"))
	require.NoError(t, err)
	_, err = env.agent.ProcessMessages(ctx, singleBatch("Add expense 1500 rent", "ctx-1"))
	require.NoError(t, err)

	result, err := env.agent.ProcessMessages(ctx, singleBatch("Show summary", "ctx-1"))
	require.NoError(t, err)

	reply := result.Status.Message.Text()
	assert.Contains(t, reply, "Weekly Summary")
	assert.Contains(t, reply, "Income ₦2000")
	assert.Contains(t, reply, "Expenses ₦1500")
	assert.Contains(t, reply, "Balance ₦500")
}

func TestAgent_ContextContinuity(t *testing.T) {
	env := setupAgent(t)
	ctx := context.Background()

	_, err := env.agent.ProcessMessages(ctx, singleBatch("Add expense 100 lunch", "ctx-1"))
	require.NoError(t, err)
	_, err = env.agent.ProcessMessages(ctx, singleBatch("Add expense 200 dinner", "ctx-1"))
	require.NoError(t, err)

	userLedger := env.userLedger(t, "ctx-1")
	assert.Len(t, userLedger.Transactions, 2)
}

func TestAgent_BatchUsesLastMessage(t *testing.T) {
	env := setupAgent(t)

	batch := &a2a.Batch{
		ContextID: "ctx-1",
		Messages: []a2a.Message{
			userMessage("Add income 9000 salary", "ctx-1"),
			userMessage("Add expense 300 taxi", "ctx-1"),
		},
	}

	result, err := env.agent.ProcessMessages(context.Background(), batch)

	require.NoError(t, err)
	assert.Contains(t, result.Status.Message.Text(), "Added expense of ₦300")
	// Full inbound history plus the reply.
	assert.Len(t, result.History, 3)

	userLedger := env.userLedger(t, "ctx-1")
	require.Len(t, userLedger.Transactions, 1)
	assert.Equal(t, domain.KindExpense, userLedger.Transactions[0].Kind)
}

func TestAgent_GeneratesIDsWhenMissing(t *testing.T) {
	env := setupAgent(t)

	batch := &a2a.Batch{Messages: []a2a.Message{userMessage("show summary", "")}}

	result, err := env.agent.ProcessMessages(context.Background(), batch)

	require.NoError(t, err)
	assert.NotEmpty(t, result.ID)
	assert.NotEmpty(t, result.ContextID)
}

func TestAgent_EmptyBatch(t *testing.T) {
	env := setupAgent(t)

	_, err := env.agent.ProcessMessages(context.Background(), &a2a.Batch{})

	assert.ErrorIs(t, err, ErrEmptyBatch)
}

func TestAgent_EnqueuesWebhookDelivery(t *testing.T) {
	env := setupAgent(t)

	batch := singleBatch("Add expense 1500 rent", "ctx-1")
	batch.TaskID = "task-1"
	batch.Configuration = &a2a.Configuration{
		PushNotificationConfig: &a2a.PushNotificationConfig{
			URL:            "https://example.com/hook",
			Authentication: &a2a.PushNotificationAuth{Credentials: "secret"},
		},
	}

	_, err := env.agent.ProcessMessages(context.Background(), batch)

	require.NoError(t, err)
	require.Len(t, env.queue.tasks, 1)
	task := env.queue.tasks[0]
	assert.Equal(t, jobs.TaskTypeWebhookDeliver, task.Type())

	var payload jobs.WebhookDeliveryPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, "https://example.com/hook", payload.URL)
	assert.Equal(t, "secret", payload.Token)
	require.NotNil(t, payload.Result)
	assert.Equal(t, "task-1", payload.Result.ID)
}

func TestAgent_NoWebhookWithoutConfiguration(t *testing.T) {
	env := setupAgent(t)

	_, err := env.agent.ProcessMessages(context.Background(), singleBatch("Add expense 10 snacks", "ctx-1"))

	require.NoError(t, err)
	assert.Empty(t, env.queue.tasks)
}
