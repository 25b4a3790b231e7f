package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kobo-labs/budget-agent/internal/domain"
)

func TestLedgerRepository_LoadEmpty(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	repo := NewLedgerRepository(client, time.Hour, testLogger())

	ledger, err := repo.Load(context.Background(), "user-1")

	require.NoError(t, err)
	require.NotNil(t, ledger)
	assert.Empty(t, ledger.Transactions)
}

func TestLedgerRepository_AppendAndLoad(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	repo := NewLedgerRepository(client, time.Hour, testLogger())
	ctx := context.Background()

	first := domain.Transaction{
		Kind:   domain.KindExpense,
		Amount: decimal.NewFromInt(1500),
		Date:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	second := domain.Transaction{
		Kind:   domain.KindIncome,
		Amount: decimal.RequireFromString("2000.50"),
		Date:   time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
	}

	require.NoError(t, repo.Append(ctx, "user-1", first))
	require.NoError(t, repo.Append(ctx, "user-1", second))

	ledger, err := repo.Load(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, ledger.Transactions, 2)

	assert.Equal(t, domain.KindExpense, ledger.Transactions[0].Kind)
	assert.True(t, ledger.Transactions[0].Amount.Equal(first.Amount))
	assert.Equal(t, domain.KindIncome, ledger.Transactions[1].Kind)
	assert.True(t, ledger.Transactions[1].Amount.Equal(second.Amount))
	assert.True(t, ledger.Transactions[1].Date.Equal(second.Date))
}

func TestLedgerRepository_UsersAreIsolated(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	repo := NewLedgerRepository(client, time.Hour, testLogger())
	ctx := context.Background()

	tx := domain.Transaction{
		Kind:   domain.KindExpense,
		Amount: decimal.NewFromInt(100),
		Date:   time.Now().UTC(),
	}
	require.NoError(t, repo.Append(ctx, "user-1", tx))

	other, err := repo.Load(ctx, "user-2")
	require.NoError(t, err)
	assert.Empty(t, other.Transactions)
}

func TestLedgerRepository_AppendRefreshesTTL(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	ttl := 7 * 24 * time.Hour
	repo := NewLedgerRepository(client, ttl, testLogger())
	ctx := context.Background()

	tx := domain.Transaction{
		Kind:   domain.KindIncome,
		Amount: decimal.NewFromInt(50),
		Date:   time.Now().UTC(),
	}
	require.NoError(t, repo.Append(ctx, "user-1", tx))

	remaining, err := client.Client.TTL(ctx, "budget:user:user-1").Result()
	require.NoError(t, err)
	assert.Greater(t, remaining, time.Duration(0))
	assert.LessOrEqual(t, remaining, ttl)
}

func TestLedgerRepository_LoadCorruptPayload(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	repo := NewLedgerRepository(client, time.Hour, testLogger())
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "budget:user:user-1", "not-json", time.Hour))

	_, err := repo.Load(ctx, "user-1")
	assert.Error(t, err)
}
