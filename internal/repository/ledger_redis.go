// Package repository implements Redis-backed storage for user ledgers and
// conversation-context identity mappings.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kobo-labs/budget-agent/internal/domain"
)

const (
	userLedgerKeyPattern  = "budget:user:%s"
	contextUserKeyPattern = "budget:context:%s"
)

// KV is the key-value surface the repositories need from the Redis client.
// Both the plain client wrapper and its metrics decorator satisfy it.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)
}

// LedgerRepository persists per-user transaction lists in Redis as one JSON
// blob per user.
type LedgerRepository struct {
	kv  KV
	ttl time.Duration
	log *slog.Logger
}

// NewLedgerRepository creates a Redis-backed ledger store. Every write
// refreshes the blob's TTL.
func NewLedgerRepository(kv KV, ttl time.Duration, log *slog.Logger) *LedgerRepository {
	if log == nil {
		log = slog.Default()
	}

	return &LedgerRepository{kv: kv, ttl: ttl, log: log}
}

// Load returns the stored ledger, or an empty one when the user has no
// entries yet.
func (r *LedgerRepository) Load(ctx context.Context, userID string) (*domain.UserLedger, error) {
	key := userLedgerKey(userID)

	value, err := r.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return &domain.UserLedger{}, nil
		}

		r.log.Error("failed to load ledger from redis", "user_id", userID, "error", err)
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	var ledger domain.UserLedger
	if err := json.Unmarshal([]byte(value), &ledger); err != nil {
		r.log.Error("failed to decode ledger", "user_id", userID, "error", err)
		return nil, fmt.Errorf("unmarshal ledger: %w", err)
	}

	return &ledger, nil
}

// Append loads the current ledger, appends tx and writes the full list back.
// Read-modify-write without a guard: concurrent appends for the same user are
// last-writer-wins.
func (r *LedgerRepository) Append(ctx context.Context, userID string, tx domain.Transaction) error {
	ledger, err := r.Load(ctx, userID)
	if err != nil {
		return err
	}

	ledger.Transactions = append(ledger.Transactions, tx)

	payload, err := json.Marshal(ledger)
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}

	if err := r.kv.Set(ctx, userLedgerKey(userID), payload, r.ttl); err != nil {
		r.log.Error("failed to save ledger in redis", "user_id", userID, "error", err)
		return fmt.Errorf("save ledger: %w", err)
	}

	return nil
}

func userLedgerKey(userID string) string {
	return fmt.Sprintf(userLedgerKeyPattern, userID)
}
