package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kobo-labs/budget-agent/internal/identity"
)

// IdentityRepository persists conversation-context to user-id assignments.
type IdentityRepository struct {
	kv  KV
	ttl time.Duration
	log *slog.Logger
}

// NewIdentityRepository creates a Redis-backed implementation of identity.Store.
func NewIdentityRepository(kv KV, ttl time.Duration, log *slog.Logger) *IdentityRepository {
	if log == nil {
		log = slog.Default()
	}

	return &IdentityRepository{kv: kv, ttl: ttl, log: log}
}

// UserForContext returns the user id mapped to the context, or
// identity.ErrMappingNotFound when the context has never been bound.
func (r *IdentityRepository) UserForContext(ctx context.Context, contextID string) (string, error) {
	value, err := r.kv.Get(ctx, contextUserKey(contextID))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", identity.ErrMappingNotFound
		}

		r.log.Error("failed to get context mapping from redis", "context_id", contextID, "error", err)
		return "", fmt.Errorf("get context mapping: %w", err)
	}

	return value, nil
}

// BindContext stores the mapping unless the context is already bound and
// returns the winning user id. SetNX keeps the first assignment, so a context
// is never reassigned.
func (r *IdentityRepository) BindContext(ctx context.Context, contextID, userID string) (string, error) {
	key := contextUserKey(contextID)

	ok, err := r.kv.SetNX(ctx, key, userID, r.ttl)
	if err != nil {
		r.log.Error("failed to bind context in redis", "context_id", contextID, "error", err)
		return "", fmt.Errorf("bind context: %w", err)
	}
	if ok {
		return userID, nil
	}

	// Lost the write: another request bound this context first.
	return r.UserForContext(ctx, contextID)
}

func contextUserKey(contextID string) string {
	return fmt.Sprintf(contextUserKeyPattern, contextID)
}
