// Package identity maps inbound messages to stable user ids.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	apperrors "github.com/kobo-labs/budget-agent/internal/errors"
)

// Store persists context-to-user assignments.
type Store interface {
	UserForContext(ctx context.Context, contextID string) (string, error)
	BindContext(ctx context.Context, contextID, userID string) (string, error)
}

// ErrMappingNotFound indicates the context has never been bound to a user.
var ErrMappingNotFound = errors.New("no user mapped to context")

// metadata keys probed for an explicit sender identifier, in priority order.
var senderKeys = []string{"sender", "user", "from"}

// nested id keys accepted when the sender value is an object.
var idKeys = []string{"id", "userId", "user_id"}

// Resolver resolves a message plus its conversation context to one user id.
type Resolver struct {
	store Store
	log   *slog.Logger
}

// NewResolver constructs a Resolver backed by the given store.
func NewResolver(store Store, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}

	return &Resolver{store: store, log: log}
}

// Resolve returns a stable user id for the message. Priority: an explicit
// sender id in the message metadata, then a previously stored context mapping,
// else a freshly minted id persisted for future reuse. Once a context is
// bound, every later call returns the same user id.
func (r *Resolver) Resolve(ctx context.Context, metadata map[string]any, contextID string) (string, error) {
	if explicit := senderID(metadata); explicit != "" {
		// Best effort: bind the context so later messages without metadata
		// still resolve to this user.
		if _, err := r.store.BindContext(ctx, contextID, explicit); err != nil {
			r.log.Warn("failed to persist context binding", "context_id", contextID, "error", err)
		}
		return explicit, nil
	}

	userID, err := r.store.UserForContext(ctx, contextID)
	if err == nil {
		return userID, nil
	}
	if !errors.Is(err, ErrMappingNotFound) {
		return "", apperrors.NewStoreError(err)
	}

	minted := uuid.NewString()
	userID, err = r.store.BindContext(ctx, contextID, minted)
	if err != nil {
		return "", apperrors.NewStoreError(err)
	}

	return userID, nil
}

// senderID extracts an explicit user identifier from message metadata.
// Accepts both scalar values and objects carrying an id field.
func senderID(metadata map[string]any) string {
	if len(metadata) == 0 {
		return ""
	}

	for _, key := range senderKeys {
		value, ok := metadata[key]
		if !ok || value == nil {
			continue
		}

		switch v := value.(type) {
		case map[string]any:
			for _, idKey := range idKeys {
				if id, ok := v[idKey]; ok && id != nil {
					if s := stringify(id); s != "" {
						return s
					}
				}
			}
		default:
			if s := stringify(v); s != "" {
				return s
			}
		}
	}

	return ""
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case float64, float32, int, int32, int64, uint, uint32, uint64:
		return fmt.Sprintf("%v", v)
	default:
		return ""
	}
}
