package contract

import (
	"context"

	"medivault-be/pkg/store"

	"github.com/google/uuid"
)

// SessionStore holds live conversation state. Implementations must
// serialize Append per session so turn order always reflects request
// arrival order, and must hand out copies, never the stored value.
// Retention policy belongs to the configured backing, not the store API.
type SessionStore interface {
	// GetOrCreate returns the session for sessionId, creating it (with a
	// fresh opaque id when sessionId is empty) if it does not exist.
	GetOrCreate(ctx context.Context, userId uuid.UUID, sessionId string) (*store.Session, error)

	Get(ctx context.Context, sessionId string) (*store.Session, bool, error)

	// Append adds one turn and returns the updated session as a fresh value.
	Append(ctx context.Context, sessionId, role, text string) (*store.Session, error)

	ListByUser(ctx context.Context, userId uuid.UUID) ([]*store.Session, error)

	Delete(ctx context.Context, sessionId string) error
}
