package ports

import (
	"context"

	"shopify-session-gate/internal/domain"
)

// SessionStore defines the interface for session persistence. The backend is
// treated as a black box: it serializes its own reads and writes and offers
// at least read-your-writes within a process.
type SessionStore interface {
	// Get retrieves the session for a shop domain. A missing record is not an
	// error: the store returns (nil, nil) and the caller decides what absence
	// means. Any non-nil error is a backend failure.
	Get(ctx context.Context, shopDomain string) (*domain.Session, error)

	// Put validates and upserts a session. Sessions with an empty access
	// token or API version are rejected with *domain.ValidationError.
	Put(ctx context.Context, session *domain.Session) error

	// Delete removes the session for a shop domain. Deleting a session that
	// does not exist is not an error.
	Delete(ctx context.Context, shopDomain string) error
}
