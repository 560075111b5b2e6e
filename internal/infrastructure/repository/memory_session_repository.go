package repository

import (
	"context"
	"sync"
	"time"

	"shopify-session-gate/internal/domain"
	"shopify-session-gate/internal/ports"
)

// MemorySessionRepository implements SessionStore in process memory. Used by
// tests and local development; it carries no durability.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

// NewMemorySessionRepository creates a new in-memory session store
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[string]domain.Session),
	}
}

// Get retrieves the session for a shop domain
func (r *MemorySessionRepository) Get(ctx context.Context, shopDomain string) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[shopDomain]
	if !ok {
		return nil, nil
	}
	copy := session
	return &copy, nil
}

// Put validates and upserts a session
func (r *MemorySessionRepository) Put(ctx context.Context, session *domain.Session) error {
	if err := session.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *session
	stored.UpdatedAt = time.Now()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	r.sessions[session.ShopDomain] = stored
	return nil
}

// Delete removes the session for a shop domain
func (r *MemorySessionRepository) Delete(ctx context.Context, shopDomain string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, shopDomain)
	return nil
}

var _ ports.SessionStore = (*MemorySessionRepository)(nil)
