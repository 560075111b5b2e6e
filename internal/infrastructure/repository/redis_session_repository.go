package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shopify-session-gate/internal/domain"
	"shopify-session-gate/internal/infrastructure/repository/entity"
	"shopify-session-gate/internal/ports"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// RedisSessionRepository implements SessionStore on Redis, for deployments
// that keep sessions out of the document store. Records are JSON values under
// session:<shop> with no expiry; the login flow owns their lifecycle.
type RedisSessionRepository struct {
	client *redis.Client
}

// NewRedisSessionRepository creates a new Redis session store
func NewRedisSessionRepository(client *redis.Client) ports.SessionStore {
	return &RedisSessionRepository{client: client}
}

// Get retrieves the session for a shop domain
func (r *RedisSessionRepository) Get(ctx context.Context, shopDomain string) (*domain.Session, error) {
	raw, err := r.client.Get(ctx, sessionKeyPrefix+shopDomain).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // No session for this shop, not an error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var doc entity.SessionDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	return doc.ToDomain(), nil
}

// Put validates and upserts a session
func (r *RedisSessionRepository) Put(ctx context.Context, session *domain.Session) error {
	if err := session.Validate(); err != nil {
		return err
	}

	doc := entity.SessionDocFromDomain(session)
	doc.UpdatedAt = time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := r.client.Set(ctx, sessionKeyPrefix+doc.ShopDomain, raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Delete removes the session for a shop domain
func (r *RedisSessionRepository) Delete(ctx context.Context, shopDomain string) error {
	if err := r.client.Del(ctx, sessionKeyPrefix+shopDomain).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
