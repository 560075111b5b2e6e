package application_test

import (
	"context"
	"errors"
	"testing"

	"shopify-session-gate/internal/application"
	"shopify-session-gate/internal/domain"
	"shopify-session-gate/internal/infrastructure/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStore simulates an unavailable backend.
type failingStore struct {
	err error
}

func (s *failingStore) Get(ctx context.Context, shopDomain string) (*domain.Session, error) {
	return nil, s.err
}

func (s *failingStore) Put(ctx context.Context, session *domain.Session) error {
	return s.err
}

func (s *failingStore) Delete(ctx context.Context, shopDomain string) error {
	return s.err
}

func storeWithSession(t *testing.T, session *domain.Session) *repository.MemorySessionRepository {
	t.Helper()
	store := repository.NewMemorySessionRepository()
	require.NoError(t, store.Put(context.Background(), session))
	return store
}

func TestSessionResolverResolve(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	session := &domain.Session{
		ShopDomain:  "shop1.myshopify.io",
		AccessToken: "token",
		APIVersion:  "2024-01",
	}

	t.Run("absent session id is unauthenticated", func(t *testing.T) {
		t.Parallel()
		resolver := application.NewSessionResolver(repository.NewMemorySessionRepository(), zerolog.Nop())

		_, err := resolver.Resolve(ctx, domain.RequestContext{})
		assert.ErrorIs(t, err, application.ErrUnauthenticated)
	})

	t.Run("unknown session id is unauthenticated", func(t *testing.T) {
		t.Parallel()
		resolver := application.NewSessionResolver(repository.NewMemorySessionRepository(), zerolog.Nop())

		_, err := resolver.Resolve(ctx, domain.RequestContext{SessionID: "shop1.myshopify.io"})
		assert.ErrorIs(t, err, application.ErrUnauthenticated)
	})

	t.Run("matching session resolves", func(t *testing.T) {
		t.Parallel()
		resolver := application.NewSessionResolver(storeWithSession(t, session), zerolog.Nop())

		got, err := resolver.Resolve(ctx, domain.RequestContext{
			SessionID: "shop1.myshopify.io",
			ShopParam: "shop1.myshopify.io",
		})
		require.NoError(t, err)
		assert.Equal(t, "shop1.myshopify.io", got.ShopDomain)
	})

	t.Run("absent shop param resolves without the mismatch check", func(t *testing.T) {
		t.Parallel()
		resolver := application.NewSessionResolver(storeWithSession(t, session), zerolog.Nop())

		got, err := resolver.Resolve(ctx, domain.RequestContext{SessionID: "shop1.myshopify.io"})
		require.NoError(t, err)
		assert.Equal(t, "shop1.myshopify.io", got.ShopDomain)
	})

	t.Run("different shop param is a shop mismatch", func(t *testing.T) {
		t.Parallel()
		resolver := application.NewSessionResolver(storeWithSession(t, session), zerolog.Nop())

		_, err := resolver.Resolve(ctx, domain.RequestContext{
			SessionID: "shop1.myshopify.io",
			ShopParam: "shop2.myshopify.io",
		})
		assert.ErrorIs(t, err, application.ErrShopMismatch)
	})

	t.Run("backend failure propagates as a storage error", func(t *testing.T) {
		t.Parallel()
		backendErr := errors.New("connection refused")
		resolver := application.NewSessionResolver(&failingStore{err: backendErr}, zerolog.Nop())

		_, err := resolver.Resolve(ctx, domain.RequestContext{SessionID: "shop1.myshopify.io"})
		require.Error(t, err)
		assert.ErrorIs(t, err, backendErr)
		assert.NotErrorIs(t, err, application.ErrUnauthenticated)
		assert.NotErrorIs(t, err, application.ErrShopMismatch)
	})
}
