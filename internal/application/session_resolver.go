package application

import (
	"context"
	"errors"
	"fmt"

	"shopify-session-gate/internal/domain"
	"shopify-session-gate/internal/ports"

	"github.com/rs/zerolog"
)

// Resolution outcomes that are normal control flow, not failures. Callers
// branch on them explicitly; anything else returned from Resolve is a backend
// storage failure and fatal for the request.
var (
	ErrUnauthenticated = errors.New("no valid session for request")
	ErrShopMismatch    = errors.New("session belongs to a different shop")
)

// SessionResolver turns an inbound request's session identifier into a
// validated session.
type SessionResolver struct {
	store  ports.SessionStore
	logger zerolog.Logger
}

// NewSessionResolver creates a new session resolver
func NewSessionResolver(store ports.SessionStore, logger zerolog.Logger) *SessionResolver {
	return &SessionResolver{
		store:  store,
		logger: logger,
	}
}

// Resolve fetches the session named by the request. A missing identifier or a
// store miss yields ErrUnauthenticated. When the caller supplied a shop
// parameter that disagrees with the stored session, the session is stale from
// a previous login on another shop and Resolve yields ErrShopMismatch.
// Lookups are expected to be fast and local, so there are no retries.
func (r *SessionResolver) Resolve(ctx context.Context, reqCtx domain.RequestContext) (*domain.Session, error) {
	if reqCtx.SessionID == "" {
		return nil, ErrUnauthenticated
	}

	session, err := r.store.Get(ctx, reqCtx.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}
	if session == nil {
		return nil, ErrUnauthenticated
	}

	if reqCtx.ShopParam != "" && reqCtx.ShopParam != session.ShopDomain {
		r.logger.Debug().
			Str("shop_param", reqCtx.ShopParam).
			Str("session_shop", session.ShopDomain).
			Msg("Shop mismatch detected")
		return nil, ErrShopMismatch
	}

	return session, nil
}
