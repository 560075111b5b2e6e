package domain

import "context"

// contextKey is a private type for context keys to avoid collisions
type contextKey string

const shopSessionKey contextKey = "shop_session"

// WithShopSession returns a context carrying the resolved session. The
// session's lifetime is bounded by the request context it is attached to, so
// teardown needs no explicit step: once the request finishes, the activation
// is gone with the context.
func WithShopSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, shopSessionKey, session)
}

// ShopSessionFromContext returns the active session for the request, or nil
// when the request was not authorized.
func ShopSessionFromContext(ctx context.Context) *Session {
	session, _ := ctx.Value(shopSessionKey).(*Session)
	return session
}
