package application

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"shopify-session-gate/internal/domain"
	"shopify-session-gate/internal/ports"

	"github.com/rs/zerolog"
)

// Outcome is the authorization verdict for one request.
type Outcome int

const (
	// OutcomeProceed means a valid session exists and the request may run.
	OutcomeProceed Outcome = iota

	// OutcomeRedirect means the caller must be sent to the login endpoint.
	OutcomeRedirect

	// OutcomeUnauthorized means the caller gets an empty 401. Redirecting an
	// XHR call would only surface as an opaque failure to the page.
	OutcomeUnauthorized
)

func (o Outcome) String() string {
	switch o {
	case OutcomeProceed:
		return "proceed"
	case OutcomeRedirect:
		return "redirect"
	case OutcomeUnauthorized:
		return "unauthorized"
	}
	return "unknown"
}

// Decision is the result of authorizing one request. Exactly one of the
// fields beyond Outcome is meaningful: Session on proceed, RedirectURL (plus
// optional ReturnTo) on redirect.
type Decision struct {
	Outcome     Outcome
	Session     *domain.Session
	RedirectURL string

	// ReturnTo is the original request path to restore after login. Only set
	// for navigational GET requests.
	ReturnTo string
}

// LoginGate orchestrates per-request authorization: resolve the session,
// clear stale state on shop switches, and decide between redirect and 401
// based on the request shape.
type LoginGate struct {
	resolver *SessionResolver
	store    ports.SessionStore
	shopify  ports.ShopifyClient
	loginURL string
	logger   zerolog.Logger
}

// NewLoginGate creates a new login gate
func NewLoginGate(
	resolver *SessionResolver,
	store ports.SessionStore,
	shopify ports.ShopifyClient,
	loginURL string,
	logger zerolog.Logger,
) *LoginGate {
	return &LoginGate{
		resolver: resolver,
		store:    store,
		shopify:  shopify,
		loginURL: loginURL,
		logger:   logger,
	}
}

// Authorize resolves the request's session and returns the verdict. Only a
// storage failure is returned as an error; missing sessions and shop
// mismatches are normal outcomes expressed in the Decision.
func (g *LoginGate) Authorize(ctx context.Context, reqCtx domain.RequestContext) (Decision, error) {
	session, err := g.resolver.Resolve(ctx, reqCtx)
	switch {
	case err == nil:
		return Decision{Outcome: OutcomeProceed, Session: session}, nil

	case errors.Is(err, ErrShopMismatch):
		// A session from a previous login on another shop survived in this
		// browser. Clear it before restarting login so the next resolve
		// starts clean.
		if delErr := g.store.Delete(ctx, reqCtx.SessionID); delErr != nil {
			return Decision{}, fmt.Errorf("failed to clear stale session: %w", delErr)
		}
		g.logger.Info().
			Str("shop", reqCtx.ShopParam).
			Msg("Cleared stale session after shop switch")
		return g.redirectToLogin(reqCtx), nil

	case errors.Is(err, ErrUnauthenticated):
		return g.redirectToLogin(reqCtx), nil

	default:
		return Decision{}, err
	}
}

// VerifySession confirms the session's token is still accepted by the API.
// An unauthorized response closes the session and reports ErrUnauthenticated
// so the caller restarts login; every other API failure passes through.
func (g *LoginGate) VerifySession(ctx context.Context, session *domain.Session) error {
	_, err := g.shopify.GetShop(ctx, session.ShopDomain, session.AccessToken)
	switch {
	case err == nil:
		return nil

	case errors.Is(err, domain.ErrUnauthorizedAccess):
		if delErr := g.store.Delete(ctx, session.ShopDomain); delErr != nil {
			return fmt.Errorf("failed to close session: %w", delErr)
		}
		g.logger.Info().
			Str("shop", session.ShopDomain).
			Msg("Closed session after unauthorized API response")
		return ErrUnauthenticated

	default:
		return fmt.Errorf("failed to verify session: %w", err)
	}
}

func (g *LoginGate) redirectToLogin(reqCtx domain.RequestContext) Decision {
	if reqCtx.IsXHR {
		return Decision{Outcome: OutcomeUnauthorized}
	}

	target := g.loginURL
	if reqCtx.ShopParam != "" {
		q := url.Values{}
		q.Set("shop", reqCtx.ShopParam)
		target += "?" + q.Encode()
	}

	decision := Decision{Outcome: OutcomeRedirect, RedirectURL: target}
	if reqCtx.IsGet {
		decision.ReturnTo = reqCtx.FullPath
	}
	return decision
}
