package middleware

import (
	"net/http"
	"net/url"

	"shopify-session-gate/internal/application"
	"shopify-session-gate/internal/domain"

	"github.com/rs/zerolog"
)

// Cookie names on the app's own (first-party) domain. The session cookie is
// written by the external login flow; this layer only reads it. The return-to
// cookie carries the original path across the login round trip.
const (
	SessionCookieName  = "shopify_app_session"
	ReturnToCookieName = "shopify_app_return_to"
)

// LoginGateMiddleware guards a route group with the login gate. Each handler
// gets the resolved session through the request context, so activation ends
// with the request on every exit path, panics included.
func LoginGateMiddleware(gate *application.LoginGate, metrics *Metrics, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqCtx := requestContextFrom(r)

			decision, err := gate.Authorize(r.Context(), reqCtx)
			if err != nil {
				// Only storage failures reach here; everything else is a
				// normal decision.
				logger.Error().Err(err).Str("path", r.URL.Path).Msg("Session authorization failed")
				metrics.ObserveDecision("error")
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
			metrics.ObserveDecision(decision.Outcome.String())

			switch decision.Outcome {
			case application.OutcomeUnauthorized:
				w.WriteHeader(http.StatusUnauthorized)

			case application.OutcomeRedirect:
				if decision.ReturnTo != "" {
					http.SetCookie(w, &http.Cookie{
						Name:     ReturnToCookieName,
						Value:    url.QueryEscape(decision.ReturnTo),
						Path:     "/",
						HttpOnly: true,
						Secure:   true,
						SameSite: http.SameSiteNoneMode,
					})
				}
				http.Redirect(w, r, decision.RedirectURL, http.StatusFound)

			case application.OutcomeProceed:
				ctx := domain.WithShopSession(r.Context(), decision.Session)
				next.ServeHTTP(w, r.WithContext(ctx))
			}
		})
	}
}

func requestContextFrom(r *http.Request) domain.RequestContext {
	reqCtx := domain.RequestContext{
		ShopParam: r.URL.Query().Get("shop"),
		IsXHR:     r.Header.Get("X-Requested-With") == "XMLHttpRequest",
		IsGet:     r.Method == http.MethodGet,
		FullPath:  r.URL.RequestURI(),
	}
	if c, err := r.Cookie(SessionCookieName); err == nil {
		reqCtx.SessionID = c.Value
	}
	return reqCtx
}
