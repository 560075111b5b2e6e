package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"shopify-session-gate/internal/application"
	"shopify-session-gate/internal/domain"

	"github.com/rs/zerolog"
)

// AppHandlers are the gated routes of the embedded app itself. They run
// behind the login-gate middleware, so the session arrives through the
// request context.
type AppHandlers struct {
	gate   *application.LoginGate
	logger zerolog.Logger
}

// NewAppHandlers creates the gated handler set
func NewAppHandlers(gate *application.LoginGate, logger zerolog.Logger) *AppHandlers {
	return &AppHandlers{
		gate:   gate,
		logger: logger,
	}
}

// Home is the embedded app's landing route.
func (h *AppHandlers) Home(w http.ResponseWriter, r *http.Request) {
	session := domain.ShopSessionFromContext(r.Context())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"shop":        session.ShopDomain,
		"api_version": session.APIVersion,
	})
}

// Shop returns the shop behind the session after confirming the token is
// still accepted by the API. An unauthorized token closes the session and
// answers 401, telling the frontend to restart login.
func (h *AppHandlers) Shop(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := domain.ShopSessionFromContext(ctx)

	err := h.gate.VerifySession(ctx, session)
	switch {
	case err == nil:
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"shop":        session.ShopDomain,
			"api_version": session.APIVersion,
		})

	case errors.Is(err, application.ErrUnauthenticated):
		w.WriteHeader(http.StatusUnauthorized)

	default:
		h.logger.Error().Err(err).Str("shop", session.ShopDomain).Msg("Failed to verify session")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
