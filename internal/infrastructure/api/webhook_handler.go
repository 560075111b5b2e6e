package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"shopify-session-gate/internal/ports"

	"github.com/rs/zerolog"
)

// WebhookHandler receives the app/uninstalled webhook and invalidates the
// shop's session so the next request restarts login instead of running with
// a dead token.
type WebhookHandler struct {
	store         ports.SessionStore
	webhookSecret string
	logger        zerolog.Logger
}

// NewWebhookHandler creates the webhook endpoint
func NewWebhookHandler(store ports.SessionStore, webhookSecret string, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		store:         store,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

// Handle verifies the webhook signature and processes the event.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	topic := r.Header.Get("X-Shopify-Topic")
	if topic == "" {
		http.Error(w, "Missing X-Shopify-Topic header", http.StatusBadRequest)
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if !h.verifySignature(payload, r.Header.Get("X-Shopify-Hmac-SHA256")) {
		h.logger.Warn().Str("topic", topic).Msg("Webhook signature verification failed")
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	shop := r.Header.Get("X-Shopify-Shop-Domain")
	if shop == "" {
		var body map[string]interface{}
		if err := json.Unmarshal(payload, &body); err == nil {
			if d, ok := body["myshopify_domain"].(string); ok {
				shop = d
			} else if d, ok := body["domain"].(string); ok {
				shop = d
			}
		}
	}

	if topic == "app/uninstalled" && shop != "" {
		if err := h.store.Delete(ctx, shop); err != nil {
			h.logger.Error().Err(err).Str("shop", shop).Msg("Failed to delete session after uninstall")
			// 500 so the sender retries
			http.Error(w, "Failed to process webhook event", http.StatusInternalServerError)
			return
		}
		h.logger.Info().Str("shop", shop).Msg("Deleted session after app uninstall")
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"received": "true"})
}

func (h *WebhookHandler) verifySignature(payload []byte, header string) bool {
	mac := hmac.New(sha256.New, []byte(h.webhookSecret))
	mac.Write(payload)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(header))
}
