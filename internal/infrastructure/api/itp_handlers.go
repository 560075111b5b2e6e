package api

import (
	"encoding/json"
	"html/template"
	"net/http"

	"shopify-session-gate/internal/application"
	"shopify-session-gate/internal/itp"

	"github.com/rs/zerolog"
)

// ITPHandlers serves the pieces of the storage-access protocol that need a
// server: the per-shop redirect configuration for the embedded page, the
// top-level bounce page that records the interaction marker, and the consent
// prompt page carrying the DOM contract.
type ITPHandlers struct {
	appURL string
	apiKey string
	logger zerolog.Logger
}

// NewITPHandlers creates the ITP handler set. appURL is the app's own origin,
// apiKey doubles as the app handle in the admin deep link.
func NewITPHandlers(appURL, apiKey string, logger zerolog.Logger) *ITPHandlers {
	return &ITPHandlers{
		appURL: appURL,
		apiKey: apiKey,
		logger: logger,
	}
}

// RedirectInfo returns the RedirectInfo bundle for one shop as JSON. The
// embedded page constructs its storage-access machine from it.
func (h *ITPHandlers) RedirectInfo(w http.ResponseWriter, r *http.Request) {
	shop := r.URL.Query().Get("shop")
	if shop == "" {
		http.Error(w, "shop parameter is required", http.StatusBadRequest)
		return
	}

	info := application.RedirectInfo{
		HasStorageAccessURL:         h.appURL + "/?shop=" + shop,
		DoesNotHaveStorageAccessURL: h.appURL + "/itp/enable-cookies?shop=" + shop,
		MyShopifyURL:                "https://" + shop,
		Home:                        h.appURL + "/?shop=" + shop,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(info); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode redirect info")
	}
}

var topLevelTemplate = template.Must(template.New("top_level").Parse(`<!DOCTYPE html>
<html>
<head><title>Redirecting…</title></head>
<body>
<script>
  window.sessionStorage.setItem({{.Marker}}, 'true');
  window.location.href = {{.RedirectURL}};
</script>
</body>
</html>
`))

// TopLevel serves the page the machine's one-time top-level redirect lands
// on. It writes the interaction marker before navigating back into the
// embedded app; without that order the iframe would redirect out again and
// loop.
func (h *ITPHandlers) TopLevel(w http.ResponseWriter, r *http.Request) {
	shop := r.URL.Query().Get("shop")
	if shop == "" {
		http.Error(w, "shop parameter is required", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := topLevelTemplate.Execute(w, map[string]string{
		"Marker":      itp.MarkerTopLevelInteraction,
		"RedirectURL": itp.BuildRedirectURL("https://"+shop, h.apiKey),
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to render top-level page")
	}
}

var enableCookiesTemplate = template.Must(template.New("enable_cookies").Parse(`<!DOCTYPE html>
<html>
<head><title>Enable cookies</title></head>
<body>
<div id="RequestStorageAccess" style="display: none;">
  <p>Your browser needs to grant this app access to its cookies to keep you signed in.</p>
  <button id="TriggerAllowCookiesPrompt" type="button">Continue</button>
</div>
<div id="CookiePartitionPrompt" style="display: none;">
  <p>Your browser needs to accept cookies from this app to keep you signed in.</p>
  <button id="AcceptCookies" type="button">Accept cookies</button>
</div>
</body>
</html>
`))

// EnableCookies serves the host page for the consent prompts. Both prompt
// containers start hidden; the storage-access machine toggles whichever one
// applies and binds the button handlers.
func (h *ITPHandlers) EnableCookies(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := enableCookiesTemplate.Execute(w, nil); err != nil {
		h.logger.Error().Err(err).Msg("Failed to render enable-cookies page")
	}
}
