package middleware

import "net/http"

// SecurityHeadersMiddleware sets response headers for an app that lives
// inside the shop admin's iframe: frame-ancestors must allow the embedding
// admin, never X-Frame-Options deny.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ancestors := "https://admin.shopify.com"
			if shop := r.URL.Query().Get("shop"); shop != "" {
				ancestors += " https://" + shop
			}
			w.Header().Set("Content-Security-Policy", "frame-ancestors "+ancestors)
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("Referrer-Policy", "origin-when-cross-origin")
			next.ServeHTTP(w, r)
		})
	}
}
