package application

import (
	"context"

	"shopify-session-gate/internal/itp"
	"shopify-session-gate/internal/ports"
)

// CookiePartitioner finishes the partitioning fallback after the user
// consents: write the partition-capable marker cookie, then perform the
// redirect decided by the prior state. Cookie-write failures get no special
// handling; the cookie simply won't be there on the next check, which reads
// as "still needs access".
type CookiePartitioner struct {
	browser ports.Browser
}

// NewCookiePartitioner creates a new cookie partitioner
func NewCookiePartitioner(browser ports.Browser) *CookiePartitioner {
	return &CookiePartitioner{browser: browser}
}

// SetCookieAndRedirect sets shopify.cookies_persist and navigates to target.
// Setting a cookie by name replaces any existing one, so repeated calls leave
// exactly one cookie.
func (p *CookiePartitioner) SetCookieAndRedirect(ctx context.Context, target string) {
	p.browser.SetCookie(itp.CookieCookiesPersist, "true")
	p.browser.Navigate(target)
}
