// Package itp probes the browsing environment for Intelligent Tracking
// Prevention behavior and builds the redirect targets the storage-access
// protocol needs. Everything here is synchronous and side-effect free.
package itp

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/dmitrymomot/saaskit/pkg/useragent"
)

// Session-scoped marker keys and the partition cookie name. These are the only
// state the protocol keeps across a top-level navigation.
const (
	MarkerTopLevelInteraction  = "shopify.top_level_interaction"
	MarkerGrantedStorageAccess = "shopify.granted_storage_access"
	CookieCookiesPersist       = "shopify.cookies_persist"
)

// Policy decides a capability question for a parsed browser. The version
// cutoffs drift as browsers change, so both checks are injectable rather than
// hard contracts.
type Policy func(browser useragent.Browser) bool

var (
	// Safari started partitioning third-party storage with ITP in 12.1.
	affectedConstraint = semver.MustParse("12.1.0")

	// Only the 12.0 line supports the cookie-partitioning fallback, a
	// strictly narrower set than storage-access support.
	partitionFloor   = semver.MustParse("12.0.0")
	partitionCeiling = semver.MustParse("12.1.0")
)

func defaultAffected(b useragent.Browser) bool {
	v, ok := safariVersion(b)
	if !ok {
		return false
	}
	return !v.LessThan(affectedConstraint)
}

func defaultPartitions(b useragent.Browser) bool {
	v, ok := safariVersion(b)
	if !ok {
		return false
	}
	return !v.LessThan(partitionFloor) && v.LessThan(partitionCeiling)
}

func safariVersion(b useragent.Browser) (*semver.Version, bool) {
	if b.Name != useragent.BrowserSafari || b.Version == "" {
		return nil, false
	}
	v, err := semver.NewVersion(b.Version)
	if err != nil {
		return nil, false
	}
	return v, true
}

// Helper answers the two capability questions for one user agent.
type Helper struct {
	browser    useragent.Browser
	affected   Policy
	partitions Policy
}

// Option overrides a default policy, mainly for tests and for rolling the
// version cutoffs forward without touching callers.
type Option func(*Helper)

// WithAffectedPolicy replaces the ITP-affected check.
func WithAffectedPolicy(p Policy) Option {
	return func(h *Helper) { h.affected = p }
}

// WithPartitionPolicy replaces the cookie-partitioning check.
func WithPartitionPolicy(p Policy) Option {
	return func(h *Helper) { h.partitions = p }
}

// NewHelper parses the raw user agent string and applies any policy
// overrides. Unparseable agents are treated as unaffected.
func NewHelper(rawUserAgent string, opts ...Option) *Helper {
	ua, _ := useragent.Parse(rawUserAgent)
	h := &Helper{
		browser:    ua.BrowserInfo(),
		affected:   defaultAffected,
		partitions: defaultPartitions,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// UserAgentIsAffected reports whether this browser enforces storage
// partitioning that the protocol must work around.
func (h *Helper) UserAgentIsAffected() bool {
	return h.affected(h.browser)
}

// CanPartitionCookies reports whether the cookie-partitioning fallback is
// available instead of the full storage-access handshake.
func (h *Helper) CanPartitionCookies() bool {
	return h.partitions(h.browser)
}

// BuildRedirectURL constructs the canonical top-level destination used to
// re-enter the app outside the iframe: {shopOrigin}/admin/apps/{appHandle}.
func BuildRedirectURL(shopOrigin, appHandle string) string {
	return fmt.Sprintf("%s/admin/apps/%s", strings.TrimRight(shopOrigin, "/"), appHandle)
}
