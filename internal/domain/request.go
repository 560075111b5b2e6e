package domain

// RequestContext carries the request-shape facts the session gate needs to
// make its authorization decision. One instance exists per inbound request and
// is never persisted.
type RequestContext struct {
	// SessionID is the opaque identifier extracted from the request's session
	// storage. Empty means the request carries no session at all.
	SessionID string

	// ShopParam is the shop domain supplied by the caller, usually via the
	// "shop" query parameter. Optional.
	ShopParam string

	// IsXHR and IsGet describe the request shape; they only influence the
	// redirect-vs-401 policy, never session resolution itself.
	IsXHR bool
	IsGet bool

	// FullPath is the original request URI, remembered across the login
	// round trip so the user lands back where they started.
	FullPath string
}
