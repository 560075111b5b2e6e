package ports

import "context"

// Browser abstracts the browsing context the storage-access protocol runs
// against. The two storage-access calls are the only asynchronous,
// promise-backed operations; everything else is a synchronous DOM or
// navigation effect. Keeping them behind this interface lets the transition
// logic run in tests without a real browser.
type Browser interface {
	// HasStorageAccess reports whether the frame already has first-party
	// storage access. Single-shot: the machine reacts to the settled result,
	// it never polls.
	HasStorageAccess(ctx context.Context) (bool, error)

	// RequestStorageAccess asks the user for storage access. It must only be
	// invoked from a click handler bound via OnClick, because compliant
	// browsers require a user gesture. A rejection is an expected outcome,
	// not a failure.
	RequestStorageAccess(ctx context.Context) error

	// Navigate replaces the current frame's location.
	Navigate(url string)

	// NavigateTopLevel replaces the top frame's location, unloading the
	// embedded frame.
	NavigateTopLevel(url string)

	// ShowElement makes the element with the given id visible
	// (display: block). The host page owns the element; the machine only
	// toggles it.
	ShowElement(id string)

	// OnClick binds a handler to the element with the given id.
	OnClick(id string, handler func(ctx context.Context))

	// SessionGet and SessionSet read and write the session-scoped marker
	// storage, the only state that survives a top-level navigation.
	SessionGet(key string) (string, bool)
	SessionSet(key, value string)

	// SetCookie writes a cookie with attributes appropriate for partitioned
	// storage. Writing the same name twice replaces, it never duplicates.
	SetCookie(name, value string)

	// UserAgent returns the raw user agent string of the browsing context.
	UserAgent() string
}
