package application

import (
	"context"

	"shopify-session-gate/internal/itp"
	"shopify-session-gate/internal/ports"
)

// TopLevelInteraction runs at the top level after the machine's one-time
// redirect out of the iframe. It records that the user has interacted at the
// top level and sends them back into the embedded app. The marker must be in
// place before returning, otherwise the iframe would bounce the top frame out
// again and loop.
type TopLevelInteraction struct {
	browser  ports.Browser
	returnTo string
}

// NewTopLevelInteraction creates the top-level leg. returnTo is the embedded
// app entry inside the shop admin.
func NewTopLevelInteraction(browser ports.Browser, returnTo string) *TopLevelInteraction {
	return &TopLevelInteraction{browser: browser, returnTo: returnTo}
}

// Complete sets the interaction marker, once, then navigates back into the
// app.
func (t *TopLevelInteraction) Complete(ctx context.Context) {
	if _, ok := t.browser.SessionGet(itp.MarkerTopLevelInteraction); !ok {
		t.browser.SessionSet(itp.MarkerTopLevelInteraction, "true")
	}
	t.browser.Navigate(t.returnTo)
}
