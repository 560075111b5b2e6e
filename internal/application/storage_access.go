package application

import (
	"context"
	"fmt"

	"shopify-session-gate/internal/itp"
	"shopify-session-gate/internal/ports"

	"github.com/dmitrymomot/saaskit/pkg/statemachine"
	"github.com/rs/zerolog"
)

// Access outcomes. NormalizedLink only understands these two literals.
const (
	AccessGranted = "access granted"
	AccessDenied  = "access denied"
)

// Element ids the host page must provide. The machine toggles visibility and
// binds click handlers; it never creates the elements.
const (
	elementRequestStorageAccess = "RequestStorageAccess"
	buttonTriggerAllowCookies   = "TriggerAllowCookiesPrompt"
	elementCookiePartition      = "CookiePartitionPrompt"
	buttonAcceptCookies         = "AcceptCookies"
)

const (
	stateStart              = statemachine.StringState("Start")
	stateSetUpPartitioning  = statemachine.StringState("SetUpPartitioning")
	statePartitionConsented = statemachine.StringState("PartitionConsented")
	stateRedirectHome       = statemachine.StringState("RedirectHome")
	stateCheckStorageAccess = statemachine.StringState("CheckStorageAccess")
	stateHasAccess          = statemachine.StringState("HasAccess")
	stateSetupPrompt        = statemachine.StringState("SetupPrompt")
	stateRedirectTopLevel   = statemachine.StringState("RedirectTopLevel")
	stateGranted            = statemachine.StringState("Granted")
	stateDenied             = statemachine.StringState("Denied")
)

const (
	eventExecute       = statemachine.StringEvent("execute")
	eventAccessPresent = statemachine.StringEvent("access_present")
	eventAccessMissing = statemachine.StringEvent("access_missing")
	eventPromptGranted = statemachine.StringEvent("prompt_granted")
	eventPromptDenied  = statemachine.StringEvent("prompt_denied")
	eventConsent       = statemachine.StringEvent("partition_consented")
)

// RedirectInfo is the immutable configuration bundle the client machine is
// constructed with. All URLs are absolute.
type RedirectInfo struct {
	HasStorageAccessURL         string `json:"hasStorageAccessUrl"`
	DoesNotHaveStorageAccessURL string `json:"doesNotHaveStorageAccessUrl"`
	MyShopifyURL                string `json:"myShopifyUrl"`
	Home                        string `json:"home"`
}

// StorageAccessHelper walks an embedded frame through regaining first-party
// storage access: capability checks, the user-gesture-gated storage-access
// prompt, the cookie-partitioning fallback, and top-level redirects. The
// session-scoped markers written through the browser port are the only state
// that survives a top-level navigation.
//
// The transition table is exhaustive and mutually exclusive per state, so one
// evaluation issues at most one navigation. The two asynchronous browser
// calls happen between Fire calls; everything else is synchronous.
type StorageAccessHelper struct {
	info        RedirectInfo
	appHandle   string
	browser     ports.Browser
	helper      *itp.Helper
	partitioner *CookiePartitioner
	machine     statemachine.StateMachine

	// storageAccessStatus remembers the last settled access outcome; the
	// partition consent redirect reuses it.
	storageAccessStatus string

	logger zerolog.Logger
}

// NewStorageAccessHelper creates the client machine. appHandle is the app's
// handle (its API key) used for the /admin/apps deep link. A nil helper is
// derived from the browser's own user agent.
func NewStorageAccessHelper(
	info RedirectInfo,
	appHandle string,
	browser ports.Browser,
	helper *itp.Helper,
	logger zerolog.Logger,
) *StorageAccessHelper {
	if helper == nil {
		helper = itp.NewHelper(browser.UserAgent())
	}

	h := &StorageAccessHelper{
		info:                info,
		appHandle:           appHandle,
		browser:             browser,
		helper:              helper,
		partitioner:         NewCookiePartitioner(browser),
		storageAccessStatus: AccessGranted,
		logger:              logger,
	}
	h.machine = h.buildMachine()
	return h
}

func (h *StorageAccessHelper) buildMachine() statemachine.StateMachine {
	canPartition := func(ctx context.Context, from statemachine.State, event statemachine.Event, data any) bool {
		return h.helper.CanPartitionCookies()
	}
	notAffected := func(ctx context.Context, from statemachine.State, event statemachine.Event, data any) bool {
		return !h.helper.CanPartitionCookies() && !h.helper.UserAgentIsAffected()
	}
	affected := func(ctx context.Context, from statemachine.State, event statemachine.Event, data any) bool {
		return !h.helper.CanPartitionCookies() && h.helper.UserAgentIsAffected()
	}
	markerPresent := func(ctx context.Context, from statemachine.State, event statemachine.Event, data any) bool {
		_, ok := h.browser.SessionGet(itp.MarkerTopLevelInteraction)
		return ok
	}
	markerAbsent := func(ctx context.Context, from statemachine.State, event statemachine.Event, data any) bool {
		_, ok := h.browser.SessionGet(itp.MarkerTopLevelInteraction)
		return !ok
	}

	action := func(fn func(ctx context.Context)) statemachine.Action {
		return func(ctx context.Context, from, to statemachine.State, event statemachine.Event, data any) error {
			fn(ctx)
			return nil
		}
	}

	return statemachine.MustNew(stateStart, statemachine.WithTransitions([]statemachine.TransitionDef{
		{
			From: stateStart, To: stateSetUpPartitioning, Event: eventExecute,
			Guards:  []statemachine.Guard{canPartition},
			Actions: []statemachine.Action{action(h.setUpCookiePartitioning)},
		},
		{
			From: stateStart, To: stateRedirectHome, Event: eventExecute,
			Guards:  []statemachine.Guard{notAffected},
			Actions: []statemachine.Action{action(h.redirectToAppHome)},
		},
		{
			// The hasStorageAccess call itself runs in Execute once this
			// state is reached; actions cannot await it.
			From: stateStart, To: stateCheckStorageAccess, Event: eventExecute,
			Guards: []statemachine.Guard{affected},
		},
		{
			From: stateCheckStorageAccess, To: stateHasAccess, Event: eventAccessPresent,
			Actions: []statemachine.Action{action(h.handleHasStorageAccess)},
		},
		{
			From: stateCheckStorageAccess, To: stateSetupPrompt, Event: eventAccessMissing,
			Guards:  []statemachine.Guard{markerPresent},
			Actions: []statemachine.Action{action(h.setupRequestStorageAccess)},
		},
		{
			From: stateCheckStorageAccess, To: stateRedirectTopLevel, Event: eventAccessMissing,
			Guards:  []statemachine.Guard{markerAbsent},
			Actions: []statemachine.Action{action(h.redirectToAppTLD)},
		},
		{
			From: stateSetupPrompt, To: stateGranted, Event: eventPromptGranted,
			Actions: []statemachine.Action{action(h.handleAccessGranted)},
		},
		{
			From: stateSetupPrompt, To: stateDenied, Event: eventPromptDenied,
			Actions: []statemachine.Action{action(h.handleAccessDenied)},
		},
		{
			From: stateSetUpPartitioning, To: statePartitionConsented, Event: eventConsent,
			Actions: []statemachine.Action{action(h.handlePartitionConsent)},
		},
	}))
}

// Execute runs one evaluation of the machine. The only suspension point is
// the hasStorageAccess check; the prompt paths continue later from the click
// handlers bound here.
func (h *StorageAccessHelper) Execute(ctx context.Context) error {
	if err := h.machine.Fire(ctx, eventExecute, nil); err != nil {
		return fmt.Errorf("storage access execute: %w", err)
	}

	if h.machine.Current() != stateCheckStorageAccess {
		return nil
	}

	hasAccess, err := h.browser.HasStorageAccess(ctx)
	if err != nil {
		return fmt.Errorf("hasStorageAccess check: %w", err)
	}

	event := eventAccessMissing
	if hasAccess {
		event = eventAccessPresent
	}
	if err := h.machine.Fire(ctx, event, nil); err != nil {
		return fmt.Errorf("storage access settle: %w", err)
	}
	return nil
}

// State returns the machine's current state name.
func (h *StorageAccessHelper) State() string {
	return h.machine.Current().Name()
}

// NormalizedLink maps a settled access outcome to its destination URL. Any
// input other than the two outcome literals is a caller bug; it falls through
// to the denied destination.
func (h *StorageAccessHelper) NormalizedLink(outcome string) string {
	if outcome == AccessGranted {
		return h.info.HasStorageAccessURL
	}
	return h.info.DoesNotHaveStorageAccessURL
}

// handleHasStorageAccess records that the frame is already authorized. No
// redirect: the app keeps loading in place.
func (h *StorageAccessHelper) handleHasStorageAccess(ctx context.Context) {
	h.storageAccessStatus = AccessGranted
	h.browser.SessionSet(itp.MarkerGrantedStorageAccess, "true")
}

// setupRequestStorageAccess reveals the consent prompt and binds the
// requestStorageAccess call to a real click. Compliant browsers only honor
// the call as a direct result of a user gesture, so it must never run on
// load.
func (h *StorageAccessHelper) setupRequestStorageAccess(ctx context.Context) {
	h.browser.ShowElement(elementRequestStorageAccess)
	h.browser.OnClick(buttonTriggerAllowCookies, h.handleRequestStorageAccess)
}

func (h *StorageAccessHelper) handleRequestStorageAccess(ctx context.Context) {
	// A rejection is the user declining, an expected outcome. It routes to
	// the denied destination and is not logged as a failure.
	event := eventPromptGranted
	if err := h.browser.RequestStorageAccess(ctx); err != nil {
		event = eventPromptDenied
	}
	if err := h.machine.Fire(ctx, event, nil); err != nil {
		h.logger.Warn().Err(err).Msg("Storage access prompt fired out of sequence")
	}
}

func (h *StorageAccessHelper) handleAccessGranted(ctx context.Context) {
	h.storageAccessStatus = AccessGranted
	h.browser.SessionSet(itp.MarkerGrantedStorageAccess, "true")
	h.browser.Navigate(h.NormalizedLink(AccessGranted))
}

func (h *StorageAccessHelper) handleAccessDenied(ctx context.Context) {
	h.storageAccessStatus = AccessDenied
	h.browser.Navigate(h.NormalizedLink(AccessDenied))
}

// redirectToAppHome leaves the workaround path entirely: browsers that never
// partition storage just load the app at the top level.
func (h *StorageAccessHelper) redirectToAppHome(ctx context.Context) {
	h.browser.NavigateTopLevel(h.info.Home)
}

// redirectToAppTLD sends the top frame through the shop admin so the
// interaction marker gets set at the top level. The marker is what keeps this
// redirect from ever firing twice in one session.
func (h *StorageAccessHelper) redirectToAppTLD(ctx context.Context) {
	h.browser.NavigateTopLevel(itp.BuildRedirectURL(h.info.MyShopifyURL, h.appHandle))
}

func (h *StorageAccessHelper) setUpCookiePartitioning(ctx context.Context) {
	h.browser.ShowElement(elementCookiePartition)
	h.browser.OnClick(buttonAcceptCookies, func(ctx context.Context) {
		if err := h.machine.Fire(ctx, eventConsent, nil); err != nil {
			h.logger.Warn().Err(err).Msg("Partition consent fired out of sequence")
		}
	})
}

func (h *StorageAccessHelper) handlePartitionConsent(ctx context.Context) {
	h.partitioner.SetCookieAndRedirect(ctx, h.NormalizedLink(h.storageAccessStatus))
}
