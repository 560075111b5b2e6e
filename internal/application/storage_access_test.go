package application_test

import (
	"context"
	"errors"
	"testing"

	"shopify-session-gate/internal/application"
	"shopify-session-gate/internal/itp"

	"github.com/dmitrymomot/saaskit/pkg/useragent"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBrowser records every effect the machine performs.
type fakeBrowser struct {
	hasAccess      bool
	hasAccessCalls int
	requestErr     error
	requestCalls   int

	navigations         []string
	topLevelNavigations []string
	shown               []string
	clicks              map[string]func(ctx context.Context)
	session             map[string]string
	cookies             map[string]string
	cookieWrites        int
}

func newFakeBrowser() *fakeBrowser {
	return &fakeBrowser{
		clicks:  make(map[string]func(ctx context.Context)),
		session: make(map[string]string),
		cookies: make(map[string]string),
	}
}

func (b *fakeBrowser) HasStorageAccess(ctx context.Context) (bool, error) {
	b.hasAccessCalls++
	return b.hasAccess, nil
}

func (b *fakeBrowser) RequestStorageAccess(ctx context.Context) error {
	b.requestCalls++
	return b.requestErr
}

func (b *fakeBrowser) Navigate(url string)         { b.navigations = append(b.navigations, url) }
func (b *fakeBrowser) NavigateTopLevel(url string) { b.topLevelNavigations = append(b.topLevelNavigations, url) }
func (b *fakeBrowser) ShowElement(id string)       { b.shown = append(b.shown, id) }

func (b *fakeBrowser) OnClick(id string, handler func(ctx context.Context)) {
	b.clicks[id] = handler
}

func (b *fakeBrowser) SessionGet(key string) (string, bool) {
	v, ok := b.session[key]
	return v, ok
}

func (b *fakeBrowser) SessionSet(key, value string) { b.session[key] = value }

func (b *fakeBrowser) SetCookie(name, value string) {
	b.cookies[name] = value
	b.cookieWrites++
}

func (b *fakeBrowser) UserAgent() string { return "" }

func (b *fakeBrowser) click(t *testing.T, id string) {
	t.Helper()
	handler, ok := b.clicks[id]
	require.True(t, ok, "no click handler bound to %s", id)
	handler(context.Background())
}

var redirectInfo = application.RedirectInfo{
	HasStorageAccessURL:         "https://hasStorageAccess.com",
	DoesNotHaveStorageAccessURL: "https://doesNotHaveStorageAccess.com",
	MyShopifyURL:                "https://shop1.myshopify.io",
	Home:                        "https://app.io",
}

func fixedPolicy(v bool) itp.Policy {
	return func(useragent.Browser) bool { return v }
}

func newHelper(browser *fakeBrowser, canPartition, affected bool) *application.StorageAccessHelper {
	probe := itp.NewHelper("",
		itp.WithPartitionPolicy(fixedPolicy(canPartition)),
		itp.WithAffectedPolicy(fixedPolicy(affected)),
	)
	return application.NewStorageAccessHelper(redirectInfo, "api-key-123", browser, probe, zerolog.Nop())
}

func TestStorageAccessHelperExecute(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("partitioning browser gets the partition prompt, storage access is never checked", func(t *testing.T) {
		t.Parallel()
		browser := newFakeBrowser()
		helper := newHelper(browser, true, true)

		require.NoError(t, helper.Execute(ctx))

		assert.Contains(t, browser.shown, "CookiePartitionPrompt")
		assert.Zero(t, browser.hasAccessCalls)
		assert.Empty(t, browser.navigations)
		assert.Empty(t, browser.topLevelNavigations)
	})

	t.Run("unaffected browser goes straight home", func(t *testing.T) {
		t.Parallel()
		browser := newFakeBrowser()
		helper := newHelper(browser, false, false)

		require.NoError(t, helper.Execute(ctx))

		assert.Equal(t, []string{"https://app.io"}, browser.topLevelNavigations)
		assert.Zero(t, browser.hasAccessCalls)
		assert.Zero(t, browser.requestCalls)
	})

	t.Run("existing access needs no redirect", func(t *testing.T) {
		t.Parallel()
		browser := newFakeBrowser()
		browser.hasAccess = true
		helper := newHelper(browser, false, true)

		require.NoError(t, helper.Execute(ctx))

		assert.Equal(t, 1, browser.hasAccessCalls)
		assert.Empty(t, browser.navigations)
		assert.Empty(t, browser.topLevelNavigations)
		assert.Equal(t, "true", browser.session[itp.MarkerGrantedStorageAccess])
	})

	t.Run("no access and no interaction marker redirects top level exactly once", func(t *testing.T) {
		t.Parallel()
		browser := newFakeBrowser()
		helper := newHelper(browser, false, true)

		require.NoError(t, helper.Execute(ctx))

		want := itp.BuildRedirectURL("https://shop1.myshopify.io", "api-key-123")
		assert.Equal(t, []string{want}, browser.topLevelNavigations)
		assert.Empty(t, browser.navigations)
	})

	t.Run("no access with interaction marker shows the prompt instead of redirecting", func(t *testing.T) {
		t.Parallel()
		browser := newFakeBrowser()
		browser.session[itp.MarkerTopLevelInteraction] = "true"
		helper := newHelper(browser, false, true)

		require.NoError(t, helper.Execute(ctx))

		assert.Contains(t, browser.shown, "RequestStorageAccess")
		assert.Empty(t, browser.topLevelNavigations)
		// The prompt is gated on a user gesture: nothing requested yet.
		assert.Zero(t, browser.requestCalls)
	})

	t.Run("prompt click with granted access sets the marker and redirects", func(t *testing.T) {
		t.Parallel()
		browser := newFakeBrowser()
		browser.session[itp.MarkerTopLevelInteraction] = "true"
		helper := newHelper(browser, false, true)
		require.NoError(t, helper.Execute(ctx))

		browser.click(t, "TriggerAllowCookiesPrompt")

		assert.Equal(t, 1, browser.requestCalls)
		assert.Equal(t, "true", browser.session[itp.MarkerGrantedStorageAccess])
		assert.Equal(t, []string{"https://hasStorageAccess.com"}, browser.navigations)
	})

	t.Run("prompt click with denied access redirects without touching the marker", func(t *testing.T) {
		t.Parallel()
		browser := newFakeBrowser()
		browser.session[itp.MarkerTopLevelInteraction] = "true"
		browser.requestErr = errors.New("user denied")
		helper := newHelper(browser, false, true)
		require.NoError(t, helper.Execute(ctx))

		browser.click(t, "TriggerAllowCookiesPrompt")

		assert.Equal(t, []string{"https://doesNotHaveStorageAccess.com"}, browser.navigations)
		_, granted := browser.session[itp.MarkerGrantedStorageAccess]
		assert.False(t, granted)
	})

	t.Run("partition consent sets the cookie and redirects once", func(t *testing.T) {
		t.Parallel()
		browser := newFakeBrowser()
		helper := newHelper(browser, true, true)
		require.NoError(t, helper.Execute(ctx))

		browser.click(t, "AcceptCookies")

		assert.Equal(t, "true", browser.cookies[itp.CookieCookiesPersist])
		// Last known outcome defaults to granted.
		assert.Equal(t, []string{"https://hasStorageAccess.com"}, browser.navigations)
	})
}

func TestNormalizedLink(t *testing.T) {
	t.Parallel()
	helper := newHelper(newFakeBrowser(), false, true)

	assert.Equal(t, "https://hasStorageAccess.com", helper.NormalizedLink(application.AccessGranted))
	assert.Equal(t, "https://doesNotHaveStorageAccess.com", helper.NormalizedLink(application.AccessDenied))
}

func TestCookiePartitionerSetCookieAndRedirect(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("repeated calls leave exactly one cookie", func(t *testing.T) {
		t.Parallel()
		browser := newFakeBrowser()
		partitioner := application.NewCookiePartitioner(browser)

		partitioner.SetCookieAndRedirect(ctx, "https://hasStorageAccess.com")
		partitioner.SetCookieAndRedirect(ctx, "https://hasStorageAccess.com")

		assert.Len(t, browser.cookies, 1)
		assert.Equal(t, "true", browser.cookies[itp.CookieCookiesPersist])
		assert.Equal(t, 2, browser.cookieWrites)
	})
}

func TestTopLevelInteractionComplete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("sets the marker before navigating back", func(t *testing.T) {
		t.Parallel()
		browser := newFakeBrowser()
		leg := application.NewTopLevelInteraction(browser, "https://shop1.myshopify.io/admin/apps/api-key-123")

		leg.Complete(ctx)

		assert.Equal(t, "true", browser.session[itp.MarkerTopLevelInteraction])
		assert.Equal(t, []string{"https://shop1.myshopify.io/admin/apps/api-key-123"}, browser.navigations)
	})

	t.Run("marker survives a second completion unchanged", func(t *testing.T) {
		t.Parallel()
		browser := newFakeBrowser()
		leg := application.NewTopLevelInteraction(browser, "https://shop1.myshopify.io/admin/apps/api-key-123")

		leg.Complete(ctx)
		leg.Complete(ctx)

		assert.Equal(t, "true", browser.session[itp.MarkerTopLevelInteraction])
		assert.Len(t, browser.navigations, 2)
	})
}
