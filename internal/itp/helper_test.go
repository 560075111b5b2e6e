package itp_test

import (
	"testing"

	"shopify-session-gate/internal/itp"

	"github.com/dmitrymomot/saaskit/pkg/useragent"
	"github.com/stretchr/testify/assert"
)

const (
	safari121UA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_14_4) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/12.1 Safari/605.1.15"
	safari120UA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_14_0) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/12.0 Safari/605.1.15"
	safari113UA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_13_6) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/11.1.2 Safari/605.1.15"
	chromeUA    = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_14_4) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/73.0.3683.103 Safari/537.36"
)

func TestUserAgentIsAffected(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		ua       string
		affected bool
	}{
		{name: "safari 12.1 enforces itp", ua: safari121UA, affected: true},
		{name: "safari 12.0 predates itp", ua: safari120UA, affected: false},
		{name: "safari 11 predates itp", ua: safari113UA, affected: false},
		{name: "chrome is unaffected", ua: chromeUA, affected: false},
		{name: "empty agent is unaffected", ua: "", affected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.affected, itp.NewHelper(tt.ua).UserAgentIsAffected())
		})
	}
}

func TestCanPartitionCookies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		ua         string
		partitions bool
	}{
		{name: "safari 12.0 partitions", ua: safari120UA, partitions: true},
		{name: "safari 12.1 negotiates storage access instead", ua: safari121UA, partitions: false},
		{name: "safari 11 does neither", ua: safari113UA, partitions: false},
		{name: "chrome does not partition", ua: chromeUA, partitions: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.partitions, itp.NewHelper(tt.ua).CanPartitionCookies())
		})
	}
}

func TestPolicyOverrides(t *testing.T) {
	t.Parallel()

	always := func(useragent.Browser) bool { return true }

	helper := itp.NewHelper(chromeUA,
		itp.WithAffectedPolicy(always),
		itp.WithPartitionPolicy(always),
	)
	assert.True(t, helper.UserAgentIsAffected())
	assert.True(t, helper.CanPartitionCookies())
}

func TestBuildRedirectURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"https://test-shop.myshopify.io/admin/apps/123",
		itp.BuildRedirectURL("https://test-shop.myshopify.io", "123"),
	)
	assert.Equal(t,
		"https://test-shop.myshopify.io/admin/apps/123",
		itp.BuildRedirectURL("https://test-shop.myshopify.io/", "123"),
	)
}
