package domain_test

import (
	"testing"

	"shopify-session-gate/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		session domain.Session
		field   string
	}{
		{
			name: "valid session",
			session: domain.Session{
				ShopDomain:  "shop1.myshopify.io",
				AccessToken: "token",
				APIVersion:  "2024-01",
			},
		},
		{
			name: "missing shop domain",
			session: domain.Session{
				AccessToken: "token",
				APIVersion:  "2024-01",
			},
			field: "shop_domain",
		},
		{
			name: "missing access token",
			session: domain.Session{
				ShopDomain: "shop1.myshopify.io",
				APIVersion: "2024-01",
			},
			field: "access_token",
		},
		{
			name: "missing api version",
			session: domain.Session{
				ShopDomain:  "shop1.myshopify.io",
				AccessToken: "token",
			},
			field: "api_version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.session.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, domain.IsValidationError(err))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}
