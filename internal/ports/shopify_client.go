package ports

import (
	"context"

	shopify "github.com/bold-commerce/go-shopify/v4"
)

// ShopifyClient defines the slice of the Shopify Admin API this service
// touches. The gate only ever needs to know whether a stored token still
// works, which a shop lookup answers.
type ShopifyClient interface {
	// GetShop fetches the shop resource with the given access token. A token
	// the API no longer accepts yields domain.ErrUnauthorizedAccess.
	GetShop(ctx context.Context, shopDomain string, accessToken string) (*shopify.Shop, error)
}
