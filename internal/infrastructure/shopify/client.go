package shopify

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"shopify-session-gate/internal/domain"
	"shopify-session-gate/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

type client struct {
	app    goshopify.App
	logger zerolog.Logger
}

// NewClient creates a new Shopify client adapter
func NewClient(apiKey, apiSecret string, logger zerolog.Logger) ports.ShopifyClient {
	return &client{
		app: goshopify.App{
			ApiKey:    apiKey,
			ApiSecret: apiSecret,
		},
		logger: logger,
	}
}

// createClient is a helper to create a goshopify client
func (c *client) createClient(shopDomain string, accessToken string) (*goshopify.Client, error) {
	client, err := goshopify.NewClient(c.app, shopDomain, accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

// GetShop fetches the shop resource, mapping a 401 to
// domain.ErrUnauthorizedAccess so the gate can close the session instead of
// treating it as an infrastructure failure.
func (c *client) GetShop(ctx context.Context, shopDomain string, accessToken string) (*goshopify.Shop, error) {
	client, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}

	shop, err := client.Shop.Get(ctx, nil)
	if err != nil {
		var respErr goshopify.ResponseError
		if errors.As(err, &respErr) && respErr.Status == http.StatusUnauthorized {
			c.logger.Debug().Str("shop", shopDomain).Msg("Access token rejected by Shopify API")
			return nil, fmt.Errorf("shop lookup: %w", domain.ErrUnauthorizedAccess)
		}
		return nil, fmt.Errorf("failed to get shop: %w", err)
	}
	return shop, nil
}
