package backend

import (
	"context"
	"fmt"

	"drivebook/internal/domain"
	"drivebook/internal/models"
)

var _ domain.PricingStore = (*Client)(nil)

const pricingCacheKey = "slot_pricing"

// ListPricing returns all pricing tiers. The list changes rarely, so it
// goes through the optional Redis cache; mutations below invalidate it.
func (c *Client) ListPricing(ctx context.Context) ([]models.SlotPricing, error) {
	var pricing []models.SlotPricing
	if c.readCache(ctx, pricingCacheKey, &pricing) {
		return pricing, nil
	}

	endpoint := c.baseURL + "/slot-pricing"
	if err := c.doGet(ctx, endpoint, &pricing); err != nil {
		return nil, &FetchError{Message: "could not load slot pricing", Err: err}
	}

	c.writeCache(ctx, pricingCacheKey, pricing)
	return pricing, nil
}

// CreatePricing adds a pricing tier (admin only).
func (c *Client) CreatePricing(ctx context.Context, p *models.SlotPricing) (*models.SlotPricing, error) {
	endpoint := c.baseURL + "/slot-pricing"

	var created models.SlotPricing
	if err := c.doJSON(ctx, "POST", endpoint, p, &created); err != nil {
		return nil, fmt.Errorf("create pricing: %w", err)
	}
	c.dropCache(ctx, pricingCacheKey)
	return &created, nil
}

// UpdatePricing rewrites a pricing tier (admin only).
func (c *Client) UpdatePricing(ctx context.Context, p *models.SlotPricing) (*models.SlotPricing, error) {
	endpoint := fmt.Sprintf("%s/slot-pricing/%d", c.baseURL, p.ID)

	var updated models.SlotPricing
	if err := c.doJSON(ctx, "PUT", endpoint, p, &updated); err != nil {
		return nil, fmt.Errorf("update pricing %d: %w", p.ID, err)
	}
	c.dropCache(ctx, pricingCacheKey)
	return &updated, nil
}

// DeletePricing removes a pricing tier (admin only).
func (c *Client) DeletePricing(ctx context.Context, id int64) error {
	endpoint := fmt.Sprintf("%s/slot-pricing/%d", c.baseURL, id)
	if err := c.doDelete(ctx, endpoint); err != nil {
		return fmt.Errorf("delete pricing %d: %w", id, err)
	}
	c.dropCache(ctx, pricingCacheKey)
	return nil
}
