package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/naveenspark/vendora/pkg/domain"
)

// BusinessParams filters GET /businesses.
type BusinessParams struct {
	Search   string `url:"search,omitempty"`
	Category string `url:"category,omitempty"`
	Active   *bool  `url:"isActive,omitempty"`
	Pagination
}

// BusinessInput is the body of business create and update calls.
type BusinessInput struct {
	Name        string `json:"name" validate:"required,min=2,max=120"`
	Description string `json:"description,omitempty" validate:"max=1000"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	Phone       string `json:"phone,omitempty" validate:"omitempty,min=7,max=20"`
	Address     string `json:"address,omitempty" validate:"max=240"`
	Category    string `json:"category,omitempty" validate:"max=60"`
}

// ListBusinesses returns one page of businesses.
func (c *Client) ListBusinesses(ctx context.Context, token string, p BusinessParams) (*domain.PagedResult[domain.Business], error) {
	var raw json.RawMessage
	if err := c.get(ctx, token, "/businesses", p, &raw); err != nil {
		return nil, fmt.Errorf("api.ListBusinesses: %w", err)
	}
	return decodeList[domain.Business](raw, "businesses", p.Pagination), nil
}

// GetBusiness returns a single business.
func (c *Client) GetBusiness(ctx context.Context, token, id string) (*domain.Business, error) {
	if err := requireID(id); err != nil {
		return nil, fmt.Errorf("api.GetBusiness: %w", err)
	}
	var raw json.RawMessage
	if err := c.get(ctx, token, resource("/businesses", id), nil, &raw); err != nil {
		return nil, fmt.Errorf("api.GetBusiness: %w", err)
	}
	b, err := decodeOne[domain.Business](raw, "business")
	if err != nil {
		return nil, fmt.Errorf("api.GetBusiness: %w", err)
	}
	return b, nil
}

// CreateBusiness registers a business and returns it as stored.
func (c *Client) CreateBusiness(ctx context.Context, token string, in BusinessInput) (*domain.Business, error) {
	var raw json.RawMessage
	if err := c.send(ctx, "POST", token, "/businesses", in, &raw); err != nil {
		return nil, fmt.Errorf("api.CreateBusiness: %w", err)
	}
	b, err := decodeOne[domain.Business](raw, "business")
	if err != nil {
		return nil, fmt.Errorf("api.CreateBusiness: %w", err)
	}
	return b, nil
}

// UpdateBusiness replaces the editable fields of a business.
func (c *Client) UpdateBusiness(ctx context.Context, token, id string, in BusinessInput) (*domain.Business, error) {
	if err := requireID(id); err != nil {
		return nil, fmt.Errorf("api.UpdateBusiness: %w", err)
	}
	var raw json.RawMessage
	if err := c.send(ctx, "PUT", token, resource("/businesses", id), in, &raw); err != nil {
		return nil, fmt.Errorf("api.UpdateBusiness: %w", err)
	}
	b, err := decodeOne[domain.Business](raw, "business")
	if err != nil {
		return nil, fmt.Errorf("api.UpdateBusiness: %w", err)
	}
	return b, nil
}

// DeleteBusiness removes a business.
func (c *Client) DeleteBusiness(ctx context.Context, token, id string) error {
	if err := requireID(id); err != nil {
		return fmt.Errorf("api.DeleteBusiness: %w", err)
	}
	if err := c.send(ctx, "DELETE", token, resource("/businesses", id), nil, nil); err != nil {
		return fmt.Errorf("api.DeleteBusiness: %w", err)
	}
	return nil
}
