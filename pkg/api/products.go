package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/naveenspark/vendora/pkg/client"
	"github.com/naveenspark/vendora/pkg/domain"
)

// ProductParams filters GET /products.
type ProductParams struct {
	BusinessID string `url:"businessId,omitempty"`
	SubgroupID string `url:"subgroupId,omitempty"`
	Category   string `url:"category,omitempty"`
	Search     string `url:"search,omitempty"`
	Pagination
}

// ProductInput is the body of product create and update calls.
type ProductInput struct {
	Name        string  `json:"name" validate:"required,min=2,max=120"`
	Description string  `json:"description,omitempty" validate:"max=1000"`
	Price       float64 `json:"price" validate:"gte=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	Category    string  `json:"category,omitempty"`
	BusinessID  string  `json:"businessId" validate:"required"`
	SubgroupID  string  `json:"subgroupId,omitempty"`
	Available   bool    `json:"isAvailable"`
}

func (in ProductInput) fields() map[string]string {
	f := map[string]string{
		"name":        in.Name,
		"price":       strconv.FormatFloat(in.Price, 'f', -1, 64),
		"stock":       strconv.Itoa(in.Stock),
		"businessId":  in.BusinessID,
		"isAvailable": strconv.FormatBool(in.Available),
	}
	for k, v := range map[string]string{
		"description": in.Description,
		"category":    in.Category,
		"subgroupId":  in.SubgroupID,
	} {
		if v != "" {
			f[k] = v
		}
	}
	return f
}

// ListProducts returns one page of products.
func (c *Client) ListProducts(ctx context.Context, token string, p ProductParams) (*domain.PagedResult[domain.Product], error) {
	var raw json.RawMessage
	if err := c.get(ctx, token, "/products", p, &raw); err != nil {
		return nil, fmt.Errorf("api.ListProducts: %w", err)
	}
	return decodeList[domain.Product](raw, "products", p.Pagination), nil
}

// GetProduct returns a single product.
func (c *Client) GetProduct(ctx context.Context, token, id string) (*domain.Product, error) {
	if err := requireID(id); err != nil {
		return nil, fmt.Errorf("api.GetProduct: %w", err)
	}
	var raw json.RawMessage
	if err := c.get(ctx, token, resource("/products", id), nil, &raw); err != nil {
		return nil, fmt.Errorf("api.GetProduct: %w", err)
	}
	p, err := decodeOne[domain.Product](raw, "product")
	if err != nil {
		return nil, fmt.Errorf("api.GetProduct: %w", err)
	}
	return p, nil
}

// CreateProduct creates a product. With an image the request is sent as
// multipart form data (field "image"), otherwise as JSON.
func (c *Client) CreateProduct(ctx context.Context, token string, in ProductInput, image *client.File) (*domain.Product, error) {
	var body any = in
	if image != nil {
		img := *image
		if img.Field == "" {
			img.Field = "image"
		}
		body = &client.Multipart{Fields: in.fields(), Files: []client.File{img}}
	}
	var raw json.RawMessage
	if err := c.send(ctx, "POST", token, "/products", body, &raw); err != nil {
		return nil, fmt.Errorf("api.CreateProduct: %w", err)
	}
	p, err := decodeOne[domain.Product](raw, "product")
	if err != nil {
		return nil, fmt.Errorf("api.CreateProduct: %w", err)
	}
	return p, nil
}

// UpdateProduct replaces the editable fields of a product.
func (c *Client) UpdateProduct(ctx context.Context, token, id string, in ProductInput) (*domain.Product, error) {
	if err := requireID(id); err != nil {
		return nil, fmt.Errorf("api.UpdateProduct: %w", err)
	}
	var raw json.RawMessage
	if err := c.send(ctx, "PUT", token, resource("/products", id), in, &raw); err != nil {
		return nil, fmt.Errorf("api.UpdateProduct: %w", err)
	}
	p, err := decodeOne[domain.Product](raw, "product")
	if err != nil {
		return nil, fmt.Errorf("api.UpdateProduct: %w", err)
	}
	return p, nil
}

// DeleteProduct removes a product.
func (c *Client) DeleteProduct(ctx context.Context, token, id string) error {
	if err := requireID(id); err != nil {
		return fmt.Errorf("api.DeleteProduct: %w", err)
	}
	if err := c.send(ctx, "DELETE", token, resource("/products", id), nil, nil); err != nil {
		return fmt.Errorf("api.DeleteProduct: %w", err)
	}
	return nil
}
