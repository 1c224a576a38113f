package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/naveenspark/vendora/pkg/client"
	"github.com/naveenspark/vendora/pkg/domain"
)

// OrderParams filters GET /orders and GET /orders/export.
type OrderParams struct {
	Status     domain.OrderStatus `url:"status,omitempty"`
	BusinessID string             `url:"businessId,omitempty"`
	Search     string             `url:"search,omitempty"`
	StartDate  time.Time          `url:"startDate,omitempty" layout:"2006-01-02"`
	EndDate    time.Time          `url:"endDate,omitempty" layout:"2006-01-02"`
	Pagination
}

// ListOrders returns one page of orders.
func (c *Client) ListOrders(ctx context.Context, token string, p OrderParams) (*domain.PagedResult[domain.Order], error) {
	var raw json.RawMessage
	if err := c.get(ctx, token, "/orders", p, &raw); err != nil {
		return nil, fmt.Errorf("api.ListOrders: %w", err)
	}
	return decodeList[domain.Order](raw, "orders", p.Pagination), nil
}

// GetOrder returns a single order with its items.
func (c *Client) GetOrder(ctx context.Context, token, id string) (*domain.Order, error) {
	if err := requireID(id); err != nil {
		return nil, fmt.Errorf("api.GetOrder: %w", err)
	}
	var raw json.RawMessage
	if err := c.get(ctx, token, resource("/orders", id), nil, &raw); err != nil {
		return nil, fmt.Errorf("api.GetOrder: %w", err)
	}
	o, err := decodeOne[domain.Order](raw, "order")
	if err != nil {
		return nil, fmt.Errorf("api.GetOrder: %w", err)
	}
	return o, nil
}

// UpdateOrderStatus moves an order to status and returns the updated order.
func (c *Client) UpdateOrderStatus(ctx context.Context, token, id string, status domain.OrderStatus) (*domain.Order, error) {
	if err := requireID(id); err != nil {
		return nil, fmt.Errorf("api.UpdateOrderStatus: %w", err)
	}
	if !domain.ValidOrderStatus(string(status)) {
		return nil, fmt.Errorf("api.UpdateOrderStatus: %w", &client.APIError{
			Kind:    client.KindRequest,
			Message: fmt.Sprintf("Unknown order status %q.", status),
		})
	}
	body := map[string]domain.OrderStatus{"status": status}
	var raw json.RawMessage
	if err := c.send(ctx, "PATCH", token, resource("/orders", id)+"/status", body, &raw); err != nil {
		return nil, fmt.Errorf("api.UpdateOrderStatus: %w", err)
	}
	o, err := decodeOne[domain.Order](raw, "order")
	if err != nil {
		return nil, fmt.Errorf("api.UpdateOrderStatus: %w", err)
	}
	return o, nil
}

// ExportOrders downloads the orders matching p as a file (CSV).
func (c *Client) ExportOrders(ctx context.Context, token string, p OrderParams) (*client.Blob, error) {
	p.Pagination = Pagination{}
	blob, err := c.t.Raw(ctx, client.Request{Method: "GET", Path: "/orders/export", Query: p, Token: token})
	if err != nil {
		return nil, fmt.Errorf("api.ExportOrders: %w", err)
	}
	if blob.Filename == "" {
		blob.Filename = "orders-" + time.Now().Format("2006-01-02") + ".csv"
	}
	return blob, nil
}
