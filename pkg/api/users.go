package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/naveenspark/vendora/pkg/domain"
)

// UserParams filters GET /users.
type UserParams struct {
	Role   string `url:"role,omitempty"`
	Search string `url:"search,omitempty"`
	Pagination
}

// ListUsers returns one page of platform accounts.
func (c *Client) ListUsers(ctx context.Context, token string, p UserParams) (*domain.PagedResult[domain.User], error) {
	var raw json.RawMessage
	if err := c.get(ctx, token, "/users", p, &raw); err != nil {
		return nil, fmt.Errorf("api.ListUsers: %w", err)
	}
	return decodeList[domain.User](raw, "users", p.Pagination), nil
}

// GetUser returns a single account.
func (c *Client) GetUser(ctx context.Context, token, id string) (*domain.User, error) {
	if err := requireID(id); err != nil {
		return nil, fmt.Errorf("api.GetUser: %w", err)
	}
	var raw json.RawMessage
	if err := c.get(ctx, token, resource("/users", id), nil, &raw); err != nil {
		return nil, fmt.Errorf("api.GetUser: %w", err)
	}
	u, err := decodeOne[domain.User](raw, "user")
	if err != nil {
		return nil, fmt.Errorf("api.GetUser: %w", err)
	}
	return u, nil
}
