package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/naveenspark/vendora/pkg/domain"
)

// MealParams filters GET /meals.
type MealParams struct {
	BusinessID string `url:"businessId,omitempty"`
	SubgroupID string `url:"subgroupId,omitempty"`
	Search     string `url:"search,omitempty"`
	Pagination
}

// SubgroupParams filters GET /subgroups.
type SubgroupParams struct {
	BusinessID string `url:"businessId,omitempty"`
	Pagination
}

// MealInput is the body of meal create and update calls.
type MealInput struct {
	Name        string  `json:"name" validate:"required,min=2,max=120"`
	Description string  `json:"description,omitempty" validate:"max=1000"`
	Price       float64 `json:"price" validate:"gte=0"`
	BusinessID  string  `json:"businessId" validate:"required"`
	SubgroupID  string  `json:"subgroupId,omitempty"`
	PrepMinutes int     `json:"preparationTime,omitempty" validate:"gte=0"`
	Available   bool    `json:"isAvailable"`
}

// SubgroupInput is the body of subgroup create and update calls.
type SubgroupInput struct {
	Name       string `json:"name" validate:"required,min=2,max=60"`
	BusinessID string `json:"businessId" validate:"required"`
	Position   int    `json:"position" validate:"gte=0"`
}

// ListMeals returns one page of meals.
func (c *Client) ListMeals(ctx context.Context, token string, p MealParams) (*domain.PagedResult[domain.Meal], error) {
	var raw json.RawMessage
	if err := c.get(ctx, token, "/meals", p, &raw); err != nil {
		return nil, fmt.Errorf("api.ListMeals: %w", err)
	}
	return decodeList[domain.Meal](raw, "meals", p.Pagination), nil
}

// GetMeal returns a single meal.
func (c *Client) GetMeal(ctx context.Context, token, id string) (*domain.Meal, error) {
	if err := requireID(id); err != nil {
		return nil, fmt.Errorf("api.GetMeal: %w", err)
	}
	var raw json.RawMessage
	if err := c.get(ctx, token, resource("/meals", id), nil, &raw); err != nil {
		return nil, fmt.Errorf("api.GetMeal: %w", err)
	}
	m, err := decodeOne[domain.Meal](raw, "meal")
	if err != nil {
		return nil, fmt.Errorf("api.GetMeal: %w", err)
	}
	return m, nil
}

// ListSubgroups returns the menu subgroups, optionally of one business.
func (c *Client) ListSubgroups(ctx context.Context, token string, p SubgroupParams) (*domain.PagedResult[domain.Subgroup], error) {
	var raw json.RawMessage
	if err := c.get(ctx, token, "/subgroups", p, &raw); err != nil {
		return nil, fmt.Errorf("api.ListSubgroups: %w", err)
	}
	return decodeList[domain.Subgroup](raw, "subgroups", p.Pagination), nil
}

// CreateMeal creates a meal.
func (c *Client) CreateMeal(ctx context.Context, token string, in MealInput) (*domain.Meal, error) {
	var raw json.RawMessage
	if err := c.send(ctx, "POST", token, "/meals", in, &raw); err != nil {
		return nil, fmt.Errorf("api.CreateMeal: %w", err)
	}
	m, err := decodeOne[domain.Meal](raw, "meal")
	if err != nil {
		return nil, fmt.Errorf("api.CreateMeal: %w", err)
	}
	return m, nil
}

// UpdateMeal replaces the editable fields of a meal.
func (c *Client) UpdateMeal(ctx context.Context, token, id string, in MealInput) (*domain.Meal, error) {
	if err := requireID(id); err != nil {
		return nil, fmt.Errorf("api.UpdateMeal: %w", err)
	}
	var raw json.RawMessage
	if err := c.send(ctx, "PUT", token, resource("/meals", id), in, &raw); err != nil {
		return nil, fmt.Errorf("api.UpdateMeal: %w", err)
	}
	m, err := decodeOne[domain.Meal](raw, "meal")
	if err != nil {
		return nil, fmt.Errorf("api.UpdateMeal: %w", err)
	}
	return m, nil
}

// DeleteMeal deletes a meal.
func (c *Client) DeleteMeal(ctx context.Context, token, id string) error {
	if err := requireID(id); err != nil {
		return fmt.Errorf("api.DeleteMeal: %w", err)
	}
	if err := c.send(ctx, "DELETE", token, resource("/meals", id), nil, nil); err != nil {
		return fmt.Errorf("api.DeleteMeal: %w", err)
	}
	return nil
}

// GetSubgroup returns a single subgroup.
func (c *Client) GetSubgroup(ctx context.Context, token, id string) (*domain.Subgroup, error) {
	if err := requireID(id); err != nil {
		return nil, fmt.Errorf("api.GetSubgroup: %w", err)
	}
	var raw json.RawMessage
	if err := c.get(ctx, token, resource("/subgroups", id), nil, &raw); err != nil {
		return nil, fmt.Errorf("api.GetSubgroup: %w", err)
	}
	g, err := decodeOne[domain.Subgroup](raw, "subgroup")
	if err != nil {
		return nil, fmt.Errorf("api.GetSubgroup: %w", err)
	}
	return g, nil
}

// CreateSubgroup creates a menu subgroup.
func (c *Client) CreateSubgroup(ctx context.Context, token string, in SubgroupInput) (*domain.Subgroup, error) {
	var raw json.RawMessage
	if err := c.send(ctx, "POST", token, "/subgroups", in, &raw); err != nil {
		return nil, fmt.Errorf("api.CreateSubgroup: %w", err)
	}
	g, err := decodeOne[domain.Subgroup](raw, "subgroup")
	if err != nil {
		return nil, fmt.Errorf("api.CreateSubgroup: %w", err)
	}
	return g, nil
}

// UpdateSubgroup renames or reorders a subgroup.
func (c *Client) UpdateSubgroup(ctx context.Context, token, id string, in SubgroupInput) (*domain.Subgroup, error) {
	if err := requireID(id); err != nil {
		return nil, fmt.Errorf("api.UpdateSubgroup: %w", err)
	}
	var raw json.RawMessage
	if err := c.send(ctx, "PUT", token, resource("/subgroups", id), in, &raw); err != nil {
		return nil, fmt.Errorf("api.UpdateSubgroup: %w", err)
	}
	g, err := decodeOne[domain.Subgroup](raw, "subgroup")
	if err != nil {
		return nil, fmt.Errorf("api.UpdateSubgroup: %w", err)
	}
	return g, nil
}

// DeleteSubgroup deletes a subgroup.
func (c *Client) DeleteSubgroup(ctx context.Context, token, id string) error {
	if err := requireID(id); err != nil {
		return fmt.Errorf("api.DeleteSubgroup: %w", err)
	}
	if err := c.send(ctx, "DELETE", token, resource("/subgroups", id), nil, nil); err != nil {
		return fmt.Errorf("api.DeleteSubgroup: %w", err)
	}
	return nil
}
