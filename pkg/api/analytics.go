package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/naveenspark/vendora/pkg/domain"
)

// AnalyticsParams scopes GET /analytics/dashboard.
type AnalyticsParams struct {
	BusinessID string    `url:"businessId,omitempty"`
	StartDate  time.Time `url:"startDate,omitempty" layout:"2006-01-02"`
	EndDate    time.Time `url:"endDate,omitempty" layout:"2006-01-02"`
}

// Dashboard returns the aggregate figures of the dashboard screen.
func (c *Client) Dashboard(ctx context.Context, token string, p AnalyticsParams) (*domain.DashboardStats, error) {
	var raw json.RawMessage
	if err := c.get(ctx, token, "/analytics/dashboard", p, &raw); err != nil {
		return nil, fmt.Errorf("api.Dashboard: %w", err)
	}
	s, err := decodeOne[domain.DashboardStats](raw, "stats")
	if err != nil {
		return nil, fmt.Errorf("api.Dashboard: %w", err)
	}
	if s.OrdersByStatus == nil {
		s.OrdersByStatus = map[string]int{}
	}
	return s, nil
}
