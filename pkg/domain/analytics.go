package domain

// DashboardStats is the payload of /analytics/dashboard.
type DashboardStats struct {
	TotalOrders     int            `json:"totalOrders"`
	TotalRevenue    float64        `json:"totalRevenue"`
	TotalBusinesses int            `json:"totalBusinesses"`
	TotalUsers      int            `json:"totalUsers"`
	ActiveUsers     int            `json:"activeUsers"`
	OrdersByStatus  map[string]int `json:"ordersByStatus,omitempty"`
	RevenueByDay    []DailyRevenue `json:"revenueByDay,omitempty"`
	TopBusinesses   []BusinessRank `json:"topBusinesses,omitempty"`
}

// DailyRevenue is one point of the revenue chart.
type DailyRevenue struct {
	Date    string  `json:"date"` // YYYY-MM-DD
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

// BusinessRank is a business ordered by revenue in the period.
type BusinessRank struct {
	BusinessID string  `json:"businessId"`
	Name       string  `json:"name"`
	Revenue    float64 `json:"revenue"`
	Orders     int     `json:"orders"`
}
