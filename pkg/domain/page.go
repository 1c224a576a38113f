package domain

// PagedResult is one page of a list endpoint.
// Normalize keeps len(Items) <= Limit and Total >= len(Items).
type PagedResult[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Normalize enforces the page invariants and never leaves Items nil.
func (p *PagedResult[T]) Normalize() {
	if p.Items == nil {
		p.Items = make([]T, 0)
	}
	if p.Limit > 0 && len(p.Items) > p.Limit {
		p.Items = p.Items[:p.Limit]
	}
	if p.Total < len(p.Items) {
		p.Total = len(p.Items)
	}
}

// Pages returns the number of pages implied by Total and Limit (at least 1).
func (p PagedResult[T]) Pages() int {
	if p.Limit <= 0 || p.Total <= 0 {
		return 1
	}
	return (p.Total + p.Limit - 1) / p.Limit
}

// HasNext reports whether a page after the current one exists.
func (p PagedResult[T]) HasNext() bool {
	page := p.Page
	if page < 1 {
		page = 1
	}
	return page < p.Pages()
}
