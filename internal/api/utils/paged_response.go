package utils

import (
	"paygate/internal/types"
)

// PagedResponse is the wire shape for a paginated API endpoint: the
// transformed items plus the page metadata the client needs to request
// the next page.
type PagedResponse[T any] struct {
	Items   []T  `json:"items"`
	Page    int  `json:"page" example:"1"`
	Limit   int  `json:"limit" example:"10"`
	Total   int  `json:"total" example:"42"`
	HasMore bool `json:"has_more"`
}

// NewPagedResponse builds a PagedResponse from a types.Page, applying
// transformFunc to each item (typically a domain type -> DTO conversion).
func NewPagedResponse[T any, R any](page *types.Page[T], transformFunc func(T) R) *PagedResponse[R] {
	items := make([]R, len(page.Items))
	for i, item := range page.Items {
		items[i] = transformFunc(item)
	}

	return &PagedResponse[R]{
		Items:   items,
		Page:    page.Page,
		Limit:   page.Limit,
		Total:   page.Total,
		HasMore: page.HasMore,
	}
}
