package shared

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the access contract every aggregate repository embeds.
type Repository[T any] interface {
	FindByID(ctx context.Context, id uuid.UUID) (*T, error)
	FindAll(ctx context.Context, filter Filter) ([]T, error)
	Save(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter Filter) (int64, error)
}

// StoreRepository extends Repository for aggregates that belong to a
// single store, such as stock levels, sales and cash sessions.
type StoreRepository[T any] interface {
	Repository[T]
	FindAllForStore(ctx context.Context, storeID uuid.UUID, filter Filter) ([]T, error)
	CountForStore(ctx context.Context, storeID uuid.UUID, filter Filter) (int64, error)
}

// Filter carries pagination, ordering, free-text search and
// column-equality filters from the HTTP layer down to queries.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]any
}

// DefaultFilter is the first page of twenty, newest first.
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: 20,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  make(map[string]any),
	}
}

// Paginated is a page of results plus the totals list endpoints echo
// back to the client.
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginated wraps items with page arithmetic.
func NewPaginated[T any](items []T, total int64, page, pageSize int) Paginated[T] {
	pages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		pages++
	}
	return Paginated[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: pages,
	}
}
