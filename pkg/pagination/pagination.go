package pagination

import "gorm.io/gorm"

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many rows any page query can request.
	MaxLimit = 100
)

// Params holds page pagination inputs from controllers or services.
type Params struct {
	Page  int
	Limit int
}

// Page is the envelope returned by every paginated listing.
type Page[T any] struct {
	Data        []T   `json:"data"`
	ItemCount   int64 `json:"itemCount"`
	PerPage     int   `json:"perPage"`
	CurrentPage int   `json:"currentPage"`
	PageCount   int   `json:"pageCount"`
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Normalize returns params with a page >= 1 and a bounded limit.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	p.Limit = NormalizeLimit(p.Limit)
	return p
}

// Offset returns the row offset for the normalized page.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// Scope applies LIMIT/OFFSET to a gorm query.
func (p Params) Scope(tx *gorm.DB) *gorm.DB {
	n := p.Normalize()
	return tx.Limit(n.Limit).Offset(p.Offset())
}

// NewPage builds the envelope from a page of rows and the total match count.
func NewPage[T any](rows []T, total int64, params Params) Page[T] {
	n := params.Normalize()
	if rows == nil {
		rows = []T{}
	}
	pageCount := int((total + int64(n.Limit) - 1) / int64(n.Limit))
	return Page[T]{
		Data:        rows,
		ItemCount:   total,
		PerPage:     n.Limit,
		CurrentPage: n.Page,
		PageCount:   pageCount,
	}
}

// Map converts the rows of a page while keeping its counters.
func Map[T, U any](page Page[T], fn func(T) U) Page[U] {
	out := make([]U, 0, len(page.Data))
	for _, row := range page.Data {
		out = append(out, fn(row))
	}
	return Page[U]{
		Data:        out,
		ItemCount:   page.ItemCount,
		PerPage:     page.PerPage,
		CurrentPage: page.CurrentPage,
		PageCount:   page.PageCount,
	}
}
