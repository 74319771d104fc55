package pagination

const (
	// DefaultPageSize is the standard page size when none is provided.
	DefaultPageSize = 25
	// MaxPageSize caps how many rows any paged query can request.
	MaxPageSize = 100
)

// Params holds page-number pagination inputs from controllers or services.
type Params struct {
	Page     int
	PageSize int
}

// Page is the paged result envelope returned by listing operations.
type Page[T any] struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	Items      []T   `json:"items"`
}

// NormalizePageSize enforces the default and maximum page sizes.
func NormalizePageSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// Normalize clamps page to >= 1 and the page size to [1, MaxPageSize].
func (p Params) Normalize() Params {
	page := p.Page
	if page < 1 {
		page = 1
	}
	return Params{Page: page, PageSize: NormalizePageSize(p.PageSize)}
}

// Window resolves the page to read given the total row count. A total of zero
// yields one (empty) page; a page past the end is clamped to the last page.
func (p Params) Window(total int64) (page, pageSize, totalPages, offset int) {
	n := p.Normalize()
	pageSize = n.PageSize

	totalPages = 1
	if total > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}

	page = n.Page
	if page > totalPages {
		page = totalPages
	}
	return page, pageSize, totalPages, (page - 1) * pageSize
}

// Empty returns a page with no items for the normalized params.
func Empty[T any](p Params) Page[T] {
	n := p.Normalize()
	return Page[T]{
		Page:       1,
		PageSize:   n.PageSize,
		Total:      0,
		TotalPages: 1,
		Items:      []T{},
	}
}

// Map converts the items of a page, keeping its counters.
func Map[T, U any](in Page[T], fn func(T) U) Page[U] {
	out := Page[U]{
		Page:       in.Page,
		PageSize:   in.PageSize,
		Total:      in.Total,
		TotalPages: in.TotalPages,
		Items:      make([]U, 0, len(in.Items)),
	}
	for _, item := range in.Items {
		out.Items = append(out.Items, fn(item))
	}
	return out
}
