package repo

import (
	"context"
	"strings"

	"github.com/kitchenequip/equipment-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Base provides a shared foundation for domain repositories. Every query it
// hands out excludes soft-deleted rows unless Unscoped is used explicitly.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Unscoped returns a connection that also sees soft-deleted rows. Use it only
// for idempotency checks and admin views.
func (b Base) Unscoped(ctx context.Context) *gorm.DB {
	return b.DB(ctx).Unscoped()
}

// Search returns a scope matching term case-insensitively against any of the
// given column expressions. An empty term leaves the query untouched.
func Search(term string, columns ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term = strings.TrimSpace(term)
		if term == "" || len(columns) == 0 {
			return db
		}
		pattern := "%" + escapeLike(strings.ToLower(term)) + "%"

		clauses := make([]string, 0, len(columns))
		args := make([]any, 0, len(columns))
		for _, col := range columns {
			clauses = append(clauses, "LOWER("+col+") LIKE ? ESCAPE '\\'")
			args = append(args, pattern)
		}
		return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}

// SortSpec maps caller-facing sort field names to column expressions.
type SortSpec struct {
	Columns  map[string]string
	Fallback string
	// FallbackDesc orders the fallback column descending.
	FallbackDesc bool
}

// OrderClause resolves field against the whitelist. Unknown fields use the
// fallback column and direction. Ties are broken by the fallback column so
// pages stay stable.
func (s SortSpec) OrderClause(field string, desc bool) string {
	col, ok := s.lookup(field)
	if !ok {
		if s.FallbackDesc {
			return s.Fallback + " DESC"
		}
		return s.Fallback + " ASC"
	}
	dir := " ASC"
	if desc {
		dir = " DESC"
	}
	if col == s.Fallback {
		return col + dir
	}
	return col + dir + ", " + s.Fallback + " ASC"
}

func (s SortSpec) lookup(field string) (string, bool) {
	field = strings.TrimSpace(field)
	if field == "" {
		return "", false
	}
	for key, col := range s.Columns {
		if strings.EqualFold(key, field) {
			return col, true
		}
	}
	return "", false
}

// FindPage counts the rows matched by query, clamps the requested page and
// loads that page ordered by order.
func FindPage[T any](query *gorm.DB, params pagination.Params, order string) (pagination.Page[T], error) {
	q := query.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return pagination.Page[T]{}, err
	}

	page, size, totalPages, offset := params.Window(total)
	items := make([]T, 0, size)
	if total > 0 {
		if err := q.Order(order).Offset(offset).Limit(size).Find(&items).Error; err != nil {
			return pagination.Page[T]{}, err
		}
	}

	return pagination.Page[T]{
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: totalPages,
		Items:      items,
	}, nil
}
