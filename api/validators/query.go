package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/kitchenequip/equipment-backend/pkg/errors"
)

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, key+" must be numeric.")
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, key+" is out of range.")
	}
	return value, nil
}

// ParseQueryInt64 reads an optional non-negative id filter.
func ParseQueryInt64(r *http.Request, key string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, key+" must be a positive id.")
	}
	return value, nil
}

func ParseQueryBool(r *http.Request, key string) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return false, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, key+" must be true or false.")
	}
	return value, nil
}

// ParsePathID reads a positive int64 chi route parameter.
func ParsePathID(r *http.Request, key string) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, key+" must be a positive id.")
	}
	return value, nil
}

// PageQuery holds the paging and search inputs shared by list endpoints.
type PageQuery struct {
	Page     int
	PageSize int
	Search   string
	OrderBy  string
	Desc     bool
}

// ParsePageQuery reads page, page_size, search, order_by and desc.
func ParsePageQuery(r *http.Request) (PageQuery, error) {
	page, err := ParseQueryInt(r, "page", 1, 1, 1_000_000)
	if err != nil {
		return PageQuery{}, err
	}
	size, err := ParseQueryInt(r, "page_size", 0, 0, 1_000)
	if err != nil {
		return PageQuery{}, err
	}
	desc, err := ParseQueryBool(r, "desc")
	if err != nil {
		return PageQuery{}, err
	}
	q := r.URL.Query()
	return PageQuery{
		Page:     page,
		PageSize: size,
		Search:   SanitizeString(q.Get("search"), maxSearchLen),
		OrderBy:  SanitizeString(q.Get("order_by"), maxSearchLen),
		Desc:     desc,
	}, nil
}
