package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/kitchenequip/equipment-backend/pkg/errors"
)

type body struct {
	Name string `json:"name"`
}

func TestDecodeJSONBody(t *testing.T) {
	var dest body
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Oven"}`))
	require.NoError(t, DecodeJSONBody(req, &dest))
	assert.Equal(t, "Oven", dest.Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Oven","extra":1}`))
	err := DecodeJSONBody(req, &dest)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
	assert.Equal(t, msgInvalidBody, pkgerrors.As(err).Message())

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	err = DecodeJSONBody(req, &dest)
	assert.Equal(t, "Request body is required.", pkgerrors.As(err).Message())
}

func TestParsePageQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=3&page_size=10&search=%20oven%20&order_by=Name&desc=true", nil)
	q, err := ParsePageQuery(req)
	require.NoError(t, err)
	assert.Equal(t, PageQuery{Page: 3, PageSize: 10, Search: "oven", OrderBy: "Name", Desc: true}, q)

	q, err = ParsePageQuery(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, PageQuery{Page: 1}, q)

	_, err = ParsePageQuery(httptest.NewRequest(http.MethodGet, "/?page=abc", nil))
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

	_, err = ParsePageQuery(httptest.NewRequest(http.MethodGet, "/?desc=maybe", nil))
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestParsePathID(t *testing.T) {
	withParam := func(value string) *http.Request {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", value)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	id, err := ParsePathID(withParam("42"), "id")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "0", "-1", "x"} {
		_, err := ParsePathID(withParam(bad), "id")
		assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation), "value %q", bad)
	}
}

func TestParseQueryInt64(t *testing.T) {
	v, err := ParseQueryInt64(httptest.NewRequest(http.MethodGet, "/?site_id=7", nil), "site_id")
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)

	_, err = ParseQueryInt64(httptest.NewRequest(http.MethodGet, "/?site_id=-2", nil), "site_id")
	assert.Error(t, err)
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "abc", SanitizeString("  abcdef ", 3))
	assert.Equal(t, "abc", SanitizeString("abc", 0))
}

func TestDecodeOptionalJSONBody(t *testing.T) {
	var dest body
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	require.NoError(t, DecodeOptionalJSONBody(req, &dest))
	assert.Empty(t, dest.Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
	require.NoError(t, DecodeOptionalJSONBody(req, &dest))
	assert.Equal(t, "x", dest.Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	assert.Error(t, DecodeOptionalJSONBody(req, &dest))
}
