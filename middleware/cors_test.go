package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	e := echo.New()
	next := func(c echo.Context) error {
		return c.String(http.StatusOK, "handled")
	}

	t.Run("PreflightReturns200", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/availability", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		assert.NoError(t, CORS(nil, http.MethodGet)(next)(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Body.String())
		assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
		assert.Equal(t, "GET, OPTIONS", rec.Header().Get(echo.HeaderAccessControlAllowMethods))
		assert.Equal(t, "Content-Type, Authorization", rec.Header().Get(echo.HeaderAccessControlAllowHeaders))
	})

	t.Run("HeadersOnActualRequest", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/admin/availability", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		assert.NoError(t, CORS([]string{"*"}, http.MethodPut, http.MethodDelete)(next)(c))
		assert.Equal(t, "handled", rec.Body.String())
		assert.Equal(t, "PUT, DELETE, OPTIONS", rec.Header().Get(echo.HeaderAccessControlAllowMethods))
	})

	t.Run("ExplicitOrigins", func(t *testing.T) {
		mw := CORS([]string{"https://studio.example.com"}, http.MethodGet)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderOrigin, "https://studio.example.com")
		rec := httptest.NewRecorder()
		assert.NoError(t, mw(next)(e.NewContext(req, rec)))
		assert.Equal(t, "https://studio.example.com", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))

		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderOrigin, "https://evil.example.com")
		rec = httptest.NewRecorder()
		assert.NoError(t, mw(next)(e.NewContext(req, rec)))
		assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	})
}
