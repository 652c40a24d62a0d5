package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func newEcho(buf *bytes.Buffer, opts ...LoggerOpt) *echo.Echo {
	l := slog.New(slog.NewTextHandler(buf, nil))
	e := echo.New()
	e.Use(Logger(append([]LoggerOpt{WithLogger(l)}, opts...)...))
	e.GET("/ok", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/fail", func(c echo.Context) error { return echo.NewHTTPError(http.StatusBadRequest, "bad pair") })
	e.GET("/health", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	return e
}

func TestLogger(t *testing.T) {
	t.Run("logs requests", func(t *testing.T) {
		var buf bytes.Buffer
		e := newEcho(&buf)

		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
		assert.Contains(t, buf.String(), "msg=REQUEST")
		assert.Contains(t, buf.String(), "method=GET")
		assert.Contains(t, buf.String(), "status=200")
	})

	t.Run("logs errors", func(t *testing.T) {
		var buf bytes.Buffer
		e := newEcho(&buf)

		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, buf.String(), "msg=REQUEST_ERROR")
		assert.Contains(t, buf.String(), "bad pair")
	})

	t.Run("skips paths", func(t *testing.T) {
		var buf bytes.Buffer
		e := newEcho(&buf, WithSkipPaths("/health"))

		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Empty(t, buf.String())
	})
}
