package server_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/server"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingHandler struct{}

func (pingHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	e.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	})
	e.GET("/boom", func(c echo.Context) error {
		panic("boom")
	})
}

func testConfig() config.Config {
	return config.Config{
		Port:           "0",
		LogLevel:       "error",
		ServiceName:    "storefront-test",
		RequestTimeout: time.Second,
	}
}

func TestNew_Healthz(t *testing.T) {
	e := server.New(testConfig())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestNew_RegistersHandlers(t *testing.T) {
	e := server.New(testConfig(), pingHandler{})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestNew_RecoversPanics(t *testing.T) {
	e := server.New(testConfig(), pingHandler{})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, log.DEBUG, server.LogLevel("debug"))
	assert.Equal(t, log.INFO, server.LogLevel("info"))
	assert.Equal(t, log.WARN, server.LogLevel("warn"))
	assert.Equal(t, log.ERROR, server.LogLevel("error"))
	assert.Equal(t, log.INFO, server.LogLevel(""))
}
