package middleware

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsBasicAuth_NoCredentials(t *testing.T) {
	os.Unsetenv("METRICS_USER")
	os.Unsetenv("METRICS_PASSWORD")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := MetricsBasicAuth()(func(c echo.Context) error {
		return c.String(http.StatusOK, "metrics")
	})

	err := handler(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "metrics", rec.Body.String())
}

func TestMetricsBasicAuth_ValidCredentials(t *testing.T) {
	os.Setenv("METRICS_USER", "testuser")
	os.Setenv("METRICS_PASSWORD", "testpass")
	defer func() {
		os.Unsetenv("METRICS_USER")
		os.Unsetenv("METRICS_PASSWORD")
	}()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	auth := base64.StdEncoding.EncodeToString([]byte("testuser:testpass"))
	req.Header.Set("Authorization", "Basic "+auth)

	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := MetricsBasicAuth()(func(c echo.Context) error {
		return c.String(http.StatusOK, "metrics")
	})

	err := handler(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsBasicAuth_InvalidCredentials(t *testing.T) {
	os.Setenv("METRICS_USER", "testuser")
	os.Setenv("METRICS_PASSWORD", "testpass")
	defer func() {
		os.Unsetenv("METRICS_USER")
		os.Unsetenv("METRICS_PASSWORD")
	}()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	auth := base64.StdEncoding.EncodeToString([]byte("wronguser:wrongpass"))
	req.Header.Set("Authorization", "Basic "+auth)

	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := MetricsBasicAuth()(func(c echo.Context) error {
		return c.String(http.StatusOK, "metrics")
	})

	err := handler(c)
	if err != nil {
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	} else {
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
}

func TestMetricsBasicAuth_NoAuthHeader(t *testing.T) {
	os.Setenv("METRICS_USER", "testuser")
	os.Setenv("METRICS_PASSWORD", "testpass")
	defer func() {
		os.Unsetenv("METRICS_USER")
		os.Unsetenv("METRICS_PASSWORD")
	}()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := MetricsBasicAuth()(func(c echo.Context) error {
		return c.String(http.StatusOK, "metrics")
	})

	err := handler(c)
	if err != nil {
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	}
}
