package middleware

import (
	"crypto/subtle"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// MetricsBasicAuth protects the /metrics endpoint with Basic auth when
// METRICS_USER and METRICS_PASSWORD are both set. Without them the
// middleware is a pass-through, which suits local development.
func MetricsBasicAuth() echo.MiddlewareFunc {
	expectedUser := os.Getenv("METRICS_USER")
	expectedPass := os.Getenv("METRICS_PASSWORD")

	if expectedUser == "" || expectedPass == "" {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				return next(c)
			}
		}
	}

	return middleware.BasicAuth(func(username, password string, c echo.Context) (bool, error) {
		userMatch := subtle.ConstantTimeCompare([]byte(username), []byte(expectedUser)) == 1
		passMatch := subtle.ConstantTimeCompare([]byte(password), []byte(expectedPass)) == 1

		return userMatch && passMatch, nil
	})
}
