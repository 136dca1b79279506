package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/emirhangull/Train-DB-APP/internal/api"
)

// NewTestEcho builds an Echo instance wired the way the server wires it,
// for handler tests.
func NewTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = api.NewValidator()
	return e
}
