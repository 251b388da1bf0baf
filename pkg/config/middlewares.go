package config

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/anonto42/gamematch/backend/pkg/logger"
)

// SetupMiddleware installs the global middleware chain.
func SetupMiddleware(e *echo.Echo) {
	e.Use(logger.EchoMiddleware(logger.L()))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit("8M"))
}
