// Package http provides the HTTP server implementation for the travel assistant.
package http

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/phuy1125/vin2/internal/auth"
	"github.com/phuy1125/vin2/internal/service"
	"github.com/phuy1125/vin2/internal/tools"
	v1 "github.com/phuy1125/vin2/internal/transport/http/v1"
)

// NewServer creates and configures the public HTTP server: the conversation,
// itinerary and tool APIs, plus the websocket endpoint.
func NewServer(svc *service.Service, registry *tools.Registry, verifier *auth.Verifier, logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Handlers
	v1Handler := v1.NewHandler(svc, registry, logger)

	// Register Routes
	v1Handler.RegisterRoutes(e, auth.Middleware(verifier))

	return e
}
