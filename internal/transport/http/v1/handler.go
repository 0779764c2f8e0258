// Package v1 provides the public HTTP handlers of the travel assistant.
package v1

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/phuy1125/vin2/internal/auth"
	"github.com/phuy1125/vin2/internal/domain"
	"github.com/phuy1125/vin2/internal/service"
	"github.com/phuy1125/vin2/internal/tools"
)

// Handler handles HTTP requests.
type Handler struct {
	service  *service.Service
	registry *tools.Registry
	logger   *slog.Logger
}

// NewHandler creates a new handler.
func NewHandler(svc *service.Service, registry *tools.Registry, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service:  svc,
		registry: registry,
		logger:   logger,
	}
}

// RegisterRoutes registers the routes. Everything under /v1 passes through mw.
func (h *Handler) RegisterRoutes(e *echo.Echo, mw ...echo.MiddlewareFunc) {
	e.GET("/health", h.Health)

	g := e.Group("/v1", mw...)

	// Conversation API
	g.POST("/sessions/:session_id/turns", h.PostTurn)
	g.GET("/sessions/:session_id", h.GetSession)
	g.DELETE("/sessions/:session_id", h.DeleteSession)
	g.GET("/sessions/:session_id/ws", h.TurnSocket)

	// Itinerary API
	g.GET("/itineraries", h.ListItineraries)
	g.GET("/itineraries/:id", h.GetItinerary)
	g.DELETE("/itineraries/:id", h.DeleteItinerary)

	// Tool API
	g.GET("/tools", h.ListTools)
	g.POST("/tools/:tool_name/invoke", h.InvokeTool)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

// userFor resolves the acting user. With auth enabled the token subject wins
// and a different claimed id is forbidden; otherwise the claimed id is used.
func userFor(c echo.Context, claimed string) (string, error) {
	subject := auth.UserID(c)
	if subject == "" {
		return claimed, nil
	}
	if claimed != "" && claimed != subject {
		return "", domain.ErrForbidden
	}
	return subject, nil
}
