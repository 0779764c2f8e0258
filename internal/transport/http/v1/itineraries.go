package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/phuy1125/vin2/internal/domain"
)

// ListItineraries lists the itineraries of a user.
func (h *Handler) ListItineraries(c echo.Context) error {
	userID, err := userFor(c, c.QueryParam("user_id"))
	if err != nil {
		return h.writeError(c, err)
	}
	list, err := h.service.ListItineraries(c.Request().Context(), userID)
	if err != nil {
		return h.writeError(c, err)
	}
	if list == nil {
		list = []domain.ItinerarySummary{}
	}
	return c.JSON(http.StatusOK, domain.ListItinerariesResponse{Itineraries: list})
}

// GetItinerary returns one itinerary with its total cost.
func (h *Handler) GetItinerary(c echo.Context) error {
	userID, err := userFor(c, c.QueryParam("user_id"))
	if err != nil {
		return h.writeError(c, err)
	}
	it, err := h.service.GetItinerary(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, domain.ItineraryResponse{Itinerary: it, TotalCost: domain.TotalCost(it)})
}

// DeleteItinerary removes an itinerary owned by the caller.
func (h *Handler) DeleteItinerary(c echo.Context) error {
	userID, err := userFor(c, c.QueryParam("user_id"))
	if err != nil {
		return h.writeError(c, err)
	}
	if err := h.service.DeleteItinerary(c.Request().Context(), c.Param("id"), userID); err != nil {
		return h.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
