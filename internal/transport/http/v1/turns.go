package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/phuy1125/vin2/internal/domain"
)

// PostTurn processes one conversational turn.
func (h *Handler) PostTurn(c echo.Context) error {
	var req domain.TurnRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	userID, err := userFor(c, req.UserID)
	if err != nil {
		return h.writeError(c, err)
	}
	req.UserID = userID

	resp, err := h.service.HandleTurn(c.Request().Context(), c.Param("session_id"), req)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetSession returns the stored conversation state.
func (h *Handler) GetSession(c echo.Context) error {
	userID, err := userFor(c, c.QueryParam("user_id"))
	if err != nil {
		return h.writeError(c, err)
	}
	state, err := h.service.GetSession(c.Request().Context(), c.Param("session_id"), userID)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, state)
}

// DeleteSession forgets a conversation.
func (h *Handler) DeleteSession(c echo.Context) error {
	userID, err := userFor(c, c.QueryParam("user_id"))
	if err != nil {
		return h.writeError(c, err)
	}
	if err := h.service.DeleteSession(c.Request().Context(), c.Param("session_id"), userID); err != nil {
		return h.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
