package v1

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/phuy1125/vin2/internal/auth"
	"github.com/phuy1125/vin2/internal/domain"
	"github.com/phuy1125/vin2/internal/tools"
)

// ListTools returns the capability catalogue.
func (h *Handler) ListTools(c echo.Context) error {
	return c.JSON(http.StatusOK, domain.ListToolsResponse{Tools: h.registry.Tools()})
}

// InvokeTool runs a capability directly. Capability failures are reported in
// the body with status 200; only an unknown tool or a bad body is an HTTP error.
func (h *Handler) InvokeTool(c echo.Context) error {
	toolName := domain.ToolName(c.Param("tool_name"))
	if _, ok := h.registry.Lookup(toolName); !ok {
		return h.writeError(c, fmt.Errorf("tool %s: %w", toolName, domain.ErrNotFound))
	}

	var req domain.ToolInvokeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	ctx := tools.WithCaller(c.Request().Context(), auth.UserID(c))
	result, err := h.registry.Execute(ctx, toolName, req.Args)
	if err != nil {
		h.logger.Info("tool invocation failed", "tool", toolName, "error", err)
		return c.JSON(http.StatusOK, domain.ToolInvokeResponse{
			Status: "failed",
			Result: result,
			Error:  &domain.ToolError{Code: codeFor(err), Message: err.Error()},
		})
	}
	return c.JSON(http.StatusOK, domain.ToolInvokeResponse{Status: "succeeded", Result: result})
}
