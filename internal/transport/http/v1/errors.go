package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/phuy1125/vin2/internal/domain"
)

// statusFor maps the error taxonomy to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrAmbiguousReference), errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// codeFor is the machine readable error code used in tool responses.
func codeFor(err error) string {
	if errors.Is(err, domain.ErrConflict) {
		return "conflict"
	}
	switch statusFor(err) {
	case http.StatusBadRequest:
		return "invalid_argument"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusForbidden:
		return "blocked"
	case http.StatusConflict:
		return "ambiguous"
	case http.StatusBadGateway:
		return "upstream"
	}
	return "internal"
}

func (h *Handler) writeError(c echo.Context, err error) error {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "path", c.Path(), "error", err)
		msg = "internal error"
	}
	return c.JSON(status, map[string]string{"error": msg})
}
