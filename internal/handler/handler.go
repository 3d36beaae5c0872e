package handler

import (
	"github.com/labstack/echo/v4"

	apperrors "finjar/internal/errors"
)

// fail renders a domain error through the failure envelope.
func fail(c echo.Context, err error) error {
	he := apperrors.MapErrorToHTTP(err)
	return c.JSON(he.StatusCode, he.ToResponse())
}

// badRequest renders a validation failure.
func badRequest(c echo.Context, message string) error {
	he := apperrors.NewHTTPError(400, message, "VALIDATION_ERROR")
	return c.JSON(he.StatusCode, he.ToResponse())
}
