package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"finjar/internal/auth"
	apperrors "finjar/internal/errors"
	"finjar/internal/service"
)

// UserHandler handles profile endpoints.
type UserHandler struct {
	authService service.AuthService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(authService service.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

// UpdateProfileRequest represents a profile patch; only supplied fields change.
type UpdateProfileRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1"`
	Email *string `json:"email" validate:"omitempty,email"`
}

// Me godoc
// @Summary Current user profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.Response
// @Router /me [get]
func (h *UserHandler) Me(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return fail(c, apperrors.ErrInvalidToken)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"user":    user,
	})
}

// UpdateMe godoc
// @Summary Update name or email
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "Profile patch"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.Response
// @Failure 409 {object} errors.Response
// @Router /me [put]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return fail(c, apperrors.ErrInvalidToken)
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.authService.UpdateProfile(c.Request().Context(), user.ID, req.Name, req.Email)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "profile updated",
		"user":    updated,
	})
}
