package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "finjar/internal/errors"
	"finjar/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} errors.Response
// @Failure 409 {object} errors.Response
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err.Error())
	}

	user, token, err := h.authService.Register(c.Request().Context(), req.Email, req.Name, req.Password)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "registration successful",
		"token":   token,
		"user":    user,
	})
}

// Login godoc
// @Summary Login with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.Response
// @Failure 401 {object} errors.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err.Error())
	}

	user, token, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "login successful",
		"token":   token,
		"user":    user,
	})
}

// Logout godoc
// @Summary Revoke the presented bearer token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	raw := strings.TrimPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
	if raw == "" {
		return fail(c, apperrors.ErrInvalidToken)
	}

	if err := h.authService.Logout(c.Request().Context(), raw); err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "logout successful",
	})
}
