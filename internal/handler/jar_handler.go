package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"finjar/internal/auth"
	apperrors "finjar/internal/errors"
	"finjar/internal/service"
)

// JarHandler handles jar endpoints.
type JarHandler struct {
	jarService      service.JarService
	activityService service.ActivityService
}

// NewJarHandler creates a new jar handler.
func NewJarHandler(jarService service.JarService, activityService service.ActivityService) *JarHandler {
	return &JarHandler{
		jarService:      jarService,
		activityService: activityService,
	}
}

// CreateJarRequest represents a jar creation request.
type CreateJarRequest struct {
	Name         string  `json:"name" validate:"required,max=140"`
	TargetAmount float64 `json:"targetAmount" validate:"gte=0"`
	Description  string  `json:"description" validate:"max=400"`
}

// UpdateJarRequest represents a jar patch; only supplied fields change.
type UpdateJarRequest struct {
	Name         *string  `json:"name" validate:"omitempty,min=1,max=140"`
	TargetAmount *float64 `json:"targetAmount" validate:"omitempty,gte=0"`
	Description  *string  `json:"description" validate:"omitempty,max=400"`
}

// List godoc
// @Summary List the caller's jars
// @Tags jars
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.Response
// @Router /jars [get]
func (h *JarHandler) List(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return fail(c, apperrors.ErrInvalidToken)
	}

	jars, err := h.jarService.ListJars(c.Request().Context(), user)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"jars":    jars,
	})
}

// Create godoc
// @Summary Create a jar
// @Tags jars
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateJarRequest true "Jar data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} errors.Response
// @Router /jars [post]
func (h *JarHandler) Create(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return fail(c, apperrors.ErrInvalidToken)
	}

	var req CreateJarRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err.Error())
	}

	jar, err := h.jarService.CreateJar(c.Request().Context(), user, req.Name, decimal.NewFromFloat(req.TargetAmount), req.Description)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "jar created",
		"jar":     jar,
	})
}

// Get godoc
// @Summary Fetch one jar
// @Tags jars
// @Produce json
// @Security BearerAuth
// @Param id path string true "Jar ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.Response
// @Router /jars/{id} [get]
func (h *JarHandler) Get(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return fail(c, apperrors.ErrInvalidToken)
	}
	jarID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return fail(c, apperrors.ErrJarNotFound)
	}

	jar, err := h.jarService.GetJar(c.Request().Context(), user, jarID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"jar":     jar,
	})
}

// Update godoc
// @Summary Patch jar fields
// @Tags jars
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Jar ID"
// @Param request body UpdateJarRequest true "Jar patch"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.Response
// @Failure 404 {object} errors.Response
// @Router /jars/{id} [put]
func (h *JarHandler) Update(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return fail(c, apperrors.ErrInvalidToken)
	}
	jarID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return fail(c, apperrors.ErrJarNotFound)
	}

	var req UpdateJarRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err.Error())
	}

	patch := service.JarPatch{
		Name:        req.Name,
		Description: req.Description,
	}
	if req.TargetAmount != nil {
		target := decimal.NewFromFloat(*req.TargetAmount)
		patch.TargetAmount = &target
	}

	jar, err := h.jarService.UpdateJar(c.Request().Context(), user, jarID, patch)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "jar updated",
		"jar":     jar,
	})
}

// Delete godoc
// @Summary Delete a jar and all of its deposits
// @Tags jars
// @Produce json
// @Security BearerAuth
// @Param id path string true "Jar ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.Response
// @Router /jars/{id} [delete]
func (h *JarHandler) Delete(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return fail(c, apperrors.ErrInvalidToken)
	}
	jarID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return fail(c, apperrors.ErrJarNotFound)
	}

	if err := h.jarService.DeleteJar(c.Request().Context(), user, jarID); err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "jar deleted",
	})
}

// Recalculate godoc
// @Summary Recompute the jar balance from its deposits
// @Tags jars
// @Produce json
// @Security BearerAuth
// @Param id path string true "Jar ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.Response
// @Router /jars/{id}/recalc [post]
func (h *JarHandler) Recalculate(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return fail(c, apperrors.ErrInvalidToken)
	}
	jarID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return fail(c, apperrors.ErrJarNotFound)
	}

	jar, err := h.jarService.Recalculate(c.Request().Context(), user, jarID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "balance recalculated",
		"jar":     jar,
	})
}

// Activity godoc
// @Summary List a jar's activity feed
// @Tags jars
// @Produce json
// @Security BearerAuth
// @Param id path string true "Jar ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.Response
// @Router /jars/{id}/activity [get]
func (h *JarHandler) Activity(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return fail(c, apperrors.ErrInvalidToken)
	}
	jarID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return fail(c, apperrors.ErrJarNotFound)
	}

	activities, err := h.activityService.ListForJar(c.Request().Context(), user, jarID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"activity": activities,
	})
}
