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

// DepositHandler handles deposit endpoints.
type DepositHandler struct {
	depositService service.DepositService
}

// NewDepositHandler creates a new deposit handler.
func NewDepositHandler(depositService service.DepositService) *DepositHandler {
	return &DepositHandler{depositService: depositService}
}

// CreateDepositRequest represents a deposit creation request.
type CreateDepositRequest struct {
	JarID       string  `json:"jarId" validate:"required,uuid4"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Description string  `json:"description" validate:"max=300"`
}

// UpdateDepositRequest represents a deposit patch; only supplied fields change.
type UpdateDepositRequest struct {
	Amount      *float64 `json:"amount" validate:"omitempty,gt=0"`
	Description *string  `json:"description" validate:"omitempty,max=300"`
}

// List godoc
// @Summary List the caller's deposits
// @Tags deposits
// @Produce json
// @Security BearerAuth
// @Param jarId query string false "Filter by jar"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.Response
// @Router /deposits [get]
func (h *DepositHandler) List(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return fail(c, apperrors.ErrInvalidToken)
	}

	var jarFilter *uuid.UUID
	if raw := c.QueryParam("jarId"); raw != "" {
		jarID, err := uuid.Parse(raw)
		if err != nil {
			return badRequest(c, "invalid jarId filter")
		}
		jarFilter = &jarID
	}

	deposits, err := h.depositService.ListDeposits(c.Request().Context(), user, jarFilter)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"deposits": deposits,
	})
}

// Create godoc
// @Summary Add a deposit to a jar
// @Tags deposits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateDepositRequest true "Deposit data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} errors.Response
// @Failure 404 {object} errors.Response
// @Router /deposits [post]
func (h *DepositHandler) Create(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return fail(c, apperrors.ErrInvalidToken)
	}

	var req CreateDepositRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err.Error())
	}

	jarID, err := uuid.Parse(req.JarID)
	if err != nil {
		return fail(c, apperrors.ErrJarNotFound)
	}

	deposit, err := h.depositService.AddDeposit(c.Request().Context(), user, jarID, decimal.NewFromFloat(req.Amount), req.Description)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "deposit created",
		"deposit": deposit,
	})
}

// Update godoc
// @Summary Patch a deposit's amount or description
// @Tags deposits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Deposit ID"
// @Param request body UpdateDepositRequest true "Deposit patch"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.Response
// @Failure 403 {object} errors.Response
// @Failure 404 {object} errors.Response
// @Router /deposits/{id} [put]
func (h *DepositHandler) Update(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return fail(c, apperrors.ErrInvalidToken)
	}
	depositID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return fail(c, apperrors.ErrDepositNotFound)
	}

	var req UpdateDepositRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err.Error())
	}

	patch := service.DepositPatch{Description: req.Description}
	if req.Amount != nil {
		amount := decimal.NewFromFloat(*req.Amount)
		patch.Amount = &amount
	}

	deposit, err := h.depositService.UpdateDeposit(c.Request().Context(), user, depositID, patch)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "deposit updated",
		"deposit": deposit,
	})
}

// Delete godoc
// @Summary Remove a deposit
// @Tags deposits
// @Produce json
// @Security BearerAuth
// @Param id path string true "Deposit ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} errors.Response
// @Failure 404 {object} errors.Response
// @Router /deposits/{id} [delete]
func (h *DepositHandler) Delete(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return fail(c, apperrors.ErrInvalidToken)
	}
	depositID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return fail(c, apperrors.ErrDepositNotFound)
	}

	if err := h.depositService.DeleteDeposit(c.Request().Context(), user, depositID); err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "deposit deleted",
	})
}
