package handlers

import (
	"errors"

	"qcc-stakevault/internal/core/domain"
	"qcc-stakevault/internal/core/services"
	"qcc-stakevault/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// RateHandler handles interest rate endpoints
type RateHandler struct {
	rateService  *services.RateService
	adminService *services.AdminService
}

// NewRateHandler creates a new rate handler
func NewRateHandler(rateService *services.RateService, adminService *services.AdminService) *RateHandler {
	return &RateHandler{
		rateService:  rateService,
		adminService: adminService,
	}
}

// UpdateRatesRequest represents a rate table replacement request body.
// Rates maps the lock period in days to the annual interest rate in percent.
type UpdateRatesRequest struct {
	Password string                  `json:"password"`
	Rates    map[int]decimal.Decimal `json:"rates"`
}

// GetRates handles the rate table listing
// @Summary Get interest rates
// @Description Returns the interest rate table ordered by period
// @Tags Rates
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Router /staking/rates [get]
func (h *RateHandler) GetRates(c *fiber.Ctx) error {
	rates, err := h.rateService.GetAll(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch interest rates")
	}

	return response.Success(c, "Interest rates retrieved successfully", rates)
}

// UpdateRates handles a full rate table replacement. The admin password rides
// in the request body; changes only affect stakings created afterwards.
// @Summary Update interest rates
// @Description Replace the whole interest rate table (password protected)
// @Tags Rates
// @Accept json
// @Produce json
// @Param body body UpdateRatesRequest true "Admin password and new rate table"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /staking/rates [put]
func (h *RateHandler) UpdateRates(c *fiber.Ctx) error {
	var req UpdateRatesRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Password == "" {
		return response.BadRequest(c, "Password is required")
	}
	if len(req.Rates) == 0 {
		return response.BadRequest(c, "Rates are required")
	}

	if err := h.adminService.VerifyPassword(c.Context(), req.Password); err != nil {
		switch {
		case errors.Is(err, domain.ErrBadCredentials):
			return response.Unauthorized(c, "Invalid password")
		case errors.Is(err, domain.ErrAdminNotConfigured):
			return response.InternalServerError(c, "Admin credential not configured")
		default:
			return response.InternalServerError(c, "Failed to verify password")
		}
	}

	if err := h.rateService.ReplaceAll(c.Context(), req.Rates); err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingRatePeriod):
			return response.BadRequest(c, "Every mandatory period needs a rate")
		case errors.Is(err, domain.ErrNegativeRate):
			return response.BadRequest(c, "Rates must not be negative")
		default:
			return response.InternalServerError(c, "Failed to update interest rates")
		}
	}

	rates, err := h.rateService.GetAll(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch interest rates")
	}

	return response.Success(c, "Interest rates updated successfully", rates)
}
