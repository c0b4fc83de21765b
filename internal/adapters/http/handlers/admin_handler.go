package handlers

import (
	"errors"

	"qcc-stakevault/internal/adapters/chain"
	"qcc-stakevault/internal/core/domain"
	"qcc-stakevault/internal/core/services"
	"qcc-stakevault/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles admin endpoints
type AdminHandler struct {
	adminService *services.AdminService
	chainClient  chain.Client
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService *services.AdminService, chainClient chain.Client) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		chainClient:  chainClient,
	}
}

// LoginRequest represents an admin login request body
type LoginRequest struct {
	Password string `json:"password"`
}

// ChangePasswordRequest represents a password change request body
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Login handles admin login
// @Summary Admin login
// @Description Verify the admin password and issue a session token
// @Tags Admin
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Admin password"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /admin/login [post]
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Password == "" {
		return response.BadRequest(c, "Password is required")
	}

	token, err := h.adminService.Login(c.Context(), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBadCredentials):
			return response.Unauthorized(c, "Invalid password")
		case errors.Is(err, domain.ErrAdminNotConfigured):
			return response.InternalServerError(c, "Admin credential not configured")
		default:
			return response.InternalServerError(c, "Failed to login")
		}
	}

	return response.Success(c, "Login successful", fiber.Map{
		"access_token": token,
	})
}

// Status handles the admin setup status check
// @Summary Admin status
// @Description Report whether the admin credential is set up
// @Tags Admin
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Router /admin/status [get]
func (h *AdminHandler) Status(c *fiber.Ctx) error {
	status, err := h.adminService.Status(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch admin status")
	}

	return response.Success(c, "Admin status retrieved successfully", status)
}

// ChangePassword handles admin password rotation
// @Summary Change admin password
// @Description Rotate the admin credential after verifying the current password
// @Tags Admin
// @Accept json
// @Produce json
// @Param body body ChangePasswordRequest true "Current and new password"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Security BearerAuth
// @Router /admin/password [put]
func (h *AdminHandler) ChangePassword(c *fiber.Ctx) error {
	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return response.BadRequest(c, "Current and new password are required")
	}

	if err := h.adminService.ChangePassword(c.Context(), req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, domain.ErrWeakPassword):
			return response.BadRequest(c, "New password must be at least 8 characters")
		case errors.Is(err, domain.ErrBadCredentials):
			return response.Unauthorized(c, "Invalid current password")
		case errors.Is(err, domain.ErrAdminNotConfigured):
			return response.InternalServerError(c, "Admin credential not configured")
		default:
			return response.InternalServerError(c, "Failed to change password")
		}
	}

	return response.Success(c, "Password changed successfully", nil)
}

// ChainStatus handles the settlement network configuration check
// @Summary Chain configuration status
// @Description Report the settlement network configuration without exposing secrets (admin)
// @Tags Admin
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /admin/chain-status [get]
func (h *AdminHandler) ChainStatus(c *fiber.Ctx) error {
	return response.Success(c, "Chain configuration retrieved successfully", h.chainClient.CheckConfiguration())
}
